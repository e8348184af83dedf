// Package term implements the SharePoint taxonomy commands.
package term

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/runningdeveloper/cli-microsoft365/pkg/command"
	"github.com/runningdeveloper/cli-microsoft365/pkg/formatting"
	"github.com/runningdeveloper/cli-microsoft365/pkg/request"
	"github.com/runningdeveloper/cli-microsoft365/pkg/spo"
	"github.com/runningdeveloper/cli-microsoft365/pkg/validation"
	"go.uber.org/zap"
)

// SetAddOptions are the options of "spo term set add".
type SetAddOptions struct {
	Name             string `flag:"name,n" desc:"Name of the term set to add" required:"true"`
	TermGroupID      string `flag:"termGroupId" desc:"ID of the term group in which to create the term set"`
	TermGroupName    string `flag:"termGroupName" desc:"Name of the term group in which to create the term set"`
	ID               string `flag:"id,i" desc:"ID of the term set to add"`
	Description      string `flag:"description,d" desc:"Description of the term set to add"`
	CustomProperties string `flag:"customProperties" desc:"JSON string with key-value pairs representing custom properties to set on the term set"`
}

// SetAddOptionSets pick the term group.
var SetAddOptionSets = []command.OptionSet{{"termGroupId", "termGroupName"}}

// Validate checks the options, returning the first problem found.
func (o *SetAddOptions) Validate() error {
	if o.ID != "" {
		if err := validation.ValidateGUID(o.ID); err != nil {
			return err
		}
	}
	if o.TermGroupID != "" {
		if err := validation.ValidateGUID(o.TermGroupID); err != nil {
			return err
		}
	}
	if o.CustomProperties != "" {
		if _, err := parseCustomProperties(o.CustomProperties); err != nil {
			return fmt.Errorf("Error when parsing customProperties JSON: %v", err)
		}
	}
	return nil
}

// customProperty keeps a custom property in the order the user wrote it.
// value is what the term store receives; parsed is the JSON value echoed in
// the output.
type customProperty struct {
	key    string
	value  string
	parsed any
}

// parseCustomProperties reads a JSON object of custom properties. A key
// given twice keeps its first position and its last value. null is sent as
// an empty string.
func parseCustomProperties(s string) ([]customProperty, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errors.New("custom properties must be a JSON object")
	}

	var props []customProperty
	index := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := tok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}
		prop := customProperty{key: key}
		if err := unmarshalNumber(raw, &prop.parsed); err != nil {
			return nil, err
		}
		switch v := prop.parsed.(type) {
		case nil:
		case string:
			prop.value = v
		default:
			prop.value = string(raw)
		}

		if i, seen := index[key]; seen {
			props[i] = prop
			continue
		}
		index[key] = len(props)
		props = append(props, prop)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err == nil {
		return nil, errors.New("unexpected data after custom properties")
	}
	return props, nil
}

// newID creates term set ids when none is given.
var newID = uuid.NewString

const requestHeader = `<Request AddExpandoFieldTypeSuffix="true" SchemaVersion="15.0.0.0" LibraryVersion="16.0.0.0" ApplicationName="` + spo.ApplicationName + `" xmlns="http://schemas.microsoft.com/sharepoint/clientquery/2009">`

func createQuery(opts *SetAddOptions, termSetID string) string {
	var groupQuery string
	if opts.TermGroupName != "" {
		groupQuery = `<Method Id="42" ParentId="40" Name="GetByName"><Parameters><Parameter Type="String">` + formatting.EscapeXML(opts.TermGroupName) + `</Parameter></Parameters></Method>`
	} else {
		groupQuery = `<Method Id="42" ParentId="40" Name="GetById"><Parameters><Parameter Type="Guid">{` + opts.TermGroupID + `}</Parameter></Parameters></Method>`
	}

	return requestHeader +
		`<Actions><ObjectPath Id="35" ObjectPathId="34" /><ObjectIdentityQuery Id="36" ObjectPathId="34" /><ObjectPath Id="38" ObjectPathId="37" /><ObjectIdentityQuery Id="39" ObjectPathId="37" /><ObjectPath Id="41" ObjectPathId="40" /><ObjectPath Id="43" ObjectPathId="42" /><ObjectIdentityQuery Id="44" ObjectPathId="42" /><ObjectPath Id="46" ObjectPathId="45" /><ObjectIdentityQuery Id="47" ObjectPathId="45" /><Query Id="48" ObjectPathId="45"><Query SelectAllProperties="true"><Properties /></Query></Query></Actions>` +
		`<ObjectPaths><StaticMethod Id="34" Name="GetTaxonomySession" TypeId="{981cbc68-9edc-4f8d-872f-71146fcbb84f}" /><Method Id="37" ParentId="34" Name="GetDefaultSiteCollectionTermStore" /><Property Id="40" ParentId="37" Name="Groups" />` +
		groupQuery +
		`<Method Id="45" ParentId="42" Name="CreateTermSet"><Parameters><Parameter Type="String">` + formatting.EscapeXML(opts.Name) + `</Parameter><Parameter Type="Guid">{` + termSetID + `}</Parameter><Parameter Type="Int32">1033</Parameter></Parameters></Method></ObjectPaths></Request>`
}

func propertiesQuery(description string, props []customProperty, termSetIdentity, termStoreIdentity string) string {
	var actions strings.Builder
	id := 127
	if description != "" {
		fmt.Fprintf(&actions, `<SetProperty Id="%d" ObjectPathId="117" Name="Description"><Parameter Type="String">%s</Parameter></SetProperty>`, id, formatting.EscapeXML(description))
		id++
	}
	for _, p := range props {
		fmt.Fprintf(&actions, `<Method Name="SetCustomProperty" Id="%d" ObjectPathId="117"><Parameters><Parameter Type="String">%s</Parameter><Parameter Type="String">%s</Parameter></Parameters></Method>`, id, formatting.EscapeXML(p.key), formatting.EscapeXML(p.value))
		id++
	}

	return requestHeader +
		`<Actions>` + actions.String() + `<Method Name="CommitAll" Id="131" ObjectPathId="109" /></Actions>` +
		`<ObjectPaths><Identity Id="117" Name="` + termSetIdentity + `" /><Identity Id="109" Name="` + termStoreIdentity + `" /></ObjectPaths></Request>`
}

// AddSet creates a taxonomy term set in the tenant's default term store and
// returns it.
func AddSet(ctx context.Context, client *request.Client, urls spo.URLCache, log *zap.Logger, opts *SetAddOptions) (map[string]any, error) {
	adminURL, err := spo.AdminTenantURL(ctx, client, urls, log)
	if err != nil {
		return nil, err
	}
	digest, err := spo.RequestDigest(ctx, client, adminURL)
	if err != nil {
		return nil, err
	}

	log.Info("adding taxonomy term set", zap.String("name", opts.Name))

	termSetID := opts.ID
	if termSetID == "" {
		termSetID = newID()
	}
	res, err := spo.ProcessQuery(ctx, client, adminURL, digest.FormDigestValue, createQuery(opts, termSetID))
	if err != nil {
		return nil, err
	}

	created := res.Last()
	termSet := make(map[string]any)
	dec := json.NewDecoder(bytes.NewReader(created))
	dec.UseNumber()
	if err := dec.Decode(&termSet); err != nil {
		return nil, fmt.Errorf("failed to parse term set: %w", err)
	}

	if opts.Description != "" || opts.CustomProperties != "" {
		props, err := parseCustomProperties(orEmptyObject(opts.CustomProperties))
		if err != nil {
			return nil, err
		}

		log.Info("setting term set properties")
		query := propertiesQuery(opts.Description, props, spo.ObjectIdentity(created), spo.ObjectIdentity(res.After(39)))
		if _, err := spo.ProcessQuery(ctx, client, adminURL, digest.FormDigestValue, query); err != nil {
			return nil, err
		}

		if opts.Description != "" {
			termSet["Description"] = opts.Description
		}
		if opts.CustomProperties != "" {
			custom := make(map[string]any, len(props))
			for _, p := range props {
				custom[p.key] = p.parsed
			}
			termSet["CustomProperties"] = custom
		}
	}

	delete(termSet, "_ObjectIdentity_")
	delete(termSet, "_ObjectType_")
	for _, key := range []string{"CreatedDate", "LastModifiedDate"} {
		if v, ok := termSet[key].(string); ok {
			termSet[key] = spo.ParseDate(v)
		}
	}
	if v, ok := termSet["Id"].(string); ok {
		termSet["Id"] = spo.TrimGUID(v)
	}
	return termSet, nil
}

func unmarshalNumber(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

func orEmptyObject(s string) string {
	if s == "" {
		return "{}"
	}
	return s
}
