// Package file implements the SharePoint file commands.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/runningdeveloper/cli-microsoft365/pkg/command"
	"github.com/runningdeveloper/cli-microsoft365/pkg/formatting"
	"github.com/runningdeveloper/cli-microsoft365/pkg/request"
	"github.com/runningdeveloper/cli-microsoft365/pkg/spo"
	"github.com/runningdeveloper/cli-microsoft365/pkg/validation"
	"go.uber.org/zap"
)

// SharingInfoOptions are the options of "spo file sharinginfo get".
type SharingInfoOptions struct {
	WebURL string `flag:"webUrl,w" desc:"The URL of the site where the file is located" required:"true"`
	ID     string `flag:"id,i" desc:"The UniqueId (GUID) of the file"`
	URL    string `flag:"url,u" desc:"The server-relative URL of the file"`
}

// SharingInfoOptionSets pick the file.
var SharingInfoOptionSets = []command.OptionSet{{"id", "url"}}

// SharingInfoContextExcluded lists options never taken from the context file.
var SharingInfoContextExcluded = []string{"url"}

// Validate checks the options, returning the first problem found.
func (o *SharingInfoOptions) Validate() error {
	if err := validation.ValidateSharePointURL(o.WebURL); err != nil {
		return err
	}
	if o.ID != "" {
		if err := validation.ValidateGUID(o.ID); err != nil {
			return err
		}
	}
	return nil
}

// principalTypes names Microsoft.SharePoint.Client.Utilities.PrincipalType values.
var principalTypes = map[int]string{
	0:  "None",
	1:  "User",
	2:  "DistributionList",
	4:  "SecurityGroup",
	8:  "SharePointGroup",
	15: "All",
}

// Principal is someone a file is shared with.
type Principal struct {
	Name          string      `json:"name"`
	IsActive      bool        `json:"isActive"`
	IsExternal    bool        `json:"isExternal"`
	PrincipalType json.Number `json:"principalType"`
}

// SharingInformation is the part of the GetSharingInformation reply the
// flattened report is built from.
type SharingInformation struct {
	PermissionsInformation struct {
		Links []struct {
			LinkDetails struct {
				Invitations []struct {
					Invitee Principal `json:"invitee"`
				} `json:"Invitations"`
			} `json:"linkDetails"`
		} `json:"links"`
		Principals []struct {
			Principal Principal `json:"principal"`
		} `json:"principals"`
	} `json:"permissionsInformation"`
}

// SharingEntry is one row of the flattened report.
type SharingEntry struct {
	SharedWith    string `json:"SharedWith"`
	IsActive      bool   `json:"IsActive"`
	IsExternal    bool   `json:"IsExternal"`
	PrincipalType string `json:"PrincipalType"`
}

func entry(p Principal) SharingEntry {
	e := SharingEntry{SharedWith: p.Name, IsActive: p.IsActive, IsExternal: p.IsExternal}
	if n, err := strconv.Atoi(p.PrincipalType.String()); err == nil {
		e.PrincipalType = principalTypes[n]
	}
	return e
}

// Entries flattens link invitations and then direct principals.
func (s *SharingInformation) Entries() []SharingEntry {
	out := make([]SharingEntry, 0)
	for _, link := range s.PermissionsInformation.Links {
		for _, inv := range link.LinkDetails.Invitations {
			out = append(out, entry(inv.Invitee))
		}
	}
	for _, p := range s.PermissionsInformation.Principals {
		out = append(out, entry(p.Principal))
	}
	return out
}

const fileSelect = "$select=ListItemAllFields/Id,ListItemAllFields/ParentList/Title&$expand=ListItemAllFields/ParentList"

type fileInfo struct {
	ListItemAllFields struct {
		ID         json.Number `json:"Id"`
		ParentList struct {
			Title string `json:"Title"`
		} `json:"ParentList"`
	} `json:"ListItemAllFields"`
}

func (o *SharingInfoOptions) fileURL() string {
	if o.ID != "" {
		return fmt.Sprintf("%s/_api/web/GetFileById('%s')/?%s", o.WebURL, formatting.EncodeURIComponent(o.ID), fileSelect)
	}
	return fmt.Sprintf("%s/_api/web/GetFileByServerRelativePath(decodedUrl='%s')?%s", o.WebURL, formatting.EncodeURIComponent(o.URL), fileSelect)
}

// GetSharingInfo returns the raw sharing information of a file.
func GetSharingInfo(ctx context.Context, client *request.Client, log *zap.Logger, opts *SharingInfoOptions) (json.RawMessage, error) {
	log.Info("retrieving sharing information report for the file")

	var info fileInfo
	if err := client.Get(ctx, opts.fileURL(), spo.NoMetadata, &info); err != nil {
		return nil, err
	}
	itemID, err := strconv.Atoi(info.ListItemAllFields.ID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to read list item id of the file: %w", err)
	}

	log.Info("retrieving sharing information report for the list item", zap.Int("itemId", itemID))

	u := fmt.Sprintf("%s/_api/web/lists/getbytitle('%s')/items(%d)/GetSharingInformation?$select=permissionsInformation&$Expand=permissionsInformation",
		opts.WebURL, formatting.EncodeQueryParameter(info.ListItemAllFields.ParentList.Title), itemID)

	var raw json.RawMessage
	if err := client.Post(ctx, u, spo.NoMetadata, nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// Report turns the raw sharing information into flattened rows.
func Report(raw json.RawMessage) ([]SharingEntry, error) {
	var info SharingInformation
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil, fmt.Errorf("failed to parse sharing information: %w", err)
	}
	return info.Entries(), nil
}
