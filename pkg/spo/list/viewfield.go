package list

import (
	"context"
	"fmt"

	"github.com/runningdeveloper/cli-microsoft365/pkg/command"
	"github.com/runningdeveloper/cli-microsoft365/pkg/formatting"
	"github.com/runningdeveloper/cli-microsoft365/pkg/request"
	"github.com/runningdeveloper/cli-microsoft365/pkg/spo"
	"github.com/runningdeveloper/cli-microsoft365/pkg/validation"
	"go.uber.org/zap"
)

// ViewFieldAddOptions are the options of "spo list view field add".
type ViewFieldAddOptions struct {
	WebURL        string `flag:"webUrl,u" desc:"URL of the site where the list is located" required:"true"`
	ListID        string `flag:"listId" desc:"ID of the list where the view is located"`
	ListTitle     string `flag:"listTitle" desc:"Title of the list where the view is located"`
	ViewID        string `flag:"viewId" desc:"ID of the view to update"`
	ViewTitle     string `flag:"viewTitle" desc:"Title of the view to update"`
	FieldID       string `flag:"fieldId" desc:"ID of the field to add"`
	FieldTitle    string `flag:"fieldTitle" desc:"Title or internal name of the field to add"`
	FieldPosition string `flag:"fieldPosition" desc:"The zero-based index of the position for the field"`
}

// ViewFieldAddOptionSets pick the list, view and field.
var ViewFieldAddOptionSets = []command.OptionSet{
	{"listId", "listTitle"},
	{"viewId", "viewTitle"},
	{"fieldId", "fieldTitle"},
}

// Validate checks the options, returning the first problem found.
func (o *ViewFieldAddOptions) Validate() error {
	if err := validation.ValidateSharePointURL(o.WebURL); err != nil {
		return err
	}
	for _, id := range []string{o.ListID, o.ViewID, o.FieldID} {
		if id != "" {
			if err := validation.ValidateGUID(id); err != nil {
				return err
			}
		}
	}
	if o.FieldPosition != "" {
		if _, err := validation.ParseNumber(o.FieldPosition); err != nil {
			return err
		}
	}
	return nil
}

func (o *ViewFieldAddOptions) listSelector() string {
	if o.ListID != "" {
		return fmt.Sprintf("(guid'%s')", formatting.EncodeQueryParameter(o.ListID))
	}
	return fmt.Sprintf("/GetByTitle('%s')", formatting.EncodeQueryParameter(o.ListTitle))
}

func (o *ViewFieldAddOptions) viewSelector() string {
	if o.ViewID != "" {
		return fmt.Sprintf("('%s')", formatting.EncodeQueryParameter(o.ViewID))
	}
	return fmt.Sprintf("/GetByTitle('%s')", formatting.EncodeQueryParameter(o.ViewTitle))
}

func (o *ViewFieldAddOptions) fieldSelector() string {
	if o.FieldID != "" {
		return fmt.Sprintf("/getbyid('%s')", formatting.EncodeURIComponent(o.FieldID))
	}
	return fmt.Sprintf("/getbyinternalnameortitle('%s')", formatting.EncodeURIComponent(o.FieldTitle))
}

func (o *ViewFieldAddOptions) field() string {
	if o.FieldID != "" {
		return o.FieldID
	}
	return o.FieldTitle
}

func (o *ViewFieldAddOptions) view() string {
	if o.ViewID != "" {
		return o.ViewID
	}
	return o.ViewTitle
}

// AddViewField adds a field to a list view and, when a position was given,
// moves it there.
func AddViewField(ctx context.Context, client *request.Client, log *zap.Logger, opts *ViewFieldAddOptions) error {
	listURL := opts.WebURL + "/_api/web/lists" + opts.listSelector()

	log.Info("getting field", zap.String("field", opts.field()))
	var field struct {
		InternalName string `json:"InternalName"`
	}
	if err := client.Get(ctx, listURL+"/fields"+opts.fieldSelector(), spo.NoMetadata, &field); err != nil {
		return err
	}

	viewFieldsURL := listURL + "/views" + opts.viewSelector() + "/viewfields"

	log.Info("adding field to view", zap.String("field", opts.field()), zap.String("view", opts.view()))
	if err := client.Post(ctx, fmt.Sprintf("%s/addviewfield('%s')", viewFieldsURL, field.InternalName), spo.NoMetadata, nil, nil); err != nil {
		return err
	}

	if opts.FieldPosition == "" {
		log.Debug("no field position")
		return nil
	}

	position, err := validation.ParseNumber(opts.FieldPosition)
	if err != nil {
		return err
	}

	log.Info("moving field", zap.String("field", opts.field()), zap.Int("position", position))
	body := map[string]any{"field": field.InternalName, "index": position}
	return client.Post(ctx, viewFieldsURL+"/moveviewfieldto", spo.NoMetadata, body, nil)
}
