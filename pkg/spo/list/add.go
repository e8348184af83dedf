// Package list implements the SharePoint list commands.
package list

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/runningdeveloper/cli-microsoft365/pkg/request"
	"github.com/runningdeveloper/cli-microsoft365/pkg/spo"
	"github.com/runningdeveloper/cli-microsoft365/pkg/validation"
	"go.uber.org/zap"
)

// AddOptions are the options of "spo list add". Everything except the
// required options is optional and only sent when given, which is why
// booleans and numbers are kept as the strings the user typed.
type AddOptions struct {
	WebURL       string `flag:"webUrl,u" desc:"URL of the site where the list should be added" required:"true"`
	Title        string `flag:"title,t" desc:"Title of the list" required:"true"`
	BaseTemplate string `flag:"baseTemplate" desc:"The list definition type on which the list is based" required:"true"`
	Description  string `flag:"description" desc:"The description for the list"`

	TemplateFeatureID                string `flag:"templateFeatureId" desc:"The globally unique identifier (GUID) of a template feature that is associated with the list"`
	SchemaXML                        string `flag:"schemaXml" desc:"The schema in Collaborative Application Markup Language (CAML) schemas that defines the list"`
	DefaultContentApprovalWorkflowID string `flag:"defaultContentApprovalWorkflowId" desc:"Default workflow identifier for content approval on the list (GUID)"`
	DefaultDisplayFormURL            string `flag:"defaultDisplayFormUrl" desc:"Location of the default display form for the list"`
	DefaultEditFormURL               string `flag:"defaultEditFormUrl" desc:"URL of the default edit form for the list"`
	Direction                        string `flag:"direction" desc:"Reading order of the list: NONE, LTR or RTL"`
	DraftVersionVisibility           string `flag:"draftVersionVisibility" desc:"Minimum permission required to view minor versions and drafts: Reader, Author or Approver"`
	EmailAlias                       string `flag:"emailAlias" desc:"E-mail address of the list. Requires enableAssignToEmail"`
	ListExperienceOptions            string `flag:"listExperienceOptions" desc:"List experience: Auto, NewExperience or ClassicExperience"`
	MajorVersionLimit                string `flag:"majorVersionLimit" desc:"Maximum number of major versions. Requires enableVersioning"`
	MajorWithMinorVersionsLimit      string `flag:"majorWithMinorVersionsLimit" desc:"Maximum number of major versions with minor versions. Requires enableMinorVersions or enableModeration"`
	ReadSecurity                     string `flag:"readSecurity" desc:"Read permissions for list items: 1 (all items) or 2 (own items)"`
	WriteSecurity                    string `flag:"writeSecurity" desc:"Write permissions for list items: 1 (all items), 2 (own items) or 4 (none)"`
	SendToLocationName               string `flag:"sendToLocationName" desc:"File name to use when sending or copying a document to another location"`
	SendToLocationURL                string `flag:"sendToLocationUrl" desc:"URL of the destination to use when sending or copying a document"`
	ValidationFormula                string `flag:"validationFormula" desc:"Data validation criteria for a list item"`
	ValidationMessage                string `flag:"validationMessage" desc:"Error message returned when data validation fails for a list item"`

	AddBooleans
}

// AddBooleans are the true/false list properties of "spo list add".
type AddBooleans struct {
	AllowDeletion                 string `flag:"allowDeletion" desc:"Allow the list to be deleted"`
	AllowEveryoneViewItems        string `flag:"allowEveryoneViewItems" desc:"Allow everyone to view documents in the document library or attachments to items in the list"`
	AllowMultiResponses           string `flag:"allowMultiResponses" desc:"Allow users to respond more than once to a survey"`
	ContentTypesEnabled           string `flag:"contentTypesEnabled" desc:"Enable content types"`
	CrawlNonDefaultViews          string `flag:"crawlNonDefaultViews" desc:"Crawl non-default views"`
	DisableGridEditing            string `flag:"disableGridEditing" desc:"Disable grid editing"`
	EnableAssignToEmail           string `flag:"enableAssignToEmail" desc:"Send e-mail when an item is assigned"`
	EnableAttachments             string `flag:"enableAttachments" desc:"Allow attachments on list items"`
	EnableDeployWithDependentList string `flag:"enableDeployWithDependentList" desc:"Allow the list to be deployed with a dependent list"`
	EnableFolderCreation          string `flag:"enableFolderCreation" desc:"Allow folders to be created"`
	EnableMinorVersions           string `flag:"enableMinorVersions" desc:"Enable minor versions"`
	EnableModeration              string `flag:"enableModeration" desc:"Enable content approval"`
	EnablePeopleSelector          string `flag:"enablePeopleSelector" desc:"Enable the people selector"`
	EnableResourceSelector        string `flag:"enableResourceSelector" desc:"Enable the resource selector"`
	EnableSchemaCaching           string `flag:"enableSchemaCaching" desc:"Cache the list schema"`
	EnableSyndication             string `flag:"enableSyndication" desc:"Enable RSS syndication"`
	EnableThrottling              string `flag:"enableThrottling" desc:"Throttle the list"`
	EnableVersioning              string `flag:"enableVersioning" desc:"Enable versioning"`
	EnforceDataValidation         string `flag:"enforceDataValidation" desc:"Enforce data validation"`
	ExcludeFromOfflineClient      string `flag:"excludeFromOfflineClient" desc:"Exclude the list from offline clients"`
	FetchPropertyBagForListView   string `flag:"fetchPropertyBagForListView" desc:"Fetch the property bag for list views"`
	Followable                    string `flag:"followable" desc:"Allow the list to be followed"`
	ForceCheckout                 string `flag:"forceCheckout" desc:"Require check out before editing documents"`
	ForceDefaultContentType       string `flag:"forceDefaultContentType" desc:"Force the default content type"`
	Hidden                        string `flag:"hidden" desc:"Hide the list"`
	IncludedInMyFilesScope        string `flag:"includedInMyFilesScope" desc:"Include the list in the My Files scope"`
	IrmEnabled                    string `flag:"irmEnabled" desc:"Enable Information Rights Management"`
	IrmExpire                     string `flag:"irmExpire" desc:"Expire IRM permissions"`
	IrmReject                     string `flag:"irmReject" desc:"Reject documents that do not support IRM"`
	IsApplicationList             string `flag:"isApplicationList" desc:"Mark the list as an application list"`
	MultipleDataList              string `flag:"multipleDataList" desc:"Mark the list as a multiple data list for a Meeting Workspace"`
	NavigateForFormsPages         string `flag:"navigateForFormsPages" desc:"Navigate to forms pages instead of dialogs"`
	NeedUpdateSiteClientTag       string `flag:"needUpdateSiteClientTag" desc:"Update the site client tag"`
	NoCrawl                       string `flag:"noCrawl" desc:"Hide the list from search"`
	OnQuickLaunch                 string `flag:"onQuickLaunch" desc:"Show the list on Quick Launch"`
	Ordered                       string `flag:"ordered" desc:"Allow users to reorder items"`
	ParserDisabled                string `flag:"parserDisabled" desc:"Disable the document parser"`
	ReadOnlyUI                    string `flag:"readOnlyUI" desc:"Make the list user interface read-only"`
	RequestAccessEnabled          string `flag:"requestAccessEnabled" desc:"Allow users to request access"`
	RestrictUserUpdates           string `flag:"restrictUserUpdates" desc:"Restrict user updates"`
	ShowUser                      string `flag:"showUser" desc:"Show user names in survey results"`
	UseFormsForDisplay            string `flag:"useFormsForDisplay" desc:"Use forms for displaying items"`
}

type propertyKind int

const (
	kindText propertyKind = iota
	kindBoolean
	kindNumber
	kindTemplate
)

// property is one option of AddOptions and how it is sent to SharePoint.
type property struct {
	option string
	kind   propertyKind
	value  string
}

// name is the SharePoint property the option sets, e.g. readOnlyUI -> ReadOnlyUI.
func (p property) name() string {
	return strings.ToUpper(p.option[:1]) + p.option[1:]
}

func (o *AddOptions) properties() []property {
	return []property{
		{"title", kindText, o.Title},
		{"baseTemplate", kindTemplate, o.BaseTemplate},
		{"description", kindText, o.Description},
		{"templateFeatureId", kindText, o.TemplateFeatureID},
		{"schemaXml", kindText, o.SchemaXML},
		{"allowDeletion", kindBoolean, o.AllowDeletion},
		{"allowEveryoneViewItems", kindBoolean, o.AllowEveryoneViewItems},
		{"allowMultiResponses", kindBoolean, o.AllowMultiResponses},
		{"contentTypesEnabled", kindBoolean, o.ContentTypesEnabled},
		{"crawlNonDefaultViews", kindBoolean, o.CrawlNonDefaultViews},
		{"defaultContentApprovalWorkflowId", kindText, o.DefaultContentApprovalWorkflowID},
		{"defaultDisplayFormUrl", kindText, o.DefaultDisplayFormURL},
		{"defaultEditFormUrl", kindText, o.DefaultEditFormURL},
		{"direction", kindText, o.Direction},
		{"disableGridEditing", kindBoolean, o.DisableGridEditing},
		{"draftVersionVisibility", kindText, o.DraftVersionVisibility},
		{"emailAlias", kindText, o.EmailAlias},
		{"enableAssignToEmail", kindBoolean, o.EnableAssignToEmail},
		{"enableAttachments", kindBoolean, o.EnableAttachments},
		{"enableDeployWithDependentList", kindBoolean, o.EnableDeployWithDependentList},
		{"enableFolderCreation", kindBoolean, o.EnableFolderCreation},
		{"enableMinorVersions", kindBoolean, o.EnableMinorVersions},
		{"enableModeration", kindBoolean, o.EnableModeration},
		{"enablePeopleSelector", kindBoolean, o.EnablePeopleSelector},
		{"enableResourceSelector", kindBoolean, o.EnableResourceSelector},
		{"enableSchemaCaching", kindBoolean, o.EnableSchemaCaching},
		{"enableSyndication", kindBoolean, o.EnableSyndication},
		{"enableThrottling", kindBoolean, o.EnableThrottling},
		{"enableVersioning", kindBoolean, o.EnableVersioning},
		{"enforceDataValidation", kindBoolean, o.EnforceDataValidation},
		{"excludeFromOfflineClient", kindBoolean, o.ExcludeFromOfflineClient},
		{"fetchPropertyBagForListView", kindBoolean, o.FetchPropertyBagForListView},
		{"followable", kindBoolean, o.Followable},
		{"forceCheckout", kindBoolean, o.ForceCheckout},
		{"forceDefaultContentType", kindBoolean, o.ForceDefaultContentType},
		{"hidden", kindBoolean, o.Hidden},
		{"includedInMyFilesScope", kindBoolean, o.IncludedInMyFilesScope},
		{"irmEnabled", kindBoolean, o.IrmEnabled},
		{"irmExpire", kindBoolean, o.IrmExpire},
		{"irmReject", kindBoolean, o.IrmReject},
		{"isApplicationList", kindBoolean, o.IsApplicationList},
		{"listExperienceOptions", kindText, o.ListExperienceOptions},
		{"majorVersionLimit", kindNumber, o.MajorVersionLimit},
		{"majorWithMinorVersionsLimit", kindNumber, o.MajorWithMinorVersionsLimit},
		{"multipleDataList", kindBoolean, o.MultipleDataList},
		{"navigateForFormsPages", kindBoolean, o.NavigateForFormsPages},
		{"needUpdateSiteClientTag", kindBoolean, o.NeedUpdateSiteClientTag},
		{"noCrawl", kindBoolean, o.NoCrawl},
		{"onQuickLaunch", kindBoolean, o.OnQuickLaunch},
		{"ordered", kindBoolean, o.Ordered},
		{"parserDisabled", kindBoolean, o.ParserDisabled},
		{"readOnlyUI", kindBoolean, o.ReadOnlyUI},
		{"readSecurity", kindNumber, o.ReadSecurity},
		{"requestAccessEnabled", kindBoolean, o.RequestAccessEnabled},
		{"restrictUserUpdates", kindBoolean, o.RestrictUserUpdates},
		{"sendToLocationName", kindText, o.SendToLocationName},
		{"sendToLocationUrl", kindText, o.SendToLocationURL},
		{"showUser", kindBoolean, o.ShowUser},
		{"useFormsForDisplay", kindBoolean, o.UseFormsForDisplay},
		{"validationFormula", kindText, o.ValidationFormula},
		{"validationMessage", kindText, o.ValidationMessage},
		{"writeSecurity", kindNumber, o.WriteSecurity},
	}
}

// Validate checks the options, returning the first problem found.
func (o *AddOptions) Validate() error {
	if err := validation.ValidateSharePointURL(o.WebURL); err != nil {
		return err
	}

	if _, ok := listTemplateTypes.lookup(o.BaseTemplate); !ok {
		return notRecognized("BaseTemplate", o.BaseTemplate)
	}

	for _, id := range []string{o.TemplateFeatureID, o.DefaultContentApprovalWorkflowID} {
		if id != "" {
			if err := validation.ValidateGUID(id); err != nil {
				return err
			}
		}
	}

	for _, p := range o.properties() {
		if p.kind == kindBoolean && p.value != "" && !validation.IsValidBoolean(p.value) {
			return fmt.Errorf("%s in option %s is not a valid boolean value", p.value, p.option)
		}
	}

	if o.Direction != "" {
		if _, ok := directions.lookup(o.Direction); !ok {
			return notRecognized("Direction", o.Direction)
		}
	}

	if o.DraftVersionVisibility != "" {
		if _, ok := draftVisibilityTypes.lookup(o.DraftVersionVisibility); !ok {
			return notRecognized("DraftVisibilityType", o.DraftVersionVisibility)
		}
	}

	if o.EmailAlias != "" && !validation.ParseBoolean(o.EnableAssignToEmail) {
		return errors.New("emailAlias could not be set if enableAssignToEmail is not set to true. Please set enableAssignToEmail.")
	}

	if o.ListExperienceOptions != "" {
		if _, ok := listExperiences.lookup(o.ListExperienceOptions); !ok {
			return notRecognized("ListExperienceOptions", o.ListExperienceOptions)
		}
	}

	if o.MajorVersionLimit != "" {
		if _, err := validation.ParseNumber(o.MajorVersionLimit); err != nil {
			return err
		}
		if !validation.ParseBoolean(o.EnableVersioning) {
			return errors.New("majorVersionLimit option is only valid in combination with enableVersioning.")
		}
	}

	if o.MajorWithMinorVersionsLimit != "" {
		if _, err := validation.ParseNumber(o.MajorWithMinorVersionsLimit); err != nil {
			return err
		}
		if !validation.ParseBoolean(o.EnableMinorVersions) && !validation.ParseBoolean(o.EnableModeration) {
			return errors.New("majorWithMinorVersionsLimit option is only valid in combination with enableMinorVersions or enableModeration.")
		}
	}

	if o.ReadSecurity != "" && o.ReadSecurity != "1" && o.ReadSecurity != "2" {
		return fmt.Errorf("%s is not a valid readSecurity value. Allowed values are 1|2", o.ReadSecurity)
	}

	if o.WriteSecurity != "" && o.WriteSecurity != "1" && o.WriteSecurity != "2" && o.WriteSecurity != "4" {
		return fmt.Errorf("%s is not a valid writeSecurity value. Allowed values are 1|2|4", o.WriteSecurity)
	}

	return nil
}

func notRecognized(typeName, value string) error {
	return fmt.Errorf("%s option '%s' is not recognized as valid choice. Please note it is case sensitive.", typeName, value)
}

// Payload builds the request body from the supplied options. The options
// must have passed Validate.
func (o *AddOptions) Payload() map[string]any {
	body := make(map[string]any)
	for _, p := range o.properties() {
		if p.value == "" {
			continue
		}
		switch p.kind {
		case kindBoolean:
			body[p.name()] = validation.ParseBoolean(p.value)
		case kindNumber:
			n, _ := validation.ParseNumber(p.value)
			body[p.name()] = n
		case kindTemplate:
			body[p.name()], _ = listTemplateTypes.lookup(p.value)
		default:
			body[p.name()] = p.value
		}
	}
	return body
}

// Add creates the list and returns it as SharePoint reported it.
func Add(ctx context.Context, client *request.Client, log *zap.Logger, opts *AddOptions) (json.RawMessage, error) {
	log.Info("creating list", zap.String("title", opts.Title), zap.String("webUrl", opts.WebURL))

	var created json.RawMessage
	if err := client.Post(ctx, opts.WebURL+"/_api/web/lists", spo.NoMetadata, opts.Payload(), &created); err != nil {
		return nil, err
	}
	return created, nil
}
