package term

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/runningdeveloper/cli-microsoft365/pkg/request/requesttest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	adminURL     = "https://contoso-admin.sharepoint.com"
	processQuery = adminURL + "/_vti_bin/client.svc/ProcessQuery"
	termSetID    = "7a167c47-2b37-41d0-94d0-e962c1a4f2ed"

	createResponse = `[{"SchemaVersion":"15.0.0.0","LibraryVersion":"16.0.7018.1204","ErrorInfo":null,"TraceCorrelationId":"9d81a09e-a0ca-4000-8e56-eb4a6a42e4f4"},35,{"IsNull":false},36,{"_ObjectIdentity_":"session-identity"},38,{"IsNull":false},39,{"_ObjectIdentity_":"store-identity"},41,{"IsNull":false},43,{"IsNull":false},44,{"_ObjectIdentity_":"group-identity"},46,{"IsNull":false},47,{"_ObjectIdentity_":"set-identity"},48,{"_ObjectType_":"SP.Taxonomy.TermSet","_ObjectIdentity_":"set-identity","CreatedDate":"/Date(1540213456320)/","Id":"/Guid(7a167c47-2b37-41d0-94d0-e962c1a4f2ed)/","LastModifiedDate":"/Date(1540213456320)/","Name":"PnP-Organizations","CustomProperties":{},"Description":"","IsAvailableForTagging":true,"Owner":"i:0#.f|membership|admin@contoso.onmicrosoft.com"}]`
)

type cache struct{ url string }

func (c *cache) SpoURL() string { return c.url }

func (c *cache) SetSpoURL(u string) error {
	c.url = u
	return nil
}

func newTransport() *requesttest.Transport {
	return requesttest.NewTransport().
		On("POST", adminURL+"/_api/contextinfo", 200, `{"FormDigestValue":"ABC"}`)
}

func TestSetAddValidate(t *testing.T) {
	assert.NoError(t, (&SetAddOptions{Name: "PnP", TermGroupName: "People"}).Validate())
	assert.EqualError(t, (&SetAddOptions{Name: "PnP", ID: "invalid"}).Validate(), "invalid is not a valid GUID")
	assert.EqualError(t, (&SetAddOptions{Name: "PnP", TermGroupID: "invalid"}).Validate(), "invalid is not a valid GUID")
	assert.NoError(t, (&SetAddOptions{Name: "PnP", CustomProperties: `{"Prop1":"Value1"}`}).Validate())

	err := (&SetAddOptions{Name: "PnP", CustomProperties: `{"Prop1":"Value1"`}).Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Error when parsing customProperties JSON: ")
}

func TestAddSet(t *testing.T) {
	tr := newTransport().On("POST", processQuery, 200, createResponse)

	opts := &SetAddOptions{Name: "PnP-Organizations", TermGroupName: "PnPTermSets", ID: termSetID}
	got, err := AddSet(context.Background(), requesttest.NewClient(tr), &cache{url: "https://contoso.sharepoint.com"}, zap.NewNop(), opts)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"CreatedDate":           "2018-10-22T13:04:16.320Z",
		"Id":                    termSetID,
		"LastModifiedDate":      "2018-10-22T13:04:16.320Z",
		"Name":                  "PnP-Organizations",
		"CustomProperties":      map[string]any{},
		"Description":           "",
		"IsAvailableForTagging": true,
		"Owner":                 "i:0#.f|membership|admin@contoso.onmicrosoft.com",
	}, got)

	reqs := tr.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, "ABC", reqs[1].Header.Get("X-RequestDigest"))
	assert.Equal(t, requestHeader+`<Actions><ObjectPath Id="35" ObjectPathId="34" /><ObjectIdentityQuery Id="36" ObjectPathId="34" /><ObjectPath Id="38" ObjectPathId="37" /><ObjectIdentityQuery Id="39" ObjectPathId="37" /><ObjectPath Id="41" ObjectPathId="40" /><ObjectPath Id="43" ObjectPathId="42" /><ObjectIdentityQuery Id="44" ObjectPathId="42" /><ObjectPath Id="46" ObjectPathId="45" /><ObjectIdentityQuery Id="47" ObjectPathId="45" /><Query Id="48" ObjectPathId="45"><Query SelectAllProperties="true"><Properties /></Query></Query></Actions><ObjectPaths><StaticMethod Id="34" Name="GetTaxonomySession" TypeId="{981cbc68-9edc-4f8d-872f-71146fcbb84f}" /><Method Id="37" ParentId="34" Name="GetDefaultSiteCollectionTermStore" /><Property Id="40" ParentId="37" Name="Groups" /><Method Id="42" ParentId="40" Name="GetByName"><Parameters><Parameter Type="String">PnPTermSets</Parameter></Parameters></Method><Method Id="45" ParentId="42" Name="CreateTermSet"><Parameters><Parameter Type="String">PnP-Organizations</Parameter><Parameter Type="Guid">{7a167c47-2b37-41d0-94d0-e962c1a4f2ed}</Parameter><Parameter Type="Int32">1033</Parameter></Parameters></Method></ObjectPaths></Request>`, reqs[1].Body)
}

func TestAddSetByGroupIDGeneratesID(t *testing.T) {
	restore := newID
	newID = func() string { return "00000000-0000-4000-8000-000000000001" }
	defer func() { newID = restore }()

	tr := newTransport().On("POST", processQuery, 200, createResponse)
	opts := &SetAddOptions{Name: "A & B", TermGroupID: "0e8f395e-ff58-4d45-9ff7-e331ab728beb"}
	_, err := AddSet(context.Background(), requesttest.NewClient(tr), &cache{url: "https://contoso.sharepoint.com"}, zap.NewNop(), opts)
	require.NoError(t, err)

	body := tr.Requests()[1].Body
	assert.Contains(t, body, `<Method Id="42" ParentId="40" Name="GetById"><Parameters><Parameter Type="Guid">{0e8f395e-ff58-4d45-9ff7-e331ab728beb}</Parameter></Parameters></Method>`)
	assert.Contains(t, body, `<Parameter Type="String">A &amp; B</Parameter><Parameter Type="Guid">{00000000-0000-4000-8000-000000000001}</Parameter>`)
}

func TestAddSetWithProperties(t *testing.T) {
	tr := newTransport().On("POST", processQuery, 200, createResponse)

	opts := &SetAddOptions{
		Name:             "PnP-Organizations",
		TermGroupName:    "PnPTermSets",
		ID:               termSetID,
		Description:      "Term set <description>",
		CustomProperties: `{"Prop2":"Value2","Prop1":"Value1"}`,
	}
	got, err := AddSet(context.Background(), requesttest.NewClient(tr), &cache{url: "https://contoso.sharepoint.com"}, zap.NewNop(), opts)
	require.NoError(t, err)

	assert.Equal(t, "Term set <description>", got["Description"])
	assert.Equal(t, map[string]any{"Prop1": "Value1", "Prop2": "Value2"}, got["CustomProperties"])

	reqs := tr.Requests()
	require.Len(t, reqs, 3)
	assert.Equal(t, requestHeader+`<Actions><SetProperty Id="127" ObjectPathId="117" Name="Description"><Parameter Type="String">Term set &lt;description&gt;</Parameter></SetProperty><Method Name="SetCustomProperty" Id="128" ObjectPathId="117"><Parameters><Parameter Type="String">Prop2</Parameter><Parameter Type="String">Value2</Parameter></Parameters></Method><Method Name="SetCustomProperty" Id="129" ObjectPathId="117"><Parameters><Parameter Type="String">Prop1</Parameter><Parameter Type="String">Value1</Parameter></Parameters></Method><Method Name="CommitAll" Id="131" ObjectPathId="109" /></Actions><ObjectPaths><Identity Id="117" Name="set-identity" /><Identity Id="109" Name="store-identity" /></ObjectPaths></Request>`, reqs[2].Body)
}

func TestAddSetDiscoversTenantURL(t *testing.T) {
	tr := newTransport().
		On("GET", "https://graph.microsoft.com/v1.0/sites/root?$select=webUrl", 200, `{"webUrl":"https://contoso.sharepoint.com"}`).
		On("POST", processQuery, 200, createResponse)

	c := &cache{}
	_, err := AddSet(context.Background(), requesttest.NewClient(tr), c, zap.NewNop(), &SetAddOptions{Name: "PnP", TermGroupName: "G", ID: termSetID})
	require.NoError(t, err)
	assert.Equal(t, "https://contoso.sharepoint.com", c.url)
}

func TestAddSetErrorInfo(t *testing.T) {
	tr := newTransport().On("POST", processQuery, 200,
		`[{"SchemaVersion":"15.0.0.0","LibraryVersion":"16.0.7018.1204","ErrorInfo":{"ErrorMessage":"A term set with the same name already exists.","ErrorValue":null,"TraceCorrelationId":"","ErrorCode":-2146233088,"ErrorTypeName":"System.InvalidOperationException"},"TraceCorrelationId":""}]`)

	_, err := AddSet(context.Background(), requesttest.NewClient(tr), &cache{url: "https://contoso.sharepoint.com"}, zap.NewNop(), &SetAddOptions{Name: "PnP", TermGroupName: "G"})
	assert.EqualError(t, err, "A term set with the same name already exists.")
}

func TestParseCustomPropertiesKeepsOrder(t *testing.T) {
	props, err := parseCustomProperties(`{"b":"1","a":2}`)
	require.NoError(t, err)
	assert.Equal(t, []customProperty{{"b", "1", "1"}, {"a", "2", json.Number("2")}}, props)

	_, err = parseCustomProperties(`["a"]`)
	assert.Error(t, err)

	_, err = parseCustomProperties(`{"a":`)
	assert.Error(t, err)

	_, err = parseCustomProperties(`{"a":"1"} {}`)
	assert.Error(t, err)
}

func TestParseCustomPropertiesDuplicateKeys(t *testing.T) {
	props, err := parseCustomProperties(`{"a":"1","b":"x","a":"2","n":null}`)
	require.NoError(t, err)
	assert.Equal(t, []customProperty{{"a", "2", "2"}, {"b", "x", "x"}, {"n", "", nil}}, props)
}

func TestAddSetDuplicateAndNullProperties(t *testing.T) {
	tr := newTransport().On("POST", processQuery, 200, createResponse)

	opts := &SetAddOptions{Name: "PnP-Organizations", TermGroupName: "PnPTermSets", ID: termSetID, CustomProperties: `{"a":"1","a":"2","n":null}`}
	got, err := AddSet(context.Background(), requesttest.NewClient(tr), &cache{url: "https://contoso.sharepoint.com"}, zap.NewNop(), opts)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": "2", "n": nil}, got["CustomProperties"])

	reqs := tr.Requests()
	require.Len(t, reqs, 3)
	body := reqs[2].Body
	assert.Equal(t, 2, strings.Count(body, `Name="SetCustomProperty"`))
	assert.Contains(t, body, `<Method Name="SetCustomProperty" Id="127" ObjectPathId="117"><Parameters><Parameter Type="String">a</Parameter><Parameter Type="String">2</Parameter></Parameters></Method>`)
	assert.Contains(t, body, `<Method Name="SetCustomProperty" Id="128" ObjectPathId="117"><Parameters><Parameter Type="String">n</Parameter><Parameter Type="String"></Parameter></Parameters></Method>`)
}

func TestAddSetPropertiesErrorInfo(t *testing.T) {
	tr := newTransport().
		OnOnce("POST", processQuery, 200, createResponse).
		On("POST", processQuery, 200,
			`[{"SchemaVersion":"15.0.0.0","LibraryVersion":"16.0.7018.1204","ErrorInfo":{"ErrorMessage":"Custom property names cannot contain the vertical bar character.","ErrorValue":null,"TraceCorrelationId":"","ErrorCode":-2146233088,"ErrorTypeName":"System.ArgumentException"},"TraceCorrelationId":""}]`)

	opts := &SetAddOptions{Name: "PnP", TermGroupName: "G", ID: termSetID, CustomProperties: `{"a|b":"1"}`}
	_, err := AddSet(context.Background(), requesttest.NewClient(tr), &cache{url: "https://contoso.sharepoint.com"}, zap.NewNop(), opts)
	assert.EqualError(t, err, "Custom property names cannot contain the vertical bar character.")
	assert.Len(t, tr.Requests(), 3)
}
