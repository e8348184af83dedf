package list

import (
	"context"
	"testing"

	"github.com/runningdeveloper/cli-microsoft365/pkg/command"
	"github.com/runningdeveloper/cli-microsoft365/pkg/request/requesttest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	listID  = "330f29c5-5c4c-465f-9f4b-7903020ae1ce"
	viewID  = "330f29c5-5c4c-465f-9f4b-7903020ae1c1"
	fieldID = "330f29c5-5c4c-465f-9f4b-7903020ae1cf"
)

func TestViewFieldAddValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    ViewFieldAddOptions
		wantErr string
	}{
		{"valid", ViewFieldAddOptions{WebURL: webURL, ListID: listID, ViewID: viewID, FieldID: fieldID, FieldPosition: "1"}, ""},
		{"titles", ViewFieldAddOptions{WebURL: webURL, ListTitle: "Documents", ViewTitle: "All Documents", FieldTitle: "Author"}, ""},
		{"url", ViewFieldAddOptions{WebURL: "foo", ListID: listID}, "'foo' is not a valid SharePoint Online site URL."},
		{"list id", ViewFieldAddOptions{WebURL: webURL, ListID: "12345"}, "12345 is not a valid GUID"},
		{"view id", ViewFieldAddOptions{WebURL: webURL, ListID: listID, ViewID: "12345"}, "12345 is not a valid GUID"},
		{"field id", ViewFieldAddOptions{WebURL: webURL, ListID: listID, ViewID: viewID, FieldID: "12345"}, "12345 is not a valid GUID"},
		{"position", ViewFieldAddOptions{WebURL: webURL, ListID: listID, FieldPosition: "abc"}, "abc is not a number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}

func TestViewFieldAddOptionSets(t *testing.T) {
	set := map[string]bool{"listId": true, "viewTitle": true}
	err := command.CheckOptionSets(ViewFieldAddOptionSets, func(name string) bool { return set[name] })
	assert.EqualError(t, err, "Specify one of the following options: fieldId, fieldTitle.")
}

func TestAddViewFieldByID(t *testing.T) {
	listURL := webURL + "/_api/web/lists(guid'" + listID + "')"
	tr := requesttest.NewTransport().
		On("GET", listURL+"/fields/getbyid('"+fieldID+"')", 200, `{"InternalName":"Author"}`).
		On("POST", listURL+"/views('"+viewID+"')/viewfields/addviewfield('Author')", 200, `{"odata.null":true}`).
		On("POST", listURL+"/views('"+viewID+"')/viewfields/moveviewfieldto", 200, `{"odata.null":true}`)

	opts := &ViewFieldAddOptions{WebURL: webURL, ListID: listID, ViewID: viewID, FieldID: fieldID, FieldPosition: "1"}
	require.NoError(t, AddViewField(context.Background(), requesttest.NewClient(tr), zap.NewNop(), opts))

	reqs := tr.Requests()
	require.Len(t, reqs, 3)
	assert.JSONEq(t, `{"field":"Author","index":1}`, reqs[2].Body)
	for _, r := range reqs {
		assert.Equal(t, "application/json;odata=nometadata", r.Header.Get("accept"))
	}
}

func TestAddViewFieldByTitle(t *testing.T) {
	listURL := webURL + "/_api/web/lists/GetByTitle('Project%20Documents')"
	tr := requesttest.NewTransport().
		On("GET", listURL+"/fields/getbyinternalnameortitle('Created%20By')", 200, `{"InternalName":"Author"}`).
		On("POST", listURL+"/views/GetByTitle('O''Neil%20view')/viewfields/addviewfield('Author')", 200, `{"odata.null":true}`)

	opts := &ViewFieldAddOptions{WebURL: webURL, ListTitle: "Project Documents", ViewTitle: "O'Neil view", FieldTitle: "Created By"}
	require.NoError(t, AddViewField(context.Background(), requesttest.NewClient(tr), zap.NewNop(), opts))
	assert.Len(t, tr.Requests(), 2, "no move without a position")
}

func TestAddViewFieldMissingField(t *testing.T) {
	tr := requesttest.NewTransport().
		On("GET", webURL+"/_api/web/lists(guid'"+listID+"')/fields/getbyid('"+fieldID+"')", 400,
			`{"odata.error":{"code":"-2146232832, Microsoft.SharePoint.SPException","message":{"lang":"en-US","value":"Column 'Author' does not exist. It may have been deleted by another user."}}}`)

	opts := &ViewFieldAddOptions{WebURL: webURL, ListID: listID, ViewID: viewID, FieldID: fieldID}
	err := AddViewField(context.Background(), requesttest.NewClient(tr), zap.NewNop(), opts)
	assert.EqualError(t, err, "Column 'Author' does not exist. It may have been deleted by another user.")
}
