package file

import (
	"context"
	"testing"

	"github.com/runningdeveloper/cli-microsoft365/pkg/request/requesttest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	webURL = "https://contoso.sharepoint.com/sites/project-x"
	fileID = "b2307a39-e878-458b-bc90-03bc578531d6"

	sharingURL = webURL + "/_api/web/lists/getbytitle('Shared%20Documents')/items(4)/GetSharingInformation?$select=permissionsInformation&$Expand=permissionsInformation"

	sharingResponse = `{"permissionsInformation":{"hasInheritedLinks":false,"links":[{"isInherited":false,"linkDetails":{"Invitations":[{"invitedBy":null,"invitedOn":"2022-01-04T11:06:17.000Z","invitee":{"email":"john@contoso.com","id":11,"isActive":true,"isExternal":false,"name":"John Doe","principalType":1}}]}}],"principals":[{"isInherited":true,"principal":{"email":"","id":3,"isActive":true,"isExternal":false,"name":"Project X Owners","principalType":"8"}},{"isInherited":true,"principal":{"id":6,"isActive":true,"isExternal":true,"name":"Everyone","principalType":4}}]}}`
)

func TestSharingInfoValidate(t *testing.T) {
	assert.NoError(t, (&SharingInfoOptions{WebURL: webURL, ID: fileID}).Validate())
	assert.NoError(t, (&SharingInfoOptions{WebURL: webURL, URL: "/sites/project-x/Documents/Test1.docx"}).Validate())
	assert.EqualError(t, (&SharingInfoOptions{WebURL: "foo", ID: fileID}).Validate(), "'foo' is not a valid SharePoint Online site URL.")
	assert.EqualError(t, (&SharingInfoOptions{WebURL: webURL, ID: "0-9-8"}).Validate(), "0-9-8 is not a valid GUID")
}

func TestGetSharingInfoByID(t *testing.T) {
	tr := requesttest.NewTransport().
		On("GET", webURL+"/_api/web/GetFileById('"+fileID+"')/?$select=ListItemAllFields/Id,ListItemAllFields/ParentList/Title&$expand=ListItemAllFields/ParentList", 200,
			`{"ListItemAllFields":{"Id":4,"ParentList":{"Title":"Shared Documents"}}}`).
		On("POST", sharingURL, 200, sharingResponse)

	raw, err := GetSharingInfo(context.Background(), requesttest.NewClient(tr), zap.NewNop(), &SharingInfoOptions{WebURL: webURL, ID: fileID})
	require.NoError(t, err)
	assert.JSONEq(t, sharingResponse, string(raw))
}

func TestGetSharingInfoByURL(t *testing.T) {
	tr := requesttest.NewTransport().
		On("GET", webURL+"/_api/web/GetFileByServerRelativePath(decodedUrl='%2Fsites%2Fproject-x%2FShared%20Documents%2FTest1.docx')?$select=ListItemAllFields/Id,ListItemAllFields/ParentList/Title&$expand=ListItemAllFields/ParentList", 200,
			`{"ListItemAllFields":{"Id":"4","ParentList":{"Title":"Shared Documents"}}}`).
		On("POST", sharingURL, 200, sharingResponse)

	_, err := GetSharingInfo(context.Background(), requesttest.NewClient(tr), zap.NewNop(),
		&SharingInfoOptions{WebURL: webURL, URL: "/sites/project-x/Shared Documents/Test1.docx"})
	require.NoError(t, err)
	assert.Len(t, tr.Requests(), 2)
}

func TestGetSharingInfoMissingFile(t *testing.T) {
	tr := requesttest.NewTransport().
		On("GET", webURL+"/_api/web/GetFileById('"+fileID+"')/?$select=ListItemAllFields/Id,ListItemAllFields/ParentList/Title&$expand=ListItemAllFields/ParentList", 404,
			`{"odata.error":{"code":"-2147024894, System.IO.FileNotFoundException","message":{"lang":"en-US","value":"File Not Found."}}}`)

	_, err := GetSharingInfo(context.Background(), requesttest.NewClient(tr), zap.NewNop(), &SharingInfoOptions{WebURL: webURL, ID: fileID})
	assert.EqualError(t, err, "File Not Found.")
}

func TestReport(t *testing.T) {
	rows, err := Report([]byte(sharingResponse))
	require.NoError(t, err)
	assert.Equal(t, []SharingEntry{
		{SharedWith: "John Doe", IsActive: true, IsExternal: false, PrincipalType: "User"},
		{SharedWith: "Project X Owners", IsActive: true, IsExternal: false, PrincipalType: "SharePointGroup"},
		{SharedWith: "Everyone", IsActive: true, IsExternal: true, PrincipalType: "SecurityGroup"},
	}, rows)

	rows, err = Report([]byte(`{"permissionsInformation":{"links":[],"principals":[]}}`))
	require.NoError(t, err)
	assert.Empty(t, rows)
}
