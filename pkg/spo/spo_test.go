package spo

import (
	"context"
	"testing"

	"github.com/runningdeveloper/cli-microsoft365/pkg/request/requesttest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryCache struct {
	url  string
	sets int
}

func (c *memoryCache) SpoURL() string { return c.url }

func (c *memoryCache) SetSpoURL(u string) error {
	c.url = u
	c.sets++
	return nil
}

func TestTenantURL(t *testing.T) {
	tr := requesttest.NewTransport().
		On("GET", "https://graph.microsoft.com/v1.0/sites/root?$select=webUrl", 200, `{"webUrl":"https://contoso.sharepoint.com"}`)
	client := requesttest.NewClient(tr)
	cache := &memoryCache{}

	u, err := TenantURL(context.Background(), client, cache, nil)
	require.NoError(t, err)
	assert.Equal(t, "https://contoso.sharepoint.com", u)
	assert.Equal(t, 1, cache.sets)

	u, err = AdminTenantURL(context.Background(), client, cache, nil)
	require.NoError(t, err)
	assert.Equal(t, "https://contoso-admin.sharepoint.com", u)
	assert.Len(t, tr.Requests(), 1, "second lookup is served from the cache")
}

func TestTenantURLError(t *testing.T) {
	tr := requesttest.NewTransport().
		On("GET", "https://graph.microsoft.com/v1.0/sites/root?$select=webUrl", 403, `{"error":{"code":"accessDenied","message":"Access denied"}}`)

	_, err := TenantURL(context.Background(), requesttest.NewClient(tr), &memoryCache{}, nil)
	assert.EqualError(t, err, "Access denied")
}

func TestAdminURL(t *testing.T) {
	assert.Equal(t, "https://contoso-admin.sharepoint.com", AdminURL("https://contoso.sharepoint.com"))
	assert.Equal(t, "https://contoso-admin.sharepoint.de", AdminURL("https://contoso.sharepoint.de"))
}

func TestRequestDigest(t *testing.T) {
	tr := requesttest.NewTransport().
		On("POST", "https://contoso-admin.sharepoint.com/_api/contextinfo", 200, `{"FormDigestValue":"0x1234","FormDigestTimeoutSeconds":1800}`)

	info, err := RequestDigest(context.Background(), requesttest.NewClient(tr), "https://contoso-admin.sharepoint.com")
	require.NoError(t, err)
	assert.Equal(t, "0x1234", info.FormDigestValue)
	assert.Equal(t, 1800, info.FormDigestTimeoutSeconds)
}

func TestProcessQuery(t *testing.T) {
	tr := requesttest.NewTransport().
		On("POST", "https://contoso-admin.sharepoint.com/_vti_bin/client.svc/ProcessQuery", 200,
			`[{"SchemaVersion":"15.0.0.0","LibraryVersion":"16.0.7018.1204","ErrorInfo":null},39,{"_ObjectIdentity_":"store-id"},48,{"_ObjectIdentity_":"set-id","Name":"PnP"}]`)

	res, err := ProcessQuery(context.Background(), requesttest.NewClient(tr), "https://contoso-admin.sharepoint.com", "0x1234", "<Request />")
	require.NoError(t, err)

	assert.Equal(t, "store-id", ObjectIdentity(res.After(39)))
	assert.Equal(t, "set-id", ObjectIdentity(res.Last()))
	assert.Nil(t, res.After(7))

	reqs := tr.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "0x1234", reqs[0].Header.Get("X-RequestDigest"))
	assert.Equal(t, "text/xml", reqs[0].Header.Get("Content-Type"))
	assert.Equal(t, "<Request />", reqs[0].Body)
}

func TestProcessQueryErrorInfo(t *testing.T) {
	tr := requesttest.NewTransport().
		On("POST", "https://contoso-admin.sharepoint.com/_vti_bin/client.svc/ProcessQuery", 200,
			`[{"SchemaVersion":"15.0.0.0","ErrorInfo":{"ErrorMessage":"Failed to read from or write to database. Refresh and try again.","ErrorTypeName":"Microsoft.SharePoint.Taxonomy.TermStoreOperationException"}}]`)

	_, err := ProcessQuery(context.Background(), requesttest.NewClient(tr), "https://contoso-admin.sharepoint.com", "d", "<Request />")
	assert.EqualError(t, err, "Failed to read from or write to database. Refresh and try again.")
}

func TestParseDateAndGUID(t *testing.T) {
	assert.Equal(t, "2018-10-22T13:04:16.320Z", ParseDate("/Date(1540213456320)/"))
	assert.Equal(t, "not a date", ParseDate("not a date"))
	assert.Equal(t, "7a167c47-2b37-41d0-94d0-e962c1a4f2ed", TrimGUID("/Guid(7a167c47-2b37-41d0-94d0-e962c1a4f2ed)/"))
}
