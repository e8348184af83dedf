package consent

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const consentURL = "https://login.microsoftonline.com/common/oauth2/authorize?client_id=31359c7f-bd7e-475c-86db-fdb8c937548e&response_type=code&prompt=admin_consent"

func TestURL(t *testing.T) {
	assert.Equal(t, consentURL, URL("common", "31359c7f-bd7e-475c-86db-fdb8c937548e"))
	assert.Equal(t,
		"https://login.microsoftonline.com/contoso.onmicrosoft.com/oauth2/authorize?client_id=app&response_type=code&prompt=admin_consent",
		URL("contoso.onmicrosoft.com", "app"))
}

func TestReconsentShowsLink(t *testing.T) {
	var out bytes.Buffer
	opened := false
	err := Reconsent(&out, "common", "31359c7f-bd7e-475c-86db-fdb8c937548e", false, func(string) error {
		opened = true
		return nil
	})
	require.NoError(t, err)
	assert.False(t, opened)
	assert.Equal(t, "To re-consent the PnP Microsoft 365 Management Shell Azure AD application navigate in your web browser to "+consentURL+"\n", out.String())
}

func TestReconsentOpensBrowser(t *testing.T) {
	var out bytes.Buffer
	var opened string
	err := Reconsent(&out, "common", "31359c7f-bd7e-475c-86db-fdb8c937548e", true, func(u string) error {
		opened = u
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, consentURL, opened)
	assert.Equal(t, "Opening the following page in your browser: "+consentURL+"\n", out.String())
}

func TestReconsentOpenFailure(t *testing.T) {
	var out bytes.Buffer
	err := Reconsent(&out, "common", "31359c7f-bd7e-475c-86db-fdb8c937548e", true, func(string) error {
		return errors.New("An error occurred")
	})
	assert.EqualError(t, err, "An error occurred")
	assert.Contains(t, out.String(), "Opening the following page in your browser: "+consentURL)
}
