// Package consent builds the admin consent link for the CLI's Entra ID
// application and optionally opens it in a browser.
package consent

import (
	"fmt"
	"io"
	"net/url"

	"github.com/pkg/browser"
)

// Opener opens a URL for the user.
type Opener func(rawURL string) error

// OpenBrowser opens rawURL in the default browser. The launcher's own
// output is discarded so it does not mix with command output.
func OpenBrowser(rawURL string) error {
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard
	return browser.OpenURL(rawURL)
}

// URL returns the admin consent page for clientID in tenant.
func URL(tenant, clientID string) string {
	return fmt.Sprintf("https://login.microsoftonline.com/%s/oauth2/authorize?client_id=%s&response_type=code&prompt=admin_consent",
		url.PathEscape(tenant), url.QueryEscape(clientID))
}

// Reconsent writes the consent link to w. With autoOpen it also opens the
// link using open; a failure to open is returned.
func Reconsent(w io.Writer, tenant, clientID string, autoOpen bool, open Opener) error {
	link := URL(tenant, clientID)
	if !autoOpen {
		_, err := fmt.Fprintf(w, "To re-consent the PnP Microsoft 365 Management Shell Azure AD application navigate in your web browser to %s\n", link)
		return err
	}

	if _, err := fmt.Fprintf(w, "Opening the following page in your browser: %s\n", link); err != nil {
		return err
	}
	if open == nil {
		open = OpenBrowser
	}
	return open(link)
}
