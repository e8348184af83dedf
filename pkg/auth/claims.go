package auth

import (
	"fmt"

	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
)

// Entra ID signs access tokens with RS256.
var tokenAlgorithms = []jose.SignatureAlgorithm{jose.RS256}

// Claims are the parts of an Entra ID access token the CLI reports on.
type Claims struct {
	jwt.Claims
	UPN               string `json:"upn,omitempty"`
	UniqueName        string `json:"unique_name,omitempty"`
	PreferredUsername string `json:"preferred_username,omitempty"`
	AppDisplayName    string `json:"app_displayname,omitempty"`
	AppID             string `json:"appid,omitempty"`
	TenantID          string `json:"tid,omitempty"`
	ObjectID          string `json:"oid,omitempty"`
}

// ParseClaims decodes the claims of an access token. The signature is not
// verified: the token is only ever presented back to the service that issued it.
func ParseClaims(token string) (*Claims, error) {
	tok, err := jwt.ParseSigned(token, tokenAlgorithms)
	if err != nil {
		return nil, fmt.Errorf("failed to parse access token: %w", err)
	}
	var c Claims
	if err := tok.UnsafeClaimsWithoutVerification(&c); err != nil {
		return nil, fmt.Errorf("failed to read access token claims: %w", err)
	}
	return &c, nil
}

// Identity is the user principal name for delegated tokens and the app
// display name for app-only tokens.
func (c *Claims) Identity() string {
	for _, v := range []string{c.UPN, c.UniqueName, c.PreferredUsername, c.AppDisplayName} {
		if v != "" {
			return v
		}
	}
	return ""
}

// IdentityID is the object id of the user or the app id for app-only tokens.
func (c *Claims) IdentityID() string {
	if c.ObjectID != "" {
		return c.ObjectID
	}
	return c.AppID
}
