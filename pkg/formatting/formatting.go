// Package formatting encodes values for SharePoint and Microsoft Graph URLs
// and CSOM request bodies.
package formatting

import (
	"strings"
)

const upperhex = "0123456789ABCDEF"

// EncodeURIComponent percent-encodes s the way browsers encode a URI
// component: everything except A-Z a-z 0-9 - _ . ! ~ * ' ( ) is escaped as
// UTF-8 bytes.
func EncodeURIComponent(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if unreservedComponent(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&15])
	}
	return b.String()
}

func unreservedComponent(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}

// EncodeQueryParameter prepares a value for use inside a quoted OData string
// literal: single quotes are doubled, then the result is URI-component encoded.
func EncodeQueryParameter(s string) string {
	return EncodeURIComponent(strings.ReplaceAll(s, "'", "''"))
}

var xmlReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// EscapeXML escapes s for use in CSOM XML text and attribute values.
func EscapeXML(s string) string {
	return xmlReplacer.Replace(s)
}
