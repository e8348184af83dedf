// Package spo holds what SharePoint Online commands share: tenant URL
// discovery, form digests and CSOM ProcessQuery calls.
package spo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/runningdeveloper/cli-microsoft365/pkg/request"
	"go.uber.org/zap"
)

// ApplicationName is reported to SharePoint in CSOM requests.
const ApplicationName = "CLI for Microsoft 365 (Go)"

// NoMetadata asks SharePoint REST for plain JSON without OData annotations.
var NoMetadata = map[string]string{"accept": "application/json;odata=nometadata"}

const rootSiteURL = "https://graph.microsoft.com/v1.0/sites/root?$select=webUrl"

// URLCache remembers the tenant's root SharePoint URL between invocations.
type URLCache interface {
	SpoURL() string
	SetSpoURL(spoURL string) error
}

// TenantURL returns the root SharePoint URL, e.g. https://contoso.sharepoint.com.
// It asks Microsoft Graph the first time and caches the answer.
func TenantURL(ctx context.Context, client *request.Client, cache URLCache, logger *zap.Logger) (string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if u := cache.SpoURL(); u != "" {
		logger.Debug("using cached SharePoint URL", zap.String("url", u))
		return u, nil
	}

	logger.Debug("discovering SharePoint URL")
	var site struct {
		WebURL string `json:"webUrl"`
	}
	if err := client.Get(ctx, rootSiteURL, nil, &site); err != nil {
		return "", err
	}
	if site.WebURL == "" {
		return "", errors.New("failed to determine the SharePoint URL of the tenant")
	}
	if err := cache.SetSpoURL(site.WebURL); err != nil {
		logger.Warn("failed to cache SharePoint URL", zap.Error(err))
	}
	return site.WebURL, nil
}

var tenantLabel = regexp.MustCompile(`^(https://)([^.]+)(.*)$`)

// AdminURL turns https://contoso.sharepoint.com into
// https://contoso-admin.sharepoint.com.
func AdminURL(spoURL string) string {
	return tenantLabel.ReplaceAllString(spoURL, "${1}${2}-admin${3}")
}

// AdminTenantURL resolves the tenant admin URL.
func AdminTenantURL(ctx context.Context, client *request.Client, cache URLCache, logger *zap.Logger) (string, error) {
	u, err := TenantURL(ctx, client, cache, logger)
	if err != nil {
		return "", err
	}
	return AdminURL(u), nil
}

// ContextInfo is the reply of _api/contextinfo.
type ContextInfo struct {
	FormDigestValue          string `json:"FormDigestValue"`
	FormDigestTimeoutSeconds int    `json:"FormDigestTimeoutSeconds"`
	WebFullURL               string `json:"WebFullUrl"`
}

// RequestDigest fetches a form digest for siteURL.
func RequestDigest(ctx context.Context, client *request.Client, siteURL string) (*ContextInfo, error) {
	var info ContextInfo
	if err := client.Post(ctx, siteURL+"/_api/contextinfo", NoMetadata, nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// ClientSvcResponse is a decoded ProcessQuery reply: a header object followed
// by action ids and their results.
type ClientSvcResponse []json.RawMessage

type clientSvcHeader struct {
	SchemaVersion  string `json:"SchemaVersion"`
	LibraryVersion string `json:"LibraryVersion"`
	ErrorInfo      *struct {
		ErrorMessage  string `json:"ErrorMessage"`
		ErrorTypeName string `json:"ErrorTypeName"`
	} `json:"ErrorInfo"`
}

// ProcessQuery posts a CSOM request to siteURL. An ErrorInfo in the reply
// header is returned as an error carrying its ErrorMessage.
func ProcessQuery(ctx context.Context, client *request.Client, siteURL, digest, body string) (ClientSvcResponse, error) {
	raw, err := client.Do(ctx, &request.Request{
		Method:  "POST",
		URL:     siteURL + "/_vti_bin/client.svc/ProcessQuery",
		Headers: map[string]string{"X-RequestDigest": digest},
		Body:    body,
	})
	if err != nil {
		return nil, err
	}
	return ParseClientSvcResponse(raw)
}

// ParseClientSvcResponse decodes a ProcessQuery reply and surfaces its error.
func ParseClientSvcResponse(raw []byte) (ClientSvcResponse, error) {
	var res ClientSvcResponse
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("failed to parse ProcessQuery response: %w", err)
	}
	if len(res) == 0 {
		return nil, errors.New("empty ProcessQuery response")
	}
	var header clientSvcHeader
	if err := json.Unmarshal(res[0], &header); err != nil {
		return nil, fmt.Errorf("failed to parse ProcessQuery response: %w", err)
	}
	if header.ErrorInfo != nil {
		return nil, errors.New(header.ErrorInfo.ErrorMessage)
	}
	return res, nil
}

// Last returns the final element, which holds the result of the last query.
func (r ClientSvcResponse) Last() json.RawMessage {
	if len(r) == 0 {
		return nil
	}
	return r[len(r)-1]
}

// After returns the element following the action id, or nil.
func (r ClientSvcResponse) After(actionID int) json.RawMessage {
	want := []byte(strconv.Itoa(actionID))
	for i := 0; i+1 < len(r); i++ {
		if bytes.Equal(bytes.TrimSpace(r[i]), want) {
			return r[i+1]
		}
	}
	return nil
}

// ObjectIdentity reads _ObjectIdentity_ from a CSOM object.
func ObjectIdentity(obj json.RawMessage) string {
	var o struct {
		Identity string `json:"_ObjectIdentity_"`
	}
	if err := json.Unmarshal(obj, &o); err != nil {
		return ""
	}
	return o.Identity
}

// ParseDate converts a CSOM "/Date(1540213456000)/" value to ISO 8601 UTC
// with milliseconds. Other values are returned unchanged.
func ParseDate(v string) string {
	ms := strings.TrimSuffix(strings.TrimPrefix(v, "/Date("), ")/")
	n, err := strconv.ParseInt(ms, 10, 64)
	if err != nil {
		return v
	}
	return time.UnixMilli(n).UTC().Format("2006-01-02T15:04:05.000Z")
}

// TrimGUID strips the CSOM "/Guid(...)/" wrapper.
func TrimGUID(v string) string {
	return strings.TrimSuffix(strings.TrimPrefix(v, "/Guid("), ")/")
}
