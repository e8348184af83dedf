// Package request sends authenticated requests to SharePoint Online and
// Microsoft Graph.
package request

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultUserAgent identifies the CLI to Microsoft 365.
const DefaultUserAgent = "cli-microsoft365-go"

// DefaultTimeout bounds a single request.
const DefaultTimeout = 100 * time.Second

// TokenSource hands out access tokens for a resource such as
// https://contoso.sharepoint.com or https://graph.microsoft.com.
type TokenSource interface {
	AccessToken(ctx context.Context, resource string) (string, error)
}

// Client issues requests one at a time. It never retries.
type Client struct {
	HTTPClient *http.Client
	Tokens     TokenSource
	UserAgent  string
	Logger     *zap.Logger
}

// NewClient creates a client that authenticates with tokens.
func NewClient(tokens TokenSource, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		HTTPClient: &http.Client{Timeout: DefaultTimeout},
		Tokens:     tokens,
		UserAgent:  DefaultUserAgent,
		Logger:     logger,
	}
}

// Request describes one call. Body is sent verbatim when it is a string or
// []byte, otherwise it is marshaled to JSON.
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    any
}

// Resource returns the token audience for rawURL: its scheme and host.
func Resource(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid request URL %q: %w", rawURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid request URL %q: not absolute", rawURL)
	}
	return u.Scheme + "://" + u.Host, nil
}

// Get sends a GET request and decodes the response into out.
func (c *Client) Get(ctx context.Context, rawURL string, headers map[string]string, out any) error {
	body, err := c.Do(ctx, &Request{Method: http.MethodGet, URL: rawURL, Headers: headers})
	if err != nil {
		return err
	}
	return decode(body, out)
}

// Post sends a POST request with body and decodes the response into out.
func (c *Client) Post(ctx context.Context, rawURL string, headers map[string]string, body, out any) error {
	respBody, err := c.Do(ctx, &Request{Method: http.MethodPost, URL: rawURL, Headers: headers, Body: body})
	if err != nil {
		return err
	}
	return decode(respBody, out)
}

// Do sends r and returns the response body. Non-2xx responses come back
// as *Error.
func (c *Client) Do(ctx context.Context, r *Request) ([]byte, error) {
	log := c.Logger
	if log == nil {
		log = zap.NewNop()
	}

	var payload io.Reader
	contentType := ""
	switch b := r.Body.(type) {
	case nil:
	case string:
		payload = bytes.NewBufferString(b)
		contentType = "text/xml"
	case []byte:
		payload = bytes.NewReader(b)
		contentType = "text/xml"
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		payload = bytes.NewReader(data)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, r.URL, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("User-Agent", c.userAgent())
	req.Header.Set("client-request-id", uuid.NewString())
	for k, v := range r.Headers {
		req.Header.Set(k, v)
	}

	if c.Tokens != nil {
		resource, err := Resource(r.URL)
		if err != nil {
			return nil, err
		}
		token, err := c.Tokens.AccessToken(ctx, resource)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	log.Debug("request", zap.String("method", r.Method), zap.String("url", r.URL))
	start := time.Now()

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	log.Debug("response",
		zap.String("url", r.URL),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, parseError(resp.StatusCode, body)
	}
	return body, nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c *Client) userAgent() string {
	if c.UserAgent != "" {
		return c.UserAgent
	}
	return DefaultUserAgent
}

// decode stores body in out. *json.RawMessage and *[]byte receive the bytes
// as they are; anything else is JSON-decoded with numbers kept as json.Number.
func decode(body []byte, out any) error {
	switch target := out.(type) {
	case nil:
		return nil
	case *json.RawMessage:
		*target = append((*target)[:0], body...)
		return nil
	case *[]byte:
		*target = append((*target)[:0], body...)
		return nil
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
