// Package requesttest provides a scripted http.RoundTripper for testing
// commands against exact SharePoint and Graph URLs.
package requesttest

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/runningdeveloper/cli-microsoft365/pkg/request"
)

// Recorded is a request seen by Transport.
type Recorded struct {
	Method string
	URL    string
	Header http.Header
	Body   string
}

type route struct {
	method string
	url    string
	status int
	body   string
	once   bool
	used   bool
}

// Transport answers requests whose method and full URL match a registered
// route. Anything else gets a 500 with body "Invalid request".
type Transport struct {
	mu       sync.Mutex
	routes   []route
	requests []Recorded
}

// NewTransport returns an empty Transport.
func NewTransport() *Transport {
	return &Transport{}
}

// On registers a response for method and url.
func (t *Transport) On(method, url string, status int, body string) *Transport {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.routes = append(t.routes, route{method: method, url: url, status: status, body: body})
	return t
}

// OnOnce registers a response that answers only the first matching
// request. Later requests fall through to the next matching route.
func (t *Transport) OnOnce(method, url string, status int, body string) *Transport {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.routes = append(t.routes, route{method: method, url: url, status: status, body: body, once: true})
	return t
}

// Requests returns the requests received so far, in order.
func (t *Transport) Requests() []Recorded {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Recorded, len(t.requests))
	copy(out, t.requests)
	return out
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	var body string
	if req.Body != nil {
		data, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		body = string(data)
	}

	t.mu.Lock()
	t.requests = append(t.requests, Recorded{
		Method: req.Method,
		URL:    req.URL.String(),
		Header: req.Header.Clone(),
		Body:   body,
	})
	status, respBody := http.StatusInternalServerError, "Invalid request"
	for i := range t.routes {
		r := &t.routes[i]
		if r.used || r.method != req.Method || r.url != req.URL.String() {
			continue
		}
		status, respBody = r.status, r.body
		r.used = r.once
		break
	}
	t.mu.Unlock()

	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(respBody)),
		Request:    req,
	}, nil
}

// Tokens returns the same access token for every resource and remembers
// which resources were asked for.
type Tokens struct {
	mu        sync.Mutex
	Token     string
	Resources []string
}

// AccessToken implements request.TokenSource.
func (s *Tokens) AccessToken(_ context.Context, resource string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Resources = append(s.Resources, resource)
	if s.Token == "" {
		return "ABC", nil
	}
	return s.Token, nil
}

// NewClient returns a request.Client wired to t with a fixed token.
func NewClient(t *Transport) *request.Client {
	c := request.NewClient(&Tokens{}, nil)
	c.HTTPClient = &http.Client{Transport: t}
	return c
}
