// Package auth logs in to Microsoft Entra ID and hands out access tokens
// per resource.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultAuthority is the Entra ID login endpoint.
const DefaultAuthority = "https://login.microsoftonline.com"

// GraphResource is the resource tokens are first requested for at login.
const GraphResource = "https://graph.microsoft.com"

// expiryMargin is how long before expiry a cached token stops being used.
const expiryMargin = 60 * time.Second

const deviceCodeGrant = "urn:ietf:params:oauth:grant-type:device_code"

// Service manages the stored connection and acquires tokens.
type Service struct {
	Store      *FileStore
	HTTPClient *http.Client
	Authority  string
	Logger     *zap.Logger

	// Now and Sleep are replaced in tests.
	Now   func() time.Time
	Sleep func(ctx context.Context, d time.Duration) error

	mu   sync.Mutex
	conn *Connection
}

// NewService creates a service backed by store.
func NewService(store *FileStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		Store:      store,
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
		Authority:  DefaultAuthority,
		Logger:     logger,
		Now:        time.Now,
		Sleep:      sleep,
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// tokenResponse is the identity platform's token endpoint payload.
type tokenResponse struct {
	TokenType    string      `json:"token_type"`
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	ExpiresIn    json.Number `json:"expires_in"`
}

// oauthError is the identity platform's error payload.
type oauthError struct {
	Code        string `json:"error"`
	Description string `json:"error_description"`
}

func (e *oauthError) Error() string {
	if e.Description != "" {
		return e.Description
	}
	return e.Code
}

// DeviceCode is the prompt returned when a device code login starts.
type DeviceCode struct {
	UserCode        string      `json:"user_code"`
	DeviceCode      string      `json:"device_code"`
	VerificationURI string      `json:"verification_uri"`
	ExpiresIn       json.Number `json:"expires_in"`
	Interval        json.Number `json:"interval"`
	Message         string      `json:"message"`
}

// LoginDeviceCode runs the device code flow for appID in tenant. prompt is
// called once with the code the user must enter.
func (s *Service) LoginDeviceCode(ctx context.Context, appID, tenant string, prompt func(DeviceCode) error) (*Connection, error) {
	form := url.Values{
		"client_id": {appID},
		"scope":     {GraphResource + "/.default offline_access"},
	}
	var dc DeviceCode
	if err := s.post(ctx, s.endpoint(tenant, "devicecode"), form, &dc); err != nil {
		return nil, fmt.Errorf("failed to start device code login: %w", err)
	}
	if err := prompt(dc); err != nil {
		return nil, err
	}

	interval := seconds(dc.Interval, 5)
	deadline := s.Now().Add(seconds(dc.ExpiresIn, 900))

	for {
		if err := s.Sleep(ctx, interval); err != nil {
			return nil, err
		}
		if s.Now().After(deadline) {
			return nil, errors.New("the device code expired before the login completed")
		}

		var tok tokenResponse
		err := s.post(ctx, s.endpoint(tenant, "token"), url.Values{
			"grant_type":  {deviceCodeGrant},
			"client_id":   {appID},
			"device_code": {dc.DeviceCode},
		}, &tok)

		var oerr *oauthError
		switch {
		case err == nil:
			conn := &Connection{
				AuthType:     AuthTypeDeviceCode,
				AppID:        appID,
				Tenant:       tenant,
				RefreshToken: tok.RefreshToken,
				AccessTokens: map[string]AccessToken{},
			}
			s.remember(conn, GraphResource, tok)
			if err := s.save(conn); err != nil {
				return nil, err
			}
			return conn, nil
		case errors.As(err, &oerr) && oerr.Code == "authorization_pending":
			s.Logger.Debug("waiting for device code login")
		case errors.As(err, &oerr) && oerr.Code == "slow_down":
			interval += 5 * time.Second
		default:
			return nil, err
		}
	}
}

// LoginSecret logs in as appID with a client secret.
func (s *Service) LoginSecret(ctx context.Context, appID, tenant, secret string) (*Connection, error) {
	if secret == "" {
		return nil, errors.New("Specify the client secret with --secret or M365_CLIENT_SECRET")
	}
	if tenant == "" || tenant == "common" {
		return nil, errors.New("Specify the tenant ID or name when logging in with a client secret")
	}
	conn := &Connection{
		AuthType:     AuthTypeSecret,
		AppID:        appID,
		Tenant:       tenant,
		ClientSecret: secret,
		AccessTokens: map[string]AccessToken{},
	}
	tok, err := s.clientCredentials(ctx, conn, GraphResource)
	if err != nil {
		return nil, err
	}
	s.remember(conn, GraphResource, tok)
	if err := s.save(conn); err != nil {
		return nil, err
	}
	return conn, nil
}

// Logout forgets the stored connection.
func (s *Service) Logout() error {
	s.mu.Lock()
	s.conn = nil
	s.mu.Unlock()
	return s.Store.Clear()
}

// Status describes the current connection.
type Status struct {
	ConnectedAs string `json:"connectedAs"`
	AuthType    string `json:"authType"`
	AppID       string `json:"appId"`
	AppTenant   string `json:"appTenant"`
}

// Status returns the current connection or ErrNotLoggedIn.
func (s *Service) Status() (*Status, error) {
	conn, err := s.connection()
	if err != nil {
		return nil, err
	}
	return &Status{
		ConnectedAs: conn.Identity,
		AuthType:    conn.AuthType,
		AppID:       conn.AppID,
		AppTenant:   conn.Tenant,
	}, nil
}

// AccessToken returns a token for resource, refreshing it when it is about
// to expire.
func (s *Service) AccessToken(ctx context.Context, resource string) (string, error) {
	conn, err := s.connection()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	cached, ok := conn.AccessTokens[resource]
	s.mu.Unlock()
	if ok && cached.ExpiresOn.After(s.Now().Add(expiryMargin)) {
		return cached.Value, nil
	}

	s.Logger.Debug("acquiring access token", zap.String("resource", resource))

	var tok tokenResponse
	switch conn.AuthType {
	case AuthTypeSecret:
		tok, err = s.clientCredentials(ctx, conn, resource)
	default:
		if conn.RefreshToken == "" {
			return "", ErrNotLoggedIn
		}
		err = s.post(ctx, s.endpoint(conn.Tenant, "token"), url.Values{
			"grant_type":    {"refresh_token"},
			"client_id":     {conn.AppID},
			"refresh_token": {conn.RefreshToken},
			"scope":         {resource + "/.default offline_access"},
		}, &tok)
	}
	if err != nil {
		return "", fmt.Errorf("failed to get access token for %s: %w", resource, err)
	}

	s.mu.Lock()
	if tok.RefreshToken != "" {
		conn.RefreshToken = tok.RefreshToken
	}
	s.mu.Unlock()
	s.remember(conn, resource, tok)
	if err := s.save(conn); err != nil {
		return "", err
	}
	return tok.AccessToken, nil
}

// SpoURL returns the cached root SharePoint URL, "" when not discovered yet.
func (s *Service) SpoURL() string {
	conn, err := s.connection()
	if err != nil {
		return ""
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return conn.SpoURL
}

// SetSpoURL caches the root SharePoint URL on the connection.
func (s *Service) SetSpoURL(spoURL string) error {
	conn, err := s.connection()
	if err != nil {
		return err
	}
	s.mu.Lock()
	conn.SpoURL = spoURL
	s.mu.Unlock()
	return s.save(conn)
}

func (s *Service) clientCredentials(ctx context.Context, conn *Connection, resource string) (tokenResponse, error) {
	var tok tokenResponse
	err := s.post(ctx, s.endpoint(conn.Tenant, "token"), url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {conn.AppID},
		"client_secret": {conn.ClientSecret},
		"scope":         {resource + "/.default"},
	}, &tok)
	return tok, err
}

// remember caches tok for resource and refreshes the identity from its claims.
func (s *Service) remember(conn *Connection, resource string, tok tokenResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if conn.AccessTokens == nil {
		conn.AccessTokens = map[string]AccessToken{}
	}
	conn.AccessTokens[resource] = AccessToken{
		Value:     tok.AccessToken,
		ExpiresOn: s.Now().Add(seconds(tok.ExpiresIn, 3600)),
	}

	claims, err := ParseClaims(tok.AccessToken)
	if err != nil {
		s.Logger.Debug("access token claims unavailable", zap.Error(err))
		return
	}
	if id := claims.Identity(); id != "" {
		conn.Identity = id
	}
	if id := claims.IdentityID(); id != "" {
		conn.IdentityID = id
	}
	if claims.TenantID != "" {
		conn.IdentityTenant = claims.TenantID
	}
}

func (s *Service) connection() (*Connection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		return s.conn, nil
	}
	conn, err := s.Store.Load()
	if err != nil {
		return nil, err
	}
	s.conn = conn
	return conn, nil
}

func (s *Service) save(conn *Connection) error {
	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()
	return s.Store.Save(conn)
}

func (s *Service) endpoint(tenant, name string) string {
	if tenant == "" {
		tenant = "common"
	}
	return fmt.Sprintf("%s/%s/oauth2/v2.0/%s", strings.TrimSuffix(s.Authority, "/"), url.PathEscape(tenant), name)
}

// post sends a form to the identity platform and decodes the reply into out.
// Error replies come back as *oauthError.
func (s *Service) post(ctx context.Context, endpoint string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		oerr := &oauthError{}
		if err := json.Unmarshal(body, oerr); err != nil || oerr.Code == "" {
			return fmt.Errorf("identity platform returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		}
		return oerr
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode token response: %w", err)
	}
	return nil
}

func seconds(n json.Number, fallback int64) time.Duration {
	v, err := n.Int64()
	if err != nil || v <= 0 {
		v = fallback
	}
	return time.Duration(v) * time.Second
}
