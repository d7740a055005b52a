// Package omero is a thin client for the OMERO.web JSON API (api/v0) and the
// webgateway rendering endpoints. It covers exactly what the overlay exporter
// needs: session login, container traversal, ROI listing, thumbnails, and
// file-annotation upload. The object store itself is OMERO's business.
package omero

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"roverlay/internal/config"
)

// ErrNotLoggedIn is returned for data calls made before Login.
var ErrNotLoggedIn = errors.New("omero: not logged in")

// APIError reports a non-2xx response from the server.
type APIError struct {
	Status int
	URL    string
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("omero: %s returned %d: %s", e.URL, e.Status, e.Body)
}

// pageLimit is the page size used for paginated listings.
const pageLimit = 200

// Client talks to one OMERO.web instance on behalf of one session.
// It is safe for concurrent use after Login.
type Client struct {
	baseURL    string
	username   string
	password   string
	serverID   int
	httpClient *http.Client
	logger     *zap.Logger

	csrfToken string
	loggedIn  bool
}

// New creates a client from server configuration. Login must be called
// before any data access.
func New(cfg config.ServerConfig, timeout time.Duration, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		username: cfg.Username,
		password: cfg.Password,
		serverID: cfg.ServerID,
		httpClient: &http.Client{
			Jar:       jar,
			Timeout:   timeout,
			Transport: transport,
		},
		logger: logger.Named("omero"),
	}, nil
}

// Login obtains a CSRF token and opens a session. The session cookie lives in
// the client's cookie jar; the token is replayed on mutating requests.
func (c *Client) Login(ctx context.Context) error {
	token, err := c.fetchCSRFToken(ctx)
	if err != nil {
		return err
	}
	c.csrfToken = token

	form := url.Values{}
	form.Set("username", c.username)
	form.Set("password", c.password)
	form.Set("server", fmt.Sprintf("%d", c.serverID))

	loginURL := c.baseURL + "/api/v0/login/"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, loginURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	c.setCSRFHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("login request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return fmt.Errorf("failed to read login response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Status: resp.StatusCode, URL: loginURL, Body: trimBody(body)}
	}

	var result struct {
		Success bool `json:"success"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("failed to parse login response: %w", err)
	}
	if !result.Success {
		return fmt.Errorf("omero: login rejected for user %q", c.username)
	}

	c.loggedIn = true
	c.logger.Info("logged in", zap.String("server", c.baseURL), zap.String("user", c.username))
	return nil
}

func (c *Client) fetchCSRFToken(ctx context.Context) (string, error) {
	tokenURL := c.baseURL + "/api/v0/token/"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, tokenURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return "", fmt.Errorf("failed to read token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", &APIError{Status: resp.StatusCode, URL: tokenURL, Body: trimBody(body)}
	}

	var result struct {
		Data string `json:"data"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to parse token response: %w", err)
	}
	if result.Data == "" {
		return "", fmt.Errorf("omero: empty CSRF token from %s", tokenURL)
	}
	return result.Data, nil
}

// setCSRFHeaders adds the headers Django's CSRF middleware checks on
// mutating requests.
func (c *Client) setCSRFHeaders(req *http.Request) {
	req.Header.Set("X-CSRFToken", c.csrfToken)
	req.Header.Set("Referer", c.baseURL+"/")
}

// getJSON performs an authenticated GET and decodes the JSON body into v.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, v interface{}) error {
	if !c.loggedIn {
		return ErrNotLoggedIn
	}
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	c.logger.Debug("GET", zap.String("url", u), zap.Int("status", resp.StatusCode), zap.Duration("took", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Status: resp.StatusCode, URL: u, Body: trimBody(body)}
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", u, err)
	}
	return nil
}

// getBytes performs an authenticated GET and returns the raw body, for
// binary endpoints like thumbnail rendering.
func (c *Client) getBytes(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if !c.loggedIn {
		return nil, ErrNotLoggedIn
	}
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{Status: resp.StatusCode, URL: u, Body: trimBody(body)}
	}
	return body, nil
}

// listPaged walks a paginated listing endpoint until a short page.
func listPaged[T any](ctx context.Context, c *Client, path string, query url.Values) ([]T, error) {
	if query == nil {
		query = url.Values{}
	}
	query.Set("limit", fmt.Sprintf("%d", pageLimit))

	var out []T
	offset := 0
	for {
		query.Set("offset", fmt.Sprintf("%d", offset))
		var page struct {
			Data []T `json:"data"`
			Meta struct {
				Offset     int `json:"offset"`
				Limit      int `json:"limit"`
				TotalCount int `json:"totalCount"`
			} `json:"meta"`
		}
		if err := c.getJSON(ctx, path, query, &page); err != nil {
			return nil, err
		}
		out = append(out, page.Data...)
		if len(page.Data) < pageLimit || (page.Meta.TotalCount > 0 && len(out) >= page.Meta.TotalCount) {
			return out, nil
		}
		offset += len(page.Data)
	}
}

func trimBody(body []byte) string {
	const max = 512
	s := strings.TrimSpace(string(body))
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
