// Package backend is a typed client for the directory REST service the
// console reads users and workspaces from. Responses are parsed against
// explicit schemas at this boundary; anything that doesn't decode is
// surfaced as a DecodeError rather than trusted implicitly.
package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a directory client. A zero timeout disables the
// per-request deadline (a hung backend then hangs the caller).
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// FindUsers queries the user collection filtered by exact username and
// password match. Credential comparison is delegated to the backend.
func (c *Client) FindUsers(ctx context.Context, username, password string) ([]UserRecord, error) {
	params := url.Values{}
	params.Set("username", username)
	params.Set("password", password)

	var records []UserRecord
	if err := c.getJSON(ctx, "/users", params, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// FindUsersByUsername queries the user collection by username only. Used by
// the SSO callback, where the identity provider has already authenticated
// the user.
func (c *Client) FindUsersByUsername(ctx context.Context, username string) ([]UserRecord, error) {
	params := url.Values{}
	params.Set("username", username)

	var records []UserRecord
	if err := c.getJSON(ctx, "/users", params, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// ListWorkspaces queries the workspace collection filtered by owning user.
// Order is whatever the backend returns.
func (c *Client) ListWorkspaces(ctx context.Context, userID int64) ([]WorkspaceRecord, error) {
	params := url.Values{}
	params.Set("userId", strconv.FormatInt(userID, 10))

	var records []WorkspaceRecord
	if err := c.getJSON(ctx, "/workspaces", params, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, params url.Values, out any) error {
	requestURL := c.baseURL + endpoint
	if len(params) > 0 {
		requestURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return fmt.Errorf("[backend getJSON] failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("[backend getJSON] request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &StatusError{Endpoint: endpoint, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &DecodeError{Endpoint: endpoint, Err: err}
	}
	return nil
}
