// Package supabase is a small client for the hosted backend: the auth API
// (sign-up, password and PKCE sign-in, refresh, sign-out) and the rows API
// used by the REST repositories.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/skout-hq/skout/internal/config"
	"github.com/skout-hq/skout/internal/constants"
	"github.com/skout-hq/skout/internal/metrics"
	"github.com/skout-hq/skout/internal/utils"
)

const (
	authPrefix = "/auth/v1"
	restPrefix = "/rest/v1"

	// maxResponseSize caps how much of an upstream body is read.
	maxResponseSize = 4 << 20
)

// Client talks to one hosted backend project.
type Client struct {
	BaseURL    string
	AnonKey    string
	HTTPClient *http.Client
}

// NewClient creates a client from the supabase config section.
func NewClient(cfg config.SupabaseSettings) (*Client, error) {
	u, err := url.ParseRequestURI(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid supabase url: %w", err)
	}
	if cfg.AnonKey == "" {
		return nil, fmt.Errorf("supabase anon key is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = constants.DefaultBackendTimeout
	}

	return &Client{
		BaseURL: strings.TrimRight(u.String(), "/"),
		AnonKey: cfg.AnonKey,
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// request describes one call to the hosted backend.
type request struct {
	operation string
	method    string
	path      string
	query     url.Values
	token     string
	headers   map[string]string
	body      interface{}
}

// do sends req and decodes a 2xx body into out (when out is non-nil).
// Non-2xx answers are returned as *APIError.
func (c *Client) do(ctx context.Context, req request, out interface{}) error {
	start := time.Now()
	status, err := c.send(ctx, req, out)
	duration := time.Since(start)

	metrics.ObserveBackendCall(req.operation, status, duration, err)
	utils.LogBackendCall(req.operation, status, duration, err)
	return err
}

func (c *Client) send(ctx context.Context, req request, out interface{}) (int, error) {
	var body io.Reader
	if req.body != nil {
		payload, err := json.Marshal(req.body)
		if err != nil {
			return 0, fmt.Errorf("encode %s request: %w", req.operation, err)
		}
		body = bytes.NewReader(payload)
	}

	endpoint := c.BaseURL + req.path
	if len(req.query) > 0 {
		endpoint += "?" + req.query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, endpoint, body)
	if err != nil {
		return 0, fmt.Errorf("create %s request: %w", req.operation, err)
	}

	token := req.token
	if token == "" {
		token = c.AnonKey
	}
	httpReq.Header.Set(constants.HeaderAPIKey, c.AnonKey)
	httpReq.Header.Set(constants.HeaderAuthorization, constants.BearerPrefix+token)
	httpReq.Header.Set(constants.HeaderAccept, constants.ContentTypeJSON)
	if req.body != nil {
		httpReq.Header.Set(constants.HeaderContentType, constants.ContentTypeJSON)
	}
	for k, v := range req.headers {
		httpReq.Header.Set(k, v)
	}

	client := c.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: constants.DefaultBackendTimeout}
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		return 0, utils.NewUpstreamError(constants.MsgBackendUnavailable, fmt.Errorf("%s request failed: %w", req.operation, err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return resp.StatusCode, fmt.Errorf("read %s response: %w", req.operation, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, parseAPIError(resp.StatusCode, respBody)
	}

	if out != nil && len(bytes.TrimSpace(respBody)) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode %s response: %w", req.operation, err)
		}
	}
	return resp.StatusCode, nil
}
