package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-enroll/pkg/endpoint"
	"github.com/goliatone/go-enroll/pkg/enroll"
	"github.com/goliatone/go-enroll/pkg/student"
)

// maxResponseBytes bounds response bodies; created records may echo the
// base64 avatar back.
const maxResponseBytes = 16 << 20

// Client calls the ERP create-student operation over HTTP/JSON.
type Client struct {
	baseURL     *url.URL
	endpoint    endpoint.Endpoint
	httpClient  *http.Client
	header      http.Header
	resultsPath string
	logger      zerolog.Logger
}

// Ensure the client satisfies the workflow collaborator contract.
var _ enroll.Creator = (*Client)(nil)

// New builds a client for the service at baseURL.
func New(baseURL string, options ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		return nil, errors.New("client: base URL is required")
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("client: parse base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("client: unsupported scheme %q", u.Scheme)
	}

	c := &Client{
		baseURL:    u,
		endpoint:   endpoint.Default,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		header:     make(http.Header),
		logger:     zerolog.Nop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	return c, nil
}

// Endpoint reports the operation the client calls.
func (c *Client) Endpoint() endpoint.Endpoint {
	return c.endpoint
}

// CreateStudent posts the full draft. Non-2xx answers, and 2xx answers that
// report success=false, become a Failure; transport and decoding problems
// are returned as errors.
func (c *Client) CreateStudent(ctx context.Context, draft student.Draft) (enroll.Result, error) {
	body, err := json.Marshal(draft)
	if err != nil {
		return nil, fmt.Errorf("client: encode draft: %w", err)
	}

	target := c.baseURL.JoinPath(c.endpoint.Path)
	req, err := http.NewRequestWithContext(ctx, c.endpoint.Method, target.String(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("client: request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for key, values := range c.header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("client: create student: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("client: read response: %w", err)
	}

	c.logger.Debug().
		Str("endpoint", c.endpoint.String()).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(started)).
		Msg("create student response")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || reportsFailure(data) {
		return decodeFailure(resp.StatusCode, data), nil
	}

	record, err := decodeRecord(data, c.resultsPath)
	if err != nil {
		return nil, fmt.Errorf("client: decode created student: %w", err)
	}
	return enroll.Success{Student: record}, nil
}
