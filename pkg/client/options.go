package client

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-enroll/pkg/endpoint"
)

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client. Its Timeout is the only bound on
// a create-request.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithEndpoint overrides the method and path of the create-student call.
func WithEndpoint(ep endpoint.Endpoint) Option {
	return func(c *Client) {
		if ep.IsZero() {
			return
		}
		if ep.Method == "" {
			ep.Method = http.MethodPost
		}
		c.endpoint = ep
	}
}

// WithBearerToken authenticates requests as the signed-in administrator.
func WithBearerToken(token string) Option {
	return func(c *Client) {
		if t := strings.TrimSpace(token); t != "" {
			c.header.Set("Authorization", "Bearer "+t)
		}
	}
}

// WithHeader adds a static request header.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		if strings.TrimSpace(key) != "" {
			c.header.Add(key, value)
		}
	}
}

// WithResultsPath points at the created record inside the success payload
// (for example "response" for {"success": true, "response": {...}}).
func WithResultsPath(path string) Option {
	return func(c *Client) {
		c.resultsPath = strings.TrimSpace(path)
	}
}

// WithLogger sets the client logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}
