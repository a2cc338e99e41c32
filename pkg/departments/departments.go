// Package departments supplies the department names offered by the
// enrollment form.
package departments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrNoDepartments is returned when a source yields an empty list.
var ErrNoDepartments = errors.New("departments: no departments available")

// Source lists the departments a student can be enrolled into.
type Source interface {
	Departments(ctx context.Context) ([]string, error)
}

// Static is a fixed department list.
type Static []string

// Departments returns the trimmed, de-duplicated list.
func (s Static) Departments(context.Context) ([]string, error) {
	out := normalize(s)
	if len(out) == 0 {
		return nil, ErrNoDepartments
	}
	return out, nil
}

// HTTP loads departments from a JSON endpoint. The payload may be a list of
// strings or a list of objects; ResultsPath points at the list inside an
// envelope and NameField at the name inside each object.
type HTTP struct {
	URL         string
	ResultsPath string
	NameField   string
	Header      http.Header
	Client      *http.Client
}

// Departments fetches and normalises the list.
func (h HTTP) Departments(ctx context.Context) ([]string, error) {
	reqURL, err := url.Parse(strings.TrimSpace(h.URL))
	if err != nil {
		return nil, fmt.Errorf("departments: parse url: %w", err)
	}
	if reqURL.Scheme != "http" && reqURL.Scheme != "https" {
		return nil, fmt.Errorf("departments: unsupported url %q", h.URL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("departments: request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for key, values := range h.Header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	client := h.Client
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("departments: do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("departments: unexpected status %d", resp.StatusCode)
	}

	var payload any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("departments: decode: %w", err)
	}

	nameField := h.NameField
	if nameField == "" {
		nameField = "department"
	}

	var names []string
	for _, item := range extractResults(payload, h.ResultsPath) {
		switch v := item.(type) {
		case string:
			names = append(names, v)
		case map[string]any:
			names = append(names, pickValue(v, nameField))
		}
	}

	out := normalize(names)
	if len(out) == 0 {
		return nil, ErrNoDepartments
	}
	return out, nil
}

func extractResults(payload any, path string) []any {
	cur := payload
	if path != "" {
		for _, segment := range strings.Split(path, ".") {
			node, ok := cur.(map[string]any)
			if !ok {
				return nil
			}
			cur = node[segment]
		}
	}
	list, _ := cur.([]any)
	return list
}

func pickValue(m map[string]any, path string) string {
	cur := any(m)
	for _, segment := range strings.Split(path, ".") {
		node, ok := cur.(map[string]any)
		if !ok {
			return ""
		}
		cur = node[segment]
	}
	switch v := cur.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func normalize(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}
