package endpoint

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

var (
	// ErrOperationNotFound is returned when the document lacks the operation.
	ErrOperationNotFound = errors.New("endpoint: operation not found")
	// ErrEmptyDocument is returned for an empty payload.
	ErrEmptyDocument = errors.New("endpoint: document payload is empty")
)

// Endpoint is the HTTP method and path of the create-student operation.
type Endpoint struct {
	Method string
	Path   string
}

// Default matches the ERP admin route used when no document is configured.
var Default = Endpoint{Method: http.MethodPost, Path: "/api/admin/addstudent"}

// IsZero reports whether the endpoint is unset.
func (e Endpoint) IsZero() bool {
	return e.Method == "" && e.Path == ""
}

func (e Endpoint) String() string {
	return e.Method + " " + e.Path
}

// Load reads an OpenAPI document from a file path or an http(s) URL.
func Load(ctx context.Context, location string, client *http.Client) ([]byte, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, errors.New("endpoint: document location is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if !strings.HasPrefix(location, "http://") && !strings.HasPrefix(location, "https://") {
		data, err := os.ReadFile(location)
		if err != nil {
			return nil, fmt.Errorf("endpoint: read %s: %w", location, err)
		}
		return data, nil
	}

	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("endpoint: request: %w", err)
	}
	req.Header.Set("Accept", "application/json, application/yaml")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("endpoint: fetch %s: %w", location, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("endpoint: fetch %s: unexpected status %d", location, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("endpoint: read body: %w", err)
	}
	return data, nil
}

// Resolve looks up operationID in an OpenAPI 3 document (JSON or YAML). A
// relative server URL in the document prefixes the returned path.
func Resolve(ctx context.Context, document []byte, operationID string) (Endpoint, error) {
	ep, _, err := findOperation(ctx, document, operationID)
	return ep, err
}

// RequestProperties lists, sorted, the JSON request body properties the
// operation declares, merging allOf members.
func RequestProperties(ctx context.Context, document []byte, operationID string) ([]string, error) {
	_, op, err := findOperation(ctx, document, operationID)
	if err != nil {
		return nil, err
	}
	if op.RequestBody == nil || op.RequestBody.Value == nil {
		return nil, nil
	}
	media := op.RequestBody.Value.Content.Get("application/json")
	if media == nil || media.Schema == nil {
		return nil, nil
	}

	seen := make(map[string]struct{})
	collectProperties(media.Schema, seen)
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

func collectProperties(ref *openapi3.SchemaRef, seen map[string]struct{}) {
	if ref == nil || ref.Value == nil {
		return
	}
	for name := range ref.Value.Properties {
		seen[name] = struct{}{}
	}
	for _, member := range ref.Value.AllOf {
		collectProperties(member, seen)
	}
}

func findOperation(ctx context.Context, document []byte, operationID string) (Endpoint, *openapi3.Operation, error) {
	if len(document) == 0 {
		return Endpoint{}, nil, ErrEmptyDocument
	}
	operationID = strings.TrimSpace(operationID)
	if operationID == "" {
		return Endpoint{}, nil, errors.New("endpoint: operation id is required")
	}

	loader := &openapi3.Loader{Context: ctx}
	api, err := loader.LoadFromData(document)
	if err != nil {
		return Endpoint{}, nil, fmt.Errorf("endpoint: load document: %w", err)
	}
	if api.Paths == nil || api.Paths.Len() == 0 {
		return Endpoint{}, nil, fmt.Errorf("%w: %q (document has no paths)", ErrOperationNotFound, operationID)
	}

	items := api.Paths.Map()
	paths := make([]string, 0, len(items))
	for p := range items {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var (
		found []Endpoint
		match *openapi3.Operation
	)
	for _, p := range paths {
		item := items[p]
		if item == nil {
			continue
		}
		for method, op := range item.Operations() {
			if op == nil || op.OperationID != operationID {
				continue
			}
			match = op
			found = append(found, Endpoint{
				Method: strings.ToUpper(method),
				Path:   joinPath(serverPrefix(api.Servers), p),
			})
		}
	}

	switch len(found) {
	case 0:
		return Endpoint{}, nil, fmt.Errorf("%w: %q", ErrOperationNotFound, operationID)
	case 1:
		return found[0], match, nil
	default:
		return Endpoint{}, nil, fmt.Errorf("endpoint: operation %q declared %d times", operationID, len(found))
	}
}

func serverPrefix(servers openapi3.Servers) string {
	if len(servers) == 0 || servers[0] == nil {
		return ""
	}
	u, err := url.Parse(servers[0].URL)
	if err != nil {
		return ""
	}
	return strings.TrimSuffix(u.Path, "/")
}

func joinPath(prefix, p string) string {
	if prefix == "" {
		return p
	}
	return path.Join(prefix, p)
}
