package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-enroll/pkg/endpoint"
	"github.com/goliatone/go-enroll/pkg/enroll"
	"github.com/goliatone/go-enroll/pkg/student"
)

func sampleDraft() student.Draft {
	return student.Draft{
		Name:          "Ada Lovelace",
		DOB:           "2001-05-17",
		Email:         "ada@example.edu",
		Department:    "Computer Science",
		ContactNumber: "5550101",
		Batch:         "2021-2025",
		FatherName:    "George",
		MotherName:    "Anne",
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	c, err := New(server.URL, append([]Option{WithHTTPClient(server.Client())}, opts...)...)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func respond(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

func TestCreateStudentSendsDraft(t *testing.T) {
	var (
		gotMethod string
		gotPath   string
		gotAuth   string
		gotBody   map[string]string
	)
	handler := func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"username":"ada17","dob":"2001-05-17"}`)
	}

	c := newTestClient(t, handler, WithBearerToken("secret"))
	result, err := c.CreateStudent(context.Background(), sampleDraft())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if gotMethod != http.MethodPost || gotPath != "/api/admin/addstudent" {
		t.Fatalf("request = %s %s", gotMethod, gotPath)
	}
	if gotAuth != "Bearer secret" {
		t.Fatalf("authorization = %q", gotAuth)
	}
	if diff := cmp.Diff(sampleDraft().Map(), gotBody); diff != "" {
		t.Fatalf("body mismatch (-want +got):\n%s", diff)
	}

	success, ok := result.(enroll.Success)
	if !ok {
		t.Fatalf("result = %T, want Success", result)
	}
	if diff := cmp.Diff([]string{"username", "dob"}, success.Student.Keys()); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
	if v, _ := success.Student.Get("username"); v != "ada17" {
		t.Fatalf("username = %q", v)
	}
}

func TestCreateStudentUnwrapsEnvelope(t *testing.T) {
	body := `{"success":true,"response":{"username":"ada17","dob":"2001-05-17","year":2}}`
	c := newTestClient(t, respond(http.StatusCreated, body))

	result, err := c.CreateStudent(context.Background(), sampleDraft())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	success := result.(enroll.Success)
	if diff := cmp.Diff([]string{"username", "dob", "year"}, success.Student.Keys()); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
	if v, _ := success.Student.Get("year"); v != "2" {
		t.Fatalf("year = %q, want 2", v)
	}
}

func TestCreateStudentResultsPath(t *testing.T) {
	body := `{"payload":{"created":{"username":"ada17"}}}`
	c := newTestClient(t, respond(http.StatusOK, body), WithResultsPath("payload.created"))

	result, err := c.CreateStudent(context.Background(), sampleDraft())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if v, _ := result.(enroll.Success).Student.Get("username"); v != "ada17" {
		t.Fatalf("username = %q", v)
	}

	broken := newTestClient(t, respond(http.StatusOK, body), WithResultsPath("payload.missing"))
	if _, err := broken.CreateStudent(context.Background(), sampleDraft()); err == nil {
		t.Fatal("expected decode error for missing results path")
	}
}

func TestCreateStudentFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   enroll.Failure
	}{
		{
			name:   "email error key",
			status: http.StatusBadRequest,
			body:   `{"emailError":"Email already registered"}`,
			want: enroll.Failure{
				FieldErrors: map[string]string{"email": "Email already registered"},
			},
		},
		{
			name:   "backend error",
			status: http.StatusInternalServerError,
			body:   `{"backendError":"Database unavailable"}`,
			want:   enroll.Failure{BackendError: "Database unavailable"},
		},
		{
			name:   "both keys",
			status: http.StatusConflict,
			body:   `{"emailError":"Email already registered","backendError":"Could not add student"}`,
			want: enroll.Failure{
				FieldErrors:  map[string]string{"email": "Email already registered"},
				BackendError: "Could not add student",
			},
		},
		{
			name:   "nested errors object",
			status: http.StatusUnprocessableEntity,
			body:   `{"message":"Validation failed","errors":{"/body/contactNumber":["must be digits"],"batch":"required"}}`,
			want: enroll.Failure{
				FieldErrors: map[string]string{
					"contactNumber": "must be digits",
					"batch":         "required",
				},
				BackendError: "Validation failed",
			},
		},
		{
			name:   "errors array",
			status: http.StatusBadRequest,
			body:   `{"errors":[{"field":"student.email","message":"invalid"},{"param":"nickname","msg":"unknown field"}]}`,
			want: enroll.Failure{
				FieldErrors:  map[string]string{"email": "invalid"},
				BackendError: "unknown field",
			},
		},
		{
			name:   "success false envelope",
			status: http.StatusOK,
			body:   `{"success":false,"message":"Duplicate roll number"}`,
			want:   enroll.Failure{BackendError: "Duplicate roll number"},
		},
		{
			name:   "markup stripped",
			status: http.StatusBadRequest,
			body:   `{"emailError":"<b>Email</b> &amp; domain rejected"}`,
			want: enroll.Failure{
				FieldErrors: map[string]string{"email": "Email & domain rejected"},
			},
		},
		{
			name:   "empty body",
			status: http.StatusServiceUnavailable,
			body:   ``,
			want:   enroll.Failure{BackendError: "create student failed: 503 Service Unavailable"},
		},
		{
			name:   "metadata only",
			status: http.StatusBadRequest,
			body:   `{"success":false,"status":400}`,
			want:   enroll.Failure{BackendError: "create student failed: 400 Bad Request"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, respond(tt.status, tt.body))
			result, err := c.CreateStudent(context.Background(), sampleDraft())
			if err != nil {
				t.Fatalf("create: %v", err)
			}
			got, ok := result.(enroll.Failure)
			if !ok {
				t.Fatalf("result = %T, want Failure", result)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("failure mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCreateStudentHTMLErrorPage(t *testing.T) {
	page := `<html><head><title>502 Bad Gateway</title></head><body><h1>Bad Gateway</h1></body></html>`
	c := newTestClient(t, respond(http.StatusBadGateway, page))

	result, err := c.CreateStudent(context.Background(), sampleDraft())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	failure := result.(enroll.Failure)
	if strings.Contains(failure.BackendError, "<") {
		t.Fatalf("markup leaked into message: %q", failure.BackendError)
	}
	if !strings.Contains(failure.BackendError, "Bad Gateway") {
		t.Fatalf("backend error = %q", failure.BackendError)
	}
}

func TestCreateStudentTransportError(t *testing.T) {
	server := httptest.NewServer(respond(http.StatusOK, `{}`))
	url := server.URL
	server.Close()

	c, err := New(url)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := c.CreateStudent(context.Background(), sampleDraft()); err == nil {
		t.Fatal("expected transport error")
	}
}

func TestCreateStudentCustomEndpoint(t *testing.T) {
	var got string
	handler := func(w http.ResponseWriter, r *http.Request) {
		got = r.Method + " " + r.URL.Path
		_, _ = io.WriteString(w, `{"username":"u"}`)
	}
	c := newTestClient(t, handler, WithEndpoint(endpoint.Endpoint{Method: http.MethodPut, Path: "/v2/students"}))

	if _, err := c.CreateStudent(context.Background(), sampleDraft()); err != nil {
		t.Fatalf("create: %v", err)
	}
	if got != "PUT /v2/students" {
		t.Fatalf("request = %q", got)
	}
}

func TestNewRejectsBadBaseURL(t *testing.T) {
	for _, raw := range []string{"", "   ", "ftp://erp.local", "://"} {
		if _, err := New(raw); err == nil {
			t.Fatalf("New(%q) expected error", raw)
		}
	}
}

func TestFieldFromKey(t *testing.T) {
	tests := map[string]string{
		"emailError":         "email",
		"email_error":        "email",
		"/body/email":        "email",
		"#/student/dob":      "dob",
		"data.fatherName":    "fatherName",
		"contactnumber":      "contactNumber",
		"errors[0].username": "",
		"backendError":       "",
	}
	for key, want := range tests {
		field, ok := fieldFromKey(key)
		if want == "" {
			if ok {
				t.Fatalf("fieldFromKey(%q) = %q, want no field", key, field)
			}
			continue
		}
		if !ok || string(field) != want {
			t.Fatalf("fieldFromKey(%q) = %q, %v; want %q", key, field, ok, want)
		}
	}
}
