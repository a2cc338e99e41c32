package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/goliatone/go-enroll/pkg/enroll"
	"github.com/goliatone/go-enroll/pkg/student"
)

var errNotObject = errors.New("payload is not a JSON object")

// wrapperKeys are envelopes services commonly put around the created record.
var wrapperKeys = []string{"response", "student", "data", "result"}

// generalKeys carry form-level messages rather than field errors.
var generalKeys = map[string]struct{}{
	"backenderror":     {},
	"message":          {},
	"error":            {},
	"detail":           {},
	"non_field_errors": {},
	"nonfielderrors":   {},
	"":                 {},
}

// metadataKeys never hold operator-facing messages.
var metadataKeys = map[string]struct{}{
	"success":    {},
	"status":     {},
	"statuscode": {},
	"code":       {},
	"timestamp":  {},
	"path":       {},
	"stack":      {},
	"trace":      {},
}

// decodeRecord turns a success payload into an ordered Record. resultsPath
// is a dotted path to the created record; when empty, a single well-known
// envelope is unwrapped unless the top level already carries a username.
func decodeRecord(data []byte, resultsPath string) (enroll.Record, error) {
	keys, values, err := orderedObject(data)
	if err != nil {
		return enroll.Record{}, err
	}

	if path := strings.TrimSpace(resultsPath); path != "" {
		for _, segment := range strings.Split(path, ".") {
			raw, ok := values[segment]
			if !ok {
				return enroll.Record{}, fmt.Errorf("results path %q: missing %q", path, segment)
			}
			keys, values, err = orderedObject(raw)
			if err != nil {
				return enroll.Record{}, fmt.Errorf("results path %q: %w", path, err)
			}
		}
	} else if _, hasUsername := values["username"]; !hasUsername {
		for _, wrapper := range wrapperKeys {
			raw, ok := values[wrapper]
			if !ok {
				continue
			}
			if k, v, err := orderedObject(raw); err == nil {
				keys, values = k, v
				break
			}
		}
	}

	var record enroll.Record
	for _, key := range keys {
		record.Set(key, scalarString(values[key]))
	}
	return record, nil
}

// reportsFailure detects 2xx envelopes of the form {"success": false, ...}.
func reportsFailure(data []byte) bool {
	_, values, err := orderedObject(data)
	if err != nil {
		return false
	}
	raw, ok := values["success"]
	return ok && strings.TrimSpace(string(raw)) == "false"
}

// decodeFailure maps an error payload onto field errors and a general
// message. Keys that do not name a draft field are kept as general messages
// so nothing the service said is lost.
func decodeFailure(status int, data []byte) enroll.Failure {
	fields := make(map[student.Field][]string)
	var general []string

	keys, values, err := orderedObject(data)
	if err != nil {
		if msg := sanitizeMessage(string(data)); msg != "" && len(msg) <= maxPlainMessage {
			general = append(general, msg)
		}
	} else {
		for _, key := range keys {
			collectMessages(key, values[key], fields, &general)
		}
	}

	failure := enroll.Failure{}
	for _, f := range student.Fields() {
		msgs := normalizeMessages(fields[f])
		if len(msgs) == 0 {
			continue
		}
		if failure.FieldErrors == nil {
			failure.FieldErrors = make(map[string]string)
		}
		failure.FieldErrors[string(f)] = strings.Join(msgs, "; ")
	}
	failure.BackendError = strings.Join(normalizeMessages(general), "; ")

	if len(failure.FieldErrors) == 0 && failure.BackendError == "" {
		failure.BackendError = fmt.Sprintf("create student failed: %d %s", status, http.StatusText(status))
	}
	return failure
}

const maxPlainMessage = 240

func collectMessages(key string, raw json.RawMessage, fields map[student.Field][]string, general *[]string) {
	lower := strings.ToLower(strings.TrimSpace(key))
	if _, skip := metadataKeys[lower]; skip {
		return
	}

	switch lower {
	case "errors", "fielderrors", "details":
		collectNested(raw, fields, general)
		return
	}

	msgs := messagesOf(raw)
	if len(msgs) == 0 {
		return
	}
	if _, ok := generalKeys[lower]; ok {
		*general = append(*general, msgs...)
		return
	}
	if field, ok := fieldFromKey(key); ok {
		fields[field] = append(fields[field], msgs...)
		return
	}
	*general = append(*general, msgs...)
}

// collectNested handles {"errors": {...}} and {"errors": [{field, message}]}.
func collectNested(raw json.RawMessage, fields map[student.Field][]string, general *[]string) {
	if keys, values, err := orderedObject(raw); err == nil {
		for _, key := range keys {
			collectMessages(key, values[key], fields, general)
		}
		return
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return
	}
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			*general = append(*general, sanitizeMessage(s))
			continue
		}
		var entry map[string]json.RawMessage
		if err := json.Unmarshal(item, &entry); err != nil {
			continue
		}
		target := firstString(entry, "field", "param", "path", "key")
		msgs := messagesOf(pick(entry, "message", "msg", "error"))
		if len(msgs) == 0 {
			continue
		}
		if field, ok := fieldFromKey(target); ok {
			fields[field] = append(fields[field], msgs...)
			continue
		}
		*general = append(*general, msgs...)
	}
}

// fieldFromKey resolves keys such as "emailError", "/body/email",
// "student.email" or "email_error" to a draft field.
func fieldFromKey(raw string) (student.Field, bool) {
	segments := dropWrapperSegments(parsePathSegments(raw))
	if len(segments) == 0 {
		return "", false
	}
	name := segments[len(segments)-1]
	for _, suffix := range []string{"_error", "Error", "error"} {
		if trimmed := strings.TrimSuffix(name, suffix); trimmed != name && trimmed != "" {
			name = trimmed
			break
		}
	}
	return student.ParseField(name)
}

func messagesOf(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if msg := sanitizeMessage(s); msg != "" {
			return []string{msg}
		}
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		out := make([]string, 0, len(list))
		for _, item := range list {
			if msg := sanitizeMessage(item); msg != "" {
				out = append(out, msg)
			}
		}
		return out
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err == nil {
		return messagesOf(pick(obj, "message", "msg"))
	}
	return nil
}

func pick(obj map[string]json.RawMessage, keys ...string) json.RawMessage {
	for _, key := range keys {
		if raw, ok := obj[key]; ok {
			return raw
		}
	}
	return nil
}

func firstString(obj map[string]json.RawMessage, keys ...string) string {
	for _, key := range keys {
		var s string
		if raw, ok := obj[key]; ok && json.Unmarshal(raw, &s) == nil && s != "" {
			return s
		}
	}
	return ""
}

// orderedObject decodes a JSON object keeping its key order.
func orderedObject(data []byte) ([]string, map[string]json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil, errNotObject
	}

	var keys []string
	values := make(map[string]json.RawMessage)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, nil, errNotObject
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, nil, err
		}
		if _, exists := values[key]; !exists {
			keys = append(keys, key)
		}
		values[key] = raw
	}
	if _, err := dec.Token(); err != nil {
		return nil, nil, err
	}
	return keys, values, nil
}

// scalarString renders a JSON value as display text: strings verbatim, null
// as empty, anything else as compact JSON.
func scalarString(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ""
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return s
		}
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err == nil {
		return buf.String()
	}
	return string(trimmed)
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}
	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))
	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func parsePathSegments(path string) []string {
	clean := strings.TrimLeft(strings.TrimSpace(path), "#/.$")
	replacer := strings.NewReplacer("[", ".", "]", "")
	clean = strings.Trim(replacer.Replace(clean), "./")
	if clean == "" {
		return nil
	}
	parts := strings.FieldsFunc(clean, func(r rune) bool {
		return r == '.' || r == '/'
	})
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if segment := strings.TrimSpace(part); segment != "" {
			out = append(out, segment)
		}
	}
	return out
}

func dropWrapperSegments(segments []string) []string {
	wrappers := map[string]struct{}{
		"body":    {},
		"request": {},
		"payload": {},
		"data":    {},
		"student": {},
	}
	out := segments
	for len(out) > 1 {
		if _, ok := wrappers[strings.ToLower(out[0])]; !ok {
			break
		}
		out = out[1:]
	}
	return out
}
