package enroll

import "github.com/goliatone/go-enroll/pkg/student"

// Record is an ordered set of string fields. Keys keep their first insertion
// position; setting an existing key replaces the value in place.
type Record struct {
	keys   []string
	values map[string]string
}

// NewRecord builds a Record from alternating key/value pairs. A trailing key
// without a value is ignored.
func NewRecord(pairs ...string) Record {
	var r Record
	for i := 0; i+1 < len(pairs); i += 2 {
		r.Set(pairs[i], pairs[i+1])
	}
	return r
}

// RecordFromDraft copies every draft field in canonical order.
func RecordFromDraft(d student.Draft) Record {
	var r Record
	for _, f := range student.Fields() {
		r.Set(string(f), d.Get(f))
	}
	return r
}

// Set stores value under key.
func (r *Record) Set(key, value string) {
	if r.values == nil {
		r.values = make(map[string]string)
	}
	if _, exists := r.values[key]; !exists {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Get returns the value for key.
func (r Record) Get(key string) (string, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (r Record) Keys() []string {
	return append([]string(nil), r.keys...)
}

// Len reports the number of keys.
func (r Record) Len() int {
	return len(r.keys)
}

// Clone returns an independent copy.
func (r Record) Clone() Record {
	var out Record
	for _, k := range r.keys {
		out.Set(k, r.values[k])
	}
	return out
}

// Overlay returns base with every field of top applied on top of it. Keys
// already in base keep their position; new keys follow in top's order.
func Overlay(base, top Record) Record {
	out := base.Clone()
	for _, k := range top.keys {
		out.Set(k, top.values[k])
	}
	return out
}
