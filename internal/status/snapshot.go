package status

import (
	"encoding/json"
	"fmt"
)

// Snapshot is one point-in-time observation of the hero state, keyed by
// the remote API's field names. A snapshot is built once per polling
// cycle and never mutated afterwards; the loop clones it before adding
// synthetic fields.
type Snapshot map[string]any

// Synthetic fields injected by the polling loop.
const (
	FieldEngine = "engine"
	FieldError  = "error"
)

func Parse(raw []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("failed to decode state: %w", err)
	}
	return s, nil
}

// Clone copies the top level of the snapshot. Nested values are shared;
// they are treated as read-only for the life of the cycle.
func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

func (s Snapshot) Has(key string) bool {
	_, ok := s[key]
	return ok
}

// Truthy reports whether the field is present and not a zero value.
func (s Snapshot) Truthy(key string) bool {
	v, ok := s[key]
	if !ok || v == nil {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0
	case int:
		return t != 0
	default:
		return true
	}
}

// Expired reports whether the remote session is no longer active.
func (s Snapshot) Expired() bool {
	return s.Truthy("expired")
}

// TokenExpired reports whether the API token needs to be regenerated.
func (s Snapshot) TokenExpired() bool {
	return s.Truthy("token_expired")
}

// FetchError returns the transient-fetch error carried over from a
// failed cycle, if any.
func (s Snapshot) FetchError() (string, bool) {
	v, ok := s[FieldError]
	if !ok || v == nil {
		return "", false
	}
	msg := fmt.Sprintf("%v", v)
	return msg, msg != ""
}

// Text renders a field for display. Absent and nil fields render empty.
func (s Snapshot) Text(key string) string {
	v, ok := s[key]
	if !ok || v == nil {
		return ""
	}
	if f, ok := v.(float64); ok && f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%v", v)
}

// Normalize fills in the fields the public (tokenless) API leaves out.
// A response without `health` means the backend served public data only;
// when a token was supplied that also means the token no longer works.
func (s Snapshot) Normalize(hasToken bool, tokenHint string) {
	if s.Has("health") {
		return
	}
	if hasToken {
		s["token_expired"] = true
	}
	s["health"] = s["max_health"]
	s["exp_progress"] = "..."
	s["distance"] = "..."
	s["inventory_num"] = "..."
	s["quest"] = tokenHint
	s["quest_progress"] = "..."
	s["diary_last"] = ""
}
