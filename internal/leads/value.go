package leads

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Value is one untyped form field. It keeps the raw JSON so pass-through
// fields reach downstream systems with their original type.
type Value struct {
	raw json.RawMessage
}

// StringValue builds a Value holding a JSON string.
func StringValue(s string) Value {
	b, _ := json.Marshal(s)
	return Value{raw: b}
}

// UnmarshalJSON implements json.Unmarshaler. null leaves the value absent.
func (v *Value) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		v.raw = nil
		return nil
	}
	v.raw = append(json.RawMessage(nil), b...)
	return nil
}

// MarshalJSON implements json.Marshaler. Absent values encode as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if len(v.raw) == 0 {
		return []byte("null"), nil
	}
	return v.raw, nil
}

// Text returns the field as a string: strings unquoted, anything else as its
// JSON literal.
func (v Value) Text() string {
	if len(v.raw) == 0 {
		return ""
	}
	if v.raw[0] == '"' {
		var s string
		if err := json.Unmarshal(v.raw, &s); err == nil {
			return s
		}
	}
	return string(v.raw)
}

// Present reports whether the field carries a usable value. Absent, null, "",
// 0 and false all count as not present, matching how web forms post blanks.
func (v Value) Present() bool {
	if len(v.raw) == 0 {
		return false
	}
	switch v.raw[0] {
	case '"':
		return v.Text() != ""
	case 't':
		return true
	case 'f', 'n':
		return false
	case '{', '[':
		return true
	default:
		f, err := strconv.ParseFloat(string(v.raw), 64)
		return err != nil || f != 0
	}
}

// String returns Text when the field is present, else "".
func (v Value) String() string {
	if !v.Present() {
		return ""
	}
	return v.Text()
}

// JSON returns the raw JSON when present and nil otherwise, so callers can
// rely on omitempty.
func (v Value) JSON() json.RawMessage {
	if !v.Present() {
		return nil
	}
	return v.raw
}

// JSONOrEmpty returns the raw JSON when present and an empty JSON string otherwise.
func (v Value) JSONOrEmpty() json.RawMessage {
	if !v.Present() {
		return json.RawMessage(`""`)
	}
	return v.raw
}
