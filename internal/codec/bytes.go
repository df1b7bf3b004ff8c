// Package codec holds the byte encodings shared by every persisted structure.
//
// Binary values are written to JSON as an object with a single "$base64"
// member holding standard padded base64:
//
//	{"$base64": "3q2+7w=="}
//
// The wrapper keeps binary fields distinguishable from ordinary strings and
// must be preserved exactly for vault files to stay interchangeable.
package codec

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// Bytes is a byte slice that marshals to a {"$base64": ...} JSON object.
type Bytes []byte

type wrapper struct {
	Base64 *string `json:"$base64"`
}

// MarshalJSON implements json.Marshaler.
func (b Bytes) MarshalJSON() ([]byte, error) {
	s := base64.StdEncoding.EncodeToString(b)
	return json.Marshal(wrapper{Base64: &s})
}

// UnmarshalJSON implements json.Unmarshaler.
func (b *Bytes) UnmarshalJSON(data []byte) error {
	var w wrapper
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("decoding binary field: %w", err)
	}
	if w.Base64 == nil {
		return fmt.Errorf("decoding binary field: missing $base64 member")
	}
	decoded, err := base64.StdEncoding.DecodeString(*w.Base64)
	if err != nil {
		return fmt.Errorf("decoding binary field: %w", err)
	}
	*b = decoded
	return nil
}

// Equal reports whether b and other hold the same bytes.
func (b Bytes) Equal(other []byte) bool {
	return bytes.Equal(b, other)
}

// Clone returns a copy of b that does not share memory with it.
func (b Bytes) Clone() Bytes {
	if b == nil {
		return nil
	}
	out := make(Bytes, len(b))
	copy(out, b)
	return out
}

// Std returns the standard base64 form of b.
func (b Bytes) Std() string {
	return base64.StdEncoding.EncodeToString(b)
}

// URL returns the unpadded base64url form of b, as used by WebAuthn to
// address credentials.
func (b Bytes) URL() string {
	return URL(b)
}

// URL returns the unpadded base64url form of id.
func URL(id []byte) string {
	return base64.RawURLEncoding.EncodeToString(id)
}

// ParseURL decodes an unpadded base64url string.
func ParseURL(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(s)
}

// Abbrev returns the standard base64 form of id truncated to maxLen
// characters, followed by an ellipsis when truncated.
func Abbrev(id []byte, maxLen int) string {
	s := base64.StdEncoding.EncodeToString(id)
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "…"
}
