package pagination

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Cursor is the opaque pagination state we encode/decode.
// (UnixMilli, ID) or (UnixMilli, Ref) establish a stable keyset position;
// Ref is used for tables keyed by string ids.
type Cursor struct {
	ID        uint64 `json:"id,omitempty"`
	Ref       string `json:"ref,omitempty"`
	UnixMilli int64  `json:"ts,omitempty"`
}

// IsZero reports whether the cursor points at the first page.
func (c Cursor) IsZero() bool {
	return c.ID == 0 && c.Ref == "" && c.UnixMilli == 0
}

// Encode converts a Cursor into a Base64 string.
func Encode(c Cursor) (string, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal cursor: %w", err)
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// Decode parses a Base64 string into a Cursor.
// Empty token → empty cursor (first page).
func Decode(token string) (Cursor, error) {
	if token == "" {
		return Cursor{}, nil
	}

	b, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, fmt.Errorf("invalid pagination token")
	}

	var c Cursor
	if err := json.Unmarshal(b, &c); err != nil {
		return Cursor{}, fmt.Errorf("invalid pagination token")
	}
	return c, nil
}

// Limit clamps a requested page size into [1, MaxLimit].
func Limit(n int) int {
	switch {
	case n <= 0:
		return DefaultLimit
	case n > MaxLimit:
		return MaxLimit
	default:
		return n
	}
}

// Deref safely dereferences a string pointer for pagination tokens.
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
