package book

import (
	"encoding/base64"
	"encoding/json"
	"time"
)

// Cursor marks the last book of a page in newest-first order.
type Cursor struct {
	AfterID   string    `json:"after_id,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// CursorAfter returns the cursor that continues after b.
func CursorAfter(b Book) Cursor {
	return Cursor{AfterID: b.ID, CreatedAt: b.CreatedAt}
}

// IsZero reports whether c is the start of the listing.
func (c Cursor) IsZero() bool {
	return c.AfterID == ""
}

// EncodeCursor encodes a cursor as an opaque URL-safe string.
func EncodeCursor(c Cursor) string {
	if c.IsZero() {
		return ""
	}
	jsonBytes, err := json.Marshal(c)
	if err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(jsonBytes)
}

// DecodeCursor decodes a string produced by EncodeCursor. The empty string
// is the start of the listing.
func DecodeCursor(s string) (Cursor, error) {
	if s == "" {
		return Cursor{}, nil
	}
	decoded, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return Cursor{}, ErrInvalidCursor
	}
	var c Cursor
	if err := json.Unmarshal(decoded, &c); err != nil {
		return Cursor{}, ErrInvalidCursor
	}
	if c.AfterID == "" || c.CreatedAt.IsZero() {
		return Cursor{}, ErrInvalidCursor
	}
	return c, nil
}
