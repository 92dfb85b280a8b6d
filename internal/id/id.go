// Package id generates opaque identifiers for catalogue entities.
package id

import (
	"encoding/hex"

	"github.com/google/uuid"
)

// New returns a fresh 128-bit random identifier rendered as 32
// lowercase hex characters. No separators, so the value is safe as a
// filename or URL path segment.
func New() string {
	u := uuid.New()
	return hex.EncodeToString(u[:])
}
