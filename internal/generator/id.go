// Package generator produces random identifiers for scan bookkeeping.
package generator

import (
	"crypto/rand"
	"encoding/base64"
)

// GenerateID returns a URL-safe random identifier of exactly the given
// length. The redirect path uses it as a fallback scan request id when the
// router did not assign one; length bytes of entropy always encode to at
// least length characters, so the truncation never comes up short.
func GenerateID(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	id := base64.RawURLEncoding.EncodeToString(b)
	return id[:length], nil
}
