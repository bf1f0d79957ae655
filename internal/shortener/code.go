package shortener

import (
	"crypto/md5" //nolint:gosec // content addressing, not security
	"encoding/hex"
	"strings"
)

// CodeLength is the number of hex characters kept from the URL digest.
const CodeLength = 6

// GenerateCode derives the short code for rawURL.
// The same input always yields the same code; distinct inputs may collide.
func GenerateCode(rawURL string) Code {
	sum := md5.Sum([]byte(rawURL)) //nolint:gosec

	return Code(hex.EncodeToString(sum[:])[:CodeLength])
}

// ValidURL reports whether rawURL can be shortened.
func ValidURL(rawURL string) bool {
	return strings.HasPrefix(rawURL, "http://") || strings.HasPrefix(rawURL, "https://")
}
