// Package fingerprint derives the identifiers attached to every published
// document: the content fingerprint used as the idempotency key and the
// correlation id used for tracing a message through the pipeline.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"decoder/internal/text"
)

// Length is the number of hex characters kept from the digest (16 bytes).
const Length = 32

// Content fingerprints s after normalisation, so inputs that only differ in
// whitespace share an identity.
func Content(s string) string {
	return digest(text.Clean(s))
}

// Correlation digests the identifying metadata of a message.
func Correlation(subject, from, date string, attachmentBytes int64) string {
	return digest(strings.Join([]string{subject, from, date, strconv.FormatInt(attachmentBytes, 10)}, "|"))
}

func digest(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:Length]
}
