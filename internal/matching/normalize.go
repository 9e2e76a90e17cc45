package matching

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Normalize builds the canonical text of an entity. Each field is
// whitespace-collapsed and empty fields are skipped, so entities with the same
// non-empty fields always produce byte-identical text.
func Normalize(e Entity) string {
	fields := e.MatchFields()
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		if words := strings.Fields(f); len(words) > 0 {
			parts = append(parts, strings.Join(words, " "))
		}
	}
	return strings.Join(parts, " ")
}

// Fingerprint is the hex SHA-256 of the normalized text.
func Fingerprint(e Entity) string {
	return fingerprintText(Normalize(e))
}

func fingerprintText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
