package common

import (
	"regexp"
	"strings"
)

// FallbackRelationshipType is used when sanitization leaves nothing behind.
const FallbackRelationshipType = "RELATED_TO"

var (
	reWhitespaceRun = regexp.MustCompile(`\s+`)
	reInvalidToken  = regexp.MustCompile(`[^A-Z0-9_]`)
)

// SanitizeRelationshipType normalizes a free-form relationship label into a
// storage-safe type token: uppercased, whitespace runs collapsed into a
// single underscore, everything outside [A-Z0-9_] stripped. An input that
// sanitizes to nothing yields FallbackRelationshipType, so every
// relationship ends up with a non-empty, valid label.
func SanitizeRelationshipType(raw string) string {
	token := strings.ToUpper(strings.TrimSpace(raw))
	token = reWhitespaceRun.ReplaceAllString(token, "_")
	token = reInvalidToken.ReplaceAllString(token, "")
	if token == "" {
		return FallbackRelationshipType
	}
	return token
}
