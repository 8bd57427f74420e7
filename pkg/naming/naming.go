// Package naming converts OpenAPI identifiers into Dart identifiers:
// PascalCase class names, camelCase property names, and snake_case file
// names. All conversions are total and idempotent on already-normalized
// input.
package naming

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonAlnum = regexp.MustCompile(`[^A-Za-z0-9]+`)

// dartReserved holds Dart reserved words plus built-in identifiers that
// cannot be used (or are unsafe) as member and parameter names.
var dartReserved = map[string]struct{}{
	"assert": {}, "break": {}, "case": {}, "catch": {}, "class": {},
	"const": {}, "continue": {}, "default": {}, "do": {}, "else": {},
	"enum": {}, "extends": {}, "false": {}, "final": {}, "finally": {},
	"for": {}, "if": {}, "in": {}, "is": {}, "new": {}, "null": {},
	"rethrow": {}, "return": {}, "super": {}, "switch": {}, "this": {},
	"throw": {}, "true": {}, "try": {}, "var": {}, "void": {},
	"while": {}, "with": {},
	"abstract": {}, "as": {}, "covariant": {}, "deferred": {},
	"dynamic": {}, "export": {}, "extension": {}, "external": {},
	"factory": {}, "get": {}, "implements": {}, "import": {},
	"interface": {}, "late": {}, "library": {}, "mixin": {},
	"operator": {}, "part": {}, "required": {}, "sealed": {}, "set": {},
	"static": {}, "typedef": {},
}

// RemoveAccents removes accents from a string, converting accented characters to their base forms
func RemoveAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// SplitCamelCase splits a camelCase or PascalCase string into words.
// Uppercase runs stay together until a lowercase letter follows, so
// "XMLHttpRequest" splits into "XML", "Http", "Request".
func SplitCamelCase(s string) []string {
	if s == "" {
		return nil
	}

	var parts []string
	var current strings.Builder

	runes := []rune(s)
	for i, r := range runes {
		isNewWord := false
		if i > 0 && isUppercase(r) {
			if !isUppercase(runes[i-1]) {
				// Previous char was lowercase, so this starts a new word
				isNewWord = true
			} else if i < len(runes)-1 && !isUppercase(runes[i+1]) {
				// Previous char was uppercase, but next char is lowercase
				// This handles cases like "XMLHttp" -> "XML", "Http"
				isNewWord = true
			}
		}

		if isNewWord && current.Len() > 0 {
			parts = append(parts, current.String())
			current.Reset()
		}

		current.WriteRune(r)
	}

	if current.Len() > 0 {
		parts = append(parts, current.String())
	}

	return parts
}

// isUppercase checks if a rune is uppercase
func isUppercase(r rune) bool {
	return r >= 'A' && r <= 'Z'
}

// splitWords splits on non-alphanumeric separators first, then refines
// each part along camelCase boundaries. Accents are folded so that
// "negociação" and "negociacao" split identically.
func splitWords(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	s = RemoveAccents(s)

	parts := nonAlnum.Split(s, -1)
	var allParts []string
	for _, part := range parts {
		if part == "" {
			continue
		}
		allParts = append(allParts, SplitCamelCase(part)...)
	}
	return allParts
}

// ClassName converts a schema name to a PascalCase Dart class name.
// Uppercase runs collapse ("APIResponse" -> "ApiResponse") and
// separator styles are unified ("user_profile", "user-profile" and
// "USER_PROFILE" all map to "UserProfile").
func ClassName(s string) string {
	parts := splitWords(s)
	if len(parts) == 0 {
		return ""
	}

	b := strings.Builder{}
	for _, p := range parts {
		b.WriteString(strings.ToUpper(p[:1]))
		if len(p) > 1 {
			b.WriteString(strings.ToLower(p[1:]))
		}
	}
	return b.String()
}

// PropertyName converts a property key to a camelCase Dart identifier.
// Reserved words get a trailing underscore, names starting with a digit
// get an "n" prefix, and empty or fully-symbolic input maps to "value".
// A leading dollar sign is preserved verbatim; some schema dialects use
// it for operator keys and stripping it would collide distinct keys.
func PropertyName(s string) string {
	dollar := strings.HasPrefix(s, "$")
	if dollar {
		s = s[1:]
	}

	parts := splitWords(s)
	if len(parts) == 0 {
		if dollar {
			return "$"
		}
		return "value"
	}

	b := strings.Builder{}
	for i, p := range parts {
		if i == 0 {
			b.WriteString(strings.ToLower(p))
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		if len(p) > 1 {
			b.WriteString(strings.ToLower(p[1:]))
		}
	}
	name := b.String()

	if dollar {
		return "$" + name
	}
	if name[0] >= '0' && name[0] <= '9' {
		name = "n" + name
	}
	if _, ok := dartReserved[name]; ok {
		name += "_"
	}
	return name
}

// HeaderPropertyName converts a header name to a camelCase Dart
// identifier. The mapping is case-insensitive on the leading token:
// "x-api-key" and "X-Api-Key" both become "xApiKey".
func HeaderPropertyName(s string) string {
	return PropertyName(s)
}

// FileName converts a type name to a snake_case Dart file base name.
// Acronym runs split before a trailing capitalized word, so
// "HTTPSConnection" becomes "https_connection" and
// "ScheduleViewResponseV2Dto" becomes "schedule_view_response_v2_dto".
func FileName(s string) string {
	parts := splitWords(s)
	if len(parts) == 0 {
		return ""
	}

	for i := range parts {
		parts[i] = strings.ToLower(parts[i])
	}
	return strings.Join(parts, "_")
}
