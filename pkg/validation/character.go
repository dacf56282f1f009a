// Package validation implements the A-/D-/D-or-separator character
// set checks ECMA-119 requires of Primary descriptor identifiers.
package validation

import "strings"

// ValidateACharacters reports whether s contains only a-characters.
// Empty strings pass.
func ValidateACharacters(s string) bool {
	return validateSet(s, aCharacterSet)
}

// ValidateDCharacters reports whether s contains only d-characters.
// Empty strings pass.
func ValidateDCharacters(s string) bool {
	return validateSet(s, dCharacterSet)
}

// ValidateDOrSeparatorCharacters reports whether s contains only
// d-characters plus the separators '.' and ';', as required of the
// copyright/abstract/bibliographic file identifier fields.
func ValidateDOrSeparatorCharacters(s string) bool {
	return validateSet(s, dOrSeparatorCharacterSet)
}

const (
	aCharacters = " !\"%&'()*+,-./0123456789:;<=>?ABCDEFGHIJKLMNOPQRSTUVWXYZ_"
	dCharacters = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ_"
	separators  = ".;"
)

var (
	aCharacterSet             = buildSet(aCharacters)
	dCharacterSet             = buildSet(dCharacters)
	dOrSeparatorCharacterSet  = buildSet(dCharacters + separators)
)

func buildSet(s string) map[rune]struct{} {
	m := make(map[rune]struct{}, len(s))
	for _, r := range s {
		m[r] = struct{}{}
	}
	return m
}

func validateSet(s string, set map[rune]struct{}) bool {
	if s == "" {
		return true
	}
	for _, r := range s {
		if _, ok := set[r]; !ok {
			return false
		}
	}
	return true
}

// StripVersion removes a trailing ";N" version suffix from a legacy
// identifier, returning the bare name unchanged if no suffix is
// present.
func StripVersion(name string) string {
	if idx := strings.LastIndexByte(name, ';'); idx >= 0 {
		return name[:idx]
	}
	return name
}
