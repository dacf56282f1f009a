package writer

import (
	"strings"
	"unicode/utf16"

	"github.com/arcfract/iso9660kit/pkg/consts"
)

// deriveLegacyName implements the Primary-descriptor 8.3;v derivation:
// uppercase and replace non-D-characters, trim the extension to 3
// characters and the base so base+1+ext <= 12, then append ";1".
func deriveLegacyName(raw string) string {
	base, ext := splitExt(raw)
	base = sanitizeD(base)
	ext = sanitizeD(ext)

	if len(ext) > 3 {
		ext = ext[:3]
	}
	maxBase := 12 - 1 - len(ext) // the ";1" version suffix is appended after this budget, not reserved from it
	if maxBase < 1 {
		maxBase = 1
	}
	if len(base) > maxBase {
		base = base[:maxBase]
	}
	if base == "" {
		base = "_"
	}

	name := base
	if ext != "" {
		name += "." + ext
	}
	return name + ";1"
}

func splitExt(name string) (base, ext string) {
	idx := strings.LastIndexByte(name, '.')
	if idx <= 0 || idx == len(name)-1 {
		return name, ""
	}
	return name[:idx], name[idx+1:]
}

func sanitizeD(s string) string {
	s = strings.ToUpper(s)
	var out strings.Builder
	for _, r := range s {
		if strings.ContainsRune(consts.D_CHARACTERS, r) {
			out.WriteRune(r)
		} else {
			out.WriteByte('_')
		}
	}
	return out.String()
}

// uniquifyLegacyName perturbs candidate against the set of names
// already taken in a sibling scope, appending digits to the base or
// substituting trailing base characters with digits, in ascending
// tie-break order: BASE0, BASE1, ... BASE9, BAS00, ... etc.
func uniquifyLegacyName(candidate string, taken map[string]bool) string {
	if !taken[candidate] {
		return candidate
	}

	withoutVersion := strings.TrimSuffix(candidate, ";1")
	base, ext := splitExt(withoutVersion)
	suffixLen := 1
	limit, n := 10, 0 // n counts attempts at the current width

	for attempt := 0; attempt < 10000; attempt++ {
		if n == limit && suffixLen < 8 {
			suffixLen++
			limit *= 10
			n = 0
		}
		digits := digitSuffix(n, suffixLen)
		for len(digits) >= len(base) && suffixLen < 8 {
			suffixLen++
			limit *= 10
			digits = digitSuffix(n, suffixLen)
		}
		n++
		trimmed := base
		if len(trimmed) > 8-len(digits) {
			trimmed = trimmed[:8-len(digits)]
		}
		newBase := trimmed + digits
		newName := newBase
		if ext != "" {
			newName += "." + ext
		}
		newName += ";1"
		if !taken[newName] {
			return newName
		}
	}
	return candidate
}

// digitSuffix returns the decimal digits for the n-th collision
// attempt at the given width, zero-padded (0, 1, ..., 9, 00, 01, ...).
func digitSuffix(n, width int) string {
	mod := 1
	for i := 0; i < width; i++ {
		mod *= 10
	}
	v := n % mod
	s := []byte{}
	for i := 0; i < width; i++ {
		s = append([]byte{byte('0' + v%10)}, s...)
		v /= 10
	}
	return string(s)
}

const jolietMaxNameBytes = 207

// deriveJolietName encodes raw as UCS-2 BE (or leaves it as UTF-8,
// depending on enc) and truncates at a whole-code-unit boundary to at
// most 207 bytes.
func deriveJolietName(raw string, utf8Mode bool) string {
	if utf8Mode {
		b := []byte(raw)
		if len(b) <= jolietMaxNameBytes {
			return raw
		}
		return truncateUTF8(b, jolietMaxNameBytes)
	}

	units := utf16.Encode([]rune(raw))
	maxUnits := jolietMaxNameBytes / 2
	if len(units) <= maxUnits {
		return raw
	}
	return string(utf16.Decode(units[:maxUnits]))
}

func truncateUTF8(b []byte, n int) string {
	if n > len(b) {
		n = len(b)
	}
	for n > 0 && !isUTF8Start(b, n) {
		n--
	}
	return string(b[:n])
}

func isUTF8Start(b []byte, i int) bool {
	if i >= len(b) {
		return true
	}
	return b[i]&0xC0 != 0x80
}
