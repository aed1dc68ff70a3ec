package bytecode

import (
	"unicode/utf16"
	"unicode/utf8"
)

// Chars returns the UTF-16 code units of s. Unpaired surrogates that were
// written by FromChars are returned as the original single unit.
func Chars(s string) []uint16 {
	units := make([]uint16, 0, len(s))
	for i := 0; i < len(s); {
		if u, ok := decodeSurrogate(s[i:]); ok {
			units = append(units, u)
			i += 3
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		i += size
		if r >= 0x10000 {
			hi, lo := utf16.EncodeRune(r)
			units = append(units, uint16(hi), uint16(lo))
			continue
		}
		units = append(units, uint16(r))
	}
	return units
}

// FromChars builds a string from UTF-16 code units. Surrogate pairs become
// the supplementary rune they encode; an unpaired surrogate is written as
// its three byte generalized UTF-8 form so that Chars can recover it.
func FromChars(units []uint16) string {
	buf := make([]byte, 0, len(units))
	for i := 0; i < len(units); i++ {
		u := units[i]
		if utf16.IsSurrogate(rune(u)) {
			if u < 0xdc00 && i+1 < len(units) {
				if r := utf16.DecodeRune(rune(u), rune(units[i+1])); r != utf8.RuneError {
					buf = utf8.AppendRune(buf, r)
					i++
					continue
				}
			}
			buf = append(buf,
				0xe0|byte(u>>12),
				0x80|byte(u>>6)&0x3f,
				0x80|byte(u)&0x3f)
			continue
		}
		buf = utf8.AppendRune(buf, rune(u))
	}
	return string(buf)
}

// HashCode returns the value java.lang.String#hashCode computes for s.
func HashCode(s string) int32 {
	var h int32
	for _, u := range Chars(s) {
		h = 31*h + int32(u)
	}
	return h
}

func decodeSurrogate(s string) (uint16, bool) {
	if len(s) < 3 || s[0] != 0xed || s[1] < 0xa0 || s[1] > 0xbf || s[2]&0xc0 != 0x80 {
		return 0, false
	}
	return 0xd000 | uint16(s[1]&0x3f)<<6 | uint16(s[2]&0x3f), true
}
