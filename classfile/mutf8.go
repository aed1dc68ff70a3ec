package classfile

import (
	"errors"

	"github.com/deepnoodle-ai/radon/bytecode"
)

var errBadUTF8 = errors.New("invalid modified UTF-8")

// DecodeModifiedUTF8 decodes the modified UTF-8 used by CONSTANT_Utf8
// entries. The null character is encoded in two bytes and supplementary
// characters as two encoded surrogates.
func DecodeModifiedUTF8(b []byte) (string, error) {
	units := make([]uint16, 0, len(b))
	for i := 0; i < len(b); {
		c := b[i]
		switch {
		case c&0x80 == 0:
			if c == 0 {
				return "", errBadUTF8
			}
			units = append(units, uint16(c))
			i++
		case c&0xe0 == 0xc0:
			if i+1 >= len(b) || b[i+1]&0xc0 != 0x80 {
				return "", errBadUTF8
			}
			units = append(units, uint16(c&0x1f)<<6|uint16(b[i+1]&0x3f))
			i += 2
		case c&0xf0 == 0xe0:
			if i+2 >= len(b) || b[i+1]&0xc0 != 0x80 || b[i+2]&0xc0 != 0x80 {
				return "", errBadUTF8
			}
			units = append(units, uint16(c&0x0f)<<12|uint16(b[i+1]&0x3f)<<6|uint16(b[i+2]&0x3f))
			i += 3
		default:
			return "", errBadUTF8
		}
	}
	return bytecode.FromChars(units), nil
}

// EncodeModifiedUTF8 encodes s for a CONSTANT_Utf8 entry.
func EncodeModifiedUTF8(s string) []byte {
	units := bytecode.Chars(s)
	out := make([]byte, 0, len(units))
	for _, u := range units {
		switch {
		case u != 0 && u < 0x80:
			out = append(out, byte(u))
		case u < 0x800:
			out = append(out, 0xc0|byte(u>>6), 0x80|byte(u)&0x3f)
		default:
			out = append(out, 0xe0|byte(u>>12), 0x80|byte(u>>6)&0x3f, 0x80|byte(u)&0x3f)
		}
	}
	return out
}
