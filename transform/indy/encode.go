package indy

import "github.com/deepnoodle-ai/radon/bytecode"

// Keys XORed into every UTF-16 unit of the identifiers carried as bootstrap
// arguments. The bootstrap method uses the same keys to decode them.
const (
	OwnerKey = 4382
	NameKey  = 3940
	DescKey  = 5739
)

// Encode XORs every UTF-16 unit of s with key.
func Encode(s string, key uint16) string {
	units := bytecode.Chars(s)
	for i, u := range units {
		units[i] = u ^ key
	}
	return bytecode.FromChars(units)
}

// Decode reverses Encode.
func Decode(s string, key uint16) string {
	return Encode(s, key)
}
