package bytecode

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashCode(t *testing.T) {
	tests := []struct {
		input    string
		expected int32
	}{
		{"", 0},
		{"main", 3343801},
		{"hello", 99162322},
		{"<clinit>", -1944711511},
		{"com.example.Main", 812767018},
		{"\U0001F600a", 54959966},
	}
	for _, tt := range tests {
		require.Equal(t, tt.expected, HashCode(tt.input), tt.input)
	}
}

func TestCharsSupplementary(t *testing.T) {
	require.Equal(t, []uint16{0xd83d, 0xde00, 'a'}, Chars("\U0001F600a"))
	require.Equal(t, "\U0001F600a", FromChars([]uint16{0xd83d, 0xde00, 'a'}))
}

func TestCharsRoundTrip(t *testing.T) {
	for _, s := range []string{"", "abc", "java/lang/String", "héllo wörld", "日本語", "\U0001F600"} {
		require.Equal(t, s, FromChars(Chars(s)))
	}
}

func TestUnpairedSurrogates(t *testing.T) {
	units := [][]uint16{
		{0xd800},
		{'a', 0xdc00, 'b'},
		{0xdbff, 'x'},
		{0xdfff, 0xd800},
	}
	for _, u := range units {
		require.Equal(t, u, Chars(FromChars(u)))
	}
}
