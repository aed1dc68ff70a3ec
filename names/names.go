// Package names generates identifiers for synthesized classes and members.
//
// A Generator draws characters from a dictionary and never hands out the
// same identifier twice, nor one that was reserved because it already exists
// in the classes being transformed.
package names

import (
	"fmt"
	"maps"
	"math/rand"
	"slices"
	"strings"
)

// Built-in dictionaries.
const (
	Alphabetic   = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	Alphanumeric = Alphabetic + "0123456789"
	// Unicode mixes look-alike letters from several scripts.
	Unicode = "аеорсхΑΒΕΖΗΙΚΜΝΟΡΤ"
	// Spaces holds characters that render as blank space.
	Spaces = "\u2000\u2001\u2002\u2003\u2004\u2005\u2006\u2007\u2008\u2009\u200a"
)

var dictionaries = map[string]string{
	"alphabetic":   Alphabetic,
	"alphanumeric": Alphanumeric,
	"unicode":      Unicode,
	"spaces":       Spaces,
}

// Characters that the class file format forbids in unqualified names.
const forbidden = ".;[/<>"

// Dictionaries returns the names of the built-in dictionaries, sorted.
func Dictionaries() []string {
	return slices.Sorted(maps.Keys(dictionaries))
}

// Resolve returns the characters of the named built-in dictionary. Any other
// value is taken as a custom dictionary and returned unchanged.
func Resolve(name string) string {
	if chars, ok := dictionaries[strings.ToLower(name)]; ok {
		return chars
	}
	return name
}

// Validate checks that chars can be used as a dictionary.
func Validate(chars string) error {
	distinct := map[rune]struct{}{}
	for _, r := range chars {
		if strings.ContainsRune(forbidden, r) {
			return fmt.Errorf("dictionary contains forbidden character %q", r)
		}
		distinct[r] = struct{}{}
	}
	if len(distinct) < 2 {
		return fmt.Errorf("dictionary needs at least 2 distinct characters, got %d", len(distinct))
	}
	return nil
}

// Generator produces random identifiers from a dictionary.
type Generator struct {
	rng    *rand.Rand
	chars  []rune
	length int
	used   map[string]struct{}
}

// Retries at one length before the generator moves to longer names.
const attemptsPerLength = 16

// New returns a generator drawing from the given characters. Identifiers
// start at the given length and grow when that length runs out of names.
func New(chars string, length int, rng *rand.Rand) *Generator {
	if length < 1 {
		length = 1
	}
	return &Generator{
		rng:    rng,
		chars:  []rune(chars),
		length: length,
		used:   map[string]struct{}{},
	}
}

// Reserve marks names as taken.
func (g *Generator) Reserve(names ...string) {
	for _, name := range names {
		g.used[name] = struct{}{}
	}
}

// RandomIdentifier returns an identifier that was neither returned before
// nor reserved.
func (g *Generator) RandomIdentifier() string {
	for {
		for i := 0; i < attemptsPerLength; i++ {
			name := g.draw(g.length)
			if _, taken := g.used[name]; !taken {
				g.used[name] = struct{}{}
				return name
			}
		}
		g.length++
	}
}

// RandomClassName returns a fresh internal class name in the default
// package.
func (g *Generator) RandomClassName() string {
	return g.RandomIdentifier()
}

// RandomExistingClass returns one of the given class names, or "" when the
// list is empty.
func (g *Generator) RandomExistingClass(classes []string) string {
	if len(classes) == 0 {
		return ""
	}
	return classes[g.rng.Intn(len(classes))]
}

func (g *Generator) draw(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteRune(g.chars[g.rng.Intn(len(g.chars))])
	}
	return b.String()
}
