// Package exclusion decides which classes and members a pass leaves alone.
//
// Patterns are regular expressions matched against the qualified name of an
// element: the internal class name for classes ("com/example/Main") and the
// class name, a dot, the member name and its descriptor for members
// ("com/example/Main.run()V"). A pattern may be prefixed with a pass name
// and a colon to apply to that pass only:
//
//	StringEncryption:^com/example/config/
//	^com/example/generated/
package exclusion

import (
	"fmt"
	"maps"
	"regexp"
	"slices"

	"github.com/hashicorp/go-multierror"
)

// Global is the pass tag of patterns that apply to every pass.
const Global = "Global"

var tagged = regexp.MustCompile(`^([A-Za-z]+):(.*)$`)

// Manager holds compiled exclusion patterns grouped by pass.
type Manager struct {
	patterns map[string][]*regexp.Regexp
}

// New compiles the given patterns. Every invalid pattern is reported.
func New(patterns ...string) (*Manager, error) {
	m := &Manager{patterns: map[string][]*regexp.Regexp{}}
	var errs *multierror.Error
	for _, p := range patterns {
		if err := m.Add(p); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return m, errs.ErrorOrNil()
}

// Add compiles and adds one pattern.
func (m *Manager) Add(pattern string) error {
	pass, expr := Global, pattern
	if match := tagged.FindStringSubmatch(pattern); match != nil {
		pass, expr = match[1], match[2]
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return fmt.Errorf("exclusion %q: %w", pattern, err)
	}
	m.patterns[pass] = append(m.patterns[pass], re)
	return nil
}

// IsExempt returns true if name matches a global pattern or a pattern of
// the given pass.
func (m *Manager) IsExempt(name, pass string) bool {
	if m == nil {
		return false
	}
	for _, tag := range []string{Global, pass} {
		for _, re := range m.patterns[tag] {
			if re.MatchString(name) {
				return true
			}
		}
	}
	return false
}

// Passes returns the pass tags that have at least one pattern, sorted.
func (m *Manager) Passes() []string {
	return slices.Sorted(maps.Keys(m.patterns))
}
