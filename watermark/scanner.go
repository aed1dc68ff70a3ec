// Package watermark embeds and recovers identifiers hidden in compiled
// classes.
//
// A watermark is a constant pool text entry made of the Prefix followed by
// the AES encrypted identifier, or a class Signature attribute holding such
// an entry. The Scanner reads the classes of an archive without loading
// them and reports every watermark it can decrypt with its key.
package watermark

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"

	"github.com/deepnoodle-ai/radon/classfile"
	"github.com/deepnoodle-ai/radon/errz"
)

// Prefix marks a constant pool entry as a watermark.
const Prefix = "WMID: "

// Mark returns the constant pool text that carries id.
func Mark(id, key string) (string, error) {
	payload, err := Encrypt(id, key)
	if err != nil {
		return "", err
	}
	return Prefix + payload, nil
}

// Source tells where in a class a watermark was found.
type Source int

const (
	// ConstantPool is a CONSTANT_Utf8 entry.
	ConstantPool Source = iota
	// ClassSignature is the Signature attribute of the class.
	ClassSignature
)

// Finding is a recovered watermark.
type Finding struct {
	// Entry is the archive path of the class.
	Entry  string
	Source Source
	// Index is the constant pool index of the entry, for ConstantPool
	// findings.
	Index int
	ID    string
}

// Location returns where the watermark was found, e.g.
// "com/example/Main.class constant #12".
func (f Finding) Location() string {
	if f.Source == ClassSignature {
		return f.Entry + " class signature"
	}
	return fmt.Sprintf("%s constant #%d", f.Entry, f.Index)
}

// String returns a human-readable description of the finding.
func (f Finding) String() string {
	return fmt.Sprintf("watermark ID `%s` found at `%s`", f.ID, f.Location())
}

// Report is the result of a scan.
type Report struct {
	Findings []Finding
	// Skipped collects the entries that could not be read. It is nil when
	// every class was read.
	Skipped *multierror.Error
}

// Scanner recovers watermarks.
type Scanner struct {
	key    string
	logger zerolog.Logger
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithLogger sets the logger that records skipped entries.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Scanner) {
		s.logger = l
	}
}

// NewScanner returns a scanner decrypting with key.
func NewScanner(key string, opts ...Option) *Scanner {
	s := &Scanner{key: key, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan collects every watermark of the archive.
func (s *Scanner) Scan(a Archive) *Report {
	report := &Report{}
	report.Skipped = s.Walk(a, func(f Finding) bool {
		report.Findings = append(report.Findings, f)
		return true
	})
	return report
}

// Walk calls yield for every watermark of the archive, in entry order,
// until yield returns false. Entries that are not valid classes are
// skipped and returned as errors; a failed decryption is not an error.
func (s *Scanner) Walk(a Archive, yield func(Finding) bool) *multierror.Error {
	var skipped *multierror.Error
	for _, entry := range a.Entries() {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".class") {
			continue
		}
		c, err := readClass(entry)
		if err != nil {
			s.logger.Debug().Err(err).Str("entry", entry.Name()).Msg("Skipped entry")
			skipped = multierror.Append(skipped, err)
			continue
		}
		for _, f := range s.inspect(entry.Name(), c) {
			if !yield(f) {
				return skipped
			}
		}
	}
	return skipped
}

func readClass(entry Entry) (*classfile.Class, error) {
	rc, err := entry.Open()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", entry.Name(), err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", entry.Name(), err)
	}
	c, err := classfile.Parse(data)
	if err != nil {
		var se *errz.StructuredError
		if errors.As(err, &se) {
			return nil, se.WithEntry(entry.Name())
		}
		return nil, fmt.Errorf("%s: %w", entry.Name(), err)
	}
	return c, nil
}

func (s *Scanner) inspect(entry string, c *classfile.Class) []Finding {
	var findings []Finding
	for _, constant := range c.Constants {
		if id, ok := s.decode(constant.Text); ok {
			findings = append(findings, Finding{Entry: entry, Source: ConstantPool, Index: constant.Index, ID: id})
		}
	}
	if c.HasSignature {
		if id, ok := s.decodeSignature(c.Signature); ok {
			findings = append(findings, Finding{Entry: entry, Source: ClassSignature, ID: id})
		}
	}
	return findings
}

// decode returns the identifier carried by a marked text entry.
func (s *Scanner) decode(text string) (string, bool) {
	if !strings.HasPrefix(text, Prefix) || len(text) <= len(Prefix) {
		return "", false
	}
	id, err := Decrypt(text[len(Prefix):], s.key)
	if err != nil || !readable(id) {
		return "", false
	}
	return id, true
}

// decodeSignature accepts a marked signature, or a signature that decrypts
// to a marked identifier.
func (s *Scanner) decodeSignature(sig string) (string, bool) {
	if id, ok := s.decode(sig); ok {
		return id, true
	}
	plain, err := Decrypt(sig, s.key)
	if err != nil || !strings.HasPrefix(plain, Prefix) {
		return "", false
	}
	id := plain[len(Prefix):]
	return id, id != "" && readable(id)
}

// readable rejects the garbage a wrong key can produce with valid padding.
func readable(s string) bool {
	if !utf8.ValidString(s) {
		return false
	}
	for _, r := range s {
		if unicode.IsControl(r) {
			return false
		}
	}
	return true
}
