package watermark

import (
	"archive/zip"
	"io"
)

// Entry is one file of an archive.
type Entry interface {
	Name() string
	IsDir() bool
	Open() (io.ReadCloser, error)
}

// Archive enumerates the entries of a packaged set of classes.
type Archive interface {
	Entries() []Entry
}

// ZipArchive is an Archive backed by a zip file, e.g. a jar.
type ZipArchive struct {
	r      *zip.Reader
	closer io.Closer
}

// OpenZip opens the zip file at path. The caller must Close it.
func OpenZip(path string) (*ZipArchive, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	return &ZipArchive{r: &rc.Reader, closer: rc}, nil
}

// NewZipArchive reads a zip file of the given size from r.
func NewZipArchive(r io.ReaderAt, size int64) (*ZipArchive, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, err
	}
	return &ZipArchive{r: zr}, nil
}

// Entries returns the files of the archive in directory order.
func (a *ZipArchive) Entries() []Entry {
	entries := make([]Entry, 0, len(a.r.File))
	for _, f := range a.r.File {
		entries = append(entries, zipEntry{f})
	}
	return entries
}

// Close releases the underlying file, if the archive was opened by path.
func (a *ZipArchive) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

type zipEntry struct {
	f *zip.File
}

func (e zipEntry) Name() string                 { return e.f.Name }
func (e zipEntry) IsDir() bool                  { return e.f.FileInfo().IsDir() }
func (e zipEntry) Open() (io.ReadCloser, error) { return e.f.Open() }
