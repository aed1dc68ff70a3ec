package watermark

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/deepnoodle-ai/radon/classfile"
	"github.com/deepnoodle-ai/radon/errz"
)

const key = "s3cret"

func buildArchive(t *testing.T, files map[string][]byte, order ...string) *ZipArchive {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, name := range order {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write(files[name])
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	a, err := NewZipArchive(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	return a
}

func marked(t *testing.T, id string) string {
	t.Helper()
	m, err := Mark(id, key)
	require.NoError(t, err)
	return m
}

func TestCipherRoundTrip(t *testing.T) {
	for _, id := range []string{"", "abc123", "exactly16bytes!!", "ünïcödé id"} {
		payload, err := Encrypt(id, key)
		require.NoError(t, err)
		plain, err := Decrypt(payload, key)
		require.NoError(t, err)
		require.Equal(t, id, plain)
	}
}

func TestCipherMatchesReference(t *testing.T) {
	// AES-128-ECB with the first 16 bytes of SHA-1("key") and PKCS#5 padding.
	payload, err := Encrypt("abc123", "key")
	require.NoError(t, err)
	require.Equal(t, "xhROpdPKd7tenEhM3F7JNA==", payload)
	plain, err := Decrypt(payload, "key")
	require.NoError(t, err)
	require.Equal(t, "abc123", plain)
}

func TestDecryptFailures(t *testing.T) {
	for _, payload := range []string{"not base64!", "", "AAAA", "Tm90IGEgYmxvY2s="} {
		_, err := Decrypt(payload, key)
		require.Error(t, err, payload)
		kind, ok := errz.KindOf(err)
		require.True(t, ok)
		require.Equal(t, errz.ErrDecrypt, kind)
	}
}

func TestScanRoundTrip(t *testing.T) {
	class := (&classfile.Skeleton{
		Name:  "com/example/Main",
		Texts: []string{"hello", marked(t, "abc123"), "WMID: "},
	}).Bytes()
	a := buildArchive(t, map[string][]byte{
		"com/example/Main.class": class,
		"META-INF/MANIFEST.MF":   []byte("Manifest-Version: 1.0\n"),
	}, "META-INF/MANIFEST.MF", "com/example/Main.class")

	report := NewScanner(key).Scan(a)
	require.Nil(t, report.Skipped)
	require.Len(t, report.Findings, 1)
	f := report.Findings[0]
	require.Equal(t, "abc123", f.ID)
	require.Equal(t, "com/example/Main.class", f.Entry)
	require.Equal(t, ConstantPool, f.Source)
	require.Equal(t, 6, f.Index)
	require.Equal(t, "watermark ID `abc123` found at `com/example/Main.class constant #6`", f.String())
	require.Contains(t, f.String(), "abc123")
}

func TestScanWithWrongKey(t *testing.T) {
	class := (&classfile.Skeleton{Name: "A", Texts: []string{marked(t, "abc123")}}).Bytes()
	a := buildArchive(t, map[string][]byte{"A.class": class}, "A.class")

	report := NewScanner("another key").Scan(a)
	require.Empty(t, report.Findings)
	require.Nil(t, report.Skipped)
}

func TestScanSignature(t *testing.T) {
	// The older embedder encrypted the prefix together with the id.
	whole, err := Encrypt(Prefix+"legacy", key)
	require.NoError(t, err)
	legacy := (&classfile.Skeleton{Name: "a/Legacy", Signature: whole}).Bytes()
	prefixed := (&classfile.Skeleton{Name: "a/Prefixed", Signature: marked(t, "current")}).Bytes()
	a := buildArchive(t, map[string][]byte{
		"a/Legacy.class":   legacy,
		"a/Prefixed.class": prefixed,
	}, "a/Legacy.class", "a/Prefixed.class")

	report := NewScanner(key).Scan(a)
	require.Nil(t, report.Skipped)

	var signatures []Finding
	for _, f := range report.Findings {
		if f.Source == ClassSignature {
			signatures = append(signatures, f)
		}
	}
	require.Equal(t, []Finding{
		{Entry: "a/Legacy.class", Source: ClassSignature, ID: "legacy"},
		{Entry: "a/Prefixed.class", Source: ClassSignature, ID: "current"},
	}, signatures)
	require.Equal(t, "a/Legacy.class class signature", signatures[0].Location())
}

func TestMalformedEntriesAreSkipped(t *testing.T) {
	good := (&classfile.Skeleton{Name: "Good", Texts: []string{marked(t, "found")}}).Bytes()
	truncated := good[:len(good)/2]
	a := buildArchive(t, map[string][]byte{
		"Bad.class":       []byte("not a class"),
		"Truncated.class": truncated,
		"dir/":            nil,
		"Good.class":      good,
	}, "Bad.class", "Truncated.class", "dir/", "Good.class")

	report := NewScanner(key).Scan(a)
	require.Len(t, report.Findings, 1)
	require.Equal(t, "found", report.Findings[0].ID)
	require.NotNil(t, report.Skipped)
	require.Len(t, report.Skipped.Errors, 2)
	require.Contains(t, report.Skipped.Errors[0].Error(), "Bad.class")
	kind, ok := errz.KindOf(report.Skipped.Errors[1])
	require.True(t, ok)
	require.Equal(t, errz.ErrTruncated, kind)
}

func TestWalkStopsWhenAsked(t *testing.T) {
	class := (&classfile.Skeleton{Name: "A", Texts: []string{marked(t, "one"), marked(t, "two")}}).Bytes()
	a := buildArchive(t, map[string][]byte{"A.class": class, "B.class": class}, "A.class", "B.class")

	var ids []string
	NewScanner(key).Walk(a, func(f Finding) bool {
		ids = append(ids, f.ID)
		return len(ids) < 3
	})
	require.Equal(t, []string{"one", "two", "one"}, ids)
}
