package zkif

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestFrameRoundTrip(t *testing.T) {
	c := qt.New(t)

	payload := []byte("gadget payload")
	buf := Frame(payload)
	got, rest, err := SplitFrame(buf)
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.DeepEquals, payload)
	c.Assert(rest, qt.HasLen, 0)

	// Two frames back to back.
	buf = append(Frame([]byte("a")), Frame([]byte("bb"))...)
	first, rest, err := SplitFrame(buf)
	c.Assert(err, qt.IsNil)
	c.Assert(first, qt.DeepEquals, []byte("a"))
	second, rest, err := SplitFrame(rest)
	c.Assert(err, qt.IsNil)
	c.Assert(second, qt.DeepEquals, []byte("bb"))
	c.Assert(rest, qt.HasLen, 0)
}

func TestSplitFrameTruncated(t *testing.T) {
	c := qt.New(t)

	_, _, err := SplitFrame([]byte{1, 0})
	c.Assert(err, qt.ErrorIs, ErrDecode)

	buf := Frame([]byte("payload"))
	_, _, err = SplitFrame(buf[:len(buf)-2])
	c.Assert(err, qt.ErrorIs, ErrDecode)
}

func TestReadFilesOrder(t *testing.T) {
	c := qt.New(t)
	dir := t.TempDir()

	pathA := filepath.Join(dir, "a.zkif")
	pathB := filepath.Join(dir, "b.zkif")
	c.Assert(os.WriteFile(pathA, []byte("AAAA"), 0o600), qt.IsNil)
	c.Assert(os.WriteFile(pathB, []byte("BB"), 0o600), qt.IsNil)

	ab, err := ReadFiles([]string{pathA, pathB})
	c.Assert(err, qt.IsNil)
	c.Assert(ab, qt.DeepEquals, []byte("AAAABB"))

	ba, err := ReadFiles([]string{pathB, pathA})
	c.Assert(err, qt.IsNil)
	c.Assert(ba, qt.DeepEquals, []byte("BBAAAA"))
	c.Assert(bytes.Equal(ab, ba), qt.IsFalse)
}

func TestReadFilesAbortsOnMissing(t *testing.T) {
	c := qt.New(t)
	dir := t.TempDir()

	pathA := filepath.Join(dir, "a.zkif")
	c.Assert(os.WriteFile(pathA, []byte("AAAA"), 0o600), qt.IsNil)

	buf, err := ReadFiles([]string{pathA, filepath.Join(dir, "missing.zkif")})
	c.Assert(err, qt.IsNotNil)
	c.Assert(buf, qt.IsNil)
}
