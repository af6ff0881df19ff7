package feature

import (
	"bytes"
	"errors"
	"io/fs"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ieee0824/htspack/internal/testutil"
)

func TestLoad_Valid(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFeatures(t, dir, "a.mgc", [][]float32{{1, 2}, {3.5, -4}, {0.1, 6}})

	m, err := Load(path, 2)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if m.Frames() != 3 || m.Dim() != 2 {
		t.Fatalf("shape = %dx%d, want 3x2", m.Frames(), m.Dim())
	}
	if v, _ := m.At(1, 1); v != -4 {
		t.Errorf("m[1][1] = %v, want -4", v)
	}
	// widened from float32, not parsed from decimal
	if v, _ := m.At(2, 0); v != float64(float32(0.1)) {
		t.Errorf("m[2][0] = %v, want %v", v, float64(float32(0.1)))
	}
	if m.HasMissing() {
		t.Error("HasMissing = true, want false")
	}
}

func TestLoad_Empty(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "empty.lf0", nil)
	m, err := Load(path, 1)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if m.Frames() != 0 || m.Dim() != 1 {
		t.Errorf("shape = %dx%d, want 0x1", m.Frames(), m.Dim())
	}
}

func TestLoad_BadLength(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "bad.mgc", make([]byte, 12))
	_, err := Load(path, 2)
	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("err = %v, want *FormatError", err)
	}
	if fe.Path != path {
		t.Errorf("Path = %q, want %q", fe.Path, path)
	}
}

func TestLoad_BadDim(t *testing.T) {
	_, err := Decode(bytes.NewReader(make([]byte, 8)), 0, "mem")
	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("err = %v, want *FormatError", err)
	}
}

func TestLoad_NaN(t *testing.T) {
	path := testutil.WriteFeatures(t, t.TempDir(), "nan.lf0", [][]float32{{1}, {float32(math.NaN())}})
	_, err := Load(path, 1)
	var de *DataError
	if !errors.As(err, &de) {
		t.Fatalf("err = %v, want *DataError", err)
	}
	if !strings.Contains(err.Error(), path) {
		t.Errorf("error %q does not name %q", err, path)
	}
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.mgc"), 1)
	var ioe *IOError
	if !errors.As(err, &ioe) {
		t.Fatalf("err = %v, want *IOError", err)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("errors.Is(err, fs.ErrNotExist) = false for %v", err)
	}
}

func TestLoad_SentinelBecomesMissing(t *testing.T) {
	data := testutil.Float32LE([][]float32{{5}, {MissingValue}, {6}})
	m, err := Decode(bytes.NewReader(data), 1, "lf0")
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if !m.IsMissing(1, 0) {
		t.Error("frame 1 not flagged missing")
	}
	if m.IsMissing(0, 0) || m.IsMissing(2, 0) {
		t.Error("voiced frames flagged missing")
	}
	if got := m.MissingCount(); got != 1 {
		t.Errorf("MissingCount = %d, want 1", got)
	}
	v, present := m.At(1, 0)
	if present || v != float64(MissingValue) {
		t.Errorf("At(1,0) = %v, %v; want %v, false", v, present, float64(MissingValue))
	}
}

func TestAppendFrame_RoundTrip(t *testing.T) {
	frames := [][]float32{{1.25, MissingValue}, {-3, 4}}
	data := testutil.Float32LE(frames)
	m, err := Decode(bytes.NewReader(data), 2, "mem")
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	var out []byte
	for tt := 0; tt < m.Frames(); tt++ {
		out = m.AppendFrame(out, tt)
	}
	if !bytes.Equal(out, data) {
		t.Errorf("re-encoded bytes differ:\n got %v\nwant %v", out, data)
	}
}

func TestSetClearsMissing(t *testing.T) {
	m := NewMatrix(1, 1)
	m.SetMissing(0, 0)
	m.Set(0, 0, 2)
	if v, present := m.At(0, 0); !present || v != 2 {
		t.Errorf("At = %v, %v; want 2, true", v, present)
	}
}
