package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ieee0824/htspack/feature"
	"github.com/ieee0824/htspack/htk"
	"github.com/ieee0824/htspack/internal/testutil"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

// setup writes a two-stream config with batch layout and one utterance "a".
func setup(t *testing.T) (dir, cfgPath string) {
	t.Helper()
	dir = t.TempDir()
	testutil.WriteFile(t, dir, "win/static", []byte("1 1\n"))
	testutil.WriteFile(t, dir, "win/delta", []byte("3 -0.5 0 0.5\n"))
	cfgPath = testutil.WriteFile(t, dir, "streams.yaml", []byte(`
frame_period: 50000
streams:
  - name: mgc
    order: 1
    windows: [win/static, win/delta]
    dir: mgc
    ext: mgc
  - name: lf0
    order: 0
    msd: true
    windows: [win/static, win/delta]
    dir: lf0
    ext: lf0
`))
	testutil.WriteFeatures(t, dir, "mgc/a.mgc", [][]float32{{1, 2}, {3, 4}, {5, 6}, {7, 8}})
	testutil.WriteFeatures(t, dir, "lf0/a.lf0", [][]float32{{5}, {feature.MissingValue}, {6}})
	return dir, cfgPath
}

func inputs(dir, base string) []string {
	return []string{
		filepath.Join(dir, "mgc", base+".mgc"),
		filepath.Join(dir, "lf0", base+".lf0"),
	}
}

func TestCmpAndInspect(t *testing.T) {
	dir, cfgPath := setup(t)
	out := filepath.Join(dir, "a.cmp")
	args := append([]string{"cmp", "--config", cfgPath, "--output", out}, inputs(dir, "a")...)
	if _, err := run(t, args...); err != nil {
		t.Fatalf("cmp error: %v", err)
	}

	stdout, err := run(t, "inspect", out)
	if err != nil {
		t.Fatalf("inspect error: %v", err)
	}
	for _, want := range []string{"frames=3", "dim=6", "period=50000", "kind=9", "missing=4"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("inspect output %q missing %q", stdout, want)
		}
	}
}

func TestCmpFramePeriodFlag(t *testing.T) {
	dir, cfgPath := setup(t)
	out := filepath.Join(dir, "a.cmp")
	args := append([]string{"--frame-period", "50", "cmp", "-c", cfgPath, "-o", out}, inputs(dir, "a")...)
	if _, err := run(t, args...); err != nil {
		t.Fatalf("cmp error: %v", err)
	}
	info, err := htk.Inspect(out)
	if err != nil {
		t.Fatalf("Inspect error: %v", err)
	}
	if info.Header.SampPeriod != 50 {
		t.Errorf("SampPeriod = %d, want 50", info.Header.SampPeriod)
	}
}

func TestFfo(t *testing.T) {
	dir, cfgPath := setup(t)
	out := filepath.Join(dir, "a.ffo")
	args := append([]string{"ffo", "--config", cfgPath, "--output", out}, inputs(dir, "a")...)
	if _, err := run(t, args...); err != nil {
		t.Fatalf("ffo error: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if want := 3 * 6 * 4; len(data) != want {
		t.Errorf("len = %d, want %d", len(data), want)
	}
}

func TestCmpWrongInputCount(t *testing.T) {
	dir, cfgPath := setup(t)
	out := filepath.Join(dir, "a.cmp")
	if _, err := run(t, "cmp", "--config", cfgPath, "--output", out, inputs(dir, "a")[0]); err == nil {
		t.Fatal("expected error for a missing stream input")
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Errorf("output exists after failure: %v", err)
	}
}

func TestBatch(t *testing.T) {
	dir, cfgPath := setup(t)
	list := testutil.WriteFile(t, dir, "list.scp", []byte("# utterances\na\n\n"))
	outDir := filepath.Join(dir, "out")

	if _, err := run(t, "batch", "--config", cfgPath, "--list", list, "--out-dir", outDir, "--format", "ffo"); err != nil {
		t.Fatalf("batch error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outDir, "a.ffo")); err != nil {
		t.Errorf("batch output: %v", err)
	}
}

func TestBatchReportsFailures(t *testing.T) {
	dir, cfgPath := setup(t)
	list := testutil.WriteFile(t, dir, "list.scp", []byte("a\nb\n"))
	outDir := filepath.Join(dir, "out")

	_, err := run(t, "batch", "-c", cfgPath, "-l", list, "--out-dir", outDir)
	if err == nil || !strings.Contains(err.Error(), "1 of 2") {
		t.Fatalf("err = %v, want a 1 of 2 failure", err)
	}
	if _, err := os.Stat(filepath.Join(outDir, "a.cmp")); err != nil {
		t.Errorf("good utterance output: %v", err)
	}
}

func TestBatchUnknownFormat(t *testing.T) {
	dir, cfgPath := setup(t)
	list := testutil.WriteFile(t, dir, "list.scp", []byte("a\n"))
	if _, err := run(t, "batch", "-c", cfgPath, "-l", list, "--out-dir", dir, "--format", "wav"); err == nil {
		t.Fatal("expected error for an unknown format")
	}
}

func TestWindow(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"--kind", "static"}, "1 1\n"},
		{[]string{"--kind", "delta"}, "3 -0.5 0 0.5\n"},
		{[]string{"--kind", "delta", "--width", "2"}, "5 -0.2 -0.1 0 0.1 0.2\n"},
		{[]string{"--kind", "accel"}, "3 1 -2 1\n"},
	}
	for _, tt := range tests {
		got, err := run(t, append([]string{"window"}, tt.args...)...)
		if err != nil {
			t.Fatalf("window %v error: %v", tt.args, err)
		}
		if got != tt.want {
			t.Errorf("window %v = %q, want %q", tt.args, got, tt.want)
		}
	}
}

func TestWindowToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lf0.win3")
	if _, err := run(t, "window", "--kind", "accel", "--output", path); err != nil {
		t.Fatalf("window error: %v", err)
	}
	w, err := feature.LoadWindow(path)
	if err != nil {
		t.Fatalf("LoadWindow error: %v", err)
	}
	testutil.RequireSliceNearlyEqual(t, w, feature.AccelerationWindow(), 0)
}

func TestWindowErrors(t *testing.T) {
	if _, err := run(t, "window", "--kind", "triangle"); err == nil {
		t.Error("expected error for unknown kind")
	}
	if _, err := run(t, "window", "--kind", "delta", "--width", "0"); err == nil {
		t.Error("expected error for zero width")
	}
}

func TestLogFormat(t *testing.T) {
	if _, err := run(t, "--log-format", "xml", "window"); err == nil {
		t.Error("expected error for unknown log format")
	}
	if _, err := run(t, "--log-format", "json", "window"); err != nil {
		t.Errorf("json log format: %v", err)
	}
}
