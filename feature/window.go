package feature

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Window is a symmetric FIR window of odd length. Tap i applies to relative
// frame offset i-NLR().
type Window []float64

// NewWindow copies coeffs into a Window, rejecting even lengths.
func NewWindow(coeffs ...float64) (Window, error) {
	if len(coeffs)%2 != 1 {
		return nil, &FormatError{Msg: fmt.Sprintf("window size %d is not odd", len(coeffs))}
	}
	w := make(Window, len(coeffs))
	copy(w, coeffs)
	return w, nil
}

// Size returns the number of taps.
func (w Window) Size() int { return len(w) }

// NLR returns the number of taps on each side of the centre.
func (w Window) NLR() int { return (len(w) - 1) / 2 }

// Validate reports a *FormatError when w has an even number of taps.
func (w Window) Validate() error {
	if len(w)%2 != 1 {
		return &FormatError{Msg: fmt.Sprintf("window size %d is not odd", len(w))}
	}
	return nil
}

// activeTaps flags the taps that take part in the MSD boundary test: leading
// and trailing zero coefficients are inactive.
func (w Window) activeTaps() []bool {
	active := make([]bool, len(w))
	for i := range active {
		active[i] = true
	}
	for i := 0; i < len(w) && w[i] == 0; i++ {
		active[i] = false
	}
	for i := len(w) - 1; i >= 0 && w[i] == 0; i-- {
		active[i] = false
	}
	return active
}

// ParseWindow reads a window in the HTS text format: one line holding the odd
// tap count followed by that many coefficients. name identifies the source in
// errors. Tokens after the last coefficient are ignored.
func ParseWindow(r io.Reader, name string) (Window, error) {
	scanner := bufio.NewScanner(r)
	var line string
	for scanner.Scan() {
		line = strings.TrimSpace(scanner.Text())
		if line != "" {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, &IOError{Op: "read", Path: name, Err: err}
	}

	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, &FormatError{Path: name, Msg: "empty window file"}
	}
	size, err := strconv.Atoi(fields[0])
	if err != nil {
		return nil, &FormatError{Path: name, Msg: fmt.Sprintf("bad window size %q", fields[0])}
	}
	if size <= 0 || size%2 != 1 {
		return nil, &FormatError{Path: name, Msg: fmt.Sprintf("window size %d is not odd", size)}
	}
	if len(fields)-1 < size {
		return nil, &FormatError{Path: name, Msg: fmt.Sprintf("expected %d coefficients, got %d", size, len(fields)-1)}
	}

	w := make(Window, size)
	for i := range w {
		v, err := strconv.ParseFloat(fields[i+1], 64)
		if err != nil {
			return nil, &FormatError{Path: name, Msg: fmt.Sprintf("bad coefficient %d: %q", i, fields[i+1])}
		}
		w[i] = v
	}
	return w, nil
}

// LoadWindow is a convenience wrapper that opens a file path.
func LoadWindow(path string) (Window, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()
	return ParseWindow(f, path)
}

// LoadWindows loads window files in order.
func LoadWindows(paths []string) ([]Window, error) {
	windows := make([]Window, 0, len(paths))
	for _, p := range paths {
		w, err := LoadWindow(p)
		if err != nil {
			return nil, err
		}
		windows = append(windows, w)
	}
	return windows, nil
}

// WriteWindow writes w in the format read by ParseWindow.
func WriteWindow(wr io.Writer, w Window) error {
	if err := w.Validate(); err != nil {
		return err
	}
	var b strings.Builder
	b.WriteString(strconv.Itoa(len(w)))
	for _, c := range w {
		b.WriteByte(' ')
		b.WriteString(strconv.FormatFloat(c, 'g', -1, 64))
	}
	b.WriteByte('\n')
	_, err := io.WriteString(wr, b.String())
	return err
}
