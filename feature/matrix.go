package feature

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/ieee0824/htspack/internal/mathutil"
)

// MissingValue marks a frame value that does not exist, e.g. an unvoiced frame
// of an MSD log-F0 stream. It only appears on the wire; in memory such cells
// are flagged as missing.
const MissingValue float32 = -1.0e10

// Matrix holds T frames of Dim float64 values together with a per-cell missing
// flag. A missing cell still carries float64(MissingValue) as its numeric value,
// so arithmetic that ignores the flag sees the same number as the wire format.
type Matrix struct {
	rows    mathutil.Mat
	missing []bool // T*Dim flags, nil until the first missing cell
	dim     int
}

// NewMatrix returns a zero-filled matrix with the given shape.
func NewMatrix(frames, dim int) *Matrix {
	return &Matrix{rows: mathutil.NewMat(frames, dim), dim: dim}
}

// FromRows builds a matrix from row slices. All cells are present. Rows are
// copied; every row must have the length of the first.
func FromRows(rows [][]float64) *Matrix {
	dim := 0
	if len(rows) > 0 {
		dim = len(rows[0])
	}
	m := NewMatrix(len(rows), dim)
	for t, r := range rows {
		if len(r) != dim {
			panic(fmt.Sprintf("feature: row %d has %d values, want %d", t, len(r), dim))
		}
		copy(m.rows[t], r)
	}
	return m
}

// Frames returns the number of frames T.
func (m *Matrix) Frames() int { return len(m.rows) }

// Dim returns the number of values per frame.
func (m *Matrix) Dim() int { return m.dim }

// Row returns the numeric values of frame t. The slice aliases the matrix.
func (m *Matrix) Row(t int) []float64 { return m.rows[t] }

// At returns the value at (t, d) and whether it is present.
func (m *Matrix) At(t, d int) (float64, bool) {
	return m.rows[t][d], !m.IsMissing(t, d)
}

// Set stores a present value at (t, d).
func (m *Matrix) Set(t, d int, v float64) {
	m.rows[t][d] = v
	if m.missing != nil {
		m.missing[t*m.dim+d] = false
	}
}

// SetMissing flags (t, d) as missing.
func (m *Matrix) SetMissing(t, d int) {
	if m.missing == nil {
		m.missing = make([]bool, len(m.rows)*m.dim)
	}
	m.missing[t*m.dim+d] = true
	m.rows[t][d] = float64(MissingValue)
}

// IsMissing reports whether (t, d) is flagged as missing.
func (m *Matrix) IsMissing(t, d int) bool {
	return m.missing != nil && m.missing[t*m.dim+d]
}

// HasMissing reports whether any cell is missing.
func (m *Matrix) HasMissing() bool {
	return m.MissingCount() > 0
}

// MissingCount returns the number of missing cells.
func (m *Matrix) MissingCount() int {
	n := 0
	for _, miss := range m.missing {
		if miss {
			n++
		}
	}
	return n
}

// AppendFrame appends frame t to buf as little-endian float32 values, writing
// MissingValue for missing cells, and returns the extended buffer.
func (m *Matrix) AppendFrame(buf []byte, t int) []byte {
	row := m.rows[t]
	for d, v := range row {
		f := float32(v)
		if m.IsMissing(t, d) {
			f = MissingValue
		}
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
	}
	return buf
}

// Load reads a headerless little-endian float32 feature file with dim values
// per frame.
func Load(path string, dim int) (*Matrix, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &IOError{Op: "read", Path: path, Err: err}
	}
	return decode(data, dim, path)
}

// Decode reads a feature matrix from r. name identifies the source in errors.
func Decode(r io.Reader, dim int, name string) (*Matrix, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &IOError{Op: "read", Path: name, Err: err}
	}
	return decode(data, dim, name)
}

func decode(data []byte, dim int, name string) (*Matrix, error) {
	if dim <= 0 {
		return nil, &FormatError{Path: name, Msg: fmt.Sprintf("invalid frame dimension %d", dim)}
	}
	frameBytes := dim * 4
	if len(data)%frameBytes != 0 {
		return nil, &FormatError{
			Path: name,
			Msg:  fmt.Sprintf("%d bytes is not a multiple of the frame size %d (dim %d)", len(data), frameBytes, dim),
		}
	}

	T := len(data) / frameBytes
	m := NewMatrix(T, dim)
	off := 0
	for t := 0; t < T; t++ {
		row := m.rows[t]
		for d := range row {
			f := math.Float32frombits(binary.LittleEndian.Uint32(data[off:]))
			off += 4
			switch {
			case math.IsNaN(float64(f)):
				return nil, &DataError{Path: name, Msg: fmt.Sprintf("contains nan values (frame %d, dim %d)", t, d)}
			case f == MissingValue:
				m.SetMissing(t, d)
			default:
				row[d] = float64(f)
			}
		}
	}
	return m, nil
}
