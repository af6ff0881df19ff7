package mathutil

import "github.com/cwbudde/algo-vecmath"

// Mat is a 2D float64 matrix stored as row-major [][]float64.
type Mat = [][]float64

// NewMat creates a rows x cols matrix initialized to zero.
// All rows share one backing slice.
func NewMat(rows, cols int) Mat {
	m := make(Mat, rows)
	data := make([]float64, rows*cols)
	for i := range m {
		m[i] = data[i*cols : (i+1)*cols : (i+1)*cols]
	}
	return m
}

// Clamp limits i to [lo, hi].
func Clamp(i, lo, hi int) int {
	if i < lo {
		return lo
	}
	if i > hi {
		return hi
	}
	return i
}

// AddScaled accumulates alpha*src into dst, element by element.
// scratch must have the same length as dst and src; its contents are overwritten.
func AddScaled(dst, src, scratch []float64, alpha float64) {
	vecmath.ScaleBlock(scratch, src, alpha)
	vecmath.AddBlockInPlace(dst, scratch)
}

// MaxAbs returns the largest absolute value in v, 0 for an empty slice.
func MaxAbs(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	return vecmath.MaxAbs(v)
}
