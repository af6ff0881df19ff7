package feature

import "github.com/ieee0824/htspack/internal/mathutil"

// ApplyWindows computes the observation vectors O = W·C for a static feature
// matrix. The result has in.Dim()*len(windows) columns: one block per window,
// in window order.
//
// Each output value is the window-weighted sum of the input values at relative
// offsets -NLR..NLR, with frame indices clamped to [0, T-1].
//
// With useMSD set, an output cell is missing when any active tap of its window
// reads a missing input cell; see Window.activeTaps.
func ApplyWindows(in *Matrix, windows []Window, useMSD bool) *Matrix {
	T, dim := in.Frames(), in.Dim()
	out := NewMatrix(T, dim*len(windows))

	acc := make([]float64, dim)
	scratch := make([]float64, dim)
	msd := useMSD && in.missing != nil

	for wi, win := range windows {
		nlr := win.NLR()
		var active []bool
		if msd {
			active = win.activeTaps()
		}
		col := dim * wi

		for t := 0; t < T; t++ {
			clear(acc)
			for k := -nlr; k <= nlr; k++ {
				src := in.rows[mathutil.Clamp(t+k, 0, T-1)]
				mathutil.AddScaled(acc, src, scratch, win[k+nlr])
			}
			copy(out.rows[t][col:col+dim], acc)

			if !msd {
				continue
			}
			for d := 0; d < dim; d++ {
				if in.missingUnder(t, d, active) {
					out.SetMissing(t, col+d)
				}
			}
		}
	}
	return out
}

// missingUnder reports whether any active tap centred on frame t reads a
// missing value in column d.
func (m *Matrix) missingUnder(t, d int, active []bool) bool {
	T := m.Frames()
	nlr := (len(active) - 1) / 2
	for i, on := range active {
		if !on {
			continue
		}
		l := mathutil.Clamp(t+i-nlr, 0, T-1)
		if m.missing[l*m.dim+d] {
			return true
		}
	}
	return false
}
