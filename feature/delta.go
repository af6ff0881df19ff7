package feature

import "fmt"

// StaticWindow returns the identity window [1].
func StaticWindow() Window { return Window{1} }

// RegressionWindow returns the delta window of half-width n built from the
// regression formula d[t] = sum_{k=1}^{n} k*(c[t+k] - c[t-k]) / (2 * sum_{k=1}^{n} k^2).
// RegressionWindow(1) is the usual [-0.5, 0, 0.5].
func RegressionWindow(n int) (Window, error) {
	if n <= 0 {
		return nil, &FormatError{Msg: fmt.Sprintf("regression half-width %d must be positive", n)}
	}
	denom := 0.0
	for k := 1; k <= n; k++ {
		denom += float64(k * k)
	}
	denom *= 2.0

	w := make(Window, 2*n+1)
	for k := 1; k <= n; k++ {
		w[n+k] = float64(k) / denom
		w[n-k] = -float64(k) / denom
	}
	return w, nil
}

// AccelerationWindow returns the second-difference window [1, -2, 1].
func AccelerationWindow() Window { return Window{1, -2, 1} }

// StandardWindows returns the static, delta and acceleration windows used by
// the HTS demo recipes.
func StandardWindows() []Window {
	delta, _ := RegressionWindow(1)
	return []Window{StaticWindow(), delta, AccelerationWindow()}
}

// Delta computes regression deltas of half-width n with edge replication.
// Missing cells are treated as plain numbers.
func Delta(m *Matrix, n int) (*Matrix, error) {
	w, err := RegressionWindow(n)
	if err != nil {
		return nil, err
	}
	return ApplyWindows(m, []Window{w}, false), nil
}
