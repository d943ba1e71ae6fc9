package algo

import "math"

// LinearFit is an ordinary least squares fit of y = Intercept + Slope*x.
type LinearFit struct {
	Slope     float64
	Intercept float64
	R2        float64 // coefficient of determination, 0 when y has no variance
	N         int
}

// At returns the fitted value at x.
func (f LinearFit) At(x float64) float64 {
	return f.Intercept + f.Slope*x
}

// LinearRegression fits y against x with one independent variable.
// It returns false when fewer than two points are given or all x are equal.
// x values are centered on their mean before fitting to keep epoch
// millisecond inputs numerically stable.
func LinearRegression(xs, ys []float64) (LinearFit, bool) {
	n := len(xs)
	if n < 2 || len(ys) != n {
		return LinearFit{N: n}, false
	}

	var sumX, sumY float64
	for i := range n {
		sumX += xs[i]
		sumY += ys[i]
	}
	meanX := sumX / float64(n)
	meanY := sumY / float64(n)

	var sxx, sxy, syy float64
	for i := range n {
		dx := xs[i] - meanX
		dy := ys[i] - meanY
		sxx += dx * dx
		sxy += dx * dy
		syy += dy * dy
	}
	if sxx == 0 {
		return LinearFit{N: n}, false
	}

	slope := sxy / sxx
	fit := LinearFit{
		Slope:     slope,
		Intercept: meanY - slope*meanX,
		N:         n,
	}

	if syy > 0 {
		var ssRes float64
		for i := range n {
			r := ys[i] - fit.At(xs[i])
			ssRes += r * r
		}
		fit.R2 = Clamp01(1 - ssRes/syy)
	}
	return fit, true
}

// Clamp01 limits v to [0, 1]; NaN maps to 0.
func Clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
