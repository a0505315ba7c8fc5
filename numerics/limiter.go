package numerics

import "math"

// LimiterKind selects the slope limiter applied to MUSCL reconstruction,
// per spec.md §4.3.
type LimiterKind int

const (
	LimiterVenkatakrishnan LimiterKind = iota
	LimiterBarth
	LimiterNone
)

func ParseLimiterKind(tag string) (LimiterKind, bool) {
	switch tag {
	case "venkatakrishnan", "venkat":
		return LimiterVenkatakrishnan, true
	case "barth", "barth_jespersen":
		return LimiterBarth, true
	case "none":
		return LimiterNone, true
	default:
		return 0, false
	}
}

// VenkatakrishnanLimiter computes phi for one field of one cell, per
// spec.md §4.3: a smooth function of the unlimited reconstructed
// increment d and the neighborhood bounds (Vmax-V, V-Vmin), parameterized
// by K (config), which controls how aggressively small increments near
// smooth extrema are left unlimited.
//
// delta is the unlimited increment (∇V·(x_f-x_i)) at one face; vmax/vmin
// are the max/min of V over the cell's edge neighborhood (including
// itself); volAvg is a characteristic cell length scale (cube/square root
// of volume) used to form the K-dependent epsilon^2 per Venkatakrishnan's
// original formulation.
func VenkatakrishnanLimiter(delta, v, vmax, vmin, volAvg, K float64) float64 {
	eps2 := (K * volAvg) * (K * volAvg) * (K * volAvg)
	var dmax float64
	if delta > 0 {
		dmax = vmax - v
	} else if delta < 0 {
		dmax = vmin - v
	} else {
		return 1
	}
	num := (dmax*dmax+eps2)*delta + 2*delta*delta*dmax
	den := delta * (dmax*dmax + 2*delta*delta + dmax*delta + eps2)
	if den == 0 {
		return 1
	}
	phi := num / den
	return math.Max(0, math.Min(1, phi))
}

// BarthJespersenLimiter is the simpler, non-differentiable limiter of
// spec.md §4.3's Barth alternative: phi = min(1, (Vmax-V)/delta) or
// min(1, (Vmin-V)/delta) depending on the sign of delta, clipped to
// [0,1].
func BarthJespersenLimiter(delta, v, vmax, vmin float64) float64 {
	if delta > 0 {
		return math.Max(0, math.Min(1, (vmax-v)/delta))
	}
	if delta < 0 {
		return math.Max(0, math.Min(1, (vmin-v)/delta))
	}
	return 1
}

// MUSCLReconstruct forms the left (or right) face state per spec.md
// §4.3: V_face = V_i + phi_i * delta, applied component-wise.
func MUSCLReconstruct(V []float64, phi []float64, delta []float64) []float64 {
	out := make([]float64, len(V))
	for k := range V {
		out[k] = V[k] + phi[k]*delta[k]
	}
	return out
}
