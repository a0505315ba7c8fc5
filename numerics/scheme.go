package numerics

import (
	"fmt"
	"strings"

	"github.com/notargets/ranscfd/variables"
)

// ConvectiveScheme selects the flux function assembled at each edge,
// spec.md §4.3's "same interface" requirement across all four schemes.
type ConvectiveScheme int

const (
	SchemeRoe ConvectiveScheme = iota
	SchemeJST
	SchemeAUSMplusUp
	SchemeHLLC
)

var schemeNames = map[string]ConvectiveScheme{
	"roe":       SchemeRoe,
	"jst":       SchemeJST,
	"ausm":      SchemeAUSMplusUp,
	"ausm+-up":  SchemeAUSMplusUp,
	"ausm_plus": SchemeAUSMplusUp,
	"hllc":      SchemeHLLC,
}

func ParseConvectiveScheme(tag string) (ConvectiveScheme, bool) {
	s, ok := schemeNames[strings.ToLower(tag)]
	return s, ok
}

func (s ConvectiveScheme) String() string {
	switch s {
	case SchemeRoe:
		return "roe"
	case SchemeJST:
		return "jst"
	case SchemeAUSMplusUp:
		return "ausm+-up"
	case SchemeHLLC:
		return "hllc"
	default:
		return fmt.Sprintf("ConvectiveScheme(%d)", int(s))
	}
}

// JSTParams bundles the coefficients JST needs beyond UL/UR/n, kept
// separate from ConvectiveFlux's signature so Roe/AUSM/HLLC callers don't
// carry unused arguments.
type JSTParams struct {
	K2, K4, SpecRadius, Sensor float64
	Laplacian                  []float64 // undivided Laplacian of U across the edge, length nVar
}

// ConvectiveFlux dispatches to the configured scheme, the single call
// site Solver's edge loop uses regardless of which scheme is active.
func ConvectiveFlux(scheme ConvectiveScheme, gas variables.Gas, UL, UR []float64, n []float64, ndim int,
	entropyEps, mRef float64, jst JSTParams) []float64 {
	switch scheme {
	case SchemeRoe:
		return RoeFlux(gas, UL, UR, n, ndim, entropyEps)
	case SchemeJST:
		return JSTFlux(gas, UL, UR, n, ndim, jst.SpecRadius, jst.K2, jst.K4, jst.Sensor, jst.Laplacian)
	case SchemeAUSMplusUp:
		return AUSMplusUpFlux(gas, UL, UR, n, ndim, mRef)
	case SchemeHLLC:
		return HLLCFlux(gas, UL, UR, n, ndim)
	default:
		return RoeFlux(gas, UL, UR, n, ndim, entropyEps)
	}
}
