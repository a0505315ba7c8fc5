package geometry

import "math"

func vecSub(a, b []float64) []float64 {
	r := make([]float64, len(a))
	for i := range a {
		r[i] = a[i] - b[i]
	}
	return r
}

func vecAdd(a, b []float64) []float64 {
	r := make([]float64, len(a))
	for i := range a {
		r[i] = a[i] + b[i]
	}
	return r
}

func vecScale(a []float64, s float64) []float64 {
	r := make([]float64, len(a))
	for i := range a {
		r[i] = a[i] * s
	}
	return r
}

func vecDot(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

func vecNorm(a []float64) float64 {
	return math.Sqrt(vecDot(a, a))
}

func vecCross3(a, b []float64) []float64 {
	return []float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

// vecRot90_2D rotates a 2D vector by +90 degrees: (x,y) -> (-y,x).
func vecRot90_2D(a []float64) []float64 {
	return []float64{-a[1], a[0]}
}

func centroid(points [][]float64) []float64 {
	ndim := len(points[0])
	c := make([]float64, ndim)
	for _, p := range points {
		for d := 0; d < ndim; d++ {
			c[d] += p[d]
		}
	}
	inv := 1.0 / float64(len(points))
	for d := 0; d < ndim; d++ {
		c[d] *= inv
	}
	return c
}
