package geoann

import (
	"github.com/chewxy/math32"
	"github.com/viterin/vek/vek32"
)

// DistanceFunc computes a distance between two rows of equal length. It
// must be thread-safe and side-effect free; inputs are assumed
// bounds-checked by the caller (spec.md §4.1).
type DistanceFunc func(a, b []float32) float32

// SquaredL2 is the default embedding kernel E. Computed via vek32's SIMD
// subtract+dot instead of a hand-rolled loop, the way a float32-vector
// stack (the teacher's go.mod already pulls in viterin/vek) would.
func SquaredL2(a, b []float32) float32 {
	diff := vek32.Sub(a, b)
	return vek32.Dot(diff, diff)
}

// EuclideanL2 is SquaredL2 under a square root, for callers that want a
// true metric rather than its square.
func EuclideanL2(a, b []float32) float32 {
	return math32.Sqrt(SquaredL2(a, b))
}

// HaversineApprox is a spatial kernel S for 2-D (lat, lon) rows given in
// degrees. It returns the great-circle distance on a sphere of Earth's
// mean radius, in kilometers. Rows of any other length fall back to
// SquaredL2 (treated as an opaque low-dimensional embedding), since
// Haversine is only meaningful for true lat/lon pairs.
func HaversineApprox(a, b []float32) float32 {
	if len(a) != 2 || len(b) != 2 {
		return SquaredL2(a, b)
	}
	const earthRadiusKm = 6371.0
	lat1 := a[0] * math32.Pi / 180
	lat2 := b[0] * math32.Pi / 180
	dLat := (b[0] - a[0]) * math32.Pi / 180
	dLon := (b[1] - a[1]) * math32.Pi / 180

	sinDLat := math32.Sin(dLat / 2)
	sinDLon := math32.Sin(dLon / 2)
	h := sinDLat*sinDLat + math32.Cos(lat1)*math32.Cos(lat2)*sinDLon*sinDLon
	if h > 1 {
		h = 1
	}
	if h < 0 {
		h = 0
	}
	return 2 * earthRadiusKm * math32.Asin(math32.Sqrt(h))
}

// Blend computes the α-parameterized composite distance d = α·e + (1-α)·s
// (spec.md §3).
func Blend(alpha, e, s float32) float32 {
	return alpha*e + (1-alpha)*s
}

// distanceFuncs is the name -> DistanceFunc registry Config.EDist/SDist
// resolve against, and that Export/Import (encode.go) use to re-resolve a
// serialized graph's kernels by name, mirroring the teacher's
// distanceFuncToName/distanceFuncs map in encode.go (simplified: since
// Config already carries the kernel's name alongside the func, there is no
// need for the teacher's reverse func->name lookup).
var distanceFuncs = map[string]DistanceFunc{
	"squared_l2": SquaredL2,
	"euclidean":  EuclideanL2,
	"haversine":  HaversineApprox,
}

func resolveDistance(name string) (DistanceFunc, error) {
	if name == "" {
		name = "squared_l2"
	}
	f, ok := distanceFuncs[name]
	if !ok {
		return nil, newErr(InvalidConfig, "unknown distance kind: "+name)
	}
	return f, nil
}
