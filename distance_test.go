package geoann

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSquaredL2(t *testing.T) {
	a := []float32{0, 0, 0}
	b := []float32{1, 2, 2}
	require.InDelta(t, 9.0, SquaredL2(a, b), 1e-6)
}

func TestHaversineApproxZeroAtSamePoint(t *testing.T) {
	p := []float32{37.7749, -122.4194}
	require.InDelta(t, 0.0, HaversineApprox(p, p), 1e-4)
}

func TestHaversineApproxFallsBackForNonLatLon(t *testing.T) {
	a := []float32{1, 2, 3}
	b := []float32{4, 5, 6}
	require.Equal(t, SquaredL2(a, b), HaversineApprox(a, b))
}

func TestBlend(t *testing.T) {
	require.InDelta(t, 2.0, Blend(1, 2, 10), 1e-6)
	require.InDelta(t, 10.0, Blend(0, 2, 10), 1e-6)
	require.InDelta(t, 6.0, Blend(0.5, 2, 10), 1e-6)
}

func TestResolveDistanceUnknown(t *testing.T) {
	_, err := resolveDistance("not-a-kernel")
	require.Error(t, err)
}

func TestResolveDistanceDefault(t *testing.T) {
	f, err := resolveDistance("")
	require.NoError(t, err)
	require.NotNil(t, f)
}
