package geoann

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCanonicalizeMergesOverlaps(t *testing.T) {
	out := canonicalize([]Interval{{0.6, 0.9}, {0, 0.3}, {0.25, 0.65}})
	require.Equal(t, []Interval{{0, 0.9}}, out)
}

func TestCanonicalizeDropsDegenerate(t *testing.T) {
	out := canonicalize([]Interval{{0.4, 0.4}, {0.1, 0.2}})
	require.Equal(t, []Interval{{0.1, 0.2}}, out)
}

func TestIntersectSets(t *testing.T) {
	a := []Interval{{0, 0.5}}
	b := []Interval{{0.3, 1}}
	out := intersectSets(a, b)
	require.Equal(t, []Interval{{0.3, 0.5}}, out)
}

func TestComplementSet(t *testing.T) {
	out := complementSet([]Interval{{0.2, 0.4}, {0.6, 0.8}})
	require.Equal(t, []Interval{{0, 0.2}, {0.4, 0.6}, {0.8, 1}}, out)
}

func TestComplementEmpty(t *testing.T) {
	require.Equal(t, fullRange(), complementSet(nil))
}

func TestSubtractSets(t *testing.T) {
	out := subtractSets([]Interval{{0, 1}}, []Interval{{0.25, 0.75}})
	require.Equal(t, []Interval{{0, 0.25}, {0.75, 1}}, out)
}

func TestMeasure(t *testing.T) {
	require.InDelta(t, 0.6, measure([]Interval{{0, 0.2}, {0.5, 0.9}}), 1e-6)
}

func TestContains(t *testing.T) {
	ivs := []Interval{{0, 0.2}, {0.5, 0.9}}
	require.True(t, contains(ivs, 0.1))
	require.True(t, contains(ivs, 0.9))
	require.False(t, contains(ivs, 0.3))
}
