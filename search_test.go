package geoann

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// buildLineGraph wires up n nodes on a 1-D line, each linked to its
// immediate neighbors, so a greedy search can reach the true nearest
// point by hopping one step at a time.
func buildLineGraph(n int) *flatNodeStore {
	store := newFlatNodeStore(n)
	for i := 0; i < n; i++ {
		store.Init(i, 0)
	}
	for i := 0; i < n; i++ {
		node := store.Get(i)
		if i > 0 {
			node.AppendFriend(0, uint32(i-1), true)
		}
		if i < n-1 {
			node.AppendFriend(0, uint32(i+1), true)
		}
	}
	return store
}

func TestSearchLayerFindsNearest(t *testing.T) {
	store := buildLineGraph(50)
	distOf := func(id uint32) float32 {
		target := float32(37)
		return (float32(id) - target) * (float32(id) - target)
	}
	vl := NewVisitedList(50)
	results := searchLayer(store, distOf, 0, 5, 0, vl)
	require.NotEmpty(t, results)
	require.Equal(t, uint32(37), results[0].ID)
}

func TestSearchLayerResultsSortedAscending(t *testing.T) {
	store := buildLineGraph(30)
	distOf := func(id uint32) float32 { return float32(id) }
	vl := NewVisitedList(30)
	results := searchLayer(store, distOf, 0, 10, 0, vl)
	for i := 1; i < len(results); i++ {
		require.LessOrEqual(t, results[i-1].D, results[i].D)
	}
}
