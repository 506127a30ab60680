package geoann

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPruneRangeAgainstClosedForm(t *testing.T) {
	ds := smallDataset(t, 10)
	edist, _ := resolveDistance("squared_l2")
	sdist, _ := resolveDistance("squared_l2")
	g := geoDistances{ds: ds, edist: edist, sdist: sdist}

	rng := pruneRangeAgainst(g, 0, 1, 2)
	for _, iv := range rng {
		require.GreaterOrEqual(t, iv.Lo, float32(0))
		require.LessOrEqual(t, iv.Hi, float32(1))
		require.LessOrEqual(t, iv.Lo, iv.Hi)
	}
}

func TestGeo2NeighborPruneRespectsRangeCap(t *testing.T) {
	cfg := DefaultConfig()
	cfg.UsabilityThreshold = 0
	ds := smallDataset(t, 30)
	edist, _ := resolveDistance("squared_l2")
	sdist, _ := resolveDistance("squared_l2")
	g := geoDistances{ds: ds, edist: edist, sdist: sdist}

	pool := make([]Candidate, 0, ds.N-1)
	for i := 1; i < ds.N; i++ {
		e, s := g.pair(0, i)
		pool = append(pool, Candidate{ID: uint32(i), E: e, S: s})
	}

	edges := geo2NeighborPrune(g, &cfg, 0, pool, 8)
	require.LessOrEqual(t, len(edges), 8)
	for _, e := range edges {
		require.NotEmpty(t, e.Usable)
		require.GreaterOrEqual(t, measure(e.Usable), cfg.UsabilityThreshold)
	}
}

func TestBuildGeoGraphIncrementalProducesUsableEdges(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxMGeo = 6
	cfg.CandidateEdge = 15
	cfg.UsabilityThreshold = 0
	cfg.Rng = rand.New(rand.NewSource(7))

	ds := smallDataset(t, 40)
	edist, _ := resolveDistance(cfg.EDist)
	sdist, _ := resolveDistance(cfg.SDist)
	store := newGeoNodeStore(ds.N)
	buildGeoGraphIncremental(ds, &cfg, edist, sdist, store)

	var total int
	for i := 0; i < ds.N; i++ {
		node := store.Get(i)
		require.NotNil(t, node)
		for _, e := range node.Snapshot(0) {
			total++
			require.NotEmpty(t, e.Usable)
		}
	}
	require.Greater(t, total, 0)
}

func TestReservoirAppendCapsSize(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	var reservoir []uint32
	for i := 0; i < 50; i++ {
		reservoir = reservoirAppend(rng, reservoir, uint32(i), 5)
		require.LessOrEqual(t, len(reservoir), 5)
	}
}
