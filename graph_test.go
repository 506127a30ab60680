package geoann

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestGraph(t *testing.T, builder Builder, router Router) (*Graph, *Dataset) {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Rng = rand.New(rand.NewSource(123))
	cfg.EfConstruction = 20
	cfg.CandidateEdge = 15
	cfg.UsabilityThreshold = 0

	ds := smallDataset(t, 50)
	g, err := NewGraph(ds, cfg, builder, router)
	require.NoError(t, err)
	require.NoError(t, g.Build())
	return g, ds
}

func TestGraphSearchGreedy(t *testing.T) {
	g, ds := newTestGraph(t, BuilderRandom, RouterGreedy)
	results, err := g.Search(ds.EmbRow(0), ds.LocRow(0), 0.5, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)
}

func TestGraphSearchHNSW(t *testing.T) {
	g, ds := newTestGraph(t, BuilderHNSW, RouterHNSW)
	results, err := g.Search(ds.EmbRow(5), ds.LocRow(5), 0.5, 4)
	require.NoError(t, err)
	require.Len(t, results, 4)
	require.Equal(t, uint32(5), results[0].ID)
}

func TestGraphSearchGeoGraph(t *testing.T) {
	g, ds := newTestGraph(t, BuilderGeoGraphIncremental, RouterGeoGraph)
	results, err := g.Search(ds.EmbRow(3), ds.LocRow(3), 0.2, 4)
	require.NoError(t, err)
	require.NotEmpty(t, results)
}

func TestGraphSearchDimensionMismatch(t *testing.T) {
	g, _ := newTestGraph(t, BuilderRandom, RouterGreedy)
	_, err := g.Search([]float32{1, 2}, []float32{1, 2}, 0.5, 3)
	require.Error(t, err)
}

func TestGraphSearchWrongRouterForBuild(t *testing.T) {
	g, ds := newTestGraph(t, BuilderRandom, RouterGreedy)
	g.router = RouterHNSW
	_, err := g.Search(ds.EmbRow(0), ds.LocRow(0), 0.5, 3)
	require.Error(t, err)
}

func TestGraphSearchBatch(t *testing.T) {
	g, ds := newTestGraph(t, BuilderHNSW, RouterHNSW)
	queries := make([]Query, 5)
	for i := range queries {
		queries[i] = Query{Emb: ds.EmbRow(i), Loc: ds.LocRow(i)}
	}
	results, errs := g.SearchBatch(queries, 0.5, 2)
	for _, err := range errs {
		require.NoError(t, err)
	}
	require.Len(t, results, 10)
}
