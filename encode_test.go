package geoann

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExportImportRoundTripHNSW(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Rng = rand.New(rand.NewSource(55))
	cfg.EfConstruction = 20
	cfg.MaxM = 6
	cfg.MaxM0 = 12

	ds := smallDataset(t, 30)
	g, err := NewGraph(ds, cfg, BuilderHNSW, RouterHNSW)
	require.NoError(t, err)
	require.NoError(t, g.Build())

	var buf bytes.Buffer
	require.NoError(t, g.Export(&buf))

	imported, err := ImportGraph(&buf, ds)
	require.NoError(t, err)

	for i := 0; i < ds.N; i++ {
		require.Equal(t, g.hnsw.Get(i).Level(), imported.hnsw.Get(i).Level())
		for l := 0; l <= g.hnsw.Get(i).Level(); l++ {
			require.Equal(t, g.hnsw.Get(i).Snapshot(l), imported.hnsw.Get(i).Snapshot(l))
		}
	}
}

func TestExportImportRoundTripGeoGraph(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Rng = rand.New(rand.NewSource(56))
	cfg.CandidateEdge = 12
	cfg.MaxMGeo = 5
	cfg.UsabilityThreshold = 0

	ds := smallDataset(t, 25)
	g, err := NewGraph(ds, cfg, BuilderGeoGraphIncremental, RouterGeoGraph)
	require.NoError(t, err)
	require.NoError(t, g.Build())

	var buf bytes.Buffer
	require.NoError(t, g.Export(&buf))

	imported, err := ImportGraph(&buf, ds)
	require.NoError(t, err)

	for i := 0; i < ds.N; i++ {
		orig := g.geo.Get(i).Snapshot(0)
		got := imported.geo.Get(i).Snapshot(0)
		require.Equal(t, len(orig), len(got))
		for j := range orig {
			require.Equal(t, orig[j].To, got[j].To)
			require.Equal(t, orig[j].Usable, got[j].Usable)
		}
	}
}
