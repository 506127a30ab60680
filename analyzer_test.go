package geoann

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAnalyzerHeightAndTopography(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Rng = rand.New(rand.NewSource(77))
	cfg.EfConstruction = 20

	ds := smallDataset(t, 50)
	g, err := NewGraph(ds, cfg, BuilderHNSW, RouterHNSW)
	require.NoError(t, err)
	require.NoError(t, g.Build())

	a := &Analyzer{Graph: g}
	require.GreaterOrEqual(t, a.Height(), 1)

	topo := a.Topography()
	require.Len(t, topo, a.Height())
	require.Equal(t, ds.N, topo[0])
	for i := 1; i < len(topo); i++ {
		require.LessOrEqual(t, topo[i], topo[i-1])
	}

	conn := a.Connectivity()
	require.Len(t, conn, a.Height())
}

func TestAnalyzerUsabilityProfile(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Rng = rand.New(rand.NewSource(78))
	cfg.CandidateEdge = 12
	cfg.MaxMGeo = 5
	cfg.UsabilityThreshold = 0

	ds := smallDataset(t, 30)
	g, err := NewGraph(ds, cfg, BuilderGeoGraphIncremental, RouterGeoGraph)
	require.NoError(t, err)
	require.NoError(t, g.Build())

	a := &Analyzer{Graph: g}
	profile := a.UsabilityProfile([]float32{0, 0.5, 1.0})
	require.Len(t, profile, 3)
	require.GreaterOrEqual(t, profile[0], profile[1])
	require.GreaterOrEqual(t, profile[1], profile[2])
}

func TestAnalyzerFlatHeightIsOne(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Rng = rand.New(rand.NewSource(79))
	ds := smallDataset(t, 20)
	g, err := NewGraph(ds, cfg, BuilderRandom, RouterGreedy)
	require.NoError(t, err)
	require.NoError(t, g.Build())

	a := &Analyzer{Graph: g}
	require.Equal(t, 1, a.Height())
}
