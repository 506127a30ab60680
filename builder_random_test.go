package geoann

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildRandomDegreeBound(t *testing.T) {
	cfg := DefaultConfig()
	cfg.S = 4
	cfg.Rng = rand.New(rand.NewSource(1))

	ds := smallDataset(t, 10)
	edist, _ := resolveDistance(cfg.EDist)
	sdist, _ := resolveDistance(cfg.SDist)
	store := newFlatNodeStore(ds.N)
	buildRandom(ds, &cfg, edist, sdist, store)

	for i := 0; i < ds.N; i++ {
		friends := store.Get(i).Snapshot(0)
		require.LessOrEqual(t, len(friends), cfg.S)
		distOf := nswDistance(ds, &cfg, edist, sdist, i)
		prev := float32(-1)
		for _, f := range friends {
			require.NotEqual(t, uint32(i), f)
			d := distOf(f)
			require.GreaterOrEqual(t, d, prev)
			prev = d
		}
	}
}

func TestGenRandomDistinctNoDuplicatesOrSelf(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	picked := genRandomDistinct(rng, 20, 5, 6)
	require.Len(t, picked, 6)
	seen := map[int]bool{}
	for _, p := range picked {
		require.NotEqual(t, 5, p)
		require.False(t, seen[p])
		seen[p] = true
	}
}

// smallDataset builds a deterministic toy dataset shared across builder
// tests.
func smallDataset(t *testing.T, n int) *Dataset {
	t.Helper()
	rng := rand.New(rand.NewSource(42))
	emb := make([]float32, n*4)
	loc := make([]float32, n*2)
	for i := range emb {
		emb[i] = rng.Float32()
	}
	for i := range loc {
		loc[i] = rng.Float32()*180 - 90
	}
	ds, err := NewDataset(n, 4, 2, emb, loc)
	require.NoError(t, err)
	return ds
}
