package geoann

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDominates(t *testing.T) {
	require.True(t, Dominates(Candidate{ID: 1, E: 1, S: 1}, Candidate{ID: 2, E: 2, S: 2}))
	require.False(t, Dominates(Candidate{ID: 1, E: 1, S: 2}, Candidate{ID: 2, E: 2, S: 1}))
	require.False(t, Dominates(Candidate{ID: 1, E: 1, S: 1}, Candidate{ID: 2, E: 1, S: 1}))
}

func TestSkylineFrontIsNonDominated(t *testing.T) {
	cands := []Candidate{
		{ID: 1, E: 1, S: 5},
		{ID: 2, E: 2, S: 3},
		{ID: 3, E: 3, S: 1},
		{ID: 4, E: 5, S: 5}, // dominated by everything
	}
	front, remainder := Skyline(cands)

	frontIDs := map[uint32]bool{}
	for _, c := range front {
		frontIDs[c.ID] = true
	}
	require.True(t, frontIDs[1])
	require.True(t, frontIDs[2])
	require.True(t, frontIDs[3])
	require.False(t, frontIDs[4])

	for _, r := range remainder {
		var dominated bool
		for _, f := range front {
			if Dominates(f, r) {
				dominated = true
				break
			}
		}
		require.True(t, dominated, "remainder candidate %d should be dominated by the front", r.ID)
	}
}
