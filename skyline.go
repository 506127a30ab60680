package geoann

import "sort"

// Candidate is a (id, E, S) pair considered during GeoGraph pruning: the
// embedding and spatial distance of some other node from the point under
// construction, ported from GeoGraphNeighbor in the original source.
type Candidate struct {
	ID uint32
	E  float32
	S  float32
}

// Dominates reports whether a Pareto-dominates b: no worse in both E and
// S, and strictly better in at least one (spec.md §4.8's skyline
// definition).
func Dominates(a, b Candidate) bool {
	if a.E > b.E || a.S > b.S {
		return false
	}
	return a.E < b.E || a.S < b.S
}

// Skyline splits cands into its Pareto front and the dominated remainder.
// Ported from ComponentInitGeoGraph::findSkyline: sorting ascending by S
// first (ties broken by ascending E, so that of two candidates sharing an
// S value the lower-E one is always considered first and correctly
// dominates its tie — otherwise the higher-E point could sort first and
// slip into the front) turns the 2-D skyline sweep into a single pass that
// keeps only points whose E is strictly less than every E seen so far.
func Skyline(cands []Candidate) (front, remainder []Candidate) {
	sorted := make([]Candidate, len(cands))
	copy(sorted, cands)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].S != sorted[j].S {
			return sorted[i].S < sorted[j].S
		}
		return sorted[i].E < sorted[j].E
	})

	maxE := float32(3.4e38) // ~math.MaxFloat32, avoids importing math for one constant
	for _, c := range sorted {
		// An exact (E,S) duplicate of the last front point is not dominated
		// by it, so it joins the front too.
		dup := len(front) > 0 && c.E == front[len(front)-1].E && c.S == front[len(front)-1].S
		if c.E < maxE || dup {
			front = append(front, c)
			maxE = c.E
		} else {
			remainder = append(remainder, c)
		}
	}
	return front, remainder
}
