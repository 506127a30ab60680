package geoann

import "sort"

// Interval is a closed sub-range of [0,1]. GeoGraph edges carry an ordered,
// disjoint slice of these as their α-usability set (spec.md §3 invariant 5).
type Interval struct {
	Lo, Hi float32
}

// fullRange is the α-usability of an un-annotated edge (spec.md §8
// boundary behavior 11: [0,1] behaves identically to no annotation).
func fullRange() []Interval {
	return []Interval{{0, 1}}
}

// canonicalize sorts ivs by Lo and merges overlapping or touching
// intervals into disjoint form, dropping empty/degenerate and
// out-of-[0,1] fragments. Ported from the original source's
// mergeIntervals free function.
func canonicalize(ivs []Interval) []Interval {
	clipped := make([]Interval, 0, len(ivs))
	for _, iv := range ivs {
		lo, hi := iv.Lo, iv.Hi
		if lo < 0 {
			lo = 0
		}
		if hi > 1 {
			hi = 1
		}
		if hi > lo {
			clipped = append(clipped, Interval{lo, hi})
		}
	}
	if len(clipped) == 0 {
		return clipped
	}
	sort.Slice(clipped, func(i, j int) bool { return clipped[i].Lo < clipped[j].Lo })

	out := make([]Interval, 0, len(clipped))
	cur := clipped[0]
	for _, iv := range clipped[1:] {
		if iv.Lo <= cur.Hi {
			if iv.Hi > cur.Hi {
				cur.Hi = iv.Hi
			}
			continue
		}
		out = append(out, cur)
		cur = iv
	}
	out = append(out, cur)
	return out
}

// unionSets returns the canonical union of two already-canonical interval
// sets.
func unionSets(a, b []Interval) []Interval {
	merged := make([]Interval, 0, len(a)+len(b))
	merged = append(merged, a...)
	merged = append(merged, b...)
	return canonicalize(merged)
}

// intersectSets returns the canonical intersection of two canonical
// interval sets via a two-pointer merge (spec.md §4.8's interval
// arithmetic).
func intersectSets(a, b []Interval) []Interval {
	var out []Interval
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		lo := a[i].Lo
		if b[j].Lo > lo {
			lo = b[j].Lo
		}
		hi := a[i].Hi
		if b[j].Hi < hi {
			hi = b[j].Hi
		}
		if hi > lo {
			out = append(out, Interval{lo, hi})
		}
		if a[i].Hi < b[j].Hi {
			i++
		} else {
			j++
		}
	}
	return out
}

// complementSet returns the canonical complement of a within [0,1].
func complementSet(a []Interval) []Interval {
	if len(a) == 0 {
		return fullRange()
	}
	var out []Interval
	cursor := float32(0)
	for _, iv := range a {
		if iv.Lo > cursor {
			out = append(out, Interval{cursor, iv.Lo})
		}
		if iv.Hi > cursor {
			cursor = iv.Hi
		}
	}
	if cursor < 1 {
		out = append(out, Interval{cursor, 1})
	}
	return out
}

// subtractSets returns a \ b, canonical.
func subtractSets(a, b []Interval) []Interval {
	return intersectSets(a, complementSet(b))
}

// measure returns the total length of a canonical interval set.
func measure(a []Interval) float32 {
	var m float32
	for _, iv := range a {
		m += iv.Hi - iv.Lo
	}
	return m
}

// contains reports whether alpha falls in any interval of a sorted,
// disjoint set. Intervals are typically few, so a linear scan with early
// exit (per spec.md §4.9's router note) is used rather than a binary
// search.
func contains(a []Interval, alpha float32) bool {
	for _, iv := range a {
		if alpha < iv.Lo {
			return false
		}
		if alpha <= iv.Hi {
			return true
		}
	}
	return false
}
