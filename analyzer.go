package geoann

// Analyzer inspects a built Graph's shape, the way the teacher's
// Analyzer[T] reports layer counts and average degree — generalized here
// across the three node store shapes (flat, HNSW, GeoGraph) instead of a
// single layered map.
type Analyzer struct {
	Graph *Graph
}

// Height returns the number of levels the node store spans (1 for the
// flat stores, which only ever populate level 0).
func (a *Analyzer) Height() int {
	switch {
	case a.Graph.hnsw != nil:
		return a.Graph.hnsw.maxLevel + 1
	case a.Graph.geo != nil:
		return a.Graph.geo.maxLevel + 1
	case a.Graph.flat != nil:
		return 1
	default:
		return 0
	}
}

// Connectivity returns the average out-degree at each level, ported from
// the teacher's per-layer degree average.
func (a *Analyzer) Connectivity() []float64 {
	height := a.Height()
	conn := make([]float64, 0, height)
	for l := 0; l < height; l++ {
		var sum float64
		var count int
		switch {
		case a.Graph.hnsw != nil:
			for i := 0; i < a.Graph.hnsw.Len(); i++ {
				node := a.Graph.hnsw.Get(i)
				if node == nil || l > node.Level() {
					continue
				}
				sum += float64(len(node.Snapshot(l)))
				count++
			}
		case a.Graph.geo != nil:
			for i := 0; i < a.Graph.geo.Len(); i++ {
				node := a.Graph.geo.Get(i)
				if node == nil || l > node.Level() {
					continue
				}
				sum += float64(len(node.Snapshot(l)))
				count++
			}
		case a.Graph.flat != nil:
			for i := 0; i < a.Graph.flat.Len(); i++ {
				node := a.Graph.flat.Get(i)
				if node == nil {
					continue
				}
				sum += float64(len(node.Snapshot(0)))
				count++
			}
		}
		if count == 0 {
			conn = append(conn, 0)
			continue
		}
		conn = append(conn, sum/float64(count))
	}
	return conn
}

// Topography returns the number of nodes present at each level.
func (a *Analyzer) Topography() []int {
	height := a.Height()
	topo := make([]int, 0, height)
	for l := 0; l < height; l++ {
		count := 0
		switch {
		case a.Graph.hnsw != nil:
			for i := 0; i < a.Graph.hnsw.Len(); i++ {
				if node := a.Graph.hnsw.Get(i); node != nil && l <= node.Level() {
					count++
				}
			}
		case a.Graph.geo != nil:
			for i := 0; i < a.Graph.geo.Len(); i++ {
				if node := a.Graph.geo.Get(i); node != nil && l <= node.Level() {
					count++
				}
			}
		case a.Graph.flat != nil:
			count = a.Graph.flat.Len()
		}
		topo = append(topo, count)
	}
	return topo
}

// UsabilityProfile reports, for a GeoGraph store, the fraction of level-0
// edges whose usability measure meets each threshold in thresholds. It has
// no analog in the teacher, since flat/HNSW edges have no alpha
// restriction at all; it exists to make spec.md §4.8's usability pruning
// observable after a build.
func (a *Analyzer) UsabilityProfile(thresholds []float32) []float64 {
	if a.Graph.geo == nil {
		return nil
	}
	out := make([]float64, len(thresholds))
	var total int
	for i := 0; i < a.Graph.geo.Len(); i++ {
		node := a.Graph.geo.Get(i)
		if node == nil {
			continue
		}
		for _, e := range node.Snapshot(0) {
			total++
			m := measure(e.Usable)
			for ti, t := range thresholds {
				if m >= t {
					out[ti]++
				}
			}
		}
	}
	if total == 0 {
		return out
	}
	for i := range out {
		out[i] /= float64(total)
	}
	return out
}
