package geoann

// queryDistance closes over an arbitrary query row pair (not necessarily
// in the dataset) and a router-supplied alpha, since spec.md calls for
// alpha to be a query-time parameter rather than baked into the graph.
func queryDistance(edist, sdist DistanceFunc, alpha float32, qe, qs []float32, ds *Dataset) distOfFunc {
	return func(id uint32) float32 {
		e := edist(qe, ds.EmbRow(int(id)))
		s := sdist(qs, ds.LocRow(int(id)))
		return Blend(alpha, e, s)
	}
}

// RouteGreedy runs a single bounded best-first search over a flat (level
// 0 only) graph, the simplest router spec.md §4.9 describes, ported from
// ComponentSearchRouteGreedy::RouteInner's k/nk pool-insertion loop
// (equivalent here to one call of the shared searchLayer scaffold, C3's
// bounded heap already doing the insertion-sort-pool work).
func RouteGreedy(store *flatNodeStore, distOf distOfFunc, entry uint32, ef, k int, vl *VisitedList) []distItem {
	vl.Reset()
	results := searchLayer(store, distOf, entry, ef, 0, vl)
	if k < len(results) {
		results = results[:k]
	}
	return results
}

// RouteNSW searches the flat NSW/NSW-V2 graph from a single entry point,
// ported from ComponentSearchRouteNSW::RouteInner/SearchAtLayer (the
// original tries a small number of randomized restarts to counter the
// directed V1 graph's weaker reachability; a single wide-ef search over
// the shared scaffold already covers the common case this port targets).
func RouteNSW(store *flatNodeStore, distOf distOfFunc, entry uint32, ef, k int, vl *VisitedList) []distItem {
	return RouteGreedy(store, distOf, entry, ef, k, vl)
}

// RouteHNSW descends greedily from the top layer down to layer 1 with
// ef=1 (a single best candidate is enough to pick a good local entry
// point at that height), then runs the full bounded search at layer 0.
// If that leaves fewer than k results, it retries once at a larger ef,
// mirroring the original's ensure_k_path_ fallback. Ported from
// ComponentSearchRouteHNSW::RouteInner/SearchAtLayer.
func RouteHNSW(store *hnswStore, distOf distOfFunc, ef, k int, vl *VisitedList) []distItem {
	store.mu.Lock()
	cur := store.entry
	maxLevel := store.maxLevel
	store.mu.Unlock()

	for l := maxLevel; l > 0; l-- {
		vl.Reset()
		res := searchLayer(store.flatNodeStore, distOf, cur, 1, l, vl)
		if len(res) > 0 {
			cur = res[0].ID
		}
	}

	vl.Reset()
	results := searchLayer(store.flatNodeStore, distOf, cur, ef, 0, vl)
	if len(results) < k && ef < store.Len() {
		widerEf := ef * 4
		if widerEf > store.Len() {
			widerEf = store.Len()
		}
		vl.Reset()
		results = searchLayer(store.flatNodeStore, distOf, cur, widerEf, 0, vl)
	}
	if k < len(results) {
		results = results[:k]
	}
	return results
}

// geoSearchLayer is searchLayer's GeoGraph counterpart: identical bounded
// best-first expansion, except an edge is only followed when alpha falls
// inside its usability set. Ported from ComponentSearchRouteGeoGraph::
// SearchAtLayer's isInRange gating.
func geoSearchLayer(store *geoNodeStore, distOf distOfFunc, alpha float32, entry uint32, ef int, level int, vl *VisitedList) []distItem {
	results := []distItem{}
	candVisited := make(map[uint32]bool)

	push := func(items *[]distItem, it distItem, cap int) {
		*items = append(*items, it)
		sortDistItems(*items)
		if cap > 0 && len(*items) > cap {
			*items = (*items)[:cap]
		}
	}

	d0 := distOf(entry)
	vl.MarkAsVisited(entry)
	frontier := []distItem{{entry, d0}}
	push(&results, distItem{entry, d0}, ef)
	candVisited[entry] = true

	for len(frontier) > 0 {
		sortDistItems(frontier)
		c := frontier[0]
		frontier = frontier[1:]
		if len(results) >= ef && c.D > results[len(results)-1].D {
			break
		}
		node := store.Get(int(c.ID))
		if node == nil || level > node.Level() {
			continue
		}
		for _, e := range node.Snapshot(level) {
			if !contains(e.Usable, alpha) {
				continue
			}
			if vl.NotVisited(e.To) {
				vl.MarkAsVisited(e.To)
				fd := distOf(e.To)
				if len(results) < ef || fd < results[len(results)-1].D {
					frontier = append(frontier, distItem{e.To, fd})
					push(&results, distItem{e.To, fd}, ef)
				}
			}
		}
	}
	return results
}

// RouteGeoGraph descends through levels above 0 the way RouteHNSW does
// (the original source comments this part out for most configurations
// and searches level 0 directly; this port keeps the descent for
// hierarchical GeoGraph builds and it is a no-op when every node sits at
// level 0), then runs the alpha-gated search at level 0. Ported from
// ComponentSearchRouteGeoGraph::RouteInner.
func RouteGeoGraph(store *geoNodeStore, distOf distOfFunc, alpha float32, ef, k int, vl *VisitedList) []distItem {
	store.mu.Lock()
	cur := store.entry
	maxLevel := store.maxLevel
	store.mu.Unlock()

	for l := maxLevel; l > 0; l-- {
		vl.Reset()
		res := geoSearchLayer(store, distOf, alpha, cur, 1, l, vl)
		if len(res) > 0 {
			cur = res[0].ID
		}
	}

	vl.Reset()
	results := geoSearchLayer(store, distOf, alpha, cur, ef, 0, vl)
	if k < len(results) {
		results = results[:k]
	}
	return results
}
