package geoann

// nswDistance returns a closure computing the build-time blended distance
// from a fixed query id to any other id, matching Config.Alpha/EDist/SDist
// the way ComponentInitNSW::SetConfigs binds a fixed metric before search.
func nswDistance(ds *Dataset, cfg *Config, edist, sdist DistanceFunc, query int) distOfFunc {
	return nswDistanceAlpha(ds, cfg.Alpha, edist, sdist, query)
}

// nswDistanceAlpha is nswDistance parameterized by an explicit alpha
// instead of cfg.Alpha, used by NSW-V2's probe sweep (each sweep runs
// under its own alpha from nswV2ProbeAlphas rather than the build config's
// single alpha).
func nswDistanceAlpha(ds *Dataset, alpha float32, edist, sdist DistanceFunc, query int) distOfFunc {
	qe, qs := ds.EmbRow(query), ds.LocRow(query)
	return func(id uint32) float32 {
		e := edist(qe, ds.EmbRow(int(id)))
		s := sdist(qs, ds.LocRow(int(id)))
		return Blend(alpha, e, s)
	}
}

// buildNSW constructs the flat graph (builder variant V1): each new node
// searches the graph built so far for its NN closest neighbors and links
// with each both ways, ported from ComponentInitNSW::InsertNode/Link.
// InsertNode calls Link(top_node, qnode) and Link(qnode, top_node) for
// each picked candidate, and Link(a,b) adds a single a->b edge, so the net
// effect of the pair of calls is bidirectional; the per-call Link in
// isolation is directed (V1's documented asymmetry vs. V2, spec.md §9), but
// InsertNode never calls it only once. Without the reciprocal edge, the
// entry node[0] — which never runs a search of its own — would end up with
// zero out-edges, leaving RouteNSW/RouteGreedy (which always start at
// node[0]) unable to reach anything (spec.md §3 invariant 7, §8 Scenario
// B). There is no shrink step; NN is the cap by construction since at most
// NN edges are ever added from a given insertion. Entry is always node[0]
// (spec.md §4.6), so insertion of every other id is independent and runs
// across cfg.NThreads workers (spec.md §6's n_threads key, §5's
// parallel-insertion substrate), each owning its own VisitedList.
func buildNSW(ds *Dataset, cfg *Config, edist, sdist DistanceFunc, store *flatNodeStore) {
	if ds.N == 0 {
		return
	}
	store.Init(0, 0)
	if ds.N == 1 {
		return
	}
	vls := make([]*VisitedList, max(cfg.NThreads, 1))
	parallelForWorkers(ds.N-1, cfg.NThreads, func(worker, idx int) {
		i := idx + 1
		node := store.Init(i, 0)
		if vls[worker] == nil {
			vls[worker] = NewVisitedList(ds.N)
		}
		vl := vls[worker]
		vl.Reset()
		distOf := nswDistance(ds, cfg, edist, sdist, i)
		results := searchLayer(store, distOf, 0, cfg.EfConstruction, 0, vl)
		n := cfg.NN
		if n > len(results) {
			n = len(results)
		}
		for _, r := range results[:n] {
			if int(r.ID) == i {
				continue
			}
			node.AppendFriend(0, r.ID, true)
			other := store.Get(int(r.ID))
			if other != nil {
				other.AppendFriend(0, uint32(i), true)
			}
		}
	})
}

// nswV2ProbeAlphas are the fixed alpha sample points ComponentInitNSWV2
// sweeps in place of the single build-time alpha NSW-V1 uses, covering the
// alpha spectrum without per-edge usability metadata (spec.md §4.6).
var nswV2ProbeAlphas = []float32{0.1, 0.3, 0.5, 0.7, 0.9}

// buildNSWV2 replaces V1's single-alpha search with a sweep over
// nswV2ProbeAlphas: for each probe alpha, it runs SearchAtLayer under that
// alpha and links the new node bidirectionally with the top NN/|A|
// candidates of that sweep (duplicates across sweeps are absorbed by
// AddFriend's dedup flag). Ported from ComponentInitNSWV2::InsertNode/Link;
// spec.md §9's Open Question records Link as bidirectional here, unlike
// V1's single-direction Link. Parallelized across cfg.NThreads the same
// way buildNSW is.
func buildNSWV2(ds *Dataset, cfg *Config, edist, sdist DistanceFunc, store *flatNodeStore) {
	if ds.N == 0 {
		return
	}
	store.Init(0, 0)
	if ds.N == 1 {
		return
	}
	perSweep := cfg.NN / len(nswV2ProbeAlphas)
	if perSweep <= 0 && cfg.NN > 0 {
		perSweep = 1
	}
	vls := make([]*VisitedList, max(cfg.NThreads, 1))
	parallelForWorkers(ds.N-1, cfg.NThreads, func(worker, idx int) {
		i := idx + 1
		node := store.Init(i, 0)
		if vls[worker] == nil {
			vls[worker] = NewVisitedList(ds.N)
		}
		vl := vls[worker]
		for _, a := range nswV2ProbeAlphas {
			vl.Reset()
			distOf := nswDistanceAlpha(ds, a, edist, sdist, i)
			results := searchLayer(store, distOf, 0, cfg.EfConstruction, 0, vl)
			n := perSweep
			if n > len(results) {
				n = len(results)
			}
			for _, r := range results[:n] {
				if int(r.ID) == i {
					continue
				}
				node.AppendFriend(0, r.ID, true)
				other := store.Get(int(r.ID))
				if other != nil {
					other.AppendFriend(0, uint32(i), true)
				}
			}
		}
	})
}
