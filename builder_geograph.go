package geoann

import (
	"math/rand"
	"sync"
	"sync/atomic"
)

// geoEdge is a GeoGraph out-edge: a target id plus the canonical, disjoint
// set of alpha values for which the edge is the right one to traverse
// (spec.md §3's usability invariant), ported from GeoGraphNeighbor's
// (id, use_range_) pair in the original source.
type geoEdge struct {
	To     uint32
	Usable []Interval
}

// geoNode is the GeoGraph analog of flatNode: per-level adjacency behind a
// mutex, but edges carry a usability interval set instead of being plain
// ids. Ported from Index::GeoGraphNode.
type geoNode struct {
	id     uint32
	level  int32
	mu     sync.Mutex
	layers [][]geoEdge
}

func newGeoNode(id uint32, level int) *geoNode {
	return &geoNode{id: id, level: int32(level), layers: make([][]geoEdge, level+1)}
}

func (n *geoNode) Level() int { return int(n.level) }

func (n *geoNode) Lock()   { n.mu.Lock() }
func (n *geoNode) Unlock() { n.mu.Unlock() }

// Snapshot copies layers[l] under the node's lock.
func (n *geoNode) Snapshot(l int) []geoEdge {
	n.mu.Lock()
	defer n.mu.Unlock()
	if l >= len(n.layers) {
		return nil
	}
	out := make([]geoEdge, len(n.layers[l]))
	copy(out, n.layers[l])
	return out
}

// ReplaceEdges atomically swaps layers[l].
func (n *geoNode) ReplaceEdges(l int, edges []geoEdge) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.layers[l] = edges
}

// geoNodeStore is the arena + hierarchy bookkeeping for GeoGraph, the
// GeoGraph analog of hnswStore. Slots are atomic.Pointer for the same
// reason as flatNodeStore: buildGeoGraphIncremental's workers Init disjoint
// ids while interInsert concurrently Gets arbitrary ids to link back to.
type geoNodeStore struct {
	nodes    []atomic.Pointer[geoNode]
	mu       sync.Mutex
	entry    uint32
	maxLevel int
	hasEntry bool
}

func newGeoNodeStore(n int) *geoNodeStore {
	return &geoNodeStore{nodes: make([]atomic.Pointer[geoNode], n)}
}

func (s *geoNodeStore) Init(id, level int) *geoNode {
	node := newGeoNode(uint32(id), level)
	s.nodes[id].Store(node)
	return node
}

func (s *geoNodeStore) Get(id int) *geoNode { return s.nodes[id].Load() }
func (s *geoNodeStore) Len() int            { return len(s.nodes) }

// geoDistances bundles the dataset with the E and S kernels, so a pair's
// two distances can be computed with one call; pair recomputes both on
// every call, nothing is cached.
type geoDistances struct {
	ds     *Dataset
	edist  DistanceFunc
	sdist  DistanceFunc
}

func (g geoDistances) pair(a, b int) (e, s float32) {
	return g.edist(g.ds.EmbRow(a), g.ds.EmbRow(b)), g.sdist(g.ds.LocRow(a), g.ds.LocRow(b))
}

// solveLinearIneq solves a*alpha <= b over alpha in [0,1] and returns the
// canonical sub-range, one of {empty, [0,1], [0,u], [l,1]} per spec.md
// §4.8 step 3.
func solveLinearIneq(a, b float32) []Interval {
	const eps = 1e-9
	switch {
	case a > eps:
		hi := b / a
		if hi <= 0 {
			return nil
		}
		return canonicalize([]Interval{{0, hi}})
	case a < -eps:
		lo := b / a
		if lo >= 1 {
			return nil
		}
		return canonicalize([]Interval{{lo, 1}})
	default:
		if b > 0 {
			return fullRange()
		}
		return nil
	}
}

// pruneRangeAgainst computes the closed-form alpha sub-range over which
// already-picked neighbor x makes candidate c redundant for reaching
// query q: the range where both d(q,x;alpha) <= d(q,c;alpha) and
// d(x,c;alpha) <= d(q,c;alpha). All these distances
// are linear in alpha, so each of the two triangle-style inequalities
// reduces to a single linear inequality A*alpha <= B, solved in closed
// form rather than sampled; the edge is pruned by x on the intersection
// of the two. Ported from the two-inequality derivation in
// ComponentInitGeoGraph::PruneInner.
func pruneRangeAgainst(g geoDistances, q, x, c int) []Interval {
	eqx, sqx := g.pair(q, x)
	exc, sxc := g.pair(x, c)
	eqc, sqc := g.pair(q, c)

	// Inequality 1 (triangle-style via x when routing from q):
	// alpha*(E_qx - S_qx - E_qc + S_qc) <= S_qc - S_qx
	a1 := (eqx - sqx) - (eqc - sqc)
	b1 := sqc - sqx
	r1 := solveLinearIneq(a1, b1)
	if len(r1) == 0 {
		return nil
	}

	// Inequality 2 (symmetric via c):
	// alpha*(E_xc - S_xc - E_qc + S_qc) <= S_qc - S_xc
	a2 := (exc - eqc) - (sxc - sqc)
	b2 := sqc - sxc
	r2 := solveLinearIneq(a2, b2)
	if len(r2) == 0 {
		return nil
	}

	return intersectSets(r1, r2)
}

// geo2NeighborPrune selects up to rangeCap neighbors for query q from
// pool, skyline-layer by skyline-layer: within each layer, a candidate is
// accepted only if enough of its alpha range survives being pruned by
// the neighbors already picked, ported from ComponentInitGeoGraph::
// PruneInner/findSkyline.
func geo2NeighborPrune(g geoDistances, cfg *Config, q int, pool []Candidate, rangeCap int) []geoEdge {
	picked := make([]geoEdge, 0, rangeCap)
	remaining := pool
	for len(picked) < rangeCap && len(remaining) > 0 {
		front, rest := Skyline(remaining)
		consumed := make(map[uint32]bool, len(front))
		for _, c := range front {
			if len(picked) >= rangeCap {
				break
			}
			if int(c.ID) == q {
				consumed[c.ID] = true
				continue
			}
			var pruneRange []Interval
			for _, x := range picked {
				sub := pruneRangeAgainst(g, q, int(x.To), int(c.ID))
				if len(sub) == 0 {
					continue
				}
				sub = intersectSets(sub, x.Usable)
				pruneRange = unionSets(pruneRange, sub)
			}
			usable := complementSet(pruneRange)
			if len(usable) > 0 && measure(usable) >= cfg.UsabilityThreshold {
				picked = append(picked, geoEdge{To: c.ID, Usable: usable})
			}
			consumed[c.ID] = true
		}
		next := make([]Candidate, 0, len(rest))
		for _, c := range front {
			if !consumed[c.ID] {
				next = append(next, c)
			}
		}
		next = append(next, rest...)
		remaining = next
	}
	return picked
}

// candidatePool converts a set of search results (from searchLayer's
// blended distance) back into (E,S) pairs for the skyline prune, which
// needs the two distances separately rather than already blended.
func candidatePool(g geoDistances, q int, ids []uint32) []Candidate {
	out := make([]Candidate, 0, len(ids))
	for _, id := range ids {
		if int(id) == q {
			continue
		}
		e, s := g.pair(q, int(id))
		out = append(out, Candidate{ID: id, E: e, S: s})
	}
	return out
}

// interInsert offers the reciprocal edge target->src for every edge
// src->target that buildGeoGraphIncremental just picked: the target's
// edges plus src are re-pruned with geo2NeighborPrune, and the result
// replaces the target's edges only if src survives that prune (otherwise
// the target's edges are left unchanged). Writes go directly into the
// shared per-node adjacency under the target's own lock. The
// original source's InterInsert wrote into a locally copied neighbor pool
// instead of the shared cut_graph_, so the reciprocal link was silently
// discarded; spec.md calls for the corrected behavior, so this port takes
// the target's lock and mutates its real edge list. The read (existing
// edges), the prune recomputation, and the write all happen under one
// lock acquisition per target rather than released-and-reacquired,
// because with insertion now parallel across cfg.NThreads workers two
// different source nodes can race to reciprocate onto the same target;
// dropping the lock between read and write would let the second writer's
// ReplaceEdges silently discard the first's.
func interInsert(store *geoNodeStore, g geoDistances, cfg *Config, src uint32, edges []geoEdge, level int) {
	for _, e := range edges {
		target := store.Get(int(e.To))
		if target == nil || level > target.Level() {
			continue
		}
		interInsertOne(target, g, cfg, src, e.To, level)
	}
}

// interInsertOne performs the locked critical section for a single
// reciprocal edge, factored out of interInsert so the lock's scope is
// exactly the read-modify-write it protects.
func interInsertOne(target *geoNode, g geoDistances, cfg *Config, src, to uint32, level int) {
	target.mu.Lock()
	defer target.mu.Unlock()

	existing := target.layers[level]
	for _, ex := range existing {
		if ex.To == src {
			return
		}
	}

	pool := make([]Candidate, 0, len(existing)+1)
	for _, ex := range existing {
		eE, eS := g.pair(int(to), int(ex.To))
		pool = append(pool, Candidate{ID: ex.To, E: eE, S: eS})
	}
	srcE, srcS := g.pair(int(to), int(src))
	pool = append(pool, Candidate{ID: src, E: srcE, S: srcS})

	pruned := geo2NeighborPrune(g, cfg, int(to), pool, cfg.MaxMGeo)

	keepsSrc := false
	for _, p := range pruned {
		if p.To == src {
			keepsSrc = true
			break
		}
	}
	if keepsSrc {
		target.layers[level] = pruned
	}
}

// buildGeoGraphIncremental is the default GeoGraph builder: each node is
// inserted one at a time, searching the graph built so far for a wide
// candidate pool, pruning it to at most MaxMGeo edges with
// geo2NeighborPrune, then reciprocating each kept edge via interInsert.
// Ported from ComponentInitGeoGraph::BuildByIncrementInsert/InsertNode.
// When cfg.GeoGraphLevel is 0 (the default), every node is inserted at
// level 0 only, producing a flat skyline graph rather than a
// hierarchical one (spec.md §9's second Open Question, preserved as a
// knob rather than resolved either way). Insertions run across
// cfg.NThreads workers (spec.md §5); a node that raises the graph's max
// level holds store.mu for the whole insertion, mirroring buildHNSW's
// max-level guard, and every worker owns its own VisitedList/RNG rather
// than sharing store-wide state unsafely across goroutines.
func buildGeoGraphIncremental(ds *Dataset, cfg *Config, edist, sdist DistanceFunc, store *geoNodeStore) {
	g := geoDistances{ds: ds, edist: edist, sdist: sdist}
	base := cfg.rng().Int63()
	nw := max(cfg.NThreads, 1)
	rngs := make([]*rand.Rand, nw)
	vls := make([]*VisitedList, nw)

	parallelForWorkers(ds.N, cfg.NThreads, func(worker, i int) {
		if vls[worker] == nil {
			vls[worker] = NewVisitedList(ds.N)
		}
		vl := vls[worker]

		level := cfg.GeoGraphLevel
		if level != 0 {
			if rngs[worker] == nil {
				rngs[worker] = rand.New(rand.NewSource(seedPerThread(base, worker)))
			}
			level = randomLevel(cfg, rngs[worker])
		}
		store.Init(i, level)

		store.mu.Lock()
		if !store.hasEntry {
			store.hasEntry = true
			store.entry = uint32(i)
			store.maxLevel = level
			store.mu.Unlock()
			return
		}
		entry := store.entry
		raiseMax := level > store.maxLevel
		if !raiseMax {
			store.mu.Unlock()
		}
		// raiseMax: store.mu stays held for the rest of this insertion and
		// is released just below, after promoting the entry point.

		distOf := nswDistance(ds, cfg, edist, sdist, i)

		for l := level; l >= 0; l-- {
			vl.Reset()
			results := searchLayer(flatViewOf(store, l), distOf, entry, cfg.CandidateEdge, l, vl)
			ids := make([]uint32, len(results))
			for j, r := range results {
				ids[j] = r.ID
			}
			pool := candidatePool(g, i, ids)
			edges := geo2NeighborPrune(g, cfg, i, pool, cfg.MaxMGeo)
			store.Get(i).ReplaceEdges(l, edges)
			interInsert(store, g, cfg, uint32(i), edges, l)
		}

		if raiseMax {
			store.entry = uint32(i)
			store.maxLevel = level
			store.mu.Unlock()
		}
	})
}

// flatViewOf adapts a geoNodeStore level into the plain-id adjacency shape
// searchLayer expects, so construction-time candidate gathering can reuse
// the same greedy expansion as NSW/HNSW instead of a separate walk.
func flatViewOf(store *geoNodeStore, level int) *flatNodeStore {
	view := newFlatNodeStore(store.Len())
	for i := 0; i < store.Len(); i++ {
		gn := store.Get(i)
		if gn == nil || level > gn.Level() {
			continue
		}
		fn := view.Init(i, gn.Level())
		for _, e := range gn.Snapshot(level) {
			fn.AppendFriend(level, e.To, false)
		}
	}
	return view
}

// buildGeoGraphSkylineDescent refines an incrementally built graph with
// an NN-descent-style local join: each round, every node's candidate pool
// is widened with its neighbors' neighbors plus a reservoir-sampled
// subset of its reverse neighbors (nodes that currently point at it,
// capped at RNNSize), then re-pruned with geo2NeighborPrune. Ported from
// ComponentInitGeoGraph::BuildBySkylineDescent.
func buildGeoGraphSkylineDescent(ds *Dataset, cfg *Config, edist, sdist DistanceFunc, store *geoNodeStore) {
	buildGeoGraphIncremental(ds, cfg, edist, sdist, store)
	g := geoDistances{ds: ds, edist: edist, sdist: sdist}
	rng := cfg.rng()

	for iter := 0; iter < cfg.ITER; iter++ {
		reverse := make([][]uint32, ds.N)
		for i := 0; i < ds.N; i++ {
			node := store.Get(i)
			if node == nil {
				continue
			}
			for l := 0; l <= node.Level(); l++ {
				for _, e := range node.Snapshot(l) {
					reverse[e.To] = reservoirAppend(rng, reverse[e.To], uint32(i), cfg.RNNSize)
				}
			}
		}

		for i := 0; i < ds.N; i++ {
			node := store.Get(i)
			if node == nil {
				continue
			}
			for l := 0; l <= node.Level(); l++ {
				seen := map[uint32]bool{uint32(i): true}
				var ids []uint32
				for _, e := range node.Snapshot(l) {
					if !seen[e.To] {
						seen[e.To] = true
						ids = append(ids, e.To)
					}
					nb := store.Get(int(e.To))
					if nb == nil {
						continue
					}
					for _, e2 := range nb.Snapshot(min(l, nb.Level())) {
						if !seen[e2.To] {
							seen[e2.To] = true
							ids = append(ids, e2.To)
						}
					}
				}
				for _, rid := range reverse[i] {
					if !seen[rid] {
						seen[rid] = true
						ids = append(ids, rid)
					}
				}
				pool := candidatePool(g, i, ids)
				edges := geo2NeighborPrune(g, cfg, i, pool, cfg.MaxMGeo)
				node.ReplaceEdges(l, edges)
			}
		}
	}
}

// reservoirAppend implements classic reservoir sampling with uniform
// replacement once the reservoir reaches cap, ported from the
// reverse-neighbor bookkeeping in BuildBySkylineDescent.
func reservoirAppend(rng interface {
	Intn(int) int
}, reservoir []uint32, id uint32, cap int) []uint32 {
	if len(reservoir) < cap {
		return append(reservoir, id)
	}
	j := rng.Intn(len(reservoir) + 1)
	if j < cap {
		reservoir[j] = id
	}
	return reservoir
}
