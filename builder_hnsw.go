package geoann

import (
	"math"
	"math/rand"
	"sync"
)

// hnswStore is a flatNodeStore plus the hierarchical bookkeeping HNSW
// needs: an entry point and the current max level, guarded by a dedicated
// mutex that a concurrent insert which doesn't raise the max level holds
// only while reading the entry point and max level (spec.md §3's two-level
// lock hierarchy),
// ported from Index::enterpoint_ handling in ComponentInitHNSW.
type hnswStore struct {
	*flatNodeStore
	mu         sync.Mutex
	entry      uint32
	maxLevel   int
	hasEntry   bool
}

func newHNSWStore(n int) *hnswStore {
	return &hnswStore{flatNodeStore: newFlatNodeStore(n)}
}

// randomLevel draws a node's top level from the exponential distribution
// HNSW uses so that level populations shrink geometrically, ported from
// ComponentInitHNSW::GetRandomNodeLevel. mult defaults to 1/ln(maxM) when
// cfg.Mult is not positive, the conventional choice.
func randomLevel(cfg *Config, rng interface{ Float64() float64 }) int {
	mult := cfg.Mult
	if mult <= 0 {
		mult = 1.0 / math.Log(float64(cfg.MaxM))
	}
	r := rng.Float64()
	if r < 1e-12 {
		r = 1e-12
	}
	return int(math.Floor(-math.Log(r) * mult))
}

// hnswDistance mirrors nswDistance for a hierarchical store: a closure
// computing the build-time blended distance from a fixed point to any
// other node.
func hnswDistance(ds *Dataset, cfg *Config, edist, sdist DistanceFunc, query int) distOfFunc {
	return nswDistance(ds, cfg, edist, sdist, query)
}

// buildHNSW constructs the layered graph: each node descends greedily from
// the entry point through layers above its own level to find a good local
// entry, then runs ef_construction-width searches at each of its own
// layers down to 0, heuristically pruning the candidates before linking.
// Ported from ComponentInitHNSW::Build/InsertNode/Link. Insertions run
// concurrently across cfg.NThreads workers (spec.md §5's parallel
// insertion substrate): a node whose level raises the graph's max level
// holds store.mu for the full insertion (the max-level guard of spec.md
// §3/§5/§9's two-level lock hierarchy, serializing top growth), every
// other insertion only holds it for the instant it reads the current
// entry/max level. Per-worker VisitedList/RNG avoid sharing either across
// goroutines (a *rand.Rand and a VisitedList are not safe for concurrent
// use).
func buildHNSW(ds *Dataset, cfg *Config, edist, sdist DistanceFunc, store *hnswStore) {
	base := cfg.rng().Int63()
	nw := max(cfg.NThreads, 1)
	rngs := make([]*rand.Rand, nw)
	vls := make([]*VisitedList, nw)

	parallelForWorkers(ds.N, cfg.NThreads, func(worker, i int) {
		if rngs[worker] == nil {
			rngs[worker] = rand.New(rand.NewSource(seedPerThread(base, worker)))
		}
		if vls[worker] == nil {
			vls[worker] = NewVisitedList(ds.N)
		}
		rng := rngs[worker]
		vl := vls[worker]

		level := randomLevel(cfg, rng)
		node := store.Init(i, level)

		store.mu.Lock()
		if !store.hasEntry {
			store.entry = uint32(i)
			store.maxLevel = level
			store.hasEntry = true
			store.mu.Unlock()
			return
		}
		entry := store.entry
		maxLevel := store.maxLevel
		raiseMax := level > maxLevel
		if !raiseMax {
			store.mu.Unlock()
		}
		// raiseMax: store.mu stays held for the rest of this insertion and
		// is released just below, after promoting the entry point.

		distOf := hnswDistance(ds, cfg, edist, sdist, i)

		cur := entry
		for l := maxLevel; l > level; l-- {
			vl.Reset()
			res := searchLayer(store.flatNodeStore, distOf, cur, 1, l, vl)
			if len(res) > 0 {
				cur = res[0].ID
			}
		}

		for l := min(level, maxLevel); l >= 0; l-- {
			vl.Reset()
			cap := cfg.EfConstruction
			res := searchLayer(store.flatNodeStore, distOf, cur, cap, l, vl)
			m := cfg.MaxM
			if l == 0 {
				m = cfg.MaxM0
			}
			selected := selectNeighborsHeuristic(ds, edist, sdist, cfg, i, res, m)
			for _, s := range selected {
				node.AppendFriend(l, s.ID, true)
				linkBack(store, ds, cfg, edist, sdist, s.ID, uint32(i), l, m)
			}
			if len(selected) > 0 {
				cur = selected[0].ID
			}
		}

		if raiseMax {
			store.entry = uint32(i)
			store.maxLevel = level
			store.mu.Unlock()
		}
	})
}

// selectNeighborsHeuristic implements the RNG-style (relative neighborhood
// graph) acceptance rule HNSW uses instead of plain top-m: walk
// candidates closest-first and accept c only if c is closer to the query
// than to every neighbor already accepted, which favors spread over raw
// proximity. If fewer than m candidates pass that rule, the remaining
// slots are filled with the closest rejected candidates, so a full result
// set does not always satisfy the rule. When there are at most m
// candidates, all of them are returned unfiltered. Ported from
// ComponentInitHNSW's Hnsw2Neighbor heuristic.
func selectNeighborsHeuristic(ds *Dataset, edist, sdist DistanceFunc, cfg *Config, query int, candidates []distItem, m int) []distItem {
	if len(candidates) <= m {
		return candidates
	}
	selected := make([]distItem, 0, m)
	for _, c := range candidates {
		if len(selected) >= m {
			break
		}
		keep := true
		for _, s := range selected {
			e := edist(ds.EmbRow(int(c.ID)), ds.EmbRow(int(s.ID)))
			sd := sdist(ds.LocRow(int(c.ID)), ds.LocRow(int(s.ID)))
			distToSelected := Blend(cfg.Alpha, e, sd)
			if distToSelected < c.D {
				keep = false
				break
			}
		}
		if keep {
			selected = append(selected, c)
		}
	}
	if len(selected) < m {
		for _, c := range candidates {
			if len(selected) >= m {
				break
			}
			found := false
			for _, s := range selected {
				if s.ID == c.ID {
					found = true
					break
				}
			}
			if !found {
				selected = append(selected, c)
			}
		}
	}
	return selected
}

// linkBack installs the reverse edge target->src and shrinks target's
// friend list at level l back down to cap m if the insert pushed it over,
// ported from ComponentInitHNSW::Link's symmetric-insert-then-shrink
// step. The whole read-modify-write runs under target's own lock in one
// critical section (spec.md §5: "held during read-modify-write on the
// adjacency") rather than snapshot-then-replace with the lock dropped in
// between, since concurrent insertions (buildHNSW now runs across
// cfg.NThreads workers) can both want to reciprocate onto the same
// target and a dropped lock would let the second writer silently
// overwrite the first's edge.
func linkBack(store *hnswStore, ds *Dataset, cfg *Config, edist, sdist DistanceFunc, target, src uint32, l, m int) {
	node := store.Get(int(target))
	if node == nil || l > node.Level() {
		return
	}
	node.Lock()
	defer node.Unlock()

	friends := node.raw(l)
	for _, f := range friends {
		if f == src {
			return
		}
	}
	friends = append(append([]uint32{}, friends...), src)

	if len(friends) > m {
		cands := make([]distItem, len(friends))
		distOf := hnswDistance(ds, cfg, edist, sdist, int(target))
		for i, f := range friends {
			cands[i] = distItem{f, distOf(f)}
		}
		sortDistItems(cands)
		selected := selectNeighborsHeuristic(ds, edist, sdist, cfg, int(target), cands, m)
		friends = friends[:0]
		for _, s := range selected {
			friends = append(friends, s.ID)
		}
	}
	node.setRaw(l, friends)
}
