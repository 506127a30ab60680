package geoann

import (
	"math/rand"
	"sort"
)

// buildRandom populates store with S distinct random out-edges per node at
// level 0, ported from ComponentInitRandom::InitInner/GenRandom. It is the
// baseline builder spec.md §2 calls for: no search, no pruning, just a
// random graph to compare the others against. Each picked id's blended
// build-time distance is computed and the adjacency is emitted sorted
// ascending by that weight, matching InitInner's own `dist = alpha*e+(1-
// alpha)*s` then `std::sort` step (spec.md §4.5, §8 Scenario A).
// Parallelizable per row (spec.md §4.5); each worker lazily seeds its own
// RNG stream via seedPerThread the first time it touches a row, so
// concurrent rows never contend on one *rand.Rand.
func buildRandom(ds *Dataset, cfg *Config, edist, sdist DistanceFunc, store *flatNodeStore) {
	base := cfg.rng().Int63()
	s := cfg.S
	if s > ds.N-1 {
		s = ds.N - 1
	}
	rngs := make([]*rand.Rand, max(cfg.NThreads, 1))
	parallelForWorkers(ds.N, cfg.NThreads, func(worker, i int) {
		node := store.Init(i, 0)
		if s <= 0 {
			return
		}
		if rngs[worker] == nil {
			rngs[worker] = rand.New(rand.NewSource(seedPerThread(base, worker)))
		}
		picked := genRandomDistinct(rngs[worker], ds.N, i, s)
		distOf := nswDistance(ds, cfg, edist, sdist, i)
		weighted := make([]distItem, len(picked))
		for j, id := range picked {
			weighted[j] = distItem{uint32(id), distOf(uint32(id))}
		}
		sortDistItems(weighted)
		for _, w := range weighted {
			node.AppendFriend(0, w.ID, false)
		}
	})
}

// genRandomDistinct draws s ids from [0,n) other than exclude, without
// rejection sampling: it samples s distinct values out of the (n-1)-sized
// domain [0,n) \ {exclude} by drawing s values in [0, domain-s], sorting
// them, then "monotonizing" (addr[i] <- max(addr[i], addr[i-1]+1)) so
// duplicates collapse into distinct increasing slots spanning [0,domain);
// a uniform rotation by a random offset then decorrelates the result from
// the sort order before the excluded id is spliced back in by shifting
// every value >= exclude up by one. Ported from ComponentInitRandom::
// GenRandom, which documents this as an O(S log S) alternative to
// rejection sampling.
func genRandomDistinct(rng *rand.Rand, n, exclude, s int) []int {
	domain := n - 1
	if domain <= 0 {
		return nil
	}
	if s > domain {
		s = domain
	}
	if s <= 0 {
		return nil
	}

	addr := make([]int, s)
	span := domain - s
	if span <= 0 {
		for i := range addr {
			addr[i] = i
		}
	} else {
		for i := range addr {
			addr[i] = rng.Intn(span + 1)
		}
		sort.Ints(addr)
		for i := 1; i < s; i++ {
			if addr[i] <= addr[i-1] {
				addr[i] = addr[i-1] + 1
			}
		}
	}

	off := rng.Intn(domain)
	out := make([]int, s)
	for i, a := range addr {
		v := (a + off) % domain
		if v >= exclude {
			v++
		}
		out[i] = v
	}
	return out
}
