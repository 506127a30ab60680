package geoann

import (
	"math/rand"
	"sync"
	"sync/atomic"
	"time"
)

// defaultRand seeds a generator from the wall clock, the fallback used
// whenever a caller leaves Config.Rng nil (graph.go's NewGraph /
// Index::Index idiom in the original source).
func defaultRand() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// seedPerThread derives a distinct, deterministic seed for worker w from
// a base seed, ported from GetRandomSeedPerThread: splitting one seed
// across threads this way keeps a parallel build reproducible given the
// same base seed and thread count, unlike reseeding every worker from the
// clock.
func seedPerThread(base int64, w int) int64 {
	return base*2654435761 + int64(w)*40503 + 1
}

// chunkSize mirrors the original source's OpenMP `schedule(dynamic, 128)` tiling:
// workers pull fixed-size slices off a shared cursor instead of being
// handed a static 1/NThreads split, so slower slices (e.g. nodes with
// many friends) don't leave other workers idle.
const chunkSize = 128

// parallelFor runs fn(i) for i in [0,n) across nThreads workers using a
// shared atomic cursor handing out chunkSize-sized slices at a time,
// generalized from the teacher's ParallelSearch goroutine-pool idiom.
func parallelFor(n, nThreads int, fn func(i int)) {
	parallelForWorkers(n, nThreads, func(_ int, i int) { fn(i) })
}

// parallelForWorkers is parallelFor with the owning worker id threaded
// through to fn, so a caller can lazily allocate one per-worker resource
// (a VisitedList, a thread-local RNG stream) the first time that worker
// touches it instead of reallocating per row. Matches spec.md §5: "Each
// worker owns: one visited-marker set (C2) ...; thread-local RNG seeded
// deterministically from a per-thread seed function."
func parallelForWorkers(n, nThreads int, fn func(worker, i int)) {
	if nThreads <= 1 || n <= chunkSize {
		for i := 0; i < n; i++ {
			fn(0, i)
		}
		return
	}

	var cursor int64
	var wg sync.WaitGroup
	wg.Add(nThreads)
	for w := 0; w < nThreads; w++ {
		w := w
		go func() {
			defer wg.Done()
			for {
				start := atomic.AddInt64(&cursor, chunkSize) - chunkSize
				if start >= int64(n) {
					return
				}
				end := start + chunkSize
				if end > int64(n) {
					end = int64(n)
				}
				for i := start; i < end; i++ {
					fn(w, int(i))
				}
			}
		}()
	}
	wg.Wait()
}
