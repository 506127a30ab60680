package geoann

import "github.com/skylinegraph/geoann/heap"

// distItem is a (id, distance) pair ordered by distance ascending, the
// element type pushed through heap.Heap by every layer search below. It
// implements heap.Lesser so the same generic container (spec.md §4.3)
// serves both the closer-first candidate queue and the bounded
// farther-first result set.
type distItem struct {
	ID uint32
	D  float32
}

// Less orders by distance first, then by id: spec.md §4.3 requires ties
// broken by id so that runs are deterministic given a fixed seed (needed
// for property 6, bit-identical single-threaded rebuilds).
func (a distItem) Less(b distItem) bool {
	if a.D != b.D {
		return a.D < b.D
	}
	return a.ID < b.ID
}

// distOfFunc computes the build- or query-time distance from a fixed
// point to node id at a given level. Builders close over a fixed alpha;
// routers close over the query-supplied one.
type distOfFunc func(id uint32) float32

// searchLayer performs the greedy expansion shared by NSW, NSW-V2 and
// HNSW (both construction and the plain routers): a closer-first
// candidate queue drains into a bounded farther-first result set of size
// at most ef, ported from the *::SearchAtLayer family in the original
// source. entry must be unvisited in vl when called; vl is reset by the
// caller between independent searches.
func searchLayer(store *flatNodeStore, distOf distOfFunc, entry uint32, ef int, level int, vl *VisitedList) []distItem {
	results := &heap.Heap[distItem]{}
	results.Init(nil)
	candidates := &heap.Heap[distItem]{}
	candidates.Init(nil)

	d0 := distOf(entry)
	vl.MarkAsVisited(entry)
	candidates.Push(distItem{entry, d0})
	results.Push(distItem{entry, d0})

	for candidates.Len() > 0 {
		c := candidates.Pop()
		if results.Len() >= ef && c.D > results.Max().D {
			break
		}
		node := store.Get(int(c.ID))
		if node == nil || level > node.Level() {
			continue
		}
		friends := node.Snapshot(level)
		for _, fid := range friends {
			if vl.NotVisited(fid) {
				vl.MarkAsVisited(fid)
				fd := distOf(fid)
				if results.Len() < ef || fd < results.Max().D {
					candidates.Push(distItem{fid, fd})
					results.Push(distItem{fid, fd})
					if results.Len() > ef {
						results.PopLast()
					}
				}
			}
		}
	}

	out := results.Slice()
	sortDistItems(out)
	return out
}

// sortDistItems orders items ascending by distance, ties broken by id (the
// same order as distItem.Less); results sets are small (bounded by ef), so
// a simple insertion sort keeps this dependency free.
func sortDistItems(items []distItem) {
	for i := 1; i < len(items); i++ {
		v := items[i]
		j := i - 1
		for j >= 0 && v.Less(items[j]) {
			items[j+1] = items[j]
			j--
		}
		items[j+1] = v
	}
}
