package geoann

import "fmt"

// Result is one hit returned by Search: the dataset id and the blended
// distance it was ranked by.
type Result struct {
	ID       uint32
	Distance float32
}

// Graph owns a Dataset plus the node store a single Builder populated it
// with, and answers Search calls through the corresponding Router.
// Ported from the teacher's Graph[K] (graph.go): one struct gathering
// config plus the built structure, with Validate/Search/Len in the same
// shape, generalized from a single HNSW layout to geoann's six builder
// variants.
type Graph struct {
	ds      *Dataset
	cfg     Config
	builder Builder
	router  Router
	edist   DistanceFunc
	sdist   DistanceFunc

	flat *flatNodeStore // random, NSW, NSW-V2
	hnsw *hnswStore     // HNSW
	geo  *geoNodeStore  // GeoGraph (either builder variant)

	entry uint32
}

// NewGraph validates cfg against the chosen builder/router and returns an
// unbuilt Graph. Call Build to populate the node store.
func NewGraph(ds *Dataset, cfg Config, builder Builder, router Router) (*Graph, error) {
	if ds == nil {
		return nil, newErr(EmptyDataset, "dataset is nil")
	}
	if err := cfg.Validate(builder, router); err != nil {
		return nil, err
	}
	edist, err := resolveDistance(cfg.EDist)
	if err != nil {
		return nil, err
	}
	sdist, err := resolveDistance(cfg.SDist)
	if err != nil {
		return nil, err
	}
	return &Graph{ds: ds, cfg: cfg, builder: builder, router: router, edist: edist, sdist: sdist}, nil
}

// Build runs the configured Builder over the dataset. It must be called
// once, before Search.
func (g *Graph) Build() error {
	switch g.builder {
	case BuilderRandom:
		g.flat = newFlatNodeStore(g.ds.N)
		buildRandom(g.ds, &g.cfg, g.edist, g.sdist, g.flat)
		g.entry = 0
	case BuilderNSW:
		g.flat = newFlatNodeStore(g.ds.N)
		buildNSW(g.ds, &g.cfg, g.edist, g.sdist, g.flat)
		g.entry = 0
	case BuilderNSWV2:
		g.flat = newFlatNodeStore(g.ds.N)
		buildNSWV2(g.ds, &g.cfg, g.edist, g.sdist, g.flat)
		g.entry = 0
	case BuilderHNSW:
		g.hnsw = newHNSWStore(g.ds.N)
		buildHNSW(g.ds, &g.cfg, g.edist, g.sdist, g.hnsw)
	case BuilderGeoGraphIncremental:
		g.geo = newGeoNodeStore(g.ds.N)
		buildGeoGraphIncremental(g.ds, &g.cfg, g.edist, g.sdist, g.geo)
	case BuilderGeoGraphSkylineDescent:
		g.geo = newGeoNodeStore(g.ds.N)
		buildGeoGraphSkylineDescent(g.ds, &g.cfg, g.edist, g.sdist, g.geo)
	default:
		return newErr(InvalidConfig, "unknown builder")
	}
	return nil
}

// Search returns the k nearest ids to (qe, qs) under the given query-time
// alpha, routed through the Graph's configured Router (spec.md §4.9: only
// GeoGraph's router actually honors an alpha different from the one the
// graph was built with; the others recompute the blend at query time
// regardless, so the call still makes sense but without GeoGraph's
// simultaneous-navigability guarantee).
func (g *Graph) Search(qe, qs []float32, alpha float32, k int) ([]Result, error) {
	if len(qe) != g.ds.De {
		return nil, newErr(DimensionMismatch, "query embedding dimension mismatch")
	}
	if len(qs) != g.ds.Ds {
		return nil, newErr(DimensionMismatch, "query location dimension mismatch")
	}
	if k <= 0 {
		return nil, newErr(InvalidConfig, "k must be > 0")
	}

	distOf := queryDistance(g.edist, g.sdist, alpha, qe, qs, g.ds)
	vl := NewVisitedList(g.ds.N)

	var items []distItem
	switch g.router {
	case RouterGreedy:
		if g.flat == nil {
			return nil, newErr(Inconsistent, "graph not built for greedy routing")
		}
		items = RouteGreedy(g.flat, distOf, g.entry, g.cfg.LSearch, k, vl)
	case RouterNSW:
		if g.flat == nil {
			return nil, newErr(Inconsistent, "graph not built for NSW routing")
		}
		items = RouteNSW(g.flat, distOf, g.entry, g.cfg.LSearch, k, vl)
	case RouterHNSW:
		if g.hnsw == nil {
			return nil, newErr(Inconsistent, "graph not built for HNSW routing")
		}
		items = RouteHNSW(g.hnsw, distOf, g.cfg.LSearch, k, vl)
	case RouterGeoGraph:
		if g.geo == nil {
			return nil, newErr(Inconsistent, "graph not built for GeoGraph routing")
		}
		items = RouteGeoGraph(g.geo, distOf, alpha, g.cfg.LSearch, k, vl)
	default:
		return nil, newErr(InvalidConfig, "unknown router")
	}

	out := make([]Result, len(items))
	for i, it := range items {
		out[i] = Result{ID: it.ID, Distance: it.D}
	}
	return out, nil
}

// Query is one (embedding, location) pair for SearchBatch.
type Query struct {
	Emb []float32
	Loc []float32
}

// SearchBatch answers many independent queries concurrently across
// cfg.NThreads workers using the dynamic-chunk scheduler in parallel.go,
// the batch-query analog of the teacher's ParallelSearch (there, one
// query's own neighbor expansion is parallelized; here, whole queries are
// embarrassingly parallel against a graph that Search never mutates).
func (g *Graph) SearchBatch(queries []Query, alpha float32, k int) ([]Result, []error) {
	out := make([][]Result, len(queries))
	errs := make([]error, len(queries))
	nThreads := g.cfg.NThreads
	if nThreads <= 0 {
		nThreads = 1
	}
	parallelFor(len(queries), nThreads, func(i int) {
		res, err := g.Search(queries[i].Emb, queries[i].Loc, alpha, k)
		out[i] = res
		errs[i] = err
	})
	flat := make([]Result, 0, len(queries)*k)
	for _, r := range out {
		flat = append(flat, r...)
	}
	return flat, errs
}

// Len returns the number of ids the graph was built over.
func (g *Graph) Len() int {
	if g.ds == nil {
		return 0
	}
	return g.ds.N
}

// Dims reports (D_e, D_s).
func (g *Graph) Dims() (int, int) {
	if g.ds == nil {
		return 0, 0
	}
	return g.ds.De, g.ds.Ds
}

func (g *Graph) String() string {
	return fmt.Sprintf("Graph{N=%d builder=%d router=%d}", g.Len(), g.builder, g.router)
}
