package main

import (
	"fmt"
	"log"
	"math/rand"

	"github.com/skylinegraph/geoann"
)

func main() {
	rng := rand.New(rand.NewSource(1))

	const n, de, ds = 2000, 8, 2
	emb := make([]float32, n*de)
	loc := make([]float32, n*ds)
	for i := 0; i < n; i++ {
		for d := 0; d < de; d++ {
			emb[i*de+d] = rng.Float32()
		}
		loc[i*ds] = rng.Float32()*180 - 90
		loc[i*ds+1] = rng.Float32()*360 - 180
	}

	dataset, err := geoann.NewDataset(n, de, ds, emb, loc)
	if err != nil {
		log.Fatalf("failed to build dataset: %v", err)
	}

	cfg := geoann.DefaultConfig()
	cfg.Alpha = 0.5
	cfg.SDist = "haversine"
	cfg.MaxMGeo = 16
	cfg.CandidateEdge = 40
	cfg.NThreads = 4

	g, err := geoann.NewGraph(dataset, cfg, geoann.BuilderGeoGraphIncremental, geoann.RouterGeoGraph)
	if err != nil {
		log.Fatalf("failed to create graph: %v", err)
	}
	if err := g.Build(); err != nil {
		log.Fatalf("failed to build graph: %v", err)
	}

	analyzer := &geoann.Analyzer{Graph: g}
	fmt.Printf("height: %d\n", analyzer.Height())
	fmt.Printf("connectivity: %v\n", analyzer.Connectivity())
	fmt.Printf("usability >= 0.25/0.5/0.75: %v\n", analyzer.UsabilityProfile([]float32{0.25, 0.5, 0.75}))

	query := geoann.Query{
		Emb: dataset.EmbRow(0),
		Loc: dataset.LocRow(0),
	}

	for _, alpha := range []float32{0.0, 0.5, 1.0} {
		results, err := g.Search(query.Emb, query.Loc, alpha, 5)
		if err != nil {
			log.Fatalf("search failed: %v", err)
		}
		fmt.Printf("alpha=%.2f top hit: id=%d dist=%.4f\n", alpha, results[0].ID, results[0].Distance)
	}

	queries := make([]geoann.Query, 20)
	for i := range queries {
		queries[i] = geoann.Query{Emb: dataset.EmbRow(i), Loc: dataset.LocRow(i)}
	}
	batchResults, errs := g.SearchBatch(queries, 0.5, 3)
	for _, err := range errs {
		if err != nil {
			log.Fatalf("batch search error: %v", err)
		}
	}
	fmt.Printf("batch search returned %d hits across %d queries\n", len(batchResults), len(queries))
}
