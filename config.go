package geoann

import "math/rand"

// Builder selects which graph construction variant populates the node
// store (spec.md §2, C6-C9).
type Builder int

const (
	BuilderRandom Builder = iota
	BuilderNSW
	BuilderNSWV2
	BuilderHNSW
	BuilderGeoGraphIncremental
	BuilderGeoGraphSkylineDescent
)

// Router selects which query-time path serves Search (spec.md §4.9, C10).
type Router int

const (
	RouterGreedy Router = iota
	RouterNSW
	RouterHNSW
	RouterGeoGraph
)

// Config collects every tunable the surrounding driver would otherwise
// pass in via flags or a config file (spec.md §6's key table). Construction
// parameters not used by the selected Builder are ignored; the same holds
// for Router.
type Config struct {
	// Alpha blends embedding and spatial distance: d = Alpha*E + (1-Alpha)*S.
	// Used for build-time scalarization (random/NSW/HNSW, and the GeoGraph
	// builders' candidate search; NSW-V2 sweeps its own probe alphas). The
	// query-time alpha is the alpha argument of Graph.Search, not this field.
	Alpha float32

	// EDist / SDist name the distance kernels (see distance.go's registry).
	// Empty defaults to "squared_l2" for both.
	EDist string
	SDist string

	// S is the seed edge count for the random init builder (C6).
	S int

	// NN, EfConstruction, NThreads configure NSW/NSW-V2 (C7).
	NN             int
	EfConstruction int
	NThreads       int

	// MaxM, MaxM0, Mult configure HNSW (C8). EfConstruction is shared
	// with C7's field above.
	MaxM  int
	MaxM0 int
	Mult  float64

	// GeoGraph (C9) parameters.
	MaxMGeo            int
	InitEdge           int
	CandidateEdge      int
	UpdateLayer        int
	ITER               int
	RNNSize            int
	RRefine            int
	LRefine            int
	CRefine            int
	// UsabilityThreshold is the minimum retained α-measure for a pruned
	// candidate edge to be accepted (spec.md §4.8 step 4, an Open
	// Question preserved as a knob rather than hardcoded).
	UsabilityThreshold float32
	// GeoGraphLevel toggles whether the GeoGraph builders assign every node
	// to level 0 (a flat skyline graph, the default when this is 0) or draw
	// a hierarchical level from the same distribution HNSW uses (any
	// nonzero value). spec.md §9's second Open Question is preserved as
	// this knob rather than resolved either way.
	GeoGraphLevel int

	// LSearch, KSearch configure every router (C10).
	LSearch int
	KSearch int

	// Rng is used for level generation and random-init edge sampling. A
	// nil Rng is replaced by a time-seeded one at Build time (teacher's
	// Graph.Rng / defaultRand idiom).
	Rng *rand.Rand
}

// DefaultConfig returns a Config with the constants the original source
// and spec.md's scenarios use, analogous to the teacher's NewGraph()
// defaults.
func DefaultConfig() Config {
	return Config{
		Alpha:              0.5,
		EDist:              "squared_l2",
		SDist:              "squared_l2",
		S:                  10,
		NN:                 10,
		EfConstruction:     100,
		NThreads:           1,
		MaxM:               16,
		MaxM0:              32,
		Mult:               -1,
		MaxMGeo:            16,
		InitEdge:           10,
		CandidateEdge:      50,
		UpdateLayer:        2,
		ITER:               6,
		RNNSize:            20,
		RRefine:            16,
		LRefine:            50,
		CRefine:            100,
		UsabilityThreshold: 0.5,
		GeoGraphLevel:      0,
		LSearch:            50,
		KSearch:            10,
	}
}

// Validate checks the parameters relevant to builder/router, returning an
// *Error with Kind InvalidConfig on the first problem found. Matches the
// teacher's Graph.Validate shape (graph.go).
func (c *Config) Validate(b Builder, r Router) error {
	if c.Alpha < 0 || c.Alpha > 1 {
		return newErr(InvalidConfig, "alpha must be in [0,1]")
	}
	if c.LSearch <= 0 {
		return newErr(InvalidConfig, "L_search must be > 0")
	}
	if c.KSearch <= 0 {
		return newErr(InvalidConfig, "K_search must be > 0")
	}
	if c.KSearch > c.LSearch {
		return newErr(InvalidConfig, "K_search must be <= L_search")
	}

	switch b {
	case BuilderRandom:
		if c.S <= 0 {
			return newErr(InvalidConfig, "S must be > 0")
		}
	case BuilderNSW, BuilderNSWV2:
		if c.NN <= 0 {
			return newErr(InvalidConfig, "NN must be > 0")
		}
		if c.EfConstruction <= 0 {
			return newErr(InvalidConfig, "ef_construction must be > 0")
		}
		if c.NThreads <= 0 {
			return newErr(InvalidConfig, "n_threads must be > 0")
		}
	case BuilderHNSW:
		if c.MaxM <= 0 || c.MaxM0 <= 0 {
			return newErr(InvalidConfig, "max_m and max_m0 must be > 0")
		}
		if c.EfConstruction <= 0 {
			return newErr(InvalidConfig, "ef_construction must be > 0")
		}
	case BuilderGeoGraphIncremental, BuilderGeoGraphSkylineDescent:
		if c.MaxMGeo <= 0 {
			return newErr(InvalidConfig, "max_m must be > 0")
		}
		if c.EfConstruction <= 0 {
			return newErr(InvalidConfig, "ef_construction must be > 0")
		}
		if c.UsabilityThreshold < 0 || c.UsabilityThreshold > 1 {
			return newErr(InvalidConfig, "usability threshold must be in [0,1]")
		}
		if c.InitEdge <= 0 || c.CandidateEdge <= 0 {
			return newErr(InvalidConfig, "init_edge and candidate_edge must be > 0")
		}
		if c.RNNSize <= 0 {
			return newErr(InvalidConfig, "rnn_size must be > 0")
		}
	default:
		return newErr(InvalidConfig, "unknown builder")
	}

	switch r {
	case RouterGreedy, RouterNSW, RouterHNSW, RouterGeoGraph:
	default:
		return newErr(InvalidConfig, "unknown router")
	}

	return nil
}

func (c *Config) rng() *rand.Rand {
	if c.Rng == nil {
		c.Rng = defaultRand()
	}
	return c.Rng
}
