package geoann

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/google/renameio"
)

// byteOrder matches the teacher's encode.go: little-endian throughout.
var byteOrder = binary.LittleEndian

const encodingVersion = 1

// writeString/readString/writeU32Slice mirror the teacher's
// binaryWrite/binaryRead helpers, narrowed to the concrete shapes
// geoann's wire format needs instead of the teacher's any-typed dispatch:
// spec.md §6 fixes the layout (u32 degree + ids, GeoGraph adding a u8
// interval count and (f32,f32) pairs), so there's no need for the
// teacher's interface-switched encoder here.
func writeString(w io.Writer, s string) error {
	if err := binary.Write(w, byteOrder, uint32(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func readString(r io.Reader) (string, error) {
	var n uint32
	if err := binary.Read(r, byteOrder, &n); err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func writeIDs(w io.Writer, ids []uint32) error {
	if err := binary.Write(w, byteOrder, uint32(len(ids))); err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	return binary.Write(w, byteOrder, ids)
}

func readIDs(r io.Reader) ([]uint32, error) {
	var n uint32
	if err := binary.Read(r, byteOrder, &n); err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	ids := make([]uint32, n)
	if err := binary.Read(r, byteOrder, ids); err != nil {
		return nil, err
	}
	return ids, nil
}

func writeIntervals(w io.Writer, ivs []Interval) error {
	if err := binary.Write(w, byteOrder, uint8(len(ivs))); err != nil {
		return err
	}
	for _, iv := range ivs {
		if err := binary.Write(w, byteOrder, iv.Lo); err != nil {
			return err
		}
		if err := binary.Write(w, byteOrder, iv.Hi); err != nil {
			return err
		}
	}
	return nil
}

func readIntervals(r io.Reader) ([]Interval, error) {
	var n uint8
	if err := binary.Read(r, byteOrder, &n); err != nil {
		return nil, err
	}
	ivs := make([]Interval, n)
	for i := range ivs {
		if err := binary.Read(r, byteOrder, &ivs[i].Lo); err != nil {
			return nil, err
		}
		if err := binary.Read(r, byteOrder, &ivs[i].Hi); err != nil {
			return nil, err
		}
	}
	return ivs, nil
}

// Export writes the node store (not the dataset backing it, which is the
// caller's to persist separately per Dataset's scope note) to w:
// parameters, then per-node adjacency as spec.md §6 describes — a u32
// degree followed by that many u32 ids for flat/HNSW stores, and for
// GeoGraph a u8 interval count plus (f32,f32) pairs after each id.
func (g *Graph) Export(w io.Writer) error {
	if err := multiWrite(w, int32(encodingVersion), int32(g.builder), int32(g.router), int32(g.ds.N)); err != nil {
		return fmt.Errorf("encode header: %w", err)
	}
	if err := binary.Write(w, byteOrder, g.cfg.Alpha); err != nil {
		return fmt.Errorf("encode alpha: %w", err)
	}
	if err := writeString(w, g.cfg.EDist); err != nil {
		return fmt.Errorf("encode edist: %w", err)
	}
	if err := writeString(w, g.cfg.SDist); err != nil {
		return fmt.Errorf("encode sdist: %w", err)
	}

	switch g.builder {
	case BuilderRandom, BuilderNSW, BuilderNSWV2:
		for i := 0; i < g.flat.Len(); i++ {
			if err := writeIDs(w, g.flat.Get(i).Snapshot(0)); err != nil {
				return fmt.Errorf("encode node %d: %w", i, err)
			}
		}
	case BuilderHNSW:
		if err := binary.Write(w, byteOrder, int32(g.hnsw.maxLevel)); err != nil {
			return err
		}
		if err := binary.Write(w, byteOrder, g.hnsw.entry); err != nil {
			return err
		}
		for i := 0; i < g.hnsw.Len(); i++ {
			node := g.hnsw.Get(i)
			if err := binary.Write(w, byteOrder, int32(node.Level())); err != nil {
				return err
			}
			for l := 0; l <= node.Level(); l++ {
				if err := writeIDs(w, node.Snapshot(l)); err != nil {
					return fmt.Errorf("encode node %d level %d: %w", i, l, err)
				}
			}
		}
	case BuilderGeoGraphIncremental, BuilderGeoGraphSkylineDescent:
		if err := binary.Write(w, byteOrder, int32(g.geo.maxLevel)); err != nil {
			return err
		}
		if err := binary.Write(w, byteOrder, g.geo.entry); err != nil {
			return err
		}
		for i := 0; i < g.geo.Len(); i++ {
			node := g.geo.Get(i)
			if err := binary.Write(w, byteOrder, int32(node.Level())); err != nil {
				return err
			}
			for l := 0; l <= node.Level(); l++ {
				edges := node.Snapshot(l)
				if err := binary.Write(w, byteOrder, uint32(len(edges))); err != nil {
					return err
				}
				for _, e := range edges {
					if err := binary.Write(w, byteOrder, e.To); err != nil {
						return err
					}
					if err := writeIntervals(w, e.Usable); err != nil {
						return fmt.Errorf("encode node %d level %d edge: %w", i, l, err)
					}
				}
			}
		}
	}
	return nil
}

func multiWrite(w io.Writer, data ...any) error {
	for _, d := range data {
		if err := binary.Write(w, byteOrder, d); err != nil {
			return err
		}
	}
	return nil
}

// ImportGraph reads a node store previously written by Export, re-binding
// it against ds (the caller's responsibility to have loaded the same
// dataset the export came from — an id mismatch produces a graph that
// fails its first Search with a DimensionMismatch or out-of-range panic,
// not a silently wrong one, since ids are never revalidated against a
// different N here).
func ImportGraph(r io.Reader, ds *Dataset) (*Graph, error) {
	var version, builderI, routerI, n int32
	if err := multiRead(r, &version, &builderI, &routerI, &n); err != nil {
		return nil, fmt.Errorf("decode header: %w", err)
	}
	if version != encodingVersion {
		return nil, newErr(Inconsistent, fmt.Sprintf("incompatible encoding version: %d", version))
	}
	builder, router := Builder(builderI), Router(routerI)

	var alpha float32
	if err := binary.Read(r, byteOrder, &alpha); err != nil {
		return nil, err
	}
	edistName, err := readString(r)
	if err != nil {
		return nil, err
	}
	sdistName, err := readString(r)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	cfg.Alpha = alpha
	cfg.EDist = edistName
	cfg.SDist = sdistName

	g, err := NewGraph(ds, cfg, builder, router)
	if err != nil {
		return nil, err
	}

	switch builder {
	case BuilderRandom, BuilderNSW, BuilderNSWV2:
		g.flat = newFlatNodeStore(int(n))
		for i := 0; i < int(n); i++ {
			ids, err := readIDs(r)
			if err != nil {
				return nil, fmt.Errorf("decode node %d: %w", i, err)
			}
			node := g.flat.Init(i, 0)
			for _, id := range ids {
				node.AppendFriend(0, id, false)
			}
		}
		g.entry = 0
	case BuilderHNSW:
		g.hnsw = newHNSWStore(int(n))
		var maxLevel int32
		if err := binary.Read(r, byteOrder, &maxLevel); err != nil {
			return nil, err
		}
		if err := binary.Read(r, byteOrder, &g.hnsw.entry); err != nil {
			return nil, err
		}
		g.hnsw.maxLevel = int(maxLevel)
		g.hnsw.hasEntry = true
		for i := 0; i < int(n); i++ {
			var level int32
			if err := binary.Read(r, byteOrder, &level); err != nil {
				return nil, err
			}
			node := g.hnsw.Init(i, int(level))
			for l := 0; l <= int(level); l++ {
				ids, err := readIDs(r)
				if err != nil {
					return nil, fmt.Errorf("decode node %d level %d: %w", i, l, err)
				}
				for _, id := range ids {
					node.AppendFriend(l, id, false)
				}
			}
		}
	case BuilderGeoGraphIncremental, BuilderGeoGraphSkylineDescent:
		g.geo = newGeoNodeStore(int(n))
		var maxLevel int32
		if err := binary.Read(r, byteOrder, &maxLevel); err != nil {
			return nil, err
		}
		if err := binary.Read(r, byteOrder, &g.geo.entry); err != nil {
			return nil, err
		}
		g.geo.maxLevel = int(maxLevel)
		g.geo.hasEntry = true
		for i := 0; i < int(n); i++ {
			var level int32
			if err := binary.Read(r, byteOrder, &level); err != nil {
				return nil, err
			}
			node := g.geo.Init(i, int(level))
			for l := 0; l <= int(level); l++ {
				var degree uint32
				if err := binary.Read(r, byteOrder, &degree); err != nil {
					return nil, err
				}
				edges := make([]geoEdge, degree)
				for e := 0; e < int(degree); e++ {
					if err := binary.Read(r, byteOrder, &edges[e].To); err != nil {
						return nil, err
					}
					ivs, err := readIntervals(r)
					if err != nil {
						return nil, fmt.Errorf("decode node %d level %d edge %d: %w", i, l, e, err)
					}
					edges[e].Usable = ivs
				}
				node.ReplaceEdges(l, edges)
			}
		}
	default:
		return nil, newErr(InvalidConfig, "unknown builder in stream")
	}

	return g, nil
}

func multiRead(r io.Reader, data ...any) error {
	for _, d := range data {
		if err := binary.Read(r, byteOrder, d); err != nil {
			return err
		}
	}
	return nil
}

// SavedGraph persists a Graph to a file on Save via an atomic rename,
// ported from the teacher's SavedGraph/renameio usage.
type SavedGraph struct {
	*Graph
	Path string
}

// LoadSavedGraph opens path, importing an existing graph against ds if
// the file is non-empty.
func LoadSavedGraph(path string, ds *Dataset, cfg Config, builder Builder, router Router) (*SavedGraph, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	if info.Size() > 0 {
		g, err := ImportGraph(bufio.NewReader(f), ds)
		if err != nil {
			return nil, fmt.Errorf("import: %w", err)
		}
		return &SavedGraph{Graph: g, Path: path}, nil
	}

	g, err := NewGraph(ds, cfg, builder, router)
	if err != nil {
		return nil, err
	}
	return &SavedGraph{Graph: g, Path: path}, nil
}

// Save writes the graph to Path via a temp file plus atomic rename.
func (g *SavedGraph) Save() error {
	tmp, err := renameio.TempFile("", g.Path)
	if err != nil {
		return err
	}
	defer tmp.Cleanup()

	wr := bufio.NewWriter(tmp)
	if err := g.Export(wr); err != nil {
		return fmt.Errorf("exporting: %w", err)
	}
	if err := wr.Flush(); err != nil {
		return fmt.Errorf("flushing: %w", err)
	}
	if err := tmp.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("closing atomically: %w", err)
	}
	return nil
}
