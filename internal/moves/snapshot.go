package moves

import (
	"fmt"
	"io"
	"sort"

	"github.com/vmihailenco/msgpack/v5"

	"moveflow/internal/mir"
)

// SnapshotSchema is bumped whenever the Snapshot layout changes.
const SnapshotSchema uint16 = 1

// Snapshot is the serialized form of a MoveData and its errors.
type Snapshot struct {
	Schema uint16

	Body        string
	Moves       []MoveOut
	MovePaths   []MovePath
	PathMap     [][]MoveOutIndex
	Inits       []Init
	InitPathMap [][]InitIndex
	LocMap      [][][]MoveOutIndex
	InitLocMap  [][][]InitIndex

	Locals      []MovePathIndex
	Projections []SnapshotProjection

	Errors []PlaceError
}

// SnapshotProjection is one lookup table entry.
type SnapshotProjection struct {
	Base  MovePathIndex
	Elem  mir.PlaceElem
	Child MovePathIndex
}

// NewSnapshot flattens data. Projections are ordered by child index so equal
// data always encodes to equal bytes.
func NewSnapshot(body string, data *MoveData, errs []PlaceError) *Snapshot {
	s := &Snapshot{
		Schema:      SnapshotSchema,
		Body:        body,
		Moves:       data.Moves,
		MovePaths:   data.MovePaths,
		PathMap:     data.PathMap,
		Inits:       data.Inits,
		InitPathMap: data.InitPathMap,
		LocMap:      data.LocMap.Blocks,
		InitLocMap:  data.InitLocMap.Blocks,
		Locals:      data.RevLookup.Locals,
		Errors:      errs,
	}
	s.Projections = make([]SnapshotProjection, 0, data.RevLookup.Len())
	data.RevLookup.Each(func(base MovePathIndex, elem mir.PlaceElem, child MovePathIndex) {
		s.Projections = append(s.Projections, SnapshotProjection{Base: base, Elem: elem, Child: child})
	})
	sort.Slice(s.Projections, func(i, j int) bool {
		return s.Projections[i].Child < s.Projections[j].Child
	})
	return s
}

// MoveData rebuilds the move data held by s.
func (s *Snapshot) MoveData() (*MoveData, error) {
	if s.Schema != SnapshotSchema {
		return nil, fmt.Errorf("snapshot schema %d, want %d", s.Schema, SnapshotSchema)
	}
	n := len(s.MovePaths)
	if len(s.PathMap) != n || len(s.InitPathMap) != n {
		return nil, fmt.Errorf("snapshot arenas disagree: %d paths, %d move lists, %d init lists",
			n, len(s.PathMap), len(s.InitPathMap))
	}
	lookup := newMovePathLookup(len(s.Locals))
	lookup.Locals = append(lookup.Locals, s.Locals...)
	for _, p := range s.Projections {
		if p.Child < 0 || int(p.Child) >= n {
			return nil, fmt.Errorf("snapshot projection points at mp%d of %d", p.Child, n)
		}
		lookup.projections[projKey{base: p.Base, elem: p.Elem}] = p.Child
	}
	return &MoveData{
		Moves:       s.Moves,
		MovePaths:   s.MovePaths,
		PathMap:     s.PathMap,
		RevLookup:   lookup,
		Inits:       s.Inits,
		LocMap:      LocationMap[MoveOutIndex]{Blocks: s.LocMap},
		InitLocMap:  LocationMap[InitIndex]{Blocks: s.InitLocMap},
		InitPathMap: s.InitPathMap,
	}, nil
}

// EncodeSnapshot writes data and errs to w as msgpack.
func EncodeSnapshot(w io.Writer, body string, data *MoveData, errs []PlaceError) error {
	return msgpack.NewEncoder(w).Encode(NewSnapshot(body, data, errs))
}

// DecodeSnapshot reads a snapshot written by EncodeSnapshot.
func DecodeSnapshot(r io.Reader) (*MoveData, []PlaceError, error) {
	var s Snapshot
	if err := msgpack.NewDecoder(r).Decode(&s); err != nil {
		return nil, nil, fmt.Errorf("decode snapshot: %w", err)
	}
	data, err := s.MoveData()
	if err != nil {
		return nil, nil, err
	}
	return data, s.Errors, nil
}
