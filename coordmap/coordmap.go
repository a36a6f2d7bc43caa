// Package coordmap maps query-sequence coordinates onto target-sequence
// coordinates through an alnmap file, ported from pgr-map-coordinate: for
// coordinates that land in a plain match block the map is an offset
// subtraction/addition, and for coordinates
// that land in a variant block the package re-aligns the block's target
// and query subsequences with package wfa and walks the resulting
// base-pair map.
package coordmap

import (
	"sort"

	"github.com/biogo/store/interval"

	"github.com/zhengxinchang/pgr-go/alnmap"
	"github.com/zhengxinchang/pgr-go/wfa"
)

// Block is one alignment-map record reduced to the fields coordinate
// lookup needs.
type Block struct {
	AlnBlockID  int
	Type        alnmap.Type
	TargetName  string
	TS, TE      uint32
	QueryName   string
	QS, QE      uint32
	Orientation uint8
}

func blockFromRecord(rec alnmap.Record) Block {
	return Block{
		AlnBlockID: rec.AlnBlockID, Type: rec.Type,
		TargetName: rec.TargetName, TS: rec.TS, TE: rec.TE,
		QueryName: rec.QueryName, QS: rec.QS, QE: rec.QE,
		Orientation: rec.Orientation,
	}
}

type blockNode struct {
	id uintptr
	b  Block
}

func (n blockNode) ID() uintptr { return n.id }
func (n blockNode) Range() interval.IntRange {
	return interval.IntRange{Start: int(n.b.QS), End: int(n.b.QE)}
}
func (n blockNode) Overlap(r interval.IntRange) bool {
	return int(n.b.QS) < r.End && r.Start < int(n.b.QE)
}

// Index is a per-query-sequence interval index of alignment blocks,
// letting Overlapping find every block covering a query coordinate.
type Index struct {
	trees map[string]*interval.IntTree
}

// BuildIndex indexes every M*/V* record of an alnmap stream by its query
// span, one interval tree per query sequence name.
func BuildIndex(records []alnmap.Record) *Index {
	byQuery := map[string][]Block{}
	for _, rec := range records {
		if rec.Type.IsMatch() || rec.Type.IsVariant() {
			byQuery[rec.QueryName] = append(byQuery[rec.QueryName], blockFromRecord(rec))
		}
	}
	idx := &Index{trees: make(map[string]*interval.IntTree, len(byQuery))}
	for qname, blocks := range byQuery {
		tree := &interval.IntTree{}
		for i, b := range blocks {
			if err := tree.Insert(blockNode{id: uintptr(i), b: b}, false); err != nil {
				panic("coordmap: inserting into interval tree: " + err.Error())
			}
		}
		tree.AdjustRanges()
		idx.trees[qname] = tree
	}
	return idx
}

// Overlapping returns every indexed block whose query span covers
// coordinate qPos on query sequence qName.
func (idx *Index) Overlapping(qName string, qPos uint32) []Block {
	tree, ok := idx.trees[qName]
	if !ok {
		return nil
	}
	hits := tree.Get(blockNode{b: Block{QS: qPos, QE: qPos + 1}})
	blocks := make([]Block, len(hits))
	for i, h := range hits {
		blocks[i] = h.(blockNode).b
	}
	return blocks
}

// SequenceSource supplies the target and query subsequences a variant
// block's re-alignment needs. It is satisfied by grailbio-bio's
// encoding/fasta.Fasta.
type SequenceSource interface {
	Get(seqName string, start, end uint64) (string, error)
}

// Mapping is one coordinate's result against one overlapping block.
type Mapping struct {
	QueryName   string
	QueryPos    uint32
	TargetName  string
	TargetPos   uint32
	HasTarget   bool
	Orientation uint8
	Type        alnmap.Type
}

// VariantPosCache memoizes a variant block's query-position-to-target-
// position map across repeated coordinate lookups against the same block,
// mirroring the reference tool's cached_map.
type VariantPosCache struct {
	target, query SequenceSource
	cache         map[Block]map[uint32]uint32
}

func (c *VariantPosCache) get(b Block) map[uint32]uint32 {
	if m, ok := c.cache[b]; ok {
		return m
	}
	m := c.build(b)
	c.cache[b] = m
	return m
}

func (c *VariantPosCache) build(b Block) map[uint32]uint32 {
	tSeq, err := c.target.Get(b.TargetName, uint64(b.TS), uint64(b.TE))
	if err != nil {
		return nil
	}
	qSeq, err := c.query.Get(b.QueryName, uint64(b.QS), uint64(b.QE))
	if err != nil {
		return nil
	}
	qBytes := []byte(qSeq)
	if b.Orientation != 0 {
		qBytes = reverseComplement(qBytes)
	}
	alnT, alnQ, ok := wfa.AlignBases([]byte(tSeq), qBytes, 384, 4, 4, 1)
	if !ok {
		return nil
	}
	m := map[uint32]uint32{}
	for _, pair := range wfa.AlnPairMap(alnT, alnQ) {
		if _, seen := m[pair.QPos]; !seen {
			m[pair.QPos] = pair.TPos
		}
	}
	return m
}

// MapCoordinate maps one query coordinate through every block the index
// says overlaps it, following the reference tool's per-block-type
// dispatch: M blocks map by straight offset arithmetic (flipped for
// reverse orientation), V blocks re-align and consult the base-pair map,
// and any other block type (S*) reports a target-less hit so its presence
// is still visible to the caller.
func MapCoordinate(blocks []Block, qName string, qPos uint32, cache *VariantPosCache) []Mapping {
	mappings := make([]Mapping, 0, len(blocks))
	for _, b := range blocks {
		m := Mapping{QueryName: qName, QueryPos: qPos, TargetName: b.TargetName, Orientation: b.Orientation, Type: b.Type}
		switch {
		case b.Type.IsMatch():
			if b.Orientation == 0 {
				m.TargetPos = qPos - b.QS + b.TS
			} else {
				m.TargetPos = (b.QE - qPos) + b.TS
			}
			m.HasTarget = true
		case b.Type.IsVariant():
			posMap := cache.get(b)
			var qRel uint32
			if b.Orientation == 0 {
				qRel = qPos - b.QS
			} else {
				qRel = b.QE - qPos
			}
			if posMap != nil {
				if tRel, ok := posMap[qRel]; ok {
					m.TargetPos = tRel + b.TS
					m.HasTarget = true
				}
			}
		}
		mappings = append(mappings, m)
	}
	return mappings
}

// NewVariantPosCache creates a memoized re-alignment cache so callers (the
// cmd binary) can share one cache across every coordinate lookup in a run.
func NewVariantPosCache(target, query SequenceSource) *VariantPosCache {
	return &VariantPosCache{target: target, query: query, cache: map[Block]map[uint32]uint32{}}
}

func reverseComplement(seq []byte) []byte {
	out := make([]byte, len(seq))
	for i, b := range seq {
		out[len(seq)-1-i] = complementBase(b)
	}
	return out
}

func complementBase(b byte) byte {
	switch b {
	case 'A':
		return 'T'
	case 'a':
		return 't'
	case 'C':
		return 'G'
	case 'c':
		return 'g'
	case 'G':
		return 'C'
	case 'g':
		return 'c'
	case 'T':
		return 'A'
	case 't':
		return 'a'
	default:
		return 'N'
	}
}

// SortedUint32 sorts a slice of query coordinates ascending, matching the
// reference tool's `q_coordiates.sort()` call before processing each
// query sequence's coordinate list.
func SortedUint32(vals []uint32) []uint32 {
	out := make([]uint32, len(vals))
	copy(out, vals)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
