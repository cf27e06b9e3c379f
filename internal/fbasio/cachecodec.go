package fbasio

import (
	"github.com/trudi-group/fbas-analyzer-go/internal/nodeset"
)

// ToUint32Sets converts shrunk-or-not node sets into the [][]uint32 shape
// the bbolt cache persists, since cache.Result must stay free of any
// dependency on the fbas/nodeset packages (it is a pure storage schema).
func ToUint32Sets(sets []nodeset.Set) [][]uint32 {
	out := make([][]uint32, len(sets))
	for i, s := range sets {
		ids := s.Slice()
		row := make([]uint32, len(ids))
		for j, id := range ids {
			row[j] = uint32(id)
		}
		out[i] = row
	}
	return out
}

// FromUint32Sets is the inverse of ToUint32Sets.
func FromUint32Sets(rows [][]uint32) []nodeset.Set {
	out := make([]nodeset.Set, len(rows))
	for i, row := range rows {
		s := nodeset.New()
		for _, id := range row {
			s.Add(nodeset.NodeID(id))
		}
		out[i] = s
	}
	return out
}
