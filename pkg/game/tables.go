package game

import "fmt"

// Tables holds the precomputed placement and adjacency data the rules
// consume. It is read-only once built by NewTables.
type Tables struct {
	// Lookup[i] lists every placement mask that covers cell i.
	Lookup [Cells][]Mask
	// Adjacency[i] is the set of orthogonal toroidal neighbours of cell i.
	Adjacency [Cells]Mask

	placements map[Mask]struct{}
}

// NewTables validates lookup and adjacency and indexes the placement set.
func NewTables(lookup [Cells][]Mask, adjacency [Cells]Mask) (*Tables, error) {
	t := &Tables{
		Adjacency:  adjacency,
		placements: make(map[Mask]struct{}),
	}
	for i, masks := range lookup {
		if len(masks) == 0 {
			return nil, fmt.Errorf("lookup table: cell %d has no placements", i)
		}
		seen := make(map[Mask]bool, len(masks))
		for _, m := range masks {
			if seen[m] {
				continue
			}
			seen[m] = true
			t.Lookup[i] = append(t.Lookup[i], m)
			if m.Count() != PieceCells {
				return nil, fmt.Errorf("lookup table: cell %d: placement %s has %d cells", i, m, m.Count())
			}
			if !m.Has(i) {
				return nil, fmt.Errorf("lookup table: cell %d: placement %s does not cover the cell", i, m)
			}
			t.placements[m] = struct{}{}
		}
	}
	for i, adj := range adjacency {
		if adj.IsZero() || adj.Has(i) {
			return nil, fmt.Errorf("adjacency table: cell %d has invalid neighbours %s", i, adj)
		}
	}
	return t, nil
}

// IsPlacement reports whether m is one of the catalogued placements.
func (t *Tables) IsPlacement(m Mask) bool {
	_, ok := t.placements[m]
	return ok
}

// Placements returns the number of distinct placements.
func (t *Tables) Placements() int {
	return len(t.placements)
}

// Neighbours returns the union of the neighbours of every cell in m.
func (t *Tables) Neighbours(m Mask) Mask {
	var out Mask
	m.Each(func(i int) { out = out.Or(t.Adjacency[i]) })
	return out
}
