package tables

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/montplusa/tetress/pkg/game"
)

// Export is the serialised form of the tables, keyed by cell index.
type Export struct {
	Placements int                 `json:"placements"`
	Lookup     map[int][]game.Mask `json:"lookup_table"`
	Adjacency  map[int]game.Mask   `json:"adjacency_table"`
}

// NewExport copies t into its serialised form.
func NewExport(t *game.Tables) Export {
	e := Export{
		Placements: t.Placements(),
		Lookup:     make(map[int][]game.Mask, game.Cells),
		Adjacency:  make(map[int]game.Mask, game.Cells),
	}
	for i := 0; i < game.Cells; i++ {
		e.Lookup[i] = append([]game.Mask(nil), t.Lookup[i]...)
		e.Adjacency[i] = t.Adjacency[i]
	}
	return e
}

// Write encodes t as indented JSON.
func Write(w io.Writer, t *game.Tables) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewExport(t)); err != nil {
		return fmt.Errorf("encode tables: %w", err)
	}
	return nil
}

// Read decodes tables written by Write and validates them.
func Read(r io.Reader) (*game.Tables, error) {
	var e Export
	if err := json.NewDecoder(r).Decode(&e); err != nil {
		return nil, fmt.Errorf("decode tables: %w", err)
	}
	var (
		lookup    [game.Cells][]game.Mask
		adjacency [game.Cells]game.Mask
	)
	for i := 0; i < game.Cells; i++ {
		lookup[i] = e.Lookup[i]
		adjacency[i] = e.Adjacency[i]
	}
	return game.NewTables(lookup, adjacency)
}
