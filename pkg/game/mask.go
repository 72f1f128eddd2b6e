package game

import (
	"fmt"
	"math/bits"
	"strings"
)

const (
	// Size は盤面の一辺
	Size = 11
	// Cells は盤面のマス数
	Cells = Size * Size
)

// Mask is a 121-bit cell set. Bit i lives in lo for i < 64 and in hi otherwise.
type Mask struct {
	lo, hi uint64
}

// Bit returns the mask holding only cell i.
func Bit(i int) Mask {
	if i < 64 {
		return Mask{lo: 1 << uint(i)}
	}
	return Mask{hi: 1 << uint(i-64)}
}

// MaskOf returns the mask holding the given cells.
func MaskOf(cells ...int) Mask {
	var m Mask
	for _, c := range cells {
		m = m.With(c)
	}
	return m
}

// CellIndex maps a toroidal (row, col) pair to its cell index.
func CellIndex(r, c int) int {
	return wrap(r)*Size + wrap(c)
}

func wrap(v int) int {
	return ((v % Size) + Size) % Size
}

func (m Mask) Or(o Mask) Mask     { return Mask{m.lo | o.lo, m.hi | o.hi} }
func (m Mask) And(o Mask) Mask    { return Mask{m.lo & o.lo, m.hi & o.hi} }
func (m Mask) AndNot(o Mask) Mask { return Mask{m.lo &^ o.lo, m.hi &^ o.hi} }

// Intersects reports whether m and o share a cell.
func (m Mask) Intersects(o Mask) bool {
	return m.lo&o.lo != 0 || m.hi&o.hi != 0
}

// Covers reports whether every cell of o is in m.
func (m Mask) Covers(o Mask) bool {
	return m.lo&o.lo == o.lo && m.hi&o.hi == o.hi
}

func (m Mask) IsZero() bool { return m.lo == 0 && m.hi == 0 }

// Count returns the number of cells set.
func (m Mask) Count() int {
	return bits.OnesCount64(m.lo) + bits.OnesCount64(m.hi)
}

// Has reports whether cell i is set.
func (m Mask) Has(i int) bool {
	if i < 0 || i >= Cells {
		return false
	}
	if i < 64 {
		return m.lo&(1<<uint(i)) != 0
	}
	return m.hi&(1<<uint(i-64)) != 0
}

// With returns m with cell i set.
func (m Mask) With(i int) Mask {
	return m.Or(Bit(i))
}

// Cells returns the set cell indices in ascending order.
func (m Mask) Cells() []int {
	out := make([]int, 0, m.Count())
	m.Each(func(i int) { out = append(out, i) })
	return out
}

// Each calls fn for every set cell in ascending order.
func (m Mask) Each(fn func(i int)) {
	for w := m.lo; w != 0; w &= w - 1 {
		fn(bits.TrailingZeros64(w))
	}
	for w := m.hi; w != 0; w &= w - 1 {
		fn(64 + bits.TrailingZeros64(w))
	}
}

// Any reports whether fn holds for some set cell, stopping at the first.
func (m Mask) Any(fn func(i int) bool) bool {
	for w := m.lo; w != 0; w &= w - 1 {
		if fn(bits.TrailingZeros64(w)) {
			return true
		}
	}
	for w := m.hi; w != 0; w &= w - 1 {
		if fn(64 + bits.TrailingZeros64(w)) {
			return true
		}
	}
	return false
}

// String renders the mask as a 121-digit binary number, most significant cell first.
func (m Mask) String() string {
	var sb strings.Builder
	sb.Grow(Cells)
	for i := Cells - 1; i >= 0; i-- {
		if m.Has(i) {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return strings.TrimLeft(sb.String(), "0")
}

// ParseMask parses the binary form produced by String.
func ParseMask(s string) (Mask, error) {
	var m Mask
	if len(s) > Cells {
		return m, fmt.Errorf("mask %q: more than %d digits", s, Cells)
	}
	for k := 0; k < len(s); k++ {
		cell := len(s) - 1 - k
		switch s[k] {
		case '1':
			m = m.With(cell)
		case '0':
		default:
			return Mask{}, fmt.Errorf("mask %q: invalid digit %q", s, s[k])
		}
	}
	return m, nil
}

// MarshalText encodes the mask in its binary string form.
func (m Mask) MarshalText() ([]byte, error) {
	s := m.String()
	if s == "" {
		s = "0"
	}
	return []byte(s), nil
}

// UnmarshalText decodes the binary string form.
func (m *Mask) UnmarshalText(b []byte) error {
	v, err := ParseMask(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// lines は行・列の22本の消去判定用マスク
var (
	lines = buildLines()
	full  = buildFull()
)

func buildFull() Mask {
	var m Mask
	for i := 0; i < Cells; i++ {
		m = m.With(i)
	}
	return m
}

// Full returns the mask of every cell on the board.
func Full() Mask {
	return full
}

func buildLines() [2 * Size]Mask {
	var out [2 * Size]Mask
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			out[r] = out[r].With(r*Size + c)
			out[Size+c] = out[Size+c].With(r*Size + c)
		}
	}
	return out
}

// Lines returns the 11 row masks followed by the 11 column masks.
func Lines() [2 * Size]Mask {
	return lines
}
