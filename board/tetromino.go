package board

import (
	"fmt"
	"slices"
	"strings"
)

// A Tetromino is a set of four distinct cells placed as one move. The cells
// are kept sorted so that two tetrominoes covering the same cells are equal
// under == and can be used as map keys.
type Tetromino struct {
	cells [4]Coord
}

func sortCells(cs *[4]Coord) {
	for i := 1; i < len(cs); i++ {
		for j := i; j > 0 && cs[j].Less(cs[j-1]); j-- {
			cs[j], cs[j-1] = cs[j-1], cs[j]
		}
	}
}

func makeTetromino(cs [4]Coord) Tetromino {
	sortCells(&cs)
	return Tetromino{cells: cs}
}

// NewTetromino builds a tetromino from four cells given in any order.
func NewTetromino(c1, c2, c3, c4 Coord) (Tetromino, error) {
	t := makeTetromino([4]Coord{c1, c2, c3, c4})
	for i := 1; i < len(t.cells); i++ {
		if t.cells[i] == t.cells[i-1] {
			return Tetromino{}, fmt.Errorf("%w: cell %v repeated", ErrInvalidTetromino, t.cells[i])
		}
	}
	return t, nil
}

// ParseTetromino parses four r-c coordinates, e.g. "2-3 2-4 2-5 2-6".
// Commas between the coordinates are accepted.
func ParseTetromino(g Grid, s string) (Tetromino, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t'
	})
	if len(fields) != 4 {
		return Tetromino{}, fmt.Errorf("%w: need 4 coordinates, got %d", ErrInvalidTetromino, len(fields))
	}
	var cs [4]Coord
	for i, f := range fields {
		c, err := ParseCoord(f)
		if err != nil {
			return Tetromino{}, err
		}
		if cs[i], err = g.Coord(c.Row, c.Col); err != nil {
			return Tetromino{}, err
		}
	}
	return NewTetromino(cs[0], cs[1], cs[2], cs[3])
}

// Coords returns the four cells in row-major order.
func (t Tetromino) Coords() [4]Coord {
	return t.cells
}

func (t Tetromino) Contains(c Coord) bool {
	return t.cells[0] == c || t.cells[1] == c || t.cells[2] == c || t.cells[3] == c
}

// Less orders tetrominoes by their sorted cells. It is the canonical order
// legal moves are listed in.
func (t Tetromino) Less(o Tetromino) bool {
	return compareTetrominoes(t, o) < 0
}

func compareCoords(a, b Coord) int {
	if a.Less(b) {
		return -1
	}
	if b.Less(a) {
		return 1
	}
	return 0
}

func compareTetrominoes(a, b Tetromino) int {
	for i := range a.cells {
		if c := compareCoords(a.cells[i], b.cells[i]); c != 0 {
			return c
		}
	}
	return 0
}

func (t Tetromino) String() string {
	return fmt.Sprintf("%v %v %v %v", t.cells[0], t.cells[1], t.cells[2], t.cells[3])
}

// A Shape is one fixed orientation of a tetromino. Offsets are (row, col)
// pairs relative to the shape's top-left bounding corner.
type Shape struct {
	Name    string
	Offsets [4][2]int
}

// Shapes is the template library: the seven tetrominoes in every distinct
// rotation and reflection.
var Shapes = []Shape{
	{"I-vertical", [4][2]int{{0, 0}, {1, 0}, {2, 0}, {3, 0}}},
	{"I-horizontal", [4][2]int{{0, 0}, {0, 1}, {0, 2}, {0, 3}}},
	{"O", [4][2]int{{0, 0}, {0, 1}, {1, 0}, {1, 1}}},
	{"T-up", [4][2]int{{0, 1}, {1, 0}, {1, 1}, {1, 2}}},
	{"T-down", [4][2]int{{0, 0}, {0, 1}, {0, 2}, {1, 1}}},
	{"T-left", [4][2]int{{0, 1}, {1, 0}, {1, 1}, {2, 1}}},
	{"T-right", [4][2]int{{0, 0}, {1, 0}, {1, 1}, {2, 0}}},
	{"J-up", [4][2]int{{0, 1}, {1, 1}, {2, 0}, {2, 1}}},
	{"J-down", [4][2]int{{0, 0}, {0, 1}, {1, 0}, {2, 0}}},
	{"J-left", [4][2]int{{0, 0}, {1, 0}, {1, 1}, {1, 2}}},
	{"J-right", [4][2]int{{0, 0}, {0, 1}, {0, 2}, {1, 2}}},
	{"L-up", [4][2]int{{0, 0}, {1, 0}, {2, 0}, {2, 1}}},
	{"L-down", [4][2]int{{0, 0}, {0, 1}, {1, 1}, {2, 1}}},
	{"L-left", [4][2]int{{0, 2}, {1, 0}, {1, 1}, {1, 2}}},
	{"L-right", [4][2]int{{0, 0}, {0, 1}, {0, 2}, {1, 0}}},
	{"Z-horizontal", [4][2]int{{0, 0}, {0, 1}, {1, 1}, {1, 2}}},
	{"Z-vertical", [4][2]int{{0, 1}, {1, 0}, {1, 1}, {2, 0}}},
	{"S-horizontal", [4][2]int{{0, 1}, {0, 2}, {1, 0}, {1, 1}}},
	{"S-vertical", [4][2]int{{0, 0}, {1, 0}, {1, 1}, {2, 1}}},
}

// anchoredOffsets holds, for every shape and every cell of that shape, the
// offsets of all four cells relative to that cell. Translating one entry
// onto an anchor yields a placement covering the anchor.
var anchoredOffsets [][4][2]int

func init() {
	for _, s := range Shapes {
		for _, ref := range s.Offsets {
			var rel [4][2]int
			for i, o := range s.Offsets {
				rel[i] = [2]int{o[0] - ref[0], o[1] - ref[1]}
			}
			anchoredOffsets = append(anchoredOffsets, rel)
		}
	}
}

// AllPlacementsAt returns every placement of every shape that covers
// anchor. The order is the same on every call. No legality checks are made.
func (g Grid) AllPlacementsAt(anchor Coord) []Tetromino {
	ts := make([]Tetromino, 0, len(anchoredOffsets))
	seen := make(map[Tetromino]struct{}, len(anchoredOffsets))
	g.forEachPlacementAt(anchor, func(t Tetromino) {
		if _, ok := seen[t]; ok {
			return
		}
		seen[t] = struct{}{}
		ts = append(ts, t)
	})
	return ts
}

// forEachPlacementAt is AllPlacementsAt without the allocation. fn may see
// the same placement more than once on very small grids.
func (g Grid) forEachPlacementAt(anchor Coord, fn func(Tetromino)) {
	for _, rel := range anchoredOffsets {
		var cs [4]Coord
		for i, o := range rel {
			cs[i] = g.Translate(anchor, o[0], o[1])
		}
		fn(makeTetromino(cs))
	}
}

// AdjacentCoordinates returns the cells next to any cell of t, not
// including t's own cells, in row-major order.
func (g Grid) AdjacentCoordinates(t Tetromino) []Coord {
	adj := make([]Coord, 0, 10)
	for _, c := range t.cells {
		for _, n := range g.Neighbors(c) {
			if t.Contains(n) || slices.Contains(adj, n) {
				continue
			}
			adj = append(adj, n)
		}
	}
	slices.SortFunc(adj, compareCoords)
	return adj
}
