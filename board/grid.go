package board

import (
	"fmt"
	"strconv"
	"strings"
)

// A Coord is a cell on the board. Rows and columns are in [0, N) for the
// grid that produced the coordinate.
type Coord struct {
	Row int
	Col int
}

func (c Coord) String() string {
	return strconv.Itoa(c.Row) + "-" + strconv.Itoa(c.Col)
}

// Less orders coordinates by row, then column.
func (c Coord) Less(o Coord) bool {
	if c.Row != o.Row {
		return c.Row < o.Row
	}
	return c.Col < o.Col
}

// ParseCoord parses the r-c form used by the referee, e.g. "3-10".
func ParseCoord(s string) (Coord, error) {
	r, c, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok {
		return Coord{}, fmt.Errorf("%w: %q is not of the form r-c", ErrCoordOutOfRange, s)
	}
	row, err := strconv.Atoi(r)
	if err != nil {
		return Coord{}, fmt.Errorf("bad row in %q: %w", s, err)
	}
	col, err := strconv.Atoi(c)
	if err != nil {
		return Coord{}, fmt.Errorf("bad column in %q: %w", s, err)
	}
	return Coord{Row: row, Col: col}, nil
}

// A Grid is the N x N torus the game is played on. Moving off one edge
// wraps around to the opposite edge.
type Grid struct {
	n int
}

// MinGridSize is the smallest board a straight tetromino fits on without
// overlapping itself after wrapping.
const MinGridSize = 4

func NewGrid(n int) (Grid, error) {
	if n < MinGridSize {
		return Grid{}, fmt.Errorf("grid size %d is smaller than %d", n, MinGridSize)
	}
	return Grid{n: n}, nil
}

// Dim returns the side length N.
func (g Grid) Dim() int {
	return g.n
}

func (g Grid) Contains(c Coord) bool {
	return c.Row >= 0 && c.Row < g.n && c.Col >= 0 && c.Col < g.n
}

// Coord builds a coordinate, failing if it lies outside the grid.
func (g Grid) Coord(row, col int) (Coord, error) {
	c := Coord{Row: row, Col: col}
	if !g.Contains(c) {
		return Coord{}, fmt.Errorf("%w: %v on a %dx%d grid", ErrCoordOutOfRange, c, g.n, g.n)
	}
	return c, nil
}

// MustCoord is Coord for callers that already know the values are in range.
func (g Grid) MustCoord(row, col int) Coord {
	c, err := g.Coord(row, col)
	if err != nil {
		panic(err)
	}
	return c
}

func (g Grid) wrap(x int) int {
	x %= g.n
	if x < 0 {
		x += g.n
	}
	return x
}

// Translate moves c by (dr, dc), wrapping at the edges.
func (g Grid) Translate(c Coord, dr, dc int) Coord {
	return Coord{Row: g.wrap(c.Row + dr), Col: g.wrap(c.Col + dc)}
}

// Neighbors returns the cells above, below, left and right of c.
func (g Grid) Neighbors(c Coord) [4]Coord {
	return [4]Coord{
		g.Translate(c, -1, 0),
		g.Translate(c, 1, 0),
		g.Translate(c, 0, -1),
		g.Translate(c, 0, 1),
	}
}

// Adjacent reports whether a and b differ by one step along exactly one axis.
func (g Grid) Adjacent(a, b Coord) bool {
	for _, n := range g.Neighbors(a) {
		if n == b {
			return true
		}
	}
	return false
}

// Index maps c to its position in a row-major slice of N*N squares.
func (g Grid) Index(c Coord) int {
	return c.Row*g.n + c.Col
}

func (g Grid) CoordAt(idx int) Coord {
	return Coord{Row: idx / g.n, Col: idx % g.n}
}

func (g Grid) RowCoords(row int) []Coord {
	cs := make([]Coord, g.n)
	for col := range g.n {
		cs[col] = Coord{Row: row, Col: col}
	}
	return cs
}

func (g Grid) ColCoords(col int) []Coord {
	cs := make([]Coord, g.n)
	for row := range g.n {
		cs[row] = Coord{Row: row, Col: col}
	}
	return cs
}
