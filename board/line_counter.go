package board

import "fmt"

// A LineCounter tracks how many occupied cells each row and column has, so
// that completed lines can be found without scanning the board.
type LineCounter struct {
	n    int
	rows []int
	cols []int
}

func NewLineCounter(n int) *LineCounter {
	return &LineCounter{
		n:    n,
		rows: make([]int, n),
		cols: make([]int, n),
	}
}

func (lc *LineCounter) Copy() *LineCounter {
	return &LineCounter{
		n:    lc.n,
		rows: append([]int(nil), lc.rows...),
		cols: append([]int(nil), lc.cols...),
	}
}

// ApplyPlacement counts the four cells of t and returns the rows and columns
// that are now full, in ascending order. If any count would exceed the
// board size nothing is changed and ErrInvariantViolation is returned; that
// can only happen if a cell is counted twice.
func (lc *LineCounter) ApplyPlacement(t Tetromino) ([]int, []int, error) {
	addRows := make(map[int]int, 4)
	addCols := make(map[int]int, 4)
	for _, c := range t.cells {
		addRows[c.Row]++
		addCols[c.Col]++
	}
	for r, k := range addRows {
		if lc.rows[r]+k > lc.n {
			return nil, nil, fmt.Errorf("%w: row %d would hold %d cells", ErrInvariantViolation, r, lc.rows[r]+k)
		}
	}
	for c, k := range addCols {
		if lc.cols[c]+k > lc.n {
			return nil, nil, fmt.Errorf("%w: column %d would hold %d cells", ErrInvariantViolation, c, lc.cols[c]+k)
		}
	}
	for r, k := range addRows {
		lc.rows[r] += k
	}
	for c, k := range addCols {
		lc.cols[c] += k
	}
	return lc.complete(lc.rows), lc.complete(lc.cols), nil
}

func (lc *LineCounter) complete(counts []int) []int {
	var full []int
	for i, ct := range counts {
		if ct == lc.n {
			full = append(full, i)
		}
	}
	return full
}

// ClearLines zeroes the given complete rows and columns. Every other row
// loses one cell per cleared column and every other column one cell per
// cleared row. The whole set of lines is applied at once so that cells at
// the crossing of a cleared row and a cleared column are only removed once.
func (lc *LineCounter) ClearLines(rows, cols []int) {
	if len(rows) == 0 && len(cols) == 0 {
		return
	}
	clearedRow := make([]bool, lc.n)
	clearedCol := make([]bool, lc.n)
	for _, r := range rows {
		clearedRow[r] = true
	}
	for _, c := range cols {
		clearedCol[c] = true
	}
	for r := range lc.rows {
		if clearedRow[r] {
			lc.rows[r] = 0
			continue
		}
		lc.rows[r] = max(lc.rows[r]-len(cols), 0)
	}
	for c := range lc.cols {
		if clearedCol[c] {
			lc.cols[c] = 0
			continue
		}
		lc.cols[c] = max(lc.cols[c]-len(rows), 0)
	}
}

// Row returns the number of occupied cells in row r.
func (lc *LineCounter) Row(r int) int {
	return lc.rows[r]
}

func (lc *LineCounter) Col(c int) int {
	return lc.cols[c]
}

// Rows returns a copy of the per-row counts.
func (lc *LineCounter) Rows() []int {
	return append([]int(nil), lc.rows...)
}

func (lc *LineCounter) Cols() []int {
	return append([]int(nil), lc.cols...)
}
