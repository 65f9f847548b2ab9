// Package board holds the game state for Tetress: a toroidal grid, the
// tetromino templates, per-line occupancy counts and the cached sets of
// legal placements for both players.
package board

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

// Rules are the fixed parameters of a game.
type Rules struct {
	Size     int
	MaxTurns int
}

var DefaultRules = Rules{Size: 11, MaxTurns: 150}

type square uint8

const (
	emptySquare square = iota
	redSquare
	blueSquare
)

func squareFor(p Player) square {
	return square(p) + 1
}

func (s square) player() Player {
	return Player(s - 1)
}

// Board is the mutable state of one game. The legal-move caches are derived
// from the squares and are rebuilt after every placement. A rebuilt cache
// replaces the old one and is never modified afterwards, so copies of a
// board can share caches.
type Board struct {
	rules   Rules
	grid    Grid
	squares []square
	turn    int
	tokens  [2]int
	opened  [2]bool

	legal    [2][]Tetromino
	legalSet [2]map[Tetromino]struct{}

	counter *LineCounter
}

// NewBoard returns an empty board at turn 0. Every call allocates its own
// state.
func NewBoard(rules Rules) (*Board, error) {
	g, err := NewGrid(rules.Size)
	if err != nil {
		return nil, err
	}
	if rules.MaxTurns <= 0 {
		return nil, errors.New("max turns must be positive")
	}
	b := &Board{
		rules:   rules,
		grid:    g,
		squares: make([]square, rules.Size*rules.Size),
		counter: NewLineCounter(rules.Size),
	}
	b.recalculateLegalMoves()
	return b, nil
}

func (b *Board) Rules() Rules {
	return b.rules
}

func (b *Board) Grid() Grid {
	return b.grid
}

// Turn is the number of placements made so far.
func (b *Board) Turn() int {
	return b.turn
}

// PlayerOnTurn is the side whose placement comes next.
func (b *Board) PlayerOnTurn() Player {
	return PlayerOnTurn(b.turn)
}

func (b *Board) TokenCount(p Player) int {
	return b.tokens[p]
}

// Opened reports whether p has made their first placement.
func (b *Board) Opened(p Player) bool {
	return b.opened[p]
}

// Owner returns the player holding c, if any.
func (b *Board) Owner(c Coord) (Player, bool) {
	sq := b.squares[b.grid.Index(c)]
	if sq == emptySquare {
		return Red, false
	}
	return sq.player(), true
}

func (b *Board) IsEmpty(c Coord) bool {
	return b.squares[b.grid.Index(c)] == emptySquare
}

// Occupied returns the number of cells holding a token.
func (b *Board) Occupied() int {
	return b.tokens[Red] + b.tokens[Blue]
}

// ForEachToken calls fn for every occupied cell in row-major order.
func (b *Board) ForEachToken(fn func(c Coord, p Player)) {
	for idx, sq := range b.squares {
		if sq != emptySquare {
			fn(b.grid.CoordAt(idx), sq.player())
		}
	}
}

// LineCounts returns copies of the per-row and per-column occupancy counts.
func (b *Board) LineCounts() ([]int, []int) {
	return b.counter.Rows(), b.counter.Cols()
}

// LegalMoves returns p's legal placements in canonical order. The slice is
// shared with the board and must not be modified.
func (b *Board) LegalMoves(p Player) []Tetromino {
	return b.legal[p]
}

func (b *Board) NumLegalMoves(p Player) int {
	return len(b.legal[p])
}

func (b *Board) IsLegal(t Tetromino, p Player) bool {
	_, ok := b.legalSet[p][t]
	return ok
}

func (b *Board) IsMaxTurnReached() bool {
	return b.turn == b.rules.MaxTurns
}

// Score evaluates the board from p's point of view. At the turn limit the
// token tally decides: +Inf for a win, -Inf for a loss, 0 for a draw.
// Otherwise a side with no legal placement is treated as lost, which is an
// approximation: the stalled side only loses if it is also on turn.
// Everything else scores the difference in mobility.
func (b *Board) Score(p Player) float64 {
	opp := p.Opponent()
	if b.IsMaxTurnReached() {
		switch {
		case b.tokens[p] > b.tokens[opp]:
			return math.Inf(1)
		case b.tokens[p] < b.tokens[opp]:
			return math.Inf(-1)
		}
		return 0
	}
	if len(b.legal[p]) == 0 {
		return math.Inf(-1)
	}
	if len(b.legal[opp]) == 0 {
		return math.Inf(1)
	}
	return float64(len(b.legal[p]) - len(b.legal[opp]))
}

// Copy returns an independent board with the same state.
func (b *Board) Copy() *Board {
	nb := *b
	nb.squares = slices.Clone(b.squares)
	nb.counter = b.counter.Copy()
	return &nb
}

// Place returns a new board with t placed for p, leaving b unchanged.
func (b *Board) Place(t Tetromino, p Player) (*Board, error) {
	nb := b.Copy()
	if err := nb.PlaceInPlace(t, p); err != nil {
		return nil, err
	}
	return nb, nil
}

// PlaceInPlace places t for p, clears any completed rows and columns, and
// rebuilds both players' legal moves. On ErrIllegalPlacement the board is
// left untouched.
func (b *Board) PlaceInPlace(t Tetromino, p Player) error {
	if p != Red && p != Blue {
		return fmt.Errorf("%w: unknown player %v", ErrIllegalPlacement, p)
	}
	if b.IsMaxTurnReached() {
		return fmt.Errorf("%w: turn limit %d reached", ErrIllegalPlacement, b.rules.MaxTurns)
	}
	for i, c := range t.cells {
		// cells are sorted, so a repeat sits next to its twin
		if i > 0 && c == t.cells[i-1] {
			return fmt.Errorf("%w: %w: cell %v repeated", ErrIllegalPlacement, ErrInvalidTetromino, c)
		}
		if !b.grid.Contains(c) {
			return fmt.Errorf("%w: %v is off the board", ErrIllegalPlacement, c)
		}
		if sq := b.squares[b.grid.Index(c)]; sq != emptySquare {
			return fmt.Errorf("%w: %v is occupied by %v", ErrIllegalPlacement, c, sq.player())
		}
	}

	rows, cols, err := b.counter.ApplyPlacement(t)
	if err != nil {
		return err
	}
	for _, c := range t.cells {
		b.squares[b.grid.Index(c)] = squareFor(p)
	}
	b.tokens[p] += len(t.cells)
	b.turn++
	b.opened[p] = true

	if len(rows) > 0 || len(cols) > 0 {
		if err := b.removeLines(rows, cols); err != nil {
			return err
		}
		b.counter.ClearLines(rows, cols)
		log.Debug().Ints("rows", rows).Ints("cols", cols).Int("turn", b.turn).
			Msg("lines-cleared")
	}
	b.recalculateLegalMoves()
	return nil
}

func (b *Board) removeLines(rows, cols []int) error {
	clearedRow := make([]bool, b.rules.Size)
	for _, r := range rows {
		clearedRow[r] = true
		for _, c := range b.grid.RowCoords(r) {
			if err := b.removeToken(c); err != nil {
				return err
			}
		}
	}
	for _, col := range cols {
		for _, c := range b.grid.ColCoords(col) {
			if clearedRow[c.Row] {
				// Already removed with its row.
				continue
			}
			if err := b.removeToken(c); err != nil {
				return err
			}
		}
	}
	return nil
}

func (b *Board) removeToken(c Coord) error {
	idx := b.grid.Index(c)
	sq := b.squares[idx]
	if sq == emptySquare {
		return fmt.Errorf("%w: clearing empty cell %v", ErrInvariantViolation, c)
	}
	b.tokens[sq.player()]--
	b.squares[idx] = emptySquare
	return nil
}

func (b *Board) recalculateLegalMoves() {
	for _, p := range Players {
		b.legalSet[p], b.legal[p] = b.findLegalMoves(p)
	}
}

// findLegalMoves scans the whole board. A placement is legal if its cells
// are all empty and, once p has opened, at least one of them touches a
// token of p's. Every such placement covers an empty cell next to one of
// p's tokens, so only those cells need to be used as anchors.
func (b *Board) findLegalMoves(p Player) (map[Tetromino]struct{}, []Tetromino) {
	set := make(map[Tetromino]struct{})
	for idx, sq := range b.squares {
		if sq != emptySquare {
			continue
		}
		anchor := b.grid.CoordAt(idx)
		if b.opened[p] && !b.hasAdjacentToken(anchor, p) {
			continue
		}
		b.grid.forEachPlacementAt(anchor, func(t Tetromino) {
			if _, ok := set[t]; ok {
				return
			}
			if b.allEmpty(t) {
				set[t] = struct{}{}
			}
		})
	}
	moves := lo.Keys(set)
	slices.SortFunc(moves, compareTetrominoes)
	return set, moves
}

func (b *Board) hasAdjacentToken(c Coord, p Player) bool {
	want := squareFor(p)
	for _, n := range b.grid.Neighbors(c) {
		if b.squares[b.grid.Index(n)] == want {
			return true
		}
	}
	return false
}

func (b *Board) allEmpty(t Tetromino) bool {
	for _, c := range t.cells {
		if b.squares[b.grid.Index(c)] != emptySquare {
			return false
		}
	}
	return true
}
