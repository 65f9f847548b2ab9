// Package ordering scores candidate placements so the search can try the
// most promising ones first. Nothing here changes a board or replaces the
// board score used at the leaves of the search.
package ordering

import (
	"fmt"
	"strings"

	"github.com/domino14/tetress/board"
)

// Metric selects how a candidate placement is scored.
type Metric int

const (
	// MetricNone keeps legal moves in canonical order.
	MetricNone Metric = iota
	// MetricOpponentAdjacency counts opponent tokens next to the placement.
	MetricOpponentAdjacency
	// MetricEmptyAdjacencyDifference compares how much empty space each side
	// touches after the placement.
	MetricEmptyAdjacencyDifference
	// MetricNotOwnAdjacency counts the cells next to the placement that are
	// empty or held by the opponent.
	MetricNotOwnAdjacency
)

var metricNames = map[Metric]string{
	MetricNone:                     "none",
	MetricOpponentAdjacency:        "opponent-adjacency",
	MetricEmptyAdjacencyDifference: "empty-adjacency-difference",
	MetricNotOwnAdjacency:          "not-own-adjacency",
}

func (m Metric) String() string {
	if s, ok := metricNames[m]; ok {
		return s
	}
	return fmt.Sprintf("metric(%d)", int(m))
}

func ParseMetric(s string) (Metric, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for m, name := range metricNames {
		if name == s {
			return m, nil
		}
	}
	return MetricNone, fmt.Errorf("unknown ordering metric %q", s)
}

// Desirability scores t for p under m. Higher is better.
func Desirability(b *board.Board, t board.Tetromino, p board.Player, m Metric) float64 {
	switch m {
	case MetricOpponentAdjacency:
		return float64(OpponentAdjacency(b, t, p))
	case MetricEmptyAdjacencyDifference:
		return float64(EmptyAdjacencyDifference(b, t, p))
	case MetricNotOwnAdjacency:
		return float64(NotOwnAdjacency(b, t, p))
	}
	return 0
}

// OpponentAdjacency is the number of cells next to t held by p's opponent.
func OpponentAdjacency(b *board.Board, t board.Tetromino, p board.Player) int {
	n := 0
	for _, c := range b.Grid().AdjacentCoordinates(t) {
		if owner, ok := b.Owner(c); ok && owner == p.Opponent() {
			n++
		}
	}
	return n
}

func NotOwnAdjacency(b *board.Board, t board.Tetromino, p board.Player) int {
	n := 0
	for _, c := range b.Grid().AdjacentCoordinates(t) {
		if owner, ok := b.Owner(c); !ok || owner != p {
			n++
		}
	}
	return n
}

// EmptyAdjacencyDifference pretends t has been placed for p (without
// clearing lines) and returns the number of distinct empty cells next to
// p's tokens minus the number next to the opponent's. It scans the whole
// board, so it costs far more than the other metrics.
func EmptyAdjacencyDifference(b *board.Board, t board.Tetromino, p board.Player) int {
	g := b.Grid()
	ownerAt := func(c board.Coord) (board.Player, bool) {
		if t.Contains(c) {
			return p, true
		}
		return b.Owner(c)
	}

	var touched [2]map[board.Coord]struct{}
	for i := range touched {
		touched[i] = make(map[board.Coord]struct{})
	}
	visit := func(c board.Coord, owner board.Player) {
		for _, n := range g.Neighbors(c) {
			if _, ok := ownerAt(n); !ok {
				touched[owner][n] = struct{}{}
			}
		}
	}
	b.ForEachToken(visit)
	for _, c := range t.Coords() {
		visit(c, p)
	}
	return len(touched[p]) - len(touched[p.Opponent()])
}
