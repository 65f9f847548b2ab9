package ordering

import (
	"slices"

	"github.com/domino14/tetress/board"
)

// An Orderer sorts candidate placements by a desirability metric.
type Orderer struct {
	Metric Metric
	// Dedup keeps only the first placement for each distinct desirability
	// value. This is lossy: legal placements are thrown away, not just
	// moved down the list, so the search may miss the best move.
	Dedup bool
}

type scoredMove struct {
	t     board.Tetromino
	value float64
}

// Order returns a new slice of moves, most desirable first. Moves with the
// same desirability keep their relative input order.
func (o Orderer) Order(b *board.Board, moves []board.Tetromino, p board.Player) []board.Tetromino {
	if o.Metric == MetricNone {
		return slices.Clone(moves)
	}
	scored := make([]scoredMove, len(moves))
	for i, m := range moves {
		scored[i] = scoredMove{t: m, value: Desirability(b, m, p, o.Metric)}
	}
	slices.SortStableFunc(scored, func(a, b scoredMove) int {
		switch {
		case a.value > b.value:
			return -1
		case a.value < b.value:
			return 1
		}
		return 0
	})

	out := make([]board.Tetromino, 0, len(scored))
	for i, sm := range scored {
		if o.Dedup && i > 0 && scored[i-1].value == sm.value {
			continue
		}
		out = append(out, sm.t)
	}
	return out
}

// Moves returns p's legal moves on b in this orderer's order.
func (o Orderer) Moves(b *board.Board, p board.Player) []board.Tetromino {
	return o.Order(b, b.LegalMoves(p), p)
}
