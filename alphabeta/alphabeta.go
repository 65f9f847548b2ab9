// Package alphabeta picks a move using depth-limited minimax with alpha-beta
// pruning.
package alphabeta

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/domino14/tetress/board"
)

// thanks Wikipedia:
/**function alphabeta(node, depth, α, β, maximizingPlayer) is
    if depth = 0 or node is a terminal node then
        return the heuristic value of node
    if maximizingPlayer then
        value := −∞
        for each child of node do
            value := max(value, alphabeta(child, depth − 1, α, β, FALSE))
            α := max(α, value)
            if value ≥ β then
                break (* β cut-off *)
        return value
    else
        value := +∞
        for each child of node do
            value := min(value, alphabeta(child, depth − 1, α, β, TRUE))
            β := min(β, value)
            if value ≤ α then
                break (* α cut-off *)
        return value
(* Initial call *)
alphabeta(origin, depth, −∞, +∞, TRUE)
**/

var ErrNegativeDepth = errors.New("search depth must not be negative")

// MoveOrderer lists a player's candidate moves, best guesses first.
type MoveOrderer interface {
	Moves(b *board.Board, p board.Player) []board.Tetromino
}

// Result is the outcome of a search. Value is from the point of view of
// the player who was on move at the root.
type Result struct {
	Value   float64
	Move    board.Tetromino
	HasMove bool
	// Nodes is the number of positions visited, the root included.
	Nodes uint64
}

// Solver implements the minimax + alphabeta algorithm. A Solver runs one
// search at a time.
type Solver struct {
	orderer        MoveOrderer
	disablePruning bool
	threads        int

	// maximizingPlayer is the side the search is run for. It is fixed for
	// the whole of one Solve call.
	maximizingPlayer board.Player
	totalNodes       atomic.Uint64
}

// Init initializes the solver
func (s *Solver) Init(o MoveOrderer) {
	s.orderer = o
	s.threads = 1
	s.disablePruning = false
}

// SetPruningDisabled turns the search into plain minimax. It visits every
// node and exists to check the pruned search against.
func (s *Solver) SetPruningDisabled(d bool) {
	s.disablePruning = d
}

// SetThreads sets how many root moves are searched at once. Each root move
// then gets its own full window, so less is pruned than in a sequential
// search, but the result is the same.
func (s *Solver) SetThreads(n int) {
	s.threads = max(n, 1)
}

// Solve searches depth plies ahead of b with toMove on move. When several
// moves share the best value, the first one in the orderer's order wins.
// HasMove is false only if the root itself is a cutoff: depth 0, the turn
// limit, or no legal placement for toMove.
func (s *Solver) Solve(b *board.Board, toMove board.Player, depth int) (Result, error) {
	if depth < 0 {
		return Result{}, ErrNegativeDepth
	}
	log.Debug().Int("depth", depth).
		Bool("pruning", !s.disablePruning).
		Int("threads", s.threads).
		Stringer("player", toMove).
		Int("turn", b.Turn()).
		Msg("alphabeta-solve-config")

	tstart := time.Now()
	s.maximizingPlayer = toMove
	s.totalNodes.Store(0)

	var (
		value float64
		move  *board.Tetromino
		err   error
	)
	if s.threads > 1 && !s.isCutoff(b, toMove, depth) {
		value, move, err = s.searchRootParallel(b, toMove, depth)
	} else {
		value, move, err = s.alphabeta(b, toMove, math.Inf(-1), math.Inf(1), depth)
	}
	if err != nil {
		return Result{}, err
	}
	res := Result{Value: value, Nodes: s.totalNodes.Load()}
	if move != nil {
		res.Move = *move
		res.HasMove = true
	}
	log.Debug().
		Float64("value", value).
		Bool("has-move", res.HasMove).
		Stringer("move", res.Move).
		Uint64("nodes", res.Nodes).
		Float64("time-elapsed-sec", time.Since(tstart).Seconds()).
		Msg("solve-returning")
	return res, nil
}

func (s *Solver) isCutoff(b *board.Board, onTurn board.Player, depth int) bool {
	return depth == 0 || b.IsMaxTurnReached() || b.NumLegalMoves(onTurn) == 0
}

func (s *Solver) alphabeta(b *board.Board, onTurn board.Player, α, β float64,
	depth int) (float64, *board.Tetromino, error) {

	s.totalNodes.Add(1)
	if s.isCutoff(b, onTurn, depth) {
		return b.Score(s.maximizingPlayer), nil, nil
	}
	plays := s.orderer.Moves(b, onTurn)

	if onTurn == s.maximizingPlayer {
		// Maximizing
		best := math.Inf(-1)
		var bestMove *board.Tetromino
		for i := range plays {
			child, err := b.Place(plays[i], onTurn)
			if err != nil {
				return 0, nil, fmt.Errorf("placing %v for %v: %w", plays[i], onTurn, err)
			}
			value, _, err := s.alphabeta(child, onTurn.Opponent(), α, β, depth-1)
			if err != nil {
				return 0, nil, err
			}
			if bestMove == nil || value > best {
				best, bestMove = value, &plays[i]
			}
			if s.disablePruning {
				continue
			}
			α = max(α, best)
			if best >= β {
				break // beta cut-off
			}
		}
		return best, bestMove, nil
	}

	// Minimizing
	best := math.Inf(1)
	var bestMove *board.Tetromino
	for i := range plays {
		child, err := b.Place(plays[i], onTurn)
		if err != nil {
			return 0, nil, fmt.Errorf("placing %v for %v: %w", plays[i], onTurn, err)
		}
		value, _, err := s.alphabeta(child, onTurn.Opponent(), α, β, depth-1)
		if err != nil {
			return 0, nil, err
		}
		if bestMove == nil || value < best {
			best, bestMove = value, &plays[i]
		}
		if s.disablePruning {
			continue
		}
		β = min(β, best)
		if best <= α {
			break // alpha cut-off
		}
	}
	return best, bestMove, nil
}

// searchRootParallel searches every root move on its own goroutine with a
// full window, so every root value is exact, then picks the best in move
// order. The root is always a maximizing node.
func (s *Solver) searchRootParallel(b *board.Board, toMove board.Player,
	depth int) (float64, *board.Tetromino, error) {

	s.totalNodes.Add(1)
	plays := s.orderer.Moves(b, toMove)
	values := make([]float64, len(plays))

	var g errgroup.Group
	g.SetLimit(s.threads)
	for i := range plays {
		g.Go(func() error {
			child, err := b.Place(plays[i], toMove)
			if err != nil {
				return fmt.Errorf("placing %v for %v: %w", plays[i], toMove, err)
			}
			values[i], _, err = s.alphabeta(child, toMove.Opponent(), math.Inf(-1), math.Inf(1), depth-1)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return 0, nil, err
	}

	best := math.Inf(-1)
	var bestMove *board.Tetromino
	for i, v := range values {
		if bestMove == nil || v > best {
			best, bestMove = v, &plays[i]
		}
	}
	return best, bestMove, nil
}
