// Package automatic referees games between two agents, one at a time or
// in batches, and records and summarizes the results.
package automatic

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/domino14/tetress/agent"
	"github.com/domino14/tetress/board"
	"github.com/domino14/tetress/zobrist"
)

var (
	ErrDesync      = errors.New("agent board out of sync with referee")
	ErrGameOver    = errors.New("game is over")
	ErrNotOnTurn   = errors.New("player is not on turn")
	ErrAgentPassed = errors.New("agent returned no move with legal moves available")
)

type EndReason string

const (
	EndTurnLimit EndReason = "turn-limit"
	// EndStalled: the player on turn had no legal placement and loses.
	EndStalled EndReason = "stalled"
	EndTimeout EndReason = "timeout"
	// EndIllegal: an agent chose a placement the referee rejected.
	EndIllegal EndReason = "illegal-move"
)

const (
	WinnerDraw = "draw"
)

// GameRunner owns the authoritative board and asks each agent for its
// move in turn. Agents keep their own boards, which the runner checks
// against its own after every move.
type GameRunner struct {
	board   *board.Board
	zobrist *zobrist.Zobrist
	agents  [2]*agent.Agent
	names   [2]string
	opts    [2]agent.Options
	clocks  [2]time.Duration

	timeLimit time.Duration
	record    *GameRecord
	over      bool
}

// NewGameRunner sets up a runner where red plays with opts[0] and blue with
// opts[1]. Both must use the same rules.
func NewGameRunner(opts [2]agent.Options, names [2]string, timeLimit time.Duration) (*GameRunner, error) {
	if opts[0].Rules != opts[1].Rules {
		return nil, fmt.Errorf("players disagree on rules: %+v vs %+v", opts[0].Rules, opts[1].Rules)
	}
	r := &GameRunner{names: names, timeLimit: timeLimit}
	r.zobrist = &zobrist.Zobrist{}
	r.zobrist.Initialize(opts[0].Rules.Size)
	for i := range opts {
		opts[i].Zobrist = r.zobrist
		a, err := agent.New(board.Players[i], opts[i])
		if err != nil {
			return nil, err
		}
		r.agents[i] = a
	}
	r.opts = opts
	if err := r.StartGame(); err != nil {
		return nil, err
	}
	return r, nil
}

// StartGame resets the board, both agents and both clocks.
func (r *GameRunner) StartGame() error {
	b, err := board.NewBoard(r.opts[0].Rules)
	if err != nil {
		return err
	}
	r.board = b
	for i, a := range r.agents {
		if err := a.Init(board.Players[i]); err != nil {
			return err
		}
		r.clocks[i] = r.timeLimit
	}
	r.over = false
	r.record = &GameRecord{
		Size:     r.opts[0].Rules.Size,
		MaxTurns: r.opts[0].Rules.MaxTurns,
		Red:      r.names[board.Red],
		Blue:     r.names[board.Blue],
	}
	return nil
}

func (r *GameRunner) Board() *board.Board {
	return r.board
}

func (r *GameRunner) Record() *GameRecord {
	return r.record
}

func (r *GameRunner) Playing() bool {
	return !r.over
}

// checkEnd finishes the game if the player on turn can't move.
func (r *GameRunner) checkEnd() bool {
	p := r.board.PlayerOnTurn()
	switch {
	case r.board.IsMaxTurnReached():
		red, blue := r.board.TokenCount(board.Red), r.board.TokenCount(board.Blue)
		switch {
		case red > blue:
			r.finish(board.Red.String(), EndTurnLimit)
		case blue > red:
			r.finish(board.Blue.String(), EndTurnLimit)
		default:
			r.finish(WinnerDraw, EndTurnLimit)
		}
	case r.board.NumLegalMoves(p) == 0:
		r.finish(p.Opponent().String(), EndStalled)
	}
	return r.over
}

func (r *GameRunner) finish(winner string, reason EndReason) {
	r.over = true
	r.record.Winner = winner
	r.record.Reason = reason
	r.record.Turns = r.board.Turn()
	r.record.RedTokens = r.board.TokenCount(board.Red)
	r.record.BlueTokens = r.board.TokenCount(board.Blue)
	log.Debug().Str("winner", winner).Str("reason", string(reason)).
		Int("turns", r.record.Turns).Msg("game-over")
}

// PlayMove applies a placement for the player on turn, forwards it to both
// agents and checks that everyone still agrees on the position.
func (r *GameRunner) PlayMove(p board.Player, t board.Tetromino) error {
	if r.over {
		return ErrGameOver
	}
	if p != r.board.PlayerOnTurn() {
		return fmt.Errorf("%w: %v", ErrNotOnTurn, p)
	}
	// the referee's board only advances once every agent has taken the move
	next, err := r.board.Place(t, p)
	if err != nil {
		return err
	}
	want := r.zobrist.Hash(next)
	for _, a := range r.agents {
		if err := a.Update(p, t); err != nil {
			return err
		}
		if a.Hash() != want {
			return fmt.Errorf("%w: %v after turn %d", ErrDesync, a.Player(), next.Turn())
		}
	}
	r.board = next
	r.checkEnd()
	return nil
}

// PlayTurn asks the agent on turn for a move and plays it. It returns
// true once the game is over.
func (r *GameRunner) PlayTurn() (bool, error) {
	if r.over || r.checkEnd() {
		return true, nil
	}
	p := r.board.PlayerOnTurn()
	a := r.agents[p]

	tstart := time.Now()
	m, ok, err := a.Action(agent.Budget{TimeRemaining: r.clocks[p]})
	elapsed := time.Since(tstart)
	if err != nil {
		return true, err
	}
	r.clocks[p] -= elapsed
	if r.timeLimit > 0 && r.clocks[p] < 0 {
		r.finish(p.Opponent().String(), EndTimeout)
		return true, nil
	}
	if !ok {
		return true, fmt.Errorf("%w: %v at turn %d", ErrAgentPassed, p, r.board.Turn())
	}
	if !r.board.IsLegal(m, p) {
		log.Warn().Stringer("player", p).Stringer("move", m).Msg("illegal-move-forfeit")
		r.finish(p.Opponent().String(), EndIllegal)
		return true, nil
	}

	res, depth := a.LastResult()
	mr := MoveRecord{
		Turn:      r.board.Turn(),
		Player:    p.String(),
		Move:      m.String(),
		ElapsedMS: elapsed.Milliseconds(),
	}
	if r.board.Turn() >= 2 {
		mr.Depth = depth
		mr.Nodes = res.Nodes
		mr.Value = res.Value
	}
	r.record.Moves = append(r.record.Moves, mr)

	if err := r.PlayMove(p, m); err != nil {
		return true, err
	}
	return r.over, nil
}

// PlayGame plays a fresh game to the end and returns its record.
func (r *GameRunner) PlayGame() (*GameRecord, error) {
	if err := r.StartGame(); err != nil {
		return nil, err
	}
	for {
		done, err := r.PlayTurn()
		if err != nil {
			r.record.Error = err.Error()
			return r.record, err
		}
		if done {
			return r.record, nil
		}
	}
}
