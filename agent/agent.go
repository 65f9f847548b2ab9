// Package agent is a Tetress player that a referee drives through Init,
// Action and Update.
package agent

import (
	"fmt"
	"time"

	"github.com/pbnjay/memory"
	"github.com/rs/zerolog/log"
	"lukechampine.com/frand"

	"github.com/domino14/tetress/alphabeta"
	"github.com/domino14/tetress/board"
	"github.com/domino14/tetress/config"
	"github.com/domino14/tetress/ordering"
	"github.com/domino14/tetress/zobrist"
)

// Budget is what the referee says is left for this player. SpaceRemaining
// is in megabytes; zero or less means "use what the machine has free".
type Budget struct {
	TimeRemaining  time.Duration
	SpaceRemaining float64
}

type Options struct {
	Rules   board.Rules
	Orderer ordering.Orderer
	Policy  alphabeta.DepthPolicy
	Threads int
	// FixedDepth, if positive, is used instead of the depth policy.
	FixedDepth    int
	RandomOpening bool
	// Zobrist is shared with the referee so both sides hash positions with
	// the same keys. If nil the agent makes its own.
	Zobrist *zobrist.Zobrist
}

func DefaultOptions() Options {
	return Options{
		Rules:   board.DefaultRules,
		Orderer: ordering.Orderer{Metric: ordering.MetricOpponentAdjacency},
		Policy:  alphabeta.DefaultDepthPolicy,
		Threads: 1,
	}
}

func OptionsFromConfig(cfg *config.Config) (Options, error) {
	metric, err := ordering.ParseMetric(cfg.GetString(config.ConfigOrderingMetric))
	if err != nil {
		return Options{}, err
	}
	return Options{
		Rules: board.Rules{
			Size:     cfg.GetInt(config.ConfigBoardSize),
			MaxTurns: cfg.GetInt(config.ConfigMaxTurns),
		},
		Orderer: ordering.Orderer{
			Metric: metric,
			Dedup:  cfg.GetBool(config.ConfigOrderingDedup),
		},
		Policy: alphabeta.DepthPolicy{
			Shallow:         cfg.GetInt(config.ConfigSearchDepthShallow),
			Normal:          cfg.GetInt(config.ConfigSearchDepthNormal),
			Deep:            cfg.GetInt(config.ConfigSearchDepthDeep),
			WideBranching:   cfg.GetInt(config.ConfigSearchBranchingWide),
			NarrowBranching: cfg.GetInt(config.ConfigSearchBranchingNarrow),
			LowTime:         cfg.GetDuration(config.ConfigSearchTimeLow),
			HighTime:        cfg.GetDuration(config.ConfigSearchTimeHigh),
			LowSpaceMB:      cfg.GetFloat64(config.ConfigSearchSpaceLowMB),
		},
		Threads:       cfg.GetInt(config.ConfigSearchThreads),
		RandomOpening: cfg.GetBool(config.ConfigRandomOpening),
	}, nil
}

type Agent struct {
	player board.Player
	opts   Options

	board   *board.Board
	solver  *alphabeta.Solver
	zobrist *zobrist.Zobrist
	hash    uint64

	lastResult alphabeta.Result
	lastDepth  int
}

func New(player board.Player, opts Options) (*Agent, error) {
	a := &Agent{opts: opts}
	a.solver = &alphabeta.Solver{}
	a.solver.Init(opts.Orderer)
	a.solver.SetThreads(opts.Threads)
	a.zobrist = opts.Zobrist
	if a.zobrist == nil {
		a.zobrist = &zobrist.Zobrist{}
		a.zobrist.Initialize(opts.Rules.Size)
	}
	if err := a.Init(player); err != nil {
		return nil, err
	}
	return a, nil
}

// Init starts a new game on an empty board, playing as player.
func (a *Agent) Init(player board.Player) error {
	b, err := board.NewBoard(a.opts.Rules)
	if err != nil {
		return err
	}
	if a.zobrist.BoardDim() != a.opts.Rules.Size {
		return fmt.Errorf("zobrist table is for size %d, board is size %d",
			a.zobrist.BoardDim(), a.opts.Rules.Size)
	}
	a.player = player
	a.board = b
	a.hash = a.zobrist.Hash(b)
	a.lastResult, a.lastDepth = alphabeta.Result{}, 0
	log.Debug().Stringer("player", player).Int("size", a.opts.Rules.Size).
		Msg("agent-initialized")
	return nil
}

func (a *Agent) Player() board.Player {
	return a.player
}

// Board is the agent's own view of the game. Callers must not modify it.
func (a *Agent) Board() *board.Board {
	return a.board
}

func (a *Agent) Hash() uint64 {
	return a.hash
}

// LastResult is the result of the most recent search, and the depth it
// was run at. Opening moves do not search.
func (a *Agent) LastResult() (alphabeta.Result, int) {
	return a.lastResult, a.lastDepth
}

// Action picks this agent's next placement. It returns false when there is
// nothing to play: the turn limit has been reached or the agent has no
// legal placement.
func (a *Agent) Action(budget Budget) (board.Tetromino, bool, error) {
	p := a.player
	if a.board.IsMaxTurnReached() {
		return board.Tetromino{}, false, nil
	}
	moves := a.board.LegalMoves(p)
	if len(moves) == 0 {
		log.Debug().Stringer("player", p).Int("turn", a.board.Turn()).Msg("no-legal-moves")
		return board.Tetromino{}, false, nil
	}

	// Opening placements need no adjacency, so there is nothing to search
	// for yet.
	if a.board.Turn() < 2 {
		if a.opts.RandomOpening {
			return moves[frand.Intn(len(moves))], true, nil
		}
		return a.opts.Orderer.Moves(a.board, p)[0], true, nil
	}

	space := budget.SpaceRemaining
	if space <= 0 {
		space = float64(memory.FreeMemory()) / (1 << 20)
	}
	depth := a.opts.FixedDepth
	if depth <= 0 {
		depth = a.opts.Policy.Depth(len(moves), budget.TimeRemaining, space)
	}

	res, err := a.solver.Solve(a.board, p, depth)
	if err != nil {
		return board.Tetromino{}, false, err
	}
	a.lastResult, a.lastDepth = res, depth
	log.Debug().
		Stringer("player", p).
		Int("turn", a.board.Turn()).
		Int("depth", depth).
		Int("legal-moves", len(moves)).
		Float64("value", res.Value).
		Uint64("nodes", res.Nodes).
		Stringer("move", res.Move).
		Msg("agent-action")
	if !res.HasMove {
		// a depth-0 policy never expands the root
		return a.opts.Orderer.Moves(a.board, p)[0], true, nil
	}
	return res.Move, true, nil
}

// Update applies a placement made by either player to the agent's board.
func (a *Agent) Update(player board.Player, t board.Tetromino) error {
	if err := a.board.PlaceInPlace(t, player); err != nil {
		return fmt.Errorf("agent %v updating with %v: %w", a.player, t, err)
	}
	a.hash = a.zobrist.Hash(a.board)
	log.Debug().Stringer("player", player).Stringer("move", t).
		Uint64("hash", a.hash).Msg("agent-updated")
	return nil
}
