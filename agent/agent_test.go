package agent

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/rs/zerolog"

	"github.com/domino14/tetress/board"
	"github.com/domino14/tetress/config"
	"github.com/domino14/tetress/ordering"
	"github.com/domino14/tetress/zobrist"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	os.Exit(m.Run())
}

var plenty = Budget{TimeRemaining: 3 * time.Minute, SpaceRemaining: 1024}

func smallOptions(z *zobrist.Zobrist) Options {
	opts := DefaultOptions()
	opts.Rules = board.Rules{Size: 5, MaxTurns: 12}
	opts.FixedDepth = 1
	opts.Zobrist = z
	return opts
}

func TestOpeningMoveIsFirstOrdered(t *testing.T) {
	is := is.New(t)
	a, err := New(board.Red, DefaultOptions())
	is.NoErr(err)

	m, ok, err := a.Action(plenty)
	is.NoErr(err)
	is.True(ok)
	is.Equal(m, a.opts.Orderer.Moves(a.Board(), board.Red)[0])
	_, searched := a.LastResult()
	is.Equal(searched, 0) // no search on the opening
}

func TestRandomOpeningIsLegal(t *testing.T) {
	is := is.New(t)
	opts := DefaultOptions()
	opts.RandomOpening = true
	a, err := New(board.Red, opts)
	is.NoErr(err)
	for range 20 {
		m, ok, err := a.Action(plenty)
		is.NoErr(err)
		is.True(ok)
		is.True(a.Board().IsLegal(m, board.Red))
	}
}

func TestUpdateRejectsOccupied(t *testing.T) {
	is := is.New(t)
	a, err := New(board.Blue, DefaultOptions())
	is.NoErr(err)
	m, err := board.ParseTetromino(a.Board().Grid(), "3-3 3-4 3-5 3-6")
	is.NoErr(err)
	is.NoErr(a.Update(board.Red, m))

	err = a.Update(board.Blue, m)
	is.True(errors.Is(err, board.ErrIllegalPlacement))
	is.Equal(a.Board().Turn(), 1)
}

func TestUpdateRejectsRepeatedCells(t *testing.T) {
	is := is.New(t)
	a, err := New(board.Red, DefaultOptions())
	is.NoErr(err)
	before := a.Hash()

	err = a.Update(board.Red, board.Tetromino{})
	is.True(errors.Is(err, board.ErrIllegalPlacement))
	is.True(errors.Is(err, board.ErrInvalidTetromino))
	is.Equal(a.Board().Turn(), 0)
	is.Equal(a.Board().TokenCount(board.Red), 0)
	is.Equal(a.Board().Occupied(), 0)
	is.Equal(a.Hash(), before)
}

func TestUpdateChangesHash(t *testing.T) {
	is := is.New(t)
	a, err := New(board.Blue, DefaultOptions())
	is.NoErr(err)
	before := a.Hash()
	m, err := board.ParseTetromino(a.Board().Grid(), "0-0 1-0 2-0 3-0")
	is.NoErr(err)
	is.NoErr(a.Update(board.Red, m))
	is.True(a.Hash() != before)
}

func TestTwoAgentsPlayAGame(t *testing.T) {
	is := is.New(t)
	z := &zobrist.Zobrist{}
	z.Initialize(5)
	red, err := New(board.Red, smallOptions(z))
	is.NoErr(err)
	blueOpts := smallOptions(z)
	blueOpts.Orderer = ordering.Orderer{Metric: ordering.MetricNotOwnAdjacency}
	blue, err := New(board.Blue, blueOpts)
	is.NoErr(err)
	agents := []*Agent{red, blue}

	for {
		mover := agents[red.Board().PlayerOnTurn()]
		m, ok, err := mover.Action(plenty)
		is.NoErr(err)
		if !ok {
			break
		}
		is.True(mover.Board().IsLegal(m, mover.Player()))
		for _, a := range agents {
			is.NoErr(a.Update(mover.Player(), m))
		}
		is.Equal(red.Hash(), blue.Hash())
	}
	b := red.Board()
	is.True(b.IsMaxTurnReached() || b.NumLegalMoves(b.PlayerOnTurn()) == 0)
	if b.Turn() > 2 {
		res, depth := red.LastResult()
		is.Equal(depth, 1)
		is.True(res.Nodes > 1)
	}
}

func TestNoMoveAtTurnLimit(t *testing.T) {
	is := is.New(t)
	opts := DefaultOptions()
	opts.Rules = board.Rules{Size: 5, MaxTurns: 1}
	a, err := New(board.Blue, opts)
	is.NoErr(err)
	m, err := board.ParseTetromino(a.Board().Grid(), "0-0 0-1 1-0 1-1")
	is.NoErr(err)
	is.NoErr(a.Update(board.Red, m))

	_, ok, err := a.Action(plenty)
	is.NoErr(err)
	is.True(!ok)
}

func TestOptionsFromConfig(t *testing.T) {
	is := is.New(t)
	cfg := config.DefaultConfig()
	cfg.Set(config.ConfigOrderingMetric, "not-own-adjacency")
	cfg.Set(config.ConfigBoardSize, 7)
	opts, err := OptionsFromConfig(cfg)
	is.NoErr(err)
	is.Equal(opts.Rules, board.Rules{Size: 7, MaxTurns: 150})
	is.Equal(opts.Orderer.Metric, ordering.MetricNotOwnAdjacency)
	is.Equal(opts.Policy.Deep, 3)
	is.Equal(opts.Policy.LowTime, 15*time.Second)

	cfg.Set(config.ConfigOrderingMetric, "nope")
	_, err = OptionsFromConfig(cfg)
	is.True(err != nil)
}
