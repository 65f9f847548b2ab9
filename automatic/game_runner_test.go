package automatic

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/rs/zerolog"

	"github.com/domino14/tetress/agent"
	"github.com/domino14/tetress/board"
	"github.com/domino14/tetress/ordering"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	os.Exit(m.Run())
}

func smallOptions() agent.Options {
	opts := agent.DefaultOptions()
	opts.Rules = board.Rules{Size: 5, MaxTurns: 16}
	opts.FixedDepth = 1
	return opts
}

func newSmallRunner(t *testing.T, timeLimit time.Duration) *GameRunner {
	t.Helper()
	other := smallOptions()
	other.Orderer = ordering.Orderer{Metric: ordering.MetricNotOwnAdjacency}
	r, err := NewGameRunner([2]agent.Options{smallOptions(), other},
		[2]string{"p1", "p2"}, timeLimit)
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestPlayGame(t *testing.T) {
	is := is.New(t)
	r := newSmallRunner(t, time.Minute)

	rec, err := r.PlayGame()
	is.NoErr(err)
	is.True(!r.Playing())
	is.Equal(rec.Turns, len(rec.Moves))
	is.Equal(rec.Red, "p1")
	is.Equal(rec.RedTokens, r.Board().TokenCount(board.Red))
	is.Equal(rec.BlueTokens, r.Board().TokenCount(board.Blue))

	switch rec.Reason {
	case EndTurnLimit:
		is.Equal(rec.Turns, 16)
	case EndStalled:
		is.Equal(r.Board().NumLegalMoves(r.Board().PlayerOnTurn()), 0)
		is.Equal(rec.Winner, r.Board().PlayerOnTurn().Opponent().String())
	default:
		t.Fatalf("unexpected end reason %v", rec.Reason)
	}
	for i, mr := range rec.Moves {
		is.Equal(mr.Turn, i)
		is.Equal(mr.Player, board.PlayerOnTurn(i).String())
		if i >= 2 {
			is.Equal(mr.Depth, 1)
		}
	}

	_, err = r.PlayTurn()
	is.NoErr(err)
	is.True(errors.Is(r.PlayMove(board.Red, board.Tetromino{}), ErrGameOver))
}

func TestPlayMoveChecksTurn(t *testing.T) {
	is := is.New(t)
	r := newSmallRunner(t, time.Minute)
	m := r.Board().LegalMoves(board.Blue)[0]
	err := r.PlayMove(board.Blue, m)
	is.True(errors.Is(err, ErrNotOnTurn))
	is.Equal(r.Board().Turn(), 0)
}

func TestDesyncIsCaught(t *testing.T) {
	is := is.New(t)
	r := newSmallRunner(t, time.Minute)
	g := r.Board().Grid()
	stray, err := board.ParseTetromino(g, "0-0 0-1 0-2 0-3")
	is.NoErr(err)
	played, err := board.ParseTetromino(g, "2-0 2-1 2-2 2-3")
	is.NoErr(err)

	// the red agent hears about a move that never happened
	is.NoErr(r.agents[board.Red].Update(board.Red, stray))
	err = r.PlayMove(board.Red, played)
	is.True(errors.Is(err, ErrDesync))
	is.Equal(r.Board().Turn(), 0)
}

func TestFailedAgentUpdateLeavesBoard(t *testing.T) {
	is := is.New(t)
	r := newSmallRunner(t, time.Minute)
	g := r.Board().Grid()
	stray, err := board.ParseTetromino(g, "0-0 0-1 0-2 0-3")
	is.NoErr(err)
	played, err := board.ParseTetromino(g, "0-0 1-0 2-0 3-0")
	is.NoErr(err)

	is.NoErr(r.agents[board.Red].Update(board.Red, stray))
	err = r.PlayMove(board.Red, played)
	is.True(errors.Is(err, board.ErrIllegalPlacement))
	is.Equal(r.Board().Turn(), 0)
	is.Equal(r.Board().TokenCount(board.Red), 0)
}

func TestTimeoutLoses(t *testing.T) {
	is := is.New(t)
	r := newSmallRunner(t, time.Nanosecond)
	done, err := r.PlayTurn()
	is.NoErr(err)
	is.True(done)
	is.Equal(r.Record().Reason, EndTimeout)
	is.Equal(r.Record().Winner, "blue")
	is.Equal(r.Board().Turn(), 0)
}
