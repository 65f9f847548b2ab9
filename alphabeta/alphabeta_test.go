package alphabeta

import (
	"math"
	"os"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/rs/zerolog"

	"github.com/domino14/tetress/board"
	"github.com/domino14/tetress/ordering"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	os.Exit(m.Run())
}

var smallRules = board.Rules{Size: 5, MaxTurns: 40}

// playedBoard plays plies deterministic but scattered legal moves.
func playedBoard(t *testing.T, rules board.Rules, plies, stride int) *board.Board {
	t.Helper()
	b, err := board.NewBoard(rules)
	if err != nil {
		t.Fatal(err)
	}
	for i := range plies {
		p := b.PlayerOnTurn()
		moves := b.LegalMoves(p)
		if len(moves) == 0 {
			break
		}
		if err := b.PlaceInPlace(moves[(i*stride+3)%len(moves)], p); err != nil {
			t.Fatal(err)
		}
	}
	return b
}

func newSolver(o ordering.Orderer) *Solver {
	s := &Solver{}
	s.Init(o)
	return s
}

func TestDepthZeroIsLeaf(t *testing.T) {
	is := is.New(t)
	b := playedBoard(t, smallRules, 3, 5)
	s := newSolver(ordering.Orderer{})

	res, err := s.Solve(b, b.PlayerOnTurn(), 0)
	is.NoErr(err)
	is.True(!res.HasMove)
	is.Equal(res.Nodes, uint64(1))
	is.Equal(res.Value, b.Score(b.PlayerOnTurn()))
}

func TestNegativeDepth(t *testing.T) {
	is := is.New(t)
	b := playedBoard(t, smallRules, 0, 1)
	_, err := newSolver(ordering.Orderer{}).Solve(b, board.Red, -1)
	is.Equal(err, ErrNegativeDepth)
}

func TestTurnLimitIsLeaf(t *testing.T) {
	is := is.New(t)
	b := playedBoard(t, board.Rules{Size: 5, MaxTurns: 2}, 2, 1)
	is.True(b.IsMaxTurnReached())

	res, err := newSolver(ordering.Orderer{}).Solve(b, b.PlayerOnTurn(), 3)
	is.NoErr(err)
	is.True(!res.HasMove)
	is.Equal(res.Nodes, uint64(1))
	is.Equal(res.Value, b.Score(b.PlayerOnTurn()))
	is.True(math.IsInf(res.Value, 0) || res.Value == 0)
}

func TestDepthOneKeepsFirstBest(t *testing.T) {
	is := is.New(t)
	b := playedBoard(t, smallRules, 4, 11)
	p := b.PlayerOnTurn()
	s := newSolver(ordering.Orderer{})

	res, err := s.Solve(b, p, 1)
	is.NoErr(err)
	is.True(res.HasMove)

	best := math.Inf(-1)
	var want board.Tetromino
	for i, m := range b.LegalMoves(p) {
		child, err := b.Place(m, p)
		is.NoErr(err)
		if v := child.Score(p); i == 0 || v > best {
			best, want = v, m
		}
	}
	is.Equal(res.Value, best)
	is.Equal(res.Move, want)
}

func TestPrunedMatchesUnpruned(t *testing.T) {
	orderers := []ordering.Orderer{
		{},
		{Metric: ordering.MetricOpponentAdjacency},
		{Metric: ordering.MetricNotOwnAdjacency, Dedup: true},
	}
	// at depth 3 nodes below the root see a window finite on both ends
	cases := []struct {
		plies, depth int
	}{
		{2, 2},
		{4, 2},
		{6, 2},
		{6, 3},
		{8, 3},
	}
	for _, tc := range cases {
		for _, o := range orderers {
			is := is.New(t)
			b := playedBoard(t, smallRules, tc.plies, 7)
			p := b.PlayerOnTurn()

			pruned := newSolver(o)
			full := newSolver(o)
			full.SetPruningDisabled(true)

			want, err := full.Solve(b, p, tc.depth)
			is.NoErr(err)
			got, err := pruned.Solve(b, p, tc.depth)
			is.NoErr(err)

			is.Equal(got.Value, want.Value)
			is.Equal(got.Move, want.Move)
			is.Equal(got.HasMove, want.HasMove)
			is.True(got.Nodes <= want.Nodes)
		}
	}
}

func TestParallelMatchesSequential(t *testing.T) {
	is := is.New(t)
	o := ordering.Orderer{Metric: ordering.MetricOpponentAdjacency}
	for _, plies := range []int{2, 5} {
		b := playedBoard(t, smallRules, plies, 13)
		p := b.PlayerOnTurn()

		seq := newSolver(o)
		par := newSolver(o)
		par.SetThreads(4)

		want, err := seq.Solve(b, p, 2)
		is.NoErr(err)
		got, err := par.Solve(b, p, 2)
		is.NoErr(err)
		is.Equal(got.Value, want.Value)
		is.Equal(got.Move, want.Move)
	}
}

func TestSolveLeavesBoardAlone(t *testing.T) {
	is := is.New(t)
	b := playedBoard(t, smallRules, 3, 3)
	before := b.ToDisplayText()
	_, err := newSolver(ordering.Orderer{}).Solve(b, b.PlayerOnTurn(), 2)
	is.NoErr(err)
	is.Equal(b.ToDisplayText(), before)
}

func TestDepthPolicy(t *testing.T) {
	is := is.New(t)
	dp := DefaultDepthPolicy
	tests := []struct {
		moves int
		time  time.Duration
		space float64
		want  int
	}{
		{500, 10 * time.Minute, 1024, dp.Shallow},
		{20, 5 * time.Second, 1024, dp.Shallow},
		{20, 10 * time.Minute, 1, dp.Shallow},
		{20, 10 * time.Minute, 1024, dp.Deep},
		{20, 30 * time.Second, 1024, dp.Normal},
		{100, 10 * time.Minute, 1024, dp.Normal},
	}
	for _, tc := range tests {
		is.Equal(dp.Depth(tc.moves, tc.time, tc.space), tc.want)
	}
}
