package automatic

import (
	"bytes"
	"context"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/domino14/tetress/ordering"
)

func TestCompVComp(t *testing.T) {
	other := smallOptions()
	other.Orderer = ordering.Orderer{Metric: ordering.MetricNone}
	players := [2]Player{
		{Name: "adjacency", Options: smallOptions()},
		{Name: "canonical", Options: other},
	}
	var out bytes.Buffer
	summary, err := StartCompVComp(context.Background(), players, time.Minute, 4, 2, &out)
	require.NoError(t, err)

	recs, err := ReadRecords(&out)
	require.NoError(t, err)
	require.Len(t, recs, 4)
	ids := make([]int, 0, len(recs))
	for _, rec := range recs {
		ids = append(ids, rec.GameID)
		assert.Empty(t, rec.Error)
		if rec.GameID%2 == 0 {
			assert.Equal(t, "adjacency", rec.Red)
		} else {
			assert.Equal(t, "canonical", rec.Red)
		}
	}
	slices.Sort(ids)
	assert.Equal(t, []int{0, 1, 2, 3}, ids)

	assert.Equal(t, 4, summary.Games)
	assert.Equal(t, "canonical", summary.Player2)
	assert.Equal(t, 4, summary.Player1Wins+summary.Player2Wins+summary.Draws)
	assert.Len(t, summary.Margins, 4)
	assert.Zero(t, IsPlaying.Value())
	assert.EqualValues(t, 4, CVCCounter.Value())
}

func TestCompVCompOneBatchAtATime(t *testing.T) {
	batchRunning.Store(true)
	defer batchRunning.Store(false)
	players := [2]Player{{Name: "a", Options: smallOptions()}, {Name: "b", Options: smallOptions()}}
	_, err := StartCompVComp(context.Background(), players, time.Minute, 1, 1, &bytes.Buffer{})
	assert.ErrorIs(t, err, ErrBatchRunning)
}

func TestCompVCompNeedsDistinctNames(t *testing.T) {
	players := [2]Player{{Name: "x", Options: smallOptions()}, {Name: "x", Options: smallOptions()}}
	_, err := StartCompVComp(context.Background(), players, time.Minute, 1, 1, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestCompVCompCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	players := [2]Player{
		{Name: "a", Options: smallOptions()},
		{Name: "b", Options: smallOptions()},
	}
	summary, err := StartCompVComp(ctx, players, time.Minute, 1000, 2, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Less(t, summary.Games, 1000)
}

func TestSummarize(t *testing.T) {
	recs := []*GameRecord{
		{GameID: 0, Red: "a", Blue: "b", Winner: "red", Reason: EndTurnLimit, RedTokens: 20, BlueTokens: 10},
		{GameID: 1, Red: "b", Blue: "a", Winner: "red", Reason: EndStalled, RedTokens: 12, BlueTokens: 8},
		{GameID: 2, Red: "a", Blue: "b", Winner: WinnerDraw, Reason: EndTurnLimit, RedTokens: 9, BlueTokens: 9},
		{GameID: 3, Red: "b", Blue: "a", Error: "boom"},
	}
	s := Summarize(recs, "a")
	assert.Equal(t, "b", s.Player2)
	assert.Equal(t, 4, s.Games)
	assert.Equal(t, 1, s.Errors)
	assert.Equal(t, 1, s.Player1Wins)
	assert.Equal(t, 1, s.Player2Wins)
	assert.Equal(t, 1, s.Draws)
	assert.Equal(t, 2, s.FirstPlayerWins)
	assert.Equal(t, []float64{10, -4, 0}, s.Margins)
	assert.InDelta(t, 2.0, s.MarginMean, 1e-9)
	assert.InDelta(t, math.Sqrt(52), s.MarginStdev, 1e-9)
	assert.Equal(t, 2, s.Reasons[EndTurnLimit])
	assert.Contains(t, s.String(), "a wins: 1")

	var hist bytes.Buffer
	require.NoError(t, s.Histogram(&hist))
	assert.NotEmpty(t, hist.String())
}

func TestZVal(t *testing.T) {
	assert.InDelta(t, 1.959964, ZVal(95), 1e-5)
	assert.InDelta(t, 2.575829, ZVal(99), 1e-5)
}

func TestAnalyzeLogFile(t *testing.T) {
	var out bytes.Buffer
	players := [2]Player{
		{Name: "one", Options: smallOptions()},
		{Name: "two", Options: smallOptions()},
	}
	_, err := StartCompVComp(context.Background(), players, time.Minute, 2, 1, &out)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "games.yaml")
	require.NoError(t, os.WriteFile(path, out.Bytes(), 0o644))

	s, err := AnalyzeLogFile(path)
	require.NoError(t, err)
	assert.Equal(t, "one", s.Player1)
	assert.Equal(t, 2, s.Games)
	assert.True(t, strings.HasPrefix(s.String(), "Games played: 2"))
}
