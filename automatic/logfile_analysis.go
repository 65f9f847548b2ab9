package automatic

import (
	"fmt"
	"io"
	"math"
	"os"
	"slices"
	"strings"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// ZVal returns the two-tailed Z-value associated with a specific confidence interval.
// The interval is a number from 0 to 100 percent.
func ZVal(confidenceInterval float64) float64 {
	dist := distuv.Normal{
		Mu:    0,
		Sigma: 1,
	}
	area := (1 + (confidenceInterval / 100)) / 2
	return dist.Quantile(area)
}

// Summary describes a batch of games from the point of view of Player1.
type Summary struct {
	Player1 string
	Player2 string

	Games       int
	Player1Wins int
	Player2Wins int
	Draws       int
	Errors      int
	// FirstPlayerWins counts games won by whoever played red.
	FirstPlayerWins int
	Reasons         map[EndReason]int

	// Margins are Player1's final token leads, one per game without error.
	Margins     []float64
	MarginMean  float64
	MarginStdev float64
	// MarginCI95 is the half-width of the 95% confidence interval around
	// MarginMean.
	MarginCI95 float64
}

func Summarize(recs []*GameRecord, player1 string) *Summary {
	s := &Summary{Player1: player1, Reasons: map[EndReason]int{}}
	for _, rec := range recs {
		if rec.Red != player1 {
			s.Player2 = rec.Red
		} else {
			s.Player2 = rec.Blue
		}
		s.Games++
		if rec.Error != "" {
			s.Errors++
			continue
		}
		s.Reasons[rec.Reason]++
		switch rec.WinnerName() {
		case player1:
			s.Player1Wins++
		case WinnerDraw:
			s.Draws++
		default:
			s.Player2Wins++
		}
		if rec.Winner == "red" {
			s.FirstPlayerWins++
		}
		s.Margins = append(s.Margins, float64(rec.Margin(player1)))
	}
	switch n := len(s.Margins); {
	case n > 1:
		s.MarginMean, s.MarginStdev = stat.MeanStdDev(s.Margins, nil)
		s.MarginCI95 = ZVal(95) * s.MarginStdev / math.Sqrt(float64(n))
	case n == 1:
		s.MarginMean = s.Margins[0]
	}
	return s
}

func (s *Summary) String() string {
	var sb strings.Builder
	played := max(s.Games-s.Errors, 1)
	pct := func(n int) float64 { return 100 * float64(n) / float64(played) }
	fmt.Fprintf(&sb, "Games played: %d (%d errors)\n", s.Games, s.Errors)
	fmt.Fprintf(&sb, "%v wins: %d (%.3f%%)\n", s.Player1, s.Player1Wins, pct(s.Player1Wins))
	fmt.Fprintf(&sb, "%v wins: %d (%.3f%%)\n", s.Player2, s.Player2Wins, pct(s.Player2Wins))
	fmt.Fprintf(&sb, "Draws: %d (%.3f%%)\n", s.Draws, pct(s.Draws))
	fmt.Fprintf(&sb, "Player who went first wins: %d (%.3f%%)\n", s.FirstPlayerWins, pct(s.FirstPlayerWins))
	fmt.Fprintf(&sb, "%v token margin: %.3f ± %.3f  Stdev: %.3f\n",
		s.Player1, s.MarginMean, s.MarginCI95, s.MarginStdev)
	reasons := lo.Keys(s.Reasons)
	slices.Sort(reasons)
	for _, r := range reasons {
		fmt.Fprintf(&sb, "  ended by %v: %d\n", r, s.Reasons[r])
	}
	return sb.String()
}

// Histogram draws Player1's token margins.
func (s *Summary) Histogram(w io.Writer) error {
	if len(s.Margins) == 0 {
		_, err := fmt.Fprintln(w, "no games to plot")
		return err
	}
	h := histogram.Hist(15, s.Margins)
	return histogram.Fprint(w, h, histogram.Linear(40))
}

// AnalyzeLogFile summarizes a YAML game log written by StartCompVComp.
// Player1 is whoever played red in the first game.
func AnalyzeLogFile(filepath string) (*Summary, error) {
	file, err := os.Open(filepath)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	recs, err := ReadRecords(file)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("no games in %s", filepath)
	}
	first := lo.MinBy(recs, func(a, b *GameRecord) bool { return a.GameID < b.GameID })
	return Summarize(recs, first.Red), nil
}
