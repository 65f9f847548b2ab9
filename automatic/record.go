package automatic

import (
	"errors"
	"io"

	"gopkg.in/yaml.v3"
)

type MoveRecord struct {
	Turn   int    `yaml:"turn"`
	Player string `yaml:"player"`
	Move   string `yaml:"move"`
	// Depth, Nodes and Value are zero for opening moves, which are not
	// searched.
	Depth     int     `yaml:"depth,omitempty"`
	Nodes     uint64  `yaml:"nodes,omitempty"`
	Value     float64 `yaml:"value,omitempty"`
	ElapsedMS int64   `yaml:"elapsed_ms"`
}

// GameRecord is one finished (or aborted) game. Red and Blue name the
// engines that played each color.
type GameRecord struct {
	GameID     int          `yaml:"game_id"`
	Size       int          `yaml:"size"`
	MaxTurns   int          `yaml:"max_turns"`
	Red        string       `yaml:"red"`
	Blue       string       `yaml:"blue"`
	Winner     string       `yaml:"winner"`
	Reason     EndReason    `yaml:"reason"`
	Turns      int          `yaml:"turns"`
	RedTokens  int          `yaml:"red_tokens"`
	BlueTokens int          `yaml:"blue_tokens"`
	Error      string       `yaml:"error,omitempty"`
	Moves      []MoveRecord `yaml:"moves"`
}

// WinnerName is the engine name of the winner, or "draw".
func (g *GameRecord) WinnerName() string {
	switch g.Winner {
	case "red":
		return g.Red
	case "blue":
		return g.Blue
	}
	return g.Winner
}

// Margin is the token lead of the named engine at the end of the game.
func (g *GameRecord) Margin(name string) int {
	if g.Blue == name {
		return g.BlueTokens - g.RedTokens
	}
	return g.RedTokens - g.BlueTokens
}

// ReadRecords reads a stream of YAML documents, one game each.
func ReadRecords(r io.Reader) ([]*GameRecord, error) {
	dec := yaml.NewDecoder(r)
	var recs []*GameRecord
	for {
		rec := &GameRecord{}
		err := dec.Decode(rec)
		if errors.Is(err, io.EOF) {
			return recs, nil
		}
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
}
