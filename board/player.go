package board

import (
	"fmt"
	"strings"
)

// Player is one of the two sides. Red moves first.
type Player int8

const (
	Red Player = iota
	Blue
)

// Players lists both sides in turn order.
var Players = [2]Player{Red, Blue}

func (p Player) Opponent() Player {
	return 1 - p
}

func (p Player) String() string {
	switch p {
	case Red:
		return "red"
	case Blue:
		return "blue"
	}
	return fmt.Sprintf("player(%d)", int8(p))
}

func ParsePlayer(s string) (Player, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "red", "r", "0":
		return Red, nil
	case "blue", "b", "1":
		return Blue, nil
	}
	return Red, fmt.Errorf("unknown player %q", s)
}

// PlayerOnTurn returns the side that moves after turn placements have been
// made.
func PlayerOnTurn(turn int) Player {
	return Player(turn % 2)
}
