package board

import (
	"fmt"
	"strings"
)

// ToDisplayText renders the board for a terminal. Red tokens are R, blue
// tokens are B; cells of highlight, if given, are shown in lower case or
// as * when empty.
func (b *Board) ToDisplayText(highlight ...Tetromino) string {
	var str strings.Builder
	n := b.rules.Size

	str.WriteString("    ")
	for col := range n {
		fmt.Fprintf(&str, "%-3d", col)
	}
	str.WriteString("\n")
	for row := range n {
		fmt.Fprintf(&str, "%2d  ", row)
		for col := range n {
			c := Coord{Row: row, Col: col}
			lit := false
			for _, t := range highlight {
				if t.Contains(c) {
					lit = true
				}
			}
			str.WriteString(squareText(b.squares[b.grid.Index(c)], lit))
			str.WriteString("  ")
		}
		str.WriteString("\n")
	}
	fmt.Fprintf(&str, "turn %d/%d  red %d (%d moves)  blue %d (%d moves)\n",
		b.turn, b.rules.MaxTurns,
		b.tokens[Red], len(b.legal[Red]),
		b.tokens[Blue], len(b.legal[Blue]))
	return str.String()
}

func squareText(sq square, lit bool) string {
	switch sq {
	case redSquare:
		if lit {
			return "r"
		}
		return "R"
	case blueSquare:
		if lit {
			return "b"
		}
		return "B"
	}
	if lit {
		return "*"
	}
	return "."
}
