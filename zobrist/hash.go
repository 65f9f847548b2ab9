// Package zobrist hashes Tetress positions. The hash is used to check that
// two copies of a game (the referee's and an agent's, say) are in sync.
package zobrist

import (
	"lukechampine.com/frand"

	"github.com/domino14/tetress/board"
)

const bignum = 1<<63 - 2

// generate a zobrist hash for a Tetress position.
// https://en.wikipedia.org/wiki/Zobrist_hashing
type Zobrist struct {
	posTable [][2]uint64
	turnKeys [2]uint64

	boardDim int
}

func (z *Zobrist) Initialize(boardDim int) {
	z.boardDim = boardDim
	z.posTable = make([][2]uint64, boardDim*boardDim)
	for i := range z.posTable {
		for j := range z.posTable[i] {
			z.posTable[i][j] = frand.Uint64n(bignum) + 1
		}
	}
	for i := range z.turnKeys {
		z.turnKeys[i] = frand.Uint64n(bignum) + 1
	}
}

func (z *Zobrist) BoardDim() int {
	return z.boardDim
}

// Hash covers the owner of every square and the side on turn. It does not
// cover the turn number, so a position reached at different turns with the
// same side to move hashes the same.
func (z *Zobrist) Hash(b *board.Board) uint64 {
	g := b.Grid()
	key := z.turnKeys[b.PlayerOnTurn()]
	b.ForEachToken(func(c board.Coord, p board.Player) {
		key ^= z.posTable[g.Index(c)][p]
	})
	return key
}

// AddPlacement updates key for t being placed by p, as long as the
// placement cleared no lines. Callers that clear lines must rehash.
func (z *Zobrist) AddPlacement(key uint64, g board.Grid, t board.Tetromino, p board.Player) uint64 {
	for _, c := range t.Coords() {
		key ^= z.posTable[g.Index(c)][p]
	}
	key ^= z.turnKeys[board.Red] ^ z.turnKeys[board.Blue]
	return key
}
