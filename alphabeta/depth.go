package alphabeta

import "time"

// DepthPolicy picks a search depth before a search starts. It is the only
// way the time and memory budgets are enforced: a running search is never
// interrupted.
type DepthPolicy struct {
	Shallow int
	Normal  int
	Deep    int

	// More legal moves than WideBranching forces a shallow search; at most
	// NarrowBranching allows a deep one if there is time.
	WideBranching   int
	NarrowBranching int

	LowTime    time.Duration
	HighTime   time.Duration
	LowSpaceMB float64
}

var DefaultDepthPolicy = DepthPolicy{
	Shallow:         1,
	Normal:          2,
	Deep:            3,
	WideBranching:   150,
	NarrowBranching: 40,
	LowTime:         15 * time.Second,
	HighTime:        90 * time.Second,
	LowSpaceMB:      64,
}

// Depth returns the depth to search when the side to move has numMoves
// legal placements and the given budget is left.
func (dp DepthPolicy) Depth(numMoves int, timeRemaining time.Duration, spaceRemainingMB float64) int {
	switch {
	case timeRemaining < dp.LowTime, spaceRemainingMB < dp.LowSpaceMB, numMoves > dp.WideBranching:
		return dp.Shallow
	case numMoves <= dp.NarrowBranching && timeRemaining >= dp.HighTime:
		return dp.Deep
	}
	return dp.Normal
}
