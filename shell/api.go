package shell

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/pbnjay/memory"
	"github.com/rs/zerolog/log"

	"github.com/domino14/tetress/agent"
	"github.com/domino14/tetress/alphabeta"
	"github.com/domino14/tetress/automatic"
	"github.com/domino14/tetress/board"
	"github.com/domino14/tetress/config"
	"github.com/domino14/tetress/ordering"
	"github.com/domino14/tetress/zobrist"
)

const defaultGenPlays = 15

type Response struct {
	message string
}

func msg(message string) *Response {
	return &Response{message: message}
}

func intOption(cmd *shellcmd, key string, defaultI int) (int, error) {
	v, ok := cmd.options[key]
	if !ok {
		return defaultI, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("option -%s: %w", key, err)
	}
	return i, nil
}

func (sc *ShellController) newGame(cmd *shellcmd) (*Response, error) {
	b, err := board.NewBoard(sc.opts.Rules)
	if err != nil {
		return nil, err
	}
	if sc.zobrist == nil || sc.zobrist.BoardDim() != sc.opts.Rules.Size {
		sc.zobrist = &zobrist.Zobrist{}
		sc.zobrist.Initialize(sc.opts.Rules.Size)
	}
	sc.board = b
	sc.curGenPlays = nil
	return msg(b.ToDisplayText()), nil
}

func (sc *ShellController) show(cmd *shellcmd) (*Response, error) {
	if sc.board == nil {
		return nil, errNoGame
	}
	return msg(sc.board.ToDisplayText()), nil
}

func (sc *ShellController) generate(cmd *shellcmd) (*Response, error) {
	if sc.board == nil {
		return nil, errNoGame
	}
	n := defaultGenPlays
	if len(cmd.args) > 0 {
		var err error
		if n, err = strconv.Atoi(cmd.args[0]); err != nil {
			return nil, err
		}
	}
	p := sc.board.PlayerOnTurn()
	if s, ok := cmd.options["player"]; ok {
		var err error
		if p, err = board.ParsePlayer(s); err != nil {
			return nil, err
		}
	}
	moves := sc.opts.Orderer.Moves(sc.board, p)
	sc.curGenPlays = nil
	if len(moves) == 0 {
		return msg(fmt.Sprintf("%v has no legal placements", p)), nil
	}
	listed := moves[:min(n, len(moves))]
	// only the side on turn can place from the list
	if p == sc.board.PlayerOnTurn() {
		sc.curGenPlays = listed
	}

	var sb strings.Builder
	verb := "to move"
	if p != sc.board.PlayerOnTurn() {
		verb = "waiting"
	}
	fmt.Fprintf(&sb, "%v %s, %d legal placements, ordered by %v\n",
		p, verb, len(moves), sc.opts.Orderer.Metric)
	sb.WriteString("     Move                  Value\n")
	for i, m := range listed {
		fmt.Fprintf(&sb, "%3d: %-22s%5.0f\n", i+1, m.String(),
			ordering.Desirability(sc.board, m, p, sc.opts.Orderer.Metric))
	}
	return msg(sb.String()), nil
}

// search runs the solver for the player on turn. A depth of zero or less
// lets the depth policy decide.
func (sc *ShellController) search(depth int) (alphabeta.Result, int, error) {
	p := sc.board.PlayerOnTurn()
	if depth <= 0 {
		free := float64(memory.FreeMemory()) / (1 << 20)
		depth = sc.opts.Policy.Depth(sc.board.NumLegalMoves(p),
			sc.config.GetDuration(config.ConfigTimeLimit), free)
	}
	s := &alphabeta.Solver{}
	s.Init(sc.opts.Orderer)
	s.SetThreads(sc.opts.Threads)

	tstart := time.Now()
	res, err := s.Solve(sc.board, p, depth)
	if err != nil {
		return res, depth, err
	}
	log.Info().Int("depth", depth).Float64("secs", time.Since(tstart).Seconds()).
		Msg("search-done")
	return res, depth, nil
}

func (sc *ShellController) best(cmd *shellcmd) (*Response, error) {
	if sc.board == nil {
		return nil, errNoGame
	}
	depth, err := intOption(cmd, "depth", 0)
	if err != nil {
		return nil, err
	}
	res, depth, err := sc.search(depth)
	if err != nil {
		return nil, err
	}
	if !res.HasMove {
		return msg(fmt.Sprintf("no move; position value %v", res.Value)), nil
	}
	return msg(sc.printer.Sprintf("best: %v  value: %v  depth: %d  nodes: %d\n%s",
		res.Move, res.Value, depth, res.Nodes, sc.board.ToDisplayText(res.Move))), nil
}

// play makes the engine's move for the player on turn.
func (sc *ShellController) play(cmd *shellcmd) (*Response, error) {
	if sc.board == nil {
		return nil, errNoGame
	}
	p := sc.board.PlayerOnTurn()
	if sc.board.IsMaxTurnReached() || sc.board.NumLegalMoves(p) == 0 {
		return nil, errors.New("game is over")
	}
	var m board.Tetromino
	if sc.board.Turn() < 2 {
		m = sc.opts.Orderer.Moves(sc.board, p)[0]
	} else {
		depth, err := intOption(cmd, "depth", 0)
		if err != nil {
			return nil, err
		}
		res, _, err := sc.search(depth)
		if err != nil {
			return nil, err
		}
		m = res.Move
		if !res.HasMove {
			// a depth-0 search never expands the root
			m = sc.opts.Orderer.Moves(sc.board, p)[0]
		}
	}
	return sc.commit(p, m)
}

func (sc *ShellController) place(cmd *shellcmd) (*Response, error) {
	if sc.board == nil {
		return nil, errNoGame
	}
	var m board.Tetromino
	switch {
	case len(cmd.args) == 1 && strings.HasPrefix(cmd.args[0], "#"):
		idx, err := strconv.Atoi(cmd.args[0][1:])
		if err != nil {
			return nil, err
		}
		if idx < 1 || idx > len(sc.curGenPlays) {
			return nil, errors.New("play outside range")
		}
		m = sc.curGenPlays[idx-1]
	case len(cmd.args) > 0:
		var err error
		m, err = board.ParseTetromino(sc.board.Grid(), strings.Join(cmd.args, " "))
		if err != nil {
			return nil, err
		}
	default:
		return nil, errors.New("place <r-c> <r-c> <r-c> <r-c> or place #<n>")
	}
	p := sc.board.PlayerOnTurn()
	if !sc.board.IsLegal(m, p) {
		return nil, fmt.Errorf("%w: %v is not a legal placement for %v",
			board.ErrIllegalPlacement, m, p)
	}
	return sc.commit(p, m)
}

func (sc *ShellController) commit(p board.Player, m board.Tetromino) (*Response, error) {
	sc.showMessage(fmt.Sprintf("%v places %v", p, m))
	if err := sc.board.PlaceInPlace(m, p); err != nil {
		return nil, err
	}
	sc.curGenPlays = nil
	out := sc.board.ToDisplayText(m)
	next := sc.board.PlayerOnTurn()
	switch {
	case sc.board.IsMaxTurnReached():
		out += "\nturn limit reached"
	case sc.board.NumLegalMoves(next) == 0:
		out += fmt.Sprintf("\n%v has no legal placements and loses", next)
	}
	return msg(out), nil
}

func (sc *ShellController) hash(cmd *shellcmd) (*Response, error) {
	if sc.board == nil {
		return nil, errNoGame
	}
	return msg(fmt.Sprintf("%016x", sc.zobrist.Hash(sc.board))), nil
}

func (sc *ShellController) set(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		keys := sc.config.AllKeys()
		slices.Sort(keys)
		var sb strings.Builder
		sb.WriteString("Settings:\n")
		for _, k := range keys {
			fmt.Fprintf(&sb, "  %s: %v\n", k, sc.config.Get(k))
		}
		return msg(sb.String()), nil
	}
	key := cmd.args[0]
	if !sc.config.IsSet(key) {
		return nil, errors.New("no such option: " + key)
	}
	if len(cmd.args) == 1 {
		return msg(fmt.Sprintf("%s: %v", key, sc.config.Get(key))), nil
	}
	old := sc.config.Get(key)
	sc.config.Set(key, strings.Join(cmd.args[1:], " "))
	opts, err := agent.OptionsFromConfig(sc.config)
	if err == nil {
		err = sc.config.Validate()
	}
	if err != nil {
		sc.config.Set(key, old)
		return nil, err
	}
	sc.opts = opts
	return msg(fmt.Sprintf("set %s to %v", key, sc.config.Get(key))), nil
}

func (sc *ShellController) autoplay(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 1 && cmd.args[0] == "stop" {
		if sc.autoplayCancel == nil || automatic.IsPlaying.Value() == 0 {
			return nil, errors.New("no autoplay to stop")
		}
		sc.autoplayCancel()
		return msg("stopping autoplay..."), nil
	}
	if automatic.IsPlaying.Value() > 0 {
		return nil, errors.New("autoplay is already running; `autoplay stop` first")
	}
	games, err := intOption(cmd, "games", sc.config.GetInt(config.ConfigAutoplayGames))
	if err != nil {
		return nil, err
	}
	threads, err := intOption(cmd, "threads", sc.config.GetInt(config.ConfigAutoplayThreads))
	if err != nil {
		return nil, err
	}
	depth1, err := intOption(cmd, "depth1", 0)
	if err != nil {
		return nil, err
	}
	depth2, err := intOption(cmd, "depth2", 0)
	if err != nil {
		return nil, err
	}
	logfile := sc.config.GetString(config.ConfigAutoplayLogfile)
	if f, ok := cmd.options["file"]; ok {
		logfile = f
	}

	p1, p2 := sc.opts, sc.opts
	p1.FixedDepth, p2.FixedDepth = depth1, depth2
	players := [2]automatic.Player{
		{Name: fmt.Sprintf("p1-depth%d", depth1), Options: p1},
		{Name: fmt.Sprintf("p2-depth%d", depth2), Options: p2},
	}

	f, err := os.Create(logfile)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	sc.autoplayCancel = cancel
	sc.autoplayDone = make(chan struct{})
	timeLimit := sc.config.GetDuration(config.ConfigTimeLimit)

	go func() {
		defer close(sc.autoplayDone)
		defer f.Close()
		summary, err := automatic.StartCompVComp(ctx, players, timeLimit, games, threads, f)
		if err != nil {
			sc.showError(err)
			return
		}
		sc.showMessage(summary.String())
		if err := summary.Histogram(sc.w); err != nil {
			sc.showError(err)
		}
	}()
	return msg(fmt.Sprintf("autoplay started: %d games on %d threads, writing to %s",
		games, threads, logfile)), nil
}

func (sc *ShellController) help(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return msg(usage()), nil
	}
	return msg(usageTopic(cmd.args[0])), nil
}
