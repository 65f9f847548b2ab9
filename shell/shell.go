package shell

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/domino14/tetress/agent"
	"github.com/domino14/tetress/board"
	"github.com/domino14/tetress/config"
	"github.com/domino14/tetress/zobrist"
)

var (
	errNoData            = errors.New("no data in this line")
	errWrongOptionSyntax = errors.New("wrong format; all options need arguments")
	errNoGame            = errors.New("please start a game first with the `new` command")
)

type shellcmd struct {
	cmd     string
	args    []string
	options map[string]string
}

type ShellController struct {
	l      *readline.Instance
	w      io.Writer
	config *config.Config
	opts   agent.Options

	board       *board.Board
	zobrist     *zobrist.Zobrist
	curGenPlays []board.Tetromino

	autoplayCancel context.CancelFunc
	autoplayDone   chan struct{}

	printer *message.Printer
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func writeln(msg string, w io.Writer) {
	io.WriteString(w, msg)
	io.WriteString(w, "\n")
}

func NewShellController(cfg *config.Config) *ShellController {
	l, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[31mtetress>\033[0m ",
		HistoryFile:     "/tmp/tetress-readline.tmp",
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})

	if err != nil {
		panic(err)
	}
	sc, err := newController(cfg, l.Stderr())
	if err != nil {
		panic(err)
	}
	sc.l = l
	return sc
}

func newController(cfg *config.Config, w io.Writer) (*ShellController, error) {
	opts, err := agent.OptionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	return &ShellController{
		w:       w,
		config:  cfg,
		opts:    opts,
		printer: message.NewPrinter(language.English),
	}, nil
}

func (sc *ShellController) showMessage(msg string) {
	writeln(msg, sc.w)
}

func (sc *ShellController) showError(err error) {
	sc.showMessage("Error: " + err.Error())
}

func extractFields(line string) (*shellcmd, error) {
	fields, err := shellquote.Split(line)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, errNoData
	}
	cmd := fields[0]
	var args []string
	options := map[string]string{}

	for idx := 1; idx < len(fields); idx++ {
		if strings.HasPrefix(fields[idx], "-") {
			if idx == len(fields)-1 {
				return nil, errWrongOptionSyntax
			}
			options[fields[idx][1:]] = fields[idx+1]
			idx++
			continue
		}
		args = append(args, fields[idx])
	}
	return &shellcmd{
		cmd:     cmd,
		args:    args,
		options: options,
	}, nil
}

func (sc *ShellController) dispatch(cmd *shellcmd) (*Response, error) {
	switch cmd.cmd {
	case "new", "n":
		return sc.newGame(cmd)
	case "show", "s":
		return sc.show(cmd)
	case "gen", "g":
		return sc.generate(cmd)
	case "best":
		return sc.best(cmd)
	case "play", "p":
		return sc.play(cmd)
	case "place", "pl":
		return sc.place(cmd)
	case "autoplay":
		return sc.autoplay(cmd)
	case "set":
		return sc.set(cmd)
	case "hash":
		return sc.hash(cmd)
	case "help":
		return sc.help(cmd)
	}
	log.Debug().Msgf("you said: %v", cmd.cmd)
	return nil, errors.New("command " + cmd.cmd + " not found")
}

// Execute runs a single command line, as given on the command line
// instead of in the loop.
func (sc *ShellController) Execute(sig chan os.Signal, line string) {
	if sc.handleLine(line, sig) {
		return
	}
	// a one-shot autoplay should be allowed to finish
	if sc.autoplayDone != nil {
		<-sc.autoplayDone
	}
}

// handleLine runs one line and reports whether the shell should exit.
func (sc *ShellController) handleLine(line string, sig chan os.Signal) bool {
	line = strings.TrimSpace(line)
	if line == "exit" || line == "bye" {
		sig <- syscall.SIGINT
		return true
	}
	cmd, err := extractFields(line)
	switch {
	case errors.Is(err, errNoData):
		return false
	case err != nil:
		sc.showError(err)
		return false
	}
	resp, err := sc.dispatch(cmd)
	if err != nil {
		sc.showError(err)
	} else if resp != nil {
		sc.showMessage(resp.message)
	}
	return false
}

func (sc *ShellController) Loop(sig chan os.Signal) {

	defer sc.l.Close()

	for {
		line, err := sc.l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				sig <- syscall.SIGINT
				break
			} else {
				continue
			}
		} else if err == io.EOF {
			sig <- syscall.SIGINT
			break
		}
		if sc.handleLine(line, sig) {
			break
		}
	}
	log.Debug().Msgf("Exiting readline loop...")
}

// Cleanup stops anything the shell left running.
func (sc *ShellController) Cleanup() {
	if sc.autoplayCancel != nil {
		sc.autoplayCancel()
		<-sc.autoplayDone
	}
}
