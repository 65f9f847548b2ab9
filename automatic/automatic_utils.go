package automatic

// Data collection for automatic games: engine vs engine batches.

import (
	"context"
	"errors"
	"expvar"
	"io"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/domino14/tetress/agent"
)

var (
	CVCCounter *expvar.Int
	IsPlaying  *expvar.Int

	ErrBatchRunning = errors.New("games are already being played, please wait till complete")

	batchRunning atomic.Bool
)

func init() {
	CVCCounter = expvar.NewInt("cvcCounter")
	IsPlaying = expvar.NewInt("isPlaying")
}

// Player is one engine taking part in a batch of games.
type Player struct {
	Name    string
	Options agent.Options
}

// StartCompVComp plays numGames games between two engines on threads
// workers, alternating who plays red, and writes every game record to out
// as a YAML stream. It blocks until all games are done or ctx is
// canceled; a canceled batch is not an error.
func StartCompVComp(ctx context.Context, players [2]Player, timeLimit time.Duration,
	numGames, threads int, out io.Writer) (*Summary, error) {

	if players[0].Name == players[1].Name {
		return nil, errors.New("players need distinct names")
	}
	if !batchRunning.CompareAndSwap(false, true) {
		return nil, ErrBatchRunning
	}
	defer batchRunning.Store(false)
	threads = max(threads, 1)
	log.Info().Int("games", numGames).Int("threads", threads).
		Str("p1", players[0].Name).Str("p2", players[1].Name).Msg("starting-autoplay")

	CVCCounter.Set(0)
	jobs := make(chan int, 100)
	recChan := make(chan *GameRecord, 100)

	workers, wctx := errgroup.WithContext(ctx)
	workers.Go(func() error {
		defer close(jobs)
		for i := range numGames {
			select {
			case jobs <- i:
			case <-wctx.Done():
				log.Info().Int("queued", i).Msg("got-stop-signal")
				return nil
			}
		}
		log.Debug().Msg("finished-queueing-jobs")
		return nil
	})

	for t := range threads {
		workers.Go(func() error {
			normal, err := NewGameRunner(
				[2]agent.Options{players[0].Options, players[1].Options},
				[2]string{players[0].Name, players[1].Name}, timeLimit)
			if err != nil {
				return err
			}
			swapped, err := NewGameRunner(
				[2]agent.Options{players[1].Options, players[0].Options},
				[2]string{players[1].Name, players[0].Name}, timeLimit)
			if err != nil {
				return err
			}
			IsPlaying.Add(1)
			defer IsPlaying.Add(-1)
			for i := range jobs {
				r := normal
				if i%2 == 1 {
					r = swapped
				}
				rec, err := r.PlayGame()
				if rec == nil {
					return err
				}
				rec.GameID = i
				if err != nil {
					// The record keeps the error; one bad game doesn't
					// stop the batch.
					log.Err(err).Int("game", i).Int("thread", t).Msg("game-failed")
				}
				CVCCounter.Add(1)
				select {
				case recChan <- rec:
				case <-wctx.Done():
					return wctx.Err()
				}
			}
			return nil
		})
	}

	var recs []*GameRecord
	writer := errgroup.Group{}
	writer.Go(func() error {
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		var werr error
		for rec := range recChan {
			recs = append(recs, rec)
			if werr == nil {
				werr = enc.Encode(rec)
			}
		}
		if werr != nil {
			return werr
		}
		return enc.Close()
	})

	err := workers.Wait()
	close(recChan)
	werr := writer.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	log.Info().Int64("games", CVCCounter.Value()).Msg("all-games-finished")
	if err = errors.Join(err, werr); err != nil {
		return nil, err
	}
	return Summarize(recs, players[0].Name), nil
}
