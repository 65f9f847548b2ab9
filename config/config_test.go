package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/rs/zerolog"
)

func TestDefaults(t *testing.T) {
	is := is.New(t)
	c := DefaultConfig()
	is.Equal(c.GetInt(ConfigBoardSize), 11)
	is.Equal(c.GetInt(ConfigMaxTurns), 150)
	is.Equal(c.GetDuration(ConfigSearchTimeLow), 15*time.Second)
	is.Equal(c.GetString(ConfigOrderingMetric), "opponent-adjacency")
	is.Equal(c.LogLevel(), zerolog.InfoLevel)
}

func TestLoadFlags(t *testing.T) {
	is := is.New(t)
	c := &Config{}
	err := c.Load([]string{"--board-size", "7", "--debug", "--time-limit", "30s", "autoplay", "-games", "4"})
	is.NoErr(err)
	is.Equal(c.Args(), []string{"autoplay", "-games", "4"})
	is.Equal(c.GetInt(ConfigBoardSize), 7)
	is.Equal(c.GetDuration(ConfigTimeLimit), 30*time.Second)
	is.Equal(c.LogLevel(), zerolog.DebugLevel)
	// untouched keys keep their defaults
	is.Equal(c.GetInt(ConfigMaxTurns), 150)
}

func TestLoadEnv(t *testing.T) {
	is := is.New(t)
	t.Setenv("TETRESS_MAX_TURNS", "40")
	c := &Config{}
	is.NoErr(c.Load(nil))
	is.Equal(c.GetInt(ConfigMaxTurns), 40)
}

func TestLoadFile(t *testing.T) {
	is := is.New(t)
	path := filepath.Join(t.TempDir(), "tetress.yaml")
	is.NoErr(os.WriteFile(path, []byte("search-depth-deep: 4\nordering-dedup: true\n"), 0o644))

	c := &Config{}
	is.NoErr(c.Load([]string{"--config", path}))
	is.Equal(c.GetInt(ConfigSearchDepthDeep), 4)
	is.True(c.GetBool(ConfigOrderingDedup))
}

func TestLoadRejectsTinyBoard(t *testing.T) {
	is := is.New(t)
	c := &Config{}
	err := c.Load([]string{"--board-size", "3"})
	is.True(errors.Is(err, ErrBadConfig))
}

func TestValidateSearchDepths(t *testing.T) {
	is := is.New(t)
	c := DefaultConfig()
	is.NoErr(c.Validate())
	c.Set(ConfigSearchDepthShallow, 0)
	is.True(errors.Is(c.Validate(), ErrBadConfig))
}
