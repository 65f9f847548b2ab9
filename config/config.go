package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	ConfigBoardSize = "board-size"
	ConfigMaxTurns  = "max-turns"
	ConfigDebug     = "debug"

	ConfigSearchThreads         = "search-threads"
	ConfigSearchDepthShallow    = "search-depth-shallow"
	ConfigSearchDepthNormal     = "search-depth-normal"
	ConfigSearchDepthDeep       = "search-depth-deep"
	ConfigSearchBranchingWide   = "search-branching-wide"
	ConfigSearchBranchingNarrow = "search-branching-narrow"
	ConfigSearchTimeLow         = "search-time-low"
	ConfigSearchTimeHigh        = "search-time-high"
	ConfigSearchSpaceLowMB      = "search-space-low-mb"

	ConfigOrderingMetric = "ordering-metric"
	ConfigOrderingDedup  = "ordering-dedup"
	ConfigRandomOpening  = "random-opening"
	ConfigTimeLimit      = "time-limit"

	ConfigAutoplayGames   = "autoplay-games"
	ConfigAutoplayThreads = "autoplay-threads"
	ConfigAutoplayLogfile = "autoplay-logfile"

	configFileFlag = "config"
)

var ErrBadConfig = errors.New("bad configuration")

type Config struct {
	*viper.Viper
	args []string
}

// DefaultConfig returns a config holding only the defaults. It does not look
// at flags, files or the environment.
func DefaultConfig() *Config {
	c := &Config{Viper: viper.New()}
	c.setDefaults()
	return c
}

func (c *Config) setDefaults() {
	c.SetDefault(ConfigBoardSize, 11)
	c.SetDefault(ConfigMaxTurns, 150)
	c.SetDefault(ConfigDebug, false)

	c.SetDefault(ConfigSearchThreads, 1)
	c.SetDefault(ConfigSearchDepthShallow, 1)
	c.SetDefault(ConfigSearchDepthNormal, 2)
	c.SetDefault(ConfigSearchDepthDeep, 3)
	c.SetDefault(ConfigSearchBranchingWide, 150)
	c.SetDefault(ConfigSearchBranchingNarrow, 40)
	c.SetDefault(ConfigSearchTimeLow, 15*time.Second)
	c.SetDefault(ConfigSearchTimeHigh, 90*time.Second)
	c.SetDefault(ConfigSearchSpaceLowMB, 64.0)

	c.SetDefault(ConfigOrderingMetric, "opponent-adjacency")
	c.SetDefault(ConfigOrderingDedup, false)
	c.SetDefault(ConfigRandomOpening, false)
	c.SetDefault(ConfigTimeLimit, 180*time.Second)

	c.SetDefault(ConfigAutoplayGames, 100)
	c.SetDefault(ConfigAutoplayThreads, 4)
	c.SetDefault(ConfigAutoplayLogfile, "/tmp/tetress-autoplay.yaml")
}

// Load reads the configuration from, in increasing order of precedence, the
// defaults, an optional YAML file named with --config, TETRESS_ environment
// variables and command-line flags.
func (c *Config) Load(args []string) error {
	c.Viper = viper.New()
	c.setDefaults()

	fs := pflag.NewFlagSet("tetress", pflag.ContinueOnError)
	// anything after the first non-flag argument is a shell command
	fs.SetInterspersed(false)
	fs.String(configFileFlag, "", "path to a YAML config file")
	fs.Int(ConfigBoardSize, 11, "side length of the board")
	fs.Int(ConfigMaxTurns, 150, "number of placements after which the game ends")
	fs.Bool(ConfigDebug, false, "debug logging on")
	fs.Int(ConfigSearchThreads, 1, "goroutines used to search root moves")
	fs.String(ConfigOrderingMetric, "opponent-adjacency", "move ordering: none, opponent-adjacency, empty-adjacency-difference, not-own-adjacency")
	fs.Bool(ConfigOrderingDedup, false, "keep only one move per ordering value (lossy)")
	fs.Bool(ConfigRandomOpening, false, "play a random opening placement")
	fs.Duration(ConfigTimeLimit, 180*time.Second, "thinking time per player per game")
	fs.Int(ConfigAutoplayGames, 100, "number of games for autoplay")
	fs.Int(ConfigAutoplayThreads, 4, "number of autoplay workers")
	fs.String(ConfigAutoplayLogfile, "/tmp/tetress-autoplay.yaml", "where autoplay writes its game records")
	if err := fs.Parse(args); err != nil {
		return err
	}
	c.args = fs.Args()
	if err := c.BindPFlags(fs); err != nil {
		return err
	}

	c.SetEnvPrefix("tetress")
	c.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.AutomaticEnv()

	if path, _ := fs.GetString(configFileFlag); path != "" {
		c.SetConfigFile(path)
		c.SetConfigType("yaml")
		if err := c.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file %s: %w", path, err)
		}
	}
	return c.Validate()
}

// Args are the command-line arguments left over after flags.
func (c *Config) Args() []string {
	return c.args
}

func (c *Config) Validate() error {
	if c.GetInt(ConfigBoardSize) < 4 {
		return fmt.Errorf("%w: %s must be at least 4", ErrBadConfig, ConfigBoardSize)
	}
	if c.GetInt(ConfigMaxTurns) < 1 {
		return fmt.Errorf("%w: %s must be positive", ErrBadConfig, ConfigMaxTurns)
	}
	for _, k := range []string{ConfigSearchDepthShallow, ConfigSearchDepthNormal, ConfigSearchDepthDeep} {
		if c.GetInt(k) < 1 {
			return fmt.Errorf("%w: %s must be at least 1", ErrBadConfig, k)
		}
	}
	if c.GetInt(ConfigSearchThreads) < 1 {
		return fmt.Errorf("%w: %s must be positive", ErrBadConfig, ConfigSearchThreads)
	}
	return nil
}

// LogLevel is the global zerolog level this config asks for.
func (c *Config) LogLevel() zerolog.Level {
	if c.GetBool(ConfigDebug) {
		return zerolog.DebugLevel
	}
	return zerolog.InfoLevel
}
