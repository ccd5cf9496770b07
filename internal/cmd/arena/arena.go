// Package arena parses arena daemon flags and launches the runtime.
package arena

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/louisbranch/ffa-arena/internal/arena/app"
	entrypoint "github.com/louisbranch/ffa-arena/internal/platform/cmd"
	"github.com/louisbranch/ffa-arena/internal/platform/logging"
)

// Config holds arena command configuration.
type Config struct {
	Port         int           `env:"ARENA_PORT"          envDefault:"8095"`
	DataDir      string        `env:"ARENA_DATA_DIR"      envDefault:"data"`
	StoreDriver  string        `env:"ARENA_STORE_DRIVER"  envDefault:"sqlite"`
	StorePath    string        `env:"ARENA_STORE_PATH"`
	KitPath      string        `env:"ARENA_KIT_PATH"`
	LogLevel     string        `env:"ARENA_LOG_LEVEL"     envDefault:"info"`
	FlushTimeout time.Duration `env:"ARENA_FLUSH_TIMEOUT" envDefault:"5s"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The arena gRPC health port")
	fs.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "Directory for the stats store and kit")
	fs.StringVar(&cfg.StoreDriver, "store-driver", cfg.StoreDriver, "Stats store driver (sqlite or bbolt)")
	fs.StringVar(&cfg.StorePath, "store-path", cfg.StorePath, "Stats store file path")
	fs.StringVar(&cfg.KitPath, "kit-path", cfg.KitPath, "Kit document path")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level")
	fs.DurationVar(&cfg.FlushTimeout, "flush-timeout", cfg.FlushTimeout, "How long shutdown waits for pending stats writes")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}

	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))
	switch cfg.StoreDriver {
	case app.DriverSQLite, app.DriverBBolt:
	default:
		return Config{}, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}
	if cfg.FlushTimeout <= 0 {
		return Config{}, fmt.Errorf("flush timeout must be positive")
	}
	if strings.TrimSpace(cfg.StorePath) == "" {
		cfg.StorePath = filepath.Join(cfg.DataDir, defaultStoreFile(cfg.StoreDriver))
	}
	if strings.TrimSpace(cfg.KitPath) == "" {
		cfg.KitPath = filepath.Join(cfg.DataDir, "kit.json")
	}
	return cfg, nil
}

func defaultStoreFile(driver string) string {
	if driver == app.DriverBBolt {
		return "arena.bolt"
	}
	return "arena.db"
}

// Run starts the arena runtime and serves until ctx is canceled.
func Run(ctx context.Context, cfg Config) error {
	logger := logging.New(os.Stderr, cfg.LogLevel).With().Str("service", entrypoint.ServiceArena).Logger()
	options := entrypoint.RunOptions{Logger: &logger}
	return entrypoint.RunWithTelemetryAndOptions(ctx, entrypoint.ServiceArena, options, func(ctx context.Context) error {
		srv, err := app.New(app.Config{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			StoreDriver:  cfg.StoreDriver,
			StorePath:    cfg.StorePath,
			KitPath:      cfg.KitPath,
			FlushTimeout: cfg.FlushTimeout,
			Logger:       logger,
		})
		if err != nil {
			return err
		}
		defer srv.Close()
		return srv.Serve(ctx)
	})
}
