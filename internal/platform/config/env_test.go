package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type envTestConfig struct {
	Port  int           `env:"ARENA_TEST_PORT" envDefault:"123"`
	Flush time.Duration `env:"ARENA_TEST_FLUSH" envDefault:"2s"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig

	require.NoError(t, ParseEnv(&cfg))
	require.Equal(t, 123, cfg.Port)
	require.Equal(t, 2*time.Second, cfg.Flush)
}

func TestParseEnvError(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("ARENA_TEST_PORT", "not-an-int")

	err := ParseEnv(&cfg)
	require.Error(t, err)
	require.Contains(t, err.Error(), "parse env:")
}

func TestParseEnvWithEnvironment(t *testing.T) {
	t.Parallel()

	var cfg envTestConfig
	require.NoError(t, ParseEnvWithEnvironment(&cfg, map[string]string{
		"ARENA_TEST_PORT":  "9001",
		"ARENA_TEST_FLUSH": "250ms",
	}))
	require.Equal(t, 9001, cfg.Port)
	require.Equal(t, 250*time.Millisecond, cfg.Flush)
}
