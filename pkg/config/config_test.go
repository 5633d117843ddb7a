//go:build unit || !integration

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	path := t.TempDir()

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 1.0, cfg.UsageBenchmark)
	require.Equal(t, "usage-factor", cfg.DefaultStrategy)
	require.Equal(t, "exclude", cfg.InvalidOfferPolicy)
	require.Equal(t, filepath.Join(path, MarketStorePath), cfg.StorePath)
}

func TestLoadFromFile(t *testing.T) {
	path := t.TempDir()
	content := []byte("usagebenchmark: 2.5\ndefaultstrategy: pooling\n")
	require.NoError(t, os.WriteFile(filepath.Join(path, "config.yaml"), content, 0600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 2.5, cfg.UsageBenchmark)
	require.Equal(t, "pooling", cfg.DefaultStrategy)
	// untouched keys keep their defaults
	require.Equal(t, "exclude", cfg.InvalidOfferPolicy)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	path := t.TempDir()
	t.Setenv("GRIDPOOL_USAGEBENCHMARK", "4.0")
	t.Setenv("GRIDPOOL_INVALIDOFFERPOLICY", "demote")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 4.0, cfg.UsageBenchmark)
	require.Equal(t, "demote", cfg.InvalidOfferPolicy)
}
