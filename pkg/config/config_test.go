package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 150, cfg.Rules.TurnCap)
	assert.Equal(t, 200, cfg.Search.Rollouts)
	assert.Equal(t, 7, cfg.Search.RandomUntilTurn)
	assert.Equal(t, time.Hour, cfg.Server.SessionTTL)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tetress.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
rules:
  turn_cap: 40
search:
  rollouts: 50
  order_children: true
server:
  session_ttl: 10m
log:
  format: json
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 40, cfg.Rules.TurnCap)
	assert.Equal(t, 50, cfg.Search.Rollouts)
	assert.True(t, cfg.Search.OrderChildren)
	assert.Equal(t, 10*time.Minute, cfg.Server.SessionTTL)
	assert.Equal(t, "json", cfg.Log.Format)
	// untouched keys keep their defaults
	assert.Equal(t, 5*time.Minute, cfg.Server.CleanupInterval)
	assert.Equal(t, ":8000", cfg.Server.Addr)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rules: [1, 2"), 0o644))
	_, err = Load(path)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("rules:\n  turn_cap: 2\n"), 0o644))
	_, err = Load(path)
	assert.ErrorContains(t, err, "turn_cap")
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("TETRESS_ROLLOUTS", "25")
	t.Setenv("TETRESS_ORDER_CHILDREN", "true")
	t.Setenv("TETRESS_SESSION_TTL", "90s")
	t.Setenv("TETRESS_LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.Search.Rollouts)
	assert.True(t, cfg.Search.OrderChildren)
	assert.Equal(t, 90*time.Second, cfg.Server.SessionTTL)
	assert.Equal(t, "debug", cfg.Logging().Level)
}

func TestEnvOverrideRejectsGarbage(t *testing.T) {
	env := map[string]string{"TETRESS_TURN_CAP": "many"}
	cfg := Default()
	err := cfg.applyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	assert.ErrorContains(t, err, "TETRESS_TURN_CAP")
}

func TestValidateCollectsErrors(t *testing.T) {
	cfg := Default()
	cfg.Search.Rollouts = 0
	cfg.Log.Format = "xml"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "search.rollouts")
	assert.Contains(t, err.Error(), "xml")
}

func TestValidateRejectsNonPositiveExploration(t *testing.T) {
	for _, c := range []float64{0, -0.5} {
		cfg := Default()
		cfg.Search.ExplorationConstant = c
		err := cfg.Validate()
		require.Error(t, err, "c=%v", c)
		assert.Contains(t, err.Error(), "search.exploration_constant")
	}
}
