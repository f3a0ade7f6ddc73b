package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsCanonical(t *testing.T) {
	cfg := Default()

	assert.Equal(t, []string{"Player1", "Player2", "Player3"}, cfg.Players)
	assert.Equal(t, 5, cfg.Rounds)
	assert.Equal(t, PolicyWeighted, cfg.Policy)
	assert.Nil(t, cfg.Adjacency, "nil adjacency means the complete graph")
	require.NoError(t, cfg.Validate())
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no players", func(c *Config) { c.Players = nil }},
		{"empty id", func(c *Config) { c.Players = []string{""} }},
		{"duplicate id", func(c *Config) { c.Players = []string{"A", "A"} }},
		{"zero rounds", func(c *Config) { c.Rounds = 0 }},
		{"negative rounds", func(c *Config) { c.Rounds = -1 }},
		{"unknown policy", func(c *Config) { c.Policy = "oracle" }},
		{"self adjacency", func(c *Config) { c.Adjacency = map[string][]string{"Player1": {"Player1"}} }},
		{"unknown adjacency source", func(c *Config) { c.Adjacency = map[string][]string{"Ghost": {"Player1"}} }},
		{"unknown adjacency target", func(c *Config) { c.Adjacency = map[string][]string{"Player1": {"Ghost"}} }},
		{"short weight row", func(c *Config) { c.Weights = map[string][]float64{"neutral": {1, 2}} }},
		{"negative weight", func(c *Config) { c.Weights = map[string][]float64{"neutral": {1, -1, 1}} }},
		{"zero weight total", func(c *Config) { c.Weights = map[string][]float64{"neutral": {0, 0, 0}} }},
		{"negative timeout", func(c *Config) { c.TimeoutSeconds = -1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}

func TestFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.yaml")
	body := `players: [alice, bob]
rounds: 2
policy: weighted
seed: 17
adjacency:
  alice: [bob]
weights:
  angry: [0, 0, 1]
decision_timeout_seconds: 3
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := FromFile(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, []string{"alice", "bob"}, cfg.Players)
	assert.Equal(t, 2, cfg.Rounds)
	assert.Equal(t, int64(17), cfg.Seed)
	assert.Equal(t, []string{"bob"}, cfg.Adjacency["alice"])
	assert.Equal(t, 3*time.Second, cfg.Timeout())
}

func TestFromFileMissing(t *testing.T) {
	_, err := FromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	t.Setenv("EXTRACTION_POLICY", PolicyWeighted)
	t.Setenv("EXTRACTION_SEED", "123")
	t.Setenv("EXTRACTION_ROUNDS", "7")
	t.Setenv("EXTRACTION_LOG", "/tmp/actions.jsonl")
	t.Setenv("EXTRACTION_CONFIG", "")
	t.Setenv("GEMINI_API_KEY", "")

	rt, err := Load()
	require.NoError(t, err)
	assert.Equal(t, int64(123), rt.Config.Seed)
	assert.Equal(t, 7, rt.Config.Rounds)
	assert.Equal(t, "/tmp/actions.jsonl", rt.LogPath)
}

func TestLoadRejectsInvalidOverrides(t *testing.T) {
	t.Setenv("EXTRACTION_POLICY", "oracle")
	t.Setenv("EXTRACTION_CONFIG", "")

	_, err := Load()
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestEnsureSeed(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.EnsureSeed())
	assert.NotZero(t, cfg.Seed)

	fixed := cfg
	fixed.Seed = 42
	require.NoError(t, fixed.EnsureSeed())
	assert.Equal(t, int64(42), fixed.Seed, "a configured seed is kept")
}
