// Package config loads and validates game configuration. An empty
// configuration produces the canonical game: 3 players in a triangle,
// 5 rounds, weighted-random decisions.
package config

import (
	crand "crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// ErrInvalid marks configuration errors. They are raised at
// initialization and are fatal to the game instance.
var ErrInvalid = errors.New("invalid configuration")

// Policy selection values.
const (
	PolicyWeighted = "weighted"
	PolicyGemini   = "gemini"
)

// Config describes one game. A nil Adjacency means the complete graph
// over the configured players.
type Config struct {
	Players   []string            `yaml:"players"`
	Adjacency map[string][]string `yaml:"adjacency,omitempty"`
	Rounds    int                 `yaml:"rounds"`

	// Seed drives the weighted-random draws. Zero is the unset sentinel:
	// EnsureSeed replaces it with a crypto-random value and a zero
	// EXTRACTION_SEED override is ignored, so a game cannot be pinned to
	// a literal zero seed.
	Seed int64 `yaml:"seed,omitempty"`

	Policy  string               `yaml:"policy"`
	Weights map[string][]float64 `yaml:"weights,omitempty"`

	// TimeoutSeconds bounds one external decision call. Zero uses the
	// policy default.
	TimeoutSeconds int `yaml:"decision_timeout_seconds,omitempty"`

	GeminiAPIKey string `yaml:"-"`
}

// envOverrides are the environment knobs layered over file defaults.
type envOverrides struct {
	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	ConfigPath   string `env:"EXTRACTION_CONFIG"`
	LogPath      string `env:"EXTRACTION_LOG"`
	CompressLog  bool   `env:"EXTRACTION_LOG_COMPRESS"`
	Policy       string `env:"EXTRACTION_POLICY"`
	Seed         int64  `env:"EXTRACTION_SEED"`
	Rounds       int    `env:"EXTRACTION_ROUNDS"`
}

// Default returns the canonical configuration.
func Default() Config {
	return Config{
		Players: []string{"Player1", "Player2", "Player3"},
		Rounds:  5,
		Policy:  PolicyWeighted,
	}
}

// Runtime is the full process configuration: the game itself plus where
// cmd glue writes the structured action log (empty means no file sink).
type Runtime struct {
	Config      Config
	LogPath     string
	CompressLog bool
}

// Load builds the runtime configuration: canonical defaults, then the
// optional YAML file named by EXTRACTION_CONFIG, then env overrides.
func Load() (Runtime, error) {
	var ov envOverrides
	if err := env.Parse(&ov); err != nil {
		return Runtime{}, fmt.Errorf("%w: parse env: %v", ErrInvalid, err)
	}

	cfg := Default()
	if ov.ConfigPath != "" {
		loaded, err := FromFile(ov.ConfigPath)
		if err != nil {
			return Runtime{}, err
		}
		cfg = loaded
	}
	if ov.Policy != "" {
		cfg.Policy = ov.Policy
	}
	if ov.Seed != 0 {
		cfg.Seed = ov.Seed
	}
	if ov.Rounds != 0 {
		cfg.Rounds = ov.Rounds
	}
	cfg.GeminiAPIKey = ov.GeminiAPIKey

	if err := cfg.Validate(); err != nil {
		return Runtime{}, err
	}
	return Runtime{Config: cfg, LogPath: ov.LogPath, CompressLog: ov.CompressLog}, nil
}

// FromFile reads a YAML game file. Fields absent from the file keep the
// canonical defaults.
func FromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: read %s: %v", ErrInvalid, path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: parse %s: %v", ErrInvalid, path, err)
	}
	return cfg, nil
}

// Validate checks player set, topology, round count, policy selection and
// weight rows. All violations wrap ErrInvalid.
func (c Config) Validate() error {
	if len(c.Players) == 0 {
		return fmt.Errorf("%w: at least one player is required", ErrInvalid)
	}
	seen := make(map[string]bool, len(c.Players))
	for _, id := range c.Players {
		if id == "" {
			return fmt.Errorf("%w: empty player id", ErrInvalid)
		}
		if seen[id] {
			return fmt.Errorf("%w: duplicate player id %q", ErrInvalid, id)
		}
		seen[id] = true
	}
	if c.Rounds <= 0 {
		return fmt.Errorf("%w: round count must be positive, got %d", ErrInvalid, c.Rounds)
	}
	switch c.Policy {
	case PolicyWeighted, PolicyGemini:
	default:
		return fmt.Errorf("%w: unknown policy %q", ErrInvalid, c.Policy)
	}
	for from, tos := range c.Adjacency {
		if !seen[from] {
			return fmt.Errorf("%w: adjacency references unknown player %q", ErrInvalid, from)
		}
		for _, to := range tos {
			if !seen[to] {
				return fmt.Errorf("%w: adjacency references unknown player %q", ErrInvalid, to)
			}
			if to == from {
				return fmt.Errorf("%w: player %q cannot be adjacent to itself", ErrInvalid, from)
			}
		}
	}
	for emotion, row := range c.Weights {
		if len(row) != 3 {
			return fmt.Errorf("%w: weights for %q: want 3 entries, got %d", ErrInvalid, emotion, len(row))
		}
		total := 0.0
		for _, v := range row {
			if v < 0 {
				return fmt.Errorf("%w: weights for %q contain a negative entry", ErrInvalid, emotion)
			}
			total += v
		}
		if total <= 0 {
			return fmt.Errorf("%w: weights for %q must have a positive total", ErrInvalid, emotion)
		}
	}
	if c.TimeoutSeconds < 0 {
		return fmt.Errorf("%w: decision timeout must not be negative", ErrInvalid)
	}
	return nil
}

// Timeout returns the configured decision timeout, or zero when unset.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// EnsureSeed fills in a crypto-random seed when none was configured
// (zero, per the Seed sentinel), so every run stays reproducible from
// its recorded seed.
func (c *Config) EnsureSeed() error {
	if c.Seed != 0 {
		return nil
	}
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return fmt.Errorf("read random seed: %w", err)
	}
	c.Seed = int64(binary.LittleEndian.Uint64(b[:]))
	return nil
}
