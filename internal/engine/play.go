package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/quarrygames/extraction/internal/config"
	"github.com/quarrygames/extraction/internal/game"
	"github.com/quarrygames/extraction/internal/gamelog"
	"github.com/quarrygames/extraction/internal/policy"
)

func nowUTC() time.Time { return time.Now().UTC() }

// Play is the single entry point for callers: it resolves the seed,
// builds the configured decision policy, runs one full game and returns
// the final standings and complete action history.
func Play(ctx context.Context, cfg config.Config, rec gamelog.Recorder) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}
	if err := cfg.EnsureSeed(); err != nil {
		return Result{}, err
	}

	pol, closePolicy, err := buildPolicy(ctx, cfg)
	if err != nil {
		return Result{}, err
	}
	defer closePolicy()

	g, err := New(cfg, pol, rec)
	if err != nil {
		return Result{}, err
	}
	return g.Run(ctx)
}

func buildPolicy(ctx context.Context, cfg config.Config) (policy.Policy, func(), error) {
	weights := policyWeights(cfg.Weights)
	weighted, err := policy.NewWeightedRandom(weights, cfg.Seed)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", config.ErrInvalid, err)
	}

	switch cfg.Policy {
	case config.PolicyWeighted:
		return weighted, func() {}, nil
	case config.PolicyGemini:
		if cfg.GeminiAPIKey == "" {
			return nil, nil, fmt.Errorf("%w: gemini policy requires GEMINI_API_KEY", config.ErrInvalid)
		}
		delegate, err := policy.NewGemini(ctx, cfg.GeminiAPIKey, weighted, cfg.Timeout())
		if err != nil {
			return nil, nil, err
		}
		return delegate, delegate.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown policy %q", config.ErrInvalid, cfg.Policy)
	}
}

func policyWeights(raw map[string][]float64) policy.Weights {
	if raw == nil {
		return nil
	}
	w := make(policy.Weights, len(raw))
	for emotion, row := range raw {
		w[game.Emotion(emotion)] = row
	}
	return w
}
