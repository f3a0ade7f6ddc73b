package policy

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/quarrygames/extraction/internal/game"
)

// Weights maps an emotion to per-level probability weights, index 0 being
// level 1. Rows need not sum to 1; they are normalized at draw time.
type Weights map[game.Emotion][]float64

// DefaultWeights returns the canonical table: neutral players favor low
// levels, angry players carry the revenge bias toward level 3.
func DefaultWeights() Weights {
	return Weights{
		game.EmotionNeutral: {0.6, 0.3, 0.1},
		game.EmotionAngry:   {0.1, 0.2, 0.7},
	}
}

// Validate checks that every row has one non-negative weight per level and
// a positive total.
func (w Weights) Validate() error {
	for emotion, row := range w {
		if len(row) != 3 {
			return fmt.Errorf("weights for %q: want 3 entries, got %d", emotion, len(row))
		}
		total := 0.0
		for i, v := range row {
			if v < 0 {
				return fmt.Errorf("weights for %q: level %d weight is negative", emotion, i+1)
			}
			total += v
		}
		if total <= 0 {
			return fmt.Errorf("weights for %q: total weight must be positive", emotion)
		}
	}
	return nil
}

// WeightedRandom draws a level from the emotion-conditioned table using a
// seeded source, so a fixed seed reproduces the full sequence of choices.
type WeightedRandom struct {
	weights Weights
	rng     *rand.Rand
}

// NewWeightedRandom builds the policy. Nil weights use the default table.
func NewWeightedRandom(weights Weights, seed int64) (*WeightedRandom, error) {
	if weights == nil {
		weights = DefaultWeights()
	}
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	if _, ok := weights[game.EmotionNeutral]; !ok {
		return nil, fmt.Errorf("weights must cover the neutral emotion")
	}
	return &WeightedRandom{
		weights: weights,
		rng:     rand.New(rand.NewSource(seed)),
	}, nil
}

// Decide draws one level. Emotions missing from the table use the neutral
// row. Exactly one random draw is consumed per call.
func (p *WeightedRandom) Decide(_ context.Context, dc Context) (Decision, error) {
	row, ok := p.weights[dc.Emotion]
	if !ok {
		row = p.weights[game.EmotionNeutral]
	}

	total := 0.0
	for _, v := range row {
		total += v
	}
	r := p.rng.Float64() * total
	for i, v := range row {
		r -= v
		if r < 0 {
			return Decision{Level: game.Level(i + 1)}, nil
		}
	}
	return Decision{Level: game.Level(len(row))}, nil
}
