// Package policy produces extraction-level choices for the active player.
// Two interchangeable strategies sit behind one contract: a weighted-random
// draw conditioned on emotion, and a Gemini-backed delegate that falls back
// to the weighted draw on any failure.
package policy

import (
	"context"

	"github.com/quarrygames/extraction/internal/game"
)

// NeighborStatus is the read-only view of one adjacent player.
type NeighborStatus struct {
	ID      string
	Points  int
	Emotion game.Emotion
}

// Context is the read-only snapshot handed to a policy for one turn's
// choice. It is recomputed each turn and never persisted.
type Context struct {
	PlayerID  string
	Emotion   game.Emotion
	Points    int
	Round     int
	Turn      int
	TurnsDone int
	TurnsMax  int
	History   []game.ActionRecord
	Neighbors []NeighborStatus
}

// Decision is the outcome of one policy invocation. Rationale is carried
// into the action record for observability but never alters effects.
// Fallback marks decisions produced by the weighted fallback after a
// delegate failure.
type Decision struct {
	Level     game.Level
	Rationale string
	Fallback  bool
}

// Policy decides an extraction level for the active player. Policies must
// not mutate game state.
type Policy interface {
	Decide(ctx context.Context, dc Context) (Decision, error)
}
