package game

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidLevel indicates a level outside the playable range.
var ErrInvalidLevel = errors.New("invalid extraction level")

// ErrUnknownPlayer indicates an actor id not present in the game.
var ErrUnknownPlayer = errors.New("unknown player")

// ApplyAction applies one extraction to the state: the actor gains the
// level's points, each neighbor receives the level's pain and emotion
// transition, and the resulting record is appended to the history.
//
// The turn is all-or-nothing: every reference is validated before any
// mutation, so a failed call leaves the state exactly as it was.
func ApplyAction(s *State, actorID string, level Level, rationale string, fallback bool) (ActionRecord, error) {
	effect, ok := EffectFor(level)
	if !ok {
		return ActionRecord{}, fmt.Errorf("%w: %d", ErrInvalidLevel, level)
	}
	if _, ok := s.Player(actorID); !ok {
		return ActionRecord{}, fmt.Errorf("%w: %q", ErrUnknownPlayer, actorID)
	}

	// Stage neighbor effects without touching the state yet.
	var neighborEffects []NeighborEffect
	if effect.Pain != PainNone {
		for _, id := range s.Neighbors(actorID) {
			n, ok := s.Player(id)
			if !ok {
				return ActionRecord{}, fmt.Errorf("%w: neighbor %q", ErrUnknownPlayer, id)
			}
			after := n.Emotion
			if next, ok := effect.Transition[n.Emotion]; ok {
				after = next
			}
			neighborEffects = append(neighborEffects, NeighborEffect{
				PlayerID:      id,
				Pain:          effect.Pain,
				EmotionBefore: n.Emotion,
				EmotionAfter:  after,
			})
		}
	}

	rec := ActionRecord{
		Round:     s.Round(),
		Turn:      s.TurnInRound(),
		Actor:     actorID,
		Level:     level,
		Points:    effect.Points,
		Rationale: rationale,
		Fallback:  fallback,
		Effects:   neighborEffects,
		Timestamp: time.Now().UTC(),
	}

	if err := s.ApplyPoints(actorID, effect.Points); err != nil {
		return ActionRecord{}, err
	}
	for _, ne := range neighborEffects {
		if err := s.SetEmotion(ne.PlayerID, ne.EmotionAfter); err != nil {
			return ActionRecord{}, err
		}
	}
	s.RecordAction(rec)
	return rec, nil
}
