package game

import "time"

// NeighborEffect records what one neighbor received from an action,
// including the emotion transition even when it is a no-op, so mild and
// intense pain stay distinguishable in the history.
type NeighborEffect struct {
	PlayerID      string  `yaml:"player_id" json:"player_id"`
	Pain          Pain    `yaml:"pain" json:"pain"`
	EmotionBefore Emotion `yaml:"emotion_before" json:"emotion_before"`
	EmotionAfter  Emotion `yaml:"emotion_after" json:"emotion_after"`
}

// Changed reports whether the effect transitioned the neighbor's emotion.
func (e NeighborEffect) Changed() bool {
	return e.EmotionBefore != e.EmotionAfter
}

// ActionRecord is the immutable record of one turn's action. Records are
// appended to the game history and never mutated or removed.
type ActionRecord struct {
	Round     int              `yaml:"round" json:"round"`
	Turn      int              `yaml:"turn" json:"turn"`
	Actor     string           `yaml:"actor" json:"actor"`
	Level     Level            `yaml:"level" json:"level"`
	Points    int              `yaml:"points" json:"points"`
	Rationale string           `yaml:"rationale,omitempty" json:"rationale,omitempty"`
	Fallback  bool             `yaml:"fallback,omitempty" json:"fallback,omitempty"`
	Effects   []NeighborEffect `yaml:"effects,omitempty" json:"effects,omitempty"`
	Timestamp time.Time        `yaml:"timestamp" json:"timestamp"`
}
