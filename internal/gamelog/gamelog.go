// Package gamelog emits structured game events for external tracing and
// telemetry. The engine depends only on the Recorder interface; the JSONL
// writer is one sink, not a required backend.
package gamelog

import (
	"time"

	"github.com/quarrygames/extraction/internal/game"
)

// EventType identifies the kind of a game event.
type EventType string

const (
	// EventGameStart records the creation of a game instance.
	EventGameStart EventType = "game.start"
	// EventAction records one applied extraction.
	EventAction EventType = "game.action"
	// EventEmotionChange records one neighbor's emotion transition.
	EventEmotionChange EventType = "game.emotion_change"
	// EventGameEnd records termination with final standings.
	EventGameEnd EventType = "game.end"
)

// Event is one entry in the game's structured log.
type Event struct {
	GameID    string             `json:"game_id"`
	Type      EventType          `json:"type"`
	Round     int                `json:"round"`
	Turn      int                `json:"turn"`
	PlayerID  string             `json:"player_id,omitempty"`
	Message   string             `json:"message,omitempty"`
	Action    *game.ActionRecord `json:"action,omitempty"`
	Standings []game.Standing    `json:"standings,omitempty"`
	Details   map[string]any     `json:"details,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
}

// Recorder receives game events. Implementations must not block the game;
// the engine treats recording as best effort.
type Recorder interface {
	Record(ev Event) error
}

// Discard drops all events.
type Discard struct{}

func (Discard) Record(Event) error { return nil }

// Memory buffers events in order; used by tests and in-process consumers.
type Memory struct {
	Events []Event
}

func (m *Memory) Record(ev Event) error {
	m.Events = append(m.Events, ev)
	return nil
}
