package game

import (
	"fmt"
	"sort"
)

// Player is one participant. Owned by State; mutated only through the
// effect engine and the state's own turn accounting.
type Player struct {
	ID      string         `yaml:"id" json:"id"`
	Points  int            `yaml:"points" json:"points"`
	Emotion Emotion        `yaml:"emotion" json:"emotion"`
	History []ActionRecord `yaml:"history,omitempty" json:"history,omitempty"`
}

// Standing is one row of the final (or interim) scoreboard.
type Standing struct {
	Rank     int     `yaml:"rank" json:"rank"`
	PlayerID string  `yaml:"player_id" json:"player_id"`
	Points   int     `yaml:"points" json:"points"`
	Emotion  Emotion `yaml:"emotion" json:"emotion"`
}

// State is the single source of truth for one game: players, adjacency,
// turn counters and the append-only action history. It lives for exactly
// one game and is never shared between games.
type State struct {
	order   []*Player // insertion order doubles as the round-robin queue
	players map[string]*Player
	graph   *Graph

	round int // completed full rounds
	turn  int // turn within the current round

	history []ActionRecord
}

// NewState builds a fresh state with all players at zero points and
// neutral emotion.
func NewState(ids []string, g *Graph) (*State, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("at least one player is required")
	}
	s := &State{
		players: make(map[string]*Player, len(ids)),
		graph:   g,
	}
	for _, id := range ids {
		if _, dup := s.players[id]; dup {
			return nil, fmt.Errorf("duplicate player id %q", id)
		}
		p := &Player{ID: id, Emotion: EmotionNeutral}
		s.players[id] = p
		s.order = append(s.order, p)
	}
	return s, nil
}

// snapshot returns a detached copy, history included.
func (p *Player) snapshot() Player {
	out := *p
	out.History = make([]ActionRecord, len(p.History))
	copy(out.History, p.History)
	return out
}

// CurrentPlayer returns a copy of the player whose turn it is, by strict
// round-robin over the insertion order.
func (s *State) CurrentPlayer() Player {
	return s.order[s.turn].snapshot()
}

// Player looks up a player by id. The returned copy keeps callers from
// mutating players outside ApplyPoints and SetEmotion.
func (s *State) Player(id string) (Player, bool) {
	p, ok := s.players[id]
	if !ok {
		return Player{}, false
	}
	return p.snapshot(), true
}

// PlayerIDs returns the player ids in insertion order.
func (s *State) PlayerIDs() []string {
	ids := make([]string, len(s.order))
	for i, p := range s.order {
		ids[i] = p.ID
	}
	return ids
}

// PlayerCount returns the number of players.
func (s *State) PlayerCount() int { return len(s.order) }

// Neighbors returns the ids affected by the given player's actions.
func (s *State) Neighbors(id string) []string {
	return s.graph.Neighbors(id)
}

// ApplyPoints adds a point delta to a player. Totals never go negative.
func (s *State) ApplyPoints(id string, delta int) error {
	p, ok := s.players[id]
	if !ok {
		return fmt.Errorf("apply points: unknown player %q", id)
	}
	if p.Points+delta < 0 {
		return fmt.Errorf("apply points: %q would drop below zero", id)
	}
	p.Points += delta
	return nil
}

// SetEmotion sets a player's emotion.
func (s *State) SetEmotion(id string, e Emotion) error {
	p, ok := s.players[id]
	if !ok {
		return fmt.Errorf("set emotion: unknown player %q", id)
	}
	p.Emotion = e
	return nil
}

// RecordAction appends the record to the game history and the actor's own
// history.
func (s *State) RecordAction(rec ActionRecord) {
	s.history = append(s.history, rec)
	if p, ok := s.players[rec.Actor]; ok {
		p.History = append(p.History, rec)
	}
}

// AdvanceTurn moves to the next turn, wrapping into a new round after the
// last player.
func (s *State) AdvanceTurn() {
	s.turn++
	if s.turn == len(s.order) {
		s.turn = 0
		s.round++
	}
}

// IsRoundComplete reports whether the last AdvanceTurn wrapped into a new
// round.
func (s *State) IsRoundComplete() bool { return s.turn == 0 }

// Round returns the number of completed full rounds.
func (s *State) Round() int { return s.round }

// TurnInRound returns the zero-based turn index within the current round.
func (s *State) TurnInRound() int { return s.turn }

// TurnsCompleted returns the total number of turns played so far.
func (s *State) TurnsCompleted() int { return s.round*len(s.order) + s.turn }

// History returns the full action history. The returned slice is a copy;
// the records themselves are immutable.
func (s *State) History() []ActionRecord {
	out := make([]ActionRecord, len(s.history))
	copy(out, s.history)
	return out
}

// Standings returns players sorted by points descending. Ties keep the
// players' insertion order (stable sort).
func (s *State) Standings() []Standing {
	ranked := make([]*Player, len(s.order))
	copy(ranked, s.order)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Points > ranked[j].Points
	})

	out := make([]Standing, len(ranked))
	for i, p := range ranked {
		out[i] = Standing{Rank: i + 1, PlayerID: p.ID, Points: p.Points, Emotion: p.Emotion}
	}
	return out
}
