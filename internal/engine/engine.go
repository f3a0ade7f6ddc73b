// Package engine sequences the phases of one game: initialize, start
// turn, decide, apply effects, check end. It owns the only mutable state
// reference and delegates each turn's choice to a decision policy.
package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/quarrygames/extraction/internal/config"
	"github.com/quarrygames/extraction/internal/game"
	"github.com/quarrygames/extraction/internal/gamelog"
	"github.com/quarrygames/extraction/internal/policy"
)

// ErrInvalidTransition is returned when a finished game is advanced
// again. It signals a programming error in the caller.
var ErrInvalidTransition = errors.New("invalid transition: game is finished")

// Phase is a state of the turn machine.
type Phase int

const (
	PhaseUninitialized Phase = iota
	PhaseInitializing
	PhaseAwaitingTurn
	PhaseDecidingAction
	PhaseApplyingEffects
	PhaseCheckingEnd
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhaseUninitialized:
		return "Uninitialized"
	case PhaseInitializing:
		return "Initializing"
	case PhaseAwaitingTurn:
		return "AwaitingTurn"
	case PhaseDecidingAction:
		return "DecidingAction"
	case PhaseApplyingEffects:
		return "ApplyingEffects"
	case PhaseCheckingEnd:
		return "CheckingEnd"
	case PhaseFinished:
		return "Finished"
	default:
		return "Unknown"
	}
}

// Result is what a finished game exposes: final standings and the full
// action history.
type Result struct {
	GameID    string              `yaml:"game_id" json:"game_id"`
	Seed      int64               `yaml:"seed" json:"seed"`
	Rounds    int                 `yaml:"rounds" json:"rounds"`
	Players   []string            `yaml:"players" json:"players"`
	Winner    string              `yaml:"winner" json:"winner"`
	Standings []game.Standing     `yaml:"standings" json:"standings"`
	History   []game.ActionRecord `yaml:"history" json:"history"`
}

// Game is one game instance. Instances are independent: no state is
// shared between concurrently running games.
type Game struct {
	id       string
	cfg      config.Config
	state    *game.State
	policy   policy.Policy
	recorder gamelog.Recorder
	phase    Phase
}

// New initializes a game from the configuration. Configuration errors
// wrap config.ErrInvalid and are fatal to the instance.
func New(cfg config.Config, pol policy.Policy, rec gamelog.Recorder) (*Game, error) {
	g := &Game{phase: PhaseInitializing}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var graph *game.Graph
	if cfg.Adjacency == nil {
		graph = game.CompleteGraph(cfg.Players)
	} else {
		built, err := game.NewGraph(cfg.Players, cfg.Adjacency)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", config.ErrInvalid, err)
		}
		graph = built
	}
	state, err := game.NewState(cfg.Players, graph)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalid, err)
	}
	if pol == nil {
		return nil, fmt.Errorf("%w: a decision policy is required", config.ErrInvalid)
	}
	if rec == nil {
		rec = gamelog.Discard{}
	}

	g.id = uuid.NewString()
	g.cfg = cfg
	g.state = state
	g.policy = pol
	g.recorder = rec
	g.phase = PhaseAwaitingTurn

	g.emit(gamelog.Event{
		Type:    gamelog.EventGameStart,
		Message: fmt.Sprintf("game started with %d players", len(cfg.Players)),
		Details: map[string]any{
			"players": cfg.Players,
			"rounds":  cfg.Rounds,
			"seed":    cfg.Seed,
			"policy":  cfg.Policy,
		},
	})
	return g, nil
}

// ID returns the game instance id.
func (g *Game) ID() string { return g.id }

// Phase returns the current machine phase.
func (g *Game) Phase() Phase { return g.phase }

// State exposes the game state for read-only inspection.
func (g *Game) State() *game.State { return g.state }

// Step plays exactly one turn: select the current player, obtain a
// decision, apply its effects, advance the counters and evaluate the
// termination condition. A finished game returns ErrInvalidTransition.
// A failed turn leaves the state untouched.
func (g *Game) Step(ctx context.Context) error {
	if g.phase == PhaseFinished {
		return ErrInvalidTransition
	}

	g.phase = PhaseAwaitingTurn
	actor := g.state.CurrentPlayer()

	g.phase = PhaseDecidingAction
	decision, err := g.policy.Decide(ctx, g.decisionContext(actor))
	if err != nil {
		g.phase = PhaseAwaitingTurn
		return fmt.Errorf("decide for %s: %w", actor.ID, err)
	}

	g.phase = PhaseApplyingEffects
	rec, err := game.ApplyAction(g.state, actor.ID, decision.Level, decision.Rationale, decision.Fallback)
	if err != nil {
		g.phase = PhaseAwaitingTurn
		return fmt.Errorf("apply turn for %s: %w", actor.ID, err)
	}
	g.emitAction(rec)
	g.state.AdvanceTurn()

	g.phase = PhaseCheckingEnd
	if g.state.IsRoundComplete() && g.state.Round() >= g.cfg.Rounds {
		g.finish()
		return nil
	}
	g.phase = PhaseAwaitingTurn
	return nil
}

// Run plays turns until the game finishes, then returns the result.
func (g *Game) Run(ctx context.Context) (Result, error) {
	if g.phase == PhaseFinished {
		return Result{}, ErrInvalidTransition
	}
	for g.phase != PhaseFinished {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		if err := g.Step(ctx); err != nil {
			return Result{}, err
		}
	}
	return g.Result()
}

// Result returns the final standings and history of a finished game.
func (g *Game) Result() (Result, error) {
	if g.phase != PhaseFinished {
		return Result{}, fmt.Errorf("game is not finished (phase %s)", g.phase)
	}
	standings := g.state.Standings()
	return Result{
		GameID:    g.id,
		Seed:      g.cfg.Seed,
		Rounds:    g.cfg.Rounds,
		Players:   g.state.PlayerIDs(),
		Winner:    standings[0].PlayerID,
		Standings: standings,
		History:   g.state.History(),
	}, nil
}

func (g *Game) finish() {
	g.phase = PhaseFinished
	standings := g.state.Standings()
	g.emit(gamelog.Event{
		Type:      gamelog.EventGameEnd,
		Round:     g.state.Round(),
		Message:   fmt.Sprintf("game ended after %d rounds, winner: %s", g.cfg.Rounds, standings[0].PlayerID),
		Standings: standings,
		Details:   map[string]any{"total_turns": g.state.TurnsCompleted()},
	})
}

func (g *Game) decisionContext(actor game.Player) policy.Context {
	neighborIDs := g.state.Neighbors(actor.ID)
	neighbors := make([]policy.NeighborStatus, 0, len(neighborIDs))
	for _, id := range neighborIDs {
		if n, ok := g.state.Player(id); ok {
			neighbors = append(neighbors, policy.NeighborStatus{
				ID:      n.ID,
				Points:  n.Points,
				Emotion: n.Emotion,
			})
		}
	}
	return policy.Context{
		PlayerID:  actor.ID,
		Emotion:   actor.Emotion,
		Points:    actor.Points,
		Round:     g.state.Round(),
		Turn:      g.state.TurnInRound(),
		TurnsDone: g.state.TurnsCompleted(),
		TurnsMax:  g.cfg.Rounds * g.state.PlayerCount(),
		History:   actor.History,
		Neighbors: neighbors,
	}
}

func (g *Game) emitAction(rec game.ActionRecord) {
	g.emit(gamelog.Event{
		Type:     gamelog.EventAction,
		Round:    rec.Round,
		Turn:     rec.Turn,
		PlayerID: rec.Actor,
		Message:  fmt.Sprintf("%s extracted at level %d (+%d points)", rec.Actor, rec.Level, rec.Points),
		Action:   &rec,
	})
	for _, e := range rec.Effects {
		if !e.Changed() {
			continue
		}
		g.emit(gamelog.Event{
			Type:     gamelog.EventEmotionChange,
			Round:    rec.Round,
			Turn:     rec.Turn,
			PlayerID: e.PlayerID,
			Message:  fmt.Sprintf("%s's emotion changed from %s to %s", e.PlayerID, e.EmotionBefore, e.EmotionAfter),
			Details:  map[string]any{"caused_by": rec.Actor},
		})
	}
}

// emit records best-effort; a failing sink never aborts the game.
func (g *Game) emit(ev gamelog.Event) {
	ev.GameID = g.id
	if ev.Timestamp.IsZero() {
		ev.Timestamp = nowUTC()
	}
	_ = g.recorder.Record(ev)
}
