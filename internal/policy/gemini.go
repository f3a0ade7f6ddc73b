package policy

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
	"gopkg.in/yaml.v3"

	"github.com/quarrygames/extraction/internal/game"
)

//go:embed prompts/decide.txt
var decidePrompt string

// ErrDecisionService marks timeout, transport and parse failures from the
// external delegate. They are recovered via the weighted fallback and
// never abort a game.
var ErrDecisionService = errors.New("decision service")

// DefaultDecisionTimeout bounds one delegate call.
const DefaultDecisionTimeout = 5 * time.Second

// GenerativeModel is the slice of the genai client the policy needs.
// Fakes implement it to simulate delegate failures.
type GenerativeModel interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// Gemini delegates the choice to a Gemini model and falls back to a
// seeded weighted-random draw on timeout, transport failure or an
// unparseable response. The fallback consumes exactly one random draw per
// failed turn, so a game where the delegate always fails replays the
// weighted-only game for the same seed.
type Gemini struct {
	client   *genai.Client
	model    GenerativeModel
	fallback *WeightedRandom
	timeout  time.Duration
	tmpl     *template.Template
}

// NewGemini builds the delegate policy. A zero timeout uses
// DefaultDecisionTimeout.
func NewGemini(ctx context.Context, apiKey string, fallback *WeightedRandom, timeout time.Duration) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	g, err := NewGeminiWithModel(client.GenerativeModel("gemini-2.5-flash"), fallback, timeout)
	if err != nil {
		client.Close()
		return nil, err
	}
	g.client = client
	return g, nil
}

// NewGeminiWithModel wires an arbitrary model implementation; tests use
// it to simulate delegate failures.
func NewGeminiWithModel(model GenerativeModel, fallback *WeightedRandom, timeout time.Duration) (*Gemini, error) {
	if fallback == nil {
		return nil, fmt.Errorf("a weighted fallback is required")
	}
	if timeout <= 0 {
		timeout = DefaultDecisionTimeout
	}
	tmpl, err := template.New("decide").Parse(decidePrompt)
	if err != nil {
		return nil, err
	}
	return &Gemini{model: model, fallback: fallback, timeout: timeout, tmpl: tmpl}, nil
}

// Close releases the underlying client.
func (g *Gemini) Close() {
	if g.client != nil {
		g.client.Close()
	}
}

// Decide asks the delegate for a level and recovers any failure through
// the weighted fallback, marking the record's rationale so audits can see
// the fallback was used.
func (g *Gemini) Decide(ctx context.Context, dc Context) (Decision, error) {
	d, err := g.ask(ctx, dc)
	if err == nil {
		return d, nil
	}

	fd, ferr := g.fallback.Decide(ctx, dc)
	if ferr != nil {
		return Decision{}, ferr
	}
	fd.Fallback = true
	fd.Rationale = fmt.Sprintf("fallback: %v", err)
	return fd, nil
}

func (g *Gemini) ask(ctx context.Context, dc Context) (Decision, error) {
	var buf bytes.Buffer
	if err := g.tmpl.Execute(&buf, promptData(dc)); err != nil {
		return Decision{}, fmt.Errorf("%w: render prompt: %v", ErrDecisionService, err)
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.model.GenerateContent(ctx, genai.Text(buf.String()))
	if err != nil {
		return Decision{}, fmt.Errorf("%w: %v", ErrDecisionService, err)
	}
	// A safety-blocked candidate carries a finish reason but nil content.
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return Decision{}, fmt.Errorf("%w: empty response", ErrDecisionService)
	}
	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return Decision{}, fmt.Errorf("%w: unexpected response part", ErrDecisionService)
	}

	cleanYAML := strings.TrimSpace(string(text))
	cleanYAML = strings.TrimPrefix(cleanYAML, "```yaml")
	cleanYAML = strings.TrimPrefix(cleanYAML, "```")
	cleanYAML = strings.TrimSuffix(cleanYAML, "```")

	var result struct {
		Level     int    `yaml:"level"`
		Reasoning string `yaml:"reasoning"`
	}
	if err := yaml.Unmarshal([]byte(cleanYAML), &result); err != nil {
		return Decision{}, fmt.Errorf("%w: parse response: %v", ErrDecisionService, err)
	}
	level := game.Level(result.Level)
	if !level.Valid() {
		return Decision{}, fmt.Errorf("%w: level %d out of range", ErrDecisionService, result.Level)
	}
	return Decision{Level: level, Rationale: result.Reasoning}, nil
}

type decidePromptData struct {
	PlayerID       string
	Points         int
	Emotion        game.Emotion
	TurnNumber     int
	TotalTurns     int
	NeighborStatus string
	Memory         string
	EmotionContext string
}

func promptData(dc Context) decidePromptData {
	return decidePromptData{
		PlayerID:       dc.PlayerID,
		Points:         dc.Points,
		Emotion:        dc.Emotion,
		TurnNumber:     dc.TurnsDone + 1,
		TotalTurns:     dc.TurnsMax,
		NeighborStatus: formatNeighbors(dc.Neighbors),
		Memory:         formatMemory(dc.History),
		EmotionContext: emotionContext(dc.Emotion),
	}
}

func formatNeighbors(neighbors []NeighborStatus) string {
	if len(neighbors) == 0 {
		return "No adjacent players."
	}
	var lines []string
	for _, n := range neighbors {
		lines = append(lines, fmt.Sprintf("- %s: %d points, emotion: %s", n.ID, n.Points, n.Emotion))
	}
	return strings.Join(lines, "\n")
}

func formatMemory(history []game.ActionRecord) string {
	if len(history) == 0 {
		return "No previous decisions yet."
	}
	recent := history
	if len(recent) > 3 {
		recent = recent[len(recent)-3:]
	}
	var lines []string
	for _, rec := range recent {
		outcome := "no one became angry"
		var angered []string
		for _, e := range rec.Effects {
			if e.Changed() && e.EmotionAfter == game.EmotionAngry {
				angered = append(angered, e.PlayerID)
			}
		}
		if len(angered) > 0 {
			outcome = fmt.Sprintf("made %s angry", strings.Join(angered, ", "))
		}
		lines = append(lines, fmt.Sprintf("Round %d: chose level %d (+%d points) - %s",
			rec.Round+1, rec.Level, rec.Points, outcome))
	}
	return strings.Join(lines, "\n")
}

func emotionContext(e game.Emotion) string {
	switch e {
	case game.EmotionAngry:
		return "You are ANGRY! The pain inflicted on you demands retribution. You feel a strong urge to extract at level 3 to hurt those who hurt you."
	case game.EmotionNeutral:
		return "You are in a NEUTRAL emotional state. You can make a balanced decision based on the game situation."
	default:
		return "Consider the overall game dynamics in your decision."
	}
}
