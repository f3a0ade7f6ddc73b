package policy

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarrygames/extraction/internal/game"
)

type fakeModel struct {
	resp *genai.GenerateContentResponse
	err  error
}

func (f fakeModel) GenerateContent(context.Context, ...genai.Part) (*genai.GenerateContentResponse, error) {
	return f.resp, f.err
}

// blockingModel waits for the context to expire, like a stalled service.
type blockingModel struct{}

func (blockingModel) GenerateContent(ctx context.Context, _ ...genai.Part) (*genai.GenerateContentResponse, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func textResponse(s string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []genai.Part{genai.Text(s)}}},
		},
	}
}

func newFallback(t *testing.T, seed int64) *WeightedRandom {
	t.Helper()
	fb, err := NewWeightedRandom(nil, seed)
	require.NoError(t, err)
	return fb
}

func testContext() Context {
	return Context{
		PlayerID: "Player1",
		Emotion:  game.EmotionNeutral,
		TurnsMax: 15,
		Neighbors: []NeighborStatus{
			{ID: "Player2", Points: 3, Emotion: game.EmotionAngry},
			{ID: "Player3", Points: 1, Emotion: game.EmotionNeutral},
		},
	}
}

func TestGeminiParsesDelegateResponse(t *testing.T) {
	model := fakeModel{resp: textResponse("```yaml\nlevel: 2\nreasoning: steady gains without making enemies\n```")}
	g, err := NewGeminiWithModel(model, newFallback(t, 1), time.Second)
	require.NoError(t, err)

	d, err := g.Decide(context.Background(), testContext())
	require.NoError(t, err)
	assert.Equal(t, game.Level2, d.Level)
	assert.Equal(t, "steady gains without making enemies", d.Rationale)
	assert.False(t, d.Fallback)
}

func TestGeminiTransportErrorFallsBack(t *testing.T) {
	model := fakeModel{err: errors.New("connection refused")}
	g, err := NewGeminiWithModel(model, newFallback(t, 1), time.Second)
	require.NoError(t, err)

	d, err := g.Decide(context.Background(), testContext())
	require.NoError(t, err, "delegate failures never surface as game failures")
	assert.True(t, d.Fallback)
	assert.Contains(t, d.Rationale, "fallback:")
	assert.True(t, d.Level.Valid())
}

func TestGeminiMalformedResponseFallsBack(t *testing.T) {
	for name, body := range map[string]string{
		"not yaml":       "level three sounds good",
		"level too high": "level: 7\nreasoning: greed",
		"level zero":     "level: 0\nreasoning: abstain",
	} {
		t.Run(name, func(t *testing.T) {
			g, err := NewGeminiWithModel(fakeModel{resp: textResponse(body)}, newFallback(t, 1), time.Second)
			require.NoError(t, err)

			d, err := g.Decide(context.Background(), testContext())
			require.NoError(t, err)
			assert.True(t, d.Fallback)
		})
	}
}

func TestGeminiEmptyResponseFallsBack(t *testing.T) {
	g, err := NewGeminiWithModel(fakeModel{resp: &genai.GenerateContentResponse{}}, newFallback(t, 1), time.Second)
	require.NoError(t, err)

	d, err := g.Decide(context.Background(), testContext())
	require.NoError(t, err)
	assert.True(t, d.Fallback)
}

func TestGeminiNilContentCandidateFallsBack(t *testing.T) {
	// A safety-blocked response has a candidate with a finish reason but
	// no content.
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonSafety}},
	}
	g, err := NewGeminiWithModel(fakeModel{resp: resp}, newFallback(t, 1), time.Second)
	require.NoError(t, err)

	d, err := g.Decide(context.Background(), testContext())
	require.NoError(t, err)
	assert.True(t, d.Fallback)
	assert.Contains(t, d.Rationale, "fallback:")
	assert.True(t, d.Level.Valid())
}

func TestGeminiTimeoutFallsBack(t *testing.T) {
	g, err := NewGeminiWithModel(blockingModel{}, newFallback(t, 1), 20*time.Millisecond)
	require.NoError(t, err)

	start := time.Now()
	d, err := g.Decide(context.Background(), testContext())
	require.NoError(t, err)
	assert.True(t, d.Fallback)
	assert.Less(t, time.Since(start), 2*time.Second, "timeout must bound the call")
}

func TestGeminiFallbackMatchesPureWeightedSequence(t *testing.T) {
	const seed = 1234
	ctx := context.Background()
	dc := testContext()

	g, err := NewGeminiWithModel(fakeModel{err: errors.New("down")}, newFallback(t, seed), time.Second)
	require.NoError(t, err)
	pure, err := NewWeightedRandom(nil, seed)
	require.NoError(t, err)

	for i := 0; i < 30; i++ {
		got, err := g.Decide(ctx, dc)
		require.NoError(t, err)
		want, err := pure.Decide(ctx, dc)
		require.NoError(t, err)
		assert.Equal(t, want.Level, got.Level, "turn %d", i)
	}
}

func TestGeminiRequiresFallback(t *testing.T) {
	_, err := NewGeminiWithModel(fakeModel{}, nil, time.Second)
	assert.Error(t, err)
}
