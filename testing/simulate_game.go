package main

import (
	"context"
	"fmt"
	"log"

	"github.com/quarrygames/extraction/internal/config"
	"github.com/quarrygames/extraction/internal/engine"
	"github.com/quarrygames/extraction/internal/gamelog"
)

// Plays one full game against the live Gemini delegate and dumps every
// turn, so the prompt and the fallback path can be eyeballed end to end.
func main() {
	ctx := context.Background()

	rt, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg := rt.Config
	cfg.Policy = config.PolicyGemini

	var events gamelog.Memory
	result, err := engine.Play(ctx, cfg, &events)
	if err != nil {
		log.Fatalf("Simulation failed: %v", err)
	}

	for _, rec := range result.History {
		fmt.Printf("--- Round %d, turn %d: %s ---\n", rec.Round+1, rec.Turn+1, rec.Actor)
		fmt.Printf("Level %d (+%d points)\n", rec.Level, rec.Points)
		if rec.Rationale != "" {
			fmt.Printf("Reasoning: %s\n", rec.Rationale)
		}
		if rec.Fallback {
			fmt.Println("(weighted fallback used)")
		}
		for _, e := range rec.Effects {
			fmt.Printf("  %s: %s pain, %s -> %s\n", e.PlayerID, e.Pain, e.EmotionBefore, e.EmotionAfter)
		}
	}

	fmt.Printf("\n%d events recorded\n", len(events.Events))
	for _, s := range result.Standings {
		fmt.Printf("%d. %s: %d points\n", s.Rank, s.PlayerID, s.Points)
	}
	fmt.Printf("Winner: %s\n", result.Winner)
}
