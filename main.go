package main

import (
	"context"
	"fmt"
	"os"

	"github.com/quarrygames/extraction/internal/config"
	"github.com/quarrygames/extraction/internal/engine"
	"github.com/quarrygames/extraction/internal/gamelog"
)

// Runs one canonical game with the weighted-random policy and prints the
// outcome. See cmd/game for the configurable runner.
func main() {
	result, err := engine.Play(context.Background(), config.Default(), gamelog.Discard{})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	for _, s := range result.Standings {
		fmt.Printf("%d. %s: %d points (%s)\n", s.Rank, s.PlayerID, s.Points, s.Emotion)
	}
	fmt.Printf("Winner: %s (seed %d)\n", result.Winner, result.Seed)
}
