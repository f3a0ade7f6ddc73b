package main

import (
	"context"
	"fmt"
	"log"

	"github.com/charmbracelet/lipgloss"

	"github.com/quarrygames/extraction/internal/config"
	"github.com/quarrygames/extraction/internal/engine"
	"github.com/quarrygames/extraction/internal/gamelog"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	winnerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	rowStyle    = lipgloss.NewStyle().PaddingLeft(2)
)

func main() {
	ctx := context.Background()

	rt, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	var rec gamelog.Recorder = gamelog.Discard{}
	if rt.LogPath != "" {
		w, err := gamelog.NewJSONLWriter(rt.LogPath, rt.CompressLog)
		if err != nil {
			log.Fatalf("Failed to open action log: %v", err)
		}
		defer w.Close()
		rec = w
	}

	result, err := engine.Play(ctx, rt.Config, rec)
	if err != nil {
		log.Fatalf("Game failed: %v", err)
	}

	fmt.Println(renderResult(result))
}

func renderResult(res engine.Result) string {
	out := titleStyle.Render("Final standings") + "\n"
	for _, s := range res.Standings {
		out += rowStyle.Render(fmt.Sprintf("%d. %-10s %3d points (%s)", s.Rank, s.PlayerID, s.Points, s.Emotion)) + "\n"
	}
	out += winnerStyle.Render(fmt.Sprintf("Winner: %s", res.Winner))
	out += fmt.Sprintf("\nGame %s: %d rounds, %d actions, seed %d", res.GameID, res.Rounds, len(res.History), res.Seed)
	return out
}
