package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/cardgrid/scramble/pkg/board"
	"github.com/cardgrid/scramble/pkg/boardfile"
	"github.com/cardgrid/scramble/pkg/log"
	"github.com/cardgrid/scramble/pkg/simulation"
)

func main() {
	boardFile := flag.String("board", "boards/ab.txt", "Path to the board file to load")
	players := flag.Int("players", 4, "Number of concurrent players")
	moves := flag.Int("moves", 100, "Moves per player (each move is two flips)")
	minDelay := flag.Duration("min-delay", 100*time.Microsecond, "Minimum delay between flips")
	maxDelay := flag.Duration("max-delay", 2*time.Millisecond, "Maximum delay between flips")
	logLevel := flag.String("log-level", "info", "Log level")
	flag.Parse()

	parsedLogLevel, err := log.ParseLogLevel(*logLevel)
	if err != nil {
		panic(fmt.Sprintf("Failed to parse log level: %v", err))
	}
	log.SetDefaultLogger(log.New(os.Stdout, "", log.DefaultLoggerFlag, parsedLogLevel))

	layout, err := boardfile.ParseFile(*boardFile)
	if err != nil {
		log.Error("Failed to load board file %s: %v", *boardFile, err)
		os.Exit(1)
	}
	b, err := board.New(layout)
	if err != nil {
		log.Error("Failed to create board: %v", err)
		os.Exit(1)
	}

	log.Info("Starting simulation: %d players, %d moves each on a %dx%d board", *players, *moves, b.Rows(), b.Cols())

	reports, err := simulation.Run(context.Background(), simulation.Options{
		Board:    b,
		Players:  *players,
		Moves:    *moves,
		MinDelay: *minDelay,
		MaxDelay: *maxDelay,
	})
	if err != nil {
		log.Error("Simulation failed: %v", err)
		os.Exit(1)
	}

	for _, report := range reports {
		log.Info("Player %s: %d turned up, %d matched, %d mismatched, %d failed, %d timed out",
			report.Player, report.TurnedUp, report.Matched, report.Mismatched, report.Failed, report.Cancelled)
	}
	log.Info("Simulation completed without crashes")
}
