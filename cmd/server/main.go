package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/cardgrid/scramble/pkg/api"
	"github.com/cardgrid/scramble/pkg/board"
	"github.com/cardgrid/scramble/pkg/boardfile"
	"github.com/cardgrid/scramble/pkg/log"
	"github.com/cardgrid/scramble/pkg/queue"
	"github.com/cardgrid/scramble/pkg/repositories"
	"github.com/cardgrid/scramble/pkg/workers"
)

func main() {
	port := flag.Int("port", 8080, "HTTP port to listen on")
	boardFile := flag.String("board", "", "Path to the board file to load")
	dbPath := flag.String("db", "", "Path to a SQLite database for match history (optional)")
	logLevel := flag.String("log-level", "info", "Log level")
	flag.Parse()

	parsedLogLevel, err := log.ParseLogLevel(*logLevel)
	if err != nil {
		panic(fmt.Sprintf("Failed to parse log level: %v", err))
	}

	logger := log.New(os.Stdout, "", log.DefaultLoggerFlag, parsedLogLevel)
	log.SetDefaultLogger(logger)
	log.Info("Log level set to %s", parsedLogLevel)

	if *boardFile == "" {
		log.Error("Missing required -board flag")
		os.Exit(1)
	}

	ctx := context.Background()

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
	log.Info("Loaded %dx%d board from %s", b.Rows(), b.Cols(), *boardFile)

	repository := newRepository(ctx, *dbPath)
	defer repository.Close(ctx)

	eventQueue := queue.NewInMemoryQueue(10000)

	statsWorker := workers.NewStatsWorker(workers.NewStatsWorkerOptions{
		EventQueue: eventQueue,
		Repository: repository,
		Interval:   10 * time.Second,
	})
	go statsWorker.Start(ctx)

	server := api.NewAPIServer(api.NewAPIServerOptions{
		Port:       *port,
		Board:      b,
		EventQueue: eventQueue,
		Repository: repository,
	})
	server.Start()
}

func newRepository(ctx context.Context, dbPath string) repositories.Repository {
	if connStr := os.Getenv("DATABASE_URL"); connStr != "" {
		repository, err := repositories.NewPostgresRepository(ctx, connStr)
		if err != nil {
			log.Error("Failed to connect to postgres: %v", err)
			os.Exit(1)
		}
		return repository
	}
	if dbPath != "" {
		repository, err := repositories.NewSQLiteRepository(ctx, dbPath)
		if err != nil {
			log.Error("Failed to open sqlite database: %v", err)
			os.Exit(1)
		}
		return repository
	}
	log.Info("No database configured, keeping match history in memory")
	return repositories.NewInMemoryRepository()
}
