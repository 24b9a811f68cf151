package main

import (
	"context"
	"flag"
	"os"

	"go.uber.org/zap"

	"github.com/abhishek017/GradPilot/internal/config"
	"github.com/abhishek017/GradPilot/internal/graduate"
	"github.com/abhishek017/GradPilot/internal/importer"
	"github.com/abhishek017/GradPilot/internal/store"
)

// One-shot loader for the booking-sheet CSV export. Re-running with the
// same file is safe: rows are matched by Unique ID and updated in place.
func main() {
	csvPath := flag.String("csv", "", "path to the CSV export (required)")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if *csvPath == "" {
		logger.Fatal("usage: importer -csv <path>")
	}

	cfg := config.Load()

	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("db connect failed", zap.Error(err))
	}
	defer db.Close()

	f, err := os.Open(*csvPath)
	if err != nil {
		logger.Fatal("open csv failed", zap.Error(err))
	}
	defer f.Close()

	repo := graduate.NewRepository(db.Client)
	rep, err := importer.Run(context.Background(), f, repo, logger)
	for _, w := range rep.Warnings {
		logger.Warn(w)
	}
	if err != nil {
		logger.Fatal("import failed", zap.Error(err))
	}

	logger.Info("import completed",
		zap.Int("created", rep.Created),
		zap.Int("updated", rep.Updated),
		zap.Int("skipped", rep.Skipped))
}
