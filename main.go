package main

import (
	"context"
	"os"

	"github.com/gdamore/tcell/v2"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/go-term/internal/config"
	"github.com/robalobadob/wordle/apps/go-term/internal/game"
	"github.com/robalobadob/wordle/apps/go-term/internal/store"
	"github.com/robalobadob/wordle/apps/go-term/internal/words"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	zerolog.SetGlobalLevel(cfg.LogLevel)

	// The terminal belongs to the UI, so logs go to a file.
	logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Fatal().Err(err).Str("file", cfg.LogFile).Msg("open log file")
	}
	defer logFile.Close()
	log.Logger = zerolog.New(logFile).With().Timestamp().Logger()

	list, err := words.Load(cfg.AnswersFile, cfg.AllowedFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load word lists")
	}
	answers, allowed := list.Stats()
	log.Info().Int("answers", answers).Int("allowed", allowed).Str("mode", cfg.Mode).Msg("word lists loaded")

	var src game.WordSource = list
	title := "WORDLE"
	if cfg.Mode == config.ModeDaily {
		d := words.NewDaily(list, cfg.DailySalt, nil)
		src = d
		title = "WORDLE daily " + d.DateKey()
	}

	stats, closeStats, err := openStats(cfg.StatsBackend)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.StatsBackend).Msg("open results store")
	}
	defer closeStats()

	eng := game.New(src,
		game.WithRevealInterval(cfg.RevealInterval),
		game.WithInvalidFlash(cfg.InvalidFlash),
		game.WithLogger(log.Logger),
	)
	eng.Subscribe(store.NewRecorder(stats).Observe)

	screen, err := tcell.NewScreen()
	if err != nil {
		log.Fatal().Err(err).Msg("create screen")
	}
	if err := screen.Init(); err != nil {
		log.Fatal().Err(err).Msg("init screen")
	}
	defer screen.Fini()

	log.Info().Msg("starting wordle")
	NewUI(screen, eng, stats, title).Run()
	log.Info().Msg("bye")
}

func openStats(backend string) (store.Store, func() error, error) {
	if backend == config.BackendSQLite {
		return store.OpenSQLite(context.Background())
	}
	return store.NewMemoryStore(), func() error { return nil }, nil
}
