package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"

	"botornot/internal/app"
	"botornot/internal/config"
	"botornot/internal/domain"
	"botornot/internal/llm"
	"botornot/internal/store"
	httpTransport "botornot/internal/transport/http"
)

func main() {
	if err := godotenv.Load(); err != nil {
		// A missing .env file is fine; the environment itself still applies
		slog.Debug("no .env file loaded", "error", err)
	}

	cfg := config.Load()
	logger := newLogger(cfg)
	slog.SetDefault(logger)

	logger.Info("starting botornot game server",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
		"rounds", cfg.Game.RoundsPerGame,
	)

	var generator llm.Generator
	if cfg.LLM.ExecPath != "" {
		generator = llm.NewExecGenerator(cfg.LLM.ExecPath, cfg.LLM.ModelPath, cfg.LLM.MaxTokens)
		logger.Info("using exec decoy generator", "exec", cfg.LLM.ExecPath, "model", cfg.LLM.ModelPath)
	} else {
		generator = llm.NewStaticGenerator()
		logger.Warn("LLM_EXEC_PATH not set, using canned decoy responses")
	}

	prefetch := app.NewPrefetcher(app.NewStaticPrompts(), generator, logger)

	hub := app.NewRoomHub(
		store.NewRoomRegistry(),
		store.NewSessionStore(),
		prefetch,
		app.Options{
			Settings: domain.Settings{
				RoundsPerGame:         cfg.Game.RoundsPerGame,
				MaxPlayers:            cfg.Game.MaxPlayers,
				PointsPerVote:         cfg.Game.PointsPerVote,
				PointsPerCorrectGuess: cfg.Game.PointsPerCorrectGuess,
			},
			Timing: app.Timing{
				Writing: cfg.Game.WritingPhase,
				Voting:  cfg.Game.VotingPhase,
				Results: cfg.Game.ResultsPhase,
				Leeway:  cfg.Game.PhaseEndLeeway,
			},
			RoomCodeLength: cfg.Game.RoomCodeLength,
		},
		logger,
	)
	defer hub.Close()

	server := httpTransport.NewServer(cfg, hub, logger)

	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server stopped")
}

// newLogger builds the slog logger: tinted text in development, JSON in
// production
func newLogger(cfg *config.Config) *slog.Logger {
	level := parseLogLevel(cfg.Logging.Level)

	format := cfg.Logging.Format
	if format == "" {
		if cfg.IsDevelopment() {
			format = "text"
		} else {
			format = "json"
		}
	}

	if format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	}
	return slog.New(tint.NewHandler(os.Stdout, &tint.Options{Level: level}))
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
