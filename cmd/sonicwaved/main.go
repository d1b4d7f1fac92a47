package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sonicwave-radio/sonicwave/internal/gemini"
	"github.com/sonicwave-radio/sonicwave/internal/radiobrowser"
	"github.com/sonicwave-radio/sonicwave/internal/server"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})

	cfg, err := server.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	if cfg.GeminiAPIKey == "" {
		log.Warn().Msg("SONICWAVE_GEMINI_API_KEY is empty, all AI responses will fall back")
	}

	recommender := gemini.NewClient(cfg.GeminiAPIKey, cfg.GeminiBaseURL)

	directory := radiobrowser.NewClient()
	if cfg.DirectoryBaseURL != "" {
		directory = radiobrowser.NewClientWithBaseURL(cfg.DirectoryBaseURL)
	}

	srv := server.New(recommender, directory, cfg.UpstreamTimeout)
	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.UpstreamTimeout + 5*time.Second,
	}

	done := make(chan struct{})
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		log.Info().Msg("Shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("Shutdown error")
		}
		close(done)
	}()

	log.Info().Str("addr", cfg.Addr).Msg("sonicwaved listening")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Server error")
	}
	<-done
}
