package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/phuslu/log"

	"github.com/sujalbistaa/askk/internal/config"
	routes "github.com/sujalbistaa/askk/internal/http"
	"github.com/sujalbistaa/askk/internal/llm"
	"github.com/sujalbistaa/askk/internal/service"
	"github.com/sujalbistaa/askk/internal/store"
	"github.com/sujalbistaa/askk/internal/ws"
)

func main() {
	// Load .env first; production sets env vars directly, so a missing
	// file is fine.
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("no .env file found, reading from environment")
	}

	log.DefaultLogger = log.Logger{
		Level:  log.InfoLevel,
		Writer: &log.ConsoleWriter{ColorOutput: true},
	}

	cfg := config.FromEnv()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	st, err := store.Open(ctx, cfg)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize store")
	}

	generator, err := llm.New(context.Background(), cfg.LLM)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize answer generator")
	}

	hub := ws.NewHub()
	go hub.Run()

	env := &routes.Env{
		Posts: service.NewPostService(st, hub),
		QA:    service.NewQAService(st, generator, hub),
		Hub:   hub,
	}

	router := gin.New()
	routes.SetupRoutes(router, env, cfg.CORSOrigin)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().Str("port", cfg.Port).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("listen failed")
		}
	}()

	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	if err := st.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("store close failed")
	}

	log.Info().Msg("server exiting")
}
