// translatord HTTP server
// Speech translation with always-on terminology protection
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anubhavsingh2004/lt-audio-translator/internal/config"
	"github.com/anubhavsingh2004/lt-audio-translator/internal/logger"
	"github.com/anubhavsingh2004/lt-audio-translator/internal/metrics"
	"github.com/anubhavsingh2004/lt-audio-translator/internal/server"
	"github.com/anubhavsingh2004/lt-audio-translator/pkg/glossary"
	"github.com/anubhavsingh2004/lt-audio-translator/pkg/pipeline"
	"github.com/anubhavsingh2004/lt-audio-translator/pkg/speech"
	"github.com/anubhavsingh2004/lt-audio-translator/pkg/translate"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "translatord: %v\n", err)
		os.Exit(1)
	}

	logger.InitGlobalLogger(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})
	log := logger.GetGlobalLogger()
	log.LogServerStart(cfg.Server.Port, cfg.Glossary.Path)

	// A malformed glossary is fatal: the service refuses to start rather
	// than serve translations with protection silently disabled.
	store := glossary.NewStore(cfg.Glossary.Path, cfg.Glossary.Languages)
	idx, err := store.Load()
	if err != nil {
		log.LogGlossaryLoad(cfg.Glossary.Path, 0, err)
		os.Exit(1)
	}
	log.LogGlossaryLoad(cfg.Glossary.Path, idx.Len(), nil)

	m := metrics.NewMetrics()
	m.GlossaryEntries.Set(float64(idx.Len()))

	translator := translate.NewClient(cfg.Collaborators.TranslatorURL)
	pipe, err := pipeline.New(store, translator, cfg.Collaborators.TranslateTimeout)
	if err != nil {
		log.Fatal("pipeline init failed").Err(err).Send()
	}

	var synthesizer speech.Synthesizer
	if cfg.Collaborators.PiperURL != "" {
		synthesizer = speech.NewPiperClient(cfg.Collaborators.PiperURL)
	}

	srv, err := server.NewServer(server.Options{
		Store:         store,
		Pipeline:      pipe,
		Transcriber:   speech.NewWhisperClient(cfg.Collaborators.WhisperURL),
		Synthesizer:   synthesizer,
		Metrics:       m,
		Log:           log,
		MaxAudioBytes: cfg.Server.MaxAudioBytes,
	})
	if err != nil {
		log.Fatal("server init failed").Err(err).Send()
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      srv.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	obs := server.NewObservabilityServer(cfg.Server.ObservabilityPort, log)
	go func() {
		if err := obs.Start(); err != nil {
			log.Error("observability server stopped").Err(err).Send()
		}
	}()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.LogServerShutdown()
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			log.Error("shutdown failed").Err(err).Send()
		}
		_ = obs.Shutdown(ctx)
	}()

	log.LogServerReady(cfg.Server.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("server failed").Err(err).Send()
	}
}
