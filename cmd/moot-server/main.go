//
// Tencent is pleased to support the open source community by making moot available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// moot is licensed under the Apache License Version 2.0.
//
//

// Command moot-server runs the conversational legal-practice assistant.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"trpc.group/trpc-go/trpc-agent-go/log"
	openaimodel "trpc.group/trpc-go/trpc-agent-go/model/openai"
	sessioninmemory "trpc.group/trpc-go/trpc-agent-go/session/inmemory"

	"moot/internal/config"
	"moot/internal/docstore"
	"moot/internal/httpapi"
	"moot/internal/legaltools"
	"moot/internal/speech"
	"moot/web"
)

func main() {
	cfg := config.Load()
	log.SetLevel(cfg.LogLevel)

	backend, err := newBackend(cfg)
	if err != nil {
		log.Fatalf("moot-server: init document backend: %v", err)
	}

	var modelOpts []openaimodel.Option
	if cfg.OpenAIAPIKey != "" {
		modelOpts = append(modelOpts, openaimodel.WithAPIKey(cfg.OpenAIAPIKey))
	}
	if cfg.OpenAIBaseURL != "" {
		modelOpts = append(modelOpts, openaimodel.WithBaseURL(cfg.OpenAIBaseURL))
	}

	var speechOpts []speech.Option
	speechOpts = append(speechOpts, speech.WithModel(cfg.TTSModel))
	if cfg.OpenAIBaseURL != "" {
		speechOpts = append(speechOpts, speech.WithBaseURL(cfg.OpenAIBaseURL))
	}

	server := httpapi.New(httpapi.Deps{
		Docs:      docstore.New(backend),
		Generated: docstore.NewGeneratedStore(backend),
		Synth:     speech.New(cfg.OpenAIAPIKey, speechOpts...),
		ChatModel: openaimodel.New(cfg.Model, modelOpts...),
		Sessions: sessioninmemory.NewSessionService(
			sessioninmemory.WithSessionEventLimit(cfg.SessionEventLimit)),
		Searcher: legaltools.NewSearcher(),
		Static:   web.Handler(),
	})

	httpServer := &http.Server{
		Addr:    cfg.Addr,
		Handler: server.Handler(),
	}

	go func() {
		log.Infof("moot-server: listening on %s (model=%s)", cfg.Addr, cfg.Model)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("moot-server: listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Infof("moot-server: shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Errorf("moot-server: shutdown: %v", err)
	}
}

// newBackend picks COS when a bucket is configured, else local files.
func newBackend(cfg config.Config) (docstore.Backend, error) {
	if cfg.COSBucketURL != "" {
		log.Infof("moot-server: using COS document backend")
		return docstore.NewCOSBackend(cfg.COSBucketURL)
	}
	log.Infof("moot-server: using local document backend at %s", cfg.DataDir)
	return docstore.NewFileBackend(cfg.DataDir)
}
