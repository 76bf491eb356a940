//
// Tencent is pleased to support the open source community by making moot available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// moot is licensed under the Apache License Version 2.0.
//
//

// Package config reads the process configuration from the environment.
package config

import (
	"os"
	"strconv"

	"trpc.group/trpc-go/trpc-agent-go/log"
)

// Defaults applied when the corresponding variable is unset.
const (
	DefaultAddr              = ":8080"
	DefaultModel             = "gpt-4o-mini"
	DefaultTTSModel          = "tts-1"
	DefaultDataDir           = "./data"
	DefaultSessionEventLimit = 1000
)

// Config is the resolved process configuration.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string
	// OpenAIAPIKey authenticates both chat and speech. Empty disables
	// speech; chat requires it.
	OpenAIAPIKey string
	// OpenAIBaseURL optionally points at an OpenAI-compatible endpoint.
	OpenAIBaseURL string
	// Model is the chat model name.
	Model string
	// TTSModel is the speech synthesis model name.
	TTSModel string
	// COSBucketURL enables the COS document backend when set.
	COSBucketURL string
	// DataDir is the local fallback document directory.
	DataDir string
	// SessionEventLimit caps retained events per in-memory session.
	SessionEventLimit int
	// LogLevel is one of debug, info, warn, error.
	LogLevel string
}

// Load reads the configuration from the environment.
func Load() Config {
	return Config{
		Addr:              envOr("MOOT_ADDR", DefaultAddr),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:     os.Getenv("OPENAI_BASE_URL"),
		Model:             envOr("MOOT_MODEL", DefaultModel),
		TTSModel:          envOr("MOOT_TTS_MODEL", DefaultTTSModel),
		COSBucketURL:      os.Getenv("COS_BUCKET_URL"),
		DataDir:           envOr("MOOT_DATA_DIR", DefaultDataDir),
		SessionEventLimit: envIntOr("MOOT_SESSION_EVENT_LIMIT", DefaultSessionEventLimit),
		LogLevel:          envOr("LOG_LEVEL", "info"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Warnf("config: ignoring invalid %s=%q", key, v)
		return fallback
	}
	return n
}
