//
// Tencent is pleased to support the open source community by making moot available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// moot is licensed under the Apache License Version 2.0.
//
//

// Package speech wraps the text-to-speech provider. Synthesis is an optional
// feature: when no API key is configured the adapter reports itself disabled
// and every call degrades to a no-op instead of failing the turn.
package speech

import (
	"context"
	"fmt"
	"io"

	"github.com/openai/openai-go"
	openaiopt "github.com/openai/openai-go/option"
)

const defaultTTSModel = "tts-1"

// Voice describes one selectable synthesis voice.
type Voice struct {
	ID       string `json:"voice_id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

// Synthesizer converts cleaned text into audio bytes.
type Synthesizer struct {
	client  openai.Client
	model   string
	enabled bool
}

// Option configures the Synthesizer.
type Option func(*options)

type options struct {
	baseURL string
	model   string
}

// WithBaseURL overrides the provider endpoint.
func WithBaseURL(url string) Option {
	return func(o *options) { o.baseURL = url }
}

// WithModel sets the synthesis model.
func WithModel(model string) Option {
	return func(o *options) { o.model = model }
}

// New creates a Synthesizer. An empty API key yields a disabled adapter.
func New(apiKey string, opts ...Option) *Synthesizer {
	o := options{model: defaultTTSModel}
	for _, opt := range opts {
		opt(&o)
	}
	if apiKey == "" {
		return &Synthesizer{model: o.model}
	}

	clientOpts := []openaiopt.RequestOption{openaiopt.WithAPIKey(apiKey)}
	if o.baseURL != "" {
		clientOpts = append(clientOpts, openaiopt.WithBaseURL(o.baseURL))
	}
	return &Synthesizer{
		client:  openai.NewClient(clientOpts...),
		model:   o.model,
		enabled: true,
	}
}

// Enabled reports whether a provider is configured.
func (s *Synthesizer) Enabled() bool {
	return s != nil && s.enabled
}

// Synthesize converts text into audio bytes using the given voice. It
// returns (nil, nil) when the adapter is disabled; provider failures are
// returned as errors and the caller decides whether to skip or abort.
func (s *Synthesizer) Synthesize(ctx context.Context, text, voiceID string) ([]byte, error) {
	if !s.Enabled() || text == "" {
		return nil, nil
	}
	resp, err := s.client.Audio.Speech.New(ctx, openai.AudioSpeechNewParams{
		Model:          openai.SpeechModel(s.model),
		Input:          text,
		Voice:          openai.AudioSpeechNewParamsVoice(voiceID),
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatMP3,
	})
	if err != nil {
		return nil, fmt.Errorf("speech: synthesize: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("speech: read audio: %w", err)
	}
	return data, nil
}

// Voices returns the selectable voices, or an empty list when disabled. The
// provider exposes a fixed catalogue rather than a per-account listing.
func (s *Synthesizer) Voices() []Voice {
	if !s.Enabled() {
		return []Voice{}
	}
	ids := []string{"alloy", "ash", "coral", "echo", "fable", "nova", "onyx", "sage", "shimmer"}
	voices := make([]Voice, 0, len(ids))
	for _, id := range ids {
		voices = append(voices, Voice{ID: id, Name: id, Category: "premade"})
	}
	return voices
}
