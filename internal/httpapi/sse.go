//
// Tencent is pleased to support the open source community by making moot available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// moot is licensed under the Apache License Version 2.0.
//
//

package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"trpc.group/trpc-go/trpc-agent-go/log"
)

// errStreamingUnsupported is returned when the ResponseWriter cannot flush.
var errStreamingUnsupported = fmt.Errorf("httpapi: streaming unsupported")

// sseWriter writes JSON payloads as server-sent-event frames and flushes
// after each one. Once a write fails the writer goes silent: the client is
// gone and there is nobody left to tell.
type sseWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
	dead    bool
}

func newSSEWriter(w http.ResponseWriter) (*sseWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, errStreamingUnsupported
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	return &sseWriter{w: w, flusher: flusher}, nil
}

// Send writes one frame. The first failed write marks the stream dead and
// every later Send reports the same failure without writing.
func (s *sseWriter) Send(v any) error {
	if s.dead {
		return fmt.Errorf("httpapi: client disconnected")
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("httpapi: encode frame: %w", err)
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", data); err != nil {
		s.dead = true
		log.Debugf("httpapi: client disconnected: %v", err)
		return fmt.Errorf("httpapi: client disconnected: %w", err)
	}
	s.flusher.Flush()
	return nil
}
