//
// Tencent is pleased to support the open source community by making moot available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// moot is licensed under the Apache License Version 2.0.
//
//

package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

const generatedIndexKey = "generated/index.json"

// GeneratedMeta describes one agent-generated document.
type GeneratedMeta struct {
	Filename     string    `json:"filename"`
	Title        string    `json:"title"`
	DocumentType string    `json:"document_type"`
	SessionID    string    `json:"session_id"`
	ContentType  string    `json:"content_type"`
	CreatedAt    time.Time `json:"created_at"`
}

// GeneratedStore registers the binary renderings of agent-generated
// documents, keyed by filename, so they can be served for download later.
// The plain-text rendering of each document is mirrored into the session
// document Store separately so the agent can read back its own output.
type GeneratedStore struct {
	backend Backend
	mu      sync.Mutex
}

// NewGeneratedStore creates a GeneratedStore over the given backend.
func NewGeneratedStore(backend Backend) *GeneratedStore {
	return &GeneratedStore{backend: backend}
}

func generatedBlobKey(filename string) string {
	return "generated/files/" + filename
}

func (g *GeneratedStore) loadIndex(ctx context.Context) (map[string]GeneratedMeta, error) {
	raw, err := g.backend.Get(ctx, generatedIndexKey)
	if err != nil {
		return nil, fmt.Errorf("docstore: load generated index: %w", err)
	}
	index := make(map[string]GeneratedMeta)
	if len(raw) == 0 {
		return index, nil
	}
	if err := json.Unmarshal(raw, &index); err != nil {
		return nil, fmt.Errorf("docstore: decode generated index: %w", err)
	}
	return index, nil
}

func (g *GeneratedStore) saveIndex(ctx context.Context, index map[string]GeneratedMeta) error {
	raw, err := json.Marshal(index)
	if err != nil {
		return fmt.Errorf("docstore: encode generated index: %w", err)
	}
	if err := g.backend.Set(ctx, generatedIndexKey, raw); err != nil {
		return fmt.Errorf("docstore: save generated index: %w", err)
	}
	return nil
}

// Register stores the rendered bytes and records the document in the index.
func (g *GeneratedStore) Register(ctx context.Context, meta GeneratedMeta, data []byte) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = time.Now().UTC()
	}
	if err := g.backend.Set(ctx, generatedBlobKey(meta.Filename), data); err != nil {
		return fmt.Errorf("docstore: save generated %s: %w", meta.Filename, err)
	}
	index, err := g.loadIndex(ctx)
	if err != nil {
		return err
	}
	index[meta.Filename] = meta
	return g.saveIndex(ctx, index)
}

// Open returns the rendered bytes and metadata for a registered filename.
func (g *GeneratedStore) Open(ctx context.Context, filename string) ([]byte, GeneratedMeta, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	index, err := g.loadIndex(ctx)
	if err != nil {
		return nil, GeneratedMeta{}, err
	}
	meta, ok := index[filename]
	if !ok {
		return nil, GeneratedMeta{}, ErrNotFound
	}
	data, err := g.backend.Get(ctx, generatedBlobKey(filename))
	if err != nil {
		return nil, GeneratedMeta{}, fmt.Errorf("docstore: load generated %s: %w", filename, err)
	}
	if data == nil {
		return nil, GeneratedMeta{}, ErrNotFound
	}
	return data, meta, nil
}
