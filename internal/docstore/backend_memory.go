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
	"sync"
)

// MemoryBackend keeps blobs in process memory. It is used in tests and as
// the last-resort store when no data directory is writable.
type MemoryBackend struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{blobs: make(map[string][]byte)}
}

// Get returns the blob for key, or (nil, nil) when absent.
func (b *MemoryBackend) Get(ctx context.Context, key string) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	data, ok := b.blobs[key]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Set stores the blob under key.
func (b *MemoryBackend) Set(ctx context.Context, key string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	stored := make([]byte, len(data))
	copy(stored, data)
	b.blobs[key] = stored
	return nil
}

// Delete removes the blob under key. Deleting an absent key is not an error.
func (b *MemoryBackend) Delete(ctx context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.blobs, key)
	return nil
}
