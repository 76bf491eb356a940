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
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileBackend persists blobs as files under a base directory. It is the
// transparent fallback used when no durable remote store is configured.
type FileBackend struct {
	baseDir string
}

// NewFileBackend creates a file-based backend rooted at baseDir, creating
// the directory if needed.
func NewFileBackend(baseDir string) (*FileBackend, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("docstore: create data dir: %w", err)
	}
	return &FileBackend{baseDir: baseDir}, nil
}

// path maps a blob key onto a file path, rejecting traversal outside the
// base directory.
func (b *FileBackend) path(key string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(key))
	if strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("docstore: invalid blob key %q", key)
	}
	return filepath.Join(b.baseDir, cleaned), nil
}

// Get returns the blob for key, or (nil, nil) when absent.
func (b *FileBackend) Get(ctx context.Context, key string) ([]byte, error) {
	p, err := b.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("docstore: read %s: %w", key, err)
	}
	return data, nil
}

// Set stores the blob under key, creating parent directories as needed.
func (b *FileBackend) Set(ctx context.Context, key string, data []byte) error {
	p, err := b.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("docstore: create dir for %s: %w", key, err)
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return fmt.Errorf("docstore: write %s: %w", key, err)
	}
	return nil
}

// Delete removes the blob under key. Deleting an absent key is not an error.
func (b *FileBackend) Delete(ctx context.Context, key string) error {
	p, err := b.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("docstore: remove %s: %w", key, err)
	}
	return nil
}
