//
// Tencent is pleased to support the open source community by making moot available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// moot is licensed under the Apache License Version 2.0.
//
//

// Package docstore stores the textual documents that belong to a
// conversation session: uploads made by the user and plain-text mirrors of
// documents the agent generates. All documents of one session live in a
// single JSON blob under a well-known key, persisted through a pluggable
// Backend (Tencent COS when configured, local files otherwise).
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// StagingSession is the placeholder session id that holds uploads made
// before the server has issued a real session id. Documents are moved out of
// staging once the owning session is known.
const StagingSession = "staging"

// ErrNotFound is returned when a document id has no entry in the session.
var ErrNotFound = errors.New("docstore: document not found")

// Document is one stored document. Content is always plain text; binary
// uploads are converted before they reach the store.
type Document struct {
	Name        string `json:"name"`
	Content     string `json:"content"`
	ContentType string `json:"content_type"`
}

// Backend persists one opaque blob per key. Get returns (nil, nil) when the
// key has never been written. A configured-but-unreachable durable backend
// must surface its error rather than degrade silently.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}

// Store is the session-scoped document store.
type Store struct {
	backend Backend

	// mu serializes read-modify-write cycles within this process. Tool calls
	// inside one turn run sequentially, so per-session contention is not a
	// concern; the lock keeps cross-session blob updates well-formed.
	mu sync.Mutex
}

// New creates a Store over the given backend.
func New(backend Backend) *Store {
	return &Store{backend: backend}
}

func sessionKey(sessionID string) string {
	return "documents/" + sessionID + ".json"
}

func (s *Store) loadSession(ctx context.Context, sessionID string) (map[string]Document, error) {
	raw, err := s.backend.Get(ctx, sessionKey(sessionID))
	if err != nil {
		return nil, fmt.Errorf("docstore: load session %s: %w", sessionID, err)
	}
	docs := make(map[string]Document)
	if len(raw) == 0 {
		return docs, nil
	}
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, fmt.Errorf("docstore: decode session %s: %w", sessionID, err)
	}
	return docs, nil
}

func (s *Store) saveSession(ctx context.Context, sessionID string, docs map[string]Document) error {
	if len(docs) == 0 {
		if err := s.backend.Delete(ctx, sessionKey(sessionID)); err != nil {
			return fmt.Errorf("docstore: delete session %s: %w", sessionID, err)
		}
		return nil
	}
	raw, err := json.Marshal(docs)
	if err != nil {
		return fmt.Errorf("docstore: encode session %s: %w", sessionID, err)
	}
	if err := s.backend.Set(ctx, sessionKey(sessionID), raw); err != nil {
		return fmt.Errorf("docstore: save session %s: %w", sessionID, err)
	}
	return nil
}

// Add stores a document under (sessionID, docID), replacing any previous
// document with the same id.
func (s *Store) Add(ctx context.Context, sessionID, docID string, doc Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return err
	}
	docs[docID] = doc
	return s.saveSession(ctx, sessionID, docs)
}

// Get returns the document stored under (sessionID, docID).
func (s *Store) Get(ctx context.Context, sessionID, docID string) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return Document{}, err
	}
	doc, ok := docs[docID]
	if !ok {
		return Document{}, ErrNotFound
	}
	return doc, nil
}

// ListNames returns the names of all documents in the session, sorted.
func (s *Store) ListNames(ctx context.Context, sessionID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(docs))
	for _, doc := range docs {
		names = append(names, doc.Name)
	}
	sort.Strings(names)
	return names, nil
}

// List returns all documents in the session keyed by document id.
func (s *Store) List(ctx context.Context, sessionID string) (map[string]Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loadSession(ctx, sessionID)
}

// Move transfers documents from one session to another. When docIDs is empty
// every document moves. Moved documents are written to the destination before
// being removed from the source; an emptied source session is deleted.
func (s *Store) Move(ctx context.Context, fromSession, toSession string, docIDs ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	src, err := s.loadSession(ctx, fromSession)
	if err != nil {
		return err
	}
	if len(src) == 0 {
		return nil
	}
	dst, err := s.loadSession(ctx, toSession)
	if err != nil {
		return err
	}

	ids := docIDs
	if len(ids) == 0 {
		ids = make([]string, 0, len(src))
		for id := range src {
			ids = append(ids, id)
		}
	}

	moved := false
	for _, id := range ids {
		doc, ok := src[id]
		if !ok {
			continue
		}
		dst[id] = doc
		delete(src, id)
		moved = true
	}
	if !moved {
		return nil
	}

	if err := s.saveSession(ctx, toSession, dst); err != nil {
		return err
	}
	return s.saveSession(ctx, fromSession, src)
}

// Clear removes every document in the session.
func (s *Store) Clear(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.saveSession(ctx, sessionID, nil)
}
