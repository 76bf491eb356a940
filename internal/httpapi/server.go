//
// Tencent is pleased to support the open source community by making moot available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// moot is licensed under the Apache License Version 2.0.
//
//

// Package httpapi exposes the HTTP surface: the streaming chat endpoint,
// document upload and claiming, generated-document downloads, the voice
// catalogue and the embedded browser client.
package httpapi

import (
	"context"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"trpc.group/trpc-go/trpc-agent-go/event"
	"trpc.group/trpc-go/trpc-agent-go/model"
	"trpc.group/trpc-go/trpc-agent-go/session"

	"moot/internal/docstore"
	"moot/internal/legaltools"
	"moot/internal/speech"
	"moot/internal/stream"
)

const appName = "moot"

// runTurnFunc starts one agent turn and returns its event channel.
type runTurnFunc func(ctx context.Context, userID, sessionID, personaID string, msg model.Message) (<-chan *event.Event, error)

// Deps are the collaborators the server routes requests to.
type Deps struct {
	Docs      *docstore.Store
	Generated *docstore.GeneratedStore
	Synth     *speech.Synthesizer
	ChatModel model.Model
	Sessions  session.Service
	Searcher  *legaltools.Searcher
	// Static optionally serves the embedded browser client at /.
	Static http.Handler
}

// Server is the HTTP surface.
type Server struct {
	deps   Deps
	driver *stream.Driver
	router *mux.Router

	runTurn runTurnFunc

	// personas remembers the persona chosen for each session, since the
	// client sends the case context on the first turn only.
	personaMu sync.Mutex
	personas  map[string]string
}

// New creates the server and registers its routes.
func New(deps Deps) *Server {
	s := &Server{
		deps:     deps,
		driver:   stream.NewDriver(deps.Synth),
		router:   mux.NewRouter(),
		personas: make(map[string]string),
	}
	s.runTurn = s.defaultRunTurn

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Content-Length", "Content-Type"},
	})
	s.router.Use(c.Handler)
	s.registerRoutes()
	return s
}

// Handler returns the http.Handler for the server.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) registerRoutes() {
	s.router.HandleFunc("/chat/stream", s.handleChatStream).Methods(http.MethodPost)
	s.router.HandleFunc("/voices", s.handleVoices).Methods(http.MethodGet)
	s.router.HandleFunc("/upload-pdf", s.handleUploadPDF).Methods(http.MethodPost)
	s.router.HandleFunc("/sessions/{sessionId}/documents", s.handleListDocuments).Methods(http.MethodGet)
	s.router.HandleFunc("/sessions/{sessionId}/documents/claim", s.handleClaimDocuments).Methods(http.MethodPost)
	s.router.HandleFunc("/downloads/{filename}", s.handleDownload).Methods(http.MethodGet)
	if s.deps.Static != nil {
		s.router.PathPrefix("/").Handler(s.deps.Static)
	}
}

// rememberPersona stores the persona chosen for a session.
func (s *Server) rememberPersona(sessionID, personaID string) {
	if personaID == "" {
		return
	}
	s.personaMu.Lock()
	defer s.personaMu.Unlock()
	s.personas[sessionID] = personaID
}

// personaFor returns the persona remembered for a session, or empty.
func (s *Server) personaFor(sessionID string) string {
	s.personaMu.Lock()
	defer s.personaMu.Unlock()
	return s.personas[sessionID]
}
