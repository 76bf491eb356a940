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
	"errors"
	"io"
	"net/http"
	"sort"

	"github.com/gorilla/mux"
	"trpc.group/trpc-go/trpc-agent-go/log"

	"moot/internal/docstore"
)

// documentInfo is one entry in the session document listing.
type documentInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]
	docs, err := s.deps.Docs.List(r.Context(), sessionID)
	if err != nil {
		log.Errorf("httpapi: list documents for %s: %v", sessionID, err)
		http.Error(w, "failed to list documents", http.StatusInternalServerError)
		return
	}
	infos := make([]documentInfo, 0, len(docs))
	for id, doc := range docs {
		infos = append(infos, documentInfo{ID: id, Name: doc.Name})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	writeJSON(w, http.StatusOK, map[string]any{"documents": infos})
}

// claimRequest optionally restricts a claim to specific staged documents.
type claimRequest struct {
	DocumentIDs []string `json:"document_ids,omitempty"`
}

// handleClaimDocuments moves staged uploads into the session's scope so its
// tools can read them.
func (s *Server) handleClaimDocuments(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]

	var req claimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if err := s.deps.Docs.Move(r.Context(), docstore.StagingSession, sessionID, req.DocumentIDs...); err != nil {
		log.Errorf("httpapi: claim documents for %s: %v", sessionID, err)
		http.Error(w, "failed to claim documents", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":     "claimed",
		"session_id": sessionID,
	})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	filename := mux.Vars(r)["filename"]
	data, meta, err := s.deps.Generated.Open(r.Context(), filename)
	if errors.Is(err, docstore.ErrNotFound) {
		http.Error(w, "no such document", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Errorf("httpapi: open generated %s: %v", filename, err)
		http.Error(w, "failed to open document", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", meta.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+meta.Filename+`"`)
	if _, err := w.Write(data); err != nil {
		log.Debugf("httpapi: download aborted: %v", err)
	}
}

func (s *Server) handleVoices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"voices": s.deps.Synth.Voices()})
}
