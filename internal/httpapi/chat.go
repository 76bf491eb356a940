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
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"trpc.group/trpc-go/trpc-agent-go/agent/llmagent"
	"trpc.group/trpc-go/trpc-agent-go/event"
	"trpc.group/trpc-go/trpc-agent-go/log"
	"trpc.group/trpc-go/trpc-agent-go/model"
	"trpc.group/trpc-go/trpc-agent-go/runner"
	"trpc.group/trpc-go/trpc-agent-go/session"

	"moot/internal/docstore"
	"moot/internal/legaltools"
	"moot/internal/persona"
	"moot/internal/stream"
)

const defaultUserID = "user"

// chatRequest is the body of POST /chat/stream.
type chatRequest struct {
	Message   string `json:"message"`
	UserID    string `json:"user_id,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	VoiceID   string `json:"voice_id,omitempty"`
	// DocumentIDs are staged uploads to claim into the session before the
	// turn runs, so files uploaded before the first message are readable by
	// the tools of that very turn.
	DocumentIDs []string             `json:"document_ids,omitempty"`
	CaseContext *persona.CaseContext `json:"case_context,omitempty"`
}

func (s *Server) handleChatStream(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()
	if strings.TrimSpace(req.Message) == "" {
		http.Error(w, "message is required", http.StatusBadRequest)
		return
	}
	if req.UserID == "" {
		req.UserID = defaultUserID
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}
	if req.CaseContext != nil {
		s.rememberPersona(req.SessionID, req.CaseContext.Persona)
	}
	if len(req.DocumentIDs) > 0 {
		if err := s.deps.Docs.Move(r.Context(), docstore.StagingSession, req.SessionID, req.DocumentIDs...); err != nil {
			// The turn still runs; the tools just will not see the files.
			log.Errorf("httpapi: claim staged documents for %s: %v", req.SessionID, err)
		}
	}

	sse, err := newSSEWriter(w)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if err := sse.Send(stream.SessionEvent(req.SessionID)); err != nil {
		return
	}

	ctx := r.Context()
	message := req.Message
	if req.CaseContext != nil && s.isFirstTurn(ctx, req.UserID, req.SessionID) {
		message = persona.FirstTurnMessage(*req.CaseContext, message)
	}

	events, err := s.runTurn(ctx, req.UserID, req.SessionID,
		s.personaFor(req.SessionID), model.NewUserMessage(message))
	if err != nil {
		log.Errorf("httpapi: start turn: %v", err)
		_ = sse.Send(stream.ErrorEvent("failed to start the agent"))
		return
	}
	emit := func(e stream.Event) error { return sse.Send(e) }
	if err := s.driver.Consume(ctx, events, req.VoiceID, emit); err != nil {
		// Emit failures mean the client went away mid-turn; nothing to do.
		log.Debugf("httpapi: turn aborted: %v", err)
	}
}

// isFirstTurn reports whether the session has no recorded events yet.
func (s *Server) isFirstTurn(ctx context.Context, userID, sessionID string) bool {
	sess, err := s.deps.Sessions.GetSession(ctx, session.Key{
		AppName:   appName,
		UserID:    userID,
		SessionID: sessionID,
	})
	if err != nil || sess == nil {
		return true
	}
	return sess.GetEventCount() == 0
}

// defaultRunTurn builds the agent for one turn and starts it. The agent,
// its tools and the runner are per-turn constructions around the session's
// environment; only the model and the session service are shared.
func (s *Server) defaultRunTurn(ctx context.Context, userID, sessionID, personaID string, msg model.Message) (<-chan *event.Event, error) {
	env := legaltools.Env{
		SessionID: sessionID,
		Docs:      s.deps.Docs,
		Generated: s.deps.Generated,
		Search:    s.deps.Searcher,
	}
	p := persona.Get(personaID)
	ag := llmagent.New(
		appName,
		llmagent.WithModel(s.deps.ChatModel),
		llmagent.WithDescription("Conversational legal practice partner for law students."),
		llmagent.WithInstruction(p.Instruction),
		llmagent.WithGenerationConfig(model.GenerationConfig{Stream: true}),
		llmagent.WithTools(legaltools.Tools(env)),
	)
	rn := runner.NewRunner(appName, ag, runner.WithSessionService(s.deps.Sessions))
	return rn.Run(ctx, userID, sessionID, msg)
}
