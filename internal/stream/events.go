//
// Tencent is pleased to support the open source community by making moot available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// moot is licensed under the Apache License Version 2.0.
//
//

// Package stream turns the agent framework's event channel into the wire
// events the browser client consumes, and attaches speech synthesis to the
// finished response text.
package stream

import (
	"moot/internal/marker"
)

// Wire event types, in the order a typical turn produces them.
const (
	TypeSession  = "session"
	TypeContent  = "content"
	TypeToolCall = "tool_call"
	TypeCitation = "citation"
	TypeAudio    = "audio"
	TypeDone     = "done"
	TypeError    = "error"
)

// Event is the tagged union written as one SSE frame. Exactly the fields of
// the tagged variant are populated.
type Event struct {
	Type      string           `json:"type"`
	SessionID string           `json:"session_id,omitempty"`
	Content   string           `json:"content,omitempty"`
	ToolName  string           `json:"tool_name,omitempty"`
	Citation  *marker.Citation `json:"citation,omitempty"`
	Data      string           `json:"data,omitempty"`
	Error     string           `json:"error,omitempty"`
}

// SessionEvent announces the session id a turn is running under.
func SessionEvent(sessionID string) Event {
	return Event{Type: TypeSession, SessionID: sessionID}
}

// ContentEvent carries one chunk of display text.
func ContentEvent(text string) Event {
	return Event{Type: TypeContent, Content: text}
}

// ToolCallEvent announces a tool invocation by name.
func ToolCallEvent(toolName string) Event {
	return Event{Type: TypeToolCall, ToolName: toolName}
}

// CitationEvent carries one structured citation record.
func CitationEvent(c marker.Citation) Event {
	return Event{Type: TypeCitation, Citation: &c}
}

// AudioEvent carries one base64-encoded audio chunk.
func AudioEvent(base64Data string) Event {
	return Event{Type: TypeAudio, Data: base64Data}
}

// DoneEvent terminates a successful turn.
func DoneEvent() Event {
	return Event{Type: TypeDone}
}

// ErrorEvent terminates a failed turn.
func ErrorEvent(message string) Event {
	return Event{Type: TypeError, Error: message}
}
