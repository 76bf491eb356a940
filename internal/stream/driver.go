//
// Tencent is pleased to support the open source community by making moot available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// moot is licensed under the Apache License Version 2.0.
//
//

package stream

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"sort"
	"strings"

	"trpc.group/trpc-go/trpc-agent-go/event"
	"trpc.group/trpc-go/trpc-agent-go/log"
	"trpc.group/trpc-go/trpc-agent-go/model"

	"moot/internal/marker"
	"moot/internal/speech"
)

// EmitFunc delivers one wire event to the client. A non-nil error means the
// client is gone and the turn should stop producing.
type EmitFunc func(Event) error

// Driver consumes one agent run's event channel and emits wire events.
type Driver struct {
	synth *speech.Synthesizer
}

// NewDriver creates a Driver. The synthesizer may be disabled.
func NewDriver(synth *speech.Synthesizer) *Driver {
	return &Driver{synth: synth}
}

// turnState is the per-turn bookkeeping for exactly-once text emission.
type turnState struct {
	// spanStreamed counts the raw bytes of the current LLM span already
	// delivered as deltas, so the final consolidated message emits only the
	// suffix beyond it. Reset whenever a tool call starts a new span.
	spanStreamed int
	// hold buffers a trailing fragment that may be the start of a marker
	// split across delta chunks.
	hold string
	// spoken accumulates the display text for post-turn synthesis.
	spoken strings.Builder
}

// Consume drains the event channel and emits content, tool_call, citation
// and audio events followed by exactly one terminal done or error event.
// It returns a non-nil error when emit fails, i.e. the client disconnected
// (the terminal event is skipped), or when ctx is cancelled mid-turn (a
// terminal error frame is attempted first).
func (d *Driver) Consume(ctx context.Context, events <-chan *event.Event, voiceID string, emit EmitFunc) error {
	var st turnState
	for {
		select {
		case <-ctx.Done():
			// Best effort: tell a still-connected client the turn is over
			// instead of leaving the stream without a terminal frame.
			_ = emit(ErrorEvent("turn cancelled"))
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return d.finish(ctx, &st, voiceID, emit)
			}
			done, err := d.handle(ev, &st, emit)
			if err != nil {
				return err
			}
			if done {
				return nil
			}
		}
	}
}

// handle processes one framework event. It returns done=true when a terminal
// wire event has been emitted.
func (d *Driver) handle(ev *event.Event, st *turnState, emit EmitFunc) (bool, error) {
	if ev == nil || ev.Response == nil {
		return false, nil
	}
	if ev.Response.Error != nil {
		return true, emit(ErrorEvent(ev.Response.Error.Message))
	}
	switch ev.Response.Object {
	case model.ObjectTypeRunnerCompletion:
		return false, nil
	case model.ObjectTypeToolResponse:
		return false, d.emitToolCitations(ev, emit)
	}
	if len(ev.Response.Choices) == 0 {
		return false, nil
	}
	choice := ev.Response.Choices[0]

	if len(choice.Message.ToolCalls) > 0 {
		// A tool call opens a new LLM span; the next assistant text starts
		// from byte zero again.
		st.spanStreamed = 0
		for _, tc := range choice.Message.ToolCalls {
			if err := emit(ToolCallEvent(tc.Function.Name)); err != nil {
				return false, err
			}
		}
		return false, nil
	}
	if choice.Message.ToolID != "" {
		return false, d.emitToolCitations(ev, emit)
	}

	if ev.Response.IsPartial {
		if choice.Delta.Content != "" {
			if err := d.emitText(st, choice.Delta.Content, emit); err != nil {
				return false, err
			}
			st.spanStreamed += len(choice.Delta.Content)
		}
		return false, nil
	}

	// Consolidated assistant message: emit only what the deltas did not
	// already deliver.
	if content := choice.Message.Content; len(content) > st.spanStreamed {
		suffix := content[st.spanStreamed:]
		if err := d.emitText(st, suffix, emit); err != nil {
			return false, err
		}
		st.spanStreamed = len(content)
	}
	return false, nil
}

// emitText appends raw model text to the turn, holding back a trailing
// fragment that may be an unfinished marker. Markers the model echoes from a
// tool result are stripped, not re-emitted: every citation was already sent
// when its tool response was handled, so emitting again would duplicate it.
func (d *Driver) emitText(st *turnState, raw string, emit EmitFunc) error {
	buf := st.hold + raw
	cut := holdbackIndex(buf)
	st.hold = buf[cut:]

	clean := marker.Strip(buf[:cut])
	if clean == "" {
		return nil
	}
	st.spoken.WriteString(clean)
	return emit(ContentEvent(clean))
}

// markerKeywords are the payload prefixes a marker can open with.
var markerKeywords = []string{"CITATION:", "DOWNLOAD_LINK:", "LINK_PROVIDED:"}

// holdbackIndex returns the length of the prefix of s that is safe to emit.
// Anything from an unclosed bracket that could still become a marker is held
// for the next chunk.
func holdbackIndex(s string) int {
	i := strings.LastIndex(s, "[")
	if i < 0 {
		return len(s)
	}
	rest := s[i+1:]
	if strings.Contains(rest, "]") {
		return len(s)
	}
	for _, kw := range markerKeywords {
		if strings.HasPrefix(rest, kw) || strings.HasPrefix(kw, rest) {
			return i
		}
	}
	return len(s)
}

// emitToolCitations extracts citation markers from a tool response event.
// Tool results arrive JSON-encoded, so the content is flattened back to its
// string values before scanning.
func (d *Driver) emitToolCitations(ev *event.Event, emit EmitFunc) error {
	for _, choice := range ev.Response.Choices {
		if choice.Message.Content == "" {
			continue
		}
		_, citations := marker.Extract(flattenToolContent(choice.Message.Content))
		for _, c := range citations {
			if err := emit(CitationEvent(c)); err != nil {
				return err
			}
		}
	}
	return nil
}

// flattenToolContent joins every string value found in a JSON document, in
// key order, so markers survive the tool-result encoding. Non-JSON content
// is returned unchanged.
func flattenToolContent(content string) string {
	var doc any
	if err := json.Unmarshal([]byte(content), &doc); err != nil {
		return content
	}
	var parts []string
	collectStrings(doc, &parts)
	return strings.Join(parts, "\n")
}

func collectStrings(v any, out *[]string) {
	switch t := v.(type) {
	case string:
		*out = append(*out, t)
	case []any:
		for _, item := range t {
			collectStrings(item, out)
		}
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			collectStrings(t[k], out)
		}
	}
}

// finish flushes held text, synthesizes audio for the spoken transcript and
// emits the terminal done event.
func (d *Driver) finish(ctx context.Context, st *turnState, voiceID string, emit EmitFunc) error {
	if st.hold != "" {
		// Whatever was held never completed into a marker; emit it as text.
		clean := marker.Strip(st.hold)
		st.hold = ""
		if clean != "" {
			st.spoken.WriteString(clean)
			if err := emit(ContentEvent(clean)); err != nil {
				return err
			}
		}
	}
	if voiceID != "" && d.synth.Enabled() {
		text := speech.CleanForSpeech(st.spoken.String())
		for _, sentence := range speech.SplitSentences(text) {
			data, err := d.synth.Synthesize(ctx, sentence, voiceID)
			if err != nil {
				log.Warnf("stream: skipping failed synthesis: %v", err)
				continue
			}
			if len(data) == 0 {
				continue
			}
			if err := emit(AudioEvent(base64.StdEncoding.EncodeToString(data))); err != nil {
				return err
			}
		}
	}
	return emit(DoneEvent())
}
