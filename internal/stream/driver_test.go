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
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"trpc.group/trpc-go/trpc-agent-go/event"
	"trpc.group/trpc-go/trpc-agent-go/model"

	"moot/internal/marker"
	"moot/internal/speech"
)

func deltaEvent(text string) *event.Event {
	return &event.Event{Response: &model.Response{
		Object:    model.ObjectTypeChatCompletionChunk,
		IsPartial: true,
		Choices:   []model.Choice{{Delta: model.Message{Content: text}}},
	}}
}

func finalEvent(text string) *event.Event {
	return &event.Event{Response: &model.Response{
		Object:  model.ObjectTypeChatCompletion,
		Choices: []model.Choice{{Message: model.Message{Role: model.RoleAssistant, Content: text}}},
	}}
}

func toolCallEvent(names ...string) *event.Event {
	calls := make([]model.ToolCall, 0, len(names))
	for _, n := range names {
		calls = append(calls, model.ToolCall{
			Type:     "function",
			Function: model.FunctionDefinitionParam{Name: n},
		})
	}
	return &event.Event{Response: &model.Response{
		Object:  model.ObjectTypeChatCompletion,
		Choices: []model.Choice{{Message: model.Message{Role: model.RoleAssistant, ToolCalls: calls}}},
	}}
}

func toolResponseEvent(t *testing.T, payload any) *event.Event {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return &event.Event{Response: &model.Response{
		Object:  model.ObjectTypeToolResponse,
		Choices: []model.Choice{{Message: model.Message{Role: model.RoleTool, ToolID: "call-1", Content: string(raw)}}},
	}}
}

func errorEvent(msg string) *event.Event {
	return &event.Event{Response: &model.Response{
		Object: model.ObjectTypeError,
		Error:  &model.ResponseError{Message: msg, Type: model.ErrorTypeAPIError},
	}}
}

// runDriver feeds the given events through a Driver and collects the wire
// events it emits.
func runDriver(t *testing.T, events ...*event.Event) []Event {
	t.Helper()
	ch := make(chan *event.Event, len(events))
	for _, ev := range events {
		ch <- ev
	}
	close(ch)

	var got []Event
	d := NewDriver(speech.New(""))
	err := d.Consume(context.Background(), ch, "", func(ev Event) error {
		got = append(got, ev)
		return nil
	})
	require.NoError(t, err)
	return got
}

func contentOf(events []Event) string {
	var b strings.Builder
	for _, ev := range events {
		if ev.Type == TypeContent {
			b.WriteString(ev.Content)
		}
	}
	return b.String()
}

func typesOf(events []Event) []string {
	types := make([]string, 0, len(events))
	for _, ev := range events {
		types = append(types, ev.Type)
	}
	return types
}

func TestConsolidatedFinalIsNotReplayed(t *testing.T) {
	got := runDriver(t,
		deltaEvent("Hello "),
		deltaEvent("world."),
		finalEvent("Hello world."),
	)
	assert.Equal(t, "Hello world.", contentOf(got))
	assert.Equal(t, TypeDone, got[len(got)-1].Type)
}

func TestFinalSuffixBeyondStreamedIsEmitted(t *testing.T) {
	got := runDriver(t,
		deltaEvent("Hello"),
		finalEvent("Hello there."),
	)
	assert.Equal(t, "Hello there.", contentOf(got))
}

func TestFinalWithoutDeltasIsEmittedWhole(t *testing.T) {
	got := runDriver(t, finalEvent("Direct answer."))
	assert.Equal(t, "Direct answer.", contentOf(got))
}

func TestToolCallThenCitationsOrdering(t *testing.T) {
	result := map[string]string{
		"results": "1. Williams v. Walker-Thomas\n" +
			marker.EmbedCitation(marker.Citation{
				Title: "Williams v. Walker-Thomas",
				URL:   "https://law.justia.com/cases/350/445/",
			}),
	}
	got := runDriver(t,
		deltaEvent("Let me check. "),
		toolCallEvent("web_search"),
		toolResponseEvent(t, result),
		deltaEvent("The leading case is Williams."),
		finalEvent("The leading case is Williams."),
	)

	types := typesOf(got)
	callIdx := -1
	citIdx := -1
	for i, typ := range types {
		if typ == TypeToolCall && callIdx < 0 {
			callIdx = i
		}
		if typ == TypeCitation && citIdx < 0 {
			citIdx = i
		}
	}
	require.GreaterOrEqual(t, callIdx, 0)
	require.GreaterOrEqual(t, citIdx, 0)
	assert.Less(t, callIdx, citIdx)

	var cit *marker.Citation
	for _, ev := range got {
		if ev.Type == TypeCitation {
			cit = ev.Citation
			break
		}
	}
	require.NotNil(t, cit)
	assert.Equal(t, "Williams v. Walker-Thomas", cit.Title)
	assert.Equal(t, marker.KindSource, cit.Kind)
}

func TestSpanResetAfterToolCall(t *testing.T) {
	// The pre-call and post-call spans stream independently; the post-call
	// consolidated message must not be replayed just because the first span
	// advanced the counter.
	got := runDriver(t,
		deltaEvent("Checking now."),
		toolCallEvent("web_search"),
		toolResponseEvent(t, map[string]string{"results": "nothing"}),
		deltaEvent("Found it."),
		finalEvent("Found it."),
	)
	assert.Equal(t, "Checking now.Found it.", contentOf(got))
}

func TestMarkerSplitAcrossDeltas(t *testing.T) {
	// A marker split across delta chunks must never leak into the display
	// text, and assistant text is not a citation source: the marker is
	// stripped without emitting anything.
	got := runDriver(t,
		deltaEvent(`See [CITATION:{"title":"Marbury v. Madison",`),
		deltaEvent(`"url":"https://supreme.justia.com/cases/federal/us/5/137/"}] for review.`),
		finalEvent(`See [CITATION:{"title":"Marbury v. Madison","url":"https://supreme.justia.com/cases/federal/us/5/137/"}] for review.`),
	)

	content := contentOf(got)
	assert.NotContains(t, content, "CITATION")
	assert.Contains(t, content, "See ")
	assert.Contains(t, content, "for review.")

	for _, ev := range got {
		assert.NotEqual(t, TypeCitation, ev.Type)
	}
}

func TestEchoedToolMarkerEmitsSingleCitation(t *testing.T) {
	// The model often repeats a marker from a tool result verbatim in its
	// answer. The citation was already emitted with the tool response; the
	// echo must be stripped from the text, not emitted a second time.
	m := marker.EmbedCitation(marker.Citation{
		Title: "Williams v. Walker-Thomas",
		URL:   "https://law.justia.com/cases/350/445/",
	})
	got := runDriver(t,
		toolCallEvent("web_search"),
		toolResponseEvent(t, map[string]string{"results": "1. Williams v. Walker-Thomas\n" + m}),
		deltaEvent("The leading case is Williams. "+m),
		finalEvent("The leading case is Williams. "+m),
	)

	var citations []marker.Citation
	for _, ev := range got {
		if ev.Type == TypeCitation {
			citations = append(citations, *ev.Citation)
		}
	}
	require.Len(t, citations, 1)
	assert.Equal(t, "Williams v. Walker-Thomas", citations[0].Title)
	assert.NotContains(t, contentOf(got), "CITATION")
}

func TestHeldFragmentFlushedAtEnd(t *testing.T) {
	// An unfinished marker never completes; its text is flushed verbatim at
	// the end of the turn rather than silently dropped.
	got := runDriver(t, deltaEvent("Trailing [CITATION:{"))
	content := contentOf(got)
	assert.Contains(t, content, "Trailing ")
	assert.Equal(t, TypeDone, got[len(got)-1].Type)
}

func TestErrorEventIsTerminal(t *testing.T) {
	ch := make(chan *event.Event, 2)
	ch <- deltaEvent("partial")
	ch <- errorEvent("rate limited")
	close(ch)

	var got []Event
	d := NewDriver(speech.New(""))
	err := d.Consume(context.Background(), ch, "", func(ev Event) error {
		got = append(got, ev)
		return nil
	})
	require.NoError(t, err)

	last := got[len(got)-1]
	assert.Equal(t, TypeError, last.Type)
	assert.Equal(t, "rate limited", last.Error)
	for _, ev := range got {
		assert.NotEqual(t, TypeDone, ev.Type)
	}
}

func TestRunnerCompletionIsIgnored(t *testing.T) {
	completion := &event.Event{Response: &model.Response{
		Object: model.ObjectTypeRunnerCompletion,
		Done:   true,
	}}
	got := runDriver(t, finalEvent("Answer."), completion)
	assert.Equal(t, "Answer.", contentOf(got))
	assert.Equal(t, TypeDone, got[len(got)-1].Type)
}

func TestEmitFailureStopsConsumption(t *testing.T) {
	ch := make(chan *event.Event, 3)
	ch <- deltaEvent("one")
	ch <- deltaEvent("two")
	close(ch)

	sentinel := errors.New("client gone")
	d := NewDriver(speech.New(""))
	err := d.Consume(context.Background(), ch, "", func(ev Event) error {
		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)
}

func TestCancelledTurnEmitsTerminalError(t *testing.T) {
	// A cancelled context must not leave the stream hanging without a
	// terminal frame while the client still listens.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var got []Event
	d := NewDriver(speech.New(""))
	err := d.Consume(ctx, make(chan *event.Event), "", func(ev Event) error {
		got = append(got, ev)
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	require.NotEmpty(t, got)
	assert.Equal(t, TypeError, got[len(got)-1].Type)
}

func TestNoAudioWithoutVoice(t *testing.T) {
	got := runDriver(t, finalEvent("Spoken text."))
	for _, ev := range got {
		assert.NotEqual(t, TypeAudio, ev.Type)
	}
}

func TestHoldbackIndex(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"plain text", len("plain text")},
		{"see [CITATION:{", 4},
		{"see [CIT", 4},
		{"see [", 4},
		{"done [DOWNLOAD_LINK:memo.pdf]", len("done [DOWNLOAD_LINK:memo.pdf]")},
		{"array[0] access", len("array[0] access")},
		{"bracket [note", len("bracket [note")},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, holdbackIndex(tt.in), tt.in)
	}
}
