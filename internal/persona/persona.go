//
// Tencent is pleased to support the open source community by making moot available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// moot is licensed under the Apache License Version 2.0.
//
//

// Package persona holds the role instructions the agent speaks with and the
// case context injected on the first turn of a session.
package persona

import (
	"fmt"
	"strings"
)

// DefaultID is the persona used when the requested one is unknown.
const DefaultID = "assistant"

// Persona is one selectable role for the agent.
type Persona struct {
	ID          string
	Name        string
	Instruction string
}

const sharedInstruction = `
You are speaking with a law student practicing for moot court and legal
drafting. Ground every legal claim in real authority and cite it with the
web_search tool rather than from memory. When you cite a source, keep the
citation marker exactly as the tool returned it. Use read_document to quote
uploaded material instead of guessing at its contents, and generate_document
when the student asks for a memo, brief, or outline they can keep. Keep
responses conversational: they are read aloud, so avoid long enumerations and
dense formatting.`

var registry = map[string]Persona{
	"assistant": {
		ID:   "assistant",
		Name: "Practice Assistant",
		Instruction: `You are a supportive legal practice assistant. Help the
student work through their case: clarify doctrine, test their arguments, and
point at the authorities they should read next.` + sharedInstruction,
	},
	"opposing_counsel": {
		ID:   "opposing_counsel",
		Name: "Opposing Counsel",
		Instruction: `You are opposing counsel in this matter. Argue the other
side vigorously but professionally: attack weak premises, raise the
counter-authorities, and never concede a point the record does not force you
to concede.` + sharedInstruction,
	},
	"judge": {
		ID:   "judge",
		Name: "Judge",
		Instruction: `You are the presiding judge. Interrupt with pointed
questions the way a hot bench would: probe jurisdiction, standing, the
standard of review, and the weakest link in the chain of authority. Stay
neutral between the parties.` + sharedInstruction,
	},
	"witness": {
		ID:   "witness",
		Name: "Witness",
		Instruction: `You are a witness under examination. Answer only what is
asked, stay inside the facts of the case, and behave the way a real witness
would: sometimes evasive, sometimes forgetful, never volunteering the
examiner's conclusion for them.` + sharedInstruction,
	},
	"mentor": {
		ID:   "mentor",
		Name: "Mentor",
		Instruction: `You are a senior litigator mentoring the student. Review
their performance, explain what a stronger advocate would have done, and
assign concrete next steps: cases to read, arguments to rehearse, documents
to draft.` + sharedInstruction,
	},
}

// Get returns the persona for id, falling back to the default for unknown or
// empty ids.
func Get(id string) Persona {
	if p, ok := registry[id]; ok {
		return p
	}
	return registry[DefaultID]
}

// List returns all registered persona ids.
func List() []string {
	ids := make([]string, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	return ids
}

// CaseContext carries the practice-session setup chosen by the student. It
// is delivered with the first message of a session only.
type CaseContext struct {
	CaseType      string   `json:"case_type"`
	Difficulty    string   `json:"difficulty"`
	Persona       string   `json:"persona"`
	Description   string   `json:"description"`
	UploadedFiles []string `json:"uploaded_files"`
}

// FirstTurnMessage prepends the case context to the student's first message
// so the agent sees the setup without it living in the persona instruction.
func FirstTurnMessage(cc CaseContext, userMessage string) string {
	var b strings.Builder
	b.WriteString("Session setup for this practice round:\n")
	if cc.CaseType != "" {
		fmt.Fprintf(&b, "- Case type: %s\n", cc.CaseType)
	}
	if cc.Difficulty != "" {
		fmt.Fprintf(&b, "- Difficulty: %s\n", cc.Difficulty)
	}
	if cc.Description != "" {
		fmt.Fprintf(&b, "- Case description: %s\n", cc.Description)
	}
	if len(cc.UploadedFiles) > 0 {
		fmt.Fprintf(&b, "- Uploaded documents: %s\n", strings.Join(cc.UploadedFiles, ", "))
	}
	b.WriteString("\n")
	b.WriteString(userMessage)
	return b.String()
}
