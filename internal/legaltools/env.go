//
// Tencent is pleased to support the open source community by making moot available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// moot is licensed under the Apache License Version 2.0.
//
//

// Package legaltools implements the agent's toolset: legal web search,
// document reading, PDF generation and link sharing. Tools are constructed
// per turn around an explicit Env so no tool ever reaches for global state.
package legaltools

import (
	"trpc.group/trpc-go/trpc-agent-go/tool"
	"trpc.group/trpc-go/trpc-agent-go/tool/function"

	"moot/internal/docstore"
)

// Env is the per-turn environment the tools close over.
type Env struct {
	SessionID string
	Docs      *docstore.Store
	Generated *docstore.GeneratedStore
	Search    *Searcher
}

// Tools builds the toolset for one turn.
func Tools(env Env) []tool.Tool {
	return []tool.Tool{
		function.NewFunctionTool(
			searchFn(env),
			function.WithName("web_search"),
			function.WithDescription("Search the web for legal sources: case law, "+
				"statutes, regulations and commentary. Returns result summaries with "+
				"citation markers that must be kept verbatim in your response."),
		),
		function.NewFunctionTool(
			readDocumentFn(env),
			function.WithName("read_document"),
			function.WithDescription("Read a document the student uploaded to this "+
				"session, optionally a single named section of it. Use this instead of "+
				"guessing at the contents of uploaded material."),
		),
		function.NewFunctionTool(
			generateDocumentFn(env),
			function.WithName("generate_document"),
			function.WithDescription("Generate a downloadable PDF legal document "+
				"(memo, brief, summary, outline, contract_draft or letter) from the "+
				"content you provide. Returns a download marker that must be kept "+
				"verbatim in your response."),
		),
		function.NewFunctionTool(
			provideLinkFn(env),
			function.WithName("provide_link"),
			function.WithDescription("Share a link to an external resource with the "+
				"student. Returns a link marker that must be kept verbatim in your "+
				"response."),
		),
	}
}
