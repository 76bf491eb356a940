//
// Tencent is pleased to support the open source community by making moot available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// moot is licensed under the Apache License Version 2.0.
//
//

package legaltools

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"moot/internal/docstore"
	"moot/internal/marker"
)

// maxDocumentChars caps how much document text one tool call returns.
const maxDocumentChars = 5000

type readDocumentInput struct {
	DocumentName string `json:"document_name" jsonschema:"description=Name of the uploaded document to read, e.g. contract.pdf"`
	Section      string `json:"section,omitempty" jsonschema:"description=Optional heading or phrase; only the part of the document starting there is returned"`
}

type readDocumentOutput struct {
	Content string `json:"content"`
}

func readDocumentFn(env Env) func(context.Context, readDocumentInput) (readDocumentOutput, error) {
	return func(ctx context.Context, in readDocumentInput) (readDocumentOutput, error) {
		docs, err := env.Docs.List(ctx, env.SessionID)
		if err != nil {
			return readDocumentOutput{}, fmt.Errorf("list documents: %w", err)
		}
		id, doc, ok := matchDocument(docs, in.DocumentName)
		if !ok {
			names := make([]string, 0, len(docs))
			for _, d := range docs {
				names = append(names, d.Name)
			}
			sort.Strings(names)
			if len(names) == 0 {
				return readDocumentOutput{
					Content: "No documents have been uploaded to this session.",
				}, nil
			}
			return readDocumentOutput{
				Content: fmt.Sprintf("No document named %q. Available documents: %s.",
					in.DocumentName, strings.Join(names, ", ")),
			}, nil
		}

		content := doc.Content
		if in.Section != "" {
			section, found := extractSection(content, in.Section)
			if !found {
				return readDocumentOutput{
					Content: fmt.Sprintf("Document %q has no section matching %q.", doc.Name, in.Section),
				}, nil
			}
			content = section
		}
		if len(content) > maxDocumentChars {
			content = content[:maxDocumentChars] + "\n[content truncated]"
		}

		link := marker.EmbedLink(doc.Name, "/documents/"+id, "Uploaded document")
		return readDocumentOutput{
			Content: fmt.Sprintf("Contents of %s:\n\n%s\n%s", doc.Name, content, link),
		}, nil
	}
}

// matchDocument finds a document by name, case-insensitively, accepting an
// exact match, a match without the file extension, or a substring match.
func matchDocument(docs map[string]docstore.Document, name string) (string, docstore.Document, bool) {
	want := strings.ToLower(strings.TrimSpace(name))
	if want == "" {
		return "", docstore.Document{}, false
	}
	ids := make([]string, 0, len(docs))
	for id := range docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	match := func(accept func(string) bool) (string, docstore.Document, bool) {
		for _, id := range ids {
			if accept(strings.ToLower(docs[id].Name)) {
				return id, docs[id], true
			}
		}
		return "", docstore.Document{}, false
	}
	if id, d, ok := match(func(n string) bool { return n == want }); ok {
		return id, d, true
	}
	if id, d, ok := match(func(n string) bool { return trimExt(n) == trimExt(want) }); ok {
		return id, d, true
	}
	return match(func(n string) bool { return strings.Contains(n, want) })
}

func trimExt(name string) string {
	if idx := strings.LastIndex(name, "."); idx > 0 {
		return name[:idx]
	}
	return name
}

// extractSection returns the document text starting at the first line that
// contains the requested heading, up to the next line that looks like a
// heading of its own.
func extractSection(content, section string) (string, bool) {
	want := strings.ToLower(section)
	lines := strings.Split(content, "\n")
	start := -1
	for i, line := range lines {
		if strings.Contains(strings.ToLower(line), want) {
			start = i
			break
		}
	}
	if start < 0 {
		return "", false
	}
	end := len(lines)
	for i := start + 1; i < len(lines); i++ {
		if looksLikeHeading(lines[i]) {
			end = i
			break
		}
	}
	return strings.TrimSpace(strings.Join(lines[start:end], "\n")), true
}

// looksLikeHeading recognizes the heading shapes common in extracted legal
// text: markdown headings, short all-caps lines, and numbered article or
// section captions.
func looksLikeHeading(line string) bool {
	s := strings.TrimSpace(line)
	if s == "" || len(s) > 80 {
		return false
	}
	if strings.HasPrefix(s, "#") {
		return true
	}
	upper := strings.ToUpper(s)
	if s == upper && strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		return true
	}
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "article ") ||
		strings.HasPrefix(lower, "section ") ||
		strings.HasPrefix(s, "§")
}
