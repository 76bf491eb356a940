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
	"regexp"
	"strings"
	"time"

	"moot/internal/docstore"
	"moot/internal/marker"
)

// documentTypes are the supported generate_document layouts.
var documentTypes = map[string]string{
	"memo":           "MEMORANDUM",
	"brief":          "BRIEF",
	"summary":        "CASE SUMMARY",
	"outline":        "ARGUMENT OUTLINE",
	"contract_draft": "DRAFT AGREEMENT",
	"letter":         "",
}

type generateDocumentInput struct {
	Title        string `json:"title" jsonschema:"description=Title of the document"`
	DocumentType string `json:"document_type" jsonschema:"description=One of: memo, brief, summary, outline, contract_draft, letter"`
	Content      string `json:"content" jsonschema:"description=Full body text of the document; paragraphs separated by blank lines"`
	CaseNumber   string `json:"case_number,omitempty" jsonschema:"description=Optional case or docket number for the header"`
	Client       string `json:"client,omitempty" jsonschema:"description=Optional client or party name for the header"`
}

type generateDocumentOutput struct {
	Message string `json:"message"`
}

func generateDocumentFn(env Env) func(context.Context, generateDocumentInput) (generateDocumentOutput, error) {
	return func(ctx context.Context, in generateDocumentInput) (generateDocumentOutput, error) {
		docType := strings.ToLower(strings.TrimSpace(in.DocumentType))
		if _, ok := documentTypes[docType]; !ok {
			docType = "memo"
		}
		if strings.TrimSpace(in.Content) == "" {
			return generateDocumentOutput{Message: "No content provided; nothing was generated."}, nil
		}

		filename := fmt.Sprintf("%s_%s_%s.pdf",
			docType, sanitizeTitle(in.Title), time.Now().UTC().Format("20060102_150405"))

		data, err := renderPDF(docType, in.Title, in.CaseNumber, in.Client, in.Content)
		if err != nil {
			return generateDocumentOutput{}, fmt.Errorf("render pdf: %w", err)
		}
		meta := docstore.GeneratedMeta{
			Filename:     filename,
			Title:        in.Title,
			DocumentType: docType,
			SessionID:    env.SessionID,
			ContentType:  "application/pdf",
		}
		if err := env.Generated.Register(ctx, meta, data); err != nil {
			return generateDocumentOutput{}, fmt.Errorf("register document: %w", err)
		}
		// Mirror the plain text into the session store so read_document can
		// quote the agent's own output later in the session.
		if err := env.Docs.Add(ctx, env.SessionID, filename, docstore.Document{
			Name:        filename,
			Content:     in.Content,
			ContentType: "text/plain",
		}); err != nil {
			return generateDocumentOutput{}, fmt.Errorf("mirror document: %w", err)
		}

		return generateDocumentOutput{
			Message: fmt.Sprintf("Generated %s %q. %s", docType, in.Title, marker.EmbedDownload(filename)),
		}, nil
	}
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// sanitizeTitle reduces a document title to a filesystem- and URL-safe slug.
func sanitizeTitle(title string) string {
	safe := unsafeFilenameChars.ReplaceAllString(title, "_")
	safe = strings.Trim(safe, "_")
	if len(safe) > 40 {
		safe = strings.Trim(safe[:40], "_")
	}
	if safe == "" {
		safe = "document"
	}
	return safe
}
