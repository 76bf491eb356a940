//
// Tencent is pleased to support the open source community by making moot available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// moot is licensed under the Apache License Version 2.0.
//
//

// Package marker encodes and decodes the inline sentinels that tools embed in
// their textual results: citations, download links and shared links. The
// orchestrator extracts the structured records and strips the sentinels before
// any text reaches the display layer or speech synthesis.
package marker

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"trpc.group/trpc-go/trpc-agent-go/log"
)

// Kind classifies where a citation points.
type Kind string

// Citation kinds. Rendering code switches over these exhaustively.
const (
	KindSource            Kind = "source"
	KindGeneratedDocument Kind = "generated-document"
	KindUploadedDocument  Kind = "uploaded-document"
)

// Citation is one structured record extracted from a tool result.
type Citation struct {
	ID      string `json:"id,omitempty"`
	Kind    Kind   `json:"kind"`
	Title   string `json:"title"`
	URL     string `json:"url,omitempty"`
	Date    string `json:"date,omitempty"`
	Snippet string `json:"snippet,omitempty"`
}

// citationPayload is the JSON shape carried inside a [CITATION:...] marker.
type citationPayload struct {
	Title   string `json:"title"`
	URL     string `json:"url,omitempty"`
	Date    string `json:"date,omitempty"`
	Snippet string `json:"snippet,omitempty"`
}

// Well-known URL prefixes used to classify LINK_PROVIDED markers.
const (
	downloadURLPrefix = "/downloads/"
	documentURLPrefix = "/documents/"
)

// markerPattern matches any of the three marker shapes in a single scan so
// that extraction order follows text order across shapes. The citation
// alternative is lazy: it stops at the first "}]" which is sufficient for the
// flat JSON object the tools emit.
var markerPattern = regexp.MustCompile(
	`\[(?s)(CITATION:\{.*?\}|DOWNLOAD_LINK:[^\]]+|LINK_PROVIDED:[^\]]*)\]`,
)

// Extract returns the input with all markers removed together with the
// structured records they carried, in left-to-right order. A marker whose
// payload fails to parse is dropped from the result list (and from the
// display text) without aborting the scan.
func Extract(s string) (string, []Citation) {
	if !strings.Contains(s, "[") {
		return s, nil
	}
	var records []Citation
	clean := markerPattern.ReplaceAllStringFunc(s, func(m string) string {
		body := m[1 : len(m)-1]
		if c, ok := parseMarker(body); ok {
			records = append(records, c)
		}
		return ""
	})
	return clean, records
}

// Strip removes all markers from s, discarding their payloads.
func Strip(s string) string {
	clean, _ := Extract(s)
	return clean
}

func parseMarker(body string) (Citation, bool) {
	switch {
	case strings.HasPrefix(body, "CITATION:"):
		var p citationPayload
		raw := strings.TrimPrefix(body, "CITATION:")
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			log.Warnf("marker: skipping malformed citation payload: %v", err)
			return Citation{}, false
		}
		return Citation{
			Kind:    KindSource,
			Title:   p.Title,
			URL:     p.URL,
			Date:    p.Date,
			Snippet: p.Snippet,
		}, true
	case strings.HasPrefix(body, "DOWNLOAD_LINK:"):
		filename := strings.TrimPrefix(body, "DOWNLOAD_LINK:")
		return Citation{
			Kind:  KindGeneratedDocument,
			Title: filename,
			URL:   downloadURLPrefix + filename,
		}, true
	case strings.HasPrefix(body, "LINK_PROVIDED:"):
		parts := strings.SplitN(strings.TrimPrefix(body, "LINK_PROVIDED:"), "|", 3)
		if len(parts) != 3 {
			log.Warnf("marker: skipping malformed link marker: %q", body)
			return Citation{}, false
		}
		return Citation{
			Kind:    classifyLinkURL(parts[1]),
			Title:   parts[0],
			URL:     parts[1],
			Snippet: parts[2],
		}, true
	}
	return Citation{}, false
}

// classifyLinkURL maps a shared link onto a citation kind by its URL shape.
// Links into the generated-document download area and the uploaded-document
// area are distinguished from external sources.
func classifyLinkURL(url string) Kind {
	switch {
	case strings.HasPrefix(url, downloadURLPrefix):
		return KindGeneratedDocument
	case strings.HasPrefix(url, documentURLPrefix):
		return KindUploadedDocument
	default:
		return KindSource
	}
}

// EmbedCitation renders a [CITATION:...] marker for a search result.
func EmbedCitation(c Citation) string {
	p := citationPayload{Title: c.Title, URL: c.URL, Date: c.Date, Snippet: c.Snippet}
	raw, err := json.Marshal(p)
	if err != nil {
		// citationPayload contains only strings; this cannot happen.
		return ""
	}
	return fmt.Sprintf("[CITATION:%s]", raw)
}

// EmbedDownload renders a [DOWNLOAD_LINK:...] marker for a generated file.
func EmbedDownload(filename string) string {
	return fmt.Sprintf("[DOWNLOAD_LINK:%s]", filename)
}

// EmbedLink renders a [LINK_PROVIDED:...] marker. The description may be
// empty; pipes inside the fields are not supported by the wire shape and are
// replaced with slashes.
func EmbedLink(title, url, description string) string {
	sanitize := func(s string) string { return strings.ReplaceAll(s, "|", "/") }
	return fmt.Sprintf("[LINK_PROVIDED:%s|%s|%s]",
		sanitize(title), sanitize(url), sanitize(description))
}
