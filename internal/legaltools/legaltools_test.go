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
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moot/internal/docstore"
	"moot/internal/marker"
)

func newTestEnv(t *testing.T, sessionID string) Env {
	t.Helper()
	backend := docstore.NewMemoryBackend()
	return Env{
		SessionID: sessionID,
		Docs:      docstore.New(backend),
		Generated: docstore.NewGeneratedStore(backend),
		Search:    NewSearcher(),
	}
}

func TestSearcherFiltersNonLegalDomains(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		fmt.Fprint(w, `{
			"Heading": "Unconscionability",
			"Abstract": "A defense against contract enforcement.",
			"AbstractURL": "https://www.law.cornell.edu/wex/unconscionability",
			"RelatedTopics": [
				{"Text": "Some blog - opinions", "FirstURL": "https://randomblog.example.com/post"},
				{"Text": "UCC 2-302 - statutory text", "FirstURL": "https://www.law.cornell.edu/ucc/2/2-302"}
			]
		}`)
	}))
	defer srv.Close()

	s := NewSearcher(WithSearchEndpoint(srv.URL), WithSearchHTTPClient(srv.Client()))
	results := s.Search(context.Background(), "unconscionability defense", 5)

	require.Len(t, results, 2)
	assert.Equal(t, "Unconscionability", results[0].Title)
	assert.Equal(t, "UCC 2-302", results[1].Title)
	assert.Equal(t, "statutory text", results[1].Snippet)
}

func TestSearcherFallsBackWhenProviderDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	s := NewSearcher(WithSearchEndpoint(srv.URL), WithSearchHTTPClient(srv.Client()))
	results := s.Search(context.Background(), "unconscionable arbitration clause", 5)

	require.NotEmpty(t, results)
	assert.Contains(t, results[0].Title, "Williams v. Walker-Thomas")
}

func TestSearcherFallbackCorpora(t *testing.T) {
	tests := []struct {
		query     string
		wantTitle string
	}{
		{"fourteenth amendment incorporation", "Constitution"},
		{"adverse possession elements", "Legal Information Institute"},
	}
	for _, tt := range tests {
		results := fallbackResults(tt.query, 5)
		require.NotEmpty(t, results, tt.query)
		assert.Contains(t, results[0].Title, tt.wantTitle)
	}
}

func TestSearchToolEmbedsCitations(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	env := newTestEnv(t, "s1")
	env.Search = NewSearcher(WithSearchEndpoint(srv.URL), WithSearchHTTPClient(srv.Client()))

	out, err := searchFn(env)(context.Background(), searchInput{Query: "arbitration preemption"})
	require.NoError(t, err)

	_, citations := marker.Extract(out.Results)
	require.NotEmpty(t, citations)
	for _, c := range citations {
		assert.Equal(t, marker.KindSource, c.Kind)
		assert.NotEmpty(t, c.URL)
	}
}

func TestReadDocumentMatching(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, "s1")
	require.NoError(t, env.Docs.Add(ctx, "s1", "d1", docstore.Document{
		Name:    "Lease_Agreement.pdf",
		Content: "ARTICLE 1\nPremises and term.\nARTICLE 2\nRent is due monthly.",
	}))

	read := readDocumentFn(env)

	// Case-insensitive exact match.
	out, err := read(ctx, readDocumentInput{DocumentName: "lease_agreement.pdf"})
	require.NoError(t, err)
	assert.Contains(t, out.Content, "Premises and term")

	// Match without extension.
	out, err = read(ctx, readDocumentInput{DocumentName: "Lease_Agreement"})
	require.NoError(t, err)
	assert.Contains(t, out.Content, "Premises and term")

	// Substring match.
	out, err = read(ctx, readDocumentInput{DocumentName: "lease"})
	require.NoError(t, err)
	assert.Contains(t, out.Content, "Premises and term")

	// Unknown name lists what is available.
	out, err = read(ctx, readDocumentInput{DocumentName: "deposition"})
	require.NoError(t, err)
	assert.Contains(t, out.Content, "Lease_Agreement.pdf")
	assert.Contains(t, out.Content, "No document named")
}

func TestReadDocumentSectionAndLink(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, "s1")
	require.NoError(t, env.Docs.Add(ctx, "s1", "d1", docstore.Document{
		Name:    "contract.txt",
		Content: "ARTICLE 1\nPremises.\nARTICLE 2\nRent is due monthly.\nLate fees apply.\nARTICLE 3\nTermination.",
	}))

	out, err := readDocumentFn(env)(ctx, readDocumentInput{DocumentName: "contract.txt", Section: "article 2"})
	require.NoError(t, err)
	assert.Contains(t, out.Content, "Rent is due monthly")
	assert.Contains(t, out.Content, "Late fees apply")
	assert.NotContains(t, out.Content, "Termination")

	_, citations := marker.Extract(out.Content)
	require.Len(t, citations, 1)
	assert.Equal(t, marker.KindUploadedDocument, citations[0].Kind)
	assert.Equal(t, "/documents/d1", citations[0].URL)
}

func TestReadDocumentTruncates(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, "s1")
	require.NoError(t, env.Docs.Add(ctx, "s1", "d1", docstore.Document{
		Name:    "long.txt",
		Content: strings.Repeat("x", maxDocumentChars+100),
	}))

	out, err := readDocumentFn(env)(ctx, readDocumentInput{DocumentName: "long.txt"})
	require.NoError(t, err)
	assert.Contains(t, out.Content, "[content truncated]")
}

func TestReadDocumentEmptySession(t *testing.T) {
	env := newTestEnv(t, "s1")
	out, err := readDocumentFn(env)(context.Background(), readDocumentInput{DocumentName: "anything"})
	require.NoError(t, err)
	assert.Contains(t, out.Content, "No documents have been uploaded")
}

func TestGenerateDocument(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, "s1")

	out, err := generateDocumentFn(env)(ctx, generateDocumentInput{
		Title:        "Motion to Compel Arbitration",
		DocumentType: "brief",
		Content:      "Introduction.\n\nThe agreement delegates arbitrability to the arbitrator.",
		CaseNumber:   "23-cv-1042",
		Client:       "Acme Corp.",
	})
	require.NoError(t, err)

	_, citations := marker.Extract(out.Message)
	require.Len(t, citations, 1)
	require.Equal(t, marker.KindGeneratedDocument, citations[0].Kind)

	filename := citations[0].Title
	assert.True(t, strings.HasPrefix(filename, "brief_Motion_to_Compel_Arbitration_"), filename)
	assert.True(t, strings.HasSuffix(filename, ".pdf"), filename)

	data, meta, err := env.Generated.Open(ctx, filename)
	require.NoError(t, err)
	assert.True(t, len(data) > 0)
	assert.Equal(t, "%PDF", string(data[:4]))
	assert.Equal(t, "brief", meta.DocumentType)
	assert.Equal(t, "s1", meta.SessionID)

	// Plain-text mirror is readable through read_document.
	read, err := readDocumentFn(env)(ctx, readDocumentInput{DocumentName: filename})
	require.NoError(t, err)
	assert.Contains(t, read.Content, "delegates arbitrability")
}

func TestGenerateDocumentUnknownTypeDefaultsToMemo(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, "s1")

	out, err := generateDocumentFn(env)(ctx, generateDocumentInput{
		Title:        "Notes",
		DocumentType: "screenplay",
		Content:      "Body.",
	})
	require.NoError(t, err)

	_, citations := marker.Extract(out.Message)
	require.Len(t, citations, 1)
	assert.True(t, strings.HasPrefix(citations[0].Title, "memo_"), citations[0].Title)
}

func TestSanitizeTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Motion to Compel Arbitration", "Motion_to_Compel_Arbitration"},
		{"Re: Smith v. Jones (2024)!", "Re_Smith_v_Jones_2024"},
		{"///", "document"},
		{"", "document"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeTitle(tt.in), tt.in)
	}
}

func TestProvideLink(t *testing.T) {
	env := newTestEnv(t, "s1")
	out, err := provideLinkFn(env)(context.Background(), provideLinkInput{
		Title:       "Oyez: Concepcion oral argument",
		URL:         "https://www.oyez.org/cases/2010/09-893",
		Description: "Audio and transcript",
	})
	require.NoError(t, err)

	_, citations := marker.Extract(out.Message)
	require.Len(t, citations, 1)
	assert.Equal(t, marker.KindSource, citations[0].Kind)
	assert.Equal(t, "https://www.oyez.org/cases/2010/09-893", citations[0].URL)
}

func TestToolsDeclarations(t *testing.T) {
	env := newTestEnv(t, "s1")
	tools := Tools(env)
	require.Len(t, tools, 4)

	names := make([]string, 0, len(tools))
	for _, tl := range tools {
		names = append(names, tl.Declaration().Name)
	}
	assert.ElementsMatch(t, names,
		[]string{"web_search", "read_document", "generate_document", "provide_link"})
}
