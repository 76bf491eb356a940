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
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"trpc.group/trpc-go/trpc-agent-go/log"

	"moot/internal/marker"
)

const (
	defaultSearchEndpoint = "https://api.duckduckgo.com/"
	defaultSearchTimeout  = 10 * time.Second
	maxSearchResults      = 5
)

// legalDomains is the allow-list applied to search results. Sources outside
// it are dropped so the agent cites primary and established secondary
// authority rather than arbitrary pages.
var legalDomains = []string{
	"law.cornell.edu",
	"supremecourt.gov",
	"uscourts.gov",
	"courtlistener.com",
	"justia.com",
	"oyez.org",
	"findlaw.com",
	"congress.gov",
	"govinfo.gov",
	"loc.gov",
	"scholar.google.com",
	"casetext.com",
	"law.justia.com",
	"americanbar.org",
}

// SearchResult is one source returned by the search provider.
type SearchResult struct {
	Title   string
	URL     string
	Snippet string
}

// Searcher queries the DuckDuckGo Instant Answer API for legal sources and
// falls back to a small built-in corpus when the provider is unreachable.
type Searcher struct {
	endpoint string
	client   *http.Client
}

// SearcherOption configures a Searcher.
type SearcherOption func(*Searcher)

// WithSearchEndpoint overrides the provider endpoint.
func WithSearchEndpoint(endpoint string) SearcherOption {
	return func(s *Searcher) { s.endpoint = endpoint }
}

// WithSearchHTTPClient overrides the HTTP client.
func WithSearchHTTPClient(c *http.Client) SearcherOption {
	return func(s *Searcher) { s.client = c }
}

// NewSearcher creates a Searcher.
func NewSearcher(opts ...SearcherOption) *Searcher {
	s := &Searcher{
		endpoint: defaultSearchEndpoint,
		client:   &http.Client{Timeout: defaultSearchTimeout},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// instantAnswer is the subset of the provider response we consume.
type instantAnswer struct {
	Heading       string `json:"Heading"`
	Abstract      string `json:"Abstract"`
	AbstractURL   string `json:"AbstractURL"`
	RelatedTopics []struct {
		Text     string `json:"Text"`
		FirstURL string `json:"FirstURL"`
		Topics   []struct {
			Text     string `json:"Text"`
			FirstURL string `json:"FirstURL"`
		} `json:"Topics"`
	} `json:"RelatedTopics"`
}

// Search queries the provider and returns up to limit allow-listed results.
// Provider failures and empty result sets fall back to the built-in corpus so
// the agent always has something to cite during offline practice.
func (s *Searcher) Search(ctx context.Context, query string, limit int) []SearchResult {
	if limit <= 0 || limit > maxSearchResults {
		limit = maxSearchResults
	}
	results, err := s.query(ctx, query)
	if err != nil {
		log.Warnf("legaltools: search provider unavailable, using fallback corpus: %v", err)
		return fallbackResults(query, limit)
	}
	results = filterLegal(results)
	if len(results) == 0 {
		return fallbackResults(query, limit)
	}
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

func (s *Searcher) query(ctx context.Context, query string) ([]SearchResult, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("format", "json")
	q.Set("no_html", "1")
	q.Set("skip_disambig", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("legaltools: build search request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("legaltools: search request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("legaltools: search provider status %d", resp.StatusCode)
	}

	var ia instantAnswer
	if err := json.NewDecoder(resp.Body).Decode(&ia); err != nil {
		return nil, fmt.Errorf("legaltools: decode search response: %w", err)
	}

	var results []SearchResult
	if ia.Abstract != "" && ia.AbstractURL != "" {
		results = append(results, SearchResult{
			Title:   ia.Heading,
			URL:     ia.AbstractURL,
			Snippet: ia.Abstract,
		})
	}
	for _, rt := range ia.RelatedTopics {
		if rt.Text != "" && rt.FirstURL != "" {
			results = append(results, topicResult(rt.Text, rt.FirstURL))
		}
		for _, sub := range rt.Topics {
			if sub.Text != "" && sub.FirstURL != "" {
				results = append(results, topicResult(sub.Text, sub.FirstURL))
			}
		}
	}
	return results, nil
}

// topicResult splits a related-topic text of the form "Title - snippet".
func topicResult(text, firstURL string) SearchResult {
	title, snippet := text, ""
	if idx := strings.Index(text, " - "); idx > 0 {
		title, snippet = text[:idx], text[idx+3:]
	}
	return SearchResult{Title: title, URL: firstURL, Snippet: snippet}
}

func filterLegal(results []SearchResult) []SearchResult {
	var kept []SearchResult
	for _, r := range results {
		u, err := url.Parse(r.URL)
		if err != nil {
			continue
		}
		host := strings.ToLower(u.Hostname())
		for _, domain := range legalDomains {
			if host == domain || strings.HasSuffix(host, "."+domain) {
				kept = append(kept, r)
				break
			}
		}
	}
	return kept
}

// fallbackResults serves a canned corpus keyed on the query topic so practice
// sessions keep working without network access.
func fallbackResults(query string, limit int) []SearchResult {
	q := strings.ToLower(query)
	var corpus []SearchResult
	switch {
	case strings.Contains(q, "unconscionab") || strings.Contains(q, "arbitration"):
		corpus = []SearchResult{
			{
				Title:   "Williams v. Walker-Thomas Furniture Co., 350 F.2d 445 (D.C. Cir. 1965)",
				URL:     "https://law.justia.com/cases/federal/appellate-courts/F2/350/445/66699/",
				Snippet: "Seminal case establishing the modern doctrine of unconscionability: absence of meaningful choice together with contract terms unreasonably favorable to the other party.",
			},
			{
				Title:   "AT&T Mobility LLC v. Concepcion, 563 U.S. 333 (2011)",
				URL:     "https://supreme.justia.com/cases/federal/us/563/333/",
				Snippet: "The Federal Arbitration Act preempts state rules conditioning enforceability of arbitration agreements on the availability of classwide procedures.",
			},
			{
				Title:   "UCC § 2-302. Unconscionable Contract or Clause",
				URL:     "https://www.law.cornell.edu/ucc/2/2-302",
				Snippet: "A court may refuse to enforce a contract or clause it finds unconscionable at the time it was made, or limit its application to avoid an unconscionable result.",
			},
		}
	case strings.Contains(q, "constitution") || strings.Contains(q, "amendment"):
		corpus = []SearchResult{
			{
				Title:   "Constitution of the United States",
				URL:     "https://constitution.congress.gov/constitution/",
				Snippet: "Full annotated text of the Constitution and its amendments, maintained by the Library of Congress.",
			},
			{
				Title:   "Marbury v. Madison, 5 U.S. 137 (1803)",
				URL:     "https://supreme.justia.com/cases/federal/us/5/137/",
				Snippet: "Established judicial review: it is emphatically the province and duty of the judicial department to say what the law is.",
			},
		}
	default:
		corpus = []SearchResult{
			{
				Title:   "Legal Information Institute",
				URL:     "https://www.law.cornell.edu/",
				Snippet: "Open access to the U.S. Code, Code of Federal Regulations, Supreme Court opinions and the Wex legal encyclopedia.",
			},
			{
				Title:   "CourtListener",
				URL:     "https://www.courtlistener.com/",
				Snippet: "Searchable archive of millions of state and federal court opinions, dockets and oral argument recordings.",
			},
		}
	}
	if len(corpus) > limit {
		corpus = corpus[:limit]
	}
	return corpus
}

type searchInput struct {
	Query      string `json:"query" jsonschema:"description=The search query, e.g. a case name, doctrine or statute"`
	NumResults int    `json:"num_results,omitempty" jsonschema:"description=Maximum number of results to return (default 5)"`
}

type searchOutput struct {
	Results string `json:"results"`
}

func searchFn(env Env) func(context.Context, searchInput) (searchOutput, error) {
	return func(ctx context.Context, in searchInput) (searchOutput, error) {
		if strings.TrimSpace(in.Query) == "" {
			return searchOutput{Results: "No query provided."}, nil
		}
		results := env.Search.Search(ctx, in.Query, in.NumResults)

		var b strings.Builder
		fmt.Fprintf(&b, "Found %d sources for %q:\n", len(results), in.Query)
		for i, r := range results {
			fmt.Fprintf(&b, "%d. %s\n%s\n%s\n",
				i+1, r.Title, r.Snippet,
				marker.EmbedCitation(marker.Citation{
					Title:   r.Title,
					URL:     r.URL,
					Snippet: r.Snippet,
				}))
		}
		return searchOutput{Results: b.String()}, nil
	}
}
