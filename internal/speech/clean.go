//
// Tencent is pleased to support the open source community by making moot available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// moot is licensed under the Apache License Version 2.0.
//
//

package speech

import (
	"regexp"
	"strings"

	"moot/internal/marker"
)

var (
	markdownHeading = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	markdownBold    = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	markdownItalic  = regexp.MustCompile(`\*([^*]+)\*`)
	markdownCode    = regexp.MustCompile("`([^`]*)`")
	markdownLink    = regexp.MustCompile(`\[([^\]]*)\]\(([^)]*)\)`)
	bulletPrefix    = regexp.MustCompile(`(?m)^\s*(?:[-*+]|\d+\.)\s+`)
	multiSpace      = regexp.MustCompile(`[ \t]+`)
	multiNewline    = regexp.MustCompile(`\n{2,}`)
	sentenceEnd     = regexp.MustCompile(`([.!?])\s+`)
)

// CleanForSpeech strips embedded markers and markdown decoration so the
// synthesized audio does not read formatting aloud.
func CleanForSpeech(text string) string {
	s := marker.Strip(text)
	s = markdownLink.ReplaceAllString(s, "$1")
	s = markdownHeading.ReplaceAllString(s, "")
	s = markdownBold.ReplaceAllString(s, "$1")
	s = markdownCode.ReplaceAllString(s, "$1")
	s = markdownItalic.ReplaceAllString(s, "$1")
	s = bulletPrefix.ReplaceAllString(s, "")
	s = multiSpace.ReplaceAllString(s, " ")
	s = multiNewline.ReplaceAllString(s, "\n")
	return strings.TrimSpace(s)
}

// SplitSentences splits text into sentence-sized chunks so each can be
// synthesized and streamed independently. Terminators stay attached to the
// sentence they end; a trailing fragment without one is kept as-is.
func SplitSentences(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	var sentences []string
	rest := text
	for {
		loc := sentenceEnd.FindStringSubmatchIndex(rest)
		if loc == nil {
			break
		}
		sentence := strings.TrimSpace(rest[:loc[3]])
		if sentence != "" {
			sentences = append(sentences, sentence)
		}
		rest = rest[loc[1]:]
	}
	if rest = strings.TrimSpace(rest); rest != "" {
		sentences = append(sentences, rest)
	}
	return sentences
}
