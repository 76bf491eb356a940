//
// Tencent is pleased to support the open source community by making moot available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// moot is licensed under the Apache License Version 2.0.
//
//

package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"
	"trpc.group/trpc-go/trpc-agent-go/log"

	"moot/internal/docstore"
)

// maxUploadBytes caps the accepted upload size.
const maxUploadBytes = 32 << 20

// uploadResponse is the body returned by POST /upload-pdf.
type uploadResponse struct {
	FileID   string `json:"file_id"`
	Filename string `json:"filename"`
	Status   string `json:"status"`
}

// handleUploadPDF accepts a multipart upload, extracts its text immediately
// and stores it under the staging session until a chat session claims it.
func (s *Server) handleUploadPDF(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "failed to read upload", http.StatusBadRequest)
		return
	}

	text, contentType, err := extractUploadText(header.Filename, data)
	if err != nil {
		log.Warnf("httpapi: rejecting upload %q: %v", header.Filename, err)
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	fileID := uuid.NewString()
	doc := docstore.Document{Name: header.Filename, Content: text, ContentType: contentType}
	if err := s.deps.Docs.Add(r.Context(), docstore.StagingSession, fileID, doc); err != nil {
		log.Errorf("httpapi: store upload %q: %v", header.Filename, err)
		http.Error(w, "failed to store document", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, uploadResponse{
		FileID:   fileID,
		Filename: header.Filename,
		Status:   "processed",
	})
}

// extractUploadText converts an uploaded file to plain text. PDFs are parsed
// page by page; plain-text files pass through.
func extractUploadText(filename string, data []byte) (text, contentType string, err error) {
	lower := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(lower, ".pdf"):
		text, err := extractPDFText(data)
		if err != nil {
			return "", "", fmt.Errorf("could not extract text from PDF: %w", err)
		}
		return text, "application/pdf", nil
	case strings.HasSuffix(lower, ".txt") || strings.HasSuffix(lower, ".md"):
		return string(data), "text/plain", nil
	default:
		return "", "", fmt.Errorf("unsupported file type: %s", filename)
	}
}

func extractPDFText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			log.Warnf("httpapi: skipping unreadable pdf page %d: %v", i, err)
			continue
		}
		b.WriteString(content)
		b.WriteString("\n")
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", fmt.Errorf("document contains no extractable text")
	}
	return text, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("httpapi: encode response: %v", err)
	}
}
