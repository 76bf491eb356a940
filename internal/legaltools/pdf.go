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
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
)

// renderPDF renders the document body under a per-type header block. Core
// fonts are latin-1, so text goes through the unicode translator.
func renderPDF(docType, title, caseNumber, client, content string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(25, 25, 25)
	pdf.SetAutoPageBreak(true, 25)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	writeHeader(pdf, tr, docType, title, caseNumber, client)

	pdf.SetFont("Times", "", 12)
	for _, para := range strings.Split(content, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		pdf.MultiCell(0, 6, tr(para), "", "J", false)
		pdf.Ln(4)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("legaltools: write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func writeHeader(pdf *fpdf.Fpdf, tr func(string) string, docType, title, caseNumber, client string) {
	date := time.Now().UTC().Format("January 2, 2006")

	if docType == "letter" {
		// Letters carry a date line and salutation block instead of a caption.
		pdf.SetFont("Times", "", 12)
		pdf.CellFormat(0, 6, tr(date), "", 1, "R", false, 0, "")
		pdf.Ln(6)
		if client != "" {
			pdf.CellFormat(0, 6, tr("Re: "+title), "", 1, "L", false, 0, "")
			pdf.CellFormat(0, 6, tr("Dear "+client+","), "", 1, "L", false, 0, "")
			pdf.Ln(4)
		}
		return
	}

	caption := documentTypes[docType]
	pdf.SetFont("Times", "B", 14)
	pdf.CellFormat(0, 8, tr(caption), "", 1, "C", false, 0, "")
	pdf.Ln(2)
	pdf.SetFont("Times", "B", 12)
	pdf.CellFormat(0, 7, tr(title), "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Times", "", 11)
	if caseNumber != "" {
		pdf.CellFormat(0, 6, tr("Case No. "+caseNumber), "", 1, "C", false, 0, "")
	}
	if client != "" {
		pdf.CellFormat(0, 6, tr("Prepared for: "+client), "", 1, "C", false, 0, "")
	}
	pdf.CellFormat(0, 6, tr(date), "", 1, "C", false, 0, "")

	pdf.Ln(2)
	pdf.SetLineWidth(0.4)
	x, y := pdf.GetXY()
	pdf.Line(x, y, 210-25, y)
	pdf.Ln(6)
}
