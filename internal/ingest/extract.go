// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cairn Contributors

package ingest

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	cairnerr "github.com/cairn-dev/cairn/pkg/errors"
)

// ExtractText reads a document and returns its plain text. PDF files go
// through the PDF text extractor; anything else is read as UTF-8 text.
func ExtractText(path string) (string, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return extractPDF(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", cairnerr.Wrapf(err, cairnerr.CodeIngestReadFailure, "reading %s", path)
	}
	return string(data), nil
}

func extractPDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", cairnerr.Wrapf(err, cairnerr.CodeIngestReadFailure, "opening pdf %s", path)
	}
	defer func() { _ = f.Close() }()

	reader, err := r.GetPlainText()
	if err != nil {
		return "", cairnerr.Wrapf(err, cairnerr.CodeIngestExtractFailure, "extracting text from %s", path)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(reader); err != nil {
		return "", cairnerr.Wrapf(err, cairnerr.CodeIngestExtractFailure, "reading extracted text from %s", path)
	}

	return buf.String(), nil
}
