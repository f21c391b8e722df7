package ingest

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

// TextExtractor returns the plain text of a document.
type TextExtractor func(path string) (string, error)

// PDFTextExtractor extracts text page by page; unreadable pages are skipped.
func PDFTextExtractor(logger *zap.Logger) TextExtractor {
	return func(path string) (string, error) {
		f, r, err := pdf.Open(path)
		if err != nil {
			return "", fmt.Errorf("open pdf: %w", err)
		}
		defer f.Close()

		var text strings.Builder
		totalPages := r.NumPage()
		for pageNum := 1; pageNum <= totalPages; pageNum++ {
			page := r.Page(pageNum)
			if page.V.IsNull() {
				continue
			}
			pageText, err := page.GetPlainText(nil)
			if err != nil {
				logger.Warn("skipping unreadable page",
					zap.String("path", path),
					zap.Int("page", pageNum),
					zap.Error(err))
				continue
			}
			text.WriteString(pageText)
			text.WriteString("\n")
		}
		return text.String(), nil
	}
}
