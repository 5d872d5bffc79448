package ingest

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/akolanti/insightRAG/internal/config"
	"github.com/akolanti/insightRAG/pkg/logger_i"
	"github.com/dslipak/pdf"
	"github.com/lu4p/cat"
)

type rawPage struct {
	Number  int
	Content string
}

func extractPDF(path string, logger *logger_i.Logger) ([]rawPage, error) {
	logger.Debug("extractPDF", "attempting extraction", path)
	f, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}

	var pages []rawPage
	numPages := f.NumPage()
	logger.Debug("extractPDF", "number of pages", numPages)
	for i := 1; i <= numPages; i++ {
		page := f.Page(i)
		if page.V.IsNull() {
			logger.Debug("extractPDF", "null page", i)
			continue
		}

		content, err := protectExtract(page, logger)
		if err != nil {
			// keep going, one unreadable page should not sink the document
			logger.Warn("Error parsing page content", "page", i, "error", err)
			continue
		}

		pages = append(pages, rawPage{
			Number:  i,
			Content: content,
		})
	}
	return pages, nil
}

func protectExtract(page pdf.Page, logger *logger_i.Logger) (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				resChan <- result{err: fmt.Errorf("page extraction panicked: %v", r)}
			}
		}()
		content, err := page.GetPlainText(nil)
		resChan <- result{content, err}
	}()
	select {
	case r := <-resChan:
		return r.content, r.err
	case <-time.After(config.PDFPageReadTimeout):
		logger.Error("pageExtract", "timeout")
		return "", errors.New("timeout")
	}
}

func joinPages(pages []rawPage) (string, string) {
	var plain, markdown strings.Builder
	for i, p := range pages {
		if i > 0 {
			plain.WriteString("\n\n")
			markdown.WriteString("\n\n")
		}
		plain.WriteString(p.Content)
		fmt.Fprintf(&markdown, "<!-- page %d -->\n%s", p.Number, p.Content)
	}
	return plain.String(), markdown.String()
}

// extractWithCat reads .odt, .docx, .rtf or plaintext files.
func extractWithCat(path string) (string, error) {
	text, err := cat.File(path)
	if err != nil {
		return "", fmt.Errorf("failed to extract document: %w", err)
	}
	return text, nil
}
