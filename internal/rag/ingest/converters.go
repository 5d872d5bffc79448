package ingest

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/akolanti/insightRAG/pkg/logger_i"
	"golang.org/x/text/encoding/charmap"
)

// DefaultConverters returns the strategies in priority order: the multi-format converter,
// then the office converter, then the plain text fallback.
func DefaultConverters(logger *logger_i.Logger) []Converter {
	if logger == nil {
		logger = logger_i.NewLogger("DocumentProcessor")
	}
	return []Converter{
		NewMultiFormatConverter(logger),
		NewOfficeConverter(),
		NewTextConverter(),
	}
}

type extensionSet map[string]struct{}

func newExtensionSet(exts ...string) extensionSet {
	set := make(extensionSet, len(exts))
	for _, e := range exts {
		set[e] = struct{}{}
	}
	return set
}

func (s extensionSet) has(ext string) bool {
	_, ok := s[strings.ToLower(ext)]
	return ok
}

// multiFormatConverter handles PDF, OOXML packages and plain text/markdown.
type multiFormatConverter struct {
	exts   extensionSet
	logger *logger_i.Logger
}

func NewMultiFormatConverter(logger *logger_i.Logger) Converter {
	return &multiFormatConverter{
		exts:   newExtensionSet(".pdf", ".docx", ".pptx", ".xlsx", ".txt", ".md"),
		logger: logger,
	}
}

func (c *multiFormatConverter) Name() string             { return "multiformat" }
func (c *multiFormatConverter) Supports(ext string) bool { return c.exts.has(ext) }

func (c *multiFormatConverter) TryConvert(ctx context.Context, path string) (Conversion, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".pdf":
		pages, err := extractPDF(path, c.logger)
		if err != nil {
			return Conversion{}, err
		}
		plain, markdown := joinPages(pages)
		return Conversion{
			Text:     plain,
			Markdown: markdown,
			Metadata: map[string]any{"page_count": len(pages)},
		}, nil

	case ".docx", ".pptx", ".xlsx":
		return convertOffice(path, ext)

	case ".txt", ".md":
		raw, err := os.ReadFile(path)
		if err != nil {
			return Conversion{}, err
		}
		if !utf8.Valid(raw) {
			return Conversion{}, fmt.Errorf("%s is not valid utf-8", filepath.Base(path))
		}
		text := string(bytes.TrimPrefix(raw, utf8BOM))
		return Conversion{Text: text, Markdown: text}, nil
	}
	return Conversion{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
}

func convertOffice(path, ext string) (Conversion, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return Conversion{}, fmt.Errorf("opening %s package: %w", ext, err)
	}
	defer zr.Close()

	var out officeText
	var partKey string
	switch ext {
	case ".docx":
		out, err = extractDocx(&zr.Reader)
		partKey = "paragraph_count"
	case ".pptx":
		out, err = extractPptx(&zr.Reader)
		partKey = "slide_count"
	default:
		out, err = extractXlsx(&zr.Reader)
		partKey = "sheet_count"
	}
	if err != nil {
		return Conversion{}, err
	}
	return Conversion{
		Text:     out.plain,
		Markdown: out.markdown,
		Metadata: map[string]any{partKey: out.parts},
	}, nil
}

// officeConverter delegates to lu4p/cat, which also reads ODT and RTF.
type officeConverter struct {
	exts extensionSet
}

func NewOfficeConverter() Converter {
	return &officeConverter{exts: newExtensionSet(".docx", ".odt", ".rtf")}
}

func (c *officeConverter) Name() string             { return "office" }
func (c *officeConverter) Supports(ext string) bool { return c.exts.has(ext) }

func (c *officeConverter) TryConvert(ctx context.Context, path string) (Conversion, error) {
	text, err := extractWithCat(path)
	if err != nil {
		return Conversion{}, err
	}
	return Conversion{Text: text}, nil
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// textConverter is the last resort for .txt and .md and falls back to Latin-1.
type textConverter struct {
	exts extensionSet
}

func NewTextConverter() Converter {
	return &textConverter{exts: newExtensionSet(".txt", ".md")}
}

func (c *textConverter) Name() string             { return "text" }
func (c *textConverter) Supports(ext string) bool { return c.exts.has(ext) }

func (c *textConverter) TryConvert(ctx context.Context, path string) (Conversion, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Conversion{}, err
	}
	if utf8.Valid(raw) {
		text := string(bytes.TrimPrefix(raw, utf8BOM))
		return Conversion{Text: text, Metadata: map[string]any{"encoding": "utf-8"}}, nil
	}

	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return Conversion{}, fmt.Errorf("decoding latin-1: %w", err)
	}
	return Conversion{Text: string(decoded), Metadata: map[string]any{"encoding": "latin-1"}}, nil
}
