package ingest

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/akolanti/insightRAG/internal/config"
	"github.com/akolanti/insightRAG/internal/domain/commonModels"
	"github.com/akolanti/insightRAG/pkg/logger_i"
)

var (
	ErrNoConverter       = errors.New("no document converter available")
	ErrFileNotFound      = errors.New("file not found")
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrEmptyContent      = errors.New("converter produced no text")
)

// Conversion is what a converter extracted from one file.
type Conversion struct {
	Text     string
	Markdown string
	Metadata map[string]any
}

// Converter is one extraction strategy. The processor tries them in registration order.
type Converter interface {
	Name() string
	Supports(ext string) bool
	TryConvert(ctx context.Context, path string) (Conversion, error)
}

type ProcessingError struct {
	Path string
	Err  error
	Last error
}

func (e *ProcessingError) Error() string {
	if e.Last != nil {
		return fmt.Sprintf("failed to process %s: all converters failed, last error: %v", e.Path, e.Last)
	}
	return fmt.Sprintf("failed to process %s: %v", e.Path, e.Err)
}

func (e *ProcessingError) Unwrap() error { return e.Err }

type Processor struct {
	converters []Converter
	extensions []string
	logger     *logger_i.Logger
}

// NewProcessor keeps the converters in the given order.
func NewProcessor(logger *logger_i.Logger, converters ...Converter) (*Processor, error) {
	if len(converters) == 0 {
		return nil, ErrNoConverter
	}
	if logger == nil {
		logger = logger_i.NewLogger("DocumentProcessor")
	}
	p := &Processor{converters: converters, logger: logger}
	p.extensions = p.collectExtensions()
	logger.Info("Document processor ready", "converters", p.ConverterNames(), "extensions", p.extensions)
	return p, nil
}

var knownExtensions = []string{".pdf", ".docx", ".pptx", ".xlsx", ".odt", ".rtf", ".txt", ".md"}

func (p *Processor) collectExtensions() []string {
	var exts []string
	for _, ext := range knownExtensions {
		for _, c := range p.converters {
			if c.Supports(ext) {
				exts = append(exts, ext)
				break
			}
		}
	}
	sort.Strings(exts)
	return exts
}

func (p *Processor) ConverterNames() []string {
	names := make([]string, 0, len(p.converters))
	for _, c := range p.converters {
		names = append(names, c.Name())
	}
	return names
}

func (p *Processor) SupportedExtensions() []string {
	return append([]string(nil), p.extensions...)
}

func (p *Processor) SupportsFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range p.extensions {
		if e == ext {
			return true
		}
	}
	return false
}

func (p *Processor) ProcessDocument(ctx context.Context, path string) (commonModels.Document, error) {
	start := time.Now()
	log := p.logger.WithTrace(ctx, config.TRACE_ID_KEY).With("path", path)

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return commonModels.Document{}, &ProcessingError{Path: path, Err: ErrFileNotFound}
	}
	ext := strings.ToLower(filepath.Ext(path))

	var attempts []error
	var last error
	for _, c := range p.converters {
		if !c.Supports(ext) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return commonModels.Document{}, &ProcessingError{Path: path, Err: err}
		}

		conv, err := p.tryConvert(ctx, c, path)
		if err == nil && strings.TrimSpace(CleanText(conv.Text)) == "" {
			err = ErrEmptyContent
		}
		if err != nil {
			log.Warn("Converter failed, trying next", "converter", c.Name(), "error", err)
			last = fmt.Errorf("%s: %w", c.Name(), err)
			attempts = append(attempts, last)
			continue
		}

		log.Debug("Converted document", "converter", c.Name())
		return buildDocument(path, info, c.Name(), conv, start)
	}

	if len(attempts) == 0 {
		return commonModels.Document{}, &ProcessingError{Path: path, Err: ErrUnsupportedFormat}
	}
	return commonModels.Document{}, &ProcessingError{Path: path, Err: errors.Join(attempts...), Last: last}
}

// tryConvert turns a converter panic into an error, parser libraries do panic on broken input.
func (p *Processor) tryConvert(ctx context.Context, c Converter, path string) (conv Conversion, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("converter panicked: %v", r)
		}
	}()
	return c.TryConvert(ctx, path)
}

func buildDocument(path string, info os.FileInfo, converter string, conv Conversion, start time.Time) (commonModels.Document, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	content := CleanText(conv.Text)
	markdown := content
	if strings.TrimSpace(conv.Markdown) != "" {
		markdown = CleanText(conv.Markdown)
	}

	metadata := map[string]any{
		"source_path":    absPath,
		"filename":       filepath.Base(path),
		"file_size":      info.Size(),
		"file_type":      strings.ToLower(filepath.Ext(path)),
		"processed_at":   time.Now().UTC().Format(time.RFC3339),
		"processor_used": converter,
	}
	for k, v := range conv.Metadata {
		if _, reserved := metadata[k]; !reserved {
			metadata[k] = v
		}
	}

	return commonModels.Document{
		Id:              DocumentID(absPath, info.ModTime()),
		Title:           strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Content:         content,
		MarkdownContent: markdown,
		Metadata:        metadata,
		ProcessingTime:  time.Since(start),
		CreatedAt:       time.Now(),
	}, nil
}

// DocumentID is stable for an unchanged file so re-indexing is idempotent.
func DocumentID(absPath string, modTime time.Time) string {
	sum := md5.Sum([]byte(absPath + strconv.FormatInt(modTime.UnixNano(), 10)))
	return hex.EncodeToString(sum[:])
}

// CleanText trims trailing whitespace on every line, drops leading blank lines and
// collapses runs of blank lines into one.
func CleanText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.TrimRightFunc(line, unicode.IsSpace)
		if line == "" {
			if len(cleaned) == 0 || blank {
				continue
			}
			blank = true
		} else {
			blank = false
		}
		cleaned = append(cleaned, line)
	}
	for len(cleaned) > 0 && cleaned[len(cleaned)-1] == "" {
		cleaned = cleaned[:len(cleaned)-1]
	}
	return strings.Join(cleaned, "\n")
}
