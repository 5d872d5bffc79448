package ingest

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var errMissingPart = errors.New("package part missing")

var (
	slidePart = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)
	sheetPart = regexp.MustCompile(`^xl/worksheets/sheet(\d+)\.xml$`)
)

// officeText is the output of one OOXML package: plain text plus a markdown rendering
// with a heading per slide or sheet.
type officeText struct {
	plain    string
	markdown string
	parts    int
}

func extractDocx(r *zip.Reader) (officeText, error) {
	f := findPart(r, "word/document.xml")
	if f == nil {
		return officeText{}, fmt.Errorf("%w: word/document.xml", errMissingPart)
	}
	paras, err := readParagraphs(f, "t", "p")
	if err != nil {
		return officeText{}, err
	}
	text := strings.Join(paras, "\n")
	return officeText{plain: text, markdown: text, parts: len(paras)}, nil
}

func extractPptx(r *zip.Reader) (officeText, error) {
	slides := numberedParts(r, slidePart)
	if len(slides) == 0 {
		return officeText{}, fmt.Errorf("%w: ppt/slides", errMissingPart)
	}

	var plain, md []string
	for _, s := range slides {
		paras, err := readParagraphs(s.file, "t", "p")
		if err != nil {
			return officeText{}, fmt.Errorf("slide %d: %w", s.number, err)
		}
		body := strings.Join(paras, "\n")
		plain = append(plain, body)
		md = append(md, fmt.Sprintf("## Slide %d\n\n%s", s.number, body))
	}
	return officeText{plain: strings.Join(plain, "\n\n"), markdown: strings.Join(md, "\n\n"), parts: len(slides)}, nil
}

func extractXlsx(r *zip.Reader) (officeText, error) {
	var shared []string
	if f := findPart(r, "xl/sharedStrings.xml"); f != nil {
		var err error
		if shared, err = readParagraphs(f, "t", "si"); err != nil {
			return officeText{}, fmt.Errorf("shared strings: %w", err)
		}
	}

	sheets := numberedParts(r, sheetPart)
	if len(sheets) == 0 {
		return officeText{}, fmt.Errorf("%w: xl/worksheets", errMissingPart)
	}

	var plain, md []string
	for _, s := range sheets {
		rows, err := readSheetRows(s.file, shared)
		if err != nil {
			return officeText{}, fmt.Errorf("sheet %d: %w", s.number, err)
		}
		body := strings.Join(rows, "\n")
		plain = append(plain, body)
		md = append(md, fmt.Sprintf("## Sheet %d\n\n%s", s.number, body))
	}
	return officeText{plain: strings.Join(plain, "\n\n"), markdown: strings.Join(md, "\n\n"), parts: len(sheets)}, nil
}

func findPart(r *zip.Reader, name string) *zip.File {
	for _, f := range r.File {
		if f.Name == name {
			return f
		}
	}
	return nil
}

type numberedPart struct {
	number int
	file   *zip.File
}

func numberedParts(r *zip.Reader, pattern *regexp.Regexp) []numberedPart {
	var parts []numberedPart
	for _, f := range r.File {
		m := pattern.FindStringSubmatch(path.Clean(f.Name))
		if m == nil {
			continue
		}
		n, _ := strconv.Atoi(m[1])
		parts = append(parts, numberedPart{number: n, file: f})
	}
	sort.Slice(parts, func(i, j int) bool { return parts[i].number < parts[j].number })
	return parts
}

// readParagraphs collects character data inside textTag elements and ends a paragraph on
// every closing paraTag. Namespaces are ignored so w:t, a:t and t all match "t".
func readParagraphs(f *zip.File, textTag, paraTag string) ([]string, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	dec := xml.NewDecoder(rc)
	var paras []string
	var current strings.Builder
	inText := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", f.Name, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case textTag:
				inText = true
			case "tab":
				current.WriteString("\t")
			case "br":
				current.WriteString("\n")
			}
		case xml.EndElement:
			switch t.Name.Local {
			case textTag:
				inText = false
			case paraTag:
				paras = append(paras, current.String())
				current.Reset()
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}
	if current.Len() > 0 {
		paras = append(paras, current.String())
	}
	return paras, nil
}

// readSheetRows renders each row as tab separated cell values, resolving shared strings.
func readSheetRows(f *zip.File, shared []string) ([]string, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	dec := xml.NewDecoder(rc)
	var rows, cells []string
	var value strings.Builder
	cellType := ""
	inValue := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", f.Name, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "c":
				cellType = ""
				value.Reset()
				for _, a := range t.Attr {
					if a.Name.Local == "t" {
						cellType = a.Value
					}
				}
			case "v", "t":
				inValue = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "v", "t":
				inValue = false
			case "c":
				cells = append(cells, resolveCell(cellType, value.String(), shared))
			case "row":
				if line := strings.TrimRight(strings.Join(cells, "\t"), "\t"); line != "" {
					rows = append(rows, line)
				}
				cells = cells[:0]
			}
		case xml.CharData:
			if inValue {
				value.Write(t)
			}
		}
	}
	return rows, nil
}

func resolveCell(cellType, raw string, shared []string) string {
	if cellType != "s" {
		return raw
	}
	idx, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || idx < 0 || idx >= len(shared) {
		return raw
	}
	return shared[idx]
}
