package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"code.sajari.com/docconv"
	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// ExtractBlocks converts one queued file into an ordered, non-empty list of
// raw job-posting text blocks. CSV files yield one block per usable row;
// every other supported format yields exactly one block. This stage is fully
// local and never talks to the structuring service.
func ExtractBlocks(file PendingFile) ([]string, error) {
	switch DetectKind(file.Mime, file.Name) {
	case KindCSV:
		return extractCSVBlocks(file.content)

	case KindPDF:
		text, err := extractPDFText(bytes.NewReader(file.content), int64(len(file.content)))
		if err != nil {
			return nil, err
		}
		return singleBlock(text)

	case KindDOCX:
		text, err := extractDocxText(file.content)
		if err != nil {
			return nil, err
		}
		return singleBlock(text)

	case KindText:
		return singleBlock(string(file.content))

	case KindImage:
		res, err := docconv.Convert(bytes.NewReader(file.content), file.Mime, true)
		if err != nil {
			return nil, fmt.Errorf("failed to run OCR over image: %w", err)
		}
		return singleBlock(res.Body)

	default:
		return nil, &UnsupportedFileTypeError{Mime: file.Mime}
	}
}

func singleBlock(text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrNoReadableContent
	}
	return []string{text}, nil
}

// csvColumns maps common header spellings, lowercased, to the label used in
// the assembled block. Unrecognized headers are silently ignored.
var csvColumns = []struct {
	label   string
	aliases []string
}{
	{"Title", []string{"title", "job title", "jobtitle", "position", "role"}},
	{"Company", []string{"company", "company name", "employer", "organisation", "organization"}},
	{"Location", []string{"location", "city", "place"}},
	{"Description", []string{"description", "job description", "details", "summary"}},
	{"Requirements", []string{"requirements", "qualifications", "skills"}},
	{"Salary", []string{"salary", "pay", "compensation", "remuneration"}},
}

// extractCSVBlocks parses a header-keyed CSV and assembles one labeled
// multi-line block per row. Rows where no recognized column is populated are
// dropped rather than emitted empty.
func extractCSVBlocks(content []byte) ([]string, error) {
	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1 // ragged rows are common in hand-made sheets
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrNoReadableContent
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV header: %w", err)
	}

	// Map each recognized column to its first matching header index.
	colIndex := make(map[string]int, len(csvColumns))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		for _, col := range csvColumns {
			if _, seen := colIndex[col.label]; seen {
				continue
			}
			for _, alias := range col.aliases {
				if name == alias {
					colIndex[col.label] = i
					break
				}
			}
		}
	}

	var blocks []string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse CSV row: %w", err)
		}

		var lines []string
		for _, col := range csvColumns {
			idx, ok := colIndex[col.label]
			if !ok || idx >= len(record) {
				continue
			}
			value := strings.TrimSpace(record[idx])
			if value == "" {
				continue
			}
			lines = append(lines, col.label+": "+value)
		}
		if len(lines) == 0 {
			continue
		}
		blocks = append(blocks, strings.Join(lines, "\n"))
	}

	if len(blocks) == 0 {
		return nil, ErrNoReadableContent
	}
	return blocks, nil
}

func extractPDFText(reader io.ReaderAt, size int64) (string, error) {
	pdfReader, err := pdf.NewReader(reader, size)
	if err != nil {
		return "", fmt.Errorf("failed to read pdf: %w", err)
	}

	var textBuilder strings.Builder
	numPages := pdfReader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := pdfReader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, _ := page.GetPlainText(nil)
		textBuilder.WriteString(text)
	}
	return textBuilder.String(), nil
}

func extractDocxText(content []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer doc.Close()

	return doc.Editable().GetContent(), nil
}
