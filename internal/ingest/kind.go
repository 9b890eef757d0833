package ingest

import (
	"path/filepath"
	"strings"
)

// FileKind selects the extraction strategy for a pending file. Anything that
// does not resolve to a known kind is Unsupported; there is no fallthrough.
type FileKind int

const (
	KindUnsupported FileKind = iota
	KindCSV
	KindPDF
	KindDOCX
	KindText
	KindImage
)

func (k FileKind) String() string {
	switch k {
	case KindCSV:
		return "csv"
	case KindPDF:
		return "pdf"
	case KindDOCX:
		return "docx"
	case KindText:
		return "text"
	case KindImage:
		return "image"
	default:
		return "unsupported"
	}
}

const mimeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// DetectKind resolves the declared MIME type, falling back to the file
// extension when the browser sent nothing useful.
func DetectKind(mime, name string) FileKind {
	mime = strings.ToLower(strings.TrimSpace(mime))

	switch {
	case mime == "text/csv" || mime == "application/csv":
		return KindCSV
	case mime == "application/pdf":
		return KindPDF
	case mime == mimeDocx:
		return KindDOCX
	case mime == "text/plain":
		return KindText
	case strings.HasPrefix(mime, "image/"):
		return KindImage
	}

	// Missing or generic MIME: go by extension.
	if mime == "" || mime == "application/octet-stream" {
		switch strings.ToLower(filepath.Ext(name)) {
		case ".csv":
			return KindCSV
		case ".pdf":
			return KindPDF
		case ".docx":
			return KindDOCX
		case ".txt":
			return KindText
		case ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".webp", ".tiff":
			return KindImage
		}
	}

	return KindUnsupported
}
