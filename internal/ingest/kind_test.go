package ingest

import "testing"

func TestDetectKind(t *testing.T) {
	cases := []struct {
		mime string
		name string
		want FileKind
	}{
		{"text/csv", "jobs.csv", KindCSV},
		{"application/csv", "jobs.csv", KindCSV},
		{"application/pdf", "posting.pdf", KindPDF},
		{mimeDocx, "posting.docx", KindDOCX},
		{"text/plain", "posting.txt", KindText},
		{"image/png", "scan.png", KindImage},
		{"image/jpeg", "scan.jpg", KindImage},

		// Extension fallback when the MIME type is missing or generic.
		{"", "jobs.csv", KindCSV},
		{"application/octet-stream", "posting.pdf", KindPDF},
		{"application/octet-stream", "posting.DOCX", KindDOCX},
		{"", "scan.jpeg", KindImage},
		{"", "notes.TXT", KindText},

		// Everything else is explicitly unsupported.
		{"application/zip", "archive.zip", KindUnsupported},
		{"text/html", "page.html", KindUnsupported},
		{"", "data.bin", KindUnsupported},
		{"application/octet-stream", "mystery", KindUnsupported},
	}

	for _, c := range cases {
		if got := DetectKind(c.mime, c.name); got != c.want {
			t.Errorf("DetectKind(%q, %q) = %v, want %v", c.mime, c.name, got, c.want)
		}
	}
}
