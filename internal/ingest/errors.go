package ingest

import (
	"errors"
	"fmt"
)

// ErrNoReadableContent means extraction ran but produced nothing usable:
// an empty OCR result, or a CSV whose rows were all blank.
var ErrNoReadableContent = errors.New("no readable content found in file")

// UnsupportedFileTypeError is returned by the extractor for any declared
// type outside the accepted set. It is fatal per file and never retried.
type UnsupportedFileTypeError struct {
	Mime string
}

func (e *UnsupportedFileTypeError) Error() string {
	return fmt.Sprintf("unsupported file type: %s", e.Mime)
}
