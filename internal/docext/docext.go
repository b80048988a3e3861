// Package docext turns binary plan documents (PDF, DOCX) into raw text
// for the field extractor. Extraction failures are per-file and the
// caller treats them as non-fatal.
package docext

import "context"

// Extractor extracts text content from a document file.
type Extractor interface {
	ExtractText(ctx context.Context, path string) (string, error)
}
