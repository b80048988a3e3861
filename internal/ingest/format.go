// Package ingest turns plan documents into model.Plan values. PDF and
// DOCX files go through text extraction and a regex field recovery
// cascade; JSON, CSV, and XLSX files carry structured records and are
// decoded directly.
package ingest

import (
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// Format identifies the on-disk encoding of a plan document.
type Format int

const (
	FormatUnknown Format = iota
	FormatPDF
	FormatDOCX
	FormatJSON
	FormatCSV
	FormatXLSX
)

// ErrUnsupportedFormat is returned by DetectFormat for extensions the
// parser has no decoder for. Callers iterating a directory match it
// with eris.Is and skip the file.
var ErrUnsupportedFormat = eris.New("ingest: unsupported file format")

func (f Format) String() string {
	switch f {
	case FormatPDF:
		return "pdf"
	case FormatDOCX:
		return "docx"
	case FormatJSON:
		return "json"
	case FormatCSV:
		return "csv"
	case FormatXLSX:
		return "xlsx"
	default:
		return "unknown"
	}
}

// DetectFormat maps a file path to its Format by extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return FormatPDF, nil
	case ".docx":
		return FormatDOCX, nil
	case ".json":
		return FormatJSON, nil
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return FormatUnknown, eris.Wrapf(ErrUnsupportedFormat, "%s", filepath.Base(path))
	}
}
