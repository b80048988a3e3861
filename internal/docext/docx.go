package docext

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"io"
	"strings"

	"github.com/rotisserie/eris"
)

// DocxReader extracts paragraph text from DOCX files. A DOCX is a ZIP
// archive whose word/document.xml holds the text runs.
type DocxReader struct{}

// NewDocxReader creates a DocxReader.
func NewDocxReader() *DocxReader {
	return &DocxReader{}
}

// ExtractText reads word/document.xml from the archive and concatenates
// text runs, one line per paragraph.
func (d *DocxReader) ExtractText(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", eris.Wrap(err, "docext: context cancelled")
	}

	archive, err := zip.OpenReader(path)
	if err != nil {
		return "", eris.Wrapf(err, "docext: open docx %s", path)
	}
	defer archive.Close()

	var doc *zip.File
	for _, f := range archive.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return "", eris.Errorf("docext: %s has no word/document.xml", path)
	}

	rc, err := doc.Open()
	if err != nil {
		return "", eris.Wrapf(err, "docext: open document.xml in %s", path)
	}
	defer rc.Close()

	text, err := decodeDocumentXML(rc)
	if err != nil {
		return "", eris.Wrapf(err, "docext: decode document.xml in %s", path)
	}
	return text, nil
}

// decodeDocumentXML walks the WordprocessingML stream collecting w:t
// character data and emitting a newline at each paragraph end.
func decodeDocumentXML(r io.Reader) (string, error) {
	var b strings.Builder
	dec := xml.NewDecoder(r)
	inText := false

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				b.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}

	return b.String(), nil
}
