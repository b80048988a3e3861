package ingest

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/rzimmerman2022/healthplan-navigator/internal/docext"
	"github.com/rzimmerman2022/healthplan-navigator/internal/model"
)

// Parser dispatches plan documents to the right decoder by format.
type Parser struct {
	pdf  docext.Extractor
	docx docext.Extractor
}

// NewParser wires the text extractors used for the PDF and DOCX paths.
func NewParser(pdf, docx docext.Extractor) *Parser {
	return &Parser{pdf: pdf, docx: docx}
}

// ParseDocument parses a single plan document. For tabular formats
// that can carry several plans per file, the first row is returned;
// use ParseBatch to get all of them.
func (p *Parser) ParseDocument(ctx context.Context, path string) (*model.Plan, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatPDF:
		return p.parseText(ctx, p.pdf, path)
	case FormatDOCX:
		return p.parseText(ctx, p.docx, path)
	case FormatJSON:
		return p.parseJSON(path)
	case FormatCSV:
		plans, err := p.parseCSV(path)
		if err != nil {
			return nil, err
		}
		return &plans[0], nil
	case FormatXLSX:
		plans, err := p.parseXLSX(path)
		if err != nil {
			return nil, err
		}
		return &plans[0], nil
	default:
		return nil, eris.Wrapf(ErrUnsupportedFormat, "%s", filepath.Base(path))
	}
}

// ParseBatch parses every supported document directly under dir and
// returns whatever could be read. A failing document is logged and
// skipped so one corrupt file cannot sink the batch; tabular files
// contribute all of their rows. The walk is not recursive.
func (p *Parser) ParseBatch(ctx context.Context, dir string) ([]model.Plan, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: read plan directory %s", dir)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var plans []model.Plan
	for _, name := range names {
		path := filepath.Join(dir, name)
		format, err := DetectFormat(path)
		if err != nil {
			continue
		}
		switch format {
		case FormatCSV, FormatXLSX:
			var rows []model.Plan
			if format == FormatCSV {
				rows, err = p.parseCSV(path)
			} else {
				rows, err = p.parseXLSX(path)
			}
			if err != nil {
				zap.L().Warn("skipping unparsable plan batch file",
					zap.String("file", name), zap.Error(err))
				continue
			}
			plans = append(plans, rows...)
		default:
			plan, err := p.ParseDocument(ctx, path)
			if err != nil {
				zap.L().Warn("skipping unparsable plan document",
					zap.String("file", name), zap.Error(err))
				continue
			}
			plans = append(plans, *plan)
		}
	}
	return plans, nil
}

func (p *Parser) parseText(ctx context.Context, ex docext.Extractor, path string) (*model.Plan, error) {
	text, err := ex.ExtractText(ctx, path)
	if err != nil {
		return nil, err
	}
	plan := ExtractFields(text, path).Plan(filepath.Base(path))
	return &plan, nil
}

func (p *Parser) parseJSON(path string) (*model.Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: read %s", filepath.Base(path))
	}
	var rec PlanRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, eris.Wrapf(err, "ingest: decode %s", filepath.Base(path))
	}
	rec.SourceFile = filepath.Base(path)
	plan, err := rec.Build()
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

func (p *Parser) parseCSV(path string) ([]model.Plan, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: open %s", filepath.Base(path))
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: read csv %s", filepath.Base(path))
	}
	if len(rows) < 2 {
		return nil, eris.Errorf("ingest: %s has no plan rows", filepath.Base(path))
	}
	return p.buildRows(filepath.Base(path), rows[0], rows[1:])
}

func (p *Parser) parseXLSX(path string) ([]model.Plan, error) {
	wb, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: open xlsx %s", filepath.Base(path))
	}
	if len(wb.Sheets) == 0 {
		return nil, eris.Errorf("ingest: %s has no sheets", filepath.Base(path))
	}
	sheet := wb.Sheets[0]
	if len(sheet.Rows) < 2 {
		return nil, eris.Errorf("ingest: %s has no plan rows", filepath.Base(path))
	}

	toStrings := func(row *xlsx.Row) []string {
		out := make([]string, len(row.Cells))
		for i, c := range row.Cells {
			out[i] = c.String()
		}
		return out
	}
	header := toStrings(sheet.Rows[0])
	body := make([][]string, 0, len(sheet.Rows)-1)
	for _, row := range sheet.Rows[1:] {
		body = append(body, toStrings(row))
	}
	return p.buildRows(filepath.Base(path), header, body)
}

// buildRows converts tabular rows into plans. Malformed rows are
// logged and skipped; the file fails only when nothing survives.
func (p *Parser) buildRows(source string, headerRow []string, body [][]string) ([]model.Plan, error) {
	header := make(map[string]int, len(headerRow))
	for i, name := range headerRow {
		header[strings.ToLower(strings.TrimSpace(name))] = i
	}

	plans := make([]model.Plan, 0, len(body))
	for i, row := range body {
		if len(row) == 0 {
			continue
		}
		rec, err := recordFromRow(header, row)
		if err == nil {
			rec.SourceFile = source
			var plan model.Plan
			if plan, err = rec.Build(); err == nil {
				plans = append(plans, plan)
				continue
			}
		}
		zap.L().Warn("skipping malformed plan row",
			zap.String("file", source), zap.Int("row", i+2), zap.Error(err))
	}
	if len(plans) == 0 {
		return nil, eris.Errorf("ingest: %s has no parsable plan rows", source)
	}
	return plans, nil
}
