package parser

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fjglira/GoRPA-OrderBot/internal/domain"
)

// CSVParser parses comma-separated order files with a header row.
type CSVParser struct {
	columns Columns
}

// NewCSVParser creates a new CSVParser reading the given columns.
func NewCSVParser(columns Columns) *CSVParser {
	return &CSVParser{columns: columns}
}

// Parse reads the header, locates the required columns regardless of their
// order and returns one record per data row. Values are trimmed but not
// otherwise checked: the order form decides what is valid.
func (p *CSVParser) Parse(filePath string, content []byte) ([]domain.OrderRecord, error) {
	content = bytes.TrimPrefix(content, []byte("\xef\xbb\xbf"))
	r := csv.NewReader(bytes.NewReader(content))
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, domain.NewError(domain.ErrSource, "source", filePath, "orders file is empty", nil)
	}
	if err != nil {
		return nil, domain.NewError(domain.ErrSource, "source", filePath, "failed to read header row", err)
	}

	index, err := p.resolveColumns(header)
	if err != nil {
		return nil, domain.NewErrorWithSuggestion(domain.ErrSource, "source", filePath, err.Error(),
			"check source.columns in orderbot.yaml against the file header", nil)
	}

	var records []domain.OrderRecord
	for row := 1; ; row++ {
		fields, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, domain.NewError(domain.ErrSource, "source", filePath,
				fmt.Sprintf("failed to parse data row %d", row), err)
		}

		rec := domain.OrderRecord{
			Row:     row,
			Head:    strings.TrimSpace(fields[index.head]),
			Body:    strings.TrimSpace(fields[index.body]),
			Legs:    strings.TrimSpace(fields[index.legs]),
			Address: strings.TrimSpace(fields[index.address]),
		}
		if index.reference >= 0 {
			rec.Reference = strings.TrimSpace(fields[index.reference])
		}
		records = append(records, rec)
	}

	return records, nil
}

type columnIndex struct {
	reference, head, body, legs, address int
}

// resolveColumns maps header names to field positions.
func (p *CSVParser) resolveColumns(header []string) (columnIndex, error) {
	positions := make(map[string]int, len(header))
	for i, name := range header {
		positions[strings.TrimSpace(name)] = i
	}

	idx := columnIndex{reference: -1}
	var missing []string
	lookup := func(name string, dst *int) {
		pos, ok := positions[name]
		if !ok {
			missing = append(missing, fmt.Sprintf("%q", name))
			return
		}
		*dst = pos
	}
	lookup(p.columns.Head, &idx.head)
	lookup(p.columns.Body, &idx.body)
	lookup(p.columns.Legs, &idx.legs)
	lookup(p.columns.Address, &idx.address)

	if len(missing) > 0 {
		return idx, fmt.Errorf("missing required column(s): %s", strings.Join(missing, ", "))
	}
	if pos, ok := positions[p.columns.Reference]; ok && p.columns.Reference != "" {
		idx.reference = pos
	}
	return idx, nil
}
