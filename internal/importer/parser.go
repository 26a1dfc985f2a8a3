package importer

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	enc "github.com/MrJamesThe3rd/flora/internal/encoding"
	"github.com/MrJamesThe3rd/flora/internal/storage"
)

var (
	ErrUnsupported = errors.New("collection cannot be imported")
	ErrNoHeader    = errors.New("no matching header row")
)

// Parse reads a CSV export and returns one record per data row. The header
// row is the first row that names every required column of the collection,
// so title lines above it are skipped. Rows missing a required value are
// skipped and counted.
func Parse(c storage.Collection, r io.Reader) ([]storage.Record, int, error) {
	p, ok := ProfileFor(c)
	if !ok {
		return nil, 0, fmt.Errorf("%s: %w", c, ErrUnsupported)
	}

	reader, err := enc.NewCSVReader(r)
	if err != nil {
		return nil, 0, fmt.Errorf("detect encoding: %w", err)
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, 0, fmt.Errorf("read csv: %w", err)
	}

	headerIdx := -1

	var fields map[string]int

	for i, row := range rows {
		if f, ok := p.match(row); ok {
			headerIdx, fields = i, f
			break
		}
	}

	if headerIdx < 0 {
		return nil, 0, fmt.Errorf("%s: %w: expected columns %s", c, ErrNoHeader, strings.Join(p.requiredFields(), ", "))
	}

	var (
		records []storage.Record
		skipped int
	)

	for i, row := range rows[headerIdx+1:] {
		rowNum := headerIdx + i + 2

		if isBlank(row) {
			continue
		}

		rec, ok, err := p.record(row, fields)
		if err != nil {
			return nil, 0, fmt.Errorf("row %d: %w", rowNum, err)
		}

		if !ok {
			skipped++
			continue
		}

		records = append(records, rec)
	}

	return records, skipped, nil
}

func (p Profile) requiredFields() []string {
	var out []string

	for _, c := range p.Columns {
		if c.Required {
			out = append(out, c.Field)
		}
	}

	return out
}

// record builds a record from row. It reports false when a required value is empty.
func (p Profile) record(row []string, fields map[string]int) (storage.Record, bool, error) {
	rec := storage.Record{}

	for _, c := range p.Columns {
		i, ok := fields[c.Field]
		if !ok {
			continue
		}

		v := cellValue(row, i)
		if v == "" {
			if c.Required {
				return nil, false, nil
			}

			continue
		}

		if c.Decimal {
			d, err := parseAmount(v)
			if err != nil {
				return nil, false, fmt.Errorf("%s: %w", c.Field, err)
			}

			rec[c.Field] = d.String()

			continue
		}

		rec[c.Field] = v
	}

	return rec, true, nil
}

// parseAmount accepts "1234.50", "1.234,50" and "1234,50".
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "$"))

	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid amount %q", s)
	}

	return d, nil
}

// cellValue safely gets a trimmed cell value from a row.
func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}

	return true
}
