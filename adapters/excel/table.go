package excel

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopulse/domain/core"
	"gopulse/domain/stats"
	"gopulse/ports"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Table is a parsed upload: ordered headers and string cells
type Table struct {
	Name    string
	headers []string
	rows    []RawRowData
}

var _ ports.TableSource = (*Table)(nil)

// NewTable builds a table from already-split rows, used for fixtures
func NewTable(name string, headers []string, rows []RawRowData) *Table {
	return &Table{Name: name, headers: append([]string(nil), headers...), rows: rows}
}

// Headers returns column names in file order
func (t *Table) Headers() []string {
	return append([]string(nil), t.headers...)
}

// RowCount returns the number of data rows
func (t *Table) RowCount() int {
	return len(t.rows)
}

// NumericHeaders lists columns whose non-blank cells all parse as finite numbers
func (t *Table) NumericHeaders() []string {
	var out []string
	for _, h := range t.headers {
		if _, err := t.column(h); err == nil {
			out = append(out, h)
		}
	}
	return out
}

// NumericColumn returns the non-blank cells of a column as a Sample labelled
// with the column's display name
func (t *Table) NumericColumn(name string) (stats.Sample, error) {
	values, err := t.column(name)
	if err != nil {
		return stats.Sample{}, err
	}
	return stats.Sample{Label: DisplayName(name), Values: values}, nil
}

// Paired returns the rows where both columns hold a value
func (t *Table) Paired(xName, yName string) (stats.PairedSample, error) {
	for _, name := range []string{xName, yName} {
		if !t.hasHeader(name) {
			return stats.PairedSample{}, core.NewNotFoundError(core.ErrColumnNotFound, name)
		}
	}

	var xs, ys []float64
	for i, row := range t.rows {
		xCell, yCell := row[xName], row[yName]
		if xCell == "" || yCell == "" {
			continue
		}
		x, err := parseCell(xName, i, xCell)
		if err != nil {
			return stats.PairedSample{}, err
		}
		y, err := parseCell(yName, i, yCell)
		if err != nil {
			return stats.PairedSample{}, err
		}
		xs = append(xs, x)
		ys = append(ys, y)
	}

	return stats.PairedSample{
		XLabel: DisplayName(xName),
		YLabel: DisplayName(yName),
		X:      xs,
		Y:      ys,
	}, nil
}

func (t *Table) column(name string) ([]float64, error) {
	if !t.hasHeader(name) {
		return nil, core.NewNotFoundError(core.ErrColumnNotFound, name)
	}

	values := make([]float64, 0, len(t.rows))
	for i, row := range t.rows {
		cell := row[name]
		if cell == "" {
			continue
		}
		v, err := parseCell(name, i, cell)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	if len(values) == 0 {
		return nil, core.NewInvalidInputError(name, "column has no values")
	}
	return values, nil
}

func (t *Table) hasHeader(name string) bool {
	for _, h := range t.headers {
		if h == name {
			return true
		}
	}
	return false
}

// parseCell reports row numbers as a spreadsheet user sees them: the header
// is row 1, so data row i is row i+2
func parseCell(column string, i int, cell string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, core.NewInvalidInputError(column, fmt.Sprintf("row %d: %q is not a finite number", i+2, cell))
	}
	return v, nil
}

var titleCaser = cases.Title(language.English)

// DisplayName turns a header like "runout_laid" into "Runout Laid"
func DisplayName(header string) string {
	replaced := strings.NewReplacer("_", " ", "-", " ").Replace(strings.TrimSpace(header))
	return titleCaser.String(strings.Join(strings.Fields(replaced), " "))
}
