package ports

import (
	"context"
	"io"

	"gopulse/domain/stats"
)

// TableSource yields named columns parsed from a delimited or spreadsheet file.
// The statistical core never parses files itself; it only sees the []float64
// that a TableSource hands back.
type TableSource interface {
	Headers() []string
	NumericHeaders() []string
	RowCount() int
	NumericColumn(name string) (stats.Sample, error)
	Paired(xName, yName string) (stats.PairedSample, error)
}

// TableReader opens a TableSource from an upload stream. name is used to pick
// the format from its extension.
type TableReader interface {
	ReadTable(ctx context.Context, name string, r io.Reader) (TableSource, error)
}
