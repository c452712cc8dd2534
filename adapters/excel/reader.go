package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopulse/domain/core"
	"gopulse/internal"
	"gopulse/internal/errors"
	"gopulse/ports"

	"github.com/xuri/excelize/v2"
)

// DataReader handles reading Excel and CSV tables
type DataReader struct {
	config ReaderConfig
	logger *internal.Logger
}

var _ ports.TableReader = (*DataReader)(nil)

// NewDataReader creates a reader that handles both Excel and CSV files
func NewDataReader(config ReaderConfig) *DataReader {
	if config.MaxRows <= 0 {
		config.MaxRows = DefaultReaderConfig().MaxRows
	}
	return &DataReader{config: config, logger: internal.DefaultLogger}
}

// WithLogger sets the logger read timings go to
func (r *DataReader) WithLogger(logger *internal.Logger) *DataReader {
	if logger != nil {
		r.logger = logger.With("component", "excel")
	}
	return r
}

// fileType picks the format from the file extension
func fileType(name string) (string, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return "csv", nil
	case ".xlsx", ".xlsm":
		return "xlsx", nil
	default:
		return "", errors.UnsupportedFormat(filepath.Base(name))
	}
}

// ReadFile reads a table from disk
func (r *DataReader) ReadFile(ctx context.Context, path string) (*Table, error) {
	if _, err := fileType(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFound(fmt.Sprintf("file %s", path))
		}
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()

	return r.Read(ctx, path, f)
}

// ReadTable satisfies ports.TableReader
func (r *DataReader) ReadTable(ctx context.Context, name string, rd io.Reader) (ports.TableSource, error) {
	return r.Read(ctx, name, rd)
}

// Read parses rd as the format implied by name's extension
func (r *DataReader) Read(ctx context.Context, name string, rd io.Reader) (*Table, error) {
	kind, err := fileType(name)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	var rows [][]string
	switch kind {
	case "csv":
		rows, err = r.readCSVRows(rd)
	case "xlsx":
		rows, err = r.readExcelRows(rd)
	}
	if err != nil {
		return nil, err
	}
	r.logger.Debug("%s read in %.2fms (%d rows)", filepath.Base(name), float64(time.Since(start).Nanoseconds())/1e6, len(rows))

	return r.processRows(filepath.Base(name), rows)
}

// readExcelRows reads the configured sheet, or the first one
func (r *DataReader) readExcelRows(rd io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(rd)
	if err != nil {
		return nil, errors.Wrap(core.NewInvalidInputError("workbook", err.Error()), "failed to open Excel file")
	}
	defer f.Close()

	sheet := r.config.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, core.NewInvalidInputError("workbook", "no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.Wrap(core.NewInvalidInputError("sheet", err.Error()), fmt.Sprintf("failed to read %s", sheet))
	}
	return rows, nil
}

// readCSVRows reads comma-separated rows; ragged rows are allowed
func (r *DataReader) readCSVRows(rd io.Reader) ([][]string, error) {
	reader := csv.NewReader(rd)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(core.NewInvalidInputError("csv", err.Error()), "failed to read CSV file")
	}
	return rows, nil
}

// processRows converts raw string rows into a Table
func (r *DataReader) processRows(name string, rows [][]string) (*Table, error) {
	rows = dropBlankRows(rows)
	if len(rows) < 2 {
		return nil, core.NewInvalidInputError(name, "need a header row and at least one data row")
	}
	if len(rows)-1 > r.config.MaxRows {
		return nil, core.NewInvalidInputError(name, fmt.Sprintf("%d data rows exceeds the limit of %d", len(rows)-1, r.config.MaxRows))
	}

	headers := make([]string, len(rows[0]))
	seen := make(map[string]bool, len(headers))
	for i, header := range rows[0] {
		header = strings.TrimSpace(header)
		if header == "" {
			header = fmt.Sprintf("column_%d", i+1)
		}
		if seen[header] {
			return nil, core.NewInvalidInputError(name, fmt.Sprintf("duplicate column %q", header))
		}
		seen[header] = true
		headers[i] = header
	}

	dataRows := make([]RawRowData, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rowData := make(RawRowData, len(headers))
		for j, cell := range row {
			if j < len(headers) {
				rowData[headers[j]] = strings.TrimSpace(cell)
			}
		}
		dataRows = append(dataRows, rowData)
	}

	return &Table{
		Name:    name,
		headers: headers,
		rows:    dataRows,
	}, nil
}

func dropBlankRows(rows [][]string) [][]string {
	out := rows[:0:0]
	for _, row := range rows {
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				out = append(out, row)
				break
			}
		}
	}
	return out
}
