package excel

// RawRowData represents a row of raw cell text keyed by header
type RawRowData map[string]string

// ReaderConfig bounds what a DataReader accepts
type ReaderConfig struct {
	MaxRows int    `json:"max_rows"`
	Sheet   string `json:"sheet"` // empty selects the first sheet of a workbook
}

// DefaultReaderConfig returns limits sized for classroom tables
func DefaultReaderConfig() ReaderConfig {
	return ReaderConfig{
		MaxRows: 5000,
	}
}
