package export

import (
	"fmt"
	"strings"
)

// Format identifies a roster download encoding.
type Format string

const (
	FormatCSV Format = "csv"
	FormatPDF Format = "pdf"
)

// ParseFormat normalises a user supplied format, defaulting to CSV.
func ParseFormat(raw string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", string(FormatCSV):
		return FormatCSV, nil
	case string(FormatPDF):
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", raw)
	}
}

// ContentType returns the MIME type served for the format.
func (f Format) ContentType() string {
	if f == FormatPDF {
		return "application/pdf"
	}
	return "text/csv; charset=utf-8"
}

// Filename builds a download name such as students.csv.
func (f Format) Filename(base string) string {
	return base + "." + string(f)
}

// Column describes one roster column.
type Column struct {
	Title string
	// Weight controls the relative PDF column width. Zero counts as 1.
	Weight float64
}

// Table is a titled grid of string cells. Every row must have len(Columns) cells.
type Table struct {
	Title   string
	Columns []Column
	Rows    [][]string
}

func (t Table) validate() error {
	if len(t.Columns) == 0 {
		return fmt.Errorf("table %q has no columns", t.Title)
	}
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return fmt.Errorf("row %d has %d cells, want %d", i, len(row), len(t.Columns))
		}
	}
	return nil
}

func (t Table) headers() []string {
	out := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		out[i] = col.Title
	}
	return out
}

// Render encodes the table in the requested format.
func Render(t Table, f Format) ([]byte, error) {
	switch f {
	case FormatCSV:
		return CSV(t)
	case FormatPDF:
		return PDF(t)
	default:
		return nil, fmt.Errorf("unsupported export format %q", f)
	}
}
