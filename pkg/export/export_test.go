package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rosterTable() Table {
	return Table{
		Title:   "Students",
		Columns: []Column{{Title: "Username", Weight: 2}, {Title: "Email", Weight: 3}, {Title: "Courses"}},
		Rows: [][]string{
			{"alice", "alice@example.com", "2"},
			{"bob", "bob, jr@example.com", "0"},
		},
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = ParseFormat(" PDF ")
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, f)
	assert.Equal(t, "application/pdf", f.ContentType())
	assert.Equal(t, "students.pdf", f.Filename("students"))

	_, err = ParseFormat("xlsx")
	assert.Error(t, err)
}

func TestCSVQuotesCells(t *testing.T) {
	out, err := CSV(rosterTable())
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"Username", "Email", "Courses"}, records[0])
	assert.Equal(t, "bob, jr@example.com", records[2][1])
}

func TestRenderRejectsRaggedRows(t *testing.T) {
	table := rosterTable()
	table.Rows = append(table.Rows, []string{"carol"})

	_, err := Render(table, FormatCSV)
	assert.Error(t, err)
	_, err = Render(Table{}, FormatPDF)
	assert.Error(t, err)
}

func TestPDFProducesDocument(t *testing.T) {
	out, err := Render(rosterTable(), FormatPDF)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))

	empty := rosterTable()
	empty.Rows = nil
	out, err = PDF(empty)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestColumnWidthsAreProportional(t *testing.T) {
	widths := columnWidths([]Column{{Weight: 1}, {Weight: 3}}, 100)
	assert.InDelta(t, 25, widths[0], 0.001)
	assert.InDelta(t, 75, widths[1], 0.001)
}
