// Package export serializes a filtered record set to CSV or XLSX.
//
// The header is the field keys of the first record; every row lists its
// values in that key order. Records that lack a key get a blank cell.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/homeandown/estatehub/internal/domain/models"
	"github.com/xuri/excelize/v2"
)

// ErrNoData is returned when there is nothing to export. Nothing has been
// written to the destination when it is returned.
var ErrNoData = errors.New("export: no data")

// maxSheetName is Excel's limit on worksheet names.
const maxSheetName = 31

// Export formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// ParseFormat normalizes a requested format; empty means CSV.
func ParseFormat(s string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", FormatCSV:
		return FormatCSV, true
	case FormatXLSX, "excel":
		return FormatXLSX, true
	}
	return "", false
}

// Table is the header plus stringified rows of a record set.
type Table struct {
	Header []string
	Rows   [][]string
}

// Build lays out records as a Table.
func Build(records []models.Record) (Table, error) {
	if len(records) == 0 {
		return Table{}, ErrNoData
	}
	header := records[0].Fields().Keys()
	rows := make([][]string, len(records))
	for i, r := range records {
		fields := r.Fields()
		row := make([]string, len(header))
		for j, key := range header {
			if v, ok := fields.Get(key); ok {
				row[j] = models.Stringify(v)
			}
		}
		rows[i] = row
	}
	return Table{Header: header, Rows: rows}, nil
}

// CSV writes records with encoding/csv quoting, so values containing
// commas, quotes or newlines survive a round trip.
func CSV(w io.Writer, records []models.Record) error {
	t, err := Build(records)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("write csv rows: %w", err)
	}
	return nil
}

// NaiveCSV joins values with commas and lines with "\n" without any
// quoting. Output is only well formed when no value contains a comma or
// newline; it exists for consumers that expect the legacy layout.
func NaiveCSV(w io.Writer, records []models.Record) error {
	t, err := Build(records)
	if err != nil {
		return err
	}
	lines := make([]string, 0, len(t.Rows)+1)
	lines = append(lines, strings.Join(t.Header, ","))
	for _, row := range t.Rows {
		lines = append(lines, strings.Join(row, ","))
	}
	if _, err := io.WriteString(w, strings.Join(lines, "\n")); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// SheetName turns a view title into a valid worksheet name.
func SheetName(title string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '-'
		}
		return r
	}, strings.TrimSpace(title))
	if name == "" {
		name = "Sheet1"
	}
	if rs := []rune(name); len(rs) > maxSheetName {
		name = string(rs[:maxSheetName])
	}
	return name
}

// XLSX writes records as a one-sheet workbook named after title.
func XLSX(w io.Writer, title string, records []models.Record) error {
	t, err := Build(records)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := SheetName(title)
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("open sheet: %w", err)
	}
	if err := sw.SetRow("A1", cells(t.Header)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, row := range t.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, cells(row)); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush sheet: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func cells(vals []string) []interface{} {
	out := make([]interface{}, len(vals))
	for i, v := range vals {
		out[i] = v
	}
	return out
}

// Filename returns the download file name for title and format.
func Filename(title, format string) string {
	base := strings.TrimSpace(title)
	if base == "" {
		base = "export"
	}
	return base + "." + format
}

// ContentType returns the MIME type for format.
func ContentType(format string) string {
	if format == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}
