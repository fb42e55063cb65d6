// Package roster reads the spreadsheet that maps photo filenames to teams.
//
// A roster is a header row followed by data rows. CSV is the primary
// format; .xlsx workbooks are read from their first sheet. The whole file
// is read and the requested columns resolved before any row is returned,
// so a malformed file or a missing column never leaves a batch half done.
package roster

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var (
	// ErrDataAccess is returned when the roster is missing, unreadable or
	// cannot be parsed.
	ErrDataAccess = errors.New("roster unreadable")

	// ErrSchema is returned when a requested column is not in the header.
	ErrSchema = errors.New("roster column missing")
)

// SchemaError names the column that could not be found.
type SchemaError struct {
	Column string
	Header []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%v: %q not in header [%s]", ErrSchema, e.Column, strings.Join(e.Header, ", "))
}

func (e *SchemaError) Unwrap() error {
	return ErrSchema
}

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// DetectFormat picks the reader from the file extension. Anything that is
// not a workbook is treated as comma-separated text.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX
	default:
		return FormatCSV
	}
}

// Row is one (team, photo) pair. Values are raw cell text; callers trim.
type Row struct {
	// Line is the 1-based data row number, header excluded.
	Line  int    `json:"line"`
	Team  string `json:"team"`
	Photo string `json:"photo"`
}

type Roster struct {
	Path   string
	Format Format
	Header []string
	Rows   []Row
}

// Open reads path and selects teamColumn and photoColumn from its header.
func Open(path, teamColumn, photoColumn string) (*Roster, error) {
	format := DetectFormat(path)

	var (
		records [][]string
		err     error
	)
	switch format {
	case FormatXLSX:
		records, err = readXLSX(path)
	default:
		records, err = readCSV(path)
	}
	if err != nil {
		return nil, err
	}

	r, err := FromRecords(records, teamColumn, photoColumn)
	if err != nil {
		return nil, err
	}
	r.Path = path
	r.Format = format
	return r, nil
}

// FromRecords builds a roster from already-split records, the first of
// which is the header.
func FromRecords(records [][]string, teamColumn, photoColumn string) (*Roster, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no header row", ErrDataAccess)
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		header[i] = strings.TrimSpace(h)
	}

	teamIdx, err := columnIndex(header, teamColumn)
	if err != nil {
		return nil, err
	}
	photoIdx, err := columnIndex(header, photoColumn)
	if err != nil {
		return nil, err
	}

	r := &Roster{Header: header}
	for i, rec := range records[1:] {
		if isBlank(rec) {
			continue
		}
		r.Rows = append(r.Rows, Row{
			Line:  i + 1,
			Team:  cell(rec, teamIdx),
			Photo: cell(rec, photoIdx),
		})
	}

	return r, nil
}

// columnIndex returns the first header position named column.
func columnIndex(header []string, column string) (int, error) {
	want := strings.TrimSpace(column)
	if want != "" {
		for i, h := range header {
			if h == want {
				return i, nil
			}
		}
	}
	return -1, &SchemaError{Column: column, Header: header}
}

// cell returns rec[i], or "" when the record is shorter than the header.
func cell(rec []string, i int) string {
	if i < len(rec) {
		return rec[i]
	}
	return ""
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
