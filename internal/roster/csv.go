package roster

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// readCSV reads every record of a comma-separated file. Files that are not
// valid UTF-8 are decoded as Windows-1252, which is what spreadsheet
// programs on Windows write by default.
func readCSV(path string) ([][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDataAccess, err)
	}

	if !utf8.Valid(data) {
		decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: decode: %v", ErrDataAccess, path, err)
		}
		data = decoded
	}

	return parseCSV(bytes.NewReader(data), path)
}

func parseCSV(r io.Reader, name string) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var records [][]string
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				return nil, fmt.Errorf("%w: %s line %d: %v", ErrDataAccess, name, perr.Line, perr.Err)
			}
			return nil, fmt.Errorf("%w: %s: %v", ErrDataAccess, name, err)
		}
		records = append(records, rec)
	}

	return records, nil
}
