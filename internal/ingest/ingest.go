package ingest

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	ErrEmptyFile       = errors.New("the uploaded file is empty")
	ErrFileTooLarge    = errors.New("file exceeds the maximum allowed size")
	ErrUnsupportedType = errors.New("only Excel files are allowed")
)

// Config gates uploads before any parsing happens. It is an explicit value
// handed to whoever accepts files, not package state.
type Config struct {
	MaxFileSize  int64
	AllowedTypes []string
}

func DefaultConfig() Config {
	return Config{
		MaxFileSize: 2 * 1024 * 1024,
		AllowedTypes: []string{
			"application/vnd.ms-excel",
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		},
	}
}

// CheckUpload rejects oversized files and non-spreadsheet MIME types.
func (c Config) CheckUpload(size int64, contentType string) error {
	if c.MaxFileSize > 0 && size > c.MaxFileSize {
		return ErrFileTooLarge
	}
	mediaType := contentType
	if i := strings.Index(mediaType, ";"); i >= 0 {
		mediaType = mediaType[:i]
	}
	mediaType = strings.TrimSpace(mediaType)
	for _, allowed := range c.AllowedTypes {
		if strings.EqualFold(mediaType, allowed) {
			return nil
		}
	}
	return ErrUnsupportedType
}

// Row maps header column names to cell values for one spreadsheet row.
type Row map[string]string

// Parse reads the first sheet of a spreadsheet into rows keyed by the header
// row. Rows with no values at all are skipped, mirroring how spreadsheet
// tools pad trailing blanks. Field semantics are the caller's business.
func Parse(r io.Reader) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyFile
	}

	cells, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(cells) < 2 {
		return nil, ErrEmptyFile
	}

	header := cells[0]
	rows := make([]Row, 0, len(cells)-1)
	for _, line := range cells[1:] {
		row := make(Row, len(header))
		empty := true
		for i, key := range header {
			key = strings.TrimSpace(key)
			if key == "" {
				continue
			}
			var value string
			if i < len(line) {
				value = strings.TrimSpace(line[i])
			}
			if value != "" {
				empty = false
			}
			row[key] = value
		}
		if !empty {
			rows = append(rows, row)
		}
	}

	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}
	return rows, nil
}
