package core

// input.go turns an uploaded byte stream into RawRows.
//
// Bytes pass through a UTF-8 decoder that strips a leading BOM (Excel adds
// one on Windows) and replaces invalid sequences with U+FFFD, then through
// encoding/csv. Rows are pulled one at a time so the pipeline can stop
// reading the moment it rejects an upload.

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Decode wraps r so that a UTF-8 BOM is dropped and invalid UTF-8 is replaced.
func Decode(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
}

// rowReader pulls RawRows from a CSV stream.
type rowReader struct {
	csv    *csv.Reader
	header []string
	row    int
}

func newRowReader(r io.Reader) *rowReader {
	cr := csv.NewReader(Decode(r))
	cr.FieldsPerRecord = -1 // column count is a per-row validation rule
	cr.LazyQuotes = true
	cr.ReuseRecord = false
	return &rowReader{csv: cr}
}

// Header reads the first record. It returns io.EOF if the input holds no records.
func (r *rowReader) Header() ([]string, error) {
	rec, err := r.csv.Read()
	if err != nil {
		return nil, wrapReadErr(err)
	}
	r.header = rec
	return rec, nil
}

// Next returns the next data row, or io.EOF at end of input.
func (r *rowReader) Next() (RawRow, error) {
	rec, err := r.csv.Read()
	if err != nil {
		return RawRow{}, wrapReadErr(err)
	}
	r.row++

	values := make(map[string]string, len(r.header))
	for i, name := range r.header {
		if i < len(rec) {
			values[name] = rec[i]
		}
	}
	return RawRow{Row: r.row, Columns: len(rec), Values: values}, nil
}

func wrapReadErr(err error) error {
	if errors.Is(err, io.EOF) {
		return io.EOF
	}
	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		return &Error{Kind: KindMalformedCSV, Row: parseErr.Line, Err: err}
	}
	return fmt.Errorf("read csv: %w", err)
}
