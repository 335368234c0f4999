// Package csvio reads and writes the hierarchy CSV intermediates.
package csvio

import (
	"bufio"
	"encoding/csv"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/go-faster/errors"
)

// SchemaError reports a CSV file whose header lacks required columns.
type SchemaError struct {
	Path    string
	Missing []string
}

func (e *SchemaError) Error() string {
	return "csv " + e.Path + ": missing required columns: " + strings.Join(e.Missing, ", ")
}

// Record is one data row keyed by upper-cased column name.
type Record map[string]string

func openCSV(path string) (*csv.Reader, func() error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	br := stripUTF8BOM(bufio.NewReader(f))

	r := csv.NewReader(br)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	return r, f.Close, nil
}

func stripUTF8BOM(r *bufio.Reader) *bufio.Reader {
	b, err := r.Peek(3)
	if err == nil && len(b) == 3 && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		_, _ = r.Discard(3)
	}
	return r
}

// readHeader returns the normalized header, or nil when the file is empty.
func readHeader(r *csv.Reader) ([]string, error) {
	h, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}
	for i := range h {
		h[i] = strings.ToUpper(strings.TrimSpace(h[i]))
		if !utf8.ValidString(h[i]) {
			return nil, errors.New("invalid header encoding")
		}
	}
	return h, nil
}

func headerIndex(header []string) map[string]int {
	m := make(map[string]int, len(header))
	for i, name := range header {
		if _, ok := m[name]; !ok {
			m[name] = i
		}
	}
	return m
}

func missingColumns(idx map[string]int, required []string) []string {
	var missing []string
	for _, req := range required {
		if _, ok := idx[req]; !ok {
			missing = append(missing, req)
		}
	}
	return missing
}

// Load reads path and returns its data rows projected onto the required
// columns. A missing file or a file without a header yields no rows and no
// error; a header without every required column yields a *SchemaError.
func Load(path string, required []string) ([]Record, error) {
	r, closeFn, err := openCSV(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = closeFn() }()

	header, err := readHeader(r)
	if err != nil {
		return nil, errors.Wrapf(err, "read header %s", path)
	}
	if header == nil {
		return nil, nil
	}
	idx := headerIndex(header)
	if missing := missingColumns(idx, required); len(missing) > 0 {
		return nil, &SchemaError{Path: path, Missing: missing}
	}

	var out []Record
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "read %s", path)
		}
		if blank(rec) {
			continue
		}
		row := make(Record, len(required))
		for _, col := range required {
			if i := idx[col]; i < len(rec) {
				row[col] = strings.TrimSpace(rec[i])
			} else {
				row[col] = ""
			}
		}
		out = append(out, row)
	}
	return out, nil
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
