package csvio

import (
	"bytes"
	"encoding/csv"

	"github.com/go-faster/errors"
)

// Encode renders a header and rows as UTF-8 CSV with LF line endings.
func Encode(header []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, errors.Wrap(err, "write header")
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, errors.Wrap(err, "write rows")
	}
	return buf.Bytes(), nil
}
