package legacysql

import (
	"bytes"
	"os"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Encodings accepted by ReadFile.
const (
	EncodingLatin1  = "latin1"
	EncodingCP1252  = "windows-1252"
	EncodingUTF8    = "utf-8"
	DefaultEncoding = EncodingLatin1
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func decoderFor(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "latin1", "latin-1", "iso-8859-1", "iso8859-1":
		return charmap.ISO8859_1, nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252, nil
	case "utf-8", "utf8":
		return unicode.UTF8, nil
	default:
		return nil, errors.Errorf("unsupported encoding %q", name)
	}
}

// ReadFile loads a dump file and decodes it to UTF-8.
func ReadFile(path, enc string) (string, error) {
	codec, err := decoderFor(enc)
	if err != nil {
		return "", err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrapf(err, "read %s", path)
	}
	raw = bytes.TrimPrefix(raw, utf8BOM)
	out, err := codec.NewDecoder().Bytes(raw)
	if err != nil {
		return "", errors.Wrapf(err, "decode %s as %s", path, enc)
	}
	return string(out), nil
}

// ExtractFile reads path with the given encoding and extracts its tuples.
func ExtractFile(path string, arity int, enc string) ([]Tuple, error) {
	text, err := ReadFile(path, enc)
	if err != nil {
		return nil, err
	}
	return extract(path, text, arity)
}
