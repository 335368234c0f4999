// Package geonames reads the country dumps and admin1 code table published
// by GeoNames. Files are read from local disk only.
package geonames

import (
	"archive/zip"
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
)

const (
	Admin1File = "admin1CodesASCII.txt"

	minColumns     = 19
	colName        = 1
	colLatitude    = 4
	colLongitude   = 5
	colFeatureCode = 6
	colAdmin1      = 10
	colTimezone    = 17

	populatedPlace = "P"
)

// Place is one populated place from a country dump.
type Place struct {
	Name     string
	Province *string
	Lat      *float64
	Lon      *float64
	Timezone *string
}

// Admin1 maps "CC.code" keys to first-level division names.
type Admin1 map[string]string

// Province resolves an admin1 code for country cc. Unknown codes are returned
// as-is; an empty code yields nil.
func (a Admin1) Province(cc, code string) *string {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil
	}
	if name, ok := a[strings.ToUpper(cc)+"."+code]; ok {
		return &name
	}
	return &code
}

// LoadAdmin1 reads admin1CodesASCII.txt. A missing file is reported with an
// error wrapping os.ErrNotExist.
func LoadAdmin1(path string) (Admin1, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	out := Admin1{}
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		parts := strings.Split(sc.Text(), "\t")
		if len(parts) < 2 || parts[0] == "" {
			continue
		}
		out[parts[0]] = parts[1]
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrapf(err, "scan %s", path)
	}
	return out, nil
}

// Parse keeps the populated places (feature class P) of a dump. Lines with
// fewer than 19 columns are skipped.
func Parse(r io.Reader, cc string, admin1 Admin1) ([]Place, error) {
	var places []Place
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		parts := strings.Split(sc.Text(), "\t")
		if len(parts) < minColumns || parts[colFeatureCode] != populatedPlace {
			continue
		}
		p := Place{
			Name:     strings.TrimSpace(parts[colName]),
			Province: admin1.Province(cc, parts[colAdmin1]),
		}
		lat, errLat := strconv.ParseFloat(parts[colLatitude], 64)
		lon, errLon := strconv.ParseFloat(parts[colLongitude], 64)
		if errLat == nil && errLon == nil {
			p.Lat, p.Lon = &lat, &lon
		}
		if tz := strings.TrimSpace(parts[colTimezone]); tz != "" {
			p.Timezone = &tz
		}
		places = append(places, p)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "scan dump")
	}
	return places, nil
}

// Locate returns the dump for cc in dir, preferring {CC}.txt over {CC}.zip.
// It returns an empty path when neither exists.
func Locate(dir, cc string) string {
	stem := strings.ToUpper(cc)
	for _, name := range []string{stem + ".txt", stem + ".zip"} {
		path := filepath.Join(dir, name)
		if st, err := os.Stat(path); err == nil && st.Mode().IsRegular() {
			return path
		}
	}
	return ""
}

// ParseFile parses a located dump, reading the text member of zip archives.
func ParseFile(path, cc string, admin1 Admin1) ([]Place, error) {
	if strings.EqualFold(filepath.Ext(path), ".zip") {
		return parseZip(path, cc, admin1)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()
	return Parse(f, cc, admin1)
}

func parseZip(path, cc string, admin1 Admin1) ([]Place, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open zip %s", path)
	}
	defer zr.Close()

	want := strings.ToLower(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))) + ".txt"
	var member *zip.File
	for _, f := range zr.File {
		name := strings.ToLower(f.Name)
		if strings.HasSuffix(name, want) {
			member = f
			break
		}
		if member == nil && strings.HasSuffix(name, ".txt") {
			member = f
		}
	}
	if member == nil {
		return nil, errors.Errorf("no .txt member in %s", path)
	}
	rc, err := member.Open()
	if err != nil {
		return nil, errors.Wrapf(err, "open %s in %s", member.Name, path)
	}
	defer rc.Close()
	return Parse(rc, cc, admin1)
}
