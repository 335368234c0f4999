package services

import (
	"os"
	"path/filepath"

	"github.com/iota-uz/geodata/modules/geo/domain/hierarchy"
	"github.com/iota-uz/geodata/modules/geo/infrastructure/csvio"
)

// ManualFileNames are the hand-written override scripts, parent level first.
var ManualFileNames = []string{
	"insert_provincias.sql",
	"insert_cantones.sql",
	"insert_parroquias.sql",
}

// Mode is the generation strategy chosen once at the start of a run.
type Mode interface {
	Name() string
	mode()
}

// ManualMode passes the override scripts through verbatim.
type ManualMode struct {
	Files []string
}

// GeneratedMode builds the hierarchy from CSV rows.
type GeneratedMode struct {
	Rows hierarchy.Rows
}

// MissingDataMode means generated-mode inputs were absent or empty.
type MissingDataMode struct {
	SourceDir string
}

func (ManualMode) Name() string      { return "manual" }
func (GeneratedMode) Name() string   { return "generated" }
func (MissingDataMode) Name() string { return "missing" }

func (ManualMode) mode()      {}
func (GeneratedMode) mode()   {}
func (MissingDataMode) mode() {}

// findManualFiles resolves every override script against the candidate
// directories in order; the first existing non-empty match wins. It returns
// nil unless all of them are found.
func findManualFiles(dirs []string) []string {
	found := make([]string, 0, len(ManualFileNames))
	for _, name := range ManualFileNames {
		match := ""
		for _, dir := range dirs {
			candidate := filepath.Join(dir, name)
			if st, err := os.Stat(candidate); err == nil && st.Mode().IsRegular() && st.Size() > 0 {
				match = candidate
				break
			}
		}
		if match == "" {
			return nil
		}
		found = append(found, match)
	}
	return found
}

// SelectMode picks manual mode when every override script is present,
// otherwise loads the CSV intermediates from sourceDir. A CSV header missing
// required columns is returned as *csvio.SchemaError.
func SelectMode(manualDirs []string, sourceDir string) (Mode, error) {
	if files := findManualFiles(manualDirs); files != nil {
		return ManualMode{Files: files}, nil
	}
	rows, err := csvio.LoadRows(sourceDir)
	if err != nil {
		return nil, err
	}
	if rows.Incomplete() {
		return MissingDataMode{SourceDir: sourceDir}, nil
	}
	return GeneratedMode{Rows: rows}, nil
}
