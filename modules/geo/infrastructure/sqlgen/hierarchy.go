package sqlgen

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/iota-uz/geodata/modules/geo/domain/hierarchy"
)

const (
	generatedHeader = "-- Hierarchy generated from CSV sources"
	manualHeader    = "-- Hierarchy imported from manual scripts"
)

// RenderGenerated emits the full reload script for a built hierarchy:
// child-first deletes, parent-first inserts with explicit ids, and a PL/SQL
// block that moves each sequence past the highest loaded id. Running the
// script twice leaves the database in the same state.
func RenderGenerated(h *hierarchy.Hierarchy, s Schema) []byte {
	lines := []string{
		generatedHeader,
		"DELETE FROM " + s.Parishes.Name + ";",
		"DELETE FROM " + s.Cantons.Name + ";",
		"DELETE FROM " + s.Provinces.Name + ";",
		"COMMIT;",
	}

	for _, p := range h.Provinces {
		lines = append(lines, fmt.Sprintf("INSERT INTO %s (%s, CODIGO, NOMBRE) VALUES (%s);",
			s.Provinces.Name, s.Provinces.IDColumn, values(p.ID, p.Code, p.Name)))
	}
	lines = append(lines, "")

	for _, c := range h.Cantons {
		lines = append(lines, fmt.Sprintf("INSERT INTO %s (%s, %s, CODIGO, NOMBRE) VALUES (%s);",
			s.Cantons.Name, s.Cantons.IDColumn, s.ProvinceFK, values(c.ID, c.ProvinceID, c.Code, c.Name)))
	}
	lines = append(lines, "")

	for _, p := range h.Parishes {
		lines = append(lines, fmt.Sprintf("INSERT INTO %s (%s, %s, CODIGO, NOMBRE) VALUES (%s);",
			s.Parishes.Name, s.Parishes.IDColumn, s.CantonFK, values(p.ID, p.CantonID, p.Code, p.Name)))
	}

	lines = append(lines, "COMMIT;", "", SequenceBlock(s))
	return []byte(strings.Join(lines, "\n") + "\n")
}

// SequenceBlock advances every sequence with NEXTVAL until it is past
// NVL(MAX(id), 0) of its table.
func SequenceBlock(s Schema) string {
	var b strings.Builder
	b.WriteString("DECLARE\n")
	b.WriteString("    v_target  NUMBER;\n")
	b.WriteString("    v_current NUMBER;\n")
	b.WriteString("BEGIN\n")
	for i, t := range s.Tables() {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "    SELECT NVL(MAX(%s), 0) INTO v_target FROM %s;\n", t.IDColumn, t.Name)
		fmt.Fprintf(&b, "    SELECT %s.NEXTVAL INTO v_current FROM DUAL;\n", t.Sequence)
		b.WriteString("    WHILE v_current <= v_target LOOP\n")
		fmt.Fprintf(&b, "        SELECT %s.NEXTVAL INTO v_current FROM DUAL;\n", t.Sequence)
		b.WriteString("    END LOOP;\n")
	}
	b.WriteString("END;\n/")
	return b.String()
}

// ManualFile is one hand-written override script.
type ManualFile struct {
	Name    string
	Content []byte
}

// RenderManual concatenates override scripts verbatim, each preceded by a
// comment naming its file.
func RenderManual(files []ManualFile) []byte {
	var buf bytes.Buffer
	buf.WriteString(manualHeader + "\n")
	for _, f := range files {
		fmt.Fprintf(&buf, "-- Combining %s\n", f.Name)
		buf.Write(f.Content)
		if !bytes.HasSuffix(f.Content, []byte("\n")) {
			buf.WriteByte('\n')
		}
	}
	return buf.Bytes()
}

// RenderMissing is the placeholder written when generated-mode inputs are
// absent.
func RenderMissing(sourceDir string) []byte {
	return []byte("-- No valid hierarchy files were found.\n" +
		"-- Add provincias.csv, cantones.csv and parroquias.csv to " + sourceDir + "\n")
}
