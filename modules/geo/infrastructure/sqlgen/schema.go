package sqlgen

// Table names a target table, its surrogate key column and the sequence
// that feeds that key in the target database.
type Table struct {
	Name     string
	IDColumn string
	Sequence string
}

type Schema struct {
	Provinces Table
	Cantons   Table
	Parishes  Table

	// ProvinceFK and CantonFK name the parent key columns on child tables.
	ProvinceFK string
	CantonFK   string
}

func DefaultSchema() Schema {
	return Schema{
		Provinces:  Table{Name: "PROVINCIAS", IDColumn: "PROVINCIAID", Sequence: "SEQ_PROVINCIA"},
		Cantons:    Table{Name: "CANTONES", IDColumn: "CANTONID", Sequence: "SEQ_CANTON"},
		Parishes:   Table{Name: "PARROQUIAS", IDColumn: "PARROQUIAID", Sequence: "SEQ_PARROQUIA"},
		ProvinceFK: "PROVINCIAID",
		CantonFK:   "CANTONID",
	}
}

// Tables returns the tables parent-first.
func (s Schema) Tables() []Table {
	return []Table{s.Provinces, s.Cantons, s.Parishes}
}
