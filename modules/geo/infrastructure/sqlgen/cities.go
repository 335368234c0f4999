package sqlgen

import (
	"bytes"
	"fmt"
)

const CityTable = "CIUDAD"

// City is one row of the city catalog. Optional attributes are nil when the
// source had no usable value.
type City struct {
	ID       int
	Name     string
	Province *string
	Lat      *float64
	Lon      *float64
	Timezone *string
}

// RenderCities emits a delete-and-reload script for the city catalog.
func RenderCities(cities []City) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "-- City catalog generated for %s\n", CityTable)
	fmt.Fprintf(&buf, "DELETE FROM %s;\n", CityTable)
	for _, c := range cities {
		fmt.Fprintf(&buf, "INSERT INTO %s (CIUDADID, NOMBRE, PROVINCIA, LATITUD, LONGITUD, ZONA_HORARIA) VALUES (%s);\n",
			CityTable, values(c.ID, c.Name, c.Province, c.Lat, c.Lon, c.Timezone))
	}
	buf.WriteString("COMMIT;\n")
	return buf.Bytes()
}
