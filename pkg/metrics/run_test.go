package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRun_Counters(t *testing.T) {
	t.Parallel()

	r := NewRun()
	r.RowsEmitted("province", 24)
	r.RowsEmitted("province", 1)
	r.RowsDropped("parish", "unresolved_parent", 3)
	r.Artifact("insert_jerarquia.sql", 2048)
	r.Finish("generate", "generated", "ok", 1500*time.Millisecond)

	require.Equal(t, 25.0, testutil.ToFloat64(r.rowsEmitted.WithLabelValues("province")))
	require.Equal(t, 3.0, testutil.ToFloat64(r.rowsDropped.WithLabelValues("parish", "unresolved_parent")))
	require.Equal(t, 2048.0, testutil.ToFloat64(r.artifactBytes.WithLabelValues("insert_jerarquia.sql")))
	require.Equal(t, 1.5, testutil.ToFloat64(r.duration.WithLabelValues("generate")))
	require.Positive(t, testutil.ToFloat64(r.lastSuccess.WithLabelValues("generate")))
}

func TestRun_FailedRunKeepsSuccessTimestampUnset(t *testing.T) {
	t.Parallel()

	r := NewRun()
	r.Finish("extract", "", "error", time.Second)
	require.Zero(t, testutil.ToFloat64(r.lastSuccess.WithLabelValues("extract")))
}

func TestRun_WriteTextfile(t *testing.T) {
	t.Parallel()

	r := NewRun()
	r.RowsEmitted("canton", 221)
	r.Finish("generate", "generated", "ok", time.Second)

	require.NoError(t, r.WriteTextfile(""))

	path := filepath.Join(t.TempDir(), "geodata.prom")
	require.NoError(t, r.WriteTextfile(path))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(b), `geodata_rows_emitted_total{level="canton"} 221`)
	require.Contains(t, string(b), `geodata_run_info{command="generate",mode="generated",status="ok"} 1`)
}
