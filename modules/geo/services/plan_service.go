package services

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/iota-uz/geodata/pkg/artifact"
	"github.com/iota-uz/geodata/pkg/logging"
	"github.com/iota-uz/geodata/pkg/metrics"
)

const DefaultPlanArtifact = "plan_ejecucion_dw.sql"

// DefaultSequence is the script order that builds the enriched OLTP schema
// and the warehouse. Paths are relative to the repository root, where the
// plan is meant to be run from.
var DefaultSequence = []string{
	"scripts/sql/oltp/00_create_base_tables.sql",
	"scripts/sql/oltp/00_require_base_tables.sql",
	"scripts/sql/oltp/05_seed_transactional_data.sql",
	"scripts/sql/oltp/01_create_ciudad_table.sql",
	"data/output/ciudades/insert_ciudad.sql",
	"scripts/sql/oltp/02_add_ciudad_to_clientes.sql",
	"scripts/sql/oltp/03_assign_random_city_to_clients.sql",
	"scripts/sql/oltp/04_create_province_canton_parish_tables.sql",
	"data/output/jerarquia/insert_jerarquia.sql",
	"scripts/sql/dw/01_dw_star_schema_and_top_product_view.sql",
	"scripts/sql/etl/load_dw_from_oltp.sql",
}

// Sequence is the yaml document accepted by LoadSequence:
//
//	scripts:
//	  - scripts/sql/oltp/00_create_base_tables.sql
//	  - data/output/jerarquia/insert_jerarquia.sql
type Sequence struct {
	Scripts []string `yaml:"scripts"`
}

// LoadSequence reads a sequence file. Unknown keys are rejected.
func LoadSequence(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open sequence %s", path)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	var seq Sequence
	if err := dec.Decode(&seq); err != nil {
		return nil, errors.Wrapf(err, "decode sequence %s", path)
	}
	if len(seq.Scripts) == 0 {
		return nil, errors.Errorf("sequence %s lists no scripts", path)
	}
	return seq.Scripts, nil
}

// RenderPlan writes a SQL*Plus script that runs every script in order and
// finishes with a few verification queries.
func RenderPlan(scripts []string) []byte {
	var buf bytes.Buffer
	buf.WriteString("-- Execution plan: enriched OLTP schema and data warehouse\n")
	buf.WriteString("SET DEFINE OFF;\n")
	buf.WriteString("SET ECHO ON;\n")
	buf.WriteString("SET FEEDBACK ON;\n")
	buf.WriteString("SET SERVEROUTPUT ON;\n")
	buf.WriteString("WHENEVER SQLERROR CONTINUE;\n")
	buf.WriteString("-- If the base tables live in another schema, uncomment and adjust:\n")
	buf.WriteString("-- ALTER SESSION SET CURRENT_SCHEMA=BASE_SCHEMA;\n")
	for _, s := range scripts {
		fmt.Fprintf(&buf, "@%s\n", filepath.ToSlash(s))
	}
	buf.WriteString("\nPROMPT ===== Quick verification =====;\n")
	buf.WriteString("PROMPT City count in CIUDAD:;\n")
	buf.WriteString("SELECT COUNT(*) AS TOTAL_CIUDADES FROM CIUDAD;\n")
	buf.WriteString("PROMPT Sample of 5 cities:\n")
	buf.WriteString("SELECT CIUDADID, NOMBRE, PROVINCIA FROM CIUDAD WHERE ROWNUM <= 5;\n")
	buf.WriteString("PROMPT Hierarchy counts:\n")
	buf.WriteString("SELECT (SELECT COUNT(*) FROM PROVINCIAS) AS PROVINCIAS, (SELECT COUNT(*) FROM CANTONES) AS CANTONES, (SELECT COUNT(*) FROM PARROQUIAS) AS PARROQUIAS FROM DUAL;\n")
	buf.WriteString("PROMPT Count in DW_DIM_UBICACION:\n")
	buf.WriteString("SELECT COUNT(*) AS TOTAL_DIM_UBICACION FROM DW_DIM_UBICACION;\n")
	buf.WriteString("PROMPT Best selling product (if any data):\n")
	buf.WriteString("SELECT * FROM VW_MAS_VENDIDO WHERE ROWNUM <= 5;\n")
	return buf.Bytes()
}

type PlanOptions struct {
	Store   artifact.Store
	Logger  *logrus.Entry
	Metrics *metrics.Run
}

type PlanService struct {
	opts PlanOptions
}

func NewPlanService(opts PlanOptions) *PlanService {
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewRun()
	}
	return &PlanService{opts: opts}
}

type PlanRequest struct {
	// SequenceFile overrides DefaultSequence when set.
	SequenceFile string
	// Root resolves relative script paths for the existence check.
	Root   string
	Output string
}

type PlanResult struct {
	Scripts  []string      `json:"scripts"`
	Missing  []string      `json:"missing,omitempty"`
	Artifact artifact.Info `json:"artifact"`
	Elapsed  time.Duration `json:"-"`
}

// Build writes the plan file. Scripts absent under Root are still listed,
// since some are produced later in the same run, but they are reported.
func (s *PlanService) Build(ctx context.Context, req PlanRequest) (*PlanResult, error) {
	started := time.Now()
	scripts := DefaultSequence
	if req.SequenceFile != "" {
		loaded, err := LoadSequence(req.SequenceFile)
		if err != nil {
			return nil, err
		}
		scripts = loaded
	}
	output := req.Output
	if output == "" {
		output = DefaultPlanArtifact
	}

	res := &PlanResult{Scripts: scripts}
	for _, script := range scripts {
		path := script
		if !filepath.IsAbs(path) {
			path = filepath.Join(req.Root, path)
		}
		if _, err := os.Stat(path); err != nil {
			res.Missing = append(res.Missing, script)
			s.opts.Logger.WithField("path", script).Warn("plan script not found")
		}
	}

	info, err := s.opts.Store.Put(ctx, output, RenderPlan(scripts), artifact.PutOptions{ContentType: artifact.ContentTypeSQL})
	if err != nil {
		return nil, errors.Wrap(err, "write plan")
	}
	s.opts.Metrics.Artifact(filepath.Base(output), info.Size)
	res.Artifact = info
	res.Elapsed = time.Since(started)
	s.opts.Logger.WithFields(logrus.Fields{"path": info.Location, "scripts": len(scripts)}).Info("plan written")
	return res, nil
}
