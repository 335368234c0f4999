package configuration

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/iota-uz/utils/fs"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/geodata/pkg/logging"
)

// LoadEnv loads the given dotenv files. Files missing from the working
// directory are looked up in the nearest directory holding a go.mod, so
// commands run from a subdirectory still pick up the repository's .env.
func LoadEnv(envFiles []string) (int, error) {
	root := moduleRoot()

	existingFiles := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		switch {
		case fs.FileExists(file):
			existingFiles = append(existingFiles, file)
		case root != "" && !filepath.IsAbs(file) && fs.FileExists(filepath.Join(root, file)):
			existingFiles = append(existingFiles, filepath.Join(root, file))
		}
	}

	if len(existingFiles) == 0 {
		return 0, nil
	}

	return len(existingFiles), godotenv.Load(existingFiles...)
}

func moduleRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if fs.FileExists(filepath.Join(dir, "go.mod")) {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// PathOptions locate inputs and outputs. Relative values resolve against
// Root.
type PathOptions struct {
	Root               string   `env:"GEODATA_ROOT" envDefault:"."`
	RawSQLDir          string   `env:"GEODATA_RAW_SQL_DIR" envDefault:"data/Datos-Geograficos-Ecuador"`
	HierarchyCSVDir    string   `env:"GEODATA_HIERARCHY_CSV_DIR" envDefault:"data/raw/jerarquia"`
	HierarchyOutputDir string   `env:"GEODATA_HIERARCHY_OUTPUT_DIR" envDefault:"data/output/jerarquia"`
	ManualDirs         []string `env:"GEODATA_MANUAL_DIRS" envDefault:"data/output/jerarquia,data/output/ciudades" envSeparator:","`
	CitiesRawDir       string   `env:"GEODATA_CITIES_RAW_DIR" envDefault:"data/raw/ciudades"`
	CitiesOutputDir    string   `env:"GEODATA_CITIES_OUTPUT_DIR" envDefault:"data/output/ciudades"`
	PlanOutput         string   `env:"GEODATA_PLAN_OUTPUT" envDefault:"data/output/plan_ejecucion_dw.sql"`
	PlanSequence       string   `env:"GEODATA_PLAN_SEQUENCE"`
}

type ArtifactOptions struct {
	Driver      string `env:"GEODATA_ARTIFACT_DRIVER" envDefault:"fs"` // fs, memory or s3
	S3Bucket    string `env:"GEODATA_S3_BUCKET"`
	S3Region    string `env:"GEODATA_S3_REGION" envDefault:"us-east-1"`
	S3Endpoint  string `env:"GEODATA_S3_ENDPOINT"`
	S3Prefix    string `env:"GEODATA_S3_PREFIX"`
	S3PathStyle bool   `env:"GEODATA_S3_PATH_STYLE" envDefault:"false"`
}

// Validate checks the artifact driver configuration for errors
func (a *ArtifactOptions) Validate() error {
	driver := strings.ToLower(strings.TrimSpace(a.Driver))
	if driver == "" {
		driver = "fs"
	}
	switch driver {
	case "fs", "memory", "s3":
	default:
		return fmt.Errorf("invalid GEODATA_ARTIFACT_DRIVER=%q (expected fs|memory|s3)", a.Driver)
	}
	if driver == "s3" && strings.TrimSpace(a.S3Bucket) == "" {
		return fmt.Errorf("GEODATA_S3_BUCKET is required when GEODATA_ARTIFACT_DRIVER is 's3'")
	}
	a.Driver = driver
	return nil
}

type MetricsOptions struct {
	// Textfile is a node-exporter textfile collector path; empty disables export.
	Textfile string `env:"GEODATA_METRICS_TEXTFILE"`
}

type Configuration struct {
	Paths     PathOptions
	Artifacts ArtifactOptions
	Metrics   MetricsOptions

	RawEncoding string `env:"GEODATA_RAW_ENCODING" envDefault:"latin1"`
	CountryCode string `env:"GEODATA_COUNTRY_CODE" envDefault:"EC"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogPath     string `env:"LOG_PATH"`

	logFile *os.File
	logger  *logrus.Logger
}

func (c *Configuration) Logger() *logrus.Logger {
	return c.logger
}

func (c *Configuration) LogrusLogLevel() logrus.Level {
	switch c.LogLevel {
	case "silent":
		return logrus.PanicLevel
	case "error":
		return logrus.ErrorLevel
	case "warn":
		return logrus.WarnLevel
	case "info":
		return logrus.InfoLevel
	case "debug":
		return logrus.DebugLevel
	default:
		return logrus.InfoLevel
	}
}

// Path resolves a configured path against Paths.Root.
func (c *Configuration) Path(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Paths.Root, p)
}

// Load builds a configuration from the given env files. Each command
// invocation loads its own; the caller owns Unload.
func Load(envFiles []string) (*Configuration, error) {
	c := &Configuration{}
	if err := c.load(envFiles); err != nil {
		c.Unload()
		return nil, err
	}
	return c, nil
}

func (c *Configuration) load(envFiles []string) error {
	n, err := LoadEnv(envFiles)
	if err != nil {
		return err
	}
	if n == 0 && len(envFiles) > 0 {
		wd, _ := os.Getwd()
		log.Println("No .env files found. Tried:")
		for _, file := range envFiles {
			log.Println(filepath.Join(wd, file))
		}
	}
	if err := env.Parse(c); err != nil {
		return err
	}

	if err := c.Artifacts.Validate(); err != nil {
		return fmt.Errorf("artifact configuration error: %w", err)
	}
	if err := c.validateInputs(); err != nil {
		return err
	}

	f, logger, err := logging.FileLogger(c.LogrusLogLevel(), c.LogPath)
	if err != nil {
		return err
	}
	c.logFile = f
	c.logger = logger
	return nil
}

func (c *Configuration) validateInputs() error {
	enc := strings.ToLower(strings.TrimSpace(c.RawEncoding))
	switch enc {
	case "latin1", "latin-1", "iso-8859-1", "windows-1252", "cp1252", "utf-8", "utf8":
	default:
		return fmt.Errorf("invalid GEODATA_RAW_ENCODING=%q (expected latin1|windows-1252|utf-8)", c.RawEncoding)
	}
	c.RawEncoding = enc

	code := strings.ToUpper(strings.TrimSpace(c.CountryCode))
	if len(code) != 2 {
		return fmt.Errorf("invalid GEODATA_COUNTRY_CODE=%q (expected ISO 3166-1 alpha-2)", c.CountryCode)
	}
	c.CountryCode = code

	dirs := c.Paths.ManualDirs[:0]
	for _, d := range c.Paths.ManualDirs {
		if d = strings.TrimSpace(d); d != "" {
			dirs = append(dirs, d)
		}
	}
	c.Paths.ManualDirs = dirs
	return nil
}

// Unload releases the log file, if any.
func (c *Configuration) Unload() {
	if c.logFile != nil {
		if err := c.logFile.Close(); err != nil {
			log.Printf("close log file: %v", err)
		}
		c.logFile = nil
	}
}
