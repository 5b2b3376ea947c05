// Package config loads the CLI configuration file. Everything in it can
// also be set by flags; flags win over the file, the file wins over
// defaults.
package config

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/typeshape/typeshape/internal/errs"
)

// Config is the top-level CLI configuration.
type Config struct {
	Database DatabaseConfig  `yaml:"database"`
	Output   OutputConfig    `yaml:"output"`
	Artifact *ArtifactConfig `yaml:"artifact,omitempty"`
	Log      LogConfig       `yaml:"log"`
}

// DatabaseConfig selects the engine and connection for introspection.
type DatabaseConfig struct {
	// Driver is "postgres" or "mysql".
	Driver string `yaml:"driver"`

	// DSN is the full connection string.
	DSN string `yaml:"dsn"`

	// Schema is the database schema to introspect.
	// Defaults to "public" for postgres and the current database for mysql.
	Schema string `yaml:"schema,omitempty"`
}

// OutputConfig controls the generate command.
type OutputConfig struct {
	// Language is "typescript" or "go".
	Language string `yaml:"language"`

	// File is the output path; empty means stdout.
	File string `yaml:"file,omitempty"`

	// Package is the package name for Go output.
	Package string `yaml:"package,omitempty"`
}

// ArtifactConfig enables publishing generated artifacts to object storage.
type ArtifactConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	UseSSL    bool   `yaml:"use_ssl,omitempty"`
	Region    string `yaml:"region,omitempty"`
	Bucket    string `yaml:"bucket"`
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{Driver: "postgres"},
		Output:   OutputConfig{Language: "typescript", Package: "dbtypes"},
		Log:      LogConfig{Level: "info", Format: "console"},
	}
}

// Load reads path and overlays it onto the defaults. A missing file is an
// error; call Default directly when no file was configured.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput,
			fmt.Sprintf("cannot read config file %q", path), err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput,
			fmt.Sprintf("cannot parse config file %q", path), err)
	}
	return cfg, cfg.Validate()
}

// Validate checks the parts every command relies on.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "mysql", "":
	default:
		return errs.Newf(errs.ErrKindInvalidInput,
			"unsupported database driver %q", c.Database.Driver)
	}

	switch c.Output.Language {
	case "typescript", "go", "":
	default:
		return errs.Newf(errs.ErrKindInvalidInput,
			"unsupported output language %q", c.Output.Language)
	}

	if c.Artifact != nil {
		if c.Artifact.Endpoint == "" || c.Artifact.Bucket == "" {
			return errs.New(errs.ErrKindInvalidInput,
				"artifact config requires endpoint and bucket")
		}
	}
	return nil
}
