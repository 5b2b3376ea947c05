// Command typeshape introspects a relational database into a static schema
// description and generates typed Row/Insert/Update definitions from it.
//
// Typical flow:
//
//	typeshape introspect --driver postgres --dsn postgres://... -o schema.yaml
//	typeshape generate -i schema.yaml --lang typescript -o database.ts
//	typeshape serve -i schema.yaml --addr :8080
package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"

	"github.com/spf13/cobra"

	"github.com/typeshape/typeshape"
	"github.com/typeshape/typeshape/internal/artifact"
	artifactminio "github.com/typeshape/typeshape/internal/artifact/minio"
	"github.com/typeshape/typeshape/internal/config"
	"github.com/typeshape/typeshape/internal/database"
	"github.com/typeshape/typeshape/internal/database/mysql"
	"github.com/typeshape/typeshape/internal/database/postgres"
	"github.com/typeshape/typeshape/internal/emit"
	"github.com/typeshape/typeshape/internal/logger"
	"github.com/typeshape/typeshape/internal/server"
)

var (
	configPath string
	logLevel   string
	logFormat  string

	driverFlag string
	dsnFlag    string
	schemaFlag string
	outputFlag string
	inputFlag  string
	langFlag   string
	pkgFlag    string
	uploadFlag bool
	addrFlag   string
)

var rootCmd = &cobra.Command{
	Use:   "typeshape",
	Short: "Derive typed Row/Insert/Update shapes from a database schema",
	Long: `typeshape introspects PostgreSQL or MySQL into a static schema
description, derives the read, insert, and update type shapes of every
table, and emits them as TypeScript or Go source.`,
	SilenceUsage: true,
}

var introspectCmd = &cobra.Command{
	Use:   "introspect",
	Short: "Introspect a live database into a schema description",
	RunE:  runIntrospect,
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate typed definitions from a schema description",
	RunE:  runGenerate,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve a schema description and its derived shapes over HTTP",
	RunE:  runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: json or console")

	introspectCmd.Flags().StringVar(&driverFlag, "driver", "", "Database engine: postgres or mysql")
	introspectCmd.Flags().StringVar(&dsnFlag, "dsn", "", "Database connection string")
	introspectCmd.Flags().StringVarP(&schemaFlag, "schema", "s", "", "Database schema name (default: public for PostgreSQL)")
	introspectCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Output file for the schema description (default: stdout)")
	introspectCmd.Flags().BoolVar(&uploadFlag, "upload", false, "Publish the schema description to the configured artifact store")

	generateCmd.Flags().StringVarP(&inputFlag, "input", "i", "", "Schema description file (required)")
	generateCmd.Flags().StringVar(&langFlag, "lang", "", "Output language: typescript or go")
	generateCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Output file (default: stdout)")
	generateCmd.Flags().StringVar(&pkgFlag, "package", "", "Package name for Go output")
	generateCmd.Flags().BoolVar(&uploadFlag, "upload", false, "Publish the generated file to the configured artifact store")
	_ = generateCmd.MarkFlagRequired("input")

	serveCmd.Flags().StringVarP(&inputFlag, "input", "i", "", "Schema description file (required)")
	serveCmd.Flags().StringVar(&addrFlag, "addr", ":8080", "Listen address")
	_ = serveCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(introspectCmd, generateCmd, serveCmd)
}

// loadConfig reads the config file when one was given and overlays the
// persistent flags on top.
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}
	if driverFlag != "" {
		cfg.Database.Driver = driverFlag
	}
	if dsnFlag != "" {
		cfg.Database.DSN = dsnFlag
	}
	if schemaFlag != "" {
		cfg.Database.Schema = schemaFlag
	}
	if langFlag != "" {
		cfg.Output.Language = langFlag
	}
	if pkgFlag != "" {
		cfg.Output.Package = pkgFlag
	}
	return cfg, cfg.Validate()
}

func newLogger(cfg *config.Config) *logger.Logger {
	return logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stderr,
	})
}

// newIntrospector opens the configured driver.
func newIntrospector(ctx context.Context, cfg *config.Config) (database.Introspector, error) {
	if cfg.Database.DSN == "" {
		return nil, fmt.Errorf("no DSN configured: pass --dsn or set database.dsn in the config file")
	}

	switch cfg.Database.Driver {
	case "mysql":
		return mysql.New(ctx, database.DefaultConfig(database.DriverMySQL, cfg.Database.DSN))
	default:
		return postgres.New(ctx, database.DefaultConfig(database.DriverPostgres, cfg.Database.DSN))
	}
}

// schemaName applies the per-driver default.
func schemaName(cfg *config.Config) string {
	if cfg.Database.Schema != "" {
		return cfg.Database.Schema
	}
	if cfg.Database.Driver == "mysql" {
		return "" // current database
	}
	return "public"
}

func runIntrospect(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)
	ctx := cmd.Context()

	intro, err := newIntrospector(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer intro.Close()

	schema, err := intro.InspectSchema(ctx, schemaName(cfg))
	if err != nil {
		return fmt.Errorf("introspection failed: %w", err)
	}
	log.With().
		Str("driver", cfg.Database.Driver).
		Int("tables", len(schema.Tables)).
		Int("relationships", len(schema.Relationships)).
		Logger().Info("schema introspected")

	data, err := schema.Encode()
	if err != nil {
		return err
	}

	if err := writeOutput(outputFlag, data); err != nil {
		return err
	}

	if uploadFlag {
		key := path.Join("schemas", defaultName(outputFlag, "schema.yaml"))
		return upload(ctx, cfg, log, key, data, "application/yaml")
	}
	return nil
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	schema, err := typeshape.LoadSchema(inputFlag)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	var emitter emit.Emitter
	contentType := "text/plain"

	switch emit.Language(cfg.Output.Language) {
	case emit.LangGo:
		emitter = emit.NewGo(&buf, cfg.Output.Package)
	default:
		emitter = emit.NewTypeScript(&buf)
		contentType = "application/typescript"
	}

	if err := emitter.Emit(schema); err != nil {
		return fmt.Errorf("emit failed: %w", err)
	}
	log.With().
		Str("language", cfg.Output.Language).
		Int("tables", len(schema.Tables)).
		Logger().Info("types generated")

	if err := writeOutput(outputFlag, buf.Bytes()); err != nil {
		return err
	}

	if uploadFlag {
		key := path.Join("types", defaultName(outputFlag, "database."+cfg.Output.Language))
		return upload(cmd.Context(), cfg, log, key, buf.Bytes(), contentType)
	}
	return nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	schema, err := typeshape.LoadSchema(inputFlag)
	if err != nil {
		return err
	}

	return server.New(schema, log).ListenAndServe(addrFlag)
}

// writeOutput writes data to the named file, or stdout when name is empty.
func writeOutput(name string, data []byte) error {
	if name == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(name, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

// defaultName returns the base name of out, or fallback when writing stdout.
func defaultName(out, fallback string) string {
	if out == "" {
		return fallback
	}
	return path.Base(out)
}

// upload publishes data to the configured artifact store.
func upload(ctx context.Context, cfg *config.Config, log *logger.Logger, key string, data []byte, contentType string) error {
	if cfg.Artifact == nil {
		return fmt.Errorf("--upload requires an artifact section in the config file")
	}

	store, err := artifactminio.New(ctx, &artifact.Config{
		Provider:  artifact.ProviderMinIO,
		Endpoint:  cfg.Artifact.Endpoint,
		AccessKey: cfg.Artifact.AccessKey,
		SecretKey: cfg.Artifact.SecretKey,
		UseSSL:    cfg.Artifact.UseSSL,
		Region:    cfg.Artifact.Region,
		Bucket:    cfg.Artifact.Bucket,
	})
	if err != nil {
		return fmt.Errorf("artifact store unavailable: %w", err)
	}
	defer func() { _ = store.Close() }()

	if err := store.EnsureBucket(ctx, cfg.Artifact.Bucket); err != nil {
		return err
	}
	info, err := store.Put(ctx, cfg.Artifact.Bucket, key, bytes.NewReader(data), contentType)
	if err != nil {
		return err
	}

	log.With().
		Str("bucket", cfg.Artifact.Bucket).
		Str("key", info.Key).
		Logger().Info("artifact published")
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
