package database

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"ariga.io/atlas-go-sdk/atlasexec"

	"github.com/bravo68web/shipyard/pkg/logger"
)

//go:embed all:migrations
var migrationsFS embed.FS

// applicationTables are the tables whose presence marks a schema created before versioned migrations
var applicationTables = []string{"users", "projects", "deployments", "commits"}

// Migrator applies the embedded versioned migrations with the Atlas CLI
type Migrator struct {
	db              *Database
	dryRun          bool
	baselineVersion string
	log             *logger.Logger
}

// NewMigrator creates a new migrator instance
func NewMigrator(db *Database) *Migrator {
	return &Migrator{
		db:  db,
		log: logger.Get().WithFields(logger.Component("migrator")),
	}
}

// WithDryRun prints pending statements without executing them
func (m *Migrator) WithDryRun(dryRun bool) *Migrator {
	m.dryRun = dryRun
	return m
}

// WithBaseline marks migrations up to version as already applied
func (m *Migrator) WithBaseline(version string) *Migrator {
	m.baselineVersion = version
	return m
}

// ApplyMigrations applies all pending migrations to the database.
// A database that was auto-migrated before (tables present, no revision table)
// is baselined at the newest embedded version instead of being re-created.
func (m *Migrator) ApplyMigrations(ctx context.Context) error {
	hasSchema := m.tableExists(ctx, applicationTables...)
	hasRevisions := m.tableExists(ctx, "atlas_schema_revisions")

	client, dir, cleanup, err := m.client()
	if err != nil {
		return err
	}
	defer cleanup()

	params := &atlasexec.MigrateApplyParams{
		URL:    m.db.config.URL(),
		DryRun: m.dryRun,
	}

	// baseline and allow-dirty are mutually exclusive in Atlas
	if hasSchema && !hasRevisions {
		baseline := m.baselineVersion
		if baseline == "" {
			if baseline, err = latestVersion(dir); err != nil {
				return err
			}
		}
		m.log.Info("Existing schema without migration history, setting baseline",
			logger.String("version", baseline),
		)
		params.BaselineVersion = baseline
	} else {
		params.AllowDirty = true
	}

	result, err := client.MigrateApply(ctx, params)
	if err != nil {
		var applyErr *atlasexec.MigrateApplyError
		if errors.As(err, &applyErr) {
			for _, r := range applyErr.Result {
				m.log.Error("Migration partially applied",
					logger.Int("applied", len(r.Applied)),
				)
			}
		}
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	if result == nil {
		m.log.Info("Database migrations completed (baseline set)")
		return nil
	}

	for _, applied := range result.Applied {
		m.log.Info("Applied migration", logger.String("name", applied.Name))
	}
	m.log.Info("Database migrations completed",
		logger.Int("applied", len(result.Applied)),
		logger.Int("pending", len(result.Pending)),
		logger.Bool("dry_run", m.dryRun),
	)
	return nil
}

// Status returns the current migration status
func (m *Migrator) Status(ctx context.Context) (*atlasexec.MigrateStatus, error) {
	client, _, cleanup, err := m.client()
	if err != nil {
		return nil, err
	}
	defer cleanup()

	status, err := client.MigrateStatus(ctx, &atlasexec.MigrateStatusParams{
		URL: m.db.config.URL(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get migration status: %w", err)
	}
	return status, nil
}

// client prepares an Atlas working directory holding the embedded migrations
func (m *Migrator) client() (*atlasexec.Client, fs.FS, func(), error) {
	dir, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	workdir, err := atlasexec.NewWorkingDir(atlasexec.WithMigrations(dir))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create working directory: %w", err)
	}

	client, err := atlasexec.NewClient(workdir.Path(), "atlas")
	if err != nil {
		workdir.Close()
		return nil, nil, nil, fmt.Errorf("failed to initialize atlas client: %w", err)
	}

	return client, dir, func() { workdir.Close() }, nil
}

// tableExists reports whether any of the given public tables exist
func (m *Migrator) tableExists(ctx context.Context, tables ...string) bool {
	for _, table := range tables {
		var exists bool
		err := m.db.db.WithContext(ctx).Raw(`
			SELECT EXISTS (
				SELECT FROM information_schema.tables
				WHERE table_schema = 'public' AND table_name = ?
			)`, table).Scan(&exists).Error
		if err == nil && exists {
			return true
		}
	}
	return false
}

// latestVersion returns the highest migration version, e.g. "20251019120000"
// for "20251019120000_init.sql"
func latestVersion(dir fs.FS) (string, error) {
	entries, err := fs.ReadDir(dir, ".")
	if err != nil {
		return "", fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var latest string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}
		version, _, _ := strings.Cut(strings.TrimSuffix(name, ".sql"), "_")
		if version > latest {
			latest = version
		}
	}
	return latest, nil
}
