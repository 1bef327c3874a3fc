package migrate

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

//go:embed sql/*.sql
var embedded embed.FS

// Bundled returns the migrations shipped with the binary.
func Bundled() fs.FS {
	sub, err := fs.Sub(embedded, "sql")
	if err != nil {
		panic(err)
	}
	return sub
}

// Migration represents a single database migration
type Migration struct {
	Version   int
	Name      string
	UpSQL     string
	DownSQL   string
	AppliedAt *time.Time
}

// DB is the subset of *pgxpool.Pool the manager needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Manager handles database migrations
type Manager struct {
	db     DB
	source fs.FS
	vars   map[string]string
}

// NewManager creates a migration manager for the slot table. ${TABLE} in
// migration files expands to the quoted table name and ${UPDATED_AT_INDEX}
// to the quoted name of its updated_at index.
func NewManager(db DB, source fs.FS, table string) *Manager {
	return &Manager{
		db:     db,
		source: source,
		vars: map[string]string{
			"TABLE":            pq.QuoteIdentifier(table),
			"UPDATED_AT_INDEX": pq.QuoteIdentifier(table + "_updated_at_idx"),
		},
	}
}

// Initialize creates the migrations table if it doesn't exist
func (m *Manager) Initialize(ctx context.Context) error {
	sql := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`
	_, err := m.db.Exec(ctx, sql)
	return err
}

func (m *Manager) render(sql string) string {
	pairs := make([]string, 0, 2*len(m.vars))
	for k, v := range m.vars {
		pairs = append(pairs, "${"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(sql)
}

// LoadMigrations reads migration files from the source
func (m *Manager) LoadMigrations() ([]Migration, error) {
	entries, err := fs.ReadDir(m.source, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	migrations := make(map[int]Migration)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if !strings.HasSuffix(name, ".sql") {
			continue
		}

		// 001_store_slots.sql or 001_store_slots_down.sql
		base := strings.TrimSuffix(name, ".sql")
		down := strings.HasSuffix(base, "_down")
		base = strings.TrimSuffix(base, "_down")

		parts := strings.SplitN(base, "_", 2)
		if len(parts) < 2 {
			continue
		}

		version := 0
		fmt.Sscanf(parts[0], "%d", &version)
		if version == 0 {
			continue
		}

		content, err := fs.ReadFile(m.source, name)
		if err != nil {
			return nil, fmt.Errorf("failed to read migration file %s: %w", name, err)
		}

		migration, exists := migrations[version]
		if !exists {
			migration = Migration{
				Version: version,
				Name:    parts[1],
			}
		}

		if down {
			migration.DownSQL = m.render(string(content))
		} else {
			migration.UpSQL = m.render(string(content))
		}

		migrations[version] = migration
	}

	result := make([]Migration, 0, len(migrations))
	for _, m := range migrations {
		result = append(result, m)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Version < result[j].Version
	})

	return result, nil
}

// GetAppliedMigrations returns all applied migrations
func (m *Manager) GetAppliedMigrations(ctx context.Context) (map[int]time.Time, error) {
	rows, err := m.db.Query(ctx, "SELECT version, applied_at FROM schema_migrations ORDER BY version")
	if err != nil {
		return nil, fmt.Errorf("failed to query applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]time.Time)
	for rows.Next() {
		var version int
		var appliedAt time.Time
		if err := rows.Scan(&version, &appliedAt); err != nil {
			return nil, fmt.Errorf("failed to scan migration row: %w", err)
		}
		applied[version] = appliedAt
	}

	return applied, rows.Err()
}

// Up applies all pending migrations and returns the ones it applied.
func (m *Manager) Up(ctx context.Context) ([]Migration, error) {
	migrations, err := m.LoadMigrations()
	if err != nil {
		return nil, err
	}

	applied, err := m.GetAppliedMigrations(ctx)
	if err != nil {
		return nil, err
	}

	var done []Migration
	for _, migration := range migrations {
		if _, ok := applied[migration.Version]; ok {
			continue
		}

		tx, err := m.db.Begin(ctx)
		if err != nil {
			return done, fmt.Errorf("failed to begin transaction: %w", err)
		}

		if _, err := tx.Exec(ctx, migration.UpSQL); err != nil {
			tx.Rollback(ctx)
			return done, fmt.Errorf("failed to apply migration %d: %w", migration.Version, err)
		}

		if _, err := tx.Exec(ctx,
			"INSERT INTO schema_migrations (version, name) VALUES ($1, $2)",
			migration.Version, migration.Name); err != nil {
			tx.Rollback(ctx)
			return done, fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(ctx); err != nil {
			return done, fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}

		done = append(done, migration)
	}

	return done, nil
}

// Down rolls back the last applied migration and returns it.
func (m *Manager) Down(ctx context.Context) (Migration, error) {
	migrations, err := m.LoadMigrations()
	if err != nil {
		return Migration{}, err
	}

	applied, err := m.GetAppliedMigrations(ctx)
	if err != nil {
		return Migration{}, err
	}

	if len(applied) == 0 {
		return Migration{}, fmt.Errorf("no migrations to roll back")
	}

	var lastVersion int
	for version := range applied {
		if version > lastVersion {
			lastVersion = version
		}
	}

	var migration Migration
	found := false
	for _, m := range migrations {
		if m.Version == lastVersion {
			migration = m
			found = true
			break
		}
	}
	if !found {
		return Migration{}, fmt.Errorf("migration %d is applied but has no source file", lastVersion)
	}

	tx, err := m.db.Begin(ctx)
	if err != nil {
		return Migration{}, fmt.Errorf("failed to begin transaction: %w", err)
	}

	if _, err := tx.Exec(ctx, migration.DownSQL); err != nil {
		tx.Rollback(ctx)
		return Migration{}, fmt.Errorf("failed to roll back migration %d: %w", migration.Version, err)
	}

	if _, err := tx.Exec(ctx,
		"DELETE FROM schema_migrations WHERE version = $1",
		migration.Version); err != nil {
		tx.Rollback(ctx)
		return Migration{}, fmt.Errorf("failed to remove migration record %d: %w", migration.Version, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Migration{}, fmt.Errorf("failed to commit rollback of migration %d: %w", migration.Version, err)
	}

	return migration, nil
}
