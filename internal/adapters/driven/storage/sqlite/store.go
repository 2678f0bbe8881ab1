package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/wordcheck/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/wordcheck/internal/core/domain"
	"github.com/custodia-labs/wordcheck/internal/core/ports/driven"
)

// dbFile is the database filename inside the data directory.
const dbFile = "rules.db"

// Store is a SQLite-backed rule snapshot store.
type Store struct {
	db   *sql.DB
	path string
}

// Ensure Store implements the interface.
var _ driven.RuleSnapshotStore = (*Store)(nil)

// NewStore opens (or creates) the database in dataDir.
// If dataDir is empty, defaults to ~/.wordcheck/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".wordcheck", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFile)

	// WAL lets the HTTP server read while a session commits.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_rules.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning migration %s: %w", name, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %s: %w", name, err)
		}
	}

	return nil
}

// Save stores or replaces the named snapshot. Rules are rewritten in
// a single transaction so readers never see a partial table.
func (s *Store) Save(ctx context.Context, name string, table *domain.RuleTable) error {
	if table == nil {
		table = domain.NewRuleTable()
	}

	columnsJSON, err := json.Marshal(table.Columns)
	if err != nil {
		return fmt.Errorf("marshalling columns: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	_, err = tx.ExecContext(ctx, `
		INSERT INTO rule_tables (name, columns, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			columns = excluded.columns,
			updated_at = excluded.updated_at
	`, name, string(columnsJSON), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("saving rule table: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM rules WHERE table_name = ?", name); err != nil {
		return fmt.Errorf("clearing rules: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO rules (table_name, position, pattern, replacement, extra)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, rule := range table.Rules {
		extra, err := marshalExtra(rule.Extra)
		if err != nil {
			return fmt.Errorf("marshalling rule %d: %w", i, err)
		}
		if _, err := stmt.ExecContext(ctx, name, i, rule.Pattern, rule.Replacement, extra); err != nil {
			return fmt.Errorf("saving rule %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// Load retrieves the named snapshot.
func (s *Store) Load(ctx context.Context, name string) (*domain.RuleTable, error) {
	var columnsJSON string
	err := s.db.QueryRowContext(ctx, "SELECT columns FROM rule_tables WHERE name = ?", name).Scan(&columnsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading rule table: %w", err)
	}

	table := &domain.RuleTable{}
	if err := json.Unmarshal([]byte(columnsJSON), &table.Columns); err != nil {
		return nil, fmt.Errorf("unmarshalling columns: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT pattern, replacement, extra FROM rules
		WHERE table_name = ?
		ORDER BY position
	`, name)
	if err != nil {
		return nil, fmt.Errorf("loading rules: %w", err)
	}
	defer rows.Close()

	table.Rules = []domain.Rule{}
	for rows.Next() {
		var rule domain.Rule
		var extra sql.NullString
		if err := rows.Scan(&rule.Pattern, &rule.Replacement, &extra); err != nil {
			return nil, fmt.Errorf("scanning rule: %w", err)
		}
		if extra.Valid {
			if err := json.Unmarshal([]byte(extra.String), &rule.Extra); err != nil {
				return nil, fmt.Errorf("unmarshalling extra columns: %w", err)
			}
		}
		table.Rules = append(table.Rules, rule)
	}
	return table, rows.Err()
}

// Delete removes the named snapshot and its rules.
func (s *Store) Delete(ctx context.Context, name string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, "DELETE FROM rules WHERE table_name = ?", name); err != nil {
		return fmt.Errorf("deleting rules: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM rule_tables WHERE name = ?", name); err != nil {
		return fmt.Errorf("deleting rule table: %w", err)
	}
	return tx.Commit()
}

// List returns snapshot names in lexical order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name FROM rule_tables ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("listing rule tables: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func marshalExtra(extra map[string]string) (sql.NullString, error) {
	if extra == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(extra)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}
