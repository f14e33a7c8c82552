package registry

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/svbio/svnorm/internal/task"
)

// DuckDB is a Registry served from a DuckDB database. It suits deployments
// where many concurrent invocations share one registry file instead of each
// re-parsing the sample table.
type DuckDB struct {
	db   *sql.DB
	path string
}

// OpenDuckDB opens or creates a registry database at the given path. Use an
// empty string for an in-memory database.
func OpenDuckDB(path string) (*DuckDB, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create registry directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	r := &DuckDB{db: db, path: path}
	if err := r.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return r, nil
}

// Close closes the database connection.
func (r *DuckDB) Close() error {
	return r.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (r *DuckDB) DB() *sql.DB {
	return r.db
}

// ensureSchema creates the registry table if it doesn't exist. Extra sample
// table columns are kept as a JSON blob so no schema migration is needed when
// a pipeline adds columns.
func (r *DuckDB) ensureSchema() error {
	_, err := r.db.Exec(`CREATE TABLE IF NOT EXISTS sample_registry (
		name VARCHAR,
		type VARCHAR,
		data VARCHAR,
		fields VARCHAR,
		PRIMARY KEY (name, type)
	)`)
	return err
}

// Import copies all entries from a sample table into the database, replacing
// entries with the same (name, type) key.
func (r *DuckDB) Import(t *Table) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO sample_registry (name, type, data, fields) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare import: %w", err)
	}
	defer stmt.Close()

	for _, entry := range t.entries {
		fields, err := json.Marshal(entry.Fields)
		if err != nil {
			return fmt.Errorf("encode fields for %q: %w", entry.Name, err)
		}
		if _, err := stmt.Exec(entry.Name, entry.Type, entry.Data, string(fields)); err != nil {
			return fmt.Errorf("insert entry %q/%q: %w", entry.Name, entry.Type, err)
		}
	}

	return tx.Commit()
}

// Lookup implements Registry.
func (r *DuckDB) Lookup(source, callerType string, tk task.Task) (Entry, error) {
	row := r.db.QueryRow(
		`SELECT name, type, data, fields FROM sample_registry WHERE name = ? AND type = ?`,
		source, callerType,
	)

	var entry Entry
	var fields string
	if err := row.Scan(&entry.Name, &entry.Type, &entry.Data, &fields); err != nil {
		if err == sql.ErrNoRows {
			return Entry{}, &NotFoundError{Source: source, CallerType: callerType}
		}
		return Entry{}, fmt.Errorf("query registry: %w", err)
	}

	if err := json.Unmarshal([]byte(fields), &entry.Fields); err != nil {
		return Entry{}, fmt.Errorf("decode fields for %q: %w", entry.Name, err)
	}

	entry.Data = ExpandData(entry.Data, tk)
	return entry, nil
}
