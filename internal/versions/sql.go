package versions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"time"

	// Registers the "pgx" database/sql driver.
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/specialistvlad/passgrid/internal/ctxlog"
)

// DefaultTable is the table used when none is configured.
const DefaultTable = "output_versions"

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQL is a Store backed by a Postgres table. Each reservation runs in a
// transaction that holds a row lock on the output.
type SQL struct {
	db    *sql.DB
	table string
}

// Open connects to Postgres through the pgx driver and prepares the table.
func Open(ctx context.Context, url, table string) (*SQL, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	s, err := NewSQL(ctx, db, table)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQL wraps an open database and creates the table if needed.
func NewSQL(ctx context.Context, db *sql.DB, table string) (*SQL, error) {
	if table == "" {
		table = DefaultTable
	}
	if !identifier.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	s := &SQL{db: db, table: table}

	query := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (output_key text PRIMARY KEY, version integer NOT NULL, note text NOT NULL)", table)
	if _, err := db.ExecContext(ctx, query); err != nil {
		return nil, fmt.Errorf("creating %s: %w", table, err)
	}
	return s, nil
}

// Close closes the database.
func (s *SQL) Close() error {
	return s.db.Close()
}

// Reserve implements Store.
func (s *SQL) Reserve(ctx context.Context, key OutputKey, up bool, note string) (v Version, err error) {
	logger := ctxlog.FromContext(ctx).With("output", key.String())

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Version{}, fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			err = errors.Join(err, tx.Rollback())
		}
	}()

	seed := fmt.Sprintf("INSERT INTO %s (output_key, version, note) VALUES ($1, 0, '') ON CONFLICT (output_key) DO NOTHING", s.table)
	if _, err = tx.ExecContext(ctx, seed, key.String()); err != nil {
		return Version{}, fmt.Errorf("seeding version row: %w", err)
	}

	var latest int
	lock := fmt.Sprintf("SELECT version FROM %s WHERE output_key = $1 FOR UPDATE", s.table)
	if err = tx.QueryRowContext(ctx, lock, key.String()).Scan(&latest); err != nil {
		return Version{}, fmt.Errorf("locking version row: %w", err)
	}

	v = Version{Key: key, Number: next(latest, up), Note: note}
	update := fmt.Sprintf("UPDATE %s SET version = $2, note = $3 WHERE output_key = $1", s.table)
	if _, err = tx.ExecContext(ctx, update, key.String(), v.Number, note); err != nil {
		return Version{}, fmt.Errorf("updating version: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return Version{}, fmt.Errorf("commit: %w", err)
	}
	logger.Debug("Version reserved.", "version", v.Number, "previous", latest)
	return v, nil
}
