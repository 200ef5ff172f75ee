package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog/log"

	migrations "github.com/anthonypate54/familynest/pkg/sources/catalog/migrations"
	"github.com/anthonypate54/familynest/pkg/types"
)

// goose keeps its dialect and registry in package globals
var migrateMu sync.Mutex

const mediaColumns = "id, collection, display_name, size_bytes, mime_type, data_path, thumbnail_path, date_added"

// SQLCatalog implements Catalog on an embedded SQLite file or a Postgres database.
type SQLCatalog struct {
	db     *sql.DB
	driver string
}

// NewSQLCatalog opens the configured catalog database and applies migrations.
// Use Path ":memory:" with the sqlite3 driver for an in-memory catalog.
func NewSQLCatalog(cfg types.CatalogConfig) (*SQLCatalog, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = types.CatalogDriverSQLite
	}

	var (
		db  *sql.DB
		err error
	)
	switch driver {
	case types.CatalogDriverSQLite:
		db, err = openSQLite(cfg.Path)
	case types.CatalogDriverPostgres:
		db, err = openPostgres(cfg.Postgres)
	default:
		return nil, fmt.Errorf("unsupported catalog driver: %s", driver)
	}
	if err != nil {
		return nil, err
	}

	c := &SQLCatalog{db: db, driver: driver}
	if err := c.RunMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate catalog: %w", err)
	}

	return c, nil
}

func openSQLite(path string) (*sql.DB, error) {
	if path == "" {
		return nil, errors.New("catalog path is required for sqlite3")
	}

	inMemory := strings.HasPrefix(path, ":memory:")
	if !inMemory {
		dir := filepath.Dir(path)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create catalog directory %s: %w", dir, err)
			}
		}
		log.Info().Str("path", path).Msg("opening sqlite catalog")
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}

	// every connection to :memory: is a separate database
	if inMemory {
		db.SetMaxOpenConns(1)
	}
	return db, nil
}

func openPostgres(cfg types.PostgresConfig) (*sql.DB, error) {
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == 0 {
		cfg.Port = 5432
	}
	if cfg.Database == "" {
		cfg.Database = "familynest"
	}
	if cfg.SSLMode == "" {
		cfg.SSLMode = "disable"
	}

	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	log.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("database", cfg.Database).
		Msg("connected to postgres catalog")

	return db, nil
}

// RunMigrations runs all pending catalog migrations
func (c *SQLCatalog) RunMigrations() error {
	migrateMu.Lock()
	defer migrateMu.Unlock()

	migrations.SetDialect(c.driver)
	if err := goose.SetDialect(c.driver); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := goose.Up(c.db, "."); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Debug().Str("driver", c.driver).Msg("catalog migrations completed")
	return nil
}

func (c *SQLCatalog) DB() *sql.DB {
	return c.db
}

func (c *SQLCatalog) Close() error {
	return c.db.Close()
}

// rebind rewrites ? placeholders to $n for postgres.
func (c *SQLCatalog) rebind(query string) string {
	if c.driver != types.CatalogDriverPostgres {
		return query
	}

	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (c *SQLCatalog) Query(ctx context.Context, q Query) (Rows, error) {
	rows, err := c.db.QueryContext(ctx, c.rebind(`
		SELECT `+mediaColumns+`
		FROM media
		WHERE collection = ? AND mime_type LIKE ?
		ORDER BY id
	`), q.Collection, q.MimePrefix+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to query media: %w", err)
	}
	return &sqlRows{rows: rows}, nil
}

func (c *SQLCatalog) Lookup(ctx context.Context, collection string, rowID int64) (*Row, error) {
	row := c.db.QueryRowContext(ctx, c.rebind(`
		SELECT `+mediaColumns+`
		FROM media
		WHERE collection = ? AND id = ?
	`), collection, rowID)

	r, err := scanRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRowNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lookup media %s/%d: %w", collection, rowID, err)
	}
	return &r, nil
}

// Upsert inserts or updates the row keyed by (collection, data_path) and
// returns its id.
func (c *SQLCatalog) Upsert(ctx context.Context, r Row) (int64, error) {
	var id int64
	err := c.db.QueryRowContext(ctx, c.rebind(`
		INSERT INTO media (collection, display_name, size_bytes, mime_type, data_path, thumbnail_path, date_added)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (collection, data_path) DO UPDATE SET
			display_name = excluded.display_name,
			size_bytes = excluded.size_bytes,
			mime_type = excluded.mime_type,
			thumbnail_path = excluded.thumbnail_path,
			date_added = excluded.date_added
		RETURNING id
	`), r.Collection, r.DisplayName, r.SizeBytes, r.MimeType, r.DataPath, r.ThumbnailPath, r.DateAdded).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert media %s: %w", r.DataPath, err)
	}
	return id, nil
}

// Delete removes a row; deleting a missing row is not an error.
func (c *SQLCatalog) Delete(ctx context.Context, collection string, rowID int64) error {
	_, err := c.db.ExecContext(ctx, c.rebind(`DELETE FROM media WHERE collection = ? AND id = ?`), collection, rowID)
	return err
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRow(s scanner) (Row, error) {
	var r Row
	err := s.Scan(&r.ID, &r.Collection, &r.DisplayName, &r.SizeBytes, &r.MimeType, &r.DataPath, &r.ThumbnailPath, &r.DateAdded)
	return r, err
}

type sqlRows struct {
	rows *sql.Rows
}

func (r *sqlRows) Next() bool        { return r.rows.Next() }
func (r *sqlRows) Row() (Row, error) { return scanRow(r.rows) }
func (r *sqlRows) Err() error        { return r.rows.Err() }
func (r *sqlRows) Close() error      { return r.rows.Close() }
