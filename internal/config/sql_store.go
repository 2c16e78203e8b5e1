package config

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	log "github.com/sirupsen/logrus"
)

// Supported database/sql driver names
const (
	DriverSQLite   = "sqlite3"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

const settingsTable = "settings"

// SQLStore keeps the configuration as section/name/value rows, so several
// installations can share one settings database.
type SQLStore struct {
	db       *sql.DB
	sq       sq.StatementBuilderType
	driver   string
	location string
}

// OpenSQLStore opens the database and creates the settings table
func OpenSQLStore(driver, dsn string) (*SQLStore, error) {
	builder := sq.StatementBuilder
	switch driver {
	case DriverSQLite, DriverMySQL:
	case DriverPostgres:
		builder = builder.PlaceholderFormat(sq.Dollar)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLStore{
		db:       db,
		sq:       builder,
		driver:   driver,
		location: driver + "://" + dsn,
	}
	if driver == DriverPostgres {
		store.location = dsn
	}

	if err := store.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLStore) migrate(ctx context.Context) error {
	// name instead of key: KEY is reserved in MySQL
	ddl := `CREATE TABLE IF NOT EXISTS settings (
		section VARCHAR(32) NOT NULL,
		name VARCHAR(191) NOT NULL,
		value TEXT NOT NULL,
		PRIMARY KEY (section, name)
	)`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create settings table: %w", err)
	}
	return nil
}

func (s *SQLStore) Location() string {
	return s.location
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

// Load reads every settings row into a Config
func (s *SQLStore) Load(ctx context.Context) (*Config, error) {
	sqlStr, args, err := s.sq.Select("section", "name", "value").From(settingsTable).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query settings: %w", err)
	}
	defer rows.Close()

	config := DefaultConfig()
	for rows.Next() {
		var section, name, value string
		if err := rows.Scan(&section, &name, &value); err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		if err := config.Set(section, name, value); err != nil {
			log.WithError(err).Warn("ignoring stored setting")
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}

	return config, nil
}

// Save replaces all stored rows with the entries of cfg in one transaction
func (s *SQLStore) Save(ctx context.Context, config *Config) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	sqlStr, args, err := s.sq.Delete(settingsTable).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete: %w", err)
	}
	if _, err := tx.ExecContext(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("failed to clear settings: %w", err)
	}

	insert := s.sq.Insert(settingsTable).Columns("section", "name", "value")
	for _, entry := range config.Entries() {
		insert = insert.Values(entry.Section, entry.Key, entry.Value)
	}
	sqlStr, args, err = insert.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert: %w", err)
	}
	if _, err := tx.ExecContext(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit settings: %w", err)
	}
	return nil
}
