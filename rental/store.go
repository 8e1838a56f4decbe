package rental

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/rs/zerolog"
)

const (
	// DatabaseName is the logical name of the database file.
	DatabaseName = "EZDriveDB"
	// SchemaVersion is the only schema version this build knows how to create.
	SchemaVersion = 1

	defaultBusyTimeout = 5 * time.Second
)

// Options configure Open. Zero values pick the defaults.
type Options struct {
	// Path of the database file. Defaults to DatabaseName in the working
	// directory.
	Path string
	// Version the schema is brought to. Any stored version below it is
	// dropped and recreated. Defaults to SchemaVersion.
	Version int
	// BusyTimeout bounds how long a statement waits on a locked database.
	BusyTimeout time.Duration
	// MaxOpenConns caps the pool. Defaults to 1, a single writer.
	MaxOpenConns int
	Logger       *zerolog.Logger
}

// Store is the rental database.
type Store struct {
	db  *sqlx.DB
	log zerolog.Logger
}

// Open connects to the database file, enables foreign keys on every pooled
// connection and creates or upgrades the schema.
func Open(ctx context.Context, opts Options) (*Store, error) {
	if opts.Path == "" {
		opts.Path = DatabaseName
	}
	if opts.Version == 0 {
		opts.Version = SchemaVersion
	}
	if opts.BusyTimeout == 0 {
		opts.BusyTimeout = defaultBusyTimeout
	}
	if opts.MaxOpenConns == 0 {
		opts.MaxOpenConns = 1
	}

	db, err := sqlx.ConnectContext(ctx, "sqlite3", dataSourceName(opts.Path, opts.BusyTimeout))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", opts.Path, err)
	}
	db.SetMaxOpenConns(opts.MaxOpenConns)

	s := NewWithDB(db, opts.Logger)
	if err := s.checkForeignKeys(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if err := s.migrate(ctx, opts.Version); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewWithDB wraps an already connected handle. The schema is left as is.
func NewWithDB(db *sqlx.DB, logger *zerolog.Logger) *Store {
	l := zerolog.Nop()
	if logger != nil {
		l = *logger
	}
	return &Store{
		db:  db,
		log: l.With().Str("component", "rental").Logger(),
	}
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// dataSourceName builds a go-sqlite3 DSN. Foreign keys are a per-connection
// setting in SQLite, so they are requested in the DSN and applied by the
// driver to each connection it opens. The path is percent-escaped because
// SQLite reads '?', '#' and '%' in a file: URI.
func dataSourceName(path string, busyTimeout time.Duration) string {
	q := url.Values{}
	q.Set("_foreign_keys", "1")
	q.Set("_busy_timeout", fmt.Sprintf("%d", busyTimeout.Milliseconds()))
	return "file:" + (&url.URL{Path: path}).EscapedPath() + "?" + q.Encode()
}

func (s *Store) checkForeignKeys(ctx context.Context) error {
	var enabled int
	if err := s.db.GetContext(ctx, &enabled, "PRAGMA foreign_keys"); err != nil {
		return fmt.Errorf("failed to read foreign_keys pragma: %w", err)
	}
	if enabled != 1 {
		return fmt.Errorf("foreign key enforcement is disabled")
	}
	return nil
}
