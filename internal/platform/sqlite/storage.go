package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"net/url"
	"sort"
	"sync"
	"time"

	// Registers the "sqlite3" database/sql driver.
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const migrationsDir = "migrations"

// DefaultBusyTimeout is how long a statement waits for a lock held by
// another connection before failing with store.ErrBusy.
const DefaultBusyTimeout = 5 * time.Second

var gooseSetup sync.Once

// Option configures a Storage.
type Option func(*Storage)

// WithBusyTimeout overrides DefaultBusyTimeout.
func WithBusyTimeout(d time.Duration) Option {
	return func(s *Storage) {
		s.busyTimeout = d
	}
}

// Params binds named statement parameters. A key "url" matches ":url" in
// the SQL text.
type Params map[string]any

// Storage runs named statements against one SQLite database file.
// The connection is opened on first use and reused until CloseConnection.
type Storage struct {
	path        string
	busyTimeout time.Duration

	mu sync.Mutex
	db *sql.DB
}

// NewStorage creates a Storage for the database file at path. No connection
// is opened until a statement runs.
func NewStorage(path string, opts ...Option) *Storage {
	s := &Storage{
		path:        path,
		busyTimeout: DefaultBusyTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the database file location.
func (s *Storage) Path() string {
	return s.path
}

// connection returns the cached handle, opening it on first use.
func (s *Storage) connection(ctx context.Context) (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return s.db, nil
	}

	db, err := sql.Open("sqlite3", s.dsn())
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", s.path, err)
	}
	// A single connection keeps every statement on the same SQLite handle.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database %s: %w", s.path, err)
	}

	s.db = db
	return db, nil
}

func (s *Storage) dsn() string {
	q := url.Values{}
	q.Set("_busy_timeout", fmt.Sprintf("%d", s.busyTimeout.Milliseconds()))
	q.Set("_journal_mode", "WAL")
	return "file:" + s.path + "?" + q.Encode()
}

// Execute runs the statement and returns every result row as a slice of
// column values in select order. Statements without a result set return no
// rows.
func (s *Storage) Execute(ctx context.Context, name, query string, params Params) ([][]any, error) {
	var result [][]any
	err := s.ExecuteEach(ctx, name, query, params, func(row []any) error {
		result = append(result, row)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ExecuteColumns runs the statement and returns each row as a map from the
// given column names to the values at the same positions.
func (s *Storage) ExecuteColumns(
	ctx context.Context,
	name, query string,
	columns []string,
	params Params,
) ([]map[string]any, error) {
	var result []map[string]any
	err := s.ExecuteEach(ctx, name, query, params, func(row []any) error {
		if len(row) < len(columns) {
			return fmt.Errorf("row has %d values, want %d columns", len(row), len(columns))
		}
		m := make(map[string]any, len(columns))
		for i, col := range columns {
			m[col] = row[i]
		}
		result = append(result, m)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ExecuteEach runs the statement and passes each row to fn without keeping
// it. An error from fn stops the statement and is returned wrapped in an
// ExecError. fn must not run statements on the same Storage.
func (s *Storage) ExecuteEach(
	ctx context.Context,
	name, query string,
	params Params,
	fn func(row []any) error,
) error {
	db, err := s.connection(ctx)
	if err != nil {
		return &ExecError{Name: name, Err: err}
	}

	rows, err := db.QueryContext(ctx, query, namedArgs(params)...)
	if err != nil {
		return &ExecError{Name: name, Err: MapError(err)}
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return &ExecError{Name: name, Err: err}
	}

	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return &ExecError{Name: name, Err: MapError(err)}
		}
		if err := fn(values); err != nil {
			return &ExecError{Name: name, Err: err}
		}
	}
	if err := rows.Err(); err != nil {
		return &ExecError{Name: name, Err: MapError(err)}
	}

	return nil
}

// CreateTables applies all schema migrations that have not run yet.
func (s *Storage) CreateTables(ctx context.Context) error {
	db, err := s.migrationDB(ctx)
	if err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db, migrationsDir); err != nil {
		return &ExecError{Name: "create tables", Err: MapError(err)}
	}
	return nil
}

// DropTables reverts every schema migration, removing all queue tables.
func (s *Storage) DropTables(ctx context.Context) error {
	db, err := s.migrationDB(ctx)
	if err != nil {
		return err
	}
	if err := goose.DownToContext(ctx, db, migrationsDir, 0); err != nil {
		return &ExecError{Name: "drop tables", Err: MapError(err)}
	}
	return nil
}

// SchemaVersion returns the latest applied migration version.
func (s *Storage) SchemaVersion(ctx context.Context) (int64, error) {
	db, err := s.migrationDB(ctx)
	if err != nil {
		return 0, err
	}
	version, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return 0, &ExecError{Name: "schema version", Err: MapError(err)}
	}
	return version, nil
}

func (s *Storage) migrationDB(ctx context.Context) (*sql.DB, error) {
	var setupErr error
	gooseSetup.Do(func() {
		goose.SetBaseFS(migrationsFS)
		goose.SetLogger(&slogGooseLogger{})
		setupErr = goose.SetDialect("sqlite3")
	})
	if setupErr != nil {
		return nil, fmt.Errorf("failed to configure migrations: %w", setupErr)
	}

	db, err := s.connection(ctx)
	if err != nil {
		return nil, &ExecError{Name: "migrate", Err: err}
	}
	return db, nil
}

// CloseConnection closes the cached connection. It returns ErrNotOpen if no
// statement has opened one since the last close.
func (s *Storage) CloseConnection() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return ErrNotOpen
	}
	err := s.db.Close()
	s.db = nil
	if err != nil {
		return fmt.Errorf("failed to close database %s: %w", s.path, err)
	}
	return nil
}

func namedArgs(params Params) []any {
	if len(params) == 0 {
		return nil
	}
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	args := make([]any, 0, len(params))
	for _, name := range names {
		args = append(args, sql.Named(name, params[name]))
	}
	return args
}
