package marketstore

import (
	"context"
	"database/sql"
	"embed"
	"time"

	sync "github.com/bacalhau-project/golang-mutex-tracer"
	"github.com/benbjohnson/clock"
	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// SQLClient is so we can pass *sql.DB and *sql.Tx to the same functions
type SQLClient interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

type StoreParams struct {
	// Path of the sqlite database file. ":memory:" keeps the store
	// in-process, which the tests use.
	Path  string
	Clock clock.Clock
}

// Store is the marketplace's relational persistence: usage factors that
// must survive restarts, plus the payment and network-message records the
// external settlement and transport collaborators read and write.
type Store struct {
	db    *sql.DB
	clock clock.Clock
	mtx   sync.RWMutex
}

func NewStore(params StoreParams) (*Store, error) {
	db, err := sql.Open("sqlite", params.Path)
	if err != nil {
		return nil, errors.Wrap(err, "opening marketplace database")
	}
	// sqlite serializes writers; a second connection would only buy
	// SQLITE_BUSY errors.
	db.SetMaxOpenConns(1)

	c := params.Clock
	if c == nil {
		c = clock.New()
	}

	store := &Store{db: db, clock: c}
	store.mtx.EnableTracerWithOpts(sync.Opts{
		Threshold: 10 * time.Millisecond,
		Id:        "MarketStore.mtx",
	})
	if err := store.migrateUp(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "migrating marketplace database")
	}
	return store, nil
}

func (s *Store) GetDB() *sql.DB {
	return s.db
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrateUp() error {
	files, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return err
	}
	driver, err := migratesqlite.WithInstance(s.db, &migratesqlite.Config{})
	if err != nil {
		return err
	}
	migrations, err := migrate.NewWithInstance("iofs", files, "sqlite", driver)
	if err != nil {
		return err
	}
	if err := migrations.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}

func (s *Store) now() string {
	return s.clock.Now().UTC().Format(time.RFC3339Nano)
}
