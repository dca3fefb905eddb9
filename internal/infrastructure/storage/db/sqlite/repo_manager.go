package sqlitedb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-escrow/internal/core/domain"
	"github.com/tdex-network/tdex-escrow/internal/core/ports"
	"github.com/tdex-network/tdex-escrow/internal/storageutil/uow"
	_ "modernc.org/sqlite" // Register relevant drivers.
)

const dbFile = "escrow.sqlite.db"

type txContextKey struct{}

// querier is implemented by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type repoManager struct {
	db        *sql.DB
	unit      *uow.UnitOfWork
	writeLock sync.Mutex

	escrowRepository  domain.EscrowRepository
	vaultRepository   domain.VaultRepository
	balanceRepository domain.BalanceRepository
}

// NewRepoManager opens (or creates if not exists) the sqlite database in the
// given directory and migrates its schema.
func NewRepoManager(baseDbDir string) (ports.RepoManager, error) {
	if err := os.MkdirAll(baseDbDir, os.ModeDir|0755); err != nil {
		return nil, err
	}

	db, err := OpenDatabase(filepath.Join(baseDbDir, dbFile))
	if err != nil {
		return nil, err
	}
	if _, err := Migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return &repoManager{
		db:                db,
		unit:              uow.NewUnitOfWork(txFactory{db}),
		escrowRepository:  NewEscrowRepositoryImpl(db),
		vaultRepository:   NewVaultRepositoryImpl(db),
		balanceRepository: NewBalanceRepositoryImpl(db),
	}, nil
}

// OpenDatabase opens the sqlite database at the given path. Transactions
// acquire the write lock when they begin and run one at a time.
func OpenDatabase(file string) (*sql.DB, error) {
	db, err := sql.Open(
		"sqlite",
		fmt.Sprintf(
			"file:%s?_pragma=foreign_keys=on&_pragma=journal_mode=WAL&_txlock=immediate",
			file,
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

func (m *repoManager) EscrowRepository() domain.EscrowRepository {
	return m.escrowRepository
}

func (m *repoManager) VaultRepository() domain.VaultRepository {
	return m.vaultRepository
}

func (m *repoManager) BalanceRepository() domain.BalanceRepository {
	return m.balanceRepository
}

func (m *repoManager) RunTransaction(
	ctx context.Context,
	readOnly bool,
	handler func(ctx context.Context) (interface{}, error),
) (interface{}, error) {
	if !readOnly {
		m.writeLock.Lock()
		defer m.writeLock.Unlock()
	}

	var result interface{}
	if err := m.unit.Run(ctx, func(ctx context.Context) error {
		res, err := handler(ctx)
		if err != nil {
			return err
		}
		result = res
		return nil
	}); err != nil {
		return nil, err
	}
	return result, nil
}

func (m *repoManager) Close() {
	if err := m.db.Close(); err != nil {
		log.WithError(err).Warn("failed to close sqlite db")
	}
}

type txFactory struct {
	db *sql.DB
}

func (f txFactory) Begin() (uow.Tx, error) {
	return f.db.Begin()
}

func (f txFactory) ContextKey() interface{} {
	return txContextKey{}
}

// getQuerier returns the transaction of the running unit of work, if any, or
// the database itself.
func getQuerier(ctx context.Context, db *sql.DB) querier {
	if tx, ok := uow.TxFromContext(ctx, txContextKey{}); ok {
		return tx.(*sql.Tx)
	}
	return db
}
