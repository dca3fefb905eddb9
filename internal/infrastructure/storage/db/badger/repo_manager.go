package dbbadger

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/dgraph-io/badger/v3/options"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-escrow/internal/core/domain"
	"github.com/tdex-network/tdex-escrow/internal/core/ports"
	"github.com/tdex-network/tdex-escrow/internal/storageutil/uow"
	"github.com/timshannon/badgerhold/v4"
)

const gcInterval = 30 * time.Minute

type txContextKey struct{}

type repoManager struct {
	store     *badgerhold.Store
	rwUnit    *uow.UnitOfWork
	roUnit    *uow.UnitOfWork
	writeLock sync.Mutex
	gcTicker  *time.Ticker

	escrowRepository  domain.EscrowRepository
	vaultRepository   domain.VaultRepository
	balanceRepository domain.BalanceRepository
}

// NewRepoManager opens (or creates if not exists) the badger store on disk.
// It expects a base data dir and an optional logger. If the data dir is
// empty, the store is kept in memory.
func NewRepoManager(
	baseDbDir string, logger badger.Logger,
) (ports.RepoManager, error) {
	var dbDir string
	if len(baseDbDir) > 0 {
		dbDir = filepath.Join(baseDbDir, "escrow")
	}

	store, ticker, err := createDb(dbDir, logger)
	if err != nil {
		return nil, fmt.Errorf("opening escrow db: %w", err)
	}

	return &repoManager{
		store:             store,
		rwUnit:            uow.NewUnitOfWork(txFactory{store, true}),
		roUnit:            uow.NewUnitOfWork(txFactory{store, false}),
		gcTicker:          ticker,
		escrowRepository:  NewEscrowRepositoryImpl(store),
		vaultRepository:   NewVaultRepositoryImpl(store),
		balanceRepository: NewBalanceRepositoryImpl(store),
	}, nil
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
	unit := m.roUnit
	if !readOnly {
		m.writeLock.Lock()
		defer m.writeLock.Unlock()
		unit = m.rwUnit
	}

	var result interface{}
	if err := unit.Run(ctx, func(ctx context.Context) error {
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
	if m.gcTicker != nil {
		m.gcTicker.Stop()
	}
	if err := m.store.Close(); err != nil {
		log.WithError(err).Warn("failed to close escrow db")
	}
}

// txFactory opens badger transactions for a unit of work.
type txFactory struct {
	store  *badgerhold.Store
	update bool
}

func (f txFactory) Begin() (uow.Tx, error) {
	return &badgerTx{f.store.Badger().NewTransaction(f.update)}, nil
}

func (f txFactory) ContextKey() interface{} {
	return txContextKey{}
}

type badgerTx struct {
	*badger.Txn
}

func (t *badgerTx) Commit() error {
	defer t.Txn.Discard()
	return t.Txn.Commit()
}

func (t *badgerTx) Rollback() error {
	t.Txn.Discard()
	return nil
}

// txFromContext returns the badger transaction of the running unit of work,
// if any.
func txFromContext(ctx context.Context) *badger.Txn {
	if tx, ok := uow.TxFromContext(ctx, txContextKey{}); ok {
		return tx.(*badgerTx).Txn
	}
	return nil
}

func createDb(
	dbDir string, logger badger.Logger,
) (*badgerhold.Store, *time.Ticker, error) {
	isInMemory := len(dbDir) <= 0

	opts := badger.DefaultOptions(dbDir)
	opts.Logger = logger

	if isInMemory {
		opts.InMemory = true
	} else {
		opts.Compression = options.ZSTD
	}

	db, err := badgerhold.Open(badgerhold.Options{
		Encoder:          badgerhold.DefaultEncode,
		Decoder:          badgerhold.DefaultDecode,
		SequenceBandwith: 100,
		Options:          opts,
	})
	if err != nil {
		return nil, nil, err
	}

	if isInMemory {
		return db, nil, nil
	}

	ticker := time.NewTicker(gcInterval)
	go func() {
		for range ticker.C {
			if err := db.Badger().RunValueLogGC(0.5); err != nil &&
				err != badger.ErrNoRewrite {
				log.Error(err)
			}
		}
	}()

	return db, ticker, nil
}
