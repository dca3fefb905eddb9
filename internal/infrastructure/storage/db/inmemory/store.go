package inmemory

import (
	"context"
	"errors"
	"sync"

	"github.com/tdex-network/tdex-escrow/internal/core/domain"
	"github.com/tdex-network/tdex-escrow/internal/storageutil/uow"
)

var errTxDone = errors.New("transaction already committed or rolled back")

type txContextKey struct{}

type balanceKey struct {
	owner domain.Pubkey
	asset domain.Pubkey
}

// store holds the committed state shared by all repositories.
type store struct {
	lock     sync.RWMutex
	escrows  map[domain.Pubkey]domain.Escrow
	vaults   map[domain.Pubkey]domain.Vault
	balances map[balanceKey]uint64
}

func newStore() *store {
	return &store{
		escrows:  make(map[domain.Pubkey]domain.Escrow),
		vaults:   make(map[domain.Pubkey]domain.Vault),
		balances: make(map[balanceKey]uint64),
	}
}

func (s *store) Begin() (uow.Tx, error) {
	return newTx(s), nil
}

func (s *store) ContextKey() interface{} {
	return txContextKey{}
}

// withTx runs fn within the transaction carried by ctx, if any. Otherwise fn
// is run in a new transaction committed right after.
func (s *store) withTx(ctx context.Context, fn func(t *tx) error) error {
	if t, ok := uow.TxFromContext(ctx, txContextKey{}); ok {
		return fn(t.(*tx))
	}

	t := newTx(s)
	if err := fn(t); err != nil {
		t.Rollback()
		return err
	}
	return t.Commit()
}

// tx stages writes in memory and applies them to the store on commit.
// A nil staged entry marks a deletion.
type tx struct {
	store    *store
	lock     sync.Mutex
	escrows  map[domain.Pubkey]*domain.Escrow
	vaults   map[domain.Pubkey]*domain.Vault
	balances map[balanceKey]uint64
	done     bool
}

func newTx(s *store) *tx {
	return &tx{
		store:    s,
		escrows:  make(map[domain.Pubkey]*domain.Escrow),
		vaults:   make(map[domain.Pubkey]*domain.Vault),
		balances: make(map[balanceKey]uint64),
	}
}

func (t *tx) Commit() error {
	t.lock.Lock()
	defer t.lock.Unlock()

	if t.done {
		return errTxDone
	}
	t.done = true

	t.store.lock.Lock()
	defer t.store.lock.Unlock()

	for k, v := range t.escrows {
		if v == nil {
			delete(t.store.escrows, k)
			continue
		}
		t.store.escrows[k] = *v
	}
	for k, v := range t.vaults {
		if v == nil {
			delete(t.store.vaults, k)
			continue
		}
		t.store.vaults[k] = *v
	}
	for k, v := range t.balances {
		if v == 0 {
			delete(t.store.balances, k)
			continue
		}
		t.store.balances[k] = v
	}
	return nil
}

func (t *tx) Rollback() error {
	t.lock.Lock()
	defer t.lock.Unlock()

	if t.done {
		return errTxDone
	}
	t.done = true
	t.escrows = nil
	t.vaults = nil
	t.balances = nil
	return nil
}

func (t *tx) getEscrow(address domain.Pubkey) (domain.Escrow, bool) {
	t.lock.Lock()
	defer t.lock.Unlock()

	if e, ok := t.escrows[address]; ok {
		if e == nil {
			return domain.Escrow{}, false
		}
		return *e, true
	}

	t.store.lock.RLock()
	defer t.store.lock.RUnlock()
	e, ok := t.store.escrows[address]
	return e, ok
}

func (t *tx) putEscrow(address domain.Pubkey, escrow *domain.Escrow) {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.escrows[address] = escrow
}

func (t *tx) allEscrows() map[domain.Pubkey]domain.Escrow {
	t.lock.Lock()
	defer t.lock.Unlock()
	t.store.lock.RLock()
	defer t.store.lock.RUnlock()

	escrows := make(map[domain.Pubkey]domain.Escrow, len(t.store.escrows))
	for k, v := range t.store.escrows {
		escrows[k] = v
	}
	for k, v := range t.escrows {
		if v == nil {
			delete(escrows, k)
			continue
		}
		escrows[k] = *v
	}
	return escrows
}

func (t *tx) getVault(address domain.Pubkey) (domain.Vault, bool) {
	t.lock.Lock()
	defer t.lock.Unlock()

	if v, ok := t.vaults[address]; ok {
		if v == nil {
			return domain.Vault{}, false
		}
		return *v, true
	}

	t.store.lock.RLock()
	defer t.store.lock.RUnlock()
	v, ok := t.store.vaults[address]
	return v, ok
}

func (t *tx) putVault(address domain.Pubkey, vault *domain.Vault) {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.vaults[address] = vault
}

func (t *tx) getBalance(key balanceKey) uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	if b, ok := t.balances[key]; ok {
		return b
	}

	t.store.lock.RLock()
	defer t.store.lock.RUnlock()
	return t.store.balances[key]
}

func (t *tx) putBalance(key balanceKey, amount uint64) {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.balances[key] = amount
}

func (t *tx) allBalances() map[balanceKey]uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()
	t.store.lock.RLock()
	defer t.store.lock.RUnlock()

	balances := make(map[balanceKey]uint64, len(t.store.balances))
	for k, v := range t.store.balances {
		balances[k] = v
	}
	for k, v := range t.balances {
		if v == 0 {
			delete(balances, k)
			continue
		}
		balances[k] = v
	}
	return balances
}
