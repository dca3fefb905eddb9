package db_test

import (
	"context"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/tdex-escrow/internal/core/domain"
	"github.com/tdex-network/tdex-escrow/internal/core/ports"
	dbbadger "github.com/tdex-network/tdex-escrow/internal/infrastructure/storage/db/badger"
	"github.com/tdex-network/tdex-escrow/internal/infrastructure/storage/db/inmemory"
	sqlitedb "github.com/tdex-network/tdex-escrow/internal/infrastructure/storage/db/sqlite"
)

type repoManager struct {
	Name    string
	Manager ports.RepoManager
}

func (r repoManager) read(
	query func(context.Context) (interface{}, error),
) (interface{}, error) {
	return r.Manager.RunTransaction(context.Background(), true, query)
}

func (r repoManager) write(
	query func(context.Context) (interface{}, error),
) (interface{}, error) {
	return r.Manager.RunTransaction(context.Background(), false, query)
}

// createRepoManagers returns a fresh instance of every RepoManager
// implementation.
func createRepoManagers(t *testing.T) []repoManager {
	badgerManager, err := dbbadger.NewRepoManager("", nil)
	require.NoError(t, err)
	badgerOnDiskManager, err := dbbadger.NewRepoManager(t.TempDir(), nil)
	require.NoError(t, err)
	sqliteManager, err := sqlitedb.NewRepoManager(t.TempDir())
	require.NoError(t, err)

	managers := []repoManager{
		{Name: "inmemory", Manager: inmemory.NewRepoManager()},
		{Name: "badger", Manager: badgerManager},
		{Name: "badger_on_disk", Manager: badgerOnDiskManager},
		{Name: "sqlite", Manager: sqliteManager},
	}
	t.Cleanup(func() {
		for _, m := range managers {
			m.Manager.Close()
		}
	})
	return managers
}

func randomPubkey() domain.Pubkey {
	var pk domain.Pubkey
	//nolint
	rand.Read(pk[:])
	return pk
}

func randomEscrow(maker domain.Pubkey, seed uint64) domain.Escrow {
	return domain.Escrow{
		Seed:      seed,
		Maker:     maker,
		AssetA:    randomPubkey(),
		AssetB:    randomPubkey(),
		Receive:   seed * 10,
		CreatedAt: int64(1672531200 + seed),
		Bump:      uint8(255 - seed%256),
	}
}
