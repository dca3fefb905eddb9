package application

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-escrow/internal/core/domain"
	"github.com/tdex-network/tdex-escrow/internal/core/ports"
	dbbadger "github.com/tdex-network/tdex-escrow/internal/infrastructure/storage/db/badger"
	"github.com/tdex-network/tdex-escrow/internal/infrastructure/storage/db/inmemory"
	sqlitedb "github.com/tdex-network/tdex-escrow/internal/infrastructure/storage/db/sqlite"
)

const (
	DBInMemory = "inmemory"
	DBBadger   = "badger"
	DBSqlite   = "sqlite"
)

var (
	SupportedDBType = map[string]struct{}{
		DBInMemory: {},
		DBBadger:   {},
		DBSqlite:   {},
	}
)

// Config holds the parameters of the application services, which are built
// lazily on first access. DBConfig is the datadir of the db for badger and
// sqlite types.
type Config struct {
	DBType   string
	DBConfig interface{}

	ProgramID    domain.Pubkey
	Policy       domain.Policy
	EnableFaucet bool
	PubSub       ports.PubSub
	EventStream  ports.EventStream
	Now          func() time.Time

	repo   ports.RepoManager
	pubsub PubSubService
	escrow EscrowService
	ledger LedgerService
}

func (c *Config) Validate() error {
	if _, ok := SupportedDBType[c.DBType]; !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedDBType, c.DBType)
	}
	if c.DBType != DBInMemory {
		if _, ok := c.DBConfig.(string); !ok {
			return fmt.Errorf("db config must be a datadir path")
		}
	}
	if c.ProgramID.IsZero() {
		return fmt.Errorf("missing program id")
	}
	if err := c.Policy.Validate(); err != nil {
		return err
	}
	if _, err := c.repoManager(); err != nil {
		return err
	}
	if _, err := c.escrowService(); err != nil {
		return err
	}
	if _, err := c.ledgerService(); err != nil {
		return err
	}
	return nil
}

func (c *Config) RepoManager() ports.RepoManager {
	svc, _ := c.repoManager()
	return svc
}

func (c *Config) PubSubService() PubSubService {
	svc, _ := c.pubsubService()
	return svc
}

func (c *Config) EscrowService() EscrowService {
	svc, _ := c.escrowService()
	return svc
}

func (c *Config) LedgerService() LedgerService {
	svc, _ := c.ledgerService()
	return svc
}

// Close releases the pubsub and db resources.
func (c *Config) Close() {
	if c.pubsub != nil {
		c.pubsub.Close()
	}
	if c.repo != nil {
		c.repo.Close()
	}
}

func (c *Config) repoManager() (ports.RepoManager, error) {
	if c.repo == nil {
		var (
			repoManager ports.RepoManager
			err         error
		)
		switch c.DBType {
		case DBInMemory:
			repoManager = inmemory.NewRepoManager()
		case DBBadger:
			datadir, _ := c.DBConfig.(string)
			repoManager, err = dbbadger.NewRepoManager(datadir, log.New())
		case DBSqlite:
			datadir, _ := c.DBConfig.(string)
			repoManager, err = sqlitedb.NewRepoManager(datadir)
		default:
			err = fmt.Errorf("%w: %s", ErrUnsupportedDBType, c.DBType)
		}
		if err != nil {
			return nil, err
		}
		c.repo = repoManager
	}
	return c.repo, nil
}

func (c *Config) pubsubService() (PubSubService, error) {
	if c.pubsub == nil {
		c.pubsub = NewPubSubService(c.PubSub, c.EventStream)
	}
	return c.pubsub, nil
}

func (c *Config) escrowService() (EscrowService, error) {
	if c.escrow == nil {
		repo, err := c.repoManager()
		if err != nil {
			return nil, err
		}
		pubsub, _ := c.pubsubService()
		escrow, err := NewEscrowService(
			repo, pubsub, c.ProgramID, c.Policy, c.Now,
		)
		if err != nil {
			return nil, err
		}
		c.escrow = escrow
	}
	return c.escrow, nil
}

func (c *Config) ledgerService() (LedgerService, error) {
	if c.ledger == nil {
		repo, err := c.repoManager()
		if err != nil {
			return nil, err
		}
		ledger, err := NewLedgerService(repo, c.EnableFaucet)
		if err != nil {
			return nil, err
		}
		c.ledger = ledger
	}
	return c.ledger, nil
}
