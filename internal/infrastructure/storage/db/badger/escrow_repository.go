package dbbadger

import (
	"context"

	"github.com/tdex-network/tdex-escrow/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

// escrowRecord is the persisted form of an escrow. Data holds the record in
// its fixed binary layout, the other fields are kept in clear for lookups.
type escrowRecord struct {
	Address string
	Maker   string
	Data    []byte
}

type escrowRepository struct {
	store *badgerhold.Store
}

// NewEscrowRepositoryImpl returns an EscrowRepository over the given store.
func NewEscrowRepositoryImpl(store *badgerhold.Store) domain.EscrowRepository {
	return &escrowRepository{store}
}

func (r *escrowRepository) AddEscrow(
	ctx context.Context, address domain.Pubkey, escrow domain.Escrow,
) error {
	data, err := escrow.MarshalBinary()
	if err != nil {
		return err
	}
	record := escrowRecord{
		Address: address.String(),
		Maker:   escrow.Maker.String(),
		Data:    data,
	}

	if tx := txFromContext(ctx); tx != nil {
		err = r.store.TxInsert(tx, record.Address, record)
	} else {
		err = r.store.Insert(record.Address, record)
	}
	if err != nil {
		if err == badgerhold.ErrKeyExists {
			return domain.ErrEscrowAlreadyExists
		}
		return err
	}
	return nil
}

func (r *escrowRepository) GetEscrow(
	ctx context.Context, address domain.Pubkey,
) (*domain.Escrow, error) {
	record, err := r.getRecord(ctx, address.String())
	if err != nil {
		return nil, err
	}
	return record.toDomain()
}

func (r *escrowRepository) GetEscrowsByMaker(
	ctx context.Context, maker domain.Pubkey,
) ([]domain.Escrow, error) {
	query := badgerhold.Where("Maker").Eq(maker.String())
	return r.findEscrows(ctx, query)
}

func (r *escrowRepository) GetAllEscrows(
	ctx context.Context,
) ([]domain.Escrow, error) {
	return r.findEscrows(ctx, nil)
}

func (r *escrowRepository) DeleteEscrow(
	ctx context.Context, address domain.Pubkey,
) error {
	key := address.String()
	if _, err := r.getRecord(ctx, key); err != nil {
		return err
	}

	if tx := txFromContext(ctx); tx != nil {
		return r.store.TxDelete(tx, key, escrowRecord{})
	}
	return r.store.Delete(key, escrowRecord{})
}

func (r *escrowRepository) getRecord(
	ctx context.Context, key string,
) (*escrowRecord, error) {
	var (
		record escrowRecord
		err    error
	)
	if tx := txFromContext(ctx); tx != nil {
		err = r.store.TxGet(tx, key, &record)
	} else {
		err = r.store.Get(key, &record)
	}
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, domain.ErrEscrowNotFound
		}
		return nil, err
	}
	return &record, nil
}

func (r *escrowRepository) findEscrows(
	ctx context.Context, query *badgerhold.Query,
) ([]domain.Escrow, error) {
	var (
		records []escrowRecord
		err     error
	)
	if tx := txFromContext(ctx); tx != nil {
		err = r.store.TxFind(tx, &records, query)
	} else {
		err = r.store.Find(&records, query)
	}
	if err != nil {
		return nil, err
	}

	escrows := make([]domain.Escrow, 0, len(records))
	for _, record := range records {
		escrow, err := record.toDomain()
		if err != nil {
			return nil, err
		}
		escrows = append(escrows, *escrow)
	}
	return escrows, nil
}

func (r escrowRecord) toDomain() (*domain.Escrow, error) {
	var escrow domain.Escrow
	if err := escrow.UnmarshalBinary(r.Data); err != nil {
		return nil, err
	}
	return &escrow, nil
}
