package sqlitedb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tdex-network/tdex-escrow/internal/core/domain"
)

type escrowRepository struct {
	db *sql.DB
}

// NewEscrowRepositoryImpl returns an EscrowRepository over the given db.
func NewEscrowRepositoryImpl(db *sql.DB) domain.EscrowRepository {
	return &escrowRepository{db}
}

func (r *escrowRepository) AddEscrow(
	ctx context.Context, address domain.Pubkey, escrow domain.Escrow,
) error {
	data, err := escrow.MarshalBinary()
	if err != nil {
		return err
	}

	res, err := getQuerier(ctx, r.db).ExecContext(
		ctx,
		`INSERT INTO escrow (address, maker, data) VALUES (?,?,?)
		 ON CONFLICT (address) DO NOTHING`,
		address.Bytes(), escrow.Maker.Bytes(), data,
	)
	if err != nil {
		return fmt.Errorf("failed to insert escrow %s: %w", address, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return domain.ErrEscrowAlreadyExists
	}
	return nil
}

func (r *escrowRepository) GetEscrow(
	ctx context.Context, address domain.Pubkey,
) (*domain.Escrow, error) {
	var data []byte
	err := getQuerier(ctx, r.db).QueryRowContext(
		ctx, "SELECT data FROM escrow WHERE address = ?", address.Bytes(),
	).Scan(&data)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrEscrowNotFound
		}
		return nil, err
	}

	var escrow domain.Escrow
	if err := escrow.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return &escrow, nil
}

func (r *escrowRepository) GetEscrowsByMaker(
	ctx context.Context, maker domain.Pubkey,
) ([]domain.Escrow, error) {
	return r.findEscrows(
		ctx, "SELECT data FROM escrow WHERE maker = ?", maker.Bytes(),
	)
}

func (r *escrowRepository) GetAllEscrows(
	ctx context.Context,
) ([]domain.Escrow, error) {
	return r.findEscrows(ctx, "SELECT data FROM escrow")
}

func (r *escrowRepository) DeleteEscrow(
	ctx context.Context, address domain.Pubkey,
) error {
	res, err := getQuerier(ctx, r.db).ExecContext(
		ctx, "DELETE FROM escrow WHERE address = ?", address.Bytes(),
	)
	if err != nil {
		return fmt.Errorf("failed to delete escrow %s: %w", address, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return domain.ErrEscrowNotFound
	}
	return nil
}

func (r *escrowRepository) findEscrows(
	ctx context.Context, query string, args ...interface{},
) ([]domain.Escrow, error) {
	rows, err := getQuerier(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	escrows := make([]domain.Escrow, 0)
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var escrow domain.Escrow
		if err := escrow.UnmarshalBinary(data); err != nil {
			return nil, err
		}
		escrows = append(escrows, escrow)
	}
	return escrows, rows.Err()
}
