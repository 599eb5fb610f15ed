package repository

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"
	"wallet/apps/wallet/internal/model"
)

type TransferRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewTransferRepository(db *sql.DB, logger *zap.Logger) *TransferRepository {
	return &TransferRepository{db: db, logger: logger}
}

// UpsertTransfer inserts or updates the transfer keyed by tx_hash. The atomic
// upsert keeps concurrent verify calls from creating duplicate records;
// created_at is preserved on conflict.
func (r *TransferRepository) UpsertTransfer(transfer model.Transfer) error {
	_, err := r.db.Exec(`
		INSERT INTO transfers (tx_hash, from_address, to_address, token, amount, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (tx_hash) DO UPDATE SET
			from_address = EXCLUDED.from_address,
			to_address = EXCLUDED.to_address,
			token = EXCLUDED.token,
			amount = EXCLUDED.amount,
			status = EXCLUDED.status
	`, transfer.TxHash, transfer.FromAddress, transfer.ToAddress, transfer.Token, transfer.Amount, transfer.Status, transfer.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert transfer: %w", err)
	}

	r.logger.Info("Upserted transfer",
		zap.String("tx_hash", transfer.TxHash),
		zap.String("status", transfer.Status),
		zap.String("token", transfer.Token),
		zap.String("amount", transfer.Amount))
	return nil
}

func (r *TransferRepository) GetTransferByTxHash(txHash string) (*model.Transfer, error) {
	var transfer model.Transfer
	err := r.db.QueryRow(`
		SELECT tx_hash, from_address, to_address, token, amount, status, created_at
		FROM transfers
		WHERE tx_hash = $1
	`, txHash).Scan(&transfer.TxHash, &transfer.FromAddress, &transfer.ToAddress, &transfer.Token,
		&transfer.Amount, &transfer.Status, &transfer.CreatedAt)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get transfer: %w", err)
	}

	return &transfer, nil
}

// ForEachTransferByAddress streams all transfers sent from or received by the
// address, most recent first, without materializing the full result set.
func (r *TransferRepository) ForEachTransferByAddress(address string, fn func(model.Transfer) error) error {
	rows, err := r.db.Query(`
		SELECT tx_hash, from_address, to_address, token, amount, status, created_at
		FROM transfers
		WHERE lower(from_address) = lower($1) OR lower(to_address) = lower($1)
		ORDER BY created_at DESC
	`, address)
	if err != nil {
		return fmt.Errorf("failed to query transfers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var transfer model.Transfer
		if err := rows.Scan(&transfer.TxHash, &transfer.FromAddress, &transfer.ToAddress, &transfer.Token,
			&transfer.Amount, &transfer.Status, &transfer.CreatedAt); err != nil {
			return fmt.Errorf("failed to scan transfer: %w", err)
		}
		if err := fn(transfer); err != nil {
			return err
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating transfers: %w", err)
	}

	return nil
}
