package repository

import (
	"database/sql"
	"fmt"
	"go.uber.org/zap"
	"wallet/apps/wallet/internal/model"
)

type OutboxRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewOutboxRepository(db *sql.DB, logger *zap.Logger) *OutboxRepository {
	return &OutboxRepository{db: db, logger: logger}
}

func (r *OutboxRepository) StoreEvent(event model.OutboxEvent) error {
	_, err := r.db.Exec(`
		INSERT INTO transfer_outbox (id, tx_hash, event_type, status, wallet_address, amount, token, event_blob, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, event.ID, event.TxHash, event.EventType, event.Status, event.WalletAddress, event.Amount, event.Token, event.EventBlob, event.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to store outbox event: %w", err)
	}

	r.logger.Info("Stored event", zap.String("event_type", event.EventType), zap.String("wallet_address", event.WalletAddress), zap.String("tx_hash", event.TxHash))
	return nil
}

func (r *OutboxRepository) GetUnsentEventsForProcessing(limit int) ([]model.OutboxEvent, error) {
	// Use a transaction to ensure atomicity
	tx, err := r.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback() // Will be ignored if tx.Commit() succeeds

	// Select and lock unsent events for processing
	rows, err := tx.Query(`
		SELECT id, tx_hash, event_type, status, wallet_address, amount, token, event_blob, created_at
		FROM transfer_outbox
		WHERE status = 'unsent'
		ORDER BY created_at
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []model.OutboxEvent
	for rows.Next() {
		var event model.OutboxEvent
		if err := rows.Scan(&event.ID, &event.TxHash, &event.EventType, &event.Status,
			&event.WalletAddress, &event.Amount, &event.Token, &event.EventBlob, &event.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	// Mark selected events as 'processing' to prevent other threads from picking them up
	for _, event := range events {
		_, err = tx.Exec(`
			UPDATE transfer_outbox
			SET status = 'processing'
			WHERE id = $1 AND status = 'unsent'
		`, event.ID)
		if err != nil {
			return nil, err
		}
	}

	// Commit the transaction
	if err = tx.Commit(); err != nil {
		return nil, err
	}

	return events, nil
}

func (r *OutboxRepository) MarkEventAsSent(id string) error {
	_, err := r.db.Exec(`
		UPDATE transfer_outbox
		SET status = 'sent'
		WHERE id = $1
	`, id)
	return err
}

func (r *OutboxRepository) MarkEventAsFailed(id string) error {
	_, err := r.db.Exec(`
		UPDATE transfer_outbox
		SET status = 'unsent'
		WHERE id = $1 AND status = 'processing'
	`, id)
	return err
}
