package repository

import (
	"database/sql"
	"fmt"
)

// InitMigration initializes the database. In production, this would use a proper migration
// library like go-migrate
func InitMigration(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS wallets (
			id UUID PRIMARY KEY,
			name VARCHAR(100) NOT NULL UNIQUE,
			address VARCHAR(42) NOT NULL,
			private_key VARCHAR(66) NOT NULL,
			mnemonic TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS transfers (
			tx_hash VARCHAR(66) PRIMARY KEY,
			from_address VARCHAR(42) NOT NULL,
			to_address VARCHAR(42) NOT NULL,
			token VARCHAR(50) NOT NULL,
			amount DECIMAL(78,18) NOT NULL,
			status VARCHAR(20) NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_transfers_from_date ON transfers (lower(from_address), created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_transfers_to_date ON transfers (lower(to_address), created_at DESC)`,
		`CREATE TABLE IF NOT EXISTS transfer_outbox (
			id UUID PRIMARY KEY,
			tx_hash VARCHAR(66) NOT NULL,
			event_type VARCHAR(30) NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'unsent',
			wallet_address VARCHAR(42) NOT NULL,
			amount DECIMAL(78,18) NOT NULL,
			token VARCHAR(50) NOT NULL,
			event_blob JSONB NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_transfer_outbox_status ON transfer_outbox (status, created_at)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query %s: %w", query, err)
		}
	}

	return nil
}
