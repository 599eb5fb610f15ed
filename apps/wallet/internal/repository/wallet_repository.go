package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"go.uber.org/zap"
	"wallet/apps/wallet/internal/model"
)

// ErrNameTaken is returned when a wallet name is already in use
var ErrNameTaken = errors.New("wallet name already taken")

type WalletRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewWalletRepository(db *sql.DB, logger *zap.Logger) *WalletRepository {
	return &WalletRepository{db: db, logger: logger}
}

func (r *WalletRepository) CreateWallet(wallet model.Wallet) error {
	_, err := r.db.Exec(`
		INSERT INTO wallets (id, name, address, private_key, mnemonic, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, wallet.ID, wallet.Name, wallet.Address, wallet.PrivateKey, wallet.Mnemonic, wallet.CreatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return ErrNameTaken
		}
		return fmt.Errorf("failed to create wallet: %w", err)
	}

	r.logger.Info("Created wallet",
		zap.String("name", wallet.Name),
		zap.String("address", wallet.Address))
	return nil
}

func (r *WalletRepository) GetWalletByName(name string) (*model.Wallet, error) {
	var wallet model.Wallet
	err := r.db.QueryRow(`
		SELECT id, name, address, private_key, mnemonic, created_at
		FROM wallets
		WHERE name = $1
	`, name).Scan(&wallet.ID, &wallet.Name, &wallet.Address, &wallet.PrivateKey, &wallet.Mnemonic, &wallet.CreatedAt)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	return &wallet, nil
}
