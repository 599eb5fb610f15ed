package model

import (
	"encoding/json"
	"time"
)

type OutboxEvent struct {
	ID            string          `db:"id"`
	TxHash        string          `db:"tx_hash"`
	EventType     string          `db:"event_type"`
	Status        string          `db:"status"`
	WalletAddress string          `db:"wallet_address"`
	Amount        string          `db:"amount"`
	Token         string          `db:"token"`
	EventBlob     json.RawMessage `db:"event_blob"`
	CreatedAt     time.Time       `db:"created_at"`
}
