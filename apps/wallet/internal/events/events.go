package events

import (
	"encoding/json"
	"time"
)

type TransferEvent struct {
	EventType     string          `json:"event_type"`
	TxHash        string          `json:"tx_hash"`
	WalletAddress string          `json:"wallet_address"`
	Amount        string          `json:"amount"`
	Token         string          `json:"token"`
	EventData     json.RawMessage `json:"event_data"`
	Timestamp     time.Time       `json:"timestamp"`
}
