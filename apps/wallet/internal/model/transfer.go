package model

import (
	"time"
)

// Transfer statuses. A transfer is created as pending at broadcast time and
// moves to success or failed exactly once; it never leaves a terminal status.
const (
	StatusPending = "pending"
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

type Transfer struct {
	TxHash      string    `db:"tx_hash"`
	FromAddress string    `db:"from_address"`
	ToAddress   string    `db:"to_address"`
	Token       string    `db:"token"`
	Amount      string    `db:"amount"`
	Status      string    `db:"status"`
	CreatedAt   time.Time `db:"created_at"`
}

// IsTerminal reports whether the transfer has reached a final status
func (t *Transfer) IsTerminal() bool {
	return t.Status == StatusSuccess || t.Status == StatusFailed
}
