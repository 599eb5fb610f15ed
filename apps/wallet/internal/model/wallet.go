package model

import (
	"time"
)

type Wallet struct {
	ID         string    `db:"id"`
	Name       string    `db:"name"`
	Address    string    `db:"address"`
	PrivateKey string    `db:"private_key"`
	Mnemonic   string    `db:"mnemonic"`
	CreatedAt  time.Time `db:"created_at"`
}
