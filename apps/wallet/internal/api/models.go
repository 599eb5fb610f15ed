package api

import (
	"time"
)

// CreateWalletRequest represents the request body for creating a wallet
type CreateWalletRequest struct {
	Name string `json:"name"`
}

// WalletResponse represents the API response for wallet information. The
// private key and mnemonic are only populated on creation, or when the server
// is explicitly configured to return stored secrets.
type WalletResponse struct {
	Name       string    `json:"name"`
	Address    string    `json:"address"`
	PrivateKey string    `json:"private_key,omitempty"`
	Mnemonic   string    `json:"mnemonic,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// BalanceRequest represents the request body for a balance query
type BalanceRequest struct {
	Address string `json:"address"`
}

// BalanceResponse represents the API response for wallet balance information
type BalanceResponse struct {
	Address  string                  `json:"address"`
	Balances map[string]TokenBalance `json:"balances"`
}

// TokenBalance represents balance information for a specific asset
type TokenBalance struct {
	Balance  string `json:"balance"`
	Symbol   string `json:"symbol"`
	Address  string `json:"address,omitempty"`
	Decimals int    `json:"decimals"`
}

// TransferRequest represents the request body for submitting a transfer.
// Either private_key or from_wallet must be set.
type TransferRequest struct {
	PrivateKey string `json:"private_key"`
	FromWallet string `json:"from_wallet"`
	To         string `json:"to"`
	Amount     string `json:"amount"`
	Token      string `json:"token"`
}

// TransferResponse represents the response for a submitted transfer
type TransferResponse struct {
	TxHash string `json:"tx_hash"`
	Status string `json:"status"`
}

// VerifyRequest represents the request body for resolving a transfer's status
type VerifyRequest struct {
	TxHash string `json:"tx_hash"`
}

// TransferRecordResponse represents the API view of a tracked transfer
type TransferRecordResponse struct {
	TxHash      string    `json:"tx_hash"`
	FromAddress string    `json:"from"`
	ToAddress   string    `json:"to"`
	Token       string    `json:"token"`
	Amount      string    `json:"value"`
	Status      string    `json:"status"`
	Direction   string    `json:"direction,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}

// HistoryResponse represents the API response for an address's transfer history
type HistoryResponse struct {
	Address   string                   `json:"address"`
	Transfers []TransferRecordResponse `json:"transfers"`
}

// ErrorResponse represents the API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
