// Package tracker orchestrates the transfer lifecycle: submission, status
// reconciliation against chain state, and history assembly.
package tracker

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"wallet/apps/wallet/internal/assets"
	"wallet/apps/wallet/internal/chain"
	"wallet/apps/wallet/internal/keys"
	"wallet/apps/wallet/internal/model"
)

// TransferMethodID is the leading 4 bytes of ERC20 transfer(address,uint256)
// calldata, used to recognize token transfers when resolving status.
var TransferMethodID = crypto.Keccak256([]byte("transfer(address,uint256)"))[:4]

// UnknownTokenSymbol labels token transfers whose contract is not in the registry
const UnknownTokenSymbol = "UNKNOWN"

// Outbox event types emitted on lifecycle transitions
const (
	EventTransferSubmitted = "transfer_submitted"
	EventTransferConfirmed = "transfer_confirmed"
	EventTransferFailed    = "transfer_failed"
)

// Gateway is the chain RPC surface the tracker depends on
type Gateway interface {
	SendTransfer(ctx context.Context, privateKey *ecdsa.PrivateKey, to common.Address, amount *big.Int, asset *assets.Asset) (common.Hash, error)
	GetTransaction(ctx context.Context, txHash common.Hash) (*chain.TxInfo, error)
	GetReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// Store is the transfer record surface the tracker depends on. UpsertTransfer
// must be atomic per tx hash so concurrent verify calls cannot duplicate records.
type Store interface {
	UpsertTransfer(transfer model.Transfer) error
	GetTransferByTxHash(txHash string) (*model.Transfer, error)
	ForEachTransferByAddress(address string, fn func(model.Transfer) error) error
}

// OutboxSink records lifecycle events for asynchronous publishing
type OutboxSink interface {
	StoreEvent(event model.OutboxEvent) error
}

// SubmitRequest describes an outbound transfer
type SubmitRequest struct {
	PrivateKey string
	To         string
	Amount     string
	Token      string
}

// Tracker is stateless between calls; all state lives in the store and on chain
type Tracker struct {
	gateway  Gateway
	store    Store
	outbox   OutboxSink
	registry *assets.AssetRegistry
	logger   *zap.Logger
}

func NewTracker(gateway Gateway, store Store, outbox OutboxSink, registry *assets.AssetRegistry, logger *zap.Logger) *Tracker {
	return &Tracker{
		gateway:  gateway,
		store:    store,
		outbox:   outbox,
		registry: registry,
		logger:   logger,
	}
}

// Submit validates the request, signs and broadcasts the transfer, and persists
// a pending record before returning. It never waits for inclusion; the caller
// observes confirmation through Verify.
func (t *Tracker) Submit(ctx context.Context, req SubmitRequest) (string, error) {
	asset, exists := t.registry.GetBySymbol(req.Token)
	if !exists {
		return "", &ValidationError{Field: "token", Message: "unsupported asset: " + req.Token}
	}

	if !common.IsHexAddress(req.To) {
		return "", &ValidationError{Field: "to", Message: "not a valid chain address"}
	}

	amount, err := chain.ToBaseUnits(req.Amount, asset.Decimals)
	if err != nil {
		return "", &ValidationError{Field: "amount", Message: err.Error()}
	}

	privateKey, err := keys.ParsePrivateKey(req.PrivateKey)
	if err != nil {
		return "", &ValidationError{Field: "private_key", Message: err.Error()}
	}
	from := crypto.PubkeyToAddress(privateKey.PublicKey)

	txHash, err := t.gateway.SendTransfer(ctx, privateKey, common.HexToAddress(req.To), amount, asset)
	if err != nil {
		return "", &GatewayError{Op: "broadcast", Err: err}
	}

	transfer := model.Transfer{
		TxHash:      txHash.Hex(),
		FromAddress: from.Hex(),
		ToAddress:   common.HexToAddress(req.To).Hex(),
		Token:       asset.Symbol,
		Amount:      req.Amount,
		Status:      model.StatusPending,
		CreatedAt:   time.Now().UTC(),
	}

	if err := t.store.UpsertTransfer(transfer); err != nil {
		// The chain has the transfer but the tracker does not. Nothing can be
		// rolled back; surface the inconsistency.
		t.logger.Error("Broadcast succeeded but pending record write failed",
			zap.String("tx_hash", transfer.TxHash),
			zap.Error(err))
		return "", &StoreError{Op: "persist pending transfer", Err: err}
	}

	t.storeOutboxEvent(EventTransferSubmitted, transfer)

	t.logger.Info("Submitted transfer",
		zap.String("tx_hash", transfer.TxHash),
		zap.String("from", transfer.FromAddress),
		zap.String("to", transfer.ToAddress),
		zap.String("token", transfer.Token),
		zap.String("amount", transfer.Amount))

	return transfer.TxHash, nil
}

// Verify resolves the current status of a transfer against chain state.
//
// A transfer with no receipt yet stays pending; if no record exists either, a
// pending record is synthesized without being persisted. Once a receipt is
// observed the transfer parameters are decoded from the transaction body and
// the record is upserted with its terminal status. Terminal records are
// returned as-is on subsequent calls.
func (t *Tracker) Verify(ctx context.Context, txHash string) (model.Transfer, error) {
	if !isHexHash(txHash) {
		return model.Transfer{}, &ValidationError{Field: "tx_hash", Message: "not a valid transaction hash"}
	}
	hash := common.HexToHash(txHash)

	existing, err := t.store.GetTransferByTxHash(hash.Hex())
	if err != nil {
		return model.Transfer{}, &StoreError{Op: "get transfer", Err: err}
	}

	if existing != nil && existing.IsTerminal() {
		return *existing, nil
	}

	receipt, err := t.gateway.GetReceipt(ctx, hash)
	if err != nil {
		return model.Transfer{}, &GatewayError{Op: "get receipt", Err: err}
	}

	if receipt == nil {
		// Not included yet; never an error
		if existing != nil {
			return *existing, nil
		}
		return model.Transfer{
			TxHash: hash.Hex(),
			Status: model.StatusPending,
		}, nil
	}

	txInfo, err := t.gateway.GetTransaction(ctx, hash)
	if err != nil {
		return model.Transfer{}, &GatewayError{Op: "get transaction", Err: err}
	}
	if txInfo == nil {
		return model.Transfer{}, &GatewayError{Op: "get transaction", Err: ErrNotFound}
	}

	transfer := t.decodeTransfer(hash, txInfo)

	if receipt.Status == types.ReceiptStatusSuccessful {
		transfer.Status = model.StatusSuccess
	} else {
		transfer.Status = model.StatusFailed
	}

	if existing != nil {
		transfer.CreatedAt = existing.CreatedAt
	} else {
		transfer.CreatedAt = time.Now().UTC()
	}

	if err := t.store.UpsertTransfer(transfer); err != nil {
		return model.Transfer{}, &StoreError{Op: "persist transfer status", Err: err}
	}

	if transfer.Status == model.StatusSuccess {
		t.storeOutboxEvent(EventTransferConfirmed, transfer)
	} else {
		t.storeOutboxEvent(EventTransferFailed, transfer)
	}

	t.logger.Info("Resolved transfer status",
		zap.String("tx_hash", transfer.TxHash),
		zap.String("status", transfer.Status),
		zap.String("token", transfer.Token))

	return transfer, nil
}

// decodeTransfer recovers the transfer parameters from a transaction body. A
// transaction is a token transfer iff its calldata starts with the ERC20
// transfer method id; anything else is treated as a native coin transfer.
func (t *Tracker) decodeTransfer(hash common.Hash, txInfo *chain.TxInfo) model.Transfer {
	transfer := model.Transfer{
		TxHash:      hash.Hex(),
		FromAddress: txInfo.From.Hex(),
	}

	if len(txInfo.Data) >= 68 && bytes.HasPrefix(txInfo.Data, TransferMethodID) {
		// ERC20 transfer(address,uint256): recipient in the first word,
		// raw amount in the second
		recipient := common.BytesToAddress(txInfo.Data[4:36])
		rawAmount := new(big.Int).SetBytes(txInfo.Data[36:68])

		symbol := UnknownTokenSymbol
		decimals := 18
		if txInfo.To != nil {
			if asset, exists := t.registry.GetByAddress(*txInfo.To); exists {
				symbol = asset.Symbol
				decimals = asset.Decimals
			}
		}

		transfer.ToAddress = recipient.Hex()
		transfer.Token = symbol
		transfer.Amount = chain.FromBaseUnits(rawAmount, decimals)
		return transfer
	}

	symbol := UnknownTokenSymbol
	decimals := 18
	if native, exists := t.registry.Native(); exists {
		symbol = native.Symbol
		decimals = native.Decimals
	}

	if txInfo.To != nil {
		transfer.ToAddress = txInfo.To.Hex()
	}
	transfer.Token = symbol
	transfer.Amount = chain.FromBaseUnits(txInfo.Value, decimals)
	return transfer
}

// History streams all transfers involving the address, most recent first
func (t *Tracker) History(ctx context.Context, address string, fn func(model.Transfer) error) error {
	if !common.IsHexAddress(address) {
		return &ValidationError{Field: "address", Message: "not a valid chain address"}
	}

	if err := t.store.ForEachTransferByAddress(address, fn); err != nil {
		return &StoreError{Op: "query transfers", Err: err}
	}
	return nil
}

// Direction classifies a transfer from the queried address's perspective.
// The comparison is case-insensitive.
func Direction(transfer model.Transfer, address string) string {
	if strings.EqualFold(transfer.FromAddress, address) {
		return "sent"
	}
	return "received"
}

func (t *Tracker) storeOutboxEvent(eventType string, transfer model.Transfer) {
	blob, err := json.Marshal(map[string]interface{}{
		"tx_hash":      transfer.TxHash,
		"from_address": transfer.FromAddress,
		"to_address":   transfer.ToAddress,
		"token":        transfer.Token,
		"amount":       transfer.Amount,
		"status":       transfer.Status,
	})
	if err != nil {
		t.logger.Error("Failed to marshal transfer for outbox", zap.String("tx_hash", transfer.TxHash), zap.Error(err))
		return
	}

	event := model.OutboxEvent{
		ID:            uuid.New().String(),
		TxHash:        transfer.TxHash,
		EventType:     eventType,
		Status:        "unsent",
		WalletAddress: transfer.FromAddress,
		Amount:        transfer.Amount,
		Token:         transfer.Token,
		EventBlob:     blob,
		CreatedAt:     time.Now().UTC(),
	}

	// Event loss is tolerable; the transfer record itself is authoritative
	if err := t.outbox.StoreEvent(event); err != nil {
		t.logger.Error("Failed to store outbox event", zap.String("tx_hash", transfer.TxHash), zap.String("event_type", eventType), zap.Error(err))
	}
}

func isHexHash(s string) bool {
	trimmed := strings.TrimPrefix(s, "0x")
	if len(trimmed) != 64 {
		return false
	}
	for i := 0; i < len(trimmed); i++ {
		c := trimmed[i]
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F') {
			return false
		}
	}
	return true
}
