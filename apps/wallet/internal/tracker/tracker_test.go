package tracker

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"math/big"
	"sort"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"wallet/apps/wallet/internal/assets"
	"wallet/apps/wallet/internal/chain"
	"wallet/apps/wallet/internal/model"
)

// Well-known test key (hardhat account #1)
const (
	testPrivateKey = "0x59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d"
	testSender     = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
	testRecipient  = "0x0B8fA6F76eB75ae3a4ca28eb3020DFC4503F2136"
	testTxHash     = "0x1111111111111111111111111111111111111111111111111111111111111111"
)

var testTokenAddress = common.HexToAddress("0x2260fac5e5542a773aa44fbcfedf7c193bc2c599")

type fakeGateway struct {
	broadcastHash common.Hash
	broadcastErr  error
	broadcasts    int

	txs      map[common.Hash]*chain.TxInfo
	receipts map[common.Hash]*types.Receipt

	receiptErr   error
	receiptCalls int
}

func (g *fakeGateway) SendTransfer(ctx context.Context, privateKey *ecdsa.PrivateKey, to common.Address, amount *big.Int, asset *assets.Asset) (common.Hash, error) {
	g.broadcasts++
	if g.broadcastErr != nil {
		return common.Hash{}, g.broadcastErr
	}
	return g.broadcastHash, nil
}

func (g *fakeGateway) GetTransaction(ctx context.Context, txHash common.Hash) (*chain.TxInfo, error) {
	return g.txs[txHash], nil
}

func (g *fakeGateway) GetReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	g.receiptCalls++
	if g.receiptErr != nil {
		return nil, g.receiptErr
	}
	return g.receipts[txHash], nil
}

type fakeStore struct {
	transfers map[string]model.Transfer
	upsertErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{transfers: make(map[string]model.Transfer)}
}

func (s *fakeStore) UpsertTransfer(transfer model.Transfer) error {
	if s.upsertErr != nil {
		return s.upsertErr
	}
	if existing, ok := s.transfers[transfer.TxHash]; ok {
		transfer.CreatedAt = existing.CreatedAt
	}
	s.transfers[transfer.TxHash] = transfer
	return nil
}

func (s *fakeStore) GetTransferByTxHash(txHash string) (*model.Transfer, error) {
	if transfer, ok := s.transfers[txHash]; ok {
		return &transfer, nil
	}
	return nil, nil
}

func (s *fakeStore) ForEachTransferByAddress(address string, fn func(model.Transfer) error) error {
	var matches []model.Transfer
	for _, transfer := range s.transfers {
		if equalFold(transfer.FromAddress, address) || equalFold(transfer.ToAddress, address) {
			matches = append(matches, transfer)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	for _, transfer := range matches {
		if err := fn(transfer); err != nil {
			return err
		}
	}
	return nil
}

func equalFold(a, b string) bool {
	return common.HexToAddress(a) == common.HexToAddress(b)
}

type fakeOutbox struct {
	events []model.OutboxEvent
}

func (o *fakeOutbox) StoreEvent(event model.OutboxEvent) error {
	o.events = append(o.events, event)
	return nil
}

func testRegistry() *assets.AssetRegistry {
	return assets.NewAssetRegistry([]*assets.Asset{
		{Symbol: "BNB", Name: "BNB", Decimals: 18, Native: true},
		{Symbol: "USDX", Name: "Test Stablecoin", Address: testTokenAddress, Decimals: 6},
	})
}

func newTestTracker(gateway *fakeGateway, store *fakeStore, outbox *fakeOutbox) *Tracker {
	return NewTracker(gateway, store, outbox, testRegistry(), zap.NewNop())
}

func TestSubmitCreatesPendingRecord(t *testing.T) {
	gateway := &fakeGateway{broadcastHash: common.HexToHash(testTxHash)}
	store := newFakeStore()
	outbox := &fakeOutbox{}
	tr := newTestTracker(gateway, store, outbox)

	txHash, err := tr.Submit(context.Background(), SubmitRequest{
		PrivateKey: testPrivateKey,
		To:         testRecipient,
		Amount:     "0.5",
		Token:      "BNB",
	})
	require.NoError(t, err)
	assert.Equal(t, common.HexToHash(testTxHash).Hex(), txHash)

	require.Len(t, store.transfers, 1)
	transfer := store.transfers[txHash]
	assert.Equal(t, model.StatusPending, transfer.Status)
	assert.Equal(t, "0.5", transfer.Amount)
	assert.Equal(t, "BNB", transfer.Token)
	assert.Equal(t, testSender, transfer.FromAddress)
	assert.Equal(t, common.HexToAddress(testRecipient).Hex(), transfer.ToAddress)

	require.Len(t, outbox.events, 1)
	assert.Equal(t, EventTransferSubmitted, outbox.events[0].EventType)
}

func TestSubmitValidation(t *testing.T) {
	tests := []struct {
		name    string
		request SubmitRequest
	}{
		{
			name: "InvalidRecipient",
			request: SubmitRequest{
				PrivateKey: testPrivateKey,
				To:         "not-an-address",
				Amount:     "0.5",
				Token:      "BNB",
			},
		},
		{
			name: "UnsupportedToken",
			request: SubmitRequest{
				PrivateKey: testPrivateKey,
				To:         testRecipient,
				Amount:     "0.5",
				Token:      "DOGE",
			},
		},
		{
			name: "ZeroAmount",
			request: SubmitRequest{
				PrivateKey: testPrivateKey,
				To:         testRecipient,
				Amount:     "0",
				Token:      "BNB",
			},
		},
		{
			name: "NegativeAmount",
			request: SubmitRequest{
				PrivateKey: testPrivateKey,
				To:         testRecipient,
				Amount:     "-1",
				Token:      "BNB",
			},
		},
		{
			name: "TooManyDecimals",
			request: SubmitRequest{
				PrivateKey: testPrivateKey,
				To:         testRecipient,
				Amount:     "0.1234567",
				Token:      "USDX",
			},
		},
		{
			name: "BadPrivateKey",
			request: SubmitRequest{
				PrivateKey: "zz",
				To:         testRecipient,
				Amount:     "0.5",
				Token:      "BNB",
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			gateway := &fakeGateway{broadcastHash: common.HexToHash(testTxHash)}
			store := newFakeStore()
			tr := newTestTracker(gateway, store, &fakeOutbox{})

			_, err := tr.Submit(context.Background(), test.request)

			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, 0, gateway.broadcasts, "validation must reject before any external call")
			assert.Empty(t, store.transfers)
		})
	}
}

func TestSubmitBroadcastFailureCreatesNoRecord(t *testing.T) {
	gateway := &fakeGateway{broadcastErr: errors.New("insufficient funds")}
	store := newFakeStore()
	tr := newTestTracker(gateway, store, &fakeOutbox{})

	_, err := tr.Submit(context.Background(), SubmitRequest{
		PrivateKey: testPrivateKey,
		To:         testRecipient,
		Amount:     "0.5",
		Token:      "BNB",
	})

	var gatewayErr *GatewayError
	require.ErrorAs(t, err, &gatewayErr)
	assert.Empty(t, store.transfers)
}

func TestSubmitPendingWriteFailureSurfacesStoreError(t *testing.T) {
	gateway := &fakeGateway{broadcastHash: common.HexToHash(testTxHash)}
	store := newFakeStore()
	store.upsertErr = errors.New("connection reset")
	tr := newTestTracker(gateway, store, &fakeOutbox{})

	_, err := tr.Submit(context.Background(), SubmitRequest{
		PrivateKey: testPrivateKey,
		To:         testRecipient,
		Amount:     "0.5",
		Token:      "BNB",
	})

	var storeErr *StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, 1, gateway.broadcasts)
}

func TestVerifyUnknownTransferSynthesizesPending(t *testing.T) {
	gateway := &fakeGateway{
		txs:      make(map[common.Hash]*chain.TxInfo),
		receipts: make(map[common.Hash]*types.Receipt),
	}
	store := newFakeStore()
	tr := newTestTracker(gateway, store, &fakeOutbox{})

	transfer, err := tr.Verify(context.Background(), testTxHash)
	require.NoError(t, err)

	assert.Equal(t, common.HexToHash(testTxHash).Hex(), transfer.TxHash)
	assert.Equal(t, model.StatusPending, transfer.Status)
	assert.Empty(t, store.transfers, "no record must be created without a receipt")
}

func TestVerifyNoReceiptReturnsStoredRecordUnchanged(t *testing.T) {
	gateway := &fakeGateway{
		txs:      make(map[common.Hash]*chain.TxInfo),
		receipts: make(map[common.Hash]*types.Receipt),
	}
	store := newFakeStore()
	pending := model.Transfer{
		TxHash:      common.HexToHash(testTxHash).Hex(),
		FromAddress: testSender,
		ToAddress:   testRecipient,
		Token:       "BNB",
		Amount:      "0.5",
		Status:      model.StatusPending,
		CreatedAt:   time.Now().UTC(),
	}
	store.transfers[pending.TxHash] = pending
	tr := newTestTracker(gateway, store, &fakeOutbox{})

	transfer, err := tr.Verify(context.Background(), testTxHash)
	require.NoError(t, err)

	assert.Equal(t, pending, transfer)
	assert.Len(t, store.transfers, 1)
}

func TestVerifyNativeTransferSuccess(t *testing.T) {
	hash := common.HexToHash(testTxHash)
	recipient := common.HexToAddress(testRecipient)

	gateway := &fakeGateway{
		txs: map[common.Hash]*chain.TxInfo{
			hash: {
				From:  common.HexToAddress(testSender),
				To:    &recipient,
				Value: big.NewInt(500000000000000000), // 0.5 BNB
			},
		},
		receipts: map[common.Hash]*types.Receipt{
			hash: {Status: types.ReceiptStatusSuccessful},
		},
	}
	store := newFakeStore()
	outbox := &fakeOutbox{}
	createdAt := time.Now().UTC().Add(-time.Minute)
	store.transfers[hash.Hex()] = model.Transfer{
		TxHash:    hash.Hex(),
		Token:     "BNB",
		Amount:    "0.5",
		Status:    model.StatusPending,
		CreatedAt: createdAt,
	}
	tr := newTestTracker(gateway, store, outbox)

	transfer, err := tr.Verify(context.Background(), testTxHash)
	require.NoError(t, err)

	assert.Equal(t, model.StatusSuccess, transfer.Status)
	assert.Equal(t, testSender, transfer.FromAddress)
	assert.Equal(t, recipient.Hex(), transfer.ToAddress)
	assert.Equal(t, "0.5", transfer.Amount)
	assert.Equal(t, "BNB", transfer.Token)
	assert.Equal(t, createdAt, transfer.CreatedAt, "created_at must be preserved")

	require.Len(t, store.transfers, 1)
	require.Len(t, outbox.events, 1)
	assert.Equal(t, EventTransferConfirmed, outbox.events[0].EventType)
}

func TestVerifyTokenTransferDecode(t *testing.T) {
	hash := common.HexToHash(testTxHash)
	recipient := common.HexToAddress(testRecipient)

	data := make([]byte, 0, 68)
	data = append(data, TransferMethodID...)
	data = append(data, common.LeftPadBytes(recipient.Bytes(), 32)...)
	data = append(data, common.LeftPadBytes(big.NewInt(1_000_000).Bytes(), 32)...)

	contract := testTokenAddress
	gateway := &fakeGateway{
		txs: map[common.Hash]*chain.TxInfo{
			hash: {
				From:  common.HexToAddress(testSender),
				To:    &contract,
				Value: big.NewInt(0),
				Data:  data,
			},
		},
		receipts: map[common.Hash]*types.Receipt{
			hash: {Status: types.ReceiptStatusSuccessful},
		},
	}
	store := newFakeStore()
	tr := newTestTracker(gateway, store, &fakeOutbox{})

	transfer, err := tr.Verify(context.Background(), testTxHash)
	require.NoError(t, err)

	assert.Equal(t, model.StatusSuccess, transfer.Status)
	assert.Equal(t, "USDX", transfer.Token)
	assert.Equal(t, "1", transfer.Amount, "1,000,000 raw units at 6 decimals")
	assert.Equal(t, recipient.Hex(), transfer.ToAddress)
	assert.Equal(t, testSender, transfer.FromAddress)
}

func TestVerifyUnknownTokenContract(t *testing.T) {
	hash := common.HexToHash(testTxHash)
	recipient := common.HexToAddress(testRecipient)
	contract := common.HexToAddress("0x000000000000000000000000000000000000dead")

	data := make([]byte, 0, 68)
	data = append(data, TransferMethodID...)
	data = append(data, common.LeftPadBytes(recipient.Bytes(), 32)...)
	data = append(data, common.LeftPadBytes(big.NewInt(1000).Bytes(), 32)...)

	gateway := &fakeGateway{
		txs: map[common.Hash]*chain.TxInfo{
			hash: {
				From:  common.HexToAddress(testSender),
				To:    &contract,
				Value: big.NewInt(0),
				Data:  data,
			},
		},
		receipts: map[common.Hash]*types.Receipt{
			hash: {Status: types.ReceiptStatusSuccessful},
		},
	}
	tr := newTestTracker(gateway, newFakeStore(), &fakeOutbox{})

	transfer, err := tr.Verify(context.Background(), testTxHash)
	require.NoError(t, err)

	assert.Equal(t, UnknownTokenSymbol, transfer.Token)
	assert.Equal(t, recipient.Hex(), transfer.ToAddress)
}

func TestVerifyFailedReceipt(t *testing.T) {
	hash := common.HexToHash(testTxHash)
	recipient := common.HexToAddress(testRecipient)

	gateway := &fakeGateway{
		txs: map[common.Hash]*chain.TxInfo{
			hash: {
				From:  common.HexToAddress(testSender),
				To:    &recipient,
				Value: big.NewInt(1000000000000000000),
			},
		},
		receipts: map[common.Hash]*types.Receipt{
			hash: {Status: types.ReceiptStatusFailed},
		},
	}
	outbox := &fakeOutbox{}
	tr := newTestTracker(gateway, newFakeStore(), outbox)

	transfer, err := tr.Verify(context.Background(), testTxHash)
	require.NoError(t, err)

	assert.Equal(t, model.StatusFailed, transfer.Status)
	require.Len(t, outbox.events, 1)
	assert.Equal(t, EventTransferFailed, outbox.events[0].EventType)
}

func TestVerifyIsIdempotentAfterTerminalStatus(t *testing.T) {
	hash := common.HexToHash(testTxHash)
	recipient := common.HexToAddress(testRecipient)

	gateway := &fakeGateway{
		txs: map[common.Hash]*chain.TxInfo{
			hash: {
				From:  common.HexToAddress(testSender),
				To:    &recipient,
				Value: big.NewInt(500000000000000000),
			},
		},
		receipts: map[common.Hash]*types.Receipt{
			hash: {Status: types.ReceiptStatusSuccessful},
		},
	}
	store := newFakeStore()
	tr := newTestTracker(gateway, store, &fakeOutbox{})

	first, err := tr.Verify(context.Background(), testTxHash)
	require.NoError(t, err)
	require.Equal(t, model.StatusSuccess, first.Status)
	receiptCallsAfterFirst := gateway.receiptCalls

	second, err := tr.Verify(context.Background(), testTxHash)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, store.transfers, 1, "no duplicate records")
	assert.Equal(t, receiptCallsAfterFirst, gateway.receiptCalls, "terminal records are returned without re-querying the chain")
}

func TestVerifyGatewayErrorSurfaced(t *testing.T) {
	gateway := &fakeGateway{receiptErr: errors.New("rpc unreachable")}
	tr := newTestTracker(gateway, newFakeStore(), &fakeOutbox{})

	_, err := tr.Verify(context.Background(), testTxHash)

	var gatewayErr *GatewayError
	require.ErrorAs(t, err, &gatewayErr)
}

func TestVerifyRejectsMalformedHash(t *testing.T) {
	tr := newTestTracker(&fakeGateway{}, newFakeStore(), &fakeOutbox{})

	_, err := tr.Verify(context.Background(), "0x1234")

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestHistoryOrdering(t *testing.T) {
	store := newFakeStore()
	base := time.Now().UTC()
	for i, suffix := range []string{"aa", "bb", "cc"} {
		transfer := model.Transfer{
			TxHash:      suffix,
			FromAddress: testSender,
			ToAddress:   testRecipient,
			Token:       "BNB",
			Amount:      "1",
			Status:      model.StatusSuccess,
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}
		store.transfers[transfer.TxHash] = transfer
	}
	tr := newTestTracker(&fakeGateway{}, store, &fakeOutbox{})

	var seen []time.Time
	err := tr.History(context.Background(), testSender, func(transfer model.Transfer) error {
		seen = append(seen, transfer.CreatedAt)
		return nil
	})
	require.NoError(t, err)

	require.Len(t, seen, 3)
	for i := 1; i < len(seen); i++ {
		assert.True(t, seen[i-1].After(seen[i]), "history must be ordered most recent first")
	}
}

func TestDirectionClassification(t *testing.T) {
	transfer := model.Transfer{
		FromAddress: testSender,
		ToAddress:   testRecipient,
	}

	assert.Equal(t, "sent", Direction(transfer, testSender))
	assert.Equal(t, "sent", Direction(transfer, "0x70997970c51812dc3a010c7d01b50e0d17dc79c8"), "case must not affect classification")
	assert.Equal(t, "received", Direction(transfer, testRecipient))
}
