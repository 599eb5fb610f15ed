package chain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"wallet/apps/wallet/internal/assets"
)

// ERC20 ABI for the balanceOf and transfer functions
const ERC20ABI = `[
	{
		"constant": true,
		"inputs": [{"name": "_owner", "type": "address"}],
		"name": "balanceOf",
		"outputs": [{"name": "balance", "type": "uint256"}],
		"type": "function"
	},
	{
		"constant": false,
		"inputs": [
			{"name": "_to", "type": "address"},
			{"name": "_value", "type": "uint256"}
		],
		"name": "transfer",
		"outputs": [{"name": "", "type": "bool"}],
		"type": "function"
	}
]`

// Gas limits for outbound transfers
const (
	NativeTransferGasLimit = 21000
	TokenTransferGasLimit  = 200000
)

// TxInfo is the decoded view of an on-chain transaction the tracker needs
type TxInfo struct {
	From    common.Address
	To      *common.Address
	Value   *big.Int
	Data    []byte
	Pending bool
}

// Gateway wraps the chain RPC client: balance reads, transfer broadcast, and
// transaction/receipt lookup.
type Gateway struct {
	client   *ethclient.Client
	signer   types.Signer
	erc20ABI abi.ABI
}

// NewGateway connects to the chain RPC endpoint
func NewGateway(rpcURL string, chainID int64) (*Gateway, error) {
	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to chain RPC: %w", err)
	}

	parsedABI, err := abi.JSON(strings.NewReader(ERC20ABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ERC20 ABI: %w", err)
	}

	return &Gateway{
		client:   client,
		signer:   types.LatestSignerForChainID(big.NewInt(chainID)),
		erc20ABI: parsedABI,
	}, nil
}

// Balance returns the wallet's balance for the given asset as a decimal string
func (g *Gateway) Balance(ctx context.Context, walletAddress common.Address, asset *assets.Asset) (string, error) {
	if asset.Native {
		balance, err := g.client.BalanceAt(ctx, walletAddress, nil)
		if err != nil {
			return "", fmt.Errorf("failed to get native balance: %w", err)
		}
		return FromBaseUnits(balance, asset.Decimals), nil
	}

	data, err := g.erc20ABI.Pack("balanceOf", walletAddress)
	if err != nil {
		return "", fmt.Errorf("failed to pack balanceOf call: %w", err)
	}

	tokenAddress := asset.Address
	result, err := g.client.CallContract(ctx, ethereum.CallMsg{
		To:   &tokenAddress,
		Data: data,
	}, nil)
	if err != nil {
		return "", fmt.Errorf("failed to call balanceOf: %w", err)
	}

	var balance *big.Int
	if err := g.erc20ABI.UnpackIntoInterface(&balance, "balanceOf", result); err != nil {
		return "", fmt.Errorf("failed to unpack balanceOf result: %w", err)
	}

	return FromBaseUnits(balance, asset.Decimals), nil
}

// SendTransfer signs and broadcasts a transfer of the given base unit amount.
// Native transfers carry the value directly; token transfers call the ERC20
// transfer method on the asset's contract.
func (g *Gateway) SendTransfer(ctx context.Context, privateKey *ecdsa.PrivateKey, to common.Address, amount *big.Int, asset *assets.Asset) (common.Hash, error) {
	from := crypto.PubkeyToAddress(privateKey.PublicKey)

	nonce, err := g.client.PendingNonceAt(ctx, from)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to get nonce: %w", err)
	}

	gasPrice, err := g.client.SuggestGasPrice(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to get gas price: %w", err)
	}

	var tx *types.Transaction
	if asset.Native {
		tx = types.NewTransaction(nonce, to, amount, NativeTransferGasLimit, gasPrice, nil)
	} else {
		data, err := g.erc20ABI.Pack("transfer", to, amount)
		if err != nil {
			return common.Hash{}, fmt.Errorf("failed to pack transfer call: %w", err)
		}
		tx = types.NewTransaction(nonce, asset.Address, big.NewInt(0), TokenTransferGasLimit, gasPrice, data)
	}

	signedTx, err := types.SignTx(tx, g.signer, privateKey)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to sign transaction: %w", err)
	}

	if err := g.client.SendTransaction(ctx, signedTx); err != nil {
		return common.Hash{}, fmt.Errorf("failed to broadcast transaction: %w", err)
	}

	return signedTx.Hash(), nil
}

// GetTransaction looks up a transaction body by hash. Returns (nil, nil) when
// the chain does not know the hash.
func (g *Gateway) GetTransaction(ctx context.Context, txHash common.Hash) (*TxInfo, error) {
	tx, isPending, err := g.client.TransactionByHash(ctx, txHash)
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	from, err := types.Sender(g.signer, tx)
	if err != nil {
		return nil, fmt.Errorf("failed to recover transaction sender: %w", err)
	}

	return &TxInfo{
		From:    from,
		To:      tx.To(),
		Value:   tx.Value(),
		Data:    tx.Data(),
		Pending: isPending,
	}, nil
}

// GetReceipt looks up the inclusion receipt for a transaction. Returns
// (nil, nil) while the transaction has not been included yet.
func (g *Gateway) GetReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	receipt, err := g.client.TransactionReceipt(ctx, txHash)
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get transaction receipt: %w", err)
	}
	return receipt, nil
}

// Close releases the underlying RPC connection
func (g *Gateway) Close() {
	g.client.Close()
}
