package assets

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Asset represents a cryptocurrency asset with its properties
type Asset struct {
	Symbol   string         `json:"symbol"`
	Name     string         `json:"name"`
	Address  common.Address `json:"address"`
	Decimals int            `json:"decimals"`
	Native   bool           `json:"native"`
}

// AssetRegistry holds all supported assets
type AssetRegistry struct {
	assets    map[string]*Asset
	byAddress map[common.Address]*Asset
	native    *Asset
}

// NewAssetRegistry creates a registry from the given asset list. At most one
// asset may be marked native.
func NewAssetRegistry(supportedAssets []*Asset) *AssetRegistry {
	registry := &AssetRegistry{
		assets:    make(map[string]*Asset),
		byAddress: make(map[common.Address]*Asset),
	}

	for _, asset := range supportedAssets {
		registry.assets[asset.Symbol] = asset
		if asset.Native {
			registry.native = asset
		} else {
			registry.byAddress[asset.Address] = asset
		}
	}

	return registry
}

// NewDefaultRegistry creates a registry with the BSC assets the wallet supports
func NewDefaultRegistry() *AssetRegistry {
	return NewAssetRegistry([]*Asset{
		{
			Symbol:   "BNB",
			Name:     "BNB",
			Decimals: 18,
			Native:   true,
		},
		{
			Symbol:   "USDT",
			Name:     "Tether USD",
			Address:  common.HexToAddress("0x55d398326f99059fF775485246999027B3197955"),
			Decimals: 18,
		},
		{
			Symbol:   "USDC",
			Name:     "USD Coin",
			Address:  common.HexToAddress("0x8AC76a51cc950d9822D68b83fE1Ad97B32Cd580d"),
			Decimals: 18,
		},
	})
}

// GetBySymbol returns an asset by its symbol (case-insensitive)
func (r *AssetRegistry) GetBySymbol(symbol string) (*Asset, bool) {
	// Try exact match first
	if asset, exists := r.assets[symbol]; exists {
		return asset, true
	}

	// Try case-insensitive match
	for _, asset := range r.assets {
		if strings.EqualFold(asset.Symbol, symbol) {
			return asset, true
		}
	}

	return nil, false
}

// GetByAddress returns a token asset by its contract address. Address parsing
// via common.HexToAddress makes the match case-insensitive.
func (r *AssetRegistry) GetByAddress(address common.Address) (*Asset, bool) {
	asset, exists := r.byAddress[address]
	return asset, exists
}

// Native returns the native coin asset, if one is registered
func (r *AssetRegistry) Native() (*Asset, bool) {
	return r.native, r.native != nil
}

// GetAll returns all registered assets
func (r *AssetRegistry) GetAll() map[string]*Asset {
	result := make(map[string]*Asset)
	for symbol, asset := range r.assets {
		result[symbol] = asset
	}
	return result
}

// GetAllAsArray returns all assets as an array
func (r *AssetRegistry) GetAllAsArray() []*Asset {
	assets := make([]*Asset, 0, len(r.assets))
	for _, asset := range r.assets {
		assets = append(assets, asset)
	}
	return assets
}

// IsSupported checks if a symbol is supported
func (r *AssetRegistry) IsSupported(symbol string) bool {
	_, exists := r.GetBySymbol(symbol)
	return exists
}

// GetSupportedSymbols returns all supported asset symbols
func (r *AssetRegistry) GetSupportedSymbols() []string {
	symbols := make([]string, 0, len(r.assets))
	for symbol := range r.assets {
		symbols = append(symbols, symbol)
	}
	return symbols
}

// GlobalRegistry is the default registry used by the application
var GlobalRegistry = NewDefaultRegistry()
