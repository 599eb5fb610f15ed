package api

import (
	"encoding/json"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"wallet/apps/wallet/internal/assets"
	"wallet/apps/wallet/internal/chain"
)

// BalanceHandler handles balance-related API endpoints
type BalanceHandler struct {
	gateway       *chain.Gateway
	assetRegistry *assets.AssetRegistry
	logger        *zap.Logger
}

// NewBalanceHandler creates a new BalanceHandler
func NewBalanceHandler(gateway *chain.Gateway, assetRegistry *assets.AssetRegistry, logger *zap.Logger) *BalanceHandler {
	return &BalanceHandler{
		gateway:       gateway,
		assetRegistry: assetRegistry,
		logger:        logger,
	}
}

// GetBalance handles POST /api/balance
func (h *BalanceHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	var req BalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "invalid_request_body", "Invalid JSON in request body")
		return
	}

	if req.Address == "" {
		h.writeErrorResponse(w, http.StatusBadRequest, "missing_address", "Wallet address is required")
		return
	}

	if !common.IsHexAddress(req.Address) {
		h.writeErrorResponse(w, http.StatusBadRequest, "invalid_address", "Invalid chain address format")
		return
	}

	address := common.HexToAddress(req.Address)
	balances := make(map[string]TokenBalance)

	// Get balance for each supported asset
	for symbol, asset := range h.assetRegistry.GetAll() {
		balance, err := h.gateway.Balance(r.Context(), address, asset)
		if err != nil {
			h.logger.Error("Failed to get balance",
				zap.String("asset", asset.Symbol),
				zap.String("address", req.Address),
				zap.Error(err))
			// Continue with other assets instead of failing completely
			balance = "0"
		}

		tokenBalance := TokenBalance{
			Balance:  balance,
			Symbol:   asset.Symbol,
			Decimals: asset.Decimals,
		}
		if !asset.Native {
			tokenBalance.Address = asset.Address.Hex()
		}
		balances[symbol] = tokenBalance
	}

	response := BalanceResponse{
		Address:  req.Address,
		Balances: balances,
	}

	h.logger.Info("Retrieved wallet balances",
		zap.String("address", req.Address),
		zap.Int("asset_count", len(balances)))

	h.writeJSONResponse(w, http.StatusOK, response)
}

// writeJSONResponse writes a JSON response with the specified status code
func (h *BalanceHandler) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode JSON response", zap.Error(err))
	}
}

// writeErrorResponse writes an error response
func (h *BalanceHandler) writeErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) {
	errorResponse := ErrorResponse{
		Error:   errorCode,
		Message: message,
	}
	h.writeJSONResponse(w, statusCode, errorResponse)
}
