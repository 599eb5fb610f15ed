package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"wallet/apps/wallet/internal/keys"
	"wallet/apps/wallet/internal/model"
	"wallet/apps/wallet/internal/repository"
)

// WalletHandler handles wallet issuance and lookup endpoints
type WalletHandler struct {
	walletRepository *repository.WalletRepository
	returnSecrets    bool
	logger           *zap.Logger
}

// NewWalletHandler creates a new WalletHandler
func NewWalletHandler(walletRepository *repository.WalletRepository, returnSecrets bool, logger *zap.Logger) *WalletHandler {
	return &WalletHandler{
		walletRepository: walletRepository,
		returnSecrets:    returnSecrets,
		logger:           logger,
	}
}

// CreateWallet handles POST /api/wallet
func (h *WalletHandler) CreateWallet(w http.ResponseWriter, r *http.Request) {
	var req CreateWalletRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "invalid_request_body", "Invalid JSON in request body")
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		h.writeErrorResponse(w, http.StatusBadRequest, "missing_name", "Wallet name is required")
		return
	}

	keyPair, err := keys.Generate()
	if err != nil {
		h.logger.Error("Failed to generate key pair", zap.Error(err))
		h.writeErrorResponse(w, http.StatusInternalServerError, "key_generation_error", "Failed to generate wallet keys")
		return
	}

	wallet := model.Wallet{
		ID:         uuid.New().String(),
		Name:       name,
		Address:    keyPair.Address,
		PrivateKey: keyPair.PrivateKey,
		Mnemonic:   keyPair.Mnemonic,
		CreatedAt:  time.Now().UTC(),
	}

	if err := h.walletRepository.CreateWallet(wallet); err != nil {
		if errors.Is(err, repository.ErrNameTaken) {
			h.writeErrorResponse(w, http.StatusConflict, "name_taken", "A wallet with this name already exists")
			return
		}
		h.logger.Error("Failed to create wallet", zap.String("name", name), zap.Error(err))
		h.writeErrorResponse(w, http.StatusInternalServerError, "database_error", "Failed to save wallet")
		return
	}

	// The one response that carries the secrets: the caller must store them
	response := WalletResponse{
		Name:       wallet.Name,
		Address:    wallet.Address,
		PrivateKey: wallet.PrivateKey,
		Mnemonic:   wallet.Mnemonic,
		CreatedAt:  wallet.CreatedAt,
	}

	h.writeJSONResponse(w, http.StatusCreated, response)
}

// GetWallet handles GET /api/wallet/{name}
func (h *WalletHandler) GetWallet(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	name := vars["name"]

	if name == "" {
		h.writeErrorResponse(w, http.StatusBadRequest, "missing_name", "Wallet name is required")
		return
	}

	wallet, err := h.walletRepository.GetWalletByName(name)
	if err != nil {
		h.logger.Error("Failed to get wallet", zap.String("name", name), zap.Error(err))
		h.writeErrorResponse(w, http.StatusInternalServerError, "database_error", "Failed to retrieve wallet")
		return
	}

	if wallet == nil {
		h.writeErrorResponse(w, http.StatusNotFound, "wallet_not_found", "Wallet not found")
		return
	}

	response := WalletResponse{
		Name:      wallet.Name,
		Address:   wallet.Address,
		CreatedAt: wallet.CreatedAt,
	}
	if h.returnSecrets {
		response.PrivateKey = wallet.PrivateKey
		response.Mnemonic = wallet.Mnemonic
	}

	h.writeJSONResponse(w, http.StatusOK, response)
}

// writeJSONResponse writes a JSON response with the specified status code
func (h *WalletHandler) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode JSON response", zap.Error(err))
	}
}

// writeErrorResponse writes an error response
func (h *WalletHandler) writeErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) {
	errorResponse := ErrorResponse{
		Error:   errorCode,
		Message: message,
	}
	h.writeJSONResponse(w, statusCode, errorResponse)
}
