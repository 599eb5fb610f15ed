package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"wallet/apps/wallet/internal/model"
	"wallet/apps/wallet/internal/repository"
	"wallet/apps/wallet/internal/tracker"
)

// TransferHandler handles transfer submission, verification and history endpoints
type TransferHandler struct {
	tracker          *tracker.Tracker
	walletRepository *repository.WalletRepository
	logger           *zap.Logger
}

// NewTransferHandler creates a new TransferHandler
func NewTransferHandler(tracker *tracker.Tracker, walletRepository *repository.WalletRepository, logger *zap.Logger) *TransferHandler {
	return &TransferHandler{
		tracker:          tracker,
		walletRepository: walletRepository,
		logger:           logger,
	}
}

// SubmitTransfer handles POST /api/transfer
func (h *TransferHandler) SubmitTransfer(w http.ResponseWriter, r *http.Request) {
	var req TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "invalid_request_body", "Invalid JSON in request body")
		return
	}

	if req.To == "" {
		h.writeErrorResponse(w, http.StatusBadRequest, "missing_to", "Recipient address is required")
		return
	}

	if req.Amount == "" {
		h.writeErrorResponse(w, http.StatusBadRequest, "missing_amount", "Amount is required")
		return
	}

	if req.Token == "" {
		h.writeErrorResponse(w, http.StatusBadRequest, "missing_token", "Token is required")
		return
	}

	privateKey := req.PrivateKey
	if privateKey == "" {
		if req.FromWallet == "" {
			h.writeErrorResponse(w, http.StatusBadRequest, "missing_sender", "Either private_key or from_wallet is required")
			return
		}

		wallet, err := h.walletRepository.GetWalletByName(req.FromWallet)
		if err != nil {
			h.logger.Error("Failed to get sender wallet", zap.String("name", req.FromWallet), zap.Error(err))
			h.writeErrorResponse(w, http.StatusInternalServerError, "database_error", "Failed to retrieve sender wallet")
			return
		}
		if wallet == nil {
			h.writeErrorResponse(w, http.StatusNotFound, "wallet_not_found", "Sender wallet not found")
			return
		}
		privateKey = wallet.PrivateKey
	}

	txHash, err := h.tracker.Submit(r.Context(), tracker.SubmitRequest{
		PrivateKey: privateKey,
		To:         req.To,
		Amount:     req.Amount,
		Token:      req.Token,
	})
	if err != nil {
		h.writeTrackerError(w, err)
		return
	}

	response := TransferResponse{
		TxHash: txHash,
		Status: model.StatusPending,
	}

	h.writeJSONResponse(w, http.StatusCreated, response)
}

// VerifyTransfer handles POST /api/verify
func (h *TransferHandler) VerifyTransfer(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "invalid_request_body", "Invalid JSON in request body")
		return
	}

	if req.TxHash == "" {
		h.writeErrorResponse(w, http.StatusBadRequest, "missing_tx_hash", "Transaction hash is required")
		return
	}

	transfer, err := h.tracker.Verify(r.Context(), req.TxHash)
	if err != nil {
		h.writeTrackerError(w, err)
		return
	}

	response := TransferRecordResponse{
		TxHash:      transfer.TxHash,
		FromAddress: transfer.FromAddress,
		ToAddress:   transfer.ToAddress,
		Token:       transfer.Token,
		Amount:      transfer.Amount,
		Status:      transfer.Status,
		CreatedAt:   transfer.CreatedAt,
	}

	h.writeJSONResponse(w, http.StatusOK, response)
}

// GetHistory handles GET /api/history/{address}
func (h *TransferHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	address := vars["address"]

	if address == "" {
		h.writeErrorResponse(w, http.StatusBadRequest, "missing_address", "Wallet address is required")
		return
	}

	transfers := make([]TransferRecordResponse, 0)
	err := h.tracker.History(r.Context(), address, func(transfer model.Transfer) error {
		transfers = append(transfers, TransferRecordResponse{
			TxHash:      transfer.TxHash,
			FromAddress: transfer.FromAddress,
			ToAddress:   transfer.ToAddress,
			Token:       transfer.Token,
			Amount:      transfer.Amount,
			Status:      transfer.Status,
			Direction:   tracker.Direction(transfer, address),
			CreatedAt:   transfer.CreatedAt,
		})
		return nil
	})
	if err != nil {
		h.writeTrackerError(w, err)
		return
	}

	response := HistoryResponse{
		Address:   address,
		Transfers: transfers,
	}

	h.writeJSONResponse(w, http.StatusOK, response)
}

// writeTrackerError maps tracker error types to HTTP responses
func (h *TransferHandler) writeTrackerError(w http.ResponseWriter, err error) {
	var validationErr *tracker.ValidationError
	var gatewayErr *tracker.GatewayError
	var storeErr *tracker.StoreError

	switch {
	case errors.As(err, &validationErr):
		h.writeErrorResponse(w, http.StatusBadRequest, "invalid_"+validationErr.Field, validationErr.Message)
	case errors.Is(err, tracker.ErrNotFound):
		h.writeErrorResponse(w, http.StatusNotFound, "not_found", err.Error())
	case errors.As(err, &gatewayErr):
		h.logger.Error("Chain gateway error", zap.Error(err))
		h.writeErrorResponse(w, http.StatusBadGateway, "gateway_error", err.Error())
	case errors.As(err, &storeErr):
		h.logger.Error("Record store error", zap.Error(err))
		h.writeErrorResponse(w, http.StatusInternalServerError, "database_error", err.Error())
	default:
		h.logger.Error("Unexpected error", zap.Error(err))
		h.writeErrorResponse(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

// writeJSONResponse writes a JSON response with the specified status code
func (h *TransferHandler) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode JSON response", zap.Error(err))
	}
}

// writeErrorResponse writes an error response
func (h *TransferHandler) writeErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) {
	errorResponse := ErrorResponse{
		Error:   errorCode,
		Message: message,
	}
	h.writeJSONResponse(w, statusCode, errorResponse)
}
