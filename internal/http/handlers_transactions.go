package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

type transactionJSON struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Amount      string `json:"amount"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Source      string `json:"source,omitempty"`
	Date        string `json:"date"`
	CreatedAt   string `json:"created_at"`
}

func toTransactionJSON(tx core.Transaction) transactionJSON {
	return transactionJSON{
		ID:          tx.ID,
		Type:        string(tx.Type),
		Amount:      tx.Amount.String(),
		Category:    tx.Category,
		Description: tx.Description,
		Source:      tx.Source,
		Date:        tx.Date,
		CreatedAt:   tx.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toTransactionList(txs []core.Transaction) []transactionJSON {
	out := make([]transactionJSON, len(txs))
	for i, tx := range txs {
		out[i] = toTransactionJSON(tx)
	}
	return out
}

type createTransactionRequest struct {
	Type        string `json:"type"`
	Amount      string `json:"amount"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Source      string `json:"source"`
	Date        string `json:"date"`
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	user := userID(r)
	if user == "" {
		respondError(w, http.StatusBadRequest, "missing X-User-ID header")
		return
	}

	start, end, err := parseRange(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	txs, err := s.store.ListInRange(r.Context(), user, start, end)
	if err != nil {
		slog.ErrorContext(r.Context(), "List transactions failed", "user_id", user, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"transactions": toTransactionList(txs)})
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	user := userID(r)
	if user == "" {
		respondError(w, http.StatusBadRequest, "missing X-User-ID header")
		return
	}

	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "invalid amount")
		return
	}

	tx := core.Transaction{
		UserID:      user,
		Type:        core.TxType(req.Type),
		Amount:      amount,
		Category:    req.Category,
		Description: req.Description,
		Source:      req.Source,
		Date:        req.Date,
	}

	created, err := s.transactions.Create(r.Context(), tx)
	if err != nil {
		if isValidationError(err) {
			respondError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		slog.ErrorContext(r.Context(), "Create transaction failed", "user_id", user, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to save transaction")
		return
	}

	respondJSON(w, http.StatusCreated, toTransactionJSON(created))
}

type updateTransactionRequest struct {
	Type        *string `json:"type"`
	Amount      *string `json:"amount"`
	Category    *string `json:"category"`
	Description *string `json:"description"`
	Source      *string `json:"source"`
	Date        *string `json:"date"`
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	user := userID(r)
	if user == "" {
		respondError(w, http.StatusBadRequest, "missing X-User-ID header")
		return
	}

	var req updateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	patch := store.TransactionPatch{
		Category:    req.Category,
		Description: req.Description,
		Source:      req.Source,
		Date:        req.Date,
	}
	if req.Type != nil {
		typ := core.TxType(*req.Type)
		patch.Type = &typ
	}
	if req.Amount != nil {
		amount, err := core.ParseAmount(*req.Amount)
		if err != nil {
			respondError(w, http.StatusUnprocessableEntity, "invalid amount")
			return
		}
		patch.Amount = &amount
	}

	updated, err := s.transactions.Update(r.Context(), user, r.PathValue("id"), patch)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			respondError(w, http.StatusNotFound, "transaction not found")
		case isValidationError(err):
			respondError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			slog.ErrorContext(r.Context(), "Update transaction failed", "user_id", user, "error", err)
			respondError(w, http.StatusInternalServerError, "failed to update transaction")
		}
		return
	}

	respondJSON(w, http.StatusOK, toTransactionJSON(updated))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	user := userID(r)
	if user == "" {
		respondError(w, http.StatusBadRequest, "missing X-User-ID header")
		return
	}

	if err := s.transactions.Delete(r.Context(), user, r.PathValue("id")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "transaction not found")
			return
		}
		slog.ErrorContext(r.Context(), "Delete transaction failed", "user_id", user, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to delete transaction")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func isValidationError(err error) bool {
	for _, sentinel := range []error{
		core.ErrInvalidType,
		core.ErrInvalidAmount,
		core.ErrEmptyCategory,
		core.ErrEmptyDescription,
		core.ErrDescriptionTooLong,
		core.ErrInvalidDate,
		core.ErrEmptyUser,
		core.ErrNegativeLimit,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
