package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/storage"
)

// transactionRequest is the write payload. Amount travels as a decimal
// string so values survive the wire without float rounding.
type transactionRequest struct {
	Description   string `json:"description"`
	Amount        string `json:"amount"`
	Date          string `json:"date"`
	Type          string `json:"type"`
	Category      string `json:"category"`
	PaymentMethod string `json:"paymentMethod"`
}

// toTransaction parses the payload fields into a domain transaction owned by
// ownerID. Parse failures surface as core validation errors.
func (req transactionRequest) toTransaction(ownerID string) (core.Transaction, error) {
	date, err := core.ParseDate(strings.TrimSpace(req.Date))
	if err != nil {
		return core.Transaction{}, err
	}

	amount, err := core.ParseMoney(req.Amount)
	if err != nil {
		return core.Transaction{}, err
	}

	return core.Transaction{
		OwnerID:       ownerID,
		Description:   strings.TrimSpace(req.Description),
		Amount:        amount,
		Date:          date,
		Type:          core.TxType(strings.TrimSpace(req.Type)),
		Category:      strings.TrimSpace(req.Category),
		PaymentMethod: strings.TrimSpace(req.PaymentMethod),
	}, nil
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		auth.Require(s.jwt, s.handleCreateTransaction)(w, r)
	case http.MethodGet:
		auth.Optional(s.jwt, s.handleListTransactions)(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleTransactionByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/transactions/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	switch r.Method {
	case http.MethodPut:
		auth.Require(s.jwt, func(w http.ResponseWriter, r *http.Request) {
			s.handleUpdateTransaction(w, r, id)
		})(w, r)
	case http.MethodDelete:
		auth.Require(s.jwt, func(w http.ResponseWriter, r *http.Request) {
			s.handleDeleteTransaction(w, r, id)
		})(w, r)
	default:
		w.Header().Set("Allow", "PUT, DELETE")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	ownerID := auth.OwnerID(r.Context())

	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	tx, err := req.toTransaction(ownerID)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	created, err := s.service.Create(r.Context(), tx)
	if err != nil {
		s.writeTransactionError(w, r, "create", err)
		return
	}

	s.invalidateSummary(ownerID, created.Date)

	writeJSON(w, http.StatusCreated, created)
}

// handleListTransactions returns the owner's transactions matching the
// optional query filters. Anonymous requests get an empty list.
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	ownerID := auth.OwnerID(r.Context())

	filter, err := filterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	txs, err := s.store.List(r.Context(), ownerID, filter)
	if err != nil {
		s.writeTransactionError(w, r, "list", err)
		return
	}

	writeJSON(w, http.StatusOK, txs)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request, id string) {
	ownerID := auth.OwnerID(r.Context())

	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	tx, err := req.toTransaction(ownerID)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	tx.ID = id

	// The previous row may sit in a different month than the new date.
	previous, err := s.store.Get(r.Context(), ownerID, id)
	if err != nil {
		s.writeTransactionError(w, r, "update", err)
		return
	}

	updated, err := s.service.Update(r.Context(), tx)
	if err != nil {
		s.writeTransactionError(w, r, "update", err)
		return
	}

	if previous != nil {
		s.invalidateSummary(ownerID, previous.Date)
	}
	s.invalidateSummary(ownerID, updated.Date)

	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request, id string) {
	ownerID := auth.OwnerID(r.Context())

	previous, err := s.store.Get(r.Context(), ownerID, id)
	if err != nil {
		s.writeTransactionError(w, r, "delete", err)
		return
	}

	if err := s.service.Delete(r.Context(), ownerID, id); err != nil {
		s.writeTransactionError(w, r, "delete", err)
		return
	}

	if previous != nil {
		s.invalidateSummary(ownerID, previous.Date)
	}

	w.WriteHeader(http.StatusNoContent)
}

// filterFromQuery builds the retrieval filter from query parameters:
// from, to (YYYY-MM-DD), q (description substring), type.
func filterFromQuery(r *http.Request) (core.Filter, error) {
	var f core.Filter

	if v := strings.TrimSpace(r.URL.Query().Get("from")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return core.Filter{}, errors.New("invalid 'from' date, expected YYYY-MM-DD")
		}
		f.DateFrom = d
	}
	if v := strings.TrimSpace(r.URL.Query().Get("to")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return core.Filter{}, errors.New("invalid 'to' date, expected YYYY-MM-DD")
		}
		f.DateTo = d
	}
	f.Description = strings.TrimSpace(r.URL.Query().Get("q"))
	if v := strings.TrimSpace(r.URL.Query().Get("type")); v != "" {
		t := core.TxType(v)
		if !t.Valid() {
			return core.Filter{}, errors.New("invalid 'type' filter")
		}
		f.Type = t
	}

	return f, nil
}

// writeTransactionError maps domain and storage errors to HTTP statuses.
func (s *Server) writeTransactionError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "transaction not found")
	case isValidationError(err):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		slog.ErrorContext(r.Context(), "Transaction operation failed",
			applog.FieldOperation, op,
			applog.FieldError, err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func isValidationError(err error) bool {
	return errors.Is(err, core.ErrInvalidDate) ||
		errors.Is(err, core.ErrInvalidAmount) ||
		errors.Is(err, core.ErrShortDescription) ||
		errors.Is(err, core.ErrLongDescription) ||
		errors.Is(err, core.ErrUnknownType) ||
		errors.Is(err, core.ErrMissingOwner)
}
