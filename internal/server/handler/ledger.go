package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Ray-no/fedhamev/internal/domain"
)

// LedgerService defines the methods that the ledger handler requires from
// the watcher service. It is declared locally so the handler package does
// not depend on the concrete service implementation.
type LedgerService interface {
	Append(ctx context.Context, caller domain.Principal, rec domain.TransactionRecord) (int, error)
	Get(index int) (domain.TransactionRecord, error)
	Length() int
	List(offset, limit int) []domain.TransactionRecord
}

// LedgerHandler serves ledger-related HTTP endpoints.
type LedgerHandler struct {
	ledger LedgerService
	logger *slog.Logger
}

// NewLedgerHandler creates a LedgerHandler with the given service and logger.
func NewLedgerHandler(ledger LedgerService, logger *slog.Logger) *LedgerHandler {
	return &LedgerHandler{
		ledger: ledger,
		logger: logger,
	}
}

// appendResponse is the body returned after a successful append.
type appendResponse struct {
	Index int `json:"index"`
}

// Append records a new transaction on the ledger.
// POST /api/ledger
func (h *LedgerHandler) Append(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerAddress(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "missing or invalid X-Caller address")
		return
	}

	var rec domain.TransactionRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	index, err := h.ledger.Append(r.Context(), caller, rec)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			writeError(w, http.StatusUnauthorized, "caller is not authorized")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: append failed",
			slog.String("caller", caller.Hex()),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to append transaction")
		return
	}

	writeJSON(w, http.StatusCreated, appendResponse{Index: index})
}

// Get returns a single transaction record by its ledger index.
// GET /api/ledger/{index}
func (h *LedgerHandler) Get(w http.ResponseWriter, r *http.Request) {
	raw := pathParam(r, "index")
	index, err := strconv.Atoi(raw)
	if err != nil || index < 0 {
		writeError(w, http.StatusBadRequest, "invalid ledger index")
		return
	}

	rec, err := h.ledger.Get(index)
	if err != nil {
		if errors.Is(err, domain.ErrOutOfRange) {
			writeError(w, http.StatusNotFound, "ledger index out of range")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: get record failed",
			slog.Int("index", index),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to get transaction")
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

// listResponse wraps the list endpoint output with pagination metadata.
type listResponse struct {
	Records []domain.TransactionRecord `json:"records"`
	Total   int                        `json:"total"`
	Limit   int                        `json:"limit"`
	Offset  int                        `json:"offset"`
}

// List returns recorded transactions with pagination.
// GET /api/ledger?limit=50&offset=0
func (h *LedgerHandler) List(w http.ResponseWriter, r *http.Request) {
	opts := parseListOpts(r)

	records := h.ledger.List(opts.Offset, opts.Limit)
	if records == nil {
		records = []domain.TransactionRecord{}
	}

	writeJSON(w, http.StatusOK, listResponse{
		Records: records,
		Total:   h.ledger.Length(),
		Limit:   opts.Limit,
		Offset:  opts.Offset,
	})
}
