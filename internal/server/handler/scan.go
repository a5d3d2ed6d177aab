package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Ray-no/fedhamev/internal/domain"
)

// ScanService defines the detection and snapshot methods the scan handler
// requires from the watcher service.
type ScanService interface {
	Scan(ctx context.Context, caller domain.Principal) error
	ScanRange(ctx context.Context, caller domain.Principal, offset, limit int) error
	SnapshotToBlob(ctx context.Context, caller domain.Principal) (string, error)
}

// ScanHandler serves opportunity-scan and snapshot HTTP endpoints.
type ScanHandler struct {
	scans  ScanService
	logger *slog.Logger
}

// NewScanHandler creates a ScanHandler with the given service and logger.
func NewScanHandler(scans ScanService, logger *slog.Logger) *ScanHandler {
	return &ScanHandler{
		scans:  scans,
		logger: logger,
	}
}

// scanWindow extracts the offset/limit query parameters for a ranged scan.
// Unlike list pagination there is no default page size: a missing limit
// means scan to the end of the ledger, which ScanRange expresses as -1.
func scanWindow(r *http.Request) (offset, limit int) {
	q := r.URL.Query()

	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}

	limit = -1
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	return offset, limit
}

// Scan runs an opportunity scan over the ledger. Findings are published as
// events; the response only acknowledges that the scan ran.
// POST /api/scan?offset=0&limit=100
func (h *ScanHandler) Scan(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerAddress(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "missing or invalid X-Caller address")
		return
	}

	var err error
	if r.URL.Query().Has("offset") || r.URL.Query().Has("limit") {
		offset, limit := scanWindow(r)
		err = h.scans.ScanRange(r.Context(), caller, offset, limit)
	} else {
		err = h.scans.Scan(r.Context(), caller)
	}
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			writeError(w, http.StatusUnauthorized, "caller is not the owner")
			return
		}
		if errors.Is(err, domain.ErrLockHeld) {
			writeError(w, http.StatusConflict, "a scan is already running")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: scan failed",
			slog.String("caller", caller.Hex()),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "scan failed")
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"status":       "accepted",
		"requested_at": time.Now().UTC().Format(time.RFC3339),
	})
}

// Snapshot exports the current ledger and role state to object storage and
// returns the object key.
// POST /api/snapshot
func (h *ScanHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerAddress(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "missing or invalid X-Caller address")
		return
	}

	key, err := h.scans.SnapshotToBlob(r.Context(), caller)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			writeError(w, http.StatusUnauthorized, "caller is not the owner")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: snapshot failed",
			slog.String("caller", caller.Hex()),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "snapshot failed")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"key": key})
}
