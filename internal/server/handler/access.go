package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ethereum/go-ethereum/common"

	"github.com/Ray-no/fedhamev/internal/domain"
)

// AccessService defines the role-management methods the access handler
// requires from the watcher service.
type AccessService interface {
	Owner() domain.Principal
	Authorize(ctx context.Context, caller, p domain.Principal) error
	Revoke(ctx context.Context, caller, p domain.Principal) error
}

// AccessHandler serves role-management HTTP endpoints.
type AccessHandler struct {
	access AccessService
	logger *slog.Logger
}

// NewAccessHandler creates an AccessHandler with the given service and logger.
func NewAccessHandler(access AccessService, logger *slog.Logger) *AccessHandler {
	return &AccessHandler{
		access: access,
		logger: logger,
	}
}

// accessRequest is the body for authorize and revoke requests.
type accessRequest struct {
	Address string `json:"address"`
}

// Authorize grants a principal the right to append transactions.
// POST /api/access/authorize
func (h *AccessHandler) Authorize(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "authorize", h.access.Authorize)
}

// Revoke removes a principal's right to append transactions.
// POST /api/access/revoke
func (h *AccessHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "revoke", h.access.Revoke)
}

func (h *AccessHandler) mutate(
	w http.ResponseWriter,
	r *http.Request,
	action string,
	fn func(ctx context.Context, caller, p domain.Principal) error,
) {
	caller, ok := callerAddress(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "missing or invalid X-Caller address")
		return
	}

	var req accessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !common.IsHexAddress(req.Address) {
		writeError(w, http.StatusBadRequest, "invalid principal address")
		return
	}
	principal := common.HexToAddress(req.Address)

	if err := fn(r.Context(), caller, principal); err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			writeError(w, http.StatusUnauthorized, "caller is not the owner")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: access mutation failed",
			slog.String("action", action),
			slog.String("caller", caller.Hex()),
			slog.String("principal", principal.Hex()),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to update access")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"action":    action,
		"principal": principal.Hex(),
	})
}
