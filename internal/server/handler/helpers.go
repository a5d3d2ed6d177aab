package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"

	"github.com/Ray-no/fedhamev/internal/domain"
)

// callerHeader carries the hex address of the principal making the request.
// Authentication of the transport is handled separately by the API key
// middleware; this header only identifies which principal the request acts as.
const callerHeader = "X-Caller"

// writeJSON marshals v as JSON and writes it to the response with the given
// HTTP status code. If marshaling fails, it falls back to a plain-text 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(data)
}

// writeError sends a JSON-formatted error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// callerAddress extracts and validates the principal address from the
// X-Caller header. The second return value is false when the header is
// missing or not a valid hex address.
func callerAddress(r *http.Request) (domain.Principal, bool) {
	raw := r.Header.Get(callerHeader)
	if !common.IsHexAddress(raw) {
		return domain.Principal{}, false
	}
	return common.HexToAddress(raw), true
}

// listOpts holds standard pagination parameters.
type listOpts struct {
	Limit  int
	Offset int
}

// parseListOpts extracts pagination parameters from the query string.
// Defaults: limit=50 (max 500), offset=0.
func parseListOpts(r *http.Request) listOpts {
	q := r.URL.Query()

	limit := 50
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > 500 {
		limit = 500
	}

	offset := 0
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}

	return listOpts{Limit: limit, Offset: offset}
}

// pathParam extracts a named path parameter from the request using Go 1.22+
// built-in routing (http.Request.PathValue).
func pathParam(r *http.Request, name string) string {
	return r.PathValue(name)
}
