package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/phrazzld/flashdeck/internal/api/shared"
	"github.com/phrazzld/flashdeck/internal/platform/logger"
)

// getPrincipal extracts the authenticated caller placed in the context by the
// authentication middleware. It writes a 401 and returns false when absent.
func getPrincipal(w http.ResponseWriter, r *http.Request) (shared.Principal, bool) {
	p, ok := shared.PrincipalFromContext(r.Context())
	if !ok {
		logger.FromContext(r.Context()).Warn("principal not found in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return shared.Principal{}, false
	}
	return p, true
}

// parseID parses a positive int64 identifier.
func parseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// getPathID extracts a positive int64 from the named chi URL parameter.
// It writes a 400 with message and returns false when invalid.
func getPathID(w http.ResponseWriter, r *http.Request, paramName, message string) (int64, bool) {
	raw := chi.URLParam(r, paramName)
	id, ok := parseID(raw)
	if !ok {
		logger.FromContext(r.Context()).Debug("invalid path parameter",
			slog.String("param_name", paramName),
			slog.String("value", raw))
		shared.RespondWithError(w, r, http.StatusBadRequest, message)
		return 0, false
	}
	return id, true
}

// handlePrincipalAndPathID is a composite helper that extracts both the caller
// and an ID path parameter, writing an error response if either fails.
func handlePrincipalAndPathID(
	w http.ResponseWriter,
	r *http.Request,
	paramName, message string,
) (shared.Principal, int64, bool) {
	p, ok := getPrincipal(w, r)
	if !ok {
		return shared.Principal{}, 0, false
	}
	id, ok := getPathID(w, r, paramName, message)
	if !ok {
		return shared.Principal{}, 0, false
	}
	return p, id, true
}

// queryInt reads a non-negative integer query parameter, returning def when
// absent or malformed.
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return def
	}
	return v
}

// decodeAndValidate reads a JSON body into req and validates it, writing a
// 400 and returning false on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := shared.DecodeJSON(w, r, req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return false
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return false
	}
	return true
}

