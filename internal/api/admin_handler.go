package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/phrazzld/flashdeck/internal/api/shared"
	"github.com/phrazzld/flashdeck/internal/service"
)

// AdminHandler serves the /admin routes. The router mounts it behind
// middleware.RequireAdmin.
type AdminHandler struct {
	admin  service.AdminService
	logger *slog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(admin service.AdminService, logger *slog.Logger) *AdminHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AdminHandler{
		admin:  admin,
		logger: logger.With(slog.String("component", "admin_handler")),
	}
}

// ListUsers handles GET /admin/users?limit=&offset=.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.admin.ListUsers(r.Context(), queryInt(r, "limit", 0), queryInt(r, "offset", 0))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list users")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, map[string]any{"users": users})
}

// ListDecks handles GET /admin/decks?limit=&offset=.
func (h *AdminHandler) ListDecks(w http.ResponseWriter, r *http.Request) {
	decks, err := h.admin.ListDecks(r.Context(), queryInt(r, "limit", 0), queryInt(r, "offset", 0))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list decks")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, map[string]any{"decks": decks})
}

// CreateAssignment handles POST /admin/assignments.
func (h *AdminHandler) CreateAssignment(w http.ResponseWriter, r *http.Request) {
	p, ok := getPrincipal(w, r)
	if !ok {
		return
	}

	var req AssignmentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	assignment, err := h.admin.Assign(r.Context(), p.UserID, req.DeckID, req.UserID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to assign deck")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, assignment)
}

// ListAssignments handles GET /admin/assignments?userId=.
func (h *AdminHandler) ListAssignments(w http.ResponseWriter, r *http.Request) {
	var userID int64
	if raw := r.URL.Query().Get("userId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid user ID")
			return
		}
		userID = id
	}

	assignments, err := h.admin.ListAssignments(r.Context(), userID, queryInt(r, "limit", 0), queryInt(r, "offset", 0))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list assignments")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, map[string]any{"assignments": assignments})
}

// DeleteAssignment handles DELETE /admin/assignments/{assignmentId}.
func (h *AdminHandler) DeleteAssignment(w http.ResponseWriter, r *http.Request) {
	id, ok := getPathID(w, r, "assignmentId", "Invalid assignment ID")
	if !ok {
		return
	}

	if err := h.admin.Unassign(r.Context(), id); err != nil {
		HandleAPIError(w, r, err, "Failed to remove assignment")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
