package user

import (
	"log/slog"
	"net/http"

	"github.com/pflegewerk/lohnmonitor/internal/auth"
	"github.com/pflegewerk/lohnmonitor/internal/transport"
	"github.com/pflegewerk/lohnmonitor/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		repo:        repo,
	}
}

// GetMe returns the authenticated user's profile with the permission
// set the middleware already expanded.
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	ctxUser, ok := auth.UserFromContext(r.Context())
	if !ok || ctxUser == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	stored, err := h.repo.GetByID(ctxUser.ID)
	if err != nil {
		h.Logger.Error("GetMe: failed to load user", "error", err, "user_id", ctxUser.ID)
		h.WriteError(w, http.StatusNotFound, "user not found")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]any{
		"id":          stored.ID,
		"email":       stored.Email,
		"name":        stored.Name,
		"role":        stored.Role,
		"permissions": ctxUser.Permissions,
	})
}
