package settings

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/pflegewerk/lohnmonitor/internal/auth"
	"github.com/pflegewerk/lohnmonitor/internal/transport"
	"github.com/pflegewerk/lohnmonitor/pkg/logger"
)

type ServiceAPI interface {
	All() (map[string]string, error)
	Update(values map[string]string) error
	ResolveEngineConfig() (EngineConfig, error)
}

// AuditRecorder appends an audit entry, fire-and-forget.
type AuditRecorder interface {
	Record(actor, action, entity string, entityID int64, details any)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
	Audit   AuditRecorder
}

func NewHandler(service ServiceAPI, audit AuditRecorder) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
		Audit:       audit,
	}
}

func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	values, err := h.Service.All()
	if err != nil {
		h.Logger.Error("GetSettings: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, values)
}

// UpdateSettings applies a batch of key/value changes. Validation
// happens before any write, so a bad value never half-applies a batch.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var values map[string]string
	if err := json.NewDecoder(r.Body).Decode(&values); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(values) == 0 {
		h.WriteError(w, http.StatusBadRequest, "no settings provided")
		return
	}

	if err := h.Service.Update(values); err != nil {
		h.Logger.Error("UpdateSettings: service error", "error", err, "actor", user.Email)
		h.HandleServiceError(w, err)
		return
	}

	if h.Audit != nil {
		h.Audit.Record(user.Email, "settings.update", "settings", 0, values)
	}

	updated, err := h.Service.All()
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, updated)
}
