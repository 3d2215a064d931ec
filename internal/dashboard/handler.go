package dashboard

import (
	"log/slog"
	"net/http"

	"github.com/pflegewerk/lohnmonitor/internal/auth"
	"github.com/pflegewerk/lohnmonitor/internal/transport"
	"github.com/pflegewerk/lohnmonitor/pkg/logger"
)

type ServiceAPI interface {
	Summary() (*Summary, error)
	Alarms() ([]AlarmRow, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Service.Summary()
	if err != nil {
		h.Logger.Error("GetSummary: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, summary)
}

func (h *Handler) GetAlarms(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	rows, err := h.Service.Alarms()
	if err != nil {
		h.Logger.Error("GetAlarms: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	if user.IsViewer() {
		rows = MaskRows(rows)
		for i := range rows {
			// salary figures stay behind the view_salaries permission
			rows[i].Salary = nil
		}
	}

	h.WriteJSON(w, http.StatusOK, rows)
}
