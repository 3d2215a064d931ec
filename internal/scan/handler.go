package scan

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/pflegewerk/lohnmonitor/internal"
	"github.com/pflegewerk/lohnmonitor/internal/transport"
	"github.com/pflegewerk/lohnmonitor/pkg/logger"
)

// Runner triggers a scan outside the daily schedule.
type Runner interface {
	RunNow(ctx context.Context) (*Report, error)
}

type Handler struct {
	*transport.BaseHandler
	Runner Runner
}

func NewHandler(runner Runner) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Runner:      runner,
	}
}

// TriggerScan runs a scan synchronously and returns its report.
func (h *Handler) TriggerScan(w http.ResponseWriter, r *http.Request) {
	report, err := h.Runner.RunNow(r.Context())
	if err != nil {
		if errors.Is(err, internal.ErrScanInProgress) {
			h.WriteError(w, http.StatusConflict, "a scan is already running")
			return
		}
		h.Logger.Error("TriggerScan: scan failed", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, report)
}
