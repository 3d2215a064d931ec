package notification

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/pflegewerk/lohnmonitor/internal/auth"
	"github.com/pflegewerk/lohnmonitor/internal/transport"
	"github.com/pflegewerk/lohnmonitor/pkg/logger"
)

type ServiceAPI interface {
	ListNotifications(filter ListFilter) ([]*Notification, error)
	GetNotification(id int64) (*Notification, error)
	Acknowledge(actor string, id int64) (*Notification, error)
	AcknowledgeForEmployee(actor string, employeeID int64) (int, error)
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

func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{Limit: 50}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 200 {
			filter.Limit = l
		}
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			filter.Offset = o
		}
	}
	if ackStr := r.URL.Query().Get("acknowledged"); ackStr != "" {
		if ack, err := strconv.ParseBool(ackStr); err == nil {
			filter.Acknowledged = &ack
		}
	}
	if empStr := r.URL.Query().Get("employee_id"); empStr != "" {
		if empID, err := strconv.ParseInt(empStr, 10, 64); err == nil {
			filter.EmployeeID = &empID
		}
	}

	notifications, err := h.Service.ListNotifications(filter)
	if err != nil {
		h.Logger.Error("ListNotifications: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	if notifications == nil {
		notifications = []*Notification{}
	}
	h.WriteJSON(w, http.StatusOK, notifications)
}

func (h *Handler) GetNotification(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idFromPath(w, r)
	if !ok {
		return
	}

	n, err := h.Service.GetNotification(id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, n)
}

func (h *Handler) AcknowledgeNotification(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, ok := h.idFromPath(w, r)
	if !ok {
		return
	}

	n, err := h.Service.Acknowledge(user.Email, id)
	if err != nil {
		h.Logger.Error("AcknowledgeNotification: service error", "error", err, "notification_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, n)
}

// AcknowledgeForEmployee closes every open notification of one
// employee, for clearing a dashboard row in one click.
func (h *Handler) AcknowledgeForEmployee(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	empStr := chi.URLParam(r, "employeeId")
	employeeID, err := strconv.ParseInt(empStr, 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid employee ID")
		return
	}

	acked, err := h.Service.AcknowledgeForEmployee(user.Email, employeeID)
	if err != nil {
		h.Logger.Error("AcknowledgeForEmployee: service error", "error", err, "employee_id", employeeID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]int{"acknowledged": acked})
}

func (h *Handler) idFromPath(w http.ResponseWriter, r *http.Request) (int64, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid notification ID")
		return 0, false
	}
	return id, true
}
