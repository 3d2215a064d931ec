package employee

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/pflegewerk/lohnmonitor/internal/auth"
	"github.com/pflegewerk/lohnmonitor/internal/payroll"
	"github.com/pflegewerk/lohnmonitor/internal/tariff"
	"github.com/pflegewerk/lohnmonitor/internal/transport"
	"github.com/pflegewerk/lohnmonitor/pkg/logger"
)

type ServiceAPI interface {
	CreateEmployee(actor string, dto CreateEmployeeDTO) (*Employee, error)
	GetEmployee(id int64) (*Employee, error)
	ListEmployees(filter ListFilter) ([]*Employee, error)
	UpdateEmployee(actor string, id int64, dto UpdateEmployeeDTO) (*Employee, error)
	DeactivateEmployee(actor string, id int64) error
	DeleteEmployee(actor string, id int64) error
	PromotionStatusFor(emp *Employee) (PromotionStatus, error)
	SalaryFor(emp *Employee) (payroll.Breakdown, error)
	AssessmentFor(emp *Employee) tariff.Assessment
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

func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CreateEmployeeDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CreateEmployee: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	emp, err := h.Service.CreateEmployee(user.Email, dto)
	if err != nil {
		h.Logger.Error("CreateEmployee: service error", "error", err, "actor", user.Email)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("CreateEmployee: employee created",
		"employee_id", emp.ID,
		"personnel_number", emp.PersonnelNumber,
		"actor", user.Email)

	h.WriteJSON(w, http.StatusCreated, emp)
}

func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	emp, ok := h.employeeFromPath(w, r)
	if !ok {
		return
	}

	status, err := h.Service.PromotionStatusFor(emp)
	if err != nil {
		h.Logger.Error("GetEmployee: promotion evaluation failed", "error", err, "employee_id", emp.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, NewView(emp, status, user.IsViewer()))
}

func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	filter := ListFilter{
		Department: r.URL.Query().Get("department"),
	}
	if activeStr := r.URL.Query().Get("active"); activeStr != "" {
		if active, err := strconv.ParseBool(activeStr); err == nil {
			filter.Active = &active
		}
	}

	employees, err := h.Service.ListEmployees(filter)
	if err != nil {
		h.Logger.Error("ListEmployees: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	views := make([]EmployeeView, 0, len(employees))
	for _, emp := range employees {
		status, err := h.Service.PromotionStatusFor(emp)
		if err != nil {
			h.Logger.Error("ListEmployees: promotion evaluation failed", "error", err, "employee_id", emp.ID)
			h.HandleServiceError(w, err)
			return
		}
		views = append(views, NewView(emp, status, user.IsViewer()))
	}

	h.WriteJSON(w, http.StatusOK, views)
}

func (h *Handler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, ok := h.idFromPath(w, r)
	if !ok {
		return
	}

	var dto UpdateEmployeeDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("UpdateEmployee: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	emp, err := h.Service.UpdateEmployee(user.Email, id, dto)
	if err != nil {
		h.Logger.Error("UpdateEmployee: service error", "error", err, "employee_id", id, "actor", user.Email)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, emp)
}

// DeactivateEmployee is the soft removal: the record stays for
// reporting but drops out of listings and scans.
func (h *Handler) DeactivateEmployee(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, ok := h.idFromPath(w, r)
	if !ok {
		return
	}

	if err := h.Service.DeactivateEmployee(user.Email, id); err != nil {
		h.Logger.Error("DeactivateEmployee: service error", "error", err, "employee_id", id, "actor", user.Email)
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, ok := h.idFromPath(w, r)
	if !ok {
		return
	}

	if err := h.Service.DeleteEmployee(user.Email, id); err != nil {
		h.Logger.Error("DeleteEmployee: service error", "error", err, "employee_id", id, "actor", user.Email)
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetSalary(w http.ResponseWriter, r *http.Request) {
	emp, ok := h.employeeFromPath(w, r)
	if !ok {
		return
	}

	breakdown, err := h.Service.SalaryFor(emp)
	if err != nil {
		h.Logger.Error("GetSalary: service error", "error", err, "employee_id", emp.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, breakdown)
}

// GetPromotion returns the derived promotion status plus the step
// assessment reconstructed from the hire date.
func (h *Handler) GetPromotion(w http.ResponseWriter, r *http.Request) {
	emp, ok := h.employeeFromPath(w, r)
	if !ok {
		return
	}

	status, err := h.Service.PromotionStatusFor(emp)
	if err != nil {
		h.Logger.Error("GetPromotion: service error", "error", err, "employee_id", emp.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]any{
		"promotion":  status,
		"assessment": h.Service.AssessmentFor(emp),
	})
}

func (h *Handler) idFromPath(w http.ResponseWriter, r *http.Request) (int64, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.Logger.Error("invalid employee ID", "id", idStr)
		h.WriteError(w, http.StatusBadRequest, "invalid employee ID")
		return 0, false
	}
	return id, true
}

func (h *Handler) employeeFromPath(w http.ResponseWriter, r *http.Request) (*Employee, bool) {
	id, ok := h.idFromPath(w, r)
	if !ok {
		return nil, false
	}

	emp, err := h.Service.GetEmployee(id)
	if err != nil {
		h.HandleServiceError(w, err)
		return nil, false
	}
	return emp, true
}
