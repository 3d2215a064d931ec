package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/cors"

	"github.com/pflegewerk/lohnmonitor/internal/auth"
	"github.com/pflegewerk/lohnmonitor/internal/dashboard"
	"github.com/pflegewerk/lohnmonitor/internal/employee"
	"github.com/pflegewerk/lohnmonitor/internal/notification"
	"github.com/pflegewerk/lohnmonitor/internal/scan"
	"github.com/pflegewerk/lohnmonitor/internal/settings"
	"github.com/pflegewerk/lohnmonitor/internal/transport/middleware"
	"github.com/pflegewerk/lohnmonitor/internal/transport/swagger"
	"github.com/pflegewerk/lohnmonitor/internal/user"
)

// Handlers bundles every HTTP handler the router mounts.
type Handlers struct {
	Auth         *auth.Handler
	RBAC         *auth.RBACAuthorization
	User         *user.Handler
	Employee     *employee.Handler
	Notification *notification.Handler
	Dashboard    *dashboard.Handler
	Settings     *settings.Handler
	Scan         *scan.Handler
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, h Handlers, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	// Apply global middleware
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Trace-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware())
	router.Use(middleware.LoggingMiddleware(logger))

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	// Swagger UI route at root
	router.Handle("/swagger/*", swagger.Handler())

	// Mount API under /api/v1 to match OpenAPI basePath
	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Auth routes
		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", h.Auth.Login)
			sr.Post("/refresh", h.Auth.RefreshToken)
			sr.Post("/logout", h.Auth.Logout)
		})

		// Protected routes that require authentication
		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			// Current user
			pr.Get("/users/me", h.User.GetMe)

			// Employee routes
			pr.Route("/employees", func(er chi.Router) {
				er.Group(func(vr chi.Router) {
					vr.Use(h.RBAC.RequireViewEmployees())
					vr.Get("/", h.Employee.ListEmployees)
					vr.Get("/{id}", h.Employee.GetEmployee)
					vr.Get("/{id}/promotion", h.Employee.GetPromotion)
				})

				er.Group(func(sr chi.Router) {
					sr.Use(h.RBAC.RequireViewSalaries())
					sr.Get("/{id}/salary", h.Employee.GetSalary)
				})

				er.Group(func(mr chi.Router) {
					mr.Use(h.RBAC.RequireManageEmployees())
					mr.Post("/", h.Employee.CreateEmployee)
					mr.Put("/{id}", h.Employee.UpdateEmployee)
					mr.Patch("/{id}/deactivate", h.Employee.DeactivateEmployee)
				})

				er.Group(func(dr chi.Router) {
					dr.Use(h.RBAC.RequireDeleteEmployees())
					dr.Delete("/{id}", h.Employee.DeleteEmployee)
				})
			})

			// Dashboard routes
			pr.Route("/dashboard", func(dr chi.Router) {
				dr.Use(h.RBAC.RequireViewEmployees())
				dr.Get("/summary", h.Dashboard.GetSummary)
				dr.Get("/alarms", h.Dashboard.GetAlarms)
			})

			// Notification routes
			pr.Route("/notifications", func(nr chi.Router) {
				nr.Group(func(vr chi.Router) {
					vr.Use(h.RBAC.RequireViewEmployees())
					vr.Get("/", h.Notification.ListNotifications)
					vr.Get("/{id}", h.Notification.GetNotification)
				})

				nr.Group(func(ar chi.Router) {
					ar.Use(h.RBAC.RequireAcknowledgeAlerts())
					ar.Patch("/{id}/acknowledge", h.Notification.AcknowledgeNotification)
					ar.Post("/acknowledge-employee/{employeeId}", h.Notification.AcknowledgeForEmployee)
				})
			})

			// Admin routes
			pr.Route("/admin", func(ar chi.Router) {
				ar.Group(func(sr chi.Router) {
					sr.Use(h.RBAC.RequireManageSettings())
					sr.Get("/settings", h.Settings.GetSettings)
					sr.Put("/settings", h.Settings.UpdateSettings)
				})

				ar.Group(func(scr chi.Router) {
					scr.Use(h.RBAC.RequireRunScans())
					scr.Post("/scan", h.Scan.TriggerScan)
				})
			})
		})
	})
}
