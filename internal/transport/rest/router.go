package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/xtractpay/xtractpay/internal/activity"
	"github.com/xtractpay/xtractpay/internal/advisor"
	"github.com/xtractpay/xtractpay/internal/analytics"
	"github.com/xtractpay/xtractpay/internal/auth"
	"github.com/xtractpay/xtractpay/internal/bill"
	"github.com/xtractpay/xtractpay/internal/budget"
	"github.com/xtractpay/xtractpay/internal/extraction"
	"github.com/xtractpay/xtractpay/internal/grievance"
	"github.com/xtractpay/xtractpay/internal/transport/middleware"
	"github.com/xtractpay/xtractpay/internal/transport/swagger"
	"github.com/xtractpay/xtractpay/internal/user"
)

// Handlers collects every transport handler the router wires up. Nil
// entries are skipped so partial deployments (worker-only, no LLM key)
// still serve the routes they can.
type Handlers struct {
	Auth       *auth.Handler
	User       *user.Handler
	Bill       *bill.Handler
	Grievance  *grievance.Handler
	Analytics  *analytics.Handler
	Advisor    *advisor.Handler
	Extraction *extraction.Handler
	Budget     *budget.Handler
	Activity   *activity.Handler
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, h Handlers, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)
	rbac := auth.NewRBACAuthorization(logger)

	router.Use(middleware.CORS)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	// Legacy ingest endpoint kept at its original path for the OCR
	// pipeline, which posts extraction results without auth headers.
	if h.Bill != nil {
		router.Post("/api/send-expense", h.Bill.IngestExpense)
		router.Get("/api/send-expense", h.Bill.MethodNotAllowed)
		router.Put("/api/send-expense", h.Bill.MethodNotAllowed)
		router.Delete("/api/send-expense", h.Bill.MethodNotAllowed)
	}

	// Legacy analysis endpoints, same contract as the original pipeline.
	if h.Advisor != nil {
		router.Post("/api/analyze-cost", h.Advisor.AnalyzeCost)
		router.Post("/api/analyze-tax", h.Advisor.AnalyzeTax)
	}

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		if h.Auth != nil {
			r.Route("/auth", func(sr chi.Router) {
				sr.Post("/login", h.Auth.Login)
				sr.Post("/refresh", h.Auth.RefreshToken)
				sr.Post("/logout", h.Auth.Logout)
			})
		}

		if h.Auth == nil {
			return
		}

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			if h.User != nil {
				pr.Get("/users/me", h.User.GetCurrentUser)

				pr.Route("/users", func(ur chi.Router) {
					ur.Group(func(vr chi.Router) {
						vr.Use(rbac.Require("users", "view"))
						vr.Get("/", h.User.ListUsers)
						vr.Get("/{id}", h.User.GetUser)
					})

					// Mutations are admin-only per the users/edit rule.
					ur.Group(func(ar chi.Router) {
						ar.Use(rbac.RequireManageUsers())
						ar.Post("/", h.User.CreateUser)
						ar.Patch("/{id}", h.User.UpdateUser)
						ar.Delete("/{id}", h.User.DeleteUser)
						ar.Post("/{id}/employees", h.User.AssignEmployee)
						ar.Delete("/{id}/employees/{employeeID}", h.User.UnassignEmployee)
					})
				})
			}

			if h.Bill != nil {
				pr.Route("/bills", func(br chi.Router) {
					br.Post("/", h.Bill.SubmitBill)
					br.Get("/mine", h.Bill.GetMyBills)
					br.Get("/team", h.Bill.GetTeamBills)
					br.Get("/flagged", h.Bill.GetFlaggedBills)
					br.Get("/{id}", h.Bill.GetBill)
					br.Patch("/{id}", h.Bill.UpdateBill)

					br.Group(func(mr chi.Router) {
						mr.Use(rbac.RequireApproveExpense())
						mr.Patch("/{id}/approve", h.Bill.ApproveBill)
						mr.Patch("/{id}/reject", h.Bill.RejectBill)
					})
				})
			}

			if h.Grievance != nil {
				pr.Route("/grievances", func(gr chi.Router) {
					gr.Post("/", h.Grievance.FileGrievance)
					gr.Get("/mine", h.Grievance.GetMyGrievances)
					gr.Get("/{id}", h.Grievance.GetGrievance)

					gr.Group(func(mr chi.Router) {
						mr.Use(auth.RequireRole(auth.RoleManager, logger))
						mr.Get("/", h.Grievance.GetAllGrievances)
						mr.Patch("/{id}/resolve", h.Grievance.ResolveGrievance)
					})
				})
			}

			if h.Analytics != nil {
				pr.Route("/analytics", func(ar chi.Router) {
					ar.Use(rbac.RequireViewReports())
					ar.Get("/summary", h.Analytics.GetSummary)
					ar.Get("/departments", h.Analytics.GetDepartments)
					ar.Get("/categories", h.Analytics.GetCategories)
					ar.Get("/validation", h.Analytics.GetValidationStats)
					ar.Get("/vendors", h.Analytics.GetTopVendors)
					ar.Get("/trends", h.Analytics.GetTrends)
				})
			}

			if h.Extraction != nil {
				pr.Post("/receipts/extract", h.Extraction.ExtractReceipt)
			}

			if h.Budget != nil {
				pr.Route("/budgets", func(br chi.Router) {
					br.Use(auth.RequireRole(auth.RoleManager, logger))
					br.Get("/", h.Budget.ListBudgets)

					br.Group(func(ar chi.Router) {
						ar.Use(auth.RequireRole(auth.RoleAdmin, logger))
						ar.Post("/", h.Budget.CreateBudget)
						ar.Patch("/{id}", h.Budget.UpdateBudget)
						ar.Delete("/{id}", h.Budget.DeleteBudget)
					})
				})

				pr.Route("/controls", func(cr chi.Router) {
					cr.Use(auth.RequireRole(auth.RoleManager, logger))
					cr.Get("/", h.Budget.ListControls)

					cr.Group(func(ar chi.Router) {
						ar.Use(auth.RequireRole(auth.RoleAdmin, logger))
						ar.Post("/", h.Budget.CreateControl)
						ar.Patch("/{id}", h.Budget.UpdateControl)
						ar.Delete("/{id}", h.Budget.DeleteControl)
					})
				})
			}

			if h.Activity != nil {
				pr.Group(func(ar chi.Router) {
					ar.Use(auth.RequireRole(auth.RoleManager, logger))
					ar.Get("/activity", h.Activity.ListActivity)
					ar.Get("/alerts", h.Activity.ListAlerts)
				})
			}
		})
	})
}
