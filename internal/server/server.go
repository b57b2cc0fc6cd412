// Package server assembles the HTTP route tree.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/josh-kwaku/edificio/internal/auth"
	"github.com/josh-kwaku/edificio/internal/handler"
	"github.com/josh-kwaku/edificio/internal/middleware"
	"github.com/josh-kwaku/edificio/internal/repository"
)

var errMethodNotAllowed = &handler.AppError{Status: http.StatusMethodNotAllowed, Code: "METHOD_NOT_ALLOWED", Message: "Método no permitido"}

type Handlers struct {
	Health       *handler.HealthHandler
	Auth         *handler.AuthHandler
	Dashboard    *handler.DashboardHandler
	Apartments   *handler.ApartmentHandler
	Tenants      *handler.TenantHandler
	Providers    *handler.ProviderHandler
	Bank         *handler.BankHandler
	Transactions *handler.TransactionHandler
	Logbook      *handler.LogbookHandler
	Reports      *handler.ReportHandler
	Uploads      *handler.UploadHandler
	Backups      *handler.BackupHandler
	Updates      *handler.UpdateHandler
}

type tokenValidator interface {
	Validate(token string) (*auth.Claims, error)
}

type idempotencyStore interface {
	Get(ctx context.Context, key string, userID uuid.UUID, now time.Time) (*repository.IdempotencyCacheEntry, error)
	Set(ctx context.Context, entry *repository.IdempotencyCacheEntry) error
}

type Options struct {
	Tokens         tokenValidator
	Idempotency    idempotencyStore
	RequestTimeout time.Duration
	Spec           []byte
}

// NewRouter mounts the public endpoints and the authenticated /api/v1 tree.
func NewRouter(h Handlers, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.Tracing)
	r.Use(middleware.Logging)
	r.Use(middleware.Recovery)
	r.Use(middleware.Metrics)
	if opts.RequestTimeout > 0 {
		r.Use(chimw.Timeout(opts.RequestTimeout))
	}

	r.Get("/health", h.Health.Liveness)
	r.Get("/health/ready", h.Health.Readiness)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/docs", handler.ServeDocs("Edificio API"))
	r.Get("/docs/openapi.yaml", handler.ServeSpec(opts.Spec))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", h.Auth.Login)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(opts.Tokens))

			r.Get("/auth/me", h.Auth.Me)
			r.Get("/dashboard", h.Dashboard.Summary)

			r.Route("/apartments", func(r chi.Router) {
				r.Get("/", h.Apartments.List)
				r.Post("/", h.Apartments.Create)
				r.Get("/balances", h.Apartments.Balances)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.Apartments.Get)
					r.Put("/", h.Apartments.Update)
					r.Delete("/", h.Apartments.Delete)
					r.Get("/tenants", h.Apartments.Tenants)
					r.Get("/transactions", h.Apartments.Transactions)
					r.Get("/statement", h.Apartments.Statement)
					r.Get("/statement.pdf", h.Apartments.StatementPDF)
				})
			})

			r.Route("/tenants", func(r chi.Router) {
				r.Get("/", h.Tenants.List)
				r.Post("/", h.Tenants.Create)
				r.Get("/{id}", h.Tenants.Get)
				r.Put("/{id}", h.Tenants.Update)
				r.Delete("/{id}", h.Tenants.Delete)
			})

			r.Route("/providers", func(r chi.Router) {
				r.Get("/", h.Providers.List)
				r.Post("/", h.Providers.Create)
				r.Get("/directory.pdf", h.Providers.DirectoryPDF)
				r.Get("/{id}", h.Providers.Get)
				r.Put("/{id}", h.Providers.Update)
				r.Delete("/{id}", h.Providers.Delete)
			})

			r.Route("/bank-accounts", func(r chi.Router) {
				r.Get("/", h.Bank.ListAccounts)
				r.Post("/", h.Bank.CreateAccount)
				r.Get("/{id}", h.Bank.GetAccount)
				r.Put("/{id}", h.Bank.UpdateAccount)
				r.Delete("/{id}", h.Bank.DeleteAccount)
				r.Get("/{id}/statement", h.Bank.Statement)
				r.Get("/{id}/statement.pdf", h.Bank.StatementPDF)
			})

			r.Route("/bank-movements", func(r chi.Router) {
				r.Get("/", h.Bank.ListMovements)
				r.Post("/", h.Bank.CreateMovement)
				r.Get("/{id}", h.Bank.GetMovement)
				r.Put("/{id}", h.Bank.UpdateMovement)
				r.Delete("/{id}", h.Bank.DeleteMovement)
				r.Post("/{id}/reconcile", h.Bank.Reconcile)
			})

			r.Route("/transactions", func(r chi.Router) {
				r.Get("/", h.Transactions.List)
				r.Post("/", h.Transactions.Create)
				r.Post("/credit-sales", h.Transactions.CreateCreditSale)
				r.With(middleware.Idempotency(opts.Idempotency)).Post("/receipts", h.Transactions.CreateReceipt)
				r.Get("/receipts/unlinked", h.Transactions.UnlinkedReceipts)
				r.Post("/monthly-charges", h.Transactions.GenerateMonthlyCharges)
				r.Get("/{id}", h.Transactions.Get)
				r.Put("/{id}", h.Transactions.Update)
				r.Delete("/{id}", h.Transactions.Delete)
				r.Post("/{id}/link-bank", h.Transactions.LinkBank)
				r.Get("/{id}/receipt.pdf", h.Transactions.ReceiptPDF)
			})

			r.Route("/logbook", func(r chi.Router) {
				r.Get("/", h.Logbook.List)
				r.Post("/", h.Logbook.Create)
				r.Get("/export.pdf", h.Logbook.ExportPDF)
				r.Get("/{id}", h.Logbook.Get)
				r.Put("/{id}", h.Logbook.Update)
				r.Delete("/{id}", h.Logbook.Delete)
			})

			r.Route("/reports", func(r chi.Router) {
				r.Get("/monthly", h.Reports.Monthly)
				r.Get("/cumulative", h.Reports.Cumulative)
				r.Get("/footer", h.Reports.GetFooter)
				r.Put("/footer", h.Reports.SetFooter)
				r.Get("/notices", h.Reports.ListNotices)
				r.Post("/notices", h.Reports.CreateNotice)
				r.Put("/notices/order", h.Reports.ReorderNotices)
				r.Put("/notices/{id}", h.Reports.UpdateNotice)
				r.Delete("/notices/{id}", h.Reports.DeleteNotice)
			})

			r.Post("/uploads", h.Uploads.Upload)

			r.Route("/backups", func(r chi.Router) {
				r.Post("/", h.Backups.Create)
				r.Get("/status", h.Backups.Status)
				r.Get("/history", h.Backups.History)
				r.Get("/diagnostics", h.Backups.Diagnostics)
			})

			r.Get("/updates/check", h.Updates.Check)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		handler.RespondAppError(w, handler.ErrResourceNotFound, nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		handler.RespondAppError(w, errMethodNotAllowed, nil)
	})
	return r
}

// NewHTTPServer applies the listener timeouts. The write deadline always outlasts the
// per-request timeout.
func NewHTTPServer(addr string, h http.Handler, requestTimeout time.Duration) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      requestTimeout + 15*time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
