package handler

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/edificio/internal/logging"
	"github.com/josh-kwaku/edificio/internal/service"
	"github.com/josh-kwaku/edificio/internal/update"
)

type dashboardService interface {
	Summary(ctx context.Context) (*service.Dashboard, error)
}

type DashboardHandler struct {
	dashboard dashboardService
}

func NewDashboardHandler(dashboard dashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

type dashboardDTO struct {
	Units             int              `json:"units"`
	Registrations     int              `json:"registrations"`
	Owners            int              `json:"owners"`
	Tenants           int              `json:"tenants"`
	UnitsWithBoth     int              `json:"units_with_both"`
	OwnersMonthly     decimal.Decimal  `json:"owners_monthly"`
	TenantsMonthly    decimal.Decimal  `json:"tenants_monthly"`
	Income            decimal.Decimal  `json:"income"`
	Expense           decimal.Decimal  `json:"expense"`
	Balance           decimal.Decimal  `json:"balance"`
	OutstandingCredit decimal.Decimal  `json:"outstanding_credit"`
	Recent            []transactionDTO `json:"recent"`
}

func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	d, err := h.dashboard.Summary(r.Context())
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to build dashboard", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, dashboardDTO{
		Units:             d.Units,
		Registrations:     d.Registrations,
		Owners:            d.Owners,
		Tenants:           d.Tenants,
		UnitsWithBoth:     d.UnitsWithBoth,
		OwnersMonthly:     money(d.OwnersMonthly),
		TenantsMonthly:    money(d.TenantsMonthly),
		Income:            money(d.Income),
		Expense:           money(d.Expense),
		Balance:           money(d.Balance),
		OutstandingCredit: money(d.OutstandingCredit),
		Recent:            toTransactionDTOs(d.Recent),
	})
}

type updateChecker interface {
	Check(ctx context.Context) (*update.Result, error)
}

type UpdateHandler struct {
	checker updateChecker
}

func NewUpdateHandler(checker updateChecker) *UpdateHandler {
	return &UpdateHandler{checker: checker}
}

// Check asks the release feed whether a newer version than the running one exists.
func (h *UpdateHandler) Check(w http.ResponseWriter, r *http.Request) {
	res, err := h.checker.Check(r.Context())
	if err != nil {
		logging.FromContext(r.Context()).Warn("update check failed", "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, res)
}
