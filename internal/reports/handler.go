package reports

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/shopledger/shopledger/internal/auth"
	"github.com/shopledger/shopledger/internal/platform/httpx"
)

const dateLayout = "2006-01-02"

// Handler wires HTTP endpoints for profit reports and transaction listings.
type Handler struct {
	logger  *slog.Logger
	service *Service
	guard   auth.Middleware
	printer *message.Printer
}

// NewHandler constructs the reports handler.
func NewHandler(logger *slog.Logger, service *Service, guard auth.Middleware) *Handler {
	return &Handler{
		logger:  logger,
		service: service,
		guard:   guard,
		printer: message.NewPrinter(language.English),
	}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireUser())
		r.Get("/daily", h.Daily)
		r.Get("/monthly", h.Monthly)
		r.Get("/summary", h.Summary)
		r.Get("/transactions", h.Transactions)
	})
}

func (h *Handler) Daily(w http.ResponseWriter, r *http.Request) {
	day := parseDateOr(r.URL.Query().Get("date"), time.Now())
	aggregates, err := h.service.Daily(r.Context(), day)
	if err != nil {
		h.logger.Error("daily report", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if aggregates == nil {
		aggregates = []ProductAggregate{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"date":               day.Format(dateLayout),
		"report":             aggregates,
		"total_daily_profit": GrandTotal(aggregates),
	})
}

func (h *Handler) Monthly(w http.ResponseWriter, r *http.Request) {
	month, year := parseMonthYearOr(r.URL.Query(), time.Now())
	aggregates, err := h.service.Monthly(r.Context(), month, year)
	if err != nil {
		h.logger.Error("monthly report", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if aggregates == nil {
		aggregates = []ProductAggregate{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"month":                int(month),
		"year":                 year,
		"report":               aggregates,
		"total_monthly_profit": GrandTotal(aggregates),
	})
}

// Summary returns the daily and monthly views side by side, fetched
// concurrently.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	day := parseDateOr(r.URL.Query().Get("date"), now)
	month, year := parseMonthYearOr(r.URL.Query(), day)

	var daily, monthly []ProductAggregate
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		daily, err = h.service.Daily(ctx, day)
		return err
	})
	g.Go(func() error {
		var err error
		monthly, err = h.service.Monthly(ctx, month, year)
		return err
	})
	if err := g.Wait(); err != nil {
		h.logger.Error("report summary", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	dailyTotal := GrandTotal(daily)
	monthlyTotal := GrandTotal(monthly)
	httpx.JSON(w, http.StatusOK, map[string]any{
		"date":                 day.Format(dateLayout),
		"month":                int(month),
		"year":                 year,
		"daily_report":         emptyIfNil(daily),
		"monthly_report":       emptyIfNil(monthly),
		"total_daily_profit":   dailyTotal,
		"total_monthly_profit": monthlyTotal,
		"headline": h.printer.Sprintf("Profit %s on %s, %s in %s %d",
			dailyTotal.StringFixed(2), day.Format(dateLayout), monthlyTotal.StringFixed(2), month, year),
	})
}

func (h *Handler) Transactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := TransactionFilter{
		Customer: q.Get("customer"),
	}
	if raw := q.Get("product"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			filter.ProductID = id
		}
	}
	if raw := q.Get("date"); raw != "" {
		// Malformed dates drop the filter rather than erroring.
		if day, err := time.Parse(dateLayout, raw); err == nil {
			filter.Date = &day
		}
	}

	records, err := h.service.Transactions(r.Context(), filter)
	if err != nil {
		h.logger.Error("transaction list", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"transactions": records,
	})
}

func emptyIfNil(aggregates []ProductAggregate) []ProductAggregate {
	if aggregates == nil {
		return []ProductAggregate{}
	}
	return aggregates
}

func parseDateOr(raw string, fallback time.Time) time.Time {
	if raw == "" {
		return fallback
	}
	day, err := time.Parse(dateLayout, raw)
	if err != nil {
		return fallback
	}
	return day
}

func parseMonthYearOr(q map[string][]string, fallback time.Time) (time.Month, int) {
	month := fallback.Month()
	year := fallback.Year()
	if raw := first(q, "month"); raw != "" {
		if m, err := strconv.Atoi(raw); err == nil && m >= 1 && m <= 12 {
			month = time.Month(m)
		}
	}
	if raw := first(q, "year"); raw != "" {
		if y, err := strconv.Atoi(raw); err == nil && y > 0 {
			year = y
		}
	}
	return month, year
}

func first(q map[string][]string, key string) string {
	if vals := q[key]; len(vals) > 0 {
		return vals[0]
	}
	return ""
}
