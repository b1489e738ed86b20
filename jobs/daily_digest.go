package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hibiken/asynq"

	"github.com/shopledger/shopledger/internal/reports"
)

// TaskTypeDailyDigest identifies the daily sales digest task.
const TaskTypeDailyDigest = "report:daily_digest"

// DailyReporter produces per-product profit aggregates for a single day.
type DailyReporter interface {
	Daily(ctx context.Context, day time.Time) ([]reports.ProductAggregate, error)
}

// DailyDigestJob summarizes the previous day's sales and mails the digest.
type DailyDigestJob struct {
	reports    DailyReporter
	client     *Client
	alertEmail string
	logger     *slog.Logger
}

// NewDailyDigestJob constructs the job.
func NewDailyDigestJob(reporter DailyReporter, client *Client, alertEmail string, logger *slog.Logger) *DailyDigestJob {
	return &DailyDigestJob{
		reports:    reporter,
		client:     client,
		alertEmail: alertEmail,
		logger:     logger,
	}
}

// NewDailyDigestTask builds the task used for cron registration.
func NewDailyDigestTask() *asynq.Task {
	return asynq.NewTask(TaskTypeDailyDigest, nil)
}

// Handle aggregates yesterday's sales and enqueues the digest email.
func (j *DailyDigestJob) Handle(ctx context.Context, _ *asynq.Task) error {
	day := time.Now().UTC().AddDate(0, 0, -1)
	aggregates, err := j.reports.Daily(ctx, day)
	if err != nil {
		return fmt.Errorf("daily digest: %w", err)
	}
	total := reports.GrandTotal(aggregates)

	var body strings.Builder
	fmt.Fprintf(&body, "Sales digest for %s\n\n", day.Format("2006-01-02"))
	if len(aggregates) == 0 {
		body.WriteString("No sales recorded.\n")
	} else {
		for _, agg := range aggregates {
			fmt.Fprintf(&body, "- %s: %d sold, profit %s\n", agg.ProductName, agg.TotalQuantity, agg.TotalProfit.StringFixed(2))
		}
		fmt.Fprintf(&body, "\nTotal profit: %s\n", total.StringFixed(2))
	}

	j.logger.Info("daily digest generated",
		slog.String("day", day.Format("2006-01-02")),
		slog.Int("products", len(aggregates)),
		slog.String("total_profit", total.StringFixed(2)))

	if j.client == nil || j.alertEmail == "" {
		return nil
	}
	_, err = j.client.EnqueueSendEmail(ctx, SendEmailPayload{
		To:      j.alertEmail,
		Subject: "Daily sales digest " + day.Format("2006-01-02"),
		Body:    body.String(),
	})
	if err != nil {
		return fmt.Errorf("daily digest: enqueue email: %w", err)
	}
	return nil
}
