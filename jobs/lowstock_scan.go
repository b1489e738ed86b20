package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hibiken/asynq"

	"github.com/shopledger/shopledger/internal/catalog"
)

// TaskTypeLowStockScan identifies the low stock scan task.
const TaskTypeLowStockScan = "inventory:lowstock_scan"

// LowStockLister reports products at or below a stock threshold.
type LowStockLister interface {
	ListLowStock(ctx context.Context, threshold int64) ([]catalog.Product, error)
}

// LowStockScanJob checks stock levels and alerts when products run low.
type LowStockScanJob struct {
	catalog    LowStockLister
	client     *Client
	threshold  int64
	alertEmail string
	logger     *slog.Logger
}

// NewLowStockScanJob constructs the job.
func NewLowStockScanJob(lister LowStockLister, client *Client, threshold int64, alertEmail string, logger *slog.Logger) *LowStockScanJob {
	return &LowStockScanJob{
		catalog:    lister,
		client:     client,
		threshold:  threshold,
		alertEmail: alertEmail,
		logger:     logger,
	}
}

// NewLowStockScanTask builds the task used for cron registration.
func NewLowStockScanTask() *asynq.Task {
	return asynq.NewTask(TaskTypeLowStockScan, nil)
}

// Handle runs the scan and enqueues an alert email when needed.
func (j *LowStockScanJob) Handle(ctx context.Context, _ *asynq.Task) error {
	products, err := j.catalog.ListLowStock(ctx, j.threshold)
	if err != nil {
		return fmt.Errorf("low stock scan: %w", err)
	}
	if len(products) == 0 {
		j.logger.Info("low stock scan clean", slog.Int64("threshold", j.threshold))
		return nil
	}

	var body strings.Builder
	fmt.Fprintf(&body, "%d product(s) at or below the threshold of %d units:\n\n", len(products), j.threshold)
	for _, p := range products {
		fmt.Fprintf(&body, "- %s: %d left\n", p.Name, p.Stock)
	}

	j.logger.Warn("low stock detected",
		slog.Int("products", len(products)),
		slog.Int64("threshold", j.threshold))

	if j.client == nil || j.alertEmail == "" {
		return nil
	}
	_, err = j.client.EnqueueSendEmail(ctx, SendEmailPayload{
		To:      j.alertEmail,
		Subject: "Low stock alert",
		Body:    body.String(),
	})
	if err != nil {
		return fmt.Errorf("low stock scan: enqueue alert: %w", err)
	}
	return nil
}
