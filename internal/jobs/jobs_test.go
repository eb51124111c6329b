package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"crm-service/internal/models"
	"crm-service/internal/upstream"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeAPI struct {
	helloErr   error
	stats      *models.Stats
	statsErr   error
	orders     []models.OrderSummary
	ordersErr  error
	restock    *upstream.RestockResponse
	restockErr error
}

func (f *fakeAPI) Hello(context.Context) (*upstream.HelloResponse, error) {
	if f.helloErr != nil {
		return nil, f.helloErr
	}
	return &upstream.HelloResponse{Status: "healthy", Hello: "Hello, CRM!"}, nil
}

func (f *fakeAPI) Stats(context.Context) (*models.Stats, error) {
	return f.stats, f.statsErr
}

func (f *fakeAPI) PendingOrdersSince(context.Context, time.Time) ([]models.OrderSummary, error) {
	return f.orders, f.ordersErr
}

func (f *fakeAPI) RestockLowStock(context.Context, int) (*upstream.RestockResponse, error) {
	return f.restock, f.restockErr
}

func observedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.InfoLevel)
	return zap.New(core), logs
}

func TestHeartbeatMonitorAlive(t *testing.T) {
	logger, logs := observedLogger()
	job := NewHeartbeatMonitor(&fakeAPI{}, logger)

	summary, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary["alive"])
	assert.Equal(t, 1, logs.FilterMessage("CRM is alive").Len())
}

func TestHeartbeatMonitorFailure(t *testing.T) {
	logger, logs := observedLogger()
	job := NewHeartbeatMonitor(&fakeAPI{helloErr: errors.New("connection refused")}, logger)

	_, err := job.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, logs.FilterMessage("Heartbeat check failed").Len())
}

func TestOrderReminderScannerLogsPerOrder(t *testing.T) {
	email := "alice@example.com"
	orderWithEmail := models.OrderSummary{
		OrderID:       uuid.New(),
		OrderDate:     time.Now(),
		TotalAmount:   decimal.NewFromInt(25),
		CustomerEmail: &email,
	}
	orderWithoutEmail := models.OrderSummary{
		OrderID:     uuid.New(),
		OrderDate:   time.Now(),
		TotalAmount: decimal.NewFromInt(10),
	}

	logger, logs := observedLogger()
	job := NewOrderReminderScanner(&fakeAPI{orders: []models.OrderSummary{orderWithEmail, orderWithoutEmail}}, logger, 7)

	summary, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, summary["orders"])

	reminders := logs.FilterMessage("Order reminder").All()
	require.Len(t, reminders, 2)
	assert.Equal(t, email, reminders[0].ContextMap()["customer_email"])
	// Missing customer reference degrades to the sentinel.
	assert.Equal(t, MissingEmailSentinel, reminders[1].ContextMap()["customer_email"])

	assert.Equal(t, 0, logs.FilterMessage("No orders found").Len())
	assert.Equal(t, 1, logs.FilterMessage("Order reminders processed").Len())
}

func TestOrderReminderScannerEmptyResult(t *testing.T) {
	logger, logs := observedLogger()
	job := NewOrderReminderScanner(&fakeAPI{}, logger, 7)

	summary, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, summary["orders"])

	// Exactly one marker, zero order records; this is not an error.
	assert.Equal(t, 1, logs.FilterMessage("No orders found").Len())
	assert.Equal(t, 0, logs.FilterMessage("Order reminder").Len())
}

func TestOrderReminderScannerCutoffWindow(t *testing.T) {
	var gotCutoff time.Time
	api := &cutoffCapturingAPI{capture: &gotCutoff}

	logger, _ := observedLogger()
	job := NewOrderReminderScanner(api, logger, 7)
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	job.now = func() time.Time { return now }

	_, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, now.AddDate(0, 0, -7), gotCutoff)
}

type cutoffCapturingAPI struct {
	fakeAPI
	capture *time.Time
}

func (c *cutoffCapturingAPI) PendingOrdersSince(_ context.Context, cutoff time.Time) ([]models.OrderSummary, error) {
	*c.capture = cutoff
	return nil, nil
}

func TestReportGenerator(t *testing.T) {
	logger, logs := observedLogger()
	job := NewReportGenerator(&fakeAPI{stats: &models.Stats{
		TotalCustomers: 3,
		TotalOrders:    2,
		TotalRevenue:   decimal.RequireFromString("99.50"),
	}}, logger)

	summary, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, summary["customers"])
	assert.Equal(t, 2, summary["orders"])

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "Report: 3 customers, 2 orders, 99.50 revenue", logs.All()[0].Message)
}

func TestReportGeneratorFailureSurfaces(t *testing.T) {
	logger, logs := observedLogger()
	job := NewReportGenerator(&fakeAPI{statsErr: errors.New("upstream down")}, logger)

	_, err := job.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, logs.FilterMessage("Report generation failed").Len())
}

func TestStockScanJob(t *testing.T) {
	logger, logs := observedLogger()
	job := NewStockScanJob(&fakeAPI{restock: &upstream.RestockResponse{
		UpdatedProducts: []upstream.RestockedProduct{
			{ID: "p1", Name: "Beans", Stock: 13},
			{ID: "p2", Name: "Filters", Stock: 11},
		},
		Message: "Restocked 2 low-stock products",
	}}, logger, 10)

	summary, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, summary["restocked"])
	assert.Equal(t, 1, logs.FilterMessage("Stock update").Len())
	assert.Equal(t, 2, logs.FilterMessage("Restocked product").Len())
}
