package gateway

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/venue-console/internal/models"
	"github.com/magabrotheeeer/venue-console/internal/notify"
)

func TestFetchPeriodAnalytics(t *testing.T) {
	ctx := context.Background()

	t.Run("decodes known and extra metrics", func(t *testing.T) {
		f := setup(t, "abc")
		f.srv.SetAnalytics(models.PeriodLast7Days, map[string]any{
			"totalTickets": 120,
			"totalAmount":  "₹12,000",
			"growth":       12.5,
			"dailyAverage": 17,
			"attractions":  []map[string]any{{"name": "Laser Show", "tickets": 80, "amount": "₹8,000"}},
			"chart":        []map[string]any{{"label": "Mon", "value": 10}},
		})

		got := f.gw.FetchPeriodAnalytics(ctx, models.PeriodLast7Days)
		require.NotNil(t, got)
		assert.Equal(t, 120, got.TotalTickets)
		assert.Equal(t, "₹12,000", got.TotalAmount)
		require.NotNil(t, got.GrowthPercent)
		assert.Equal(t, 12.5, *got.GrowthPercent)
		require.Len(t, got.Attractions, 1)
		assert.Equal(t, "Laser Show", got.Attractions[0].Name)
		require.Len(t, got.Chart, 1)

		var avg int
		ok, err := got.Metric("dailyAverage", &avg)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 17, avg)

		req, _ := f.srv.LastRequest()
		assert.Equal(t, "/api/analytics/last7days", req.Path)
		assert.Zero(t, f.reporter.Count(notify.KindError))
	})

	tests := []struct {
		period    models.Period
		wantTitle string
	}{
		{models.PeriodToday, "Failed to fetch today's analytics"},
		{models.PeriodLast7Days, "Failed to fetch last 7 days analytics"},
		{models.PeriodLast30Days, "Failed to fetch last 30 days analytics"},
		{models.PeriodAnnual, "Failed to fetch annual analytics"},
	}
	for _, tt := range tests {
		t.Run("server failure "+string(tt.period), func(t *testing.T) {
			f := setup(t, "abc")
			f.srv.FailOn(http.MethodGet, "/api/analytics/"+string(tt.period), http.StatusInternalServerError, "aggregation failed")

			assert.Nil(t, f.gw.FetchPeriodAnalytics(ctx, tt.period))

			n := lastNotification(t, f.reporter)
			assert.Equal(t, tt.wantTitle, n.Title)
			assert.Equal(t, "aggregation failed", n.Message)
			assert.Empty(t, f.gw.Counters())
			assert.Empty(t, f.gw.Tickets())
			assert.Empty(t, f.gw.Guides())
			assert.Empty(t, f.gw.Messages())
		})
	}

	t.Run("null body means no data", func(t *testing.T) {
		f := setup(t, "abc")
		f.srv.SetAnalytics(models.PeriodToday, nil)

		assert.Nil(t, f.gw.FetchPeriodAnalytics(ctx, models.PeriodToday))
		assert.Equal(t, 1, f.srv.RequestCount())
		assert.Zero(t, f.reporter.Count(notify.KindError))
	})

	t.Run("unknown period", func(t *testing.T) {
		f := setup(t, "abc")

		assert.Nil(t, f.gw.FetchPeriodAnalytics(ctx, models.Period("weekly")))
		assert.Zero(t, f.srv.RequestCount())
		assert.Equal(t, "Failed to fetch weekly analytics", lastNotification(t, f.reporter).Title)
	})
}

func TestFetchCalendarData(t *testing.T) {
	ctx := context.Background()
	f := setup(t, "abc")
	f.srv.SeedTransactions(
		models.Transaction{InvoiceNo: "INV-1", Date: "2024-03-01T10:00:00Z", ShowName: "Laser Show", Adult: 2, TotalPaid: "₹400"},
		models.Transaction{InvoiceNo: "INV-2", Date: "2024-03-05", ShowName: "Aquarium", Child: 1, TotalPaid: "₹150"},
		models.Transaction{InvoiceNo: "INV-3", Date: "2024-04-01", ShowName: "Aquarium", TotalPaid: "₹1,000"},
	)

	got := f.gw.FetchCalendarData(ctx, "2024-03-01", "2024-03-05")
	require.NotNil(t, got)
	assert.Equal(t, 2, got.TotalSales)
	assert.Equal(t, "₹550", got.TotalAmount)
	require.Len(t, got.Transactions, 2)
	assert.Equal(t, "INV-1", got.Transactions[0].InvoiceNo)
	assert.Equal(t, "INV-2", got.Transactions[1].InvoiceNo)

	req, _ := f.srv.LastRequest()
	assert.Equal(t, "/api/analytics/calendar", req.Path)
	assert.Equal(t, "end=2024-03-05&start=2024-03-01", req.Query)

	empty := f.gw.FetchCalendarData(ctx, "2025-01-01", "2025-01-02")
	require.NotNil(t, empty)
	assert.Zero(t, empty.TotalSales)
	assert.NotNil(t, empty.Transactions)

	assert.Nil(t, f.gw.FetchCalendarData(ctx, "2024-03-05", "2024-03-01"))
	n := lastNotification(t, f.reporter)
	assert.Equal(t, "Failed to fetch calendar data", n.Title)
	assert.Equal(t, "start must not be after end", n.Message)
}

func TestTransactions(t *testing.T) {
	ctx := context.Background()
	f := setup(t, "abc")
	f.srv.SeedTransactions(models.Transaction{InvoiceNo: "INV-1", Date: "2024-03-01", Adult: 1, TotalPaid: "₹200"})
	id := f.srv.Transactions()[0].ID
	f.srv.ResetRequests()

	require.True(t, f.gw.UpdateTransaction(ctx, id, models.TransactionPatch{Adult: ptr(3), TotalPaid: ptr("₹600")}))
	assert.Equal(t, 1, f.srv.RequestCount(), "no auto refresh")
	assert.Equal(t, 3, f.srv.Transactions()[0].Adult)
	assert.Equal(t, "INV-1", f.srv.Transactions()[0].InvoiceNo)
	assert.Zero(t, f.reporter.Count(notify.KindSuccess))

	assert.False(t, f.gw.DeleteTransaction(ctx, id+1))
	n := lastNotification(t, f.reporter)
	assert.Equal(t, "Failed to delete transaction", n.Title)
	assert.Equal(t, "Transaction not found", n.Message)

	require.True(t, f.gw.DeleteTransaction(ctx, id))
	assert.Empty(t, f.srv.Transactions())

	assert.False(t, f.gw.UpdateTransaction(ctx, id, models.TransactionPatch{Adult: ptr(1)}))
	assert.Equal(t, "Failed to update transaction", lastNotification(t, f.reporter).Title)
}
