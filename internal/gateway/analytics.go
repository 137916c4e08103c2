package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/magabrotheeeer/venue-console/internal/lib/sl"
	"github.com/magabrotheeeer/venue-console/internal/models"
	"github.com/magabrotheeeer/venue-console/internal/notify"
)

const (
	analyticsPath    = "/api/analytics"
	transactionsPath = analyticsPath + "/transactions"
)

// FetchPeriodAnalytics возвращает свежий агрегат за period.
// nil означает отсутствие данных, а не пустой результат.
func (g *Gateway) FetchPeriodAnalytics(ctx context.Context, period models.Period) *models.Analytics {
	const op = "gateway.FetchPeriodAnalytics"
	log := g.log.With(sl.Op(op), slog.String("period", string(period)))

	title := fmt.Sprintf("Failed to fetch %s analytics", period.Label())
	if !period.Valid() {
		log.Warn("unknown period")
		g.reporter.Notify(notify.KindError, title, fmt.Sprintf("Unknown period %q", period))
		return nil
	}

	var out *models.Analytics
	if err := g.Do(ctx, http.MethodGet, analyticsPath+"/"+string(period), nil, &out); err != nil {
		g.fail(log, title, err)
		return nil
	}
	if out == nil {
		log.Debug("no analytics data")
	}
	return out
}

// FetchCalendarData возвращает итоги и транзакции за диапазон дат включительно.
// Даты передаются серверу как есть, в формате YYYY-MM-DD.
func (g *Gateway) FetchCalendarData(ctx context.Context, start, end string) *models.CalendarData {
	const op = "gateway.FetchCalendarData"
	log := g.log.With(sl.Op(op), slog.String("start", start), slog.String("end", end))

	q := url.Values{}
	q.Set("start", start)
	q.Set("end", end)

	var out models.CalendarData
	if err := g.Do(ctx, http.MethodGet, analyticsPath+"/calendar?"+q.Encode(), nil, &out); err != nil {
		g.fail(log, "Failed to fetch calendar data", err)
		return nil
	}
	if out.Transactions == nil {
		out.Transactions = []models.Transaction{}
	}
	return &out
}

// UpdateTransaction частично обновляет транзакцию. Календарь не перечитывается:
// его параметры принадлежат вызывающему.
func (g *Gateway) UpdateTransaction(ctx context.Context, id int64, patch models.TransactionPatch) bool {
	return g.mutate(ctx, mutation{
		op:        "gateway.UpdateTransaction",
		method:    http.MethodPut,
		path:      fmt.Sprintf("%s/%d", transactionsPath, id),
		body:      patch,
		failTitle: "Failed to update transaction",
	}, nil)
}

// DeleteTransaction удаляет транзакцию.
func (g *Gateway) DeleteTransaction(ctx context.Context, id int64) bool {
	return g.mutate(ctx, mutation{
		op:        "gateway.DeleteTransaction",
		method:    http.MethodDelete,
		path:      fmt.Sprintf("%s/%d", transactionsPath, id),
		failTitle: "Failed to delete transaction",
	}, nil)
}
