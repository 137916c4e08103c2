package models

import (
	"encoding/json"
	"fmt"
)

// Period период агрегированной аналитики.
type Period string

const (
	PeriodToday      Period = "today"
	PeriodLast7Days  Period = "last7days"
	PeriodLast30Days Period = "last30days"
	PeriodAnnual     Period = "annual"
)

// Periods все поддерживаемые периоды.
var Periods = []Period{PeriodToday, PeriodLast7Days, PeriodLast30Days, PeriodAnnual}

// Valid сообщает, поддерживается ли период.
func (p Period) Valid() bool {
	for _, known := range Periods {
		if p == known {
			return true
		}
	}
	return false
}

// Label человекочитаемое имя периода для уведомлений.
func (p Period) Label() string {
	switch p {
	case PeriodToday:
		return "today's"
	case PeriodLast7Days:
		return "last 7 days"
	case PeriodLast30Days:
		return "last 30 days"
	case PeriodAnnual:
		return "annual"
	}
	return string(p)
}

// AttractionTotal итог по аттракциону или шоу.
type AttractionTotal struct {
	Name    string `json:"name"`
	Tickets int    `json:"tickets"`
	Amount  string `json:"amount"`
}

// ChartPoint точка временного ряда для графика.
type ChartPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Analytics агрегат за период. Поля, специфичные для периода
// (среднее за день или месяц, рост), которые не описаны явно, лежат в Extra.
type Analytics struct {
	TotalTickets  int               `json:"totalTickets"`
	TotalAmount   string            `json:"totalAmount"`
	GrowthPercent *float64          `json:"growth,omitempty"`
	Attractions   []AttractionTotal `json:"attractions,omitempty"`
	Chart         []ChartPoint      `json:"chart,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

var analyticsKnownKeys = []string{"totalTickets", "totalAmount", "growth", "attractions", "chart"}

// UnmarshalJSON разбирает известные поля и сохраняет остальные в Extra.
func (a *Analytics) UnmarshalJSON(data []byte) error {
	type plain Analytics
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, key := range analyticsKnownKeys {
		delete(raw, key)
	}
	if len(raw) > 0 {
		p.Extra = raw
	}

	*a = Analytics(p)
	return nil
}

// Metric декодирует дополнительную метрику по ключу в out.
// Возвращает false, если ключа нет.
func (a *Analytics) Metric(key string, out any) (bool, error) {
	raw, ok := a.Extra[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("models.Analytics.Metric %s: %w", key, err)
	}
	return true, nil
}
