package models

import "time"

// MessageStatus статус доставки CRM-сообщения.
type MessageStatus string

const (
	MessageSent   MessageStatus = "sent"
	MessageFailed MessageStatus = "failed"

	// MessageStatusAll означает отсутствие фильтра по статусу.
	MessageStatusAll MessageStatus = "all"
)

// MessageCost стоимость одного отправленного сообщения.
const MessageCost = 0.1

// Message отправленное CRM-сообщение.
type Message struct {
	ID        int64         `json:"id"`
	Phone     string        `json:"phone"`
	Message   string        `json:"message"`
	Status    MessageStatus `json:"status"`
	CreatedAt string        `json:"createdAt"`
}

// SendMessageRequest тело POST /api/crm/send.
type SendMessageRequest struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// BulkMessageRequest тело POST /api/crm/send-bulk.
type BulkMessageRequest struct {
	Phones  []string `json:"phones"`
	Message string   `json:"message"`
}

// MessageStats сводка по кэшу сообщений.
type MessageStats struct {
	TotalSent     int     `json:"totalSent"`
	TotalFailed   int     `json:"totalFailed"`
	TotalAmount   float64 `json:"totalAmount"`
	TodayMessages int     `json:"todayMessages"`
}

// ComputeMessageStats считает сводку. Сегодняшними считаются сообщения,
// у которых дата CreatedAt в локальной зоне now совпадает с датой now.
// Нераспознанные даты в счётчик за сегодня не попадают.
func ComputeMessageStats(messages []Message, now time.Time) MessageStats {
	var stats MessageStats
	y, m, d := now.Date()
	for _, msg := range messages {
		switch msg.Status {
		case MessageSent:
			stats.TotalSent++
		case MessageFailed:
			stats.TotalFailed++
		}
		created, ok := parseTimestamp(msg.CreatedAt)
		if !ok {
			continue
		}
		cy, cm, cd := created.In(now.Location()).Date()
		if cy == y && cm == m && cd == d {
			stats.TodayMessages++
		}
	}
	stats.TotalAmount = float64(stats.TotalSent) * MessageCost
	return stats
}

func parseTimestamp(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
