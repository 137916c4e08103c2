package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/magabrotheeeer/venue-console/internal/models"
)

const crmPath = "/api/crm"

// SendMessage отправляет одно сообщение. Номер должен быть уже нормализован,
// формат проверяет сервер.
func (g *Gateway) SendMessage(ctx context.Context, phone, message string) bool {
	return g.mutate(ctx, mutation{
		op:             "gateway.SendMessage",
		method:         http.MethodPost,
		path:           crmPath + "/send",
		body:           models.SendMessageRequest{Phone: phone, Message: message},
		successTitle:   "Message sent",
		successMessage: fmt.Sprintf("Message has been sent to %s", phone),
		failTitle:      "Failed to send message",
	}, nil)
}

// SendBulkMessages отправляет одно сообщение на все номера одним запросом.
func (g *Gateway) SendBulkMessages(ctx context.Context, phones []string, message string) bool {
	if phones == nil {
		phones = []string{}
	}
	return g.mutate(ctx, mutation{
		op:             "gateway.SendBulkMessages",
		method:         http.MethodPost,
		path:           crmPath + "/send-bulk",
		body:           models.BulkMessageRequest{Phones: phones, Message: message},
		successTitle:   "Messages sent",
		successMessage: fmt.Sprintf("Message has been sent to %d recipients", len(phones)),
		failTitle:      "Failed to send messages",
	}, nil)
}

// FetchSentMessages перечитывает историю сообщений. Пустые start и end не
// ограничивают диапазон, пустой status и "all" не фильтруют по статусу.
func (g *Gateway) FetchSentMessages(ctx context.Context, start, end string, status models.MessageStatus) bool {
	q := url.Values{}
	if start != "" {
		q.Set("start", start)
	}
	if end != "" {
		q.Set("end", end)
	}
	if status != "" && status != models.MessageStatusAll {
		q.Set("status", string(status))
	}
	path := crmPath + "/messages"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	return fetchList(ctx, g, &g.messages, "gateway.FetchSentMessages", path, "Failed to fetch messages")
}

// MessageStats сводка по загруженной истории сообщений.
func (g *Gateway) MessageStats() models.MessageStats {
	return models.ComputeMessageStats(g.messages.snapshot(), g.now())
}
