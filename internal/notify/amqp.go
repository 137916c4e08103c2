package notify

import (
	"log/slog"
	"time"

	"github.com/magabrotheeeer/venue-console/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/venue-console/internal/lib/sl"
)

// AMQPReporter публикует уведомления как JSON-события в exchange RabbitMQ.
// Ошибка публикации только логируется: уведомление не должно ронять операцию.
type AMQPReporter struct {
	ch         rabbitmq.Publisher
	exchange   string
	routingKey string
	log        *slog.Logger
	now        func() time.Time
}

// NewAMQPReporter создает AMQPReporter поверх канала ch.
func NewAMQPReporter(ch rabbitmq.Publisher, exchange, routingKey string, log *slog.Logger) *AMQPReporter {
	return &AMQPReporter{
		ch:         ch,
		exchange:   exchange,
		routingKey: routingKey,
		log:        log,
		now:        time.Now,
	}
}

// Notify реализует Reporter.
func (r *AMQPReporter) Notify(kind Kind, title, message string) {
	event := Notification{
		Kind:    kind,
		Title:   title,
		Message: message,
		At:      r.now().UTC(),
	}
	if err := rabbitmq.PublishMessage(r.ch, r.exchange, r.routingKey, event); err != nil {
		r.log.Error("failed to publish notification",
			slog.String("title", title),
			sl.Err(err),
		)
	}
}
