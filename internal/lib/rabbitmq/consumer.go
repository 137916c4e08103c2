package rabbitmq

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/venue-console/internal/lib/sl"
)

// Consumer часть *amqp.Channel, нужная для чтения очереди.
type Consumer interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

// Binder часть *amqp.Channel, нужная для объявления временной очереди.
type Binder interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
}

// BindTemporaryQueue объявляет эксклюзивную очередь с именем от брокера,
// которая удаляется вместе с соединением, и привязывает ее к exchange по key.
func BindTemporaryQueue(ch Binder, exchange, key string) (string, error) {
	const op = "rabbitmq.BindTemporaryQueue"

	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if err := ch.QueueBind(q.Name, key, exchange, false, nil); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return q.Name, nil
}

// Consume читает queue и передает тела сообщений handler не более чем в
// workers горутинах. Успешно обработанное сообщение подтверждается, при ошибке
// возвращается в очередь. Блокирует до отмены ctx или закрытия канала доставки
// и дожидается завершения начатых обработчиков.
func Consume(ctx context.Context, ch Consumer, queue string, workers int, handler func([]byte) error, log *slog.Logger) error {
	const op = "rabbitmq.Consume"

	deliveries, err := ch.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	sem := make(chan struct{}, max(workers, 1))
	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case d, ok := <-deliveries:
			if !ok {
				return nil
			}
			sem <- struct{}{}
			wg.Add(1)
			go func(d amqp.Delivery) {
				defer wg.Done()
				defer func() { <-sem }()
				if err := handler(d.Body); err != nil {
					log.Warn("failed to handle message", slog.String("queue", queue), sl.Err(err))
					if nackErr := d.Nack(false, true); nackErr != nil {
						log.Error("failed to nack message", sl.Err(nackErr))
					}
					return
				}
				if ackErr := d.Ack(false); ackErr != nil {
					log.Error("failed to ack message", sl.Err(ackErr))
				}
			}(d)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
