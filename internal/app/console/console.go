// Package console собирает зависимости консоли: хранилище, HTTP-клиент,
// каналы уведомлений, сессию и шлюз к ресурсам.
package console

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/streadway/amqp"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/venue-console/internal/cache"
	"github.com/magabrotheeeer/venue-console/internal/client"
	"github.com/magabrotheeeer/venue-console/internal/config"
	"github.com/magabrotheeeer/venue-console/internal/gateway"
	"github.com/magabrotheeeer/venue-console/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/venue-console/internal/lib/sl"
	"github.com/magabrotheeeer/venue-console/internal/notify"
	"github.com/magabrotheeeer/venue-console/internal/session"
)

// App собранное приложение.
type App struct {
	Session  *session.Store
	Gateway  *gateway.Gateway
	Client   *client.Client
	Registry *prometheus.Registry

	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
	routing  string
	closers  []func() error
	logger   *slog.Logger
}

// ErrNotificationsDisabled RabbitMQ не настроен, подписываться не на что.
var ErrNotificationsDisabled = errors.New("notifications broker is not configured")

// New собирает приложение по cfg и восстанавливает сохраненную сессию.
// extra получают уведомления вместе с логом и RabbitMQ.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger, extra ...notify.Reporter) (*App, error) {
	const op = "console.New"

	a := &App{
		Registry: prometheus.NewRegistry(),
		logger:   logger,
	}

	storage, err := a.newStorage(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	metrics, err := client.NewMetrics(a.Registry)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	opts := []client.Option{
		client.WithTimeout(cfg.API.Timeout),
		client.WithMetrics(metrics),
		client.WithLogger(logger),
	}
	if cfg.API.RateLimit > 0 {
		opts = append(opts, client.WithLimiter(rate.NewLimiter(rate.Limit(cfg.API.RateLimit), max(cfg.API.RateBurst, 1))))
	}
	a.Client, err = client.New(cfg.API.BaseURL, opts...)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	reporter, err := a.newReporter(cfg, extra)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	a.Session = session.New(a.Client, storage, reporter, logger)
	a.Gateway = gateway.New(a.Client, a.Session, reporter, logger)
	a.Session.Hydrate(ctx)

	logger.Info("console initialized",
		slog.String("api", a.Client.BaseURL()),
		slog.String("storage", cfg.Storage.Backend),
		slog.String("session", a.Session.State().String()),
	)
	return a, nil
}

func (a *App) newStorage(ctx context.Context, cfg *config.Config) (cache.Storage, error) {
	switch cfg.Storage.Backend {
	case config.StorageMemory:
		return cache.NewMemory(), nil
	case config.StorageRedis:
		r, err := cache.InitServer(ctx, cfg.RedisConnection, cfg.Storage.KeyPrefix)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, r.Close)
		return r, nil
	default:
		return cache.NewFile(cfg.Storage.Path), nil
	}
}

func (a *App) newReporter(cfg *config.Config, extra []notify.Reporter) (notify.Reporter, error) {
	reporters := []notify.Reporter{notify.NewLogReporter(a.logger)}

	if n := cfg.Notifications; n.AMQPURL != "" {
		conn, err := rabbitmq.Connect(n.AMQPURL, n.MaxRetries, n.RetryDelay)
		if err != nil {
			return nil, err
		}
		ch, err := rabbitmq.SetupChannel(conn, n.Exchange)
		if err != nil {
			_ = conn.Close()
			return nil, err
		}
		a.conn, a.ch = conn, ch
		a.exchange, a.routing = n.Exchange, n.RoutingKey
		reporters = append(reporters, notify.NewAMQPReporter(ch, n.Exchange, n.RoutingKey, a.logger))
	}

	reporters = append(reporters, extra...)
	return notify.NewCounting(notify.Multi(reporters...), a.Registry)
}

// TailNotifications подписывается на уведомления, которые консоли публикуют
// в RabbitMQ, и передает каждое в fn до отмены ctx.
func (a *App) TailNotifications(ctx context.Context, fn func(notify.Notification)) error {
	const op = "console.TailNotifications"
	if a.ch == nil {
		return fmt.Errorf("%s: %w", op, ErrNotificationsDisabled)
	}

	queue, err := rabbitmq.BindTemporaryQueue(a.ch, a.exchange, a.routing)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = rabbitmq.Consume(ctx, a.ch, queue, 1, func(body []byte) error {
		var n notify.Notification
		if err := json.Unmarshal(body, &n); err != nil {
			// битое сообщение не возвращаем в очередь повторно
			a.logger.Warn("skipping malformed notification", sl.Op(op), sl.Err(err))
			return nil
		}
		fn(n)
		return nil
	}, a.logger)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Close освобождает соединения с RabbitMQ и Redis.
func (a *App) Close() error {
	var errs []error
	if a.ch != nil {
		errs = append(errs, a.ch.Close())
	}
	if a.conn != nil {
		errs = append(errs, a.conn.Close())
	}
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	a.ch, a.conn, a.closers = nil, nil, nil

	err := errors.Join(errs...)
	if err != nil {
		a.logger.Error("failed to close console", sl.Err(err))
	}
	return err
}
