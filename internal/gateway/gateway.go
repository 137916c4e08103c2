// Package gateway дает авторизованный доступ ко всем ресурсам API консоли
// и держит локальные копии списков касс, билетов, гидов и сообщений.
//
// Списки никогда не меняются оптимистично: после каждой успешной мутации
// список перечитывается с сервера. Публичные операции не возвращают ошибок,
// а сообщают о них через notify.Reporter и возвращают false или nil.
package gateway

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/magabrotheeeer/venue-console/internal/client"
	"github.com/magabrotheeeer/venue-console/internal/lib/sl"
	"github.com/magabrotheeeer/venue-console/internal/models"
	"github.com/magabrotheeeer/venue-console/internal/notify"
)

// API транспорт. Реализуется *client.Client.
type API interface {
	Do(ctx context.Context, method, path, token string, body, out any) error
}

// TokenSource отдает текущий bearer-токен. Реализуется *session.Store.
type TokenSource interface {
	Token() string
}

// Gateway доступ к ресурсам API.
type Gateway struct {
	api      API
	tokens   TokenSource
	reporter notify.Reporter
	log      *slog.Logger
	now      func() time.Time

	counters list[models.Counter]
	tickets  list[models.Ticket]
	guides   list[models.Guide]
	messages list[models.Message]

	inflight atomic.Int64
}

// Option настраивает Gateway.
type Option func(*Gateway)

// WithClock подменяет часы для сводки по сообщениям.
func WithClock(now func() time.Time) Option {
	return func(g *Gateway) { g.now = now }
}

// New создает Gateway с пустыми списками.
func New(api API, tokens TokenSource, reporter notify.Reporter, log *slog.Logger, opts ...Option) *Gateway {
	g := &Gateway{
		api:      api,
		tokens:   tokens,
		reporter: reporter,
		log:      log,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Do выполняет авторизованный запрос. Без токена сообщает пользователю
// и возвращает client.ErrAuthRequired, не обращаясь к сети.
func (g *Gateway) Do(ctx context.Context, method, path string, body, out any) error {
	token := g.tokens.Token()
	if token == "" {
		g.reporter.Notify(notify.KindError, "Authentication required", client.MsgAuthRequired)
		return client.ErrAuthRequired
	}
	return g.api.Do(ctx, method, path, token, body, out)
}

// Loading сообщает, выполняется ли сейчас загрузка какого-либо списка.
func (g *Gateway) Loading() bool {
	return g.inflight.Load() > 0
}

// Counters копия списка касс.
func (g *Gateway) Counters() []models.Counter { return g.counters.snapshot() }

// Tickets копия списка билетов.
func (g *Gateway) Tickets() []models.Ticket { return g.tickets.snapshot() }

// Guides копия списка гидов.
func (g *Gateway) Guides() []models.Guide { return g.guides.snapshot() }

// Messages копия истории сообщений.
func (g *Gateway) Messages() []models.Message { return g.messages.snapshot() }

// fail сообщает об ошибке операции. Об отсутствии токена уже сообщил Do.
func (g *Gateway) fail(log *slog.Logger, title string, err error) {
	if errors.Is(err, client.ErrAuthRequired) {
		log.Warn("no active session")
		return
	}
	log.Error(title, sl.Err(err))
	g.reporter.Notify(notify.KindError, title, client.Message(err))
}

func (g *Gateway) succeed(title, message string) {
	g.reporter.Notify(notify.KindSuccess, title, message)
}

// list локальная копия коллекции. Ответ загрузки применяется, только если
// после него не был применен ответ более поздней загрузки.
type list[T any] struct {
	mu      sync.RWMutex
	items   []T
	issued  uint64
	applied uint64
}

func (l *list[T]) begin() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.issued++
	return l.issued
}

func (l *list[T]) apply(seq uint64, items []T) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if seq <= l.applied {
		return false
	}
	l.applied = seq
	l.items = items
	return true
}

func (l *list[T]) snapshot() []T {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]T, len(l.items))
	copy(out, l.items)
	return out
}

// fetchList загружает коллекцию по path и заменяет ею l целиком.
// При ошибке l не меняется.
func fetchList[T any](ctx context.Context, g *Gateway, l *list[T], op, path, failTitle string) bool {
	log := g.log.With(sl.Op(op))

	g.inflight.Add(1)
	defer g.inflight.Add(-1)

	seq := l.begin()
	items := []T{}
	if err := g.Do(ctx, http.MethodGet, path, nil, &items); err != nil {
		g.fail(log, failTitle, err)
		return false
	}
	if !l.apply(seq, items) {
		log.Debug("stale response discarded", slog.Uint64("seq", seq))
		return true
	}
	log.Debug("list refreshed", slog.Int("count", len(items)))
	return true
}

// mutation описывает изменяющий запрос и тексты уведомлений.
type mutation struct {
	op             string
	method, path   string
	body           any
	successTitle   string
	successMessage string
	failTitle      string
}

// mutate выполняет m и при успехе вызывает refresh.
func (g *Gateway) mutate(ctx context.Context, m mutation, refresh func(context.Context) bool) bool {
	log := g.log.With(sl.Op(m.op))

	if err := g.Do(ctx, m.method, m.path, m.body, nil); err != nil {
		g.fail(log, m.failTitle, err)
		return false
	}
	log.Info("mutation applied", slog.String("method", m.method), slog.String("path", m.path))
	if m.successTitle != "" {
		g.succeed(m.successTitle, m.successMessage)
	}
	if refresh != nil {
		refresh(ctx)
	}
	return true
}
