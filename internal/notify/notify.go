// Package notify описывает канал пользовательских уведомлений.
//
// Каждая публичная операция сессии и шлюза сообщает результат через Reporter:
// успех подтверждается, ошибка превращается в короткий заголовок и текст.
// Конкретная реализация (лог, RabbitMQ, тестовый накопитель) внедряется извне.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Kind вид уведомления.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Reporter принимает уведомления. Реализации не должны блокировать вызывающего надолго.
type Reporter interface {
	Notify(kind Kind, title, message string)
}

// Notification одно уведомление.
type Notification struct {
	Kind    Kind      `json:"kind"`
	Title   string    `json:"title"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// ReporterFunc адаптер функции к Reporter.
type ReporterFunc func(kind Kind, title, message string)

// Notify вызывает f.
func (f ReporterFunc) Notify(kind Kind, title, message string) {
	f(kind, title, message)
}

// Nop отбрасывает уведомления.
var Nop Reporter = ReporterFunc(func(Kind, string, string) {})

// LogReporter пишет уведомления в slog: ошибки на уровне Warn, остальное Info.
type LogReporter struct {
	log *slog.Logger
}

// NewLogReporter создает LogReporter.
func NewLogReporter(log *slog.Logger) *LogReporter {
	return &LogReporter{log: log}
}

// Notify реализует Reporter.
func (r *LogReporter) Notify(kind Kind, title, message string) {
	level := slog.LevelInfo
	if kind == KindError {
		level = slog.LevelWarn
	}
	r.log.Log(context.Background(), level, title,
		slog.String("kind", string(kind)),
		slog.String("message", message),
	)
}

type multi []Reporter

func (m multi) Notify(kind Kind, title, message string) {
	for _, r := range m {
		r.Notify(kind, title, message)
	}
}

// Multi рассылает уведомление всем непустым reporters по порядку.
func Multi(reporters ...Reporter) Reporter {
	var m multi
	for _, r := range reporters {
		if r != nil {
			m = append(m, r)
		}
	}
	if len(m) == 1 {
		return m[0]
	}
	return m
}

// Recorder накапливает уведомления в памяти. Безопасен для конкурентного использования.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
	now   func() time.Time
}

// NewRecorder создает пустой Recorder.
func NewRecorder() *Recorder {
	return &Recorder{now: time.Now}
}

// Notify реализует Reporter.
func (r *Recorder) Notify(kind Kind, title, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now
	if r.now != nil {
		now = r.now
	}
	r.items = append(r.items, Notification{Kind: kind, Title: title, Message: message, At: now()})
}

// All возвращает копию накопленных уведомлений.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.items))
	copy(out, r.items)
	return out
}

// Last возвращает последнее уведомление.
func (r *Recorder) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.items) == 0 {
		return Notification{}, false
	}
	return r.items[len(r.items)-1], true
}

// Count возвращает число уведомлений данного вида.
func (r *Recorder) Count(kind Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, item := range r.items {
		if item.Kind == kind {
			n++
		}
	}
	return n
}

// Reset очищает накопитель.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = nil
}
