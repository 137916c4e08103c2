package notify

import "github.com/prometheus/client_golang/prometheus"

// Counting считает уведомления по виду и передает их дальше.
type Counting struct {
	next  Reporter
	total *prometheus.CounterVec
}

// NewCounting регистрирует счётчик console_notifications_total в reg.
func NewCounting(next Reporter, reg prometheus.Registerer) (*Counting, error) {
	total := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "console",
		Name:      "notifications_total",
		Help:      "Number of user-facing notifications by kind.",
	}, []string{"kind"})
	if err := reg.Register(total); err != nil {
		return nil, err
	}
	return &Counting{next: next, total: total}, nil
}

// Notify реализует Reporter.
func (c *Counting) Notify(kind Kind, title, message string) {
	c.total.WithLabelValues(string(kind)).Inc()
	c.next.Notify(kind, title, message)
}
