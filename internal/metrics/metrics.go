// Package metrics содержит метрики Prometheus приложения.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "swapplace"

// Metrics хранит зарегистрированные метрики. Методы допускают nil получатель.
type Metrics struct {
	Registry *prometheus.Registry

	httpRequests        *prometheus.CounterVec
	httpDuration        *prometheus.HistogramVec
	trades              *prometheus.CounterVec
	messagesSent        prometheus.Counter
	notificationsPurged prometheus.Counter
}

// New создает метрики в отдельном реестре
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Количество HTTP запросов.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Длительность обработки HTTP запросов.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		trades: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trades_total",
			Help:      "Количество предложений обмена по статусу.",
		}, []string{"status"}),
		messagesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_messages_sent_total",
			Help:      "Количество отправленных сообщений.",
		}),
		notificationsPurged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_purged_total",
			Help:      "Количество удаленных скрытых уведомлений.",
		}),
	}

	m.Registry.MustRegister(
		m.httpRequests,
		m.httpDuration,
		m.trades,
		m.messagesSent,
		m.notificationsPurged,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveRequest учитывает обработанный HTTP запрос
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// TradeStatus учитывает обмен, перешедший в статус
func (m *Metrics) TradeStatus(status string) {
	if m == nil {
		return
	}
	m.trades.WithLabelValues(status).Inc()
}

// MessageSent учитывает отправленное сообщение
func (m *Metrics) MessageSent() {
	if m == nil {
		return
	}
	m.messagesSent.Inc()
}

// NotificationsPurged учитывает удаленные уведомления
func (m *Metrics) NotificationsPurged(n int64) {
	if m == nil {
		return
	}
	m.notificationsPurged.Add(float64(n))
}

// Handler отдает метрики в формате Prometheus
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
