// Package metrics 提供商城服务的 Prometheus 指标定义与采集辅助
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wyfcoding/nexoshop/pkg/logger"
)

const namespace = "nexoshop"

// Metrics 指标集合，所有记录方法允许 nil 接收者
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// 业务指标
	OrdersTotal     *prometheus.CounterVec
	OrderRevenue    prometheus.Counter
	PaymentsTotal   *prometheus.CounterVec
	EmailsTotal     *prometheus.CounterVec
	CartMutations   *prometheus.CounterVec
	PersistFailures *prometheus.CounterVec
	TableRows       *prometheus.GaugeVec
}

// New 创建指标实例并注册到独立 registry
func New(serviceName string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: serviceName,
			Name: "http_requests_total", Help: "Total HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: serviceName,
			Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		OrdersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: serviceName,
			Name: "orders_total", Help: "Orders created by channel",
		}, []string{"channel"}),
		OrderRevenue: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: serviceName,
			Name: "order_revenue_total", Help: "Sum of created order totals",
		}),
		PaymentsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: serviceName,
			Name: "payments_total", Help: "Payment attempts by result",
		}, []string{"result"}),
		EmailsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: serviceName,
			Name: "emails_total", Help: "Notification emails by result",
		}, []string{"result"}),
		CartMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: serviceName,
			Name: "cart_mutations_total", Help: "Cart mutations by operation",
		}, []string{"op"}),
		PersistFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: serviceName,
			Name: "mockdb_persist_failures_total", Help: "Swallowed fixture write failures",
		}, []string{"table"}),
		TableRows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: serviceName,
			Name: "mockdb_rows", Help: "Rows per in-memory table",
		}, []string{"table"}),
	}

	m.registry.MustRegister(
		m.HTTPRequestsTotal, m.HTTPRequestDuration,
		m.OrdersTotal, m.OrderRevenue, m.PaymentsTotal, m.EmailsTotal,
		m.CartMutations, m.PersistFailures, m.TableRows,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	logger.Info(context.Background(), "Metrics registered successfully", "service", serviceName)
	return m
}

// Registry 返回指标 registry
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler 返回 Prometheus 抓取处理器
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordHTTPRequest 记录 HTTP 请求
func (m *Metrics) RecordHTTPRequest(method, route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(seconds)
}

// RecordOrder 记录下单
func (m *Metrics) RecordOrder(channel string, total float64) {
	if m == nil {
		return
	}
	m.OrdersTotal.WithLabelValues(channel).Inc()
	m.OrderRevenue.Add(total)
}

// RecordPayment 记录支付结果
func (m *Metrics) RecordPayment(result string) {
	if m == nil {
		return
	}
	m.PaymentsTotal.WithLabelValues(result).Inc()
}

// RecordEmail 记录邮件发送结果
func (m *Metrics) RecordEmail(result string) {
	if m == nil {
		return
	}
	m.EmailsTotal.WithLabelValues(result).Inc()
}

// RecordCartMutation 记录购物车变更
func (m *Metrics) RecordCartMutation(op string) {
	if m == nil {
		return
	}
	m.CartMutations.WithLabelValues(op).Inc()
}

// RecordPersistFailure 记录 fixture 写入失败
func (m *Metrics) RecordPersistFailure(table string) {
	if m == nil {
		return
	}
	m.PersistFailures.WithLabelValues(table).Inc()
}

// SetTableRows 更新表行数
func (m *Metrics) SetTableRows(table string, rows int) {
	if m == nil {
		return
	}
	m.TableRows.WithLabelValues(table).Set(float64(rows))
}
