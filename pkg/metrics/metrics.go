package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "dimission"

// Metrics 任务与预测指标
type Metrics struct {
	gatherer prometheus.Gatherer

	JobDuration  *prometheus.HistogramVec
	JobRuns      *prometheus.CounterVec
	UnitFailures *prometheus.CounterVec
	Forecast     *prometheus.GaugeVec
	MonitorMAE   *prometheus.GaugeVec
}

// New 在独立注册表上创建指标，reg 为 nil 时新建注册表并附带进程/Go 运行时指标
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	m := &Metrics{
		gatherer: reg,
		JobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "job_duration_seconds",
			Help:      "任务耗时",
			Buckets:   []float64{0.5, 1, 5, 15, 30, 60, 120, 300, 600},
		}, []string{"job"}),
		JobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_runs_total",
			Help:      "任务执行次数",
		}, []string{"job", "outcome"}),
		UnitFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unit_failures_total",
			Help:      "单元处理失败次数，按错误类型",
		}, []string{"job", "unit", "kind"}),
		Forecast: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "forecast_departures",
			Help:      "最近一次预测的离职人数",
		}, []string{"unit", "days"}),
		MonitorMAE: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "monitor_mae",
			Help:      "最近一次单日预测的绝对误差",
		}, []string{"unit"}),
	}
	reg.MustRegister(m.JobDuration, m.JobRuns, m.UnitFailures, m.Forecast, m.MonitorMAE)
	return m
}

// ObserveJob 记录一次任务执行
func (m *Metrics) ObserveJob(job string, started time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.JobDuration.WithLabelValues(job).Observe(time.Since(started).Seconds())
	m.JobRuns.WithLabelValues(job, outcome).Inc()
}

// Handler 暴露 /metrics
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
