package dbpool

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	descTotalConns = prometheus.NewDesc(
		"rulekeeper_db_pool_connections", "Open connections by state", []string{"state"}, nil)
	descMaxConns = prometheus.NewDesc(
		"rulekeeper_db_pool_max_connections", "Configured connection limit", nil, nil)
	descAcquires = prometheus.NewDesc(
		"rulekeeper_db_pool_acquires_total", "Connections acquired from the pool", nil, nil)
	descEmptyAcquires = prometheus.NewDesc(
		"rulekeeper_db_pool_empty_acquires_total", "Acquires that had to wait for a connection", nil, nil)
	descAcquireSeconds = prometheus.NewDesc(
		"rulekeeper_db_pool_acquire_seconds_total", "Time spent waiting to acquire connections", nil, nil)
)

// poolStat is the subset of *pgxpool.Stat the collector reads.
type poolStat interface {
	AcquiredConns() int32
	IdleConns() int32
	ConstructingConns() int32
	MaxConns() int32
	AcquireCount() int64
	EmptyAcquireCount() int64
	AcquireDuration() time.Duration
}

type statsCollector struct {
	stat func() poolStat
}

// Collector exports pool utilisation to Prometheus. Register it once per pool.
func (p *Pool) Collector() prometheus.Collector {
	return &statsCollector{stat: func() poolStat { return p.pool.Stat() }}
}

func (c *statsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- descTotalConns
	ch <- descMaxConns
	ch <- descAcquires
	ch <- descEmptyAcquires
	ch <- descAcquireSeconds
}

func (c *statsCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.stat()

	ch <- prometheus.MustNewConstMetric(descTotalConns, prometheus.GaugeValue, float64(s.AcquiredConns()), "acquired")
	ch <- prometheus.MustNewConstMetric(descTotalConns, prometheus.GaugeValue, float64(s.IdleConns()), "idle")
	ch <- prometheus.MustNewConstMetric(descTotalConns, prometheus.GaugeValue, float64(s.ConstructingConns()), "constructing")
	ch <- prometheus.MustNewConstMetric(descMaxConns, prometheus.GaugeValue, float64(s.MaxConns()))
	ch <- prometheus.MustNewConstMetric(descAcquires, prometheus.CounterValue, float64(s.AcquireCount()))
	ch <- prometheus.MustNewConstMetric(descEmptyAcquires, prometheus.CounterValue, float64(s.EmptyAcquireCount()))
	ch <- prometheus.MustNewConstMetric(descAcquireSeconds, prometheus.CounterValue, s.AcquireDuration().Seconds())
}
