package db

import (
	"database/sql"

	"github.com/prometheus/client_golang/prometheus"
)

// DBStatsCollector exposes database/sql pool statistics as Prometheus
// metrics. Stats are read from the handle on each scrape.
type DBStatsCollector struct {
	db *sql.DB

	openConns    *prometheus.Desc
	inUseConns   *prometheus.Desc
	idleConns    *prometheus.Desc
	maxOpenConns *prometheus.Desc
	waitCount    *prometheus.Desc
}

// NewDBStatsCollector creates a collector for db. The driver name is a
// constant label.
func NewDBStatsCollector(db *sql.DB, namespace, driver string) *DBStatsCollector {
	constLabels := prometheus.Labels{"driver": driver}
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "db", name), help, nil, constLabels)
	}

	return &DBStatsCollector{
		db:           db,
		openConns:    desc("open_conns", "Number of established connections, in use and idle"),
		inUseConns:   desc("in_use_conns", "Number of connections currently in use"),
		idleConns:    desc("idle_conns", "Number of idle connections"),
		maxOpenConns: desc("max_open_conns", "Maximum number of open connections, 0 for unlimited"),
		waitCount:    desc("wait_count_total", "Total number of connections waited for"),
	}
}

// Describe sends all metric descriptors to the channel.
func (c *DBStatsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.openConns
	ch <- c.inUseConns
	ch <- c.idleConns
	ch <- c.maxOpenConns
	ch <- c.waitCount
}

// Collect reads the current pool statistics.
func (c *DBStatsCollector) Collect(ch chan<- prometheus.Metric) {
	if c.db == nil {
		return
	}

	stats := c.db.Stats()
	ch <- prometheus.MustNewConstMetric(c.openConns, prometheus.GaugeValue, float64(stats.OpenConnections))
	ch <- prometheus.MustNewConstMetric(c.inUseConns, prometheus.GaugeValue, float64(stats.InUse))
	ch <- prometheus.MustNewConstMetric(c.idleConns, prometheus.GaugeValue, float64(stats.Idle))
	ch <- prometheus.MustNewConstMetric(c.maxOpenConns, prometheus.GaugeValue, float64(stats.MaxOpenConnections))
	ch <- prometheus.MustNewConstMetric(c.waitCount, prometheus.CounterValue, float64(stats.WaitCount))
}

// RegisterDBStatsCollector registers a collector for the store with reg.
// An already registered collector is not an error.
func RegisterDBStatsCollector(s *Store, namespace string, reg prometheus.Registerer) (*DBStatsCollector, error) {
	collector := NewDBStatsCollector(s.db, namespace, s.driver)
	if err := reg.Register(collector); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
			return nil, err
		}
	}
	return collector, nil
}
