package server

import (
	"github.com/devstack-tools/localconf/validate"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "localconf"

type configCollector struct {
	variablesDesc *prometheus.Desc
	serviceDesc   *prometheus.Desc
	pluginsDesc   *prometheus.Desc
	findingsDesc  *prometheus.Desc
	loadsDesc     *prometheus.Desc
	failuresDesc  *prometheus.Desc
	loadTimeDesc  *prometheus.Desc
	holder        *Holder
}

// NewConfigCollector returns a Collector exposing the state of the held configuration
func NewConfigCollector(h *Holder) prometheus.Collector {
	var (
		subsystem   = "config"
		constLabels = prometheus.Labels{"file": h.Path()}
	)

	return &configCollector{
		variablesDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, subsystem, "variables"),
			"Number of resolved variables",
			nil,
			constLabels,
		),
		serviceDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, subsystem, "service_enabled"),
			"Service enabled by the configuration",
			[]string{"service"},
			constLabels,
		),
		pluginsDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, subsystem, "plugins"),
			"Number of enabled plugins",
			nil,
			constLabels,
		),
		findingsDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, subsystem, "findings"),
			"Check findings by severity",
			[]string{"severity"},
			constLabels,
		),
		loadsDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, subsystem, "loads_total"),
			"Configuration loads",
			nil,
			constLabels,
		),
		failuresDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, subsystem, "load_failures_total"),
			"Configuration loads that failed",
			nil,
			constLabels,
		),
		loadTimeDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, subsystem, "last_load_timestamp_seconds"),
			"Time of the last successful load",
			nil,
			constLabels,
		),
		holder: h,
	}
}

// Describe generates prometheus metric description
func (c *configCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.variablesDesc
	ch <- c.serviceDesc
	ch <- c.pluginsDesc
	ch <- c.findingsDesc
	ch <- c.loadsDesc
	ch <- c.failuresDesc
	ch <- c.loadTimeDesc
}

// Collect gathers prometheus metrics for the current snapshot
func (c *configCollector) Collect(ch chan<- prometheus.Metric) {
	loads, failures, _ := c.holder.Stats()
	ch <- prometheus.MustNewConstMetric(c.loadsDesc, prometheus.CounterValue, float64(loads))
	ch <- prometheus.MustNewConstMetric(c.failuresDesc, prometheus.CounterValue, float64(failures))

	s := c.holder.Get()
	if s == nil {
		return
	}
	ch <- prometheus.MustNewConstMetric(c.variablesDesc, prometheus.GaugeValue, float64(len(s.Config.Keys())))
	ch <- prometheus.MustNewConstMetric(c.pluginsDesc, prometheus.GaugeValue, float64(len(s.Config.Plugins())))
	ch <- prometheus.MustNewConstMetric(c.loadTimeDesc, prometheus.GaugeValue, float64(s.LoadedAt.Unix()))
	for _, name := range s.Config.Services().Names() {
		ch <- prometheus.MustNewConstMetric(c.serviceDesc, prometheus.GaugeValue, 1, name)
	}
	for _, sev := range []validate.Severity{validate.Error, validate.Warning} {
		ch <- prometheus.MustNewConstMetric(c.findingsDesc, prometheus.GaugeValue, float64(s.Report.Count(sev)), sev.String())
	}
}
