package export

import "github.com/prometheus/client_golang/prometheus"

var exportBytesTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "sqlgate_export_bytes_total",
		Help: "Total bytes of Parquet export payloads uploaded.",
	},
)

func init() {
	prometheus.MustRegister(exportBytesTotal)
}
