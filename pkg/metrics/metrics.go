package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// RPCRequests counts finished RPCs by full method and status code
var RPCRequests = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "bankstream_rpc_requests_total",
		Help: "Total number of RPCs handled, by method and gRPC status code",
	},
	[]string{"method", "code"},
)

// RPCLatency records how long RPCs take, streams included
var RPCLatency = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "bankstream_rpc_duration_seconds",
		Help:    "Duration in seconds of handled RPCs",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"method"},
)

// Bank service metrics
var (
	PayoutUnits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bankstream_payout_units_total",
			Help: "Number of payout units delivered by withdrawals",
		},
	)

	WithdrawalsRejected = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bankstream_withdrawals_rejected_total",
			Help: "Number of withdrawals rejected by the withdraw limit",
		},
	)

	Deposits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bankstream_deposit_streams_total",
			Help: "Number of deposit streams answered with a balance",
		},
	)
)

// File service metrics
var (
	UploadBytes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bankstream_upload_bytes_total",
			Help: "Number of bytes written to upload destinations",
		},
	)

	Uploads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bankstream_uploads_total",
			Help: "Number of finished uploads by result status",
		},
		[]string{"status"},
	)
)

func init() {
	prometheus.MustRegister(RPCRequests, RPCLatency)
	prometheus.MustRegister(PayoutUnits, WithdrawalsRejected, Deposits)
	prometheus.MustRegister(UploadBytes, Uploads)
}
