package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Label values for the link counters.
const (
	DirectionTx = "tx"
	DirectionRx = "rx"

	ResyncAligned = "aligned"
	ResyncShifted = "shifted"
	ResyncFailed  = "failed"

	StageHeader   = "header"
	StageEnvelope = "envelope"
	StageTLV      = "tlv"
	StageHCI      = "hci"
	StageMatch    = "match"
)

var (
	registerOnce sync.Once

	frames = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "esphost",
			Name:      "frames_total",
			Help:      "Frames sent and received, by interface.",
		},
		[]string{"direction", "iface"},
	)
	checksumMismatches = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "esphost",
			Name:      "checksum_mismatch_total",
			Help:      "Inbound frames whose checksum did not match.",
		},
	)
	resyncs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "esphost",
			Name:      "resync_total",
			Help:      "Alignment decisions on inbound buffers.",
		},
		[]string{"outcome"},
	)
	hciEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "esphost",
			Name:      "hci_events_total",
			Help:      "Decoded HCI events, by kind.",
		},
		[]string{"kind"},
	)
	decodeErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "esphost",
			Name:      "decode_errors_total",
			Help:      "Inbound buffers rejected, by decode stage.",
		},
		[]string{"stage"},
	)
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "esphost",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "esphost",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(frames, checksumMismatches, resyncs, hciEvents, decodeErrors, httpRequests, httpDuration)
	})
}

// Recorder feeds link activity into the package counters. A nil *Recorder
// records nothing.
type Recorder struct{}

func NewRecorder() *Recorder {
	RegisterMetrics()
	return &Recorder{}
}

func (r *Recorder) Frame(direction, iface string) {
	if r == nil {
		return
	}
	frames.WithLabelValues(direction, iface).Inc()
}

func (r *Recorder) ChecksumMismatch() {
	if r == nil {
		return
	}
	checksumMismatches.Inc()
}

func (r *Recorder) Resync(outcome string) {
	if r == nil {
		return
	}
	resyncs.WithLabelValues(outcome).Inc()
}

func (r *Recorder) HciEvent(kind string) {
	if r == nil {
		return
	}
	hciEvents.WithLabelValues(kind).Inc()
}

func (r *Recorder) DecodeError(stage string) {
	if r == nil {
		return
	}
	decodeErrors.WithLabelValues(stage).Inc()
}

func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(method, path, statusLabel).Observe(duration.Seconds())
}
