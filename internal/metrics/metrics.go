package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the fund store and reminder path.
// All methods are nil-safe so callers can run without metrics wired.
type Metrics struct {
	// Mutations by entity and operation
	Mutations *prometheus.CounterVec

	// Blob writes that failed and were rolled back
	PersistFailures prometheus.Counter

	// Reminders queued for dispatch
	RemindersQueued prometheus.Counter

	// Mutating requests refused by the per-IP rate limiter
	RateLimitHits prometheus.Counter

	// Requests whose peer address could not be parsed as an IP
	InvalidClientIPs prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		Mutations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "kaskelas_mutations_total",
			Help: "Total store mutations by entity and operation",
		}, []string{"entity", "op"}), // entity: member, due, payment, expense

		PersistFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "kaskelas_persist_failures_total",
			Help: "Total blob-store writes that failed",
		}),

		RemindersQueued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "kaskelas_reminders_queued_total",
			Help: "Total payment reminders queued for dispatch",
		}),

		RateLimitHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "kaskelas_rate_limit_hits_total",
			Help: "Total mutating requests refused by the rate limiter",
		}),

		InvalidClientIPs: promauto.NewCounter(prometheus.CounterOpts{
			Name: "kaskelas_invalid_client_ips_total",
			Help: "Total requests with an unparseable peer address",
		}),
	}
}

// IncMutation records a successful store mutation.
func (m *Metrics) IncMutation(entity, op string) {
	if m != nil {
		m.Mutations.WithLabelValues(entity, op).Inc()
	}
}

// IncPersistFailure records a failed blob write.
func (m *Metrics) IncPersistFailure() {
	if m != nil {
		m.PersistFailures.Inc()
	}
}

// IncReminderQueued records a reminder handed to the queue.
func (m *Metrics) IncReminderQueued() {
	if m != nil {
		m.RemindersQueued.Inc()
	}
}

// IncRateLimitHit records a request refused by the rate limiter.
func (m *Metrics) IncRateLimitHit() {
	if m != nil {
		m.RateLimitHits.Inc()
	}
}

// IncInvalidClientIP records a request with an unparseable peer address.
func (m *Metrics) IncInvalidClientIP() {
	if m != nil {
		m.InvalidClientIPs.Inc()
	}
}
