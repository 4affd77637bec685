// Package metrics exposes Prometheus counters for the bot's hot paths.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every counter registered by the bot.
type Metrics struct {
	UpdatesHandled   prometheus.Counter
	UpdatesFailed    prometheus.Counter
	Downloads        prometheus.Counter
	BroadcastSent    prometheus.Counter
	BroadcastFailed  prometheus.Counter
	LockTimeouts     prometheus.Counter
	ComplaintsLogged prometheus.Counter
	Logins           prometheus.Counter
}

// New registers the counters on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		UpdatesHandled: factory.NewCounter(prometheus.CounterOpts{
			Name: "bot_updates_handled_total",
			Help: "Inbound Telegram updates processed.",
		}),
		UpdatesFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "bot_updates_failed_total",
			Help: "Updates that ended in an unhandled error.",
		}),
		Downloads: factory.NewCounter(prometheus.CounterOpts{
			Name: "bot_downloads_total",
			Help: "Catalog files delivered to students.",
		}),
		BroadcastSent: factory.NewCounter(prometheus.CounterOpts{
			Name: "bot_broadcast_sent_total",
			Help: "Broadcast messages delivered.",
		}),
		BroadcastFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "bot_broadcast_failed_total",
			Help: "Broadcast messages that failed to deliver.",
		}),
		LockTimeouts: factory.NewCounter(prometheus.CounterOpts{
			Name: "bot_lock_timeouts_total",
			Help: "Document lock acquisitions that timed out.",
		}),
		ComplaintsLogged: factory.NewCounter(prometheus.CounterOpts{
			Name: "bot_complaints_total",
			Help: "Complaints and suggestions recorded.",
		}),
		Logins: factory.NewCounter(prometheus.CounterOpts{
			Name: "bot_logins_total",
			Help: "Successful student logins.",
		}),
	}
}
