package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	scheduleSaves = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lotdesk",
			Name:      "schedule_saves_total",
			Help:      "Count of weekly hours saves by input source.",
		},
		[]string{"source"},
	)

	scheduleDefaultDays = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "lotdesk",
			Name:      "schedule_default_days_total",
			Help:      "Days that fell back to default hours while reading stored schedules.",
		},
	)

	bulletEdits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lotdesk",
			Name:      "bullet_edits_total",
			Help:      "Count of bullet list edits by field and operation.",
		},
		[]string{"field", "op"},
	)

	feedMerges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lotdesk",
			Name:      "feed_merges_total",
			Help:      "Tow request feed merge outcomes.",
		},
		[]string{"result"},
	)

	feedFetchErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "lotdesk",
			Name:      "feed_fetch_errors_total",
			Help:      "Point-fetches that failed after a realtime change.",
		},
	)

	realtimeDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "lotdesk",
			Name:      "realtime_dropped_total",
			Help:      "Changes dropped because a subscriber buffer was full.",
		},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(scheduleSaves, scheduleDefaultDays, bulletEdits, feedMerges, feedFetchErrors, realtimeDropped)
	})
}

func IncScheduleSave(source string) {
	scheduleSaves.WithLabelValues(source).Inc()
}

func AddScheduleDefaultDays(n int) {
	if n > 0 {
		scheduleDefaultDays.Add(float64(n))
	}
}

func IncBulletEdit(field, op string) {
	bulletEdits.WithLabelValues(field, op).Inc()
}

func IncFeedMerge(result string) {
	feedMerges.WithLabelValues(result).Inc()
}

func IncFeedFetchError() {
	feedFetchErrors.Inc()
}

func IncRealtimeDropped() {
	realtimeDropped.Inc()
}
