package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRegisterIsIdempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		Register()
		Register()
	})
}

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(feedMerges.WithLabelValues("prepended"))
	IncFeedMerge("prepended")
	assert.Equal(t, before+1, testutil.ToFloat64(feedMerges.WithLabelValues("prepended")))

	before = testutil.ToFloat64(scheduleDefaultDays)
	AddScheduleDefaultDays(0)
	AddScheduleDefaultDays(3)
	assert.Equal(t, before+3, testutil.ToFloat64(scheduleDefaultDays))
}
