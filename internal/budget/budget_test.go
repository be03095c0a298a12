package budget

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/web-agent/internal/model"
)

// fakeClock returns a clock function backed by a mutable instant.
func fakeClock(at *time.Time) func() time.Time {
	return func() time.Time { return *at }
}

func TestMayContinue_FreshBudget(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tr := NewWithClock(3, time.Minute, fakeClock(&now))
	assert.True(t, tr.MayContinue())
}

func TestMayContinue_DepthExhausted(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tr := NewWithClock(2, time.Minute, fakeClock(&now))
	tr.RecordVisit()
	tr.RecordVisit()
	assert.False(t, tr.MayContinue())
	assert.Equal(t, model.StopDepthExhausted, tr.StopReason())
}

func TestMayContinue_TimeExhausted(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tr := NewWithClock(5, 30*time.Second, fakeClock(&now))
	now = now.Add(31 * time.Second)
	assert.False(t, tr.MayContinue())
	assert.Equal(t, model.StopTimeExhausted, tr.StopReason())
}

func TestMayContinue_ZeroTime(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tr := NewWithClock(5, 0, fakeClock(&now))
	assert.False(t, tr.MayContinue())
	assert.Equal(t, model.StopTimeExhausted, tr.StopReason())
}

func TestStopReason_DepthWinsWhenBothExhausted(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tr := NewWithClock(1, time.Second, fakeClock(&now))
	tr.RecordVisit()
	now = now.Add(2 * time.Second)
	assert.Equal(t, model.StopDepthExhausted, tr.StopReason())
}

func TestRemaining_FlooredAtZero(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tr := NewWithClock(1, 10*time.Second, fakeClock(&now))
	assert.Equal(t, 10*time.Second, tr.Remaining())

	now = now.Add(15 * time.Second)
	assert.Equal(t, time.Duration(0), tr.Remaining())
}

func TestFetchTimeout_CappedByRemaining(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tr := NewWithClock(1, 10*time.Second, fakeClock(&now))

	assert.Equal(t, 5*time.Second, tr.FetchTimeout(5*time.Second))
	assert.Equal(t, 10*time.Second, tr.FetchTimeout(30*time.Second))

	now = now.Add(8 * time.Second)
	assert.Equal(t, 2*time.Second, tr.FetchTimeout(30*time.Second))
}

func TestVisited_Counts(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tr := NewWithClock(10, time.Minute, fakeClock(&now))
	assert.Equal(t, 0, tr.Visited())
	tr.RecordVisit()
	tr.RecordVisit()
	tr.RecordVisit()
	assert.Equal(t, 3, tr.Visited())
}
