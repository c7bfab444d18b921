package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDailyPolicy_WindowAt(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	p := NewDailyPolicy(loc)

	// 22:30 UTC - это уже следующий день в UTC+3
	w := p.WindowAt(time.Date(2026, 10, 18, 22, 30, 0, 0, time.UTC))

	assert.Equal(t, "2026-10-19", w.Key)
	assert.True(t, w.Start.Equal(time.Date(2026, 10, 18, 21, 0, 0, 0, time.UTC)))
	assert.True(t, w.End.Equal(time.Date(2026, 10, 19, 21, 0, 0, 0, time.UTC)))
}

func TestWindow_ContainsIsHalfOpen(t *testing.T) {
	w := NewDailyPolicy(time.UTC).WindowAt(time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC))

	assert.True(t, w.Contains(w.Start))
	assert.True(t, w.Contains(w.End.Add(-time.Nanosecond)))
	assert.False(t, w.Contains(w.End))
	assert.False(t, w.Contains(w.Start.Add(-time.Nanosecond)))
}

func TestDailyPolicy_WindowForKey(t *testing.T) {
	p := NewDailyPolicy(nil)

	w, err := p.WindowForKey("2026-02-28")
	require.NoError(t, err)
	assert.Equal(t, "2026-02-28", w.Key)
	assert.Equal(t, 24*time.Hour, w.End.Sub(w.Start))

	_, err = p.WindowForKey("28.02.2026")
	assert.Error(t, err)
}
