package settlement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWeekOf(t *testing.T) {
	t.Run("mid-week date", func(t *testing.T) {
		w := WeekOf(time.Date(2026, 3, 4, 15, 30, 0, 0, time.UTC)) // Wednesday
		assert.Equal(t, Week{Year: 2026, Week: 10}, w)
	})

	t.Run("january can belong to the previous ISO year", func(t *testing.T) {
		w := WeekOf(time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)) // Friday, week 53 of 2026
		assert.Equal(t, Week{Year: 2026, Week: 53}, w)
	})
}

func TestPeriodOf(t *testing.T) {
	t.Run("bounds are monday to monday", func(t *testing.T) {
		start, end := PeriodOf(time.Date(2026, 3, 4, 15, 30, 0, 0, time.UTC))

		assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), start)
		assert.Equal(t, time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), end)
	})

	t.Run("sunday belongs to the preceding monday's week", func(t *testing.T) {
		start, end := PeriodOf(time.Date(2026, 3, 8, 23, 59, 0, 0, time.UTC))

		assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), start)
		assert.Equal(t, time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), end)
	})

	t.Run("monday starts its own week", func(t *testing.T) {
		start, _ := PeriodOf(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))
		assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), start)
	})
}

func TestWeek_Before(t *testing.T) {
	assert.True(t, Week{Year: 2025, Week: 52}.Before(Week{Year: 2026, Week: 1}))
	assert.True(t, Week{Year: 2026, Week: 9}.Before(Week{Year: 2026, Week: 10}))
	assert.False(t, Week{Year: 2026, Week: 10}.Before(Week{Year: 2026, Week: 10}))
}
