package commands

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePeriodDefault(t *testing.T) {
	begin, end, err := resolvePeriod("", "")
	require.NoError(t, err)

	assert.Equal(t, time.UTC, end.Location())
	assert.Zero(t, end.Hour())
	assert.Equal(t, 72*time.Hour, end.Sub(begin), "window covers today and the previous 3 days")
}

func TestResolvePeriodExplicit(t *testing.T) {
	begin, end, err := resolvePeriod("2025-06-01", "2025-06-07")
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), begin)
	assert.Equal(t, time.Date(2025, 6, 7, 0, 0, 0, 0, time.UTC), end)
}

func TestResolvePeriodRejectsBadInput(t *testing.T) {
	t.Run("invalid begin", func(t *testing.T) {
		_, _, err := resolvePeriod("01.06.2025", "")
		assert.ErrorContains(t, err, "invalid --begin")
	})

	t.Run("invalid end", func(t *testing.T) {
		_, _, err := resolvePeriod("", "junk")
		assert.ErrorContains(t, err, "invalid --end")
	})

	t.Run("end before begin", func(t *testing.T) {
		_, _, err := resolvePeriod("2025-06-07", "2025-06-01")
		assert.ErrorContains(t, err, "--end before --begin")
	})
}
