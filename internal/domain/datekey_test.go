package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateRange(t *testing.T) {
	start := time.Date(2025, 3, 30, 15, 0, 0, 0, time.UTC)
	end := time.Date(2025, 4, 2, 1, 0, 0, 0, time.UTC)

	keys := DateRange(start, end)
	assert.Equal(t, []DateKey{"2025-03-30", "2025-03-31", "2025-04-01", "2025-04-02"}, keys)
	assert.Nil(t, DateRange(end, start))
}

func TestParseDateKey(t *testing.T) {
	k, err := ParseDateKey("2025-01-09")
	require.NoError(t, err)
	assert.Equal(t, DateKey("2025-01-09"), k)

	_, err = ParseDateKey("2025/01/09")
	assert.Error(t, err)
}

func TestLimitsMirrorConstants(t *testing.T) {
	l := Limits()
	assert.Equal(t, 100, l.MaxWishlistSpots)
	assert.Equal(t, 20, l.MaxPlans)
	assert.Equal(t, 10, l.MaxSpotsPerDay)
	assert.Equal(t, 7, l.MaxPlanDays)
	assert.Equal(t, 1000, l.MaxMemoLength)
	assert.Contains(t, l.Messages.Wishlist, "100")
}
