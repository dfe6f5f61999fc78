package tracker

import (
	"testing"
	"time"

	"ecotrack/backend/internal/catalog"
	"ecotrack/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeStatsEmpty(t *testing.T) {
	st := ComputeStats(nil, catalog.Default(), nil)
	require.Equal(t, 0, st.TotalActions)
	require.Equal(t, 0, st.TotalPoints)
	require.Equal(t, 0.0, st.CO2Saved)
	require.NotNil(t, st.DailyStats)
	require.Empty(t, st.DailyStats)
	require.NotNil(t, st.CategoryStats)
	require.Empty(t, st.CategoryStats)
}

func TestComputeStatsCategories(t *testing.T) {
	ts := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	entries := []models.ActionRecord{
		{ID: 1, ActionID: uintPtr(1), Timestamp: ts, PointsAwarded: 10},
		{ID: 2, ActionID: uintPtr(3), Timestamp: ts, PointsAwarded: 20},
	}
	st := ComputeStats(entries, catalog.Default(), time.UTC)
	require.Equal(t, 2, st.TotalActions)
	require.Equal(t, 30, st.TotalPoints)
	require.InDelta(t, 5.0, st.CO2Saved, 1e-9)
	require.Equal(t, map[models.Category]models.Bucket{
		models.CategoryWaste:     {Count: 1, Points: 10},
		models.CategoryTransport: {Count: 1, Points: 20},
	}, st.CategoryStats)
	require.Equal(t, map[string]models.Bucket{"2024-03-10": {Count: 2, Points: 30}}, st.DailyStats)
}

func TestComputeStatsCustomAndSnapshotPoints(t *testing.T) {
	ts := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	entries := []models.ActionRecord{
		{ID: 1, CustomLabel: strPtr("Fixed an old item"), Timestamp: ts, PointsAwarded: 10},
		// awarded before a catalog price change; the snapshot is what counts
		{ID: 2, ActionID: uintPtr(8), Timestamp: ts, PointsAwarded: 30},
	}
	st := ComputeStats(entries, catalog.Default(), nil)
	assert.Equal(t, models.Bucket{Count: 1, Points: 10}, st.CategoryStats[models.CategoryCustom])
	assert.Equal(t, models.Bucket{Count: 1, Points: 30}, st.CategoryStats[models.CategoryNature])
	assert.Equal(t, 40, st.TotalPoints)
}

func TestComputeStatsDaysUseReferenceZone(t *testing.T) {
	// 23:30 UTC on the 1st is already the 2nd in Tokyo.
	ts := time.Date(2024, 6, 1, 23, 30, 0, 0, time.UTC)
	entries := []models.ActionRecord{{ID: 1, ActionID: uintPtr(1), Timestamp: ts, PointsAwarded: 10}}

	st := ComputeStats(entries, catalog.Default(), time.UTC)
	require.Contains(t, st.DailyStats, "2024-06-01")

	tokyo := time.FixedZone("JST", 9*60*60)
	st = ComputeStats(entries, catalog.Default(), tokyo)
	require.Contains(t, st.DailyStats, "2024-06-02")
}

func TestComputeStatsOrderIndependent(t *testing.T) {
	base := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	entries := []models.ActionRecord{
		{ID: 1, ActionID: uintPtr(1), Timestamp: base, PointsAwarded: 10},
		{ID: 2, ActionID: uintPtr(2), Timestamp: base.Add(24 * time.Hour), PointsAwarded: 15},
		{ID: 3, CustomLabel: strPtr("x"), Timestamp: base.Add(48 * time.Hour), PointsAwarded: 10},
	}
	reversed := []models.ActionRecord{entries[2], entries[1], entries[0]}
	require.Equal(t, ComputeStats(entries, catalog.Default(), nil), ComputeStats(reversed, catalog.Default(), nil))
}

func TestRecentDays(t *testing.T) {
	daily := map[string]models.Bucket{
		"2024-01-03": {Count: 1, Points: 10},
		"2024-01-01": {Count: 2, Points: 20},
		"2024-01-10": {Count: 3, Points: 30},
	}
	got := RecentDays(daily, 2)
	require.Equal(t, []models.DayBucket{
		{Date: "2024-01-03", Bucket: models.Bucket{Count: 1, Points: 10}},
		{Date: "2024-01-10", Bucket: models.Bucket{Count: 3, Points: 30}},
	}, got)

	require.Len(t, RecentDays(daily, 7), 3)
	require.Empty(t, RecentDays(daily, 0))
	require.Empty(t, RecentDays(map[string]models.Bucket{}, 7))
}
