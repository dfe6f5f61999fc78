package tracker

import (
	"sort"
	"time"

	"ecotrack/backend/internal/catalog"
	"ecotrack/backend/internal/models"
)

// CO2PerActionKg is the flat CO2 saving credited per logged action.
const CO2PerActionKg = 2.5

const dayLayout = "2006-01-02"

// ComputeStats derives a user's statistics from their ledger entries. Days are
// bucketed in loc; a nil loc means UTC.
func ComputeStats(entries []models.ActionRecord, cat *catalog.Catalog, loc *time.Location) models.Stats {
	if loc == nil {
		loc = time.UTC
	}
	st := models.Stats{
		DailyStats:    make(map[string]models.Bucket),
		CategoryStats: make(map[models.Category]models.Bucket),
	}
	for _, e := range entries {
		st.TotalActions++
		st.TotalPoints += e.PointsAwarded

		day := e.Timestamp.In(loc).Format(dayLayout)
		d := st.DailyStats[day]
		d.Count++
		d.Points += e.PointsAwarded
		st.DailyStats[day] = d

		category := cat.CategoryOf(e)
		c := st.CategoryStats[category]
		c.Count++
		c.Points += e.PointsAwarded
		st.CategoryStats[category] = c
	}
	st.CO2Saved = float64(st.TotalActions) * CO2PerActionKg
	return st
}

// RecentDays returns the last n distinct days of daily, oldest first.
func RecentDays(daily map[string]models.Bucket, n int) []models.DayBucket {
	if n <= 0 {
		return []models.DayBucket{}
	}
	days := make([]string, 0, len(daily))
	for d := range daily {
		days = append(days, d)
	}
	// keys are YYYY-MM-DD so lexical order is chronological
	sort.Strings(days)
	if len(days) > n {
		days = days[len(days)-n:]
	}
	out := make([]models.DayBucket, len(days))
	for i, d := range days {
		out[i] = models.DayBucket{Date: d, Bucket: daily[d]}
	}
	return out
}
