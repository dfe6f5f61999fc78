package tracker

import (
	"sort"

	"ecotrack/backend/internal/models"
)

// TopN ranks users by eco points, highest first, and returns at most n entries.
// Users with equal points keep their input order.
func TopN(users []models.User, n int) []models.LeaderboardEntry {
	if n <= 0 {
		return []models.LeaderboardEntry{}
	}
	ranked := make([]models.User, len(users))
	copy(ranked, users)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].EcoPoints > ranked[j].EcoPoints
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	out := make([]models.LeaderboardEntry, len(ranked))
	for i, u := range ranked {
		out[i] = models.LeaderboardEntry{
			ID:        u.ID,
			Name:      u.Name,
			AvatarURL: u.AvatarURL,
			EcoPoints: u.EcoPoints,
			Level:     u.Level,
		}
	}
	return out
}
