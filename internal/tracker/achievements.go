package tracker

import (
	"ecotrack/backend/internal/catalog"
	"ecotrack/backend/internal/models"
)

// CyclingKmPerTrip is the distance credited for each logged cycling action.
const CyclingKmPerTrip = 5

// Predicate reports whether an achievement currently holds for a user.
type Predicate func(u models.User, entries []models.ActionRecord, cat *catalog.Catalog) bool

type Rule struct {
	Achievement models.Achievement
	Satisfied   Predicate
}

// DefaultRules returns the built-in achievement rules. Append new rules at the
// end so existing ids keep their meaning.
func DefaultRules() []Rule {
	return []Rule{
		{
			Achievement: models.Achievement{ID: 1, Title: "First Steps", Description: "10 eco actions completed", Icon: "🌱"},
			Satisfied:   MinActions(10),
		},
		{
			Achievement: models.Achievement{ID: 2, Title: "Eco Warrior", Description: "50 eco actions completed", Icon: "🌿"},
			Satisfied:   MinActions(50),
		},
		{
			Achievement: models.Achievement{ID: 3, Title: "Century of Points", Description: "Earned 100 eco points", Icon: "💯"},
			Satisfied:   MinPoints(100),
		},
		{
			// Counts plastic actions ever logged, not a 7-day streak.
			Achievement: models.Achievement{ID: 4, Title: "Plastic-Free Week", Description: "7 days without plastic", Icon: "♻️"},
			Satisfied:   MinCategoryCount(models.CategoryPlastic, 7),
		},
		{
			Achievement: models.Achievement{ID: 5, Title: "100km Cyclist", Description: "Cycled 100 km", Icon: "🚴"},
			Satisfied:   MinDistance(catalog.CyclingActionID, CyclingKmPerTrip, 100),
		},
	}
}

func MinActions(n int) Predicate {
	return func(_ models.User, entries []models.ActionRecord, _ *catalog.Catalog) bool {
		return len(entries) >= n
	}
}

func MinPoints(n int) Predicate {
	return func(u models.User, _ []models.ActionRecord, _ *catalog.Catalog) bool {
		return u.EcoPoints >= n
	}
}

// MinCategoryCount holds once n entries resolve to category. Free-text entries
// never count.
func MinCategoryCount(category models.Category, n int) Predicate {
	return func(_ models.User, entries []models.ActionRecord, cat *catalog.Catalog) bool {
		count := 0
		for _, e := range entries {
			if e.ActionID != nil && cat.CategoryOf(e) == category {
				count++
			}
		}
		return count >= n
	}
}

// MinDistance holds once the entries for actionID, at kmPerTrip each, reach km.
func MinDistance(actionID uint, kmPerTrip, km int) Predicate {
	return func(_ models.User, entries []models.ActionRecord, _ *catalog.Catalog) bool {
		trips := 0
		for _, e := range entries {
			if e.ActionID != nil && *e.ActionID == actionID {
				trips++
			}
		}
		return trips*kmPerTrip >= km
	}
}

// Evaluator checks a fixed rule set against a user's history.
type Evaluator struct {
	rules   []Rule
	catalog *catalog.Catalog
}

func NewEvaluator(cat *catalog.Catalog, rules []Rule) *Evaluator {
	return &Evaluator{rules: rules, catalog: cat}
}

// Evaluate returns the achievements whose rules hold, in rule order.
func (e *Evaluator) Evaluate(u models.User, entries []models.ActionRecord) []models.Achievement {
	out := []models.Achievement{}
	for _, r := range e.rules {
		if r.Satisfied(u, entries, e.catalog) {
			a := r.Achievement
			a.Unlocked = true
			out = append(out, a)
		}
	}
	return out
}
