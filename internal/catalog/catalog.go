package catalog

import (
	"fmt"

	"ecotrack/backend/internal/models"
)

// CyclingActionID identifies the catalog action counted towards cycling distance.
const CyclingActionID uint = 3

// Catalog is an immutable set of predefined eco actions.
type Catalog struct {
	actions []models.EcoAction
	byID    map[uint]models.EcoAction
}

// New builds a catalog. Ids must be unique and positive, points positive.
func New(actions []models.EcoAction) (*Catalog, error) {
	c := &Catalog{
		actions: make([]models.EcoAction, 0, len(actions)),
		byID:    make(map[uint]models.EcoAction, len(actions)),
	}
	for _, a := range actions {
		if a.ID == 0 {
			return nil, fmt.Errorf("catalog action %q: id must be positive: %w", a.Title, models.ErrInvalidInput)
		}
		if a.Points <= 0 {
			return nil, fmt.Errorf("catalog action %d: points must be positive: %w", a.ID, models.ErrInvalidInput)
		}
		if _, dup := c.byID[a.ID]; dup {
			return nil, fmt.Errorf("catalog action %d: duplicate id: %w", a.ID, models.ErrInvalidInput)
		}
		c.actions = append(c.actions, a)
		c.byID[a.ID] = a
	}
	return c, nil
}

// Default returns the catalog seeded at startup.
func Default() *Catalog {
	c, err := New([]models.EcoAction{
		{ID: 1, Title: "Sort household waste", Category: models.CategoryWaste, Points: 10},
		{ID: 2, Title: "Refuse single-use plastic", Category: models.CategoryPlastic, Points: 15},
		{ID: CyclingActionID, Title: "Ride a bicycle", Category: models.CategoryTransport, Points: 20},
		{ID: 4, Title: "Use a reusable bottle", Category: models.CategoryPlastic, Points: 10},
		{ID: 5, Title: "Buy local produce", Category: models.CategoryFood, Points: 15},
		{ID: 6, Title: "Save water", Category: models.CategoryWater, Points: 10},
		{ID: 7, Title: "Switch off lights", Category: models.CategoryEnergy, Points: 5},
		{ID: 8, Title: "Plant a tree", Category: models.CategoryNature, Points: 50},
		{ID: 9, Title: "Take public transport", Category: models.CategoryTransport, Points: 15},
		{ID: 10, Title: "Vegetarian day", Category: models.CategoryFood, Points: 20},
	})
	if err != nil {
		panic(err)
	}
	return c
}

// Lookup returns the action with the given id.
func (c *Catalog) Lookup(id uint) (models.EcoAction, bool) {
	a, ok := c.byID[id]
	return a, ok
}

// All returns a copy of the catalog in seed order.
func (c *Catalog) All() []models.EcoAction {
	out := make([]models.EcoAction, len(c.actions))
	copy(out, c.actions)
	return out
}

// CategoryOf resolves the category of a ledger entry: the catalog category when
// the entry references a known action, custom otherwise.
func (c *Catalog) CategoryOf(r models.ActionRecord) models.Category {
	if r.ActionID != nil {
		if a, ok := c.byID[*r.ActionID]; ok {
			return a.Category
		}
	}
	return models.CategoryCustom
}

// TitleOf resolves the display title of a ledger entry.
func (c *Catalog) TitleOf(r models.ActionRecord) string {
	if r.ActionID != nil {
		if a, ok := c.byID[*r.ActionID]; ok {
			return a.Title
		}
	}
	if r.CustomLabel != nil {
		return *r.CustomLabel
	}
	return ""
}
