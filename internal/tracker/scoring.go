package tracker

import (
	"fmt"
	"strings"

	"ecotrack/backend/internal/catalog"
	"ecotrack/backend/internal/models"
)

// CustomActionPoints is awarded for free-text entries.
const CustomActionPoints = 10

var (
	ErrActionNotFound   = fmt.Errorf("eco action: %w", models.ErrNotFound)
	ErrEmptySubmission  = fmt.Errorf("action_id or custom_action is required: %w", models.ErrInvalidInput)
	ErrInvalidUserInput = fmt.Errorf("name and email are required: %w", models.ErrInvalidInput)
)

// Submission is what a user sends to log an action.
type Submission struct {
	ActionID    *uint
	CustomLabel *string
}

// ResolvePoints validates a submission against the catalog and returns it
// normalized to exactly one of ActionID/CustomLabel, with the points it earns.
// A catalog id takes precedence over a label.
func ResolvePoints(cat *catalog.Catalog, sub Submission) (Submission, int, error) {
	if sub.ActionID != nil {
		a, ok := cat.Lookup(*sub.ActionID)
		if !ok {
			return Submission{}, 0, fmt.Errorf("id %d: %w", *sub.ActionID, ErrActionNotFound)
		}
		id := a.ID
		return Submission{ActionID: &id}, a.Points, nil
	}
	if sub.CustomLabel != nil {
		label := strings.TrimSpace(*sub.CustomLabel)
		if label != "" {
			return Submission{CustomLabel: &label}, CustomActionPoints, nil
		}
	}
	return Submission{}, 0, ErrEmptySubmission
}
