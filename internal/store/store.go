package store

import (
	"context"
	"fmt"

	"ecotrack/backend/internal/models"
)

var (
	ErrUserNotFound   = fmt.Errorf("user: %w", models.ErrNotFound)
	ErrDuplicateEmail = fmt.Errorf("user already exists: %w", models.ErrInvalidInput)
)

// Repository owns the user table and the action ledger.
//
// AppendAction must append the record and credit its owner as a single atomic
// unit: no reader may observe the record without the matching points, and
// concurrent appends must not lose updates.
type Repository interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id uint) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	// ListUsers returns all users in registration order.
	ListUsers(ctx context.Context) ([]models.User, error)

	// AppendAction assigns rec an id, appends it and credits rec.PointsAwarded
	// to its owner. It returns the owner as updated.
	AppendAction(ctx context.Context, rec *models.ActionRecord) (models.User, error)
	// ListActions returns a user's records in insertion order.
	ListActions(ctx context.Context, userID uint) ([]models.ActionRecord, error)
	// Snapshot returns a user together with its records as of one point in
	// the ledger, so the user's points always equal the sum of the records.
	Snapshot(ctx context.Context, userID uint) (models.User, []models.ActionRecord, error)

	Close() error
}

// Open returns the repository selected by driver: "memory" or "sqlite".
func Open(driver, path string) (Repository, error) {
	switch driver {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		db, err := InitDB(path)
		if err != nil {
			return nil, err
		}
		return NewGormStore(db), nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", driver)
	}
}
