package store

import (
	"context"
	"errors"
	"sync"

	"ecotrack/backend/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB opens the sqlite database at path and migrates the schema.
func InitDB(path string) (*gorm.DB, error) {
	d, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}
	if err := d.AutoMigrate(&models.User{}, &models.ActionRecord{}); err != nil {
		return nil, err
	}
	return d, nil
}

// GormStore is a Repository backed by gorm.
type GormStore struct {
	// mu serializes writers; sqlite would otherwise reject concurrent
	// read-modify-write transactions with SQLITE_BUSY.
	mu sync.Mutex
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) CreateUser(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.Email = normalizeEmail(u.Email)
	u.Level = models.LevelFor(u.EcoPoints)
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("email = ?", u.Email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicateEmail
		}
		if err := tx.Create(u).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateEmail
			}
			return err
		}
		return nil
	})
}

func (s *GormStore) GetUser(ctx context.Context, id uint) (models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return models.User{}, translate(err)
	}
	return u, nil
}

func (s *GormStore) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&u).Error; err != nil {
		return models.User{}, translate(err)
	}
	return u, nil
}

func (s *GormStore) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Order("id asc").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (s *GormStore) AppendAction(ctx context.Context, rec *models.ActionRecord) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var u models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&u, rec.UserID).Error; err != nil {
			return translate(err)
		}
		rec.ID = 0
		if err := tx.Create(rec).Error; err != nil {
			return err
		}
		u.Credit(rec.PointsAwarded)
		return tx.Model(&models.User{}).Where("id = ?", u.ID).Updates(map[string]interface{}{
			"eco_points": u.EcoPoints,
			"level":      u.Level,
		}).Error
	})
	if err != nil {
		return models.User{}, err
	}
	return u, nil
}

func (s *GormStore) ListActions(ctx context.Context, userID uint) ([]models.ActionRecord, error) {
	var recs []models.ActionRecord
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("id asc").Find(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}

func (s *GormStore) Snapshot(ctx context.Context, userID uint) (models.User, []models.ActionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var u models.User
	var recs []models.ActionRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&u, userID).Error; err != nil {
			return translate(err)
		}
		return tx.Where("user_id = ?", userID).Order("id asc").Find(&recs).Error
	})
	if err != nil {
		return models.User{}, nil, err
	}
	if recs == nil {
		recs = []models.ActionRecord{}
	}
	return u, recs, nil
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrUserNotFound
	}
	return err
}
