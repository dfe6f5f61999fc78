package store

import (
	"context"
	"strings"
	"sync"

	"ecotrack/backend/internal/models"
)

// MemoryStore keeps users and the ledger in process memory.
type MemoryStore struct {
	mu         sync.RWMutex
	users      []models.User
	userIdx    map[uint]int
	emailIdx   map[string]uint
	ledger     []models.ActionRecord
	byUser     map[uint][]int
	nextUserID uint
	nextRecID  uint
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		userIdx:    make(map[uint]int),
		emailIdx:   make(map[string]uint),
		byUser:     make(map[uint][]int),
		nextUserID: 1,
		nextRecID:  1,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *MemoryStore) CreateUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := normalizeEmail(u.Email)
	if _, exists := s.emailIdx[key]; exists {
		return ErrDuplicateEmail
	}
	u.ID = s.nextUserID
	s.nextUserID++
	u.Level = models.LevelFor(u.EcoPoints)
	s.userIdx[u.ID] = len(s.users)
	s.emailIdx[key] = u.ID
	s.users = append(s.users, *u)
	return nil
}

func (s *MemoryStore) GetUser(_ context.Context, id uint) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.userIdx[id]
	if !ok {
		return models.User{}, ErrUserNotFound
	}
	return s.users[i], nil
}

func (s *MemoryStore) GetUserByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.emailIdx[normalizeEmail(email)]
	if !ok {
		return models.User{}, ErrUserNotFound
	}
	return s.users[s.userIdx[id]], nil
}

func (s *MemoryStore) ListUsers(_ context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.User, len(s.users))
	copy(out, s.users)
	return out, nil
}

func (s *MemoryStore) AppendAction(_ context.Context, rec *models.ActionRecord) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.userIdx[rec.UserID]
	if !ok {
		return models.User{}, ErrUserNotFound
	}
	rec.ID = s.nextRecID
	s.nextRecID++
	s.byUser[rec.UserID] = append(s.byUser[rec.UserID], len(s.ledger))
	s.ledger = append(s.ledger, cloneRecord(*rec))
	s.users[i].Credit(rec.PointsAwarded)
	return s.users[i], nil
}

func (s *MemoryStore) ListActions(_ context.Context, userID uint) ([]models.ActionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.byUser[userID]
	out := make([]models.ActionRecord, len(idx))
	for j, i := range idx {
		out[j] = cloneRecord(s.ledger[i])
	}
	return out, nil
}

func (s *MemoryStore) Snapshot(_ context.Context, userID uint) (models.User, []models.ActionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.userIdx[userID]
	if !ok {
		return models.User{}, nil, ErrUserNotFound
	}
	idx := s.byUser[userID]
	out := make([]models.ActionRecord, len(idx))
	for j, k := range idx {
		out[j] = cloneRecord(s.ledger[k])
	}
	return s.users[i], out, nil
}

func (s *MemoryStore) Close() error { return nil }

// cloneRecord detaches the optional fields so callers cannot rewrite history
// through pointers they still hold.
func cloneRecord(r models.ActionRecord) models.ActionRecord {
	if r.ActionID != nil {
		id := *r.ActionID
		r.ActionID = &id
	}
	if r.CustomLabel != nil {
		label := *r.CustomLabel
		r.CustomLabel = &label
	}
	return r
}
