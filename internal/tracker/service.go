package tracker

import (
	"context"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"ecotrack/backend/internal/catalog"
	"ecotrack/backend/internal/models"
	"ecotrack/backend/internal/store"

	"github.com/rs/zerolog"
)

// Recorder receives domain events for metrics.
type Recorder interface {
	UserRegistered()
	ActionSubmitted(custom bool, points int)
}

type nopRecorder struct{}

func (nopRecorder) UserRegistered()            {}
func (nopRecorder) ActionSubmitted(bool, int) {}

// Service is the entry point to the tracker. Every read re-derives its result
// from the repository.
type Service struct {
	repo      store.Repository
	catalog   *catalog.Catalog
	evaluator *Evaluator
	loc       *time.Location
	now       func() time.Time
	recorder  Recorder
	log       zerolog.Logger
}

type Option func(*Service)

// WithClock overrides the time source used to stamp ledger entries.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLocation sets the zone used to bucket daily statistics.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.recorder = r
		}
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithRules replaces the achievement rule set.
func WithRules(rules []Rule) Option {
	return func(s *Service) { s.evaluator = NewEvaluator(s.catalog, rules) }
}

func NewService(repo store.Repository, cat *catalog.Catalog, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		catalog:  cat,
		loc:      time.UTC,
		now:      time.Now,
		recorder: nopRecorder{},
		log:      zerolog.Nop(),
	}
	s.evaluator = NewEvaluator(cat, DefaultRules())
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a user. passwordHash is stored as given.
func (s *Service) Register(ctx context.Context, name, email, passwordHash string) (models.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" {
		return models.User{}, ErrInvalidUserInput
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return models.User{}, ErrInvalidUserInput
	}
	u := models.User{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		AvatarURL:    avatarURL(name),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.repo.CreateUser(ctx, &u); err != nil {
		return models.User{}, err
	}
	s.recorder.UserRegistered()
	s.log.Debug().Uint("user_id", u.ID).Msg("user registered")
	return u, nil
}

func avatarURL(name string) string {
	return "https://ui-avatars.com/api/?name=" + url.QueryEscape(name) + "&background=3CB371&color=fff"
}

// UserByEmail looks a user up for credential checks at the auth boundary.
func (s *Service) UserByEmail(ctx context.Context, email string) (models.User, error) {
	return s.repo.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}

func (s *Service) Profile(ctx context.Context, userID uint) (models.Profile, error) {
	u, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return models.Profile{}, err
	}
	return models.Profile{
		PublicUser:      u.Public(),
		CreatedAt:       u.CreatedAt,
		NextLevelPoints: models.NextLevelPoints(u.Level),
	}, nil
}

func (s *Service) Catalog() []models.EcoAction {
	return s.catalog.All()
}

// SubmitResult is a freshly appended ledger entry and its owner after scoring.
type SubmitResult struct {
	Record models.ActionRecord
	Title  string
	User   models.User
}

// Submit logs an action for userID: it resolves the award, appends the record
// and credits the user atomically.
func (s *Service) Submit(ctx context.Context, userID uint, sub Submission) (SubmitResult, error) {
	resolved, points, err := ResolvePoints(s.catalog, sub)
	if err != nil {
		return SubmitResult{}, err
	}
	rec := models.ActionRecord{
		UserID:        userID,
		ActionID:      resolved.ActionID,
		CustomLabel:   resolved.CustomLabel,
		Timestamp:     s.now().UTC(),
		PointsAwarded: points,
	}
	u, err := s.repo.AppendAction(ctx, &rec)
	if err != nil {
		return SubmitResult{}, err
	}
	s.recorder.ActionSubmitted(rec.IsCustom(), points)
	s.log.Debug().
		Uint("user_id", userID).
		Uint("record_id", rec.ID).
		Int("points", points).
		Int("eco_points", u.EcoPoints).
		Int("level", u.Level).
		Msg("action recorded")
	return SubmitResult{Record: rec, Title: s.catalog.TitleOf(rec), User: u}, nil
}

// ListActions returns the user's entries most recent first. limit <= 0 means all.
func (s *Service) ListActions(ctx context.Context, userID uint, limit int) ([]models.ActionView, error) {
	entries, err := s.entries(ctx, userID)
	if err != nil {
		return nil, err
	}
	n := len(entries)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]models.ActionView, 0, n)
	for i := len(entries) - 1; i >= 0 && len(out) < n; i-- {
		e := entries[i]
		out = append(out, models.ActionView{
			ActionRecord: e,
			Title:        s.catalog.TitleOf(e),
			Category:     s.catalog.CategoryOf(e),
		})
	}
	return out, nil
}

func (s *Service) Stats(ctx context.Context, userID uint) (models.Stats, error) {
	entries, err := s.entries(ctx, userID)
	if err != nil {
		return models.Stats{}, err
	}
	return ComputeStats(entries, s.catalog, s.loc), nil
}

// RecentDays returns the last days distinct days with activity, oldest first.
func (s *Service) RecentDays(ctx context.Context, userID uint, days int) ([]models.DayBucket, error) {
	st, err := s.Stats(ctx, userID)
	if err != nil {
		return nil, err
	}
	return RecentDays(st.DailyStats, days), nil
}

func (s *Service) Achievements(ctx context.Context, userID uint) ([]models.Achievement, error) {
	u, entries, err := s.repo.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.evaluator.Evaluate(u, entries), nil
}

func (s *Service) Leaderboard(ctx context.Context, n int) ([]models.LeaderboardEntry, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	return TopN(users, n), nil
}

// entries loads a known user's ledger in chronological order.
func (s *Service) entries(ctx context.Context, userID uint) ([]models.ActionRecord, error) {
	_, entries, err := s.repo.Snapshot(ctx, userID)
	return entries, err
}
