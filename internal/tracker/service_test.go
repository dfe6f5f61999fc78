package tracker

import (
	"context"
	"math/rand"
	"net/url"
	"sync"
	"testing"
	"time"

	"ecotrack/backend/internal/catalog"
	"ecotrack/backend/internal/models"
	"ecotrack/backend/internal/store"

	"github.com/stretchr/testify/require"
)

type countingRecorder struct {
	mu         sync.Mutex
	registered int
	custom     int
	catalog    int
	points     int
}

func (r *countingRecorder) UserRegistered() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.registered++
}

func (r *countingRecorder) ActionSubmitted(custom bool, points int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if custom {
		r.custom++
	} else {
		r.catalog++
	}
	r.points += points
}

func newTestService(t *testing.T, opts ...Option) (*Service, models.User) {
	t.Helper()
	svc := NewService(store.NewMemoryStore(), catalog.Default(), opts...)
	u, err := svc.Register(context.Background(), "Alice", "alice@example.com", "hash")
	require.NoError(t, err)
	return svc, u
}

func TestRegister(t *testing.T) {
	rec := &countingRecorder{}
	svc, u := newTestService(t, WithRecorder(rec))
	require.NotZero(t, u.ID)
	require.Equal(t, 0, u.EcoPoints)
	require.Equal(t, 1, u.Level)
	require.Equal(t, "https://ui-avatars.com/api/?name=Alice&background=3CB371&color=fff", u.AvatarURL)
	require.Equal(t, 1, rec.registered)

	tom, err := svc.Register(context.Background(), "Tom & Jerry+Co", "tom@example.com", "hash")
	require.NoError(t, err)
	avatar, err := url.Parse(tom.AvatarURL)
	require.NoError(t, err)
	require.Equal(t, "Tom & Jerry+Co", avatar.Query().Get("name"))
	require.Equal(t, "3CB371", avatar.Query().Get("background"))

	_, err = svc.Register(context.Background(), "Other", "ALICE@example.com ", "hash")
	require.ErrorIs(t, err, models.ErrInvalidInput)

	_, err = svc.Register(context.Background(), "", "x@example.com", "hash")
	require.ErrorIs(t, err, ErrInvalidUserInput)

	_, err = svc.Register(context.Background(), "Bob", "not-an-email", "hash")
	require.ErrorIs(t, err, models.ErrInvalidInput)

	got, err := svc.UserByEmail(context.Background(), " Alice@Example.com")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)
}

func TestSubmitExample(t *testing.T) {
	rec := &countingRecorder{}
	svc, u := newTestService(t, WithRecorder(rec))
	ctx := context.Background()

	res, err := svc.Submit(ctx, u.ID, Submission{ActionID: uintPtr(1)})
	require.NoError(t, err)
	require.Equal(t, 10, res.Record.PointsAwarded)
	require.Equal(t, "Sort household waste", res.Title)
	require.Equal(t, 10, res.User.EcoPoints)

	_, err = svc.Submit(ctx, u.ID, Submission{ActionID: uintPtr(3)})
	require.NoError(t, err)

	st, err := svc.Stats(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, 2, st.TotalActions)
	require.Equal(t, 30, st.TotalPoints)
	require.InDelta(t, 5.0, st.CO2Saved, 1e-9)
	require.Equal(t, map[models.Category]models.Bucket{
		models.CategoryWaste:     {Count: 1, Points: 10},
		models.CategoryTransport: {Count: 1, Points: 20},
	}, st.CategoryStats)

	require.Equal(t, 2, rec.catalog)
	require.Equal(t, 30, rec.points)
}

func TestSubmitCustom(t *testing.T) {
	svc, u := newTestService(t)
	ctx := context.Background()

	res, err := svc.Submit(ctx, u.ID, Submission{CustomLabel: strPtr("Fixed an old item")})
	require.NoError(t, err)
	require.Equal(t, 10, res.Record.PointsAwarded)
	require.Nil(t, res.Record.ActionID)
	require.Equal(t, "Fixed an old item", res.Title)

	views, err := svc.ListActions(ctx, u.ID, 0)
	require.NoError(t, err)
	require.Len(t, views, 1)
	require.Equal(t, models.CategoryCustom, views[0].Category)
	require.Equal(t, "Fixed an old item", views[0].Title)
}

func TestSubmitErrors(t *testing.T) {
	svc, u := newTestService(t)
	ctx := context.Background()

	_, err := svc.Submit(ctx, u.ID, Submission{})
	require.ErrorIs(t, err, models.ErrInvalidInput)

	_, err = svc.Submit(ctx, u.ID, Submission{ActionID: uintPtr(404)})
	require.ErrorIs(t, err, models.ErrNotFound)

	_, err = svc.Submit(ctx, 999, Submission{ActionID: uintPtr(1)})
	require.ErrorIs(t, err, models.ErrNotFound)

	// failed submissions leave no trace
	views, err := svc.ListActions(ctx, u.ID, 0)
	require.NoError(t, err)
	require.Empty(t, views)
	p, err := svc.Profile(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, 0, p.EcoPoints)
}

func TestPointsEqualLedgerSum(t *testing.T) {
	svc, u := newTestService(t)
	ctx := context.Background()
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 200; i++ {
		var sub Submission
		if rng.Intn(4) == 0 {
			sub.CustomLabel = strPtr("custom")
		} else {
			sub.ActionID = uintPtr(uint(rng.Intn(10) + 1))
		}
		res, err := svc.Submit(ctx, u.ID, sub)
		require.NoError(t, err)
		require.Equal(t, models.LevelFor(res.User.EcoPoints), res.User.Level)
	}

	p, err := svc.Profile(ctx, u.ID)
	require.NoError(t, err)
	st, err := svc.Stats(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, st.TotalPoints, p.EcoPoints)
	require.Equal(t, p.EcoPoints/100+1, p.Level)
	require.Equal(t, p.Level*100, p.NextLevelPoints)
	require.Equal(t, 200, st.TotalActions)
}

func TestListActionsMostRecentFirst(t *testing.T) {
	clock := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
	svc, u := newTestService(t, WithClock(func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}))
	ctx := context.Background()

	for _, id := range []uint{1, 2, 3} {
		_, err := svc.Submit(ctx, u.ID, Submission{ActionID: uintPtr(id)})
		require.NoError(t, err)
	}
	views, err := svc.ListActions(ctx, u.ID, 0)
	require.NoError(t, err)
	require.Len(t, views, 3)
	require.Equal(t, uint(3), *views[0].ActionID)
	require.Equal(t, uint(1), *views[2].ActionID)
	require.True(t, views[0].Timestamp.After(views[1].Timestamp))

	views, err = svc.ListActions(ctx, u.ID, 2)
	require.NoError(t, err)
	require.Len(t, views, 2)
	require.Equal(t, uint(3), *views[0].ActionID)
}

func TestServiceRecentDays(t *testing.T) {
	day := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
	svc, u := newTestService(t, WithClock(func() time.Time {
		day = day.Add(24 * time.Hour)
		return day
	}))
	ctx := context.Background()
	for i := 0; i < 10; i++ {
		_, err := svc.Submit(ctx, u.ID, Submission{ActionID: uintPtr(1)})
		require.NoError(t, err)
	}
	days, err := svc.RecentDays(ctx, u.ID, 7)
	require.NoError(t, err)
	require.Len(t, days, 7)
	// registration takes the first tick, submissions land on 3..12 Feb
	require.Equal(t, "2024-02-06", days[0].Date)
	require.Equal(t, "2024-02-12", days[6].Date)
}

func TestAchievementsThroughService(t *testing.T) {
	svc, u := newTestService(t)
	ctx := context.Background()

	got, err := svc.Achievements(ctx, u.ID)
	require.NoError(t, err)
	require.Empty(t, got)

	for i := 0; i < 10; i++ {
		_, err := svc.Submit(ctx, u.ID, Submission{ActionID: uintPtr(1)})
		require.NoError(t, err)
	}
	got, err = svc.Achievements(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"First Steps", "Century of Points"}, titles(got))

	_, err = svc.Achievements(ctx, 999)
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestLeaderboardThroughService(t *testing.T) {
	svc, alice := newTestService(t)
	ctx := context.Background()
	bob, err := svc.Register(ctx, "Bob", "bob@example.com", "hash")
	require.NoError(t, err)

	_, err = svc.Submit(ctx, bob.ID, Submission{ActionID: uintPtr(8)})
	require.NoError(t, err)

	board, err := svc.Leaderboard(ctx, 10)
	require.NoError(t, err)
	require.Len(t, board, 2)
	require.Equal(t, bob.ID, board[0].ID)
	require.Equal(t, 50, board[0].EcoPoints)
	require.Equal(t, alice.ID, board[1].ID)

	board, err = svc.Leaderboard(ctx, 1)
	require.NoError(t, err)
	require.Len(t, board, 1)
}

func TestConcurrentSubmissions(t *testing.T) {
	svc, u := newTestService(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 5; j++ {
				_, _ = svc.Submit(ctx, u.ID, Submission{ActionID: uintPtr(7)})
			}
		}()
	}
	wg.Wait()

	p, err := svc.Profile(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, 100*5, p.EcoPoints)
	require.Equal(t, 6, p.Level)
}

func TestCatalog(t *testing.T) {
	svc, _ := newTestService(t)
	require.Len(t, svc.Catalog(), 10)
}
