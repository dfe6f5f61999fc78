package models

import "time"

type Category string

const (
	CategoryWaste     Category = "waste"
	CategoryPlastic   Category = "plastic"
	CategoryTransport Category = "transport"
	CategoryWater     Category = "water"
	CategoryEnergy    Category = "energy"
	CategoryNature    Category = "nature"
	CategoryFood      Category = "food"
	// CategoryCustom is assigned to free-text entries that reference no catalog action.
	CategoryCustom Category = "custom"
)

// PointsPerLevel is the number of eco points between two consecutive levels.
const PointsPerLevel = 100

type EcoAction struct {
	ID       uint     `json:"id"`
	Title    string   `json:"title"`
	Category Category `json:"category"`
	Points   int      `json:"points"`
}

type User struct {
	ID           uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Name         string    `json:"name" gorm:"not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	AvatarURL    string    `json:"avatar_url"`
	EcoPoints    int       `json:"eco_points" gorm:"not null;default:0"`
	Level        int       `json:"level" gorm:"not null;default:1"`
	CreatedAt    time.Time `json:"created_at"`
}

// Credit adds points to the user's balance and recomputes the level from it.
func (u *User) Credit(points int) {
	u.EcoPoints += points
	u.Level = LevelFor(u.EcoPoints)
}

// LevelFor derives the level reached with the given point total.
func LevelFor(points int) int {
	if points < 0 {
		points = 0
	}
	return points/PointsPerLevel + 1
}

// NextLevelPoints is the point total at which the level after level starts.
func NextLevelPoints(level int) int {
	return level * PointsPerLevel
}

// ActionRecord is a ledger entry. Exactly one of ActionID and CustomLabel is set.
type ActionRecord struct {
	ID            uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID        uint      `json:"user_id" gorm:"index;not null"`
	ActionID      *uint     `json:"action_id"`
	CustomLabel   *string   `json:"custom_action"`
	Timestamp     time.Time `json:"date" gorm:"not null"`
	PointsAwarded int       `json:"points" gorm:"not null"`
}

// IsCustom reports whether the record is a free-text entry.
func (r ActionRecord) IsCustom() bool { return r.ActionID == nil }

// ActionView is a ledger entry decorated for display.
type ActionView struct {
	ActionRecord
	Title    string   `json:"title"`
	Category Category `json:"category"`
}

type Bucket struct {
	Count  int `json:"count"`
	Points int `json:"points"`
}

type Stats struct {
	TotalActions  int                 `json:"total_actions"`
	TotalPoints   int                 `json:"total_points"`
	CO2Saved      float64             `json:"co2_saved"`
	DailyStats    map[string]Bucket   `json:"daily_stats"`
	CategoryStats map[Category]Bucket `json:"category_stats"`
}

// DayBucket is a single day of DailyStats, used where order matters.
type DayBucket struct {
	Date string `json:"date"`
	Bucket
}

type Achievement struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Unlocked    bool   `json:"unlocked"`
}

type LeaderboardEntry struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
	EcoPoints int    `json:"eco_points"`
	Level     int    `json:"level"`
}

// PublicUser is the user shape returned next to auth tokens.
type PublicUser struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
	EcoPoints int    `json:"eco_points"`
	Level     int    `json:"level"`
}

func (u User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
		EcoPoints: u.EcoPoints,
		Level:     u.Level,
	}
}

type Profile struct {
	PublicUser
	CreatedAt       time.Time `json:"created_at"`
	NextLevelPoints int       `json:"next_level_points"`
}
