package models

import (
	"strings"
	"time"
)

// DateKeyLayout is the canonical YYYY-MM-DD key for day-scoped records.
const DateKeyLayout = "2006-01-02"

// DateKey returns the day key for a point in time.
func DateKey(t time.Time) string {
	return t.Format(DateKeyLayout)
}

// Profile is the local user's profile. The app is single-user, so exactly
// one row exists; it is seeded on first boot.
type Profile struct {
	ID           uint      `gorm:"primaryKey" json:"-"`
	Name         string    `gorm:"size:100;not null" json:"name"`
	StartWeight  float64   `gorm:"not null" json:"start_weight"`
	TargetWeight float64   `gorm:"not null" json:"target_weight"`
	StartDate    time.Time `json:"start_date"`
	Height       *float64  `json:"height,omitempty"`                 // cm
	Avatar       string    `gorm:"type:text" json:"avatar,omitempty"` // inline base64 image
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// DailyLog is one day's diary record, keyed by its date string so a second
// save for the same day overwrites the first.
type DailyLog struct {
	ID          string    `gorm:"primaryKey;size:10" json:"id"`
	Date        time.Time `gorm:"not null;index" json:"date"`
	Weight      *float64  `json:"weight,omitempty"`
	Breakfast   string    `gorm:"size:500" json:"breakfast"`
	Lunch       string    `gorm:"size:500" json:"lunch"`
	Dinner      string    `gorm:"size:500" json:"dinner"`
	Mood        string    `gorm:"size:20" json:"mood,omitempty"` // happy, neutral, sad, motivated
	CaloriesIn  *int      `json:"calories_in,omitempty"`
	CaloriesOut *int      `json:"calories_out,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// HasMealText reports whether any meal slot holds non-blank text.
func (l *DailyLog) HasMealText() bool {
	return strings.TrimSpace(l.Breakfast) != "" ||
		strings.TrimSpace(l.Lunch) != "" ||
		strings.TrimSpace(l.Dinner) != ""
}

// DailyTip caches one recommendation per calendar day. A tip is fresh only
// while its Date equals today's key.
type DailyTip struct {
	Date      string    `gorm:"primaryKey;size:10" json:"date"`
	Icon      string    `gorm:"size:16" json:"icon"`
	Title     string    `gorm:"size:64" json:"title"`
	Text      string    `gorm:"size:500" json:"text"`
	Source    string    `gorm:"size:20" json:"source"` // "remote" or "local"
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Conversation stores a saved coach-chat transcript with an auto-generated
// summary. Messages holds the raw transcript as JSON.
type Conversation struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Summary   string    `gorm:"size:255" json:"summary"`
	Messages  string    `gorm:"type:text" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
