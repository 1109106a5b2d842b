package entity

import "time"

// UserSettings holds per-user preferences consumed by the review subsystem.
type UserSettings struct {
	DailyGoal int64  `json:"daily_goal"`
	Timezone  string `json:"timezone"`
}

// User is the account record. Only the fields the review subsystem touches
// are modelled; credential data lives with the identity provider.
type User struct {
	ID        int64
	Name      string
	Email     string
	Settings  UserSettings
	Stats     VocabularyStats
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ResolvedDailyGoal returns the configured goal or the default.
func (u *User) ResolvedDailyGoal() int64 {
	if u.Settings.DailyGoal > 0 {
		return u.Settings.DailyGoal
	}
	return DefaultDailyGoal
}

// ResolvedLocation returns the user's timezone when set and valid, otherwise
// the server-local zone.
func (u *User) ResolvedLocation() *time.Location {
	if u.Settings.Timezone != "" {
		if loc, err := time.LoadLocation(u.Settings.Timezone); err == nil {
			return loc
		}
	}
	return time.Local
}
