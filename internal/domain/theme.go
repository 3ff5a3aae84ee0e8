package domain

import "time"

// DefaultTheme is served until an administrator stores one.
const DefaultTheme = "light"

// ThemeSetting is the single process-wide presentation setting.
type ThemeSetting struct {
	Theme     string
	UpdatedAt time.Time
}
