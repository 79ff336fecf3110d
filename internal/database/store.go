// Package database provides storage backends for persisted display state.
package database

// Store defines the persistence boundary for observer state: the display
// timezone and the favorites set. Both SQLite and PostgreSQL implementations
// satisfy this interface.
//
// Absence of persisted state is not an error: the display timezone falls back
// to the configured default and the favorites set starts empty.
type Store interface {
	Close() error

	// DatabaseType returns the name of the database backend ("SQLite" or "PostgreSQL").
	DatabaseType() string

	// Settings operations
	GetSetting(key string) (string, error)
	SetSetting(key, value string) error

	// GetDisplayTimezone returns the persisted display zone, or fallback
	// when none has been stored yet.
	GetDisplayTimezone(fallback string) (string, error)
	SetDisplayTimezone(zone string) error

	// Favorites operations. ToggleFavorite returns the new state.
	GetFavorites() ([]string, error)
	ToggleFavorite(eventID string) (bool, error)
}
