// Package database provides SQLite storage for persisted display state.
package database

import (
	"database/sql"
	"fmt"

	"github.com/open-atom-club/deadlines/internal/model"
	_ "modernc.org/sqlite"
)

// DB wraps the SQLite connection.
type DB struct {
	conn *sql.DB
}

// Ensure DB implements Store interface.
var _ Store = (*DB)(nil)

// New opens or creates an SQLite database at the given path.
func New(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// Enable WAL mode for better concurrency.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set wal mode: %w", err)
	}
	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// DatabaseType returns the database backend name.
func (db *DB) DatabaseType() string {
	return "SQLite"
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS favorites (
		event_id TEXT PRIMARY KEY
	);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// --- Settings Methods ---

// GetSetting retrieves a setting value.
func (db *DB) GetSetting(key string) (string, error) {
	var val string
	err := db.conn.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&val)
	return val, err
}

// SetSetting saves a setting.
func (db *DB) SetSetting(key, value string) error {
	_, err := db.conn.Exec("INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = ?", key, value, value)
	return err
}

// GetDisplayTimezone returns the persisted display zone, or fallback when
// none has been stored yet.
func (db *DB) GetDisplayTimezone(fallback string) (string, error) {
	val, err := db.GetSetting(model.SettingDisplayTimezone)
	if err == sql.ErrNoRows {
		return fallback, nil
	}
	if err != nil {
		return fallback, err
	}
	return val, nil
}

// SetDisplayTimezone persists the display zone. Callers validate the zone
// identifier before storing it.
func (db *DB) SetDisplayTimezone(zone string) error {
	return db.SetSetting(model.SettingDisplayTimezone, zone)
}

// --- Favorites Methods ---

// GetFavorites returns all favorited event IDs ordered for stable output.
func (db *DB) GetFavorites() ([]string, error) {
	rows, err := db.conn.Query("SELECT event_id FROM favorites ORDER BY event_id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ToggleFavorite flips the favorite state for an event ID and returns the
// new state.
func (db *DB) ToggleFavorite(eventID string) (bool, error) {
	res, err := db.conn.Exec("DELETE FROM favorites WHERE event_id = ?", eventID)
	if err != nil {
		return false, err
	}
	deleted, _ := res.RowsAffected()
	if deleted > 0 {
		return false, nil
	}
	if _, err := db.conn.Exec("INSERT INTO favorites (event_id) VALUES (?)", eventID); err != nil {
		return false, err
	}
	return true, nil
}
