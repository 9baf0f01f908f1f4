package services

import (
	"fmt"

	bolt "go.etcd.io/bbolt"
)

// Prefs implements a small local preference store using a BoltDB backend. It holds
// the UI choices that must survive page reloads: whether the sidebar is collapsed,
// and which session was last active. Values are stored as strings under a single
// bucket; booleans use "true"/"false".
type Prefs struct {
	db *bolt.DB
}

var (
	prefsBucket = []byte("prefs")

	sidebarCollapsedKey = []byte("sidebar-collapsed")
	lastSessionKey      = []byte("last-session-id")
)

// NewPrefs creates a new Prefs instance backed by the database file at path. The
// file is created with 0600 permissions if it doesn't exist.
func NewPrefs(path string) (Prefs, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return Prefs{}, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(prefsBucket)
		return err
	})

	return Prefs{db: db}, err
}

// Close releases the underlying database file.
func (p Prefs) Close() error {
	return p.db.Close()
}

// SidebarCollapsed reports whether the user last left the sidebar collapsed. A
// missing or unreadable entry defaults to expanded.
func (p Prefs) SidebarCollapsed() bool {
	return p.get(sidebarCollapsedKey) == "true"
}

// SetSidebarCollapsed records the sidebar collapsed state.
func (p Prefs) SetSidebarCollapsed(collapsed bool) error {
	v := "false"
	if collapsed {
		v = "true"
	}
	return p.put(sidebarCollapsedKey, v)
}

// LastSessionID returns the id of the session that was active when the page was
// last rendered, or an empty string if none was recorded.
func (p Prefs) LastSessionID() string {
	return p.get(lastSessionKey)
}

// SetLastSessionID records the active session id.
func (p Prefs) SetLastSessionID(id string) error {
	return p.put(lastSessionKey, id)
}

func (p Prefs) get(key []byte) string {
	var val string
	_ = p.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(prefsBucket)
		if b == nil {
			return nil
		}
		val = string(b.Get(key))
		return nil
	})
	return val
}

func (p Prefs) put(key []byte, val string) error {
	return p.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(prefsBucket)
		if b == nil {
			return fmt.Errorf("prefs bucket is missing")
		}
		return b.Put(key, []byte(val))
	})
}
