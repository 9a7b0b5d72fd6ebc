// Package session persists the widget's client-generated session key, the
// opaque token that ties a visitor to one support conversation across runs.
package session

import (
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/miniden/webchat/internal/models"
)

// StorageKey is the single state-store key the widget uses, kept identical
// to the browser widget's localStorage key.
const StorageKey = "support_widget_session_key"

// Store hands out a stable session key backed by a local sqlite file. All
// storage failures are swallowed: the store degrades to memory-only and the
// key then survives only for the process lifetime.
type Store struct {
	mu     sync.Mutex
	db     *gorm.DB // nil when storage is unavailable
	cached string
}

// Open creates a Store backed by the sqlite file at path. It never fails:
// an empty path or any open/migrate error yields a memory-only store.
func Open(path string) *Store {
	if path == "" {
		return &Store{}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		log.Printf("session: create state dir for %s: %v (falling back to memory)", path, err)
		return &Store{}
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		log.Printf("session: open state store %s: %v (falling back to memory)", path, err)
		return &Store{}
	}
	if err := db.AutoMigrate(&models.ClientState{}); err != nil {
		log.Printf("session: migrate state store %s: %v (falling back to memory)", path, err)
		return &Store{}
	}
	return &Store{db: db}
}

// Persistent reports whether the key survives process restarts.
func (s *Store) Persistent() bool {
	return s.db != nil
}

// EnsureSessionKey returns the persisted session key, generating and
// persisting a new one if none exists. Repeated calls always return the
// same value: a key, once handed out, is never silently regenerated,
// otherwise messages would fragment across sessions.
func (s *Store) EnsureSessionKey() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != "" {
		return s.cached
	}

	if s.db != nil {
		var row models.ClientState
		err := s.db.Where("key = ?", StorageKey).First(&row).Error
		if err == nil && row.Value != "" {
			s.cached = row.Value
			return s.cached
		}
		if err != nil && err != gorm.ErrRecordNotFound {
			log.Printf("session: read session key: %v", err)
		}
	}

	s.cached = generateKey()

	if s.db != nil {
		row := models.ClientState{Key: StorageKey, Value: s.cached}
		if err := s.db.Save(&row).Error; err != nil {
			// Swallowed: the key stays usable in memory for this run.
			log.Printf("session: persist session key: %v", err)
		}
	}
	return s.cached
}

// generateKey prefers a random UUID and falls back to timestamp+random if
// the generator is unavailable.
func generateKey() string {
	id, err := uuid.NewRandom()
	if err == nil {
		return id.String()
	}
	return fmt.Sprintf("%d-%06d", time.Now().UnixMilli(), rand.Intn(1_000_000))
}
