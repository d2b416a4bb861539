package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Entry is a cached GraphQL response.
type Entry struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CacheKey  string    `gorm:"type:varchar(64);not null;uniqueIndex"`
	Operation string    `gorm:"type:varchar(255)"`
	Body      []byte    `gorm:"not null"`
	ExpiresAt time.Time `gorm:"not null;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName pins the table name.
func (Entry) TableName() string {
	return "graphql_cache_entries"
}

// Store is a TTL cache of GraphQL response bodies backed by gorm.
type Store struct {
	db  *gorm.DB
	ttl time.Duration
	now func() time.Time
}

// New returns a Store whose entries live for ttl.
func New(db *gorm.DB, ttl time.Duration) *Store {
	return &Store{db: db, ttl: ttl, now: time.Now}
}

// Migrate creates or updates the cache table.
func (s *Store) Migrate() error {
	if err := s.db.AutoMigrate(&Entry{}); err != nil {
		return fmt.Errorf("failed to migrate cache schema: %w", err)
	}
	return nil
}

// Key hashes a query, its operation name, its variables and the headers sent
// upstream, so callers with different credentials never share an entry.
func Key(query, operationName string, variables []byte, headers http.Header) string {
	h := sha256.New()
	h.Write([]byte(query))
	h.Write([]byte{0})
	h.Write([]byte(operationName))
	h.Write([]byte{0})
	h.Write(variables)
	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return http.CanonicalHeaderKey(names[i]) < http.CanonicalHeaderKey(names[j])
	})
	for _, name := range names {
		h.Write([]byte{0})
		h.Write([]byte(http.CanonicalHeaderKey(name)))
		for _, v := range headers[name] {
			h.Write([]byte{1})
			h.Write([]byte(v))
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the body stored under key. Expired entries are misses.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var e Entry
	err := s.db.WithContext(ctx).
		Where("cache_key = ? AND expires_at > ?", key, s.now().UTC()).
		First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache entry: %w", err)
	}
	return e.Body, true, nil
}

// Put stores body under key, replacing any previous entry.
func (s *Store) Put(ctx context.Context, key, operation string, body []byte) error {
	now := s.now().UTC()
	e := Entry{
		ID:        uuid.New(),
		CacheKey:  key,
		Operation: operation,
		Body:      body,
		ExpiresAt: now.Add(s.ttl),
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "cache_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"operation", "body", "expires_at", "updated_at"}),
	}).Create(&e).Error
	if err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// Purge deletes expired entries and returns how many were removed.
func (s *Store) Purge(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Where("expires_at <= ?", s.now().UTC()).Delete(&Entry{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to purge cache: %w", res.Error)
	}
	return res.RowsAffected, nil
}
