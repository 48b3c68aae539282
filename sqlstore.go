package discordpod

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var _ Store = &SQLStore{}

// KVEntry is the row model backing SQLStore.
type KVEntry struct {
	Namespace string `gorm:"primaryKey;size:128"`
	Key       string `gorm:"primaryKey;size:512"`
	Value     []byte
	UpdatedAt time.Time
}

func (KVEntry) TableName() string {
	return "kv_entries"
}

// SQLStore implements the Store interface over a Postgres table. It exists so
// deployments that already run a database can swap out the FileStore without
// touching the pod; the contract (including last-write-wins) is the same.
type SQLStore struct {
	db *gorm.DB
	ns string
}

// NewSQLStore connects to Postgres with the given URI and migrates the
// kv_entries table.
func NewSQLStore(postgresURI string) (*SQLStore, error) {
	db, err := gorm.Open(postgres.Open(postgresURI), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("sql store: open database: %w", err)
	}
	if err := db.AutoMigrate(&KVEntry{}); err != nil {
		return nil, fmt.Errorf("sql store: migrate: %w", err)
	}
	return &SQLStore{db: db, ns: "default"}, nil
}

// Namespace returns a view of the store scoped to the given namespace column
// value. The underlying connection is shared.
func (s *SQLStore) Namespace(name string) (Store, error) {
	if name == "" {
		return nil, fmt.Errorf("sql store: %w: empty namespace", ErrInvalidKey)
	}
	return &SQLStore{db: s.db, ns: name}, nil
}

func (s *SQLStore) Get(key string) ([]byte, error) {
	var entry KVEntry
	err := s.db.Where("namespace = ? AND key = ?", s.ns, key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sql store: get %s: %w", key, err)
	}
	return entry.Value, nil
}

func (s *SQLStore) Set(key string, value []byte) error {
	entry := KVEntry{Namespace: s.ns, Key: key, Value: value, UpdatedAt: time.Now()}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "namespace"}, {Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("sql store: set %s: %w", key, err)
	}
	return nil
}

func (s *SQLStore) Delete(key string) error {
	err := s.db.Where("namespace = ? AND key = ?", s.ns, key).Delete(&KVEntry{}).Error
	if err != nil {
		return fmt.Errorf("sql store: delete %s: %w", key, err)
	}
	return nil
}
