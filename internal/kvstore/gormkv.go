package kvstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Record struct {
	Key   string `gorm:"primaryKey"`
	Value string `gorm:"not null"`
}

func (Record) TableName() string {
	return "kv_records"
}

// GormKV persists values in a key/value table, postgres in production and
// pure-Go sqlite everywhere else.
type GormKV struct {
	db *gorm.DB
}

// OpenDB dials postgres for postgres:// DSNs and treats anything else as a
// sqlite path (":memory:" included).
func OpenDB(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("empty database dsn")
	}

	var dialector gorm.Dialector
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		dialector = postgres.Open(dsn)
	} else {
		dialector = sqlite.Open(dsn)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}

func NewGormKV(db *gorm.DB) (*GormKV, error) {
	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, fmt.Errorf("migrate kv table: %w", err)
	}
	return &GormKV{db: db}, nil
}

func (g *GormKV) Read(ctx context.Context, key string) (string, error) {
	var rec Record
	err := g.db.WithContext(ctx).First(&rec, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("read %q: %w", key, err)
	}
	return rec.Value, nil
}

func (g *GormKV) Write(ctx context.Context, key, value string) error {
	err := g.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value"}),
		}).
		Create(&Record{Key: key, Value: value}).Error
	if err != nil {
		return fmt.Errorf("write %q: %w", key, err)
	}
	return nil
}
