package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mmdatafocus/ghg_reports/utils"
)

// UserRecord is one row of user_records.
type UserRecord struct {
	UserId    string    `gorm:"primaryKey;size:128"`
	Data      string    `gorm:"type:longtext;not null"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

type MySQLStore struct {
	db *gorm.DB
}

// NewMySQLStore wraps db, migrating user_records unless skipMigrations is set.
func NewMySQLStore(db *gorm.DB, skipMigrations bool) (*MySQLStore, error) {
	if !skipMigrations {
		if err := db.AutoMigrate(&UserRecord{}); err != nil {
			return nil, err
		}
	}
	return &MySQLStore{db: db}, nil
}

func (s *MySQLStore) Load(ctx context.Context, userId string) (json.RawMessage, error) {
	var rec UserRecord
	err := s.db.WithContext(ctx).Where("user_id = ?", userId).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return json.RawMessage(rec.Data), nil
}

func (s *MySQLStore) Save(ctx context.Context, userId string, record json.RawMessage) error {
	if err := checkUserId(userId); err != nil {
		return err
	}
	rec := UserRecord{UserId: userId, Data: string(record)}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&rec).Error
}

func (s *MySQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
