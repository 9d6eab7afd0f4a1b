package report

import (
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TrialRecord is the persisted form of one trial's aggregates.
type TrialRecord struct {
	ID              uint `gorm:"primaryKey"`
	Trial           int
	Mode            string
	FullPublicPct   int
	FullPrivatePct  int
	HalfPublicPct   int
	HalfPrivatePct  int
	MultiPublicPct  int
	MultiPrivatePct int
	MultiState      string
	MultiAttempts   int
	MultiMessages   int
	LastMessage     string
	CreatedAt       time.Time
}

// Store persists trial records in sqlite.
type Store struct {
	db *gorm.DB
}

// OpenStore opens (or creates) the sqlite database at path and migrates
// the trial schema.
func OpenStore(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open trial store: %w", err)
	}
	if err := db.AutoMigrate(&TrialRecord{}); err != nil {
		return nil, fmt.Errorf("migrate trial store: %w", err)
	}
	return &Store{db: db}, nil
}

// Save appends one trial record.
func (s *Store) Save(rec *TrialRecord) error {
	if err := s.db.Create(rec).Error; err != nil {
		return fmt.Errorf("save trial: %w", err)
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (s *Store) Recent(limit int) ([]TrialRecord, error) {
	var recs []TrialRecord
	err := s.db.Order("id desc").Limit(limit).Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("list trials: %w", err)
	}
	return recs, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
