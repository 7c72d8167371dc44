package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// blobRow is one persisted blob.
type blobRow struct {
	BlobKey   string `gorm:"column:blob_key;primaryKey;size:255"`
	Data      []byte `gorm:"column:data"`
	UpdatedAt time.Time
}

func (blobRow) TableName() string {
	return "history_blobs"
}

// SQLBlobStore keeps blobs in a SQL table through gorm.
type SQLBlobStore struct {
	db *gorm.DB
}

// OpenSQLite opens (or creates) a SQLite database at path.
func OpenSQLite(path string) (*SQLBlobStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}
	return NewSQLBlobStore(db)
}

// NewSQLBlobStore uses db, migrating the blob table.
func NewSQLBlobStore(db *gorm.DB) (*SQLBlobStore, error) {
	if err := db.AutoMigrate(&blobRow{}); err != nil {
		return nil, fmt.Errorf("migrating history table: %w", err)
	}
	return &SQLBlobStore{db: db}, nil
}

// Get returns the blob stored under key.
func (s *SQLBlobStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var row blobRow
	err := s.db.WithContext(ctx).Where("blob_key = ?", key).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return row.Data, true, nil
}

// Set upserts data under key.
func (s *SQLBlobStore) Set(ctx context.Context, key string, data []byte) error {
	row := blobRow{BlobKey: key, Data: data, UpdatedAt: time.Now().UTC()}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "blob_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&row).Error
}

// Close closes the underlying database.
func (s *SQLBlobStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

var _ BlobStore = (*SQLBlobStore)(nil)
