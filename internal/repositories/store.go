package repositories

import (
	"context"

	"gorm.io/gorm"
)

// Store executes Query values against the underlying database.
type Store interface {
	Find(ctx context.Context, q Query, dest any) error

	Count(ctx context.Context, q Query) (int64, error)
}

type GormStore struct {
	db *gorm.DB
}

var _ Store = (*GormStore)(nil)

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) DB() *gorm.DB {
	return s.db
}

func (s *GormStore) Find(ctx context.Context, q Query, dest any) error {
	return q.apply(s.db.WithContext(ctx)).Find(dest).Error
}

func (s *GormStore) Count(ctx context.Context, q Query) (int64, error) {
	var count int64
	if err := q.apply(s.db.WithContext(ctx)).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
