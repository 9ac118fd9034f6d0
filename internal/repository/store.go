package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store groups the repositories that share one storage session.
type Store interface {
	Users() UserRepository
	Tags() TagRepository
	Posts() PostRepository
	// WithTransaction runs fn in a single transaction. It commits when fn returns nil and rolls back
	// on error or panic, so the session is always released.
	WithTransaction(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
}

type gormStore struct {
	db *gorm.DB
}

// NewStore creates a GORM-backed store.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Users() UserRepository { return NewUserRepository(s.db) }

func (s *gormStore) Tags() TagRepository { return NewTagRepository(s.db) }

func (s *gormStore) Posts() PostRepository { return NewPostRepository(s.db) }

// WithTransaction executes a function within a database transaction.
func (s *gormStore) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &gormStore{db: tx})
	})
}
