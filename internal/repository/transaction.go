package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store groups repositories bound to the same database handle, either the pool or a transaction.
type Store struct {
	Users    UserRepository
	Badges   BadgeRepository
	Warnings WarningRepository
	Appeals  AppealRepository
	Trail    ActionTrailRepository
}

// NewStore builds a Store over the provided handle.
func NewStore(db *gorm.DB) Store {
	return Store{
		Users:    NewUserRepository(db),
		Badges:   NewBadgeRepository(db),
		Warnings: NewWarningRepository(db),
		Appeals:  NewAppealRepository(db),
		Trail:    NewActionTrailRepository(db),
	}
}

// Transactor runs a unit of work atomically. Everything done through the supplied Store commits
// or rolls back together.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(store Store) error) error
}

type gormTransactor struct {
	db *gorm.DB
}

// NewTransactor constructs a transactor backed by GORM.
func NewTransactor(db *gorm.DB) Transactor {
	return &gormTransactor{db: db}
}

func (t *gormTransactor) WithinTransaction(ctx context.Context, fn func(store Store) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}
