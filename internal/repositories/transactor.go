package repositories

import "gorm.io/gorm"

// Transactor runs a unit of work against repositories bound to one transaction.
// If fn returns an error, or panics, nothing it wrote is committed.
type Transactor interface {
	WithinTransaction(fn func(users UserRepository, orders OrderRepository) error) error
}

// GORMTransactor is a Transactor backed by gorm's native transactions.
type GORMTransactor struct {
	db *gorm.DB
}

// NewGORMTransactor creates a new GORMTransactor.
func NewGORMTransactor(db *gorm.DB) *GORMTransactor {
	return &GORMTransactor{db: db}
}

// WithinTransaction implements Transactor.
func (t *GORMTransactor) WithinTransaction(fn func(users UserRepository, orders OrderRepository) error) error {
	return t.db.Transaction(func(tx *gorm.DB) error {
		return fn(NewGORMUserRepository(tx), NewGORMOrderRepository(tx))
	})
}
