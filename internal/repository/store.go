package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/nurpe/freelancehub/internal/store"
)

const uniqueViolation = "23505"

// Store binds the postgres repositories to one *gorm.DB, which is a transaction inside InTx.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Projects() store.ProjectStore         { return NewProjectRepository(s.db) }
func (s *Store) Bids() store.BidStore                 { return NewBidRepository(s.db) }
func (s *Store) Deliverables() store.DeliverableStore { return NewDeliverableRepository(s.db) }

func (s *Store) InTx(ctx context.Context, fn func(tx store.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
