// Package service holds the tendering rules: who may do what, and which
// tender and bid states allow it.
package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"tenderlink/db"
	"tenderlink/internal/apperr"
	"tenderlink/models"
)

// Store is the persistence the rules run against. *db.Storage implements it.
type Store interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id int) (*models.User, error)
	CountUsersByRole(ctx context.Context, role models.Role) (int, error)

	CreateTender(ctx context.Context, t *models.Tender) error
	GetTender(ctx context.Context, id int) (*models.Tender, error)
	ListTendersByOwner(ctx context.Context, ownerID int) ([]models.Tender, error)
	ListAllTenders(ctx context.Context) ([]models.Tender, error)
	ListPublishedTenders(ctx context.Context) ([]models.Tender, error)
	UpdateTenderStatus(ctx context.Context, id int, status models.TenderStatus) error
	ArchiveExpiredTenders(ctx context.Context, now time.Time) (int64, error)

	CreateBid(ctx context.Context, b *models.Bid, check func(t *models.Tender) error) error
	GetBid(ctx context.Context, id int) (*models.Bid, error)
	ListBidsForTender(ctx context.Context, tenderID int) ([]models.Bid, error)
	ListBidsByBidder(ctx context.Context, bidderID int) ([]models.Bid, error)
	ListBidderBidsOnTenders(ctx context.Context, bidderID int, tenderIDs []int) ([]models.Bid, error)
	UpdateBidStatus(ctx context.Context, id int, status models.BidStatus) error

	CreateEvaluation(ctx context.Context, e *models.Evaluation) error
	ListEvaluationsForBid(ctx context.Context, bidID int) ([]models.Evaluation, error)

	SelectWinner(ctx context.Context, w *models.Winner, check func(t *models.Tender, b *models.Bid) error) error
	ListWinners(ctx context.Context) ([]models.Winner, error)
	GetWinnerForTender(ctx context.Context, tenderID int) (*models.Winner, error)
}

var _ Store = (*db.Storage)(nil)

type Service struct {
	store    Store
	log      *zap.Logger
	now      func() time.Time
	hashCost int
}

type Option func(*Service)

// WithClock replaces time.Now for deadline checks and timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithHashCost sets the bcrypt cost used for new passwords.
func WithHashCost(cost int) Option {
	return func(s *Service) { s.hashCost = cost }
}

func New(store Store, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		store:    store,
		log:      log,
		now:      time.Now,
		hashCost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now is the service clock.
func (s *Service) Now() time.Time {
	return s.now()
}

// requireRole checks the caller against the allowed roles. A caller without a
// valid identity is unauthenticated regardless of the roles asked for.
func requireRole(caller models.Session, roles ...models.Role) error {
	if caller.UserID <= 0 || !caller.Role.Valid() {
		return apperr.Unauthenticated("authentication required")
	}
	for _, r := range roles {
		if caller.Role == r {
			return nil
		}
	}
	return apperr.Forbidden("role " + string(caller.Role) + " may not perform this action")
}

// fail classifies a storage error. Already classified errors pass through,
// db.ErrNotFound becomes NotFound with the given message, everything else is
// logged and hidden behind an internal error.
func (s *Service) fail(op string, err error, notFound string) error {
	var appErr *apperr.Error
	switch {
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, db.ErrNotFound) && notFound != "":
		return apperr.NotFound(notFound)
	}
	s.log.Error("storage failure", zap.String("op", op), zap.Error(err))
	return apperr.Internal(op, err)
}
