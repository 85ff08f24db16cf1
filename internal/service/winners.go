package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"tenderlink/db"
	"tenderlink/internal/apperr"
	"tenderlink/models"
)

// SelectWinner marks bidID as the accepted offer for tenderID and locks the
// bid. A tender gets at most one winner, and the bid must belong to it.
func (s *Service) SelectWinner(ctx context.Context, caller models.Session, tenderID, bidID int) (*models.Winner, error) {
	if err := requireRole(caller, models.RoleAdmin); err != nil {
		return nil, err
	}
	fields := map[string]string{}
	if tenderID <= 0 {
		fields["tenderId"] = "must be a positive integer"
	}
	if bidID <= 0 {
		fields["bidId"] = "must be a positive integer"
	}
	if len(fields) > 0 {
		return nil, apperr.ValidationFields("invalid winner data", fields)
	}

	winner := &models.Winner{
		TenderID:   tenderID,
		BidID:      bidID,
		SelectedBy: caller.UserID,
		SelectedAt: s.now(),
	}
	err := s.store.SelectWinner(ctx, winner, func(t *models.Tender, b *models.Bid) error {
		if b.TenderID != t.ID {
			return apperr.ValidationFields("bid does not belong to tender", map[string]string{
				"bidId": "is not a bid on this tender",
			})
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, db.ErrConflict) {
			return nil, apperr.StateConflict("a winner has already been selected for this tender")
		}
		return nil, s.fail("select winner", err, "tender or bid not found")
	}

	s.log.Info("winner selected",
		zap.Int("tenderID", tenderID),
		zap.Int("bidID", bidID),
		zap.Int("adminID", caller.UserID),
	)
	return winner, nil
}

func (s *Service) ListWinners(ctx context.Context, caller models.Session) ([]models.Winner, error) {
	if err := requireRole(caller, models.RoleAdmin); err != nil {
		return nil, err
	}
	winners, err := s.store.ListWinners(ctx)
	if err != nil {
		return nil, s.fail("list winners", err, "")
	}
	return winners, nil
}

// GetWinnerForTender returns nil without error while no winner is selected.
func (s *Service) GetWinnerForTender(ctx context.Context, caller models.Session, tenderID int) (*models.Winner, error) {
	if err := requireRole(caller, anyRole...); err != nil {
		return nil, err
	}
	winner, err := s.store.GetWinnerForTender(ctx, tenderID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, nil
		}
		return nil, s.fail("get winner", err, "")
	}
	return winner, nil
}
