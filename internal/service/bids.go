package service

import (
	"context"
	"errors"
	"math"

	"go.uber.org/zap"

	"tenderlink/db"
	"tenderlink/internal/apperr"
	"tenderlink/models"
)

// PlaceBid submits a bid from the calling Bidder. The tender must be
// Published and its deadline not yet passed; both are checked against the
// locked tender row inside the insert transaction.
func (s *Service) PlaceBid(ctx context.Context, caller models.Session, tenderID int, amount float64) (*models.Bid, error) {
	if err := requireRole(caller, models.RoleBidder); err != nil {
		return nil, err
	}
	fields := map[string]string{}
	if tenderID <= 0 {
		fields["tenderId"] = "must be a positive integer"
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		fields["amount"] = "must be a positive number"
	}
	if len(fields) > 0 {
		return nil, apperr.ValidationFields("invalid bid data", fields)
	}

	now := s.now()
	bid := &models.Bid{
		TenderID:       tenderID,
		BidderID:       caller.UserID,
		Amount:         amount,
		Status:         models.BidSubmitted,
		SubmissionDate: now,
	}
	err := s.store.CreateBid(ctx, bid, func(t *models.Tender) error {
		if t.Status != models.TenderPublished {
			return apperr.StateConflict("tender is not available for bidding")
		}
		if now.After(t.Deadline) {
			return apperr.StateConflict("tender deadline has passed")
		}
		return nil
	})
	if errors.Is(err, db.ErrInvalidValue) {
		return nil, apperr.ValidationFields("invalid bid data", map[string]string{
			"amount": "cannot be stored as a bid amount",
		})
	}
	if err != nil {
		return nil, s.fail("create bid", err, "tender not found")
	}

	s.log.Info("bid placed",
		zap.Int("bidID", bid.ID),
		zap.Int("tenderID", tenderID),
		zap.Int("bidderID", caller.UserID),
		zap.Float64("amount", amount),
	)
	return bid, nil
}

// ListBidsForTender is open to Admins, Buyers and Evaluators, and otherwise
// only to the tender's owner.
func (s *Service) ListBidsForTender(ctx context.Context, caller models.Session, tenderID int) ([]models.Bid, error) {
	if err := requireRole(caller, anyRole...); err != nil {
		return nil, err
	}
	switch caller.Role {
	case models.RoleAdmin, models.RoleBuyer, models.RoleEvaluator:
	default:
		tender, err := s.store.GetTender(ctx, tenderID)
		if err != nil && !errors.Is(err, db.ErrNotFound) {
			return nil, s.fail("get tender", err, "")
		}
		if tender == nil || tender.UserID != caller.UserID {
			return nil, apperr.Forbidden("you may not view all bids for this tender")
		}
	}

	bids, err := s.store.ListBidsForTender(ctx, tenderID)
	if err != nil {
		return nil, s.fail("list bids for tender", err, "")
	}
	return bids, nil
}

// ListMyBids returns the calling Bidder's bids.
func (s *Service) ListMyBids(ctx context.Context, caller models.Session) ([]models.Bid, error) {
	if err := requireRole(caller, models.RoleBidder); err != nil {
		return nil, err
	}
	bids, err := s.store.ListBidsByBidder(ctx, caller.UserID)
	if err != nil {
		return nil, s.fail("list bidder bids", err, "")
	}
	return bids, nil
}

func (s *Service) UpdateBidStatus(ctx context.Context, caller models.Session, bidID int, status models.BidStatus) (models.BidStatus, error) {
	if err := requireRole(caller, models.RoleAdmin); err != nil {
		return "", err
	}
	if !status.Valid() {
		return "", apperr.ValidationFields("invalid status value", map[string]string{
			"status": "must be one of Submitted, Locked",
		})
	}
	if err := s.store.UpdateBidStatus(ctx, bidID, status); err != nil {
		return "", s.fail("update bid status", err, "bid not found")
	}
	s.log.Info("bid status updated", zap.Int("bidID", bidID), zap.String("status", string(status)))
	return status, nil
}
