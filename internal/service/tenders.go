package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"tenderlink/internal/apperr"
	"tenderlink/models"
)

const (
	maxTitleLength       = 200
	maxDescriptionLength = 5000
)

var anyRole = []models.Role{models.RoleBuyer, models.RoleBidder, models.RoleEvaluator, models.RoleAdmin}

type CreateTenderInput struct {
	Title       string
	Description string
	Deadline    time.Time
}

// CreateTender stores a new tender owned by the calling Buyer. New tenders
// wait for an administrator in Pending Approval.
func (s *Service) CreateTender(ctx context.Context, caller models.Session, in CreateTenderInput) (*models.Tender, error) {
	if err := requireRole(caller, models.RoleBuyer); err != nil {
		return nil, err
	}

	now := s.now()
	fields := map[string]string{}
	title := strings.TrimSpace(in.Title)
	if title == "" || len(title) > maxTitleLength {
		fields["title"] = "is required and at most 200 characters"
	}
	if len(in.Description) > maxDescriptionLength {
		fields["description"] = "must be at most 5000 characters"
	}
	if in.Deadline.IsZero() {
		fields["deadline"] = "is required"
	} else if !in.Deadline.After(now) {
		fields["deadline"] = "must be in the future"
	}
	if len(fields) > 0 {
		return nil, apperr.ValidationFields("invalid tender data", fields)
	}

	tender := &models.Tender{
		UserID:      caller.UserID,
		Title:       title,
		Description: in.Description,
		IssueDate:   now,
		Deadline:    in.Deadline,
		Status:      models.TenderPendingApproval,
	}
	if err := s.store.CreateTender(ctx, tender); err != nil {
		return nil, s.fail("create tender", err, "")
	}
	s.log.Info("tender created",
		zap.Int("tenderID", tender.ID),
		zap.Int("ownerID", caller.UserID),
		zap.Time("deadline", tender.Deadline),
	)
	return tender, nil
}

func (s *Service) GetTender(ctx context.Context, caller models.Session, id int) (*models.Tender, error) {
	if err := requireRole(caller, anyRole...); err != nil {
		return nil, err
	}
	tender, err := s.store.GetTender(ctx, id)
	if err != nil {
		return nil, s.fail("get tender", err, "tender not found")
	}
	return tender, nil
}

// ListMyTenders returns the tenders the caller owns.
func (s *Service) ListMyTenders(ctx context.Context, caller models.Session) ([]models.Tender, error) {
	if err := requireRole(caller, anyRole...); err != nil {
		return nil, err
	}
	tenders, err := s.store.ListTendersByOwner(ctx, caller.UserID)
	if err != nil {
		return nil, s.fail("list own tenders", err, "")
	}
	return tenders, nil
}

func (s *Service) ListAllTenders(ctx context.Context, caller models.Session) ([]models.Tender, error) {
	if err := requireRole(caller, models.RoleAdmin); err != nil {
		return nil, err
	}
	tenders, err := s.store.ListAllTenders(ctx)
	if err != nil {
		return nil, s.fail("list all tenders", err, "")
	}
	return tenders, nil
}

// ListPublishedTenders returns every published tender with only the caller's
// own bids attached.
func (s *Service) ListPublishedTenders(ctx context.Context, caller models.Session) ([]models.PublishedTender, error) {
	if err := requireRole(caller, anyRole...); err != nil {
		return nil, err
	}
	tenders, err := s.store.ListPublishedTenders(ctx)
	if err != nil {
		return nil, s.fail("list published tenders", err, "")
	}

	ids := make([]int, len(tenders))
	for i, t := range tenders {
		ids[i] = t.ID
	}
	bids, err := s.store.ListBidderBidsOnTenders(ctx, caller.UserID, ids)
	if err != nil {
		return nil, s.fail("list caller bids", err, "")
	}
	byTender := make(map[int][]models.Bid, len(tenders))
	for _, b := range bids {
		byTender[b.TenderID] = append(byTender[b.TenderID], b)
	}

	out := make([]models.PublishedTender, len(tenders))
	for i, t := range tenders {
		own := byTender[t.ID]
		if own == nil {
			own = []models.Bid{}
		}
		out[i] = models.PublishedTender{Tender: t, Bids: own}
	}
	return out, nil
}

// UpdateTenderStatus writes any known status verbatim; there is no
// transition graph beyond membership in the status enum.
func (s *Service) UpdateTenderStatus(ctx context.Context, caller models.Session, id int, status models.TenderStatus) (models.TenderStatus, error) {
	if err := requireRole(caller, models.RoleAdmin); err != nil {
		return "", err
	}
	if !status.Valid() {
		return "", apperr.ValidationFields("invalid status value", map[string]string{
			"status": "must be one of Draft, Pending Approval, Published, Rejected, Archived",
		})
	}
	if err := s.store.UpdateTenderStatus(ctx, id, status); err != nil {
		return "", s.fail("update tender status", err, "tender not found")
	}
	s.log.Info("tender status updated",
		zap.Int("tenderID", id),
		zap.String("status", string(status)),
		zap.Int("adminID", caller.UserID),
	)
	return status, nil
}

// ArchiveExpired moves published tenders whose deadline has passed to
// Archived. Running it again without new expiries changes nothing.
func (s *Service) ArchiveExpired(ctx context.Context) (int64, error) {
	n, err := s.store.ArchiveExpiredTenders(ctx, s.now())
	if err != nil {
		return 0, s.fail("archive expired tenders", err, "")
	}
	return n, nil
}
