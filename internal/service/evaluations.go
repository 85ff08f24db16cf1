package service

import (
	"context"

	"go.uber.org/zap"

	"tenderlink/internal/apperr"
	"tenderlink/models"
)

const (
	minScore = 0
	maxScore = 10
)

// ScoreBid records a new evaluation. Scoring the same bid again adds another
// row; earlier scores are kept.
func (s *Service) ScoreBid(ctx context.Context, caller models.Session, bidID, score int) (*models.Evaluation, error) {
	if err := requireRole(caller, models.RoleEvaluator); err != nil {
		return nil, err
	}
	fields := map[string]string{}
	if bidID <= 0 {
		fields["bidId"] = "must be a positive integer"
	}
	if score < minScore || score > maxScore {
		fields["score"] = "must be an integer between 0 and 10"
	}
	if len(fields) > 0 {
		return nil, apperr.ValidationFields("invalid evaluation data", fields)
	}

	if _, err := s.store.GetBid(ctx, bidID); err != nil {
		return nil, s.fail("get bid", err, "bid not found")
	}

	evaluation := &models.Evaluation{
		BidID:       bidID,
		EvaluatorID: caller.UserID,
		Score:       score,
		EvaluatedAt: s.now(),
	}
	if err := s.store.CreateEvaluation(ctx, evaluation); err != nil {
		return nil, s.fail("create evaluation", err, "bid not found")
	}
	s.log.Info("bid evaluated",
		zap.Int("evaluationID", evaluation.ID),
		zap.Int("bidID", bidID),
		zap.Int("evaluatorID", caller.UserID),
		zap.Int("score", score),
	)
	return evaluation, nil
}

func (s *Service) ListEvaluationsForBid(ctx context.Context, caller models.Session, bidID int) ([]models.Evaluation, error) {
	if err := requireRole(caller, anyRole...); err != nil {
		return nil, err
	}
	evaluations, err := s.store.ListEvaluationsForBid(ctx, bidID)
	if err != nil {
		return nil, s.fail("list evaluations", err, "")
	}
	return evaluations, nil
}
