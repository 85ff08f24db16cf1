package db

import (
	"context"

	"tenderlink/models"
)

func (s *Storage) CreateEvaluation(ctx context.Context, e *models.Evaluation) error {
	query := `
        INSERT INTO evaluation (bid_id, evaluator_id, score, evaluated_at)
        VALUES ($1, $2, $3, $4)
        RETURNING evaluation_id`
	err := s.db.QueryRowContext(ctx, query, e.BidID, e.EvaluatorID, e.Score, e.EvaluatedAt).
		Scan(&e.ID)
	return translate(err)
}

// ListEvaluationsForBid returns the evaluations of a bid with evaluator names, newest first.
func (s *Storage) ListEvaluationsForBid(ctx context.Context, bidID int) ([]models.Evaluation, error) {
	query := `
        SELECT e.evaluation_id, e.bid_id, e.evaluator_id, e.score, e.evaluated_at,
               u.name AS evaluator_name
        FROM evaluation e
        JOIN users u ON e.evaluator_id = u.user_id
        WHERE e.bid_id = $1
        ORDER BY e.evaluated_at DESC, e.evaluation_id DESC`
	evaluations := []models.Evaluation{}
	err := s.db.SelectContext(ctx, &evaluations, query, bidID)
	return evaluations, err
}
