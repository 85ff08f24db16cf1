package db

import (
	"context"

	"github.com/jmoiron/sqlx"

	"tenderlink/models"
)

// SelectWinner records w and locks the winning bid in one transaction. The
// tender row is locked first; check sees it together with the chosen bid and
// may veto the selection. A second winner for the same tender fails with
// ErrConflict through the winner primary key.
func (s *Storage) SelectWinner(ctx context.Context, w *models.Winner, check func(t *models.Tender, b *models.Bid) error) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		tender, err := lockTender(ctx, tx, w.TenderID)
		if err != nil {
			return err
		}

		bid := &models.Bid{}
		bidQuery := `
            SELECT bid_id, tender_id, bidder_id, amount, status, submission_date
            FROM bid WHERE bid_id = $1`
		if err := tx.GetContext(ctx, bid, bidQuery, w.BidID); err != nil {
			return translate(err)
		}

		if err := check(tender, bid); err != nil {
			return err
		}

		insert := `
            INSERT INTO winner (tender_id, bid_id, selected_by, selected_at)
            VALUES ($1, $2, $3, $4)`
		if _, err := tx.ExecContext(ctx, insert, w.TenderID, w.BidID, w.SelectedBy, w.SelectedAt); err != nil {
			return translate(err)
		}

		lock := `UPDATE bid SET status = $1 WHERE bid_id = $2`
		if _, err := tx.ExecContext(ctx, lock, models.BidLocked, w.BidID); err != nil {
			return err
		}
		return nil
	})
}

func (s *Storage) ListWinners(ctx context.Context) ([]models.Winner, error) {
	query := `
        SELECT tender_id, bid_id, selected_by, selected_at
        FROM winner
        ORDER BY selected_at DESC, tender_id DESC`
	winners := []models.Winner{}
	err := s.db.SelectContext(ctx, &winners, query)
	return winners, err
}

func (s *Storage) GetWinnerForTender(ctx context.Context, tenderID int) (*models.Winner, error) {
	w := &models.Winner{}
	query := `
        SELECT tender_id, bid_id, selected_by, selected_at
        FROM winner WHERE tender_id = $1`
	if err := s.db.GetContext(ctx, w, query, tenderID); err != nil {
		return nil, translate(err)
	}
	return w, nil
}
