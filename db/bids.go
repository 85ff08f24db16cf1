package db

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"tenderlink/models"
)

// lockTender reads a tender row with FOR UPDATE so that concurrent bids,
// winner selection and the archive sweep serialise on it.
func lockTender(ctx context.Context, tx *sqlx.Tx, id int) (*models.Tender, error) {
	t := &models.Tender{}
	query := `
        SELECT tender_id, user_id, title, description, issue_date, deadline, status
        FROM tender
        WHERE tender_id = $1
        FOR UPDATE`
	if err := tx.GetContext(ctx, t, query, id); err != nil {
		return nil, translate(err)
	}
	return t, nil
}

// CreateBid inserts b if check accepts the locked tender it targets. An error
// from check aborts the transaction and is returned as is.
func (s *Storage) CreateBid(ctx context.Context, b *models.Bid, check func(t *models.Tender) error) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		tender, err := lockTender(ctx, tx, b.TenderID)
		if err != nil {
			return err
		}
		if err := check(tender); err != nil {
			return err
		}
		query := `
            INSERT INTO bid (tender_id, bidder_id, amount, status, submission_date)
            VALUES ($1, $2, $3, $4, $5)
            RETURNING bid_id`
		err = tx.QueryRowContext(ctx, query,
			b.TenderID, b.BidderID, b.Amount, b.Status, b.SubmissionDate).
			Scan(&b.ID)
		return translate(err)
	})
}

func (s *Storage) GetBid(ctx context.Context, id int) (*models.Bid, error) {
	b := &models.Bid{}
	query := `
        SELECT bid_id, tender_id, bidder_id, amount, status, submission_date
        FROM bid WHERE bid_id = $1`
	if err := s.db.GetContext(ctx, b, query, id); err != nil {
		return nil, translate(err)
	}
	return b, nil
}

// ListBidsForTender returns all bids on a tender with bidder names, newest first.
func (s *Storage) ListBidsForTender(ctx context.Context, tenderID int) ([]models.Bid, error) {
	query := `
        SELECT b.bid_id, b.tender_id, b.bidder_id, b.amount, b.status, b.submission_date,
               u.name AS bidder_name
        FROM bid b
        JOIN users u ON b.bidder_id = u.user_id
        WHERE b.tender_id = $1
        ORDER BY b.submission_date DESC, b.bid_id DESC`
	bids := []models.Bid{}
	err := s.db.SelectContext(ctx, &bids, query, tenderID)
	return bids, err
}

// ListBidsByBidder returns a bidder's bids with tender title and status, newest first.
func (s *Storage) ListBidsByBidder(ctx context.Context, bidderID int) ([]models.Bid, error) {
	query := `
        SELECT b.bid_id, b.tender_id, b.bidder_id, b.amount, b.status, b.submission_date,
               t.title AS tender_title, t.status AS tender_status
        FROM bid b
        JOIN tender t ON b.tender_id = t.tender_id
        WHERE b.bidder_id = $1
        ORDER BY b.submission_date DESC, b.bid_id DESC`
	bids := []models.Bid{}
	err := s.db.SelectContext(ctx, &bids, query, bidderID)
	return bids, err
}

// ListBidderBidsOnTenders returns the bids one bidder placed on any of the given tenders.
func (s *Storage) ListBidderBidsOnTenders(ctx context.Context, bidderID int, tenderIDs []int) ([]models.Bid, error) {
	bids := []models.Bid{}
	if len(tenderIDs) == 0 {
		return bids, nil
	}
	ids := make([]int64, len(tenderIDs))
	for i, id := range tenderIDs {
		ids[i] = int64(id)
	}
	query := `
        SELECT bid_id, tender_id, bidder_id, amount, status, submission_date
        FROM bid
        WHERE bidder_id = $1 AND tender_id = ANY($2)
        ORDER BY submission_date DESC, bid_id DESC`
	err := s.db.SelectContext(ctx, &bids, query, bidderID, pq.Array(ids))
	return bids, err
}

func (s *Storage) UpdateBidStatus(ctx context.Context, id int, status models.BidStatus) error {
	query := `UPDATE bid SET status = $1 WHERE bid_id = $2`
	res, err := s.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}
