package db

import (
	"context"
	"time"

	"tenderlink/models"
)

const tenderColumns = `t.tender_id, t.user_id, t.title, t.description, t.issue_date, t.deadline, t.status, u.name AS buyer_name`

func (s *Storage) CreateTender(ctx context.Context, t *models.Tender) error {
	query := `
        INSERT INTO tender
            (user_id, title, description, issue_date, deadline, status)
        VALUES
            ($1, $2, $3, $4, $5, $6)
        RETURNING tender_id`
	err := s.db.QueryRowContext(ctx, query,
		t.UserID, t.Title, t.Description, t.IssueDate, t.Deadline, t.Status).
		Scan(&t.ID)
	return translate(err)
}

func (s *Storage) GetTender(ctx context.Context, id int) (*models.Tender, error) {
	t := &models.Tender{}
	query := `
        SELECT ` + tenderColumns + `
        FROM tender t
        JOIN users u ON t.user_id = u.user_id
        WHERE t.tender_id = $1`
	if err := s.db.GetContext(ctx, t, query, id); err != nil {
		return nil, translate(err)
	}
	return t, nil
}

func (s *Storage) ListTendersByOwner(ctx context.Context, ownerID int) ([]models.Tender, error) {
	query := `
        SELECT ` + tenderColumns + `
        FROM tender t
        JOIN users u ON t.user_id = u.user_id
        WHERE t.user_id = $1
        ORDER BY t.issue_date DESC, t.tender_id DESC`
	tenders := []models.Tender{}
	err := s.db.SelectContext(ctx, &tenders, query, ownerID)
	return tenders, err
}

func (s *Storage) ListAllTenders(ctx context.Context) ([]models.Tender, error) {
	query := `
        SELECT ` + tenderColumns + `
        FROM tender t
        JOIN users u ON t.user_id = u.user_id
        ORDER BY t.issue_date DESC, t.tender_id DESC`
	tenders := []models.Tender{}
	err := s.db.SelectContext(ctx, &tenders, query)
	return tenders, err
}

// ListPublishedTenders returns published tenders, closest deadline first.
func (s *Storage) ListPublishedTenders(ctx context.Context) ([]models.Tender, error) {
	query := `
        SELECT ` + tenderColumns + `
        FROM tender t
        JOIN users u ON t.user_id = u.user_id
        WHERE t.status = $1
        ORDER BY t.deadline ASC, t.tender_id ASC`
	tenders := []models.Tender{}
	err := s.db.SelectContext(ctx, &tenders, query, models.TenderPublished)
	return tenders, err
}

func (s *Storage) UpdateTenderStatus(ctx context.Context, id int, status models.TenderStatus) error {
	query := `UPDATE tender SET status = $1 WHERE tender_id = $2`
	res, err := s.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

// ArchiveExpiredTenders moves every published tender whose deadline is before
// now to Archived in one statement and reports how many rows changed.
func (s *Storage) ArchiveExpiredTenders(ctx context.Context, now time.Time) (int64, error) {
	query := `
        UPDATE tender
        SET status = $1
        WHERE status = $2 AND deadline < $3`
	res, err := s.db.ExecContext(ctx, query, models.TenderArchived, models.TenderPublished, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
