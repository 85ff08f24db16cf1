package db_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"tenderlink/db"
	"tenderlink/models"
)

func newMockStorage(t *testing.T) (*db.Storage, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		mockDB.Close()
	})
	return db.NewStorage(sqlx.NewDb(mockDB, "postgres")), mock
}

var (
	tenderLockColumns = []string{"tender_id", "user_id", "title", "description", "issue_date", "deadline", "status"}
	bidColumns        = []string{"bid_id", "tender_id", "bidder_id", "amount", "status", "submission_date"}
)

func tenderRow(id int, status models.TenderStatus, deadline time.Time) *sqlmock.Rows {
	return sqlmock.NewRows(tenderLockColumns).
		AddRow(id, 1, "Office chairs", "", deadline.Add(-48*time.Hour), deadline, string(status))
}

func TestGetTenderNotFound(t *testing.T) {
	store, mock := newMockStorage(t)
	mock.ExpectQuery("FROM tender t").WithArgs(7).WillReturnError(sql.ErrNoRows)

	tender, err := store.GetTender(context.Background(), 7)
	require.Nil(t, tender)
	require.ErrorIs(t, err, db.ErrNotFound)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	store, mock := newMockStorage(t)
	mock.ExpectQuery("INSERT INTO users").
		WithArgs("Carol", "carol@example.com", "hash", models.RoleBidder).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_email_key"})

	err := store.CreateUser(context.Background(), &models.User{
		Name:         "Carol",
		Email:        "carol@example.com",
		PasswordHash: "hash",
		Role:         models.RoleBidder,
	})
	require.ErrorIs(t, err, db.ErrConflict)
}

func TestCreateUserScansGeneratedColumns(t *testing.T) {
	store, mock := newMockStorage(t)
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	mock.ExpectQuery("INSERT INTO users").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "created_at"}).AddRow(5, created))

	u := &models.User{Name: "Dan", Email: "dan@example.com", PasswordHash: "hash", Role: models.RoleBuyer}
	require.NoError(t, store.CreateUser(context.Background(), u))
	require.Equal(t, 5, u.ID)
	require.Equal(t, created, u.CreatedAt)
}

func TestArchiveExpiredTenders(t *testing.T) {
	store, mock := newMockStorage(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectExec("UPDATE tender").
		WithArgs(models.TenderArchived, models.TenderPublished, now).
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := store.ArchiveExpiredTenders(context.Background(), now)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)
}

func TestUpdateTenderStatusMissingRow(t *testing.T) {
	store, mock := newMockStorage(t)
	mock.ExpectExec("UPDATE tender SET status").
		WithArgs(models.TenderPublished, 99).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.UpdateTenderStatus(context.Background(), 99, models.TenderPublished)
	require.ErrorIs(t, err, db.ErrNotFound)
}

func TestCreateBidRollsBackWhenCheckRejects(t *testing.T) {
	store, mock := newMockStorage(t)
	deadline := time.Now().Add(time.Hour)
	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs(3).
		WillReturnRows(tenderRow(3, models.TenderPendingApproval, deadline))
	mock.ExpectRollback()

	rejected := errors.New("not open")
	var seen *models.Tender
	err := store.CreateBid(context.Background(), &models.Bid{TenderID: 3, BidderID: 2, Amount: 10}, func(t *models.Tender) error {
		seen = t
		return rejected
	})
	require.ErrorIs(t, err, rejected)
	require.Equal(t, models.TenderPendingApproval, seen.Status)
}

func TestCreateBidCommits(t *testing.T) {
	store, mock := newMockStorage(t)
	deadline := time.Now().Add(time.Hour)
	submitted := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs(3).
		WillReturnRows(tenderRow(3, models.TenderPublished, deadline))
	mock.ExpectQuery("INSERT INTO bid").
		WithArgs(3, 2, 500.0, models.BidSubmitted, submitted).
		WillReturnRows(sqlmock.NewRows([]string{"bid_id"}).AddRow(11))
	mock.ExpectCommit()

	bid := &models.Bid{TenderID: 3, BidderID: 2, Amount: 500, Status: models.BidSubmitted, SubmissionDate: submitted}
	require.NoError(t, store.CreateBid(context.Background(), bid, func(*models.Tender) error { return nil }))
	require.Equal(t, 11, bid.ID)
}

func TestCreateBidMissingTender(t *testing.T) {
	store, mock := newMockStorage(t)
	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs(404).WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err := store.CreateBid(context.Background(), &models.Bid{TenderID: 404}, func(*models.Tender) error {
		t.Fatal("check must not run without a tender")
		return nil
	})
	require.ErrorIs(t, err, db.ErrNotFound)
}

func TestSelectWinnerLocksBid(t *testing.T) {
	store, mock := newMockStorage(t)
	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs(3).
		WillReturnRows(tenderRow(3, models.TenderPublished, now.Add(time.Hour)))
	mock.ExpectQuery("FROM bid WHERE bid_id").WithArgs(11).
		WillReturnRows(sqlmock.NewRows(bidColumns).AddRow(11, 3, 2, 500.0, "Submitted", now))
	mock.ExpectExec("INSERT INTO winner").
		WithArgs(3, 11, 1, now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE bid SET status").
		WithArgs(models.BidLocked, 11).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	w := &models.Winner{TenderID: 3, BidID: 11, SelectedBy: 1, SelectedAt: now}
	var checked bool
	err := store.SelectWinner(context.Background(), w, func(tender *models.Tender, bid *models.Bid) error {
		checked = tender.ID == bid.TenderID
		return nil
	})
	require.True(t, checked)
	require.NoError(t, err)
}

func TestSelectWinnerSecondSelectionConflicts(t *testing.T) {
	store, mock := newMockStorage(t)
	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs(3).
		WillReturnRows(tenderRow(3, models.TenderPublished, now.Add(time.Hour)))
	mock.ExpectQuery("FROM bid WHERE bid_id").WithArgs(11).
		WillReturnRows(sqlmock.NewRows(bidColumns).AddRow(11, 3, 2, 500.0, "Locked", now))
	mock.ExpectExec("INSERT INTO winner").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "winner_pkey"})
	mock.ExpectRollback()

	w := &models.Winner{TenderID: 3, BidID: 11, SelectedBy: 1, SelectedAt: now}
	err := store.SelectWinner(context.Background(), w, func(*models.Tender, *models.Bid) error { return nil })
	require.ErrorIs(t, err, db.ErrConflict)
}

func TestListBidderBidsOnNoTenders(t *testing.T) {
	store, _ := newMockStorage(t)

	bids, err := store.ListBidderBidsOnTenders(context.Background(), 2, nil)
	require.NoError(t, err)
	require.NotNil(t, bids)
	require.Empty(t, bids)
}

func TestListPublishedTendersJoinsBuyer(t *testing.T) {
	store, mock := newMockStorage(t)
	deadline := time.Now().Add(time.Hour)
	rows := sqlmock.NewRows(append(append([]string{}, tenderLockColumns...), "buyer_name")).
		AddRow(3, 1, "Office chairs", "", deadline.Add(-time.Hour), deadline, "Published", "Acme")
	mock.ExpectQuery("WHERE t.status = ").WithArgs(models.TenderPublished).WillReturnRows(rows)

	tenders, err := store.ListPublishedTenders(context.Background())
	require.NoError(t, err)
	require.Len(t, tenders, 1)
	require.Equal(t, "Acme", tenders[0].BuyerName)
	require.Equal(t, models.TenderPublished, tenders[0].Status)
}

func TestCreateBidRejectedAmount(t *testing.T) {
	for _, code := range []pq.ErrorCode{"23514", "22003"} {
		t.Run(string(code), func(t *testing.T) {
			store, mock := newMockStorage(t)
			mock.ExpectBegin()
			mock.ExpectQuery("FOR UPDATE").WithArgs(3).
				WillReturnRows(tenderRow(3, models.TenderPublished, time.Now().Add(time.Hour)))
			mock.ExpectQuery("INSERT INTO bid").
				WillReturnError(&pq.Error{Code: code, Message: "bid amount rejected"})
			mock.ExpectRollback()

			bid := &models.Bid{TenderID: 3, BidderID: 2, Amount: 0.001, Status: models.BidSubmitted, SubmissionDate: time.Now()}
			err := store.CreateBid(context.Background(), bid, func(*models.Tender) error { return nil })
			require.ErrorIs(t, err, db.ErrInvalidValue)
		})
	}
}
