// Package servicetest provides an in-memory service.Store for tests.
package servicetest

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"tenderlink/db"
	"tenderlink/models"
)

// MemStore keeps every table in maps guarded by one mutex, so each method is
// atomic the way a single transaction would be. Setting Err makes every
// method fail with it.
type MemStore struct {
	mu sync.Mutex

	Err error

	users       map[int]models.User
	tenders     map[int]models.Tender
	bids        map[int]models.Bid
	evaluations map[int]models.Evaluation
	winners     map[int]models.Winner
	lastID      int
}

func NewMemStore() *MemStore {
	return &MemStore{
		users:       map[int]models.User{},
		tenders:     map[int]models.Tender{},
		bids:        map[int]models.Bid{},
		evaluations: map[int]models.Evaluation{},
		winners:     map[int]models.Winner{},
	}
}

func (m *MemStore) nextID() int {
	m.lastID++
	return m.lastID
}

func notFound(what string, id any) error {
	return fmt.Errorf("%w: %s %v", db.ErrNotFound, what, id)
}

// AddUser inserts u directly and returns its id.
func (m *MemStore) AddUser(u models.User) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	u.ID = m.nextID()
	m.users[u.ID] = u
	return u.ID
}

// AddTender inserts t directly, bypassing creation rules, and returns its id.
func (m *MemStore) AddTender(t models.Tender) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.ID = m.nextID()
	m.tenders[t.ID] = t
	return t.ID
}

// AddBid inserts b directly and returns its id.
func (m *MemStore) AddBid(b models.Bid) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	b.ID = m.nextID()
	m.bids[b.ID] = b
	return b.ID
}

// Tender returns the stored tender without joins.
func (m *MemStore) Tender(id int) (models.Tender, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tenders[id]
	return t, ok
}

// Bid returns the stored bid without joins.
func (m *MemStore) Bid(id int) (models.Bid, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bids[id]
	return b, ok
}

func (m *MemStore) CreateUser(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return fmt.Errorf("%w: users_email_key", db.ErrConflict)
		}
	}
	u.ID = m.nextID()
	u.CreatedAt = time.Now()
	m.users[u.ID] = *u
	return nil
}

func (m *MemStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, notFound("user", email)
}

func (m *MemStore) GetUserByID(_ context.Context, id int) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	u, ok := m.users[id]
	if !ok {
		return nil, notFound("user", id)
	}
	return &u, nil
}

func (m *MemStore) CountUsersByRole(_ context.Context, role models.Role) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return 0, m.Err
	}
	n := 0
	for _, u := range m.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

func (m *MemStore) withBuyer(t models.Tender) models.Tender {
	t.BuyerName = m.users[t.UserID].Name
	return t
}

func (m *MemStore) CreateTender(_ context.Context, t *models.Tender) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	t.ID = m.nextID()
	m.tenders[t.ID] = *t
	return nil
}

func (m *MemStore) GetTender(_ context.Context, id int) (*models.Tender, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	t, ok := m.tenders[id]
	if !ok {
		return nil, notFound("tender", id)
	}
	t = m.withBuyer(t)
	return &t, nil
}

func (m *MemStore) listTenders(keep func(models.Tender) bool, less func(a, b models.Tender) bool) []models.Tender {
	out := []models.Tender{}
	for _, t := range m.tenders {
		if keep(t) {
			out = append(out, m.withBuyer(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func newestIssued(a, b models.Tender) bool {
	if !a.IssueDate.Equal(b.IssueDate) {
		return a.IssueDate.After(b.IssueDate)
	}
	return a.ID > b.ID
}

func (m *MemStore) ListTendersByOwner(_ context.Context, ownerID int) ([]models.Tender, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return m.listTenders(func(t models.Tender) bool { return t.UserID == ownerID }, newestIssued), nil
}

func (m *MemStore) ListAllTenders(_ context.Context) ([]models.Tender, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return m.listTenders(func(models.Tender) bool { return true }, newestIssued), nil
}

func (m *MemStore) ListPublishedTenders(_ context.Context) ([]models.Tender, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return m.listTenders(
		func(t models.Tender) bool { return t.Status == models.TenderPublished },
		func(a, b models.Tender) bool {
			if !a.Deadline.Equal(b.Deadline) {
				return a.Deadline.Before(b.Deadline)
			}
			return a.ID < b.ID
		},
	), nil
}

func (m *MemStore) UpdateTenderStatus(_ context.Context, id int, status models.TenderStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	t, ok := m.tenders[id]
	if !ok {
		return notFound("tender", id)
	}
	t.Status = status
	m.tenders[id] = t
	return nil
}

func (m *MemStore) ArchiveExpiredTenders(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return 0, m.Err
	}
	var n int64
	for id, t := range m.tenders {
		if t.Status == models.TenderPublished && t.Deadline.Before(now) {
			t.Status = models.TenderArchived
			m.tenders[id] = t
			n++
		}
	}
	return n, nil
}

func (m *MemStore) CreateBid(_ context.Context, b *models.Bid, check func(t *models.Tender) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	t, ok := m.tenders[b.TenderID]
	if !ok {
		return notFound("tender", b.TenderID)
	}
	if err := check(&t); err != nil {
		return err
	}
	b.ID = m.nextID()
	m.bids[b.ID] = *b
	return nil
}

func (m *MemStore) GetBid(_ context.Context, id int) (*models.Bid, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	b, ok := m.bids[id]
	if !ok {
		return nil, notFound("bid", id)
	}
	return &b, nil
}

func newestBid(a, b models.Bid) int {
	if !a.SubmissionDate.Equal(b.SubmissionDate) {
		if a.SubmissionDate.After(b.SubmissionDate) {
			return -1
		}
		return 1
	}
	return b.ID - a.ID
}

func (m *MemStore) listBids(keep func(models.Bid) bool) []models.Bid {
	out := []models.Bid{}
	for _, b := range m.bids {
		if keep(b) {
			out = append(out, b)
		}
	}
	slices.SortFunc(out, newestBid)
	return out
}

func (m *MemStore) ListBidsForTender(_ context.Context, tenderID int) ([]models.Bid, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	bids := m.listBids(func(b models.Bid) bool { return b.TenderID == tenderID })
	for i := range bids {
		bids[i].BidderName = m.users[bids[i].BidderID].Name
	}
	return bids, nil
}

func (m *MemStore) ListBidsByBidder(_ context.Context, bidderID int) ([]models.Bid, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	bids := m.listBids(func(b models.Bid) bool { return b.BidderID == bidderID })
	for i := range bids {
		t := m.tenders[bids[i].TenderID]
		bids[i].TenderTitle = t.Title
		bids[i].TenderStatus = t.Status
	}
	return bids, nil
}

func (m *MemStore) ListBidderBidsOnTenders(_ context.Context, bidderID int, tenderIDs []int) ([]models.Bid, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return m.listBids(func(b models.Bid) bool {
		return b.BidderID == bidderID && slices.Contains(tenderIDs, b.TenderID)
	}), nil
}

func (m *MemStore) UpdateBidStatus(_ context.Context, id int, status models.BidStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	b, ok := m.bids[id]
	if !ok {
		return notFound("bid", id)
	}
	b.Status = status
	m.bids[id] = b
	return nil
}

func (m *MemStore) CreateEvaluation(_ context.Context, e *models.Evaluation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.bids[e.BidID]; !ok {
		return notFound("bid", e.BidID)
	}
	e.ID = m.nextID()
	m.evaluations[e.ID] = *e
	return nil
}

func (m *MemStore) ListEvaluationsForBid(_ context.Context, bidID int) ([]models.Evaluation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := []models.Evaluation{}
	for _, e := range m.evaluations {
		if e.BidID == bidID {
			e.EvaluatorName = m.users[e.EvaluatorID].Name
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].EvaluatedAt.Equal(out[j].EvaluatedAt) {
			return out[i].EvaluatedAt.After(out[j].EvaluatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (m *MemStore) SelectWinner(_ context.Context, w *models.Winner, check func(t *models.Tender, b *models.Bid) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	t, ok := m.tenders[w.TenderID]
	if !ok {
		return notFound("tender", w.TenderID)
	}
	b, ok := m.bids[w.BidID]
	if !ok {
		return notFound("bid", w.BidID)
	}
	if err := check(&t, &b); err != nil {
		return err
	}
	if _, taken := m.winners[w.TenderID]; taken {
		return fmt.Errorf("%w: winner_pkey", db.ErrConflict)
	}
	m.winners[w.TenderID] = *w
	b.Status = models.BidLocked
	m.bids[b.ID] = b
	return nil
}

func (m *MemStore) ListWinners(_ context.Context) ([]models.Winner, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := []models.Winner{}
	for _, w := range m.winners {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].SelectedAt.Equal(out[j].SelectedAt) {
			return out[i].SelectedAt.After(out[j].SelectedAt)
		}
		return out[i].TenderID > out[j].TenderID
	})
	return out, nil
}

func (m *MemStore) GetWinnerForTender(_ context.Context, tenderID int) (*models.Winner, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	w, ok := m.winners[tenderID]
	if !ok {
		return nil, notFound("winner for tender", tenderID)
	}
	return &w, nil
}
