package models

import "time"

// Role роль пользователя, задается при регистрации
type Role string

const (
	RoleBuyer     Role = "Buyer"
	RoleBidder    Role = "Bidder"
	RoleEvaluator Role = "Evaluator"
	RoleAdmin     Role = "Admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleBuyer, RoleBidder, RoleEvaluator, RoleAdmin:
		return true
	default:
		return false
	}
}

// TenderStatus статус тендера
type TenderStatus string

const (
	TenderDraft           TenderStatus = "Draft"
	TenderPendingApproval TenderStatus = "Pending Approval"
	TenderPublished       TenderStatus = "Published"
	TenderRejected        TenderStatus = "Rejected"
	TenderArchived        TenderStatus = "Archived"
)

func (s TenderStatus) Valid() bool {
	switch s {
	case TenderDraft, TenderPendingApproval, TenderPublished, TenderRejected, TenderArchived:
		return true
	default:
		return false
	}
}

// TenderStatuses все статусы в порядке жизненного цикла
var TenderStatuses = []TenderStatus{
	TenderDraft, TenderPendingApproval, TenderPublished, TenderRejected, TenderArchived,
}

// BidStatus статус предложения
type BidStatus string

const (
	BidSubmitted BidStatus = "Submitted"
	BidLocked    BidStatus = "Locked"
)

func (s BidStatus) Valid() bool {
	switch s {
	case BidSubmitted, BidLocked:
		return true
	default:
		return false
	}
}

// Session аутентифицированный автор запроса
type Session struct {
	UserID int
	Role   Role
}

// Сущность Пользователя
type User struct {
	ID           int       `db:"user_id" json:"userId"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         Role      `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

// Сущность Тендера
type Tender struct {
	ID          int          `db:"tender_id" json:"tenderId"`
	UserID      int          `db:"user_id" json:"userId"`
	Title       string       `db:"title" json:"title"`
	Description string       `db:"description" json:"description"`
	IssueDate   time.Time    `db:"issue_date" json:"issueDate"`
	Deadline    time.Time    `db:"deadline" json:"deadline"`
	Status      TenderStatus `db:"status" json:"status"`
	BuyerName   string       `db:"buyer_name" json:"buyerName,omitempty"`
}

// Опубликованный тендер вместе со ставками текущего участника
type PublishedTender struct {
	Tender
	Bids []Bid `json:"bids"`
}

// Сущность Предложения
type Bid struct {
	ID             int       `db:"bid_id" json:"bidId"`
	TenderID       int       `db:"tender_id" json:"tenderId"`
	BidderID       int       `db:"bidder_id" json:"bidderId"`
	Amount         float64   `db:"amount" json:"amount"`
	Status         BidStatus `db:"status" json:"status"`
	SubmissionDate time.Time `db:"submission_date" json:"submissionDate"`

	BidderName   string       `db:"bidder_name" json:"bidderName,omitempty"`
	TenderTitle  string       `db:"tender_title" json:"tenderTitle,omitempty"`
	TenderStatus TenderStatus `db:"tender_status" json:"tenderStatus,omitempty"`
}

// Сущность Оценки
type Evaluation struct {
	ID            int       `db:"evaluation_id" json:"evaluationId"`
	BidID         int       `db:"bid_id" json:"bidId"`
	EvaluatorID   int       `db:"evaluator_id" json:"evaluatorId"`
	Score         int       `db:"score" json:"score"`
	EvaluatedAt   time.Time `db:"evaluated_at" json:"evaluatedAt"`
	EvaluatorName string    `db:"evaluator_name" json:"evaluatorName,omitempty"`
}

// Сущность Победителя
type Winner struct {
	TenderID   int       `db:"tender_id" json:"tenderId"`
	BidID      int       `db:"bid_id" json:"bidId"`
	SelectedBy int       `db:"selected_by" json:"selectedBy"`
	SelectedAt time.Time `db:"selected_at" json:"selectedAt"`
}
