package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/mailriver/backend/internal/domain/billing"
)

// WorkspaceBalanceModel is the persistence model for the WorkspaceBalance
// aggregate. One row per workspace.
type WorkspaceBalanceModel struct {
	AggregateModel
	WorkspaceID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	Balance     int64     `gorm:"not null;default:0"`
	Debt        int64     `gorm:"not null;default:0"`
	Currency    string    `gorm:"type:varchar(3);not null;default:'USD'"`
}

// TableName returns the table name for GORM
func (WorkspaceBalanceModel) TableName() string {
	return "workspace_balances"
}

// ToDomain converts the persistence model to a domain WorkspaceBalance
func (m *WorkspaceBalanceModel) ToDomain() *billing.WorkspaceBalance {
	b := &billing.WorkspaceBalance{
		WorkspaceID: m.WorkspaceID,
		Balance:     m.Balance,
		Debt:        m.Debt,
		Currency:    m.Currency,
	}
	m.PopulateAggregateRoot(&b.BaseAggregateRoot)
	return b
}

// FromDomain populates the persistence model from a domain WorkspaceBalance
func (m *WorkspaceBalanceModel) FromDomain(b *billing.WorkspaceBalance) {
	m.FromDomainAggregateRoot(b.BaseAggregateRoot)
	m.WorkspaceID = b.WorkspaceID
	m.Balance = b.Balance
	m.Debt = b.Debt
	m.Currency = b.Currency
}

// WorkspaceBalanceModelFromDomain creates a new persistence model from a domain WorkspaceBalance
func WorkspaceBalanceModelFromDomain(b *billing.WorkspaceBalance) *WorkspaceBalanceModel {
	m := &WorkspaceBalanceModel{}
	m.FromDomain(b)
	return m
}

// BalanceTransactionModel is the persistence model for ledger entries.
// Rows are append-only. The reference pair is unique so a charge task can
// never double-book the same external record.
type BalanceTransactionModel struct {
	WorkspaceAggregateModel
	Type          billing.TransactionType `gorm:"type:varchar(10);not null"`
	Amount        int64                   `gorm:"not null"`
	Currency      string                  `gorm:"type:varchar(3);not null;default:'USD'"`
	BalanceAfter  int64                   `gorm:"not null"`
	DebtAfter     int64                   `gorm:"not null"`
	ReferenceType billing.ReferenceType   `gorm:"type:varchar(30);not null;uniqueIndex:idx_balance_tx_reference,priority:1"`
	ReferenceID   string                  `gorm:"type:varchar(255);not null;uniqueIndex:idx_balance_tx_reference,priority:2"`
	Description   string                  `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (BalanceTransactionModel) TableName() string {
	return "balance_transactions"
}

// ToDomain converts the persistence model to a domain BalanceTransaction
func (m *BalanceTransactionModel) ToDomain() *billing.BalanceTransaction {
	tx := &billing.BalanceTransaction{
		Type:          m.Type,
		Amount:        m.Amount,
		Currency:      m.Currency,
		BalanceAfter:  m.BalanceAfter,
		DebtAfter:     m.DebtAfter,
		ReferenceType: m.ReferenceType,
		ReferenceID:   m.ReferenceID,
		Description:   m.Description,
	}
	m.PopulateWorkspaceAggregateRoot(&tx.WorkspaceAggregateRoot)
	return tx
}

// FromDomain populates the persistence model from a domain BalanceTransaction
func (m *BalanceTransactionModel) FromDomain(tx *billing.BalanceTransaction) {
	m.FromDomainWorkspaceAggregateRoot(tx.WorkspaceAggregateRoot)
	m.Type = tx.Type
	m.Amount = tx.Amount
	m.Currency = tx.Currency
	m.BalanceAfter = tx.BalanceAfter
	m.DebtAfter = tx.DebtAfter
	m.ReferenceType = tx.ReferenceType
	m.ReferenceID = tx.ReferenceID
	m.Description = tx.Description
}

// BalanceTransactionModelFromDomain creates a new persistence model from a domain BalanceTransaction
func BalanceTransactionModelFromDomain(tx *billing.BalanceTransaction) *BalanceTransactionModel {
	m := &BalanceTransactionModel{}
	m.FromDomain(tx)
	return m
}

// SubscriptionModel is the persistence model for gateway subscription mirrors.
type SubscriptionModel struct {
	WorkspaceAggregateModel
	PlanID               uuid.UUID                  `gorm:"type:uuid;not null;index"`
	StripeSubscriptionID string                     `gorm:"type:varchar(255);not null;uniqueIndex"`
	StripeCustomerID     string                     `gorm:"type:varchar(255);not null;index"`
	Status               billing.SubscriptionStatus `gorm:"type:varchar(20);not null"`
	CurrentPeriodStart   time.Time                  `gorm:"not null"`
	CurrentPeriodEnd     time.Time                  `gorm:"not null"`
	CancelAtPeriodEnd    bool                       `gorm:"not null;default:false"`
	CanceledAt           *time.Time
}

// TableName returns the table name for GORM
func (SubscriptionModel) TableName() string {
	return "subscriptions"
}

// ToDomain converts the persistence model to a domain Subscription
func (m *SubscriptionModel) ToDomain() *billing.Subscription {
	s := &billing.Subscription{
		PlanID:               m.PlanID,
		StripeSubscriptionID: m.StripeSubscriptionID,
		StripeCustomerID:     m.StripeCustomerID,
		Status:               m.Status,
		CurrentPeriodStart:   m.CurrentPeriodStart,
		CurrentPeriodEnd:     m.CurrentPeriodEnd,
		CancelAtPeriodEnd:    m.CancelAtPeriodEnd,
		CanceledAt:           m.CanceledAt,
	}
	m.PopulateWorkspaceAggregateRoot(&s.WorkspaceAggregateRoot)
	return s
}

// FromDomain populates the persistence model from a domain Subscription
func (m *SubscriptionModel) FromDomain(s *billing.Subscription) {
	m.FromDomainWorkspaceAggregateRoot(s.WorkspaceAggregateRoot)
	m.PlanID = s.PlanID
	m.StripeSubscriptionID = s.StripeSubscriptionID
	m.StripeCustomerID = s.StripeCustomerID
	m.Status = s.Status
	m.CurrentPeriodStart = s.CurrentPeriodStart
	m.CurrentPeriodEnd = s.CurrentPeriodEnd
	m.CancelAtPeriodEnd = s.CancelAtPeriodEnd
	m.CanceledAt = s.CanceledAt
}

// SubscriptionModelFromDomain creates a new persistence model from a domain Subscription
func SubscriptionModelFromDomain(s *billing.Subscription) *SubscriptionModel {
	m := &SubscriptionModel{}
	m.FromDomain(s)
	return m
}

// UsageRecordModel is the persistence model for per-period usage counters.
// One row per workspace, feature, and calendar month.
type UsageRecordModel struct {
	AggregateModel
	WorkspaceID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_usage_workspace_feature_period,priority:1"`
	FeatureCode string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_usage_workspace_feature_period,priority:2"`
	Period      string    `gorm:"type:varchar(7);not null;uniqueIndex:idx_usage_workspace_feature_period,priority:3"`
	Count       int64     `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (UsageRecordModel) TableName() string {
	return "usage_records"
}

// ToDomain converts the persistence model to a domain UsageRecord
func (m *UsageRecordModel) ToDomain() *billing.UsageRecord {
	r := &billing.UsageRecord{
		FeatureCode: m.FeatureCode,
		Period:      m.Period,
		Count:       m.Count,
	}
	m.PopulateAggregateRoot(&r.BaseAggregateRoot)
	r.WorkspaceID = m.WorkspaceID
	return r
}

// FromDomain populates the persistence model from a domain UsageRecord
func (m *UsageRecordModel) FromDomain(r *billing.UsageRecord) {
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	m.WorkspaceID = r.WorkspaceID
	m.FeatureCode = r.FeatureCode
	m.Period = r.Period
	m.Count = r.Count
}

// UsageRecordModelFromDomain creates a new persistence model from a domain UsageRecord
func UsageRecordModelFromDomain(r *billing.UsageRecord) *UsageRecordModel {
	m := &UsageRecordModel{}
	m.FromDomain(r)
	return m
}
