package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/mailriver/backend/internal/domain/identity"
)

// UserModel is the persistence model for the User aggregate.
type UserModel struct {
	WorkspaceAggregateModel
	Email         string              `gorm:"type:varchar(255);not null;uniqueIndex"`
	PasswordHash  string              `gorm:"type:varchar(255);not null"`
	Name          string              `gorm:"type:varchar(200)"`
	Role          identity.UserRole   `gorm:"type:varchar(20);not null;default:'MEMBER'"`
	Status        identity.UserStatus `gorm:"type:varchar(20);not null;default:'ACTIVE'"`
	EmailVerified bool                `gorm:"not null;default:false"`
	LastLoginAt   *time.Time
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User
func (m *UserModel) ToDomain() *identity.User {
	u := &identity.User{
		Email:         m.Email,
		PasswordHash:  m.PasswordHash,
		Name:          m.Name,
		Role:          m.Role,
		Status:        m.Status,
		EmailVerified: m.EmailVerified,
		LastLoginAt:   m.LastLoginAt,
	}
	m.PopulateWorkspaceAggregateRoot(&u.WorkspaceAggregateRoot)
	return u
}

// FromDomain populates the persistence model from a domain User
func (m *UserModel) FromDomain(u *identity.User) {
	m.FromDomainWorkspaceAggregateRoot(u.WorkspaceAggregateRoot)
	m.Email = u.Email
	m.PasswordHash = u.PasswordHash
	m.Name = u.Name
	m.Role = u.Role
	m.Status = u.Status
	m.EmailVerified = u.EmailVerified
	m.LastLoginAt = u.LastLoginAt
}

// UserModelFromDomain creates a new persistence model from a domain User
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{}
	m.FromDomain(u)
	return m
}

// WorkspaceModel is the persistence model for the Workspace aggregate.
type WorkspaceModel struct {
	AggregateModel
	Name             string                   `gorm:"type:varchar(200);not null"`
	Slug             string                   `gorm:"type:varchar(100);not null;uniqueIndex"`
	Status           identity.WorkspaceStatus `gorm:"type:varchar(20);not null;default:'ACTIVE'"`
	PlanID           *uuid.UUID               `gorm:"type:uuid;index"`
	StripeCustomerID string                   `gorm:"type:varchar(255);index"`
	DeletedAt        *time.Time               `gorm:"index"`
}

// TableName returns the table name for GORM
func (WorkspaceModel) TableName() string {
	return "workspaces"
}

// ToDomain converts the persistence model to a domain Workspace
func (m *WorkspaceModel) ToDomain() *identity.Workspace {
	w := &identity.Workspace{
		Name:             m.Name,
		Slug:             m.Slug,
		Status:           m.Status,
		PlanID:           m.PlanID,
		StripeCustomerID: m.StripeCustomerID,
		DeletedAt:        m.DeletedAt,
	}
	m.PopulateAggregateRoot(&w.BaseAggregateRoot)
	return w
}

// FromDomain populates the persistence model from a domain Workspace
func (m *WorkspaceModel) FromDomain(w *identity.Workspace) {
	m.FromDomainAggregateRoot(w.BaseAggregateRoot)
	m.Name = w.Name
	m.Slug = w.Slug
	m.Status = w.Status
	m.PlanID = w.PlanID
	m.StripeCustomerID = w.StripeCustomerID
	m.DeletedAt = w.DeletedAt
}

// WorkspaceModelFromDomain creates a new persistence model from a domain Workspace
func WorkspaceModelFromDomain(w *identity.Workspace) *WorkspaceModel {
	m := &WorkspaceModel{}
	m.FromDomain(w)
	return m
}

// AuthTokenModel is the persistence model for single-use auth tokens.
type AuthTokenModel struct {
	BaseModel
	UserID    uuid.UUID                 `gorm:"type:uuid;not null;index"`
	Token     string                    `gorm:"type:varchar(128);not null;uniqueIndex"`
	Purpose   identity.AuthTokenPurpose `gorm:"type:varchar(30);not null"`
	ExpiresAt time.Time                 `gorm:"not null;index"`
	UsedAt    *time.Time
}

// TableName returns the table name for GORM
func (AuthTokenModel) TableName() string {
	return "auth_tokens"
}

// ToDomain converts the persistence model to a domain AuthToken
func (m *AuthTokenModel) ToDomain() *identity.AuthToken {
	return &identity.AuthToken{
		BaseEntity: m.BaseModel.ToDomain(),
		UserID:     m.UserID,
		Token:      m.Token,
		Purpose:    m.Purpose,
		ExpiresAt:  m.ExpiresAt,
		UsedAt:     m.UsedAt,
	}
}

// FromDomain populates the persistence model from a domain AuthToken
func (m *AuthTokenModel) FromDomain(t *identity.AuthToken) {
	m.FromDomainBaseEntity(t.BaseEntity)
	m.UserID = t.UserID
	m.Token = t.Token
	m.Purpose = t.Purpose
	m.ExpiresAt = t.ExpiresAt
	m.UsedAt = t.UsedAt
}

// AuthTokenModelFromDomain creates a new persistence model from a domain AuthToken
func AuthTokenModelFromDomain(t *identity.AuthToken) *AuthTokenModel {
	m := &AuthTokenModel{}
	m.FromDomain(t)
	return m
}
