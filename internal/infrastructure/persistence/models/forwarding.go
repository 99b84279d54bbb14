package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/mailriver/backend/internal/domain/forwarding"
)

// ForwardingRequestModel is the persistence model for the ForwardingRequest
// aggregate. The row is written as a PENDING intent before any label
// purchase, so a crash between the two leaves an auditable trail instead of
// an untracked shipment.
type ForwardingRequestModel struct {
	WorkspaceAggregateModel
	MailItemID        uuid.UUID  `gorm:"type:uuid;not null;index"`
	MailboxID         uuid.UUID  `gorm:"type:uuid;not null;index"`
	OfficeLocationID  uuid.UUID  `gorm:"type:uuid;not null;index:idx_forwarding_location_status,priority:1"`
	DeliveryAddressID uuid.UUID  `gorm:"type:uuid;not null"`
	SpeedOptionID     *uuid.UUID `gorm:"type:uuid"`
	PackagingOptionID *uuid.UUID `gorm:"type:uuid"`

	SelectedRateID       string `gorm:"type:varchar(255)"`
	SelectedRateFee      int64  `gorm:"not null;default:0"`
	SelectedRateCurrency string `gorm:"type:varchar(3);not null;default:'USD'"`

	BaseShippingCost int64 `gorm:"not null;default:0"`
	SpeedFee         int64 `gorm:"not null;default:0"`
	PackagingFee     int64 `gorm:"not null;default:0"`
	ServiceFee       int64 `gorm:"not null;default:0"`
	TotalCost        int64 `gorm:"not null;default:0"`

	GatewayShipmentID string         `gorm:"type:varchar(255)"`
	GatewayRateID     string         `gorm:"type:varchar(255)"`
	Carrier           string         `gorm:"type:varchar(50)"`
	Service           string         `gorm:"type:varchar(100)"`
	TrackingCode      string         `gorm:"type:varchar(100);index"`
	LabelURL          string         `gorm:"type:text"`
	RawRateDetails    datatypes.JSON `gorm:"type:jsonb"`

	Status        forwarding.RequestStatus `gorm:"type:varchar(20);not null;default:'PENDING';index:idx_forwarding_location_status,priority:2"`
	PaymentStatus forwarding.PaymentStatus `gorm:"type:varchar(20);not null;default:'PENDING'"`
	Priority      forwarding.Priority      `gorm:"type:varchar(10);not null;default:'NORMAL'"`
	FailureReason string                   `gorm:"type:text"`
	CompletedAt   *time.Time
	CancelledAt   *time.Time
}

// TableName returns the table name for GORM
func (ForwardingRequestModel) TableName() string {
	return "forwarding_requests"
}

// ToDomain converts the persistence model to a domain ForwardingRequest
func (m *ForwardingRequestModel) ToDomain() *forwarding.ForwardingRequest {
	req := &forwarding.ForwardingRequest{
		MailItemID:        m.MailItemID,
		MailboxID:         m.MailboxID,
		OfficeLocationID:  m.OfficeLocationID,
		DeliveryAddressID: m.DeliveryAddressID,
		SpeedOptionID:     m.SpeedOptionID,
		PackagingOptionID: m.PackagingOptionID,
		SelectedRate: forwarding.RateSelection{
			RateID:   m.SelectedRateID,
			Carrier:  m.Carrier,
			Service:  m.Service,
			Fee:      m.SelectedRateFee,
			Currency: m.SelectedRateCurrency,
		},
		Cost: forwarding.CostBreakdown{
			BaseShippingCost: m.BaseShippingCost,
			SpeedFee:         m.SpeedFee,
			PackagingFee:     m.PackagingFee,
			ServiceFee:       m.ServiceFee,
			Total:            m.TotalCost,
		},
		GatewayShipmentID: m.GatewayShipmentID,
		GatewayRateID:     m.GatewayRateID,
		Carrier:           m.Carrier,
		Service:           m.Service,
		TrackingCode:      m.TrackingCode,
		LabelURL:          m.LabelURL,
		RawRateDetails:    []byte(m.RawRateDetails),
		Status:            m.Status,
		PaymentStatus:     m.PaymentStatus,
		Priority:          m.Priority,
		FailureReason:     m.FailureReason,
		CompletedAt:       m.CompletedAt,
		CancelledAt:       m.CancelledAt,
	}
	m.PopulateWorkspaceAggregateRoot(&req.WorkspaceAggregateRoot)
	return req
}

// FromDomain populates the persistence model from a domain ForwardingRequest
func (m *ForwardingRequestModel) FromDomain(req *forwarding.ForwardingRequest) {
	m.FromDomainWorkspaceAggregateRoot(req.WorkspaceAggregateRoot)
	m.MailItemID = req.MailItemID
	m.MailboxID = req.MailboxID
	m.OfficeLocationID = req.OfficeLocationID
	m.DeliveryAddressID = req.DeliveryAddressID
	m.SpeedOptionID = req.SpeedOptionID
	m.PackagingOptionID = req.PackagingOptionID
	m.SelectedRateID = req.SelectedRate.RateID
	m.SelectedRateFee = req.SelectedRate.Fee
	m.SelectedRateCurrency = req.SelectedRate.Currency
	m.BaseShippingCost = req.Cost.BaseShippingCost
	m.SpeedFee = req.Cost.SpeedFee
	m.PackagingFee = req.Cost.PackagingFee
	m.ServiceFee = req.Cost.ServiceFee
	m.TotalCost = req.Cost.Total
	m.GatewayShipmentID = req.GatewayShipmentID
	m.GatewayRateID = req.GatewayRateID
	m.Carrier = req.Carrier
	m.Service = req.Service
	m.TrackingCode = req.TrackingCode
	m.LabelURL = req.LabelURL
	m.RawRateDetails = datatypes.JSON(req.RawRateDetails)
	m.Status = req.Status
	m.PaymentStatus = req.PaymentStatus
	m.Priority = req.Priority
	m.FailureReason = req.FailureReason
	m.CompletedAt = req.CompletedAt
	m.CancelledAt = req.CancelledAt
}

// ForwardingRequestModelFromDomain creates a new persistence model from a domain ForwardingRequest
func ForwardingRequestModelFromDomain(req *forwarding.ForwardingRequest) *ForwardingRequestModel {
	m := &ForwardingRequestModel{}
	m.FromDomain(req)
	return m
}
