package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/mailriver/backend/internal/domain/mail"
	"github.com/mailriver/backend/internal/domain/shared/valueobject"
)

// AddressColumns embeds a postal address as flat columns. Shared by every
// model that persists a valueobject.Address.
type AddressColumns struct {
	AddrName    string `gorm:"column:addr_name;type:varchar(200);not null"`
	AddrCompany string `gorm:"column:addr_company;type:varchar(200)"`
	AddrStreet1 string `gorm:"column:addr_street1;type:varchar(255);not null"`
	AddrStreet2 string `gorm:"column:addr_street2;type:varchar(255)"`
	AddrCity    string `gorm:"column:addr_city;type:varchar(100);not null"`
	AddrState   string `gorm:"column:addr_state;type:varchar(100)"`
	AddrZip     string `gorm:"column:addr_zip;type:varchar(20)"`
	AddrCountry string `gorm:"column:addr_country;type:varchar(10);not null;default:'US'"`
	AddrPhone   string `gorm:"column:addr_phone;type:varchar(30)"`
}

// ToDomain converts the columns to a domain Address
func (a *AddressColumns) ToDomain() valueobject.Address {
	return valueobject.ReconstituteAddress(
		a.AddrName, a.AddrCompany,
		a.AddrStreet1, a.AddrStreet2,
		a.AddrCity, a.AddrState, a.AddrZip, a.AddrCountry,
		a.AddrPhone,
	)
}

// FromDomain populates the columns from a domain Address
func (a *AddressColumns) FromDomain(addr valueobject.Address) {
	a.AddrName = addr.Name()
	a.AddrCompany = addr.Company()
	a.AddrStreet1 = addr.Street1()
	a.AddrStreet2 = addr.Street2()
	a.AddrCity = addr.City()
	a.AddrState = addr.State()
	a.AddrZip = addr.Zip()
	a.AddrCountry = addr.Country()
	a.AddrPhone = addr.Phone()
}

// MailItemModel is the persistence model for the MailItem aggregate.
type MailItemModel struct {
	WorkspaceAggregateModel
	MailboxID        uuid.UUID `gorm:"type:uuid;not null;index"`
	OfficeLocationID uuid.UUID `gorm:"type:uuid;not null;index"`
	SenderName       string    `gorm:"type:varchar(200)"`
	SenderAddress    string    `gorm:"type:text"`
	Description      string    `gorm:"type:text"`
	Length           *float64  `gorm:"type:numeric(10,2)"`
	Width            *float64  `gorm:"type:numeric(10,2)"`
	Height           *float64  `gorm:"type:numeric(10,2)"`
	Weight           *float64  `gorm:"type:numeric(10,2)"`
	IsForwarded      bool      `gorm:"not null;default:false"`
	IsShredded       bool      `gorm:"not null;default:false"`
	IsJunk           bool      `gorm:"not null;default:false"`
	IsScanned        bool      `gorm:"not null;default:false"`
	IsHeld           bool      `gorm:"not null;default:false"`
	ScanObjectKey    string    `gorm:"type:varchar(512)"`
	ReceivedAt       time.Time `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (MailItemModel) TableName() string {
	return "mail_items"
}

// ToDomain converts the persistence model to a domain MailItem
func (m *MailItemModel) ToDomain() *mail.MailItem {
	item := &mail.MailItem{
		MailboxID:        m.MailboxID,
		OfficeLocationID: m.OfficeLocationID,
		SenderName:       m.SenderName,
		SenderAddress:    m.SenderAddress,
		Description:      m.Description,
		Dimensions: mail.Dimensions{
			Length: m.Length,
			Width:  m.Width,
			Height: m.Height,
			Weight: m.Weight,
		},
		IsForwarded:   m.IsForwarded,
		IsShredded:    m.IsShredded,
		IsJunk:        m.IsJunk,
		IsScanned:     m.IsScanned,
		IsHeld:        m.IsHeld,
		ScanObjectKey: m.ScanObjectKey,
		ReceivedAt:    m.ReceivedAt,
	}
	m.PopulateWorkspaceAggregateRoot(&item.WorkspaceAggregateRoot)
	return item
}

// FromDomain populates the persistence model from a domain MailItem
func (m *MailItemModel) FromDomain(item *mail.MailItem) {
	m.FromDomainWorkspaceAggregateRoot(item.WorkspaceAggregateRoot)
	m.MailboxID = item.MailboxID
	m.OfficeLocationID = item.OfficeLocationID
	m.SenderName = item.SenderName
	m.SenderAddress = item.SenderAddress
	m.Description = item.Description
	m.Length = item.Dimensions.Length
	m.Width = item.Dimensions.Width
	m.Height = item.Dimensions.Height
	m.Weight = item.Dimensions.Weight
	m.IsForwarded = item.IsForwarded
	m.IsShredded = item.IsShredded
	m.IsJunk = item.IsJunk
	m.IsScanned = item.IsScanned
	m.IsHeld = item.IsHeld
	m.ScanObjectKey = item.ScanObjectKey
	m.ReceivedAt = item.ReceivedAt
}

// MailItemModelFromDomain creates a new persistence model from a domain MailItem
func MailItemModelFromDomain(item *mail.MailItem) *MailItemModel {
	m := &MailItemModel{}
	m.FromDomain(item)
	return m
}

// MailboxModel is the persistence model for the Mailbox aggregate.
// PMB numbers are unique per office location.
type MailboxModel struct {
	WorkspaceAggregateModel
	OfficeLocationID uuid.UUID          `gorm:"type:uuid;not null;uniqueIndex:idx_mailbox_location_pmb,priority:1"`
	PMBNumber        string             `gorm:"type:varchar(20);not null;uniqueIndex:idx_mailbox_location_pmb,priority:2"`
	Status           mail.MailboxStatus `gorm:"type:varchar(20);not null;default:'ACTIVE'"`
	ClosedAt         *time.Time
}

// TableName returns the table name for GORM
func (MailboxModel) TableName() string {
	return "mailboxes"
}

// ToDomain converts the persistence model to a domain Mailbox
func (m *MailboxModel) ToDomain() *mail.Mailbox {
	box := &mail.Mailbox{
		OfficeLocationID: m.OfficeLocationID,
		PMBNumber:        m.PMBNumber,
		Status:           m.Status,
		ClosedAt:         m.ClosedAt,
	}
	m.PopulateWorkspaceAggregateRoot(&box.WorkspaceAggregateRoot)
	return box
}

// FromDomain populates the persistence model from a domain Mailbox
func (m *MailboxModel) FromDomain(box *mail.Mailbox) {
	m.FromDomainWorkspaceAggregateRoot(box.WorkspaceAggregateRoot)
	m.OfficeLocationID = box.OfficeLocationID
	m.PMBNumber = box.PMBNumber
	m.Status = box.Status
	m.ClosedAt = box.ClosedAt
}

// MailboxModelFromDomain creates a new persistence model from a domain Mailbox
func MailboxModelFromDomain(box *mail.Mailbox) *MailboxModel {
	m := &MailboxModel{}
	m.FromDomain(box)
	return m
}

// OfficeLocationModel is the persistence model for the OfficeLocation aggregate.
type OfficeLocationModel struct {
	AggregateModel
	Code string `gorm:"type:varchar(20);not null;uniqueIndex"`
	Name string `gorm:"type:varchar(200);not null"`
	AddressColumns
	Active    bool       `gorm:"not null;default:true"`
	DeletedAt *time.Time `gorm:"index"`
}

// TableName returns the table name for GORM
func (OfficeLocationModel) TableName() string {
	return "office_locations"
}

// ToDomain converts the persistence model to a domain OfficeLocation
func (m *OfficeLocationModel) ToDomain() *mail.OfficeLocation {
	loc := &mail.OfficeLocation{
		Code:      m.Code,
		Name:      m.Name,
		Address:   m.AddressColumns.ToDomain(),
		Active:    m.Active,
		DeletedAt: m.DeletedAt,
	}
	m.PopulateAggregateRoot(&loc.BaseAggregateRoot)
	return loc
}

// FromDomain populates the persistence model from a domain OfficeLocation
func (m *OfficeLocationModel) FromDomain(loc *mail.OfficeLocation) {
	m.FromDomainAggregateRoot(loc.BaseAggregateRoot)
	m.Code = loc.Code
	m.Name = loc.Name
	m.AddressColumns.FromDomain(loc.Address)
	m.Active = loc.Active
	m.DeletedAt = loc.DeletedAt
}

// OfficeLocationModelFromDomain creates a new persistence model from a domain OfficeLocation
func OfficeLocationModelFromDomain(loc *mail.OfficeLocation) *OfficeLocationModel {
	m := &OfficeLocationModel{}
	m.FromDomain(loc)
	return m
}

// DeliveryAddressModel is the persistence model for the DeliveryAddress aggregate.
type DeliveryAddressModel struct {
	WorkspaceAggregateModel
	Label string `gorm:"type:varchar(100)"`
	AddressColumns
	IsDefault bool       `gorm:"not null;default:false"`
	DeletedAt *time.Time `gorm:"index"`
}

// TableName returns the table name for GORM
func (DeliveryAddressModel) TableName() string {
	return "delivery_addresses"
}

// ToDomain converts the persistence model to a domain DeliveryAddress
func (m *DeliveryAddressModel) ToDomain() *mail.DeliveryAddress {
	addr := &mail.DeliveryAddress{
		Label:     m.Label,
		Address:   m.AddressColumns.ToDomain(),
		IsDefault: m.IsDefault,
		DeletedAt: m.DeletedAt,
	}
	m.PopulateWorkspaceAggregateRoot(&addr.WorkspaceAggregateRoot)
	return addr
}

// FromDomain populates the persistence model from a domain DeliveryAddress
func (m *DeliveryAddressModel) FromDomain(addr *mail.DeliveryAddress) {
	m.FromDomainWorkspaceAggregateRoot(addr.WorkspaceAggregateRoot)
	m.Label = addr.Label
	m.AddressColumns.FromDomain(addr.Address)
	m.IsDefault = addr.IsDefault
	m.DeletedAt = addr.DeletedAt
}

// DeliveryAddressModelFromDomain creates a new persistence model from a domain DeliveryAddress
func DeliveryAddressModelFromDomain(addr *mail.DeliveryAddress) *DeliveryAddressModel {
	m := &DeliveryAddressModel{}
	m.FromDomain(addr)
	return m
}
