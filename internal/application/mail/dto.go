package mail

import (
	"time"

	"github.com/google/uuid"
)

// IntakeInput logs a physical piece of mail received for a mailbox. The
// office location is derived from the mailbox.
type IntakeInput struct {
	MailboxID     uuid.UUID
	SenderName    string
	SenderAddress string
	Description   string
	Dimensions    *MeasureInput // optional, when measured at intake
}

// MeasureInput records physical dimensions: inches for length, width, and
// height, ounces for weight
type MeasureInput struct {
	Length float64
	Width  float64
	Height float64
	Weight float64
}

// ScanUploadInput asks for a presigned upload slot for a scan image
type ScanUploadInput struct {
	MailItemID  uuid.UUID
	FileName    string
	ContentType string
}

// ScanUploadOutput carries the presigned upload URL and the object key the
// caller must echo back on confirmation
type ScanUploadOutput struct {
	ObjectKey string    `json:"object_key"`
	UploadURL string    `json:"upload_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ScanDownloadOutput carries a presigned link to a stored scan image
type ScanDownloadOutput struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AddressInput carries the postal fields for creating or updating a
// delivery address
type AddressInput struct {
	Label       string
	Name        string
	Company     string
	Street1     string
	Street2     string
	City        string
	State       string
	Zip         string
	Country     string
	Phone       string
	MakeDefault bool
}

// OpenMailboxInput opens a new virtual mailbox at an office location
type OpenMailboxInput struct {
	WorkspaceID      uuid.UUID
	OfficeLocationID uuid.UUID
	PMBNumber        string
}

// LocationInput carries the admin-facing fields for an office location
type LocationInput struct {
	Code    string
	Name    string
	Street1 string
	Street2 string
	City    string
	State   string
	Zip     string
	Country string
	Phone   string
}
