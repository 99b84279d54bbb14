package mail

import (
	"strings"
	"time"

	"github.com/mailriver/backend/internal/domain/shared"
	"github.com/mailriver/backend/internal/domain/shared/valueobject"
)

// OfficeLocation is a physical facility that receives mail on behalf of
// mailboxes and originates forwarded shipments.
type OfficeLocation struct {
	shared.BaseAggregateRoot
	Code      string
	Name      string
	Address   valueobject.Address
	Active    bool
	DeletedAt *time.Time
}

// NewOfficeLocation creates a new active office location
func NewOfficeLocation(code, name string, address valueobject.Address) (*OfficeLocation, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	name = strings.TrimSpace(name)
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Office location code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Office location name cannot be empty")
	}

	return &OfficeLocation{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              name,
		Address:           address,
		Active:            true,
	}, nil
}

// Deactivate stops the location from accepting new mailboxes
func (l *OfficeLocation) Deactivate() {
	l.Active = false
	l.UpdatedAt = time.Now()
}

// Activate re-enables the location
func (l *OfficeLocation) Activate() {
	l.Active = true
	l.UpdatedAt = time.Now()
}

// SoftDelete marks the location as deleted
func (l *OfficeLocation) SoftDelete() error {
	if l.DeletedAt != nil {
		return shared.NewDomainError("ALREADY_DELETED", "Office location is already deleted")
	}
	now := time.Now()
	l.DeletedAt = &now
	l.Active = false
	l.UpdatedAt = now
	return nil
}
