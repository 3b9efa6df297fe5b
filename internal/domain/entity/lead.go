package entity

import "github.com/sangkips/bizdesk-api/internal/domain/enum"

// Lead is a prospective client being worked by the sales team.
//
// ContactInfo is the single free-form contact field older records used
// before Email and PhoneNumber were split out. It is still read by the
// duplicate check until the record has been standardized.
type Lead struct {
	Base
	CompanyName       string            `gorm:"size:255;not null" json:"company_name"`
	ContactPersonName string            `gorm:"size:255" json:"contact_person_name"`
	BusinessType      string            `gorm:"size:100" json:"business_type"`
	Email             string            `gorm:"size:255;index" json:"email,omitempty"`
	PhoneNumber       string            `gorm:"size:50;index" json:"phone_number,omitempty"`
	ContactInfo       string            `gorm:"size:255" json:"contact_info,omitempty"`
	Address           string            `gorm:"type:text" json:"address,omitempty"`
	Progress          enum.LeadProgress `gorm:"default:0;index" json:"progress"`
	Notes             string            `gorm:"type:text" json:"notes,omitempty"`
	HandledBy         string            `gorm:"size:255" json:"handled_by,omitempty"`
	CreatedBy         string            `gorm:"size:64" json:"created_by,omitempty"`
}

// TableName returns the table name for the Lead model
func (Lead) TableName() string {
	return "leads"
}

// DisplayName is the label used when this lead is reported as a duplicate.
func (l Lead) DisplayName() string {
	if l.CompanyName != "" {
		return l.CompanyName
	}
	if l.ContactPersonName != "" {
		return l.ContactPersonName
	}
	return l.ID
}
