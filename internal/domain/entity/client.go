package entity

import "github.com/sangkips/bizdesk-api/internal/domain/enum"

// Client represents a customer account, created directly or from a lead
type Client struct {
	Base
	CompanyName       string            `gorm:"size:255;not null" json:"company_name"`
	ContactPersonName string            `gorm:"size:255" json:"contact_person_name"`
	BusinessType      string            `gorm:"size:100" json:"business_type"`
	Email             string            `gorm:"size:255" json:"email,omitempty"`
	PhoneNumber       string            `gorm:"size:50" json:"phone_number,omitempty"`
	Address           string            `gorm:"type:text" json:"address,omitempty"`
	Notes             string            `gorm:"type:text" json:"notes,omitempty"`
	HandledBy         string            `gorm:"size:255" json:"handled_by,omitempty"`
	Status            enum.ClientStatus `gorm:"default:0" json:"status"`
	LeadID            string            `gorm:"size:64;index" json:"lead_id,omitempty"`
	CreatedBy         string            `gorm:"size:64" json:"created_by,omitempty"`
}

// TableName returns the table name for the Client model
func (Client) TableName() string {
	return "clients"
}
