package request

import "github.com/sangkips/bizdesk-api/internal/domain/enum"

// CreateLeadRequest represents a lead creation request
type CreateLeadRequest struct {
	CompanyName       string            `json:"company_name" binding:"required,max=255"`
	ContactPersonName string            `json:"contact_person_name" binding:"max=255"`
	BusinessType      string            `json:"business_type" binding:"max=100"`
	Email             string            `json:"email" binding:"omitempty,max=255"`
	PhoneNumber       string            `json:"phone_number" binding:"omitempty,max=32"`
	Address           string            `json:"address"`
	Progress          enum.LeadProgress `json:"progress"`
	Notes             string            `json:"notes"`
	HandledBy         string            `json:"handled_by" binding:"max=255"`
}

// UpdateLeadRequest represents a lead update request. Absent fields are
// left unchanged.
type UpdateLeadRequest struct {
	CompanyName       *string            `json:"company_name" binding:"omitempty,max=255"`
	ContactPersonName *string            `json:"contact_person_name" binding:"omitempty,max=255"`
	BusinessType      *string            `json:"business_type" binding:"omitempty,max=100"`
	Email             *string            `json:"email" binding:"omitempty,max=255"`
	PhoneNumber       *string            `json:"phone_number" binding:"omitempty,max=32"`
	Address           *string            `json:"address"`
	Progress          *enum.LeadProgress `json:"progress"`
	Notes             *string            `json:"notes"`
	HandledBy         *string            `json:"handled_by" binding:"omitempty,max=255"`
}

// CheckDuplicateRequest asks whether a lead with this contact exists.
type CheckDuplicateRequest struct {
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	ExcludeID   string `json:"exclude_id"`
}

// CreateClientRequest represents a client creation request
type CreateClientRequest struct {
	CompanyName       string            `json:"company_name" binding:"required,max=255"`
	ContactPersonName string            `json:"contact_person_name" binding:"max=255"`
	BusinessType      string            `json:"business_type" binding:"max=100"`
	Email             string            `json:"email" binding:"omitempty,max=255"`
	PhoneNumber       string            `json:"phone_number" binding:"omitempty,max=32"`
	Address           string            `json:"address"`
	Notes             string            `json:"notes"`
	HandledBy         string            `json:"handled_by" binding:"max=255"`
	Status            enum.ClientStatus `json:"status"`
}

// UpdateClientRequest represents a client update request
type UpdateClientRequest struct {
	CompanyName       *string            `json:"company_name" binding:"omitempty,max=255"`
	ContactPersonName *string            `json:"contact_person_name" binding:"omitempty,max=255"`
	BusinessType      *string            `json:"business_type" binding:"omitempty,max=100"`
	Email             *string            `json:"email" binding:"omitempty,max=255"`
	PhoneNumber       *string            `json:"phone_number" binding:"omitempty,max=32"`
	Address           *string            `json:"address"`
	Notes             *string            `json:"notes"`
	HandledBy         *string            `json:"handled_by" binding:"omitempty,max=255"`
	Status            *enum.ClientStatus `json:"status"`
}
