package entity

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/sangkips/bizdesk-api/internal/domain/enum"
)

// Invoice is a bill issued to a client. Its payment history and payment
// status history are append-only.
type Invoice struct {
	Base
	InvoiceNumber        string             `gorm:"size:50;index" json:"invoice_number"`
	ClientID             string             `gorm:"size:64;index" json:"client_id"`
	ClientName           string             `gorm:"size:255" json:"client_name,omitempty"`
	QuotationID          string             `gorm:"size:64;index" json:"quotation_id,omitempty"`
	Date                 time.Time          `gorm:"type:date;not null" json:"date"`
	DueDate              time.Time          `gorm:"type:date;not null" json:"due_date"`
	Pricing              `gorm:"embedded"`
	Notes                string             `gorm:"type:text" json:"notes,omitempty"`
	PaymentStatus        enum.PaymentStatus `gorm:"default:0;index" json:"payment_status"`
	PaymentDate          *time.Time         `gorm:"type:date" json:"payment_date,omitempty"`
	TotalPaid            decimal.Decimal    `gorm:"type:numeric;default:0" json:"total_paid"`
	PaymentHistory       []PaymentRecord    `gorm:"serializer:json;type:jsonb" json:"payment_history"`
	PaymentStatusHistory []StatusChange     `gorm:"serializer:json;type:jsonb" json:"payment_status_history"`
	CreatedBy            string             `gorm:"size:64" json:"created_by,omitempty"`
}

// TableName returns the table name for the Invoice model
func (Invoice) TableName() string {
	return "invoices"
}

// PaymentRecord is one payment received against an invoice.
type PaymentRecord struct {
	Date       time.Time       `json:"date"`
	Amount     decimal.Decimal `json:"amount"`
	Method     string          `json:"method"`
	Notes      string          `json:"notes,omitempty"`
	RecordedBy string          `json:"recorded_by"`
}

// StatusChange is one entry of the payment status audit trail.
type StatusChange struct {
	Date           time.Time          `json:"date"`
	PreviousStatus enum.PaymentStatus `json:"previous_status"`
	NewStatus      enum.PaymentStatus `json:"new_status"`
	ChangedBy      string             `json:"changed_by"`
	Notes          string             `json:"notes,omitempty"`
}

// Balance is what is still owed on the invoice; never negative. A Paid
// invoice owes nothing, including one marked paid without payment records.
func (i Invoice) Balance() decimal.Decimal {
	if i.PaymentStatus == enum.PaymentStatusPaid {
		return decimal.Zero
	}
	owed := i.Total.Sub(i.TotalPaid)
	if owed.IsNegative() {
		return decimal.Zero
	}
	return owed
}

// Clone returns a deep copy so callers can derive a new invoice value
// without touching the original's slices.
func (i Invoice) Clone() Invoice {
	out := i
	out.Pricing = i.Pricing.Clone()
	if i.PaymentHistory != nil {
		out.PaymentHistory = make([]PaymentRecord, len(i.PaymentHistory))
		copy(out.PaymentHistory, i.PaymentHistory)
	}
	if i.PaymentStatusHistory != nil {
		out.PaymentStatusHistory = make([]StatusChange, len(i.PaymentStatusHistory))
		copy(out.PaymentStatusHistory, i.PaymentStatusHistory)
	}
	if i.PaymentDate != nil {
		d := *i.PaymentDate
		out.PaymentDate = &d
	}
	return out
}
