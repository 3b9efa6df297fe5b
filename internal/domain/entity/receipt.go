package entity

import "github.com/shopspring/decimal"

// ReceiptHeader holds the business header printed at the top of a receipt.
type ReceiptHeader struct {
	BusinessName string `json:"business_name"`
	Address      string `json:"address,omitempty"`
	Phone        string `json:"phone,omitempty"`
}

// ReceiptItem represents a single line item on a receipt.
type ReceiptItem struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Rate        decimal.Decimal `json:"rate"`
	Amount      decimal.Decimal `json:"amount"`
}

// Receipt is a printable view of a quotation or invoice, composed at print
// time. It is not stored.
type Receipt struct {
	Header        ReceiptHeader   `json:"header"`
	Title         string          `json:"title"`
	Number        string          `json:"number"`
	Date          string          `json:"date"`
	DueDate       string          `json:"due_date,omitempty"`
	Client        string          `json:"client,omitempty"`
	PaymentStatus string          `json:"payment_status,omitempty"`
	Items         []ReceiptItem   `json:"items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Discount      decimal.Decimal `json:"discount"`
	Tax           decimal.Decimal `json:"tax"`
	Total         decimal.Decimal `json:"total"`
	Paid          decimal.Decimal `json:"paid"`
	Balance       decimal.Decimal `json:"balance"`
}
