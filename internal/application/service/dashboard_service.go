package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sangkips/bizdesk-api/internal/domain/billing"
	"github.com/sangkips/bizdesk-api/internal/domain/enum"
	"github.com/sangkips/bizdesk-api/internal/domain/payment"
	"github.com/sangkips/bizdesk-api/internal/domain/repository"
)

// DashboardService provides dashboard statistics
type DashboardService struct {
	clock
	leadRepo      repository.LeadRepository
	clientRepo    repository.ClientRepository
	quotationRepo repository.QuotationRepository
	invoiceRepo   repository.InvoiceRepository
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	leadRepo repository.LeadRepository,
	clientRepo repository.ClientRepository,
	quotationRepo repository.QuotationRepository,
	invoiceRepo repository.InvoiceRepository,
) *DashboardService {
	return &DashboardService{
		leadRepo:      leadRepo,
		clientRepo:    clientRepo,
		quotationRepo: quotationRepo,
		invoiceRepo:   invoiceRepo,
	}
}

// WithClock replaces the clock used to bucket payments by day.
func (s *DashboardService) WithClock(now func() time.Time) *DashboardService {
	s.now = now
	return s
}

// DashboardStats represents dashboard statistics
type DashboardStats struct {
	TotalLeads       int                `json:"total_leads"`
	LeadsByProgress  map[string]int     `json:"leads_by_progress"`
	TotalClients     int                `json:"total_clients"`
	ActiveClients    int                `json:"active_clients"`
	OpenQuotations   int                `json:"open_quotations"`
	OpenQuoteValue   decimal.Decimal    `json:"open_quote_value"`
	TotalInvoices    int                `json:"total_invoices"`
	InvoicesByStatus map[string]int     `json:"invoices_by_status"`
	Outstanding      decimal.Decimal    `json:"outstanding"`
	OverdueCount     int                `json:"overdue_count"`
	OverdueAmount    decimal.Decimal    `json:"overdue_amount"`
	PaidTotal        decimal.Decimal    `json:"paid_total"`
	MonthlyReceived  decimal.Decimal    `json:"monthly_received"`
	DailyPayments    []DailyPaymentItem `json:"daily_payments"`
}

// DailyPaymentItem is the amount received on one day
type DailyPaymentItem struct {
	Date   string          `json:"date"`
	Amount decimal.Decimal `json:"amount"`
}

// GetDashboardStats returns dashboard statistics
func (s *DashboardService) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{
		LeadsByProgress:  map[string]int{},
		InvoicesByStatus: map[string]int{},
		OpenQuoteValue:   decimal.Zero,
		Outstanding:      decimal.Zero,
		OverdueAmount:    decimal.Zero,
		PaidTotal:        decimal.Zero,
		MonthlyReceived:  decimal.Zero,
	}

	leads, err := s.leadRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	stats.TotalLeads = len(leads)
	for _, p := range enum.LeadProgresses() {
		stats.LeadsByProgress[p.String()] = 0
	}
	for _, l := range leads {
		stats.LeadsByProgress[l.Progress.String()]++
	}

	clients, err := s.clientRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	stats.TotalClients = len(clients)
	for _, c := range clients {
		if c.Status == enum.ClientStatusActive {
			stats.ActiveClients++
		}
	}

	quotations, err := s.quotationRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, q := range quotations {
		if q.Status == enum.QuotationStatusDraft || q.Status == enum.QuotationStatusSent {
			stats.OpenQuotations++
			stats.OpenQuoteValue = stats.OpenQuoteValue.Add(q.Total)
		}
	}

	invoices, err := s.invoiceRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	now := s.timeNow()
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	today := billing.DateOf(now)
	daily := make(map[string]decimal.Decimal, 7)

	stats.TotalInvoices = len(invoices)
	for _, p := range enum.PaymentStatuses() {
		stats.InvoicesByStatus[p.String()] = 0
	}
	for _, inv := range invoices {
		stats.InvoicesByStatus[inv.PaymentStatus.String()]++
		stats.PaidTotal = stats.PaidTotal.Add(inv.TotalPaid)
		stats.Outstanding = stats.Outstanding.Add(inv.Balance())

		if inv.PaymentStatus == enum.PaymentStatusOverdue || payment.IsPastDue(inv, now) {
			stats.OverdueCount++
			stats.OverdueAmount = stats.OverdueAmount.Add(inv.Balance())
		}

		for _, p := range inv.PaymentHistory {
			if !p.Date.Before(startOfMonth) {
				stats.MonthlyReceived = stats.MonthlyReceived.Add(p.Amount)
			}
			day := p.Date.In(now.Location()).Format("2006-01-02")
			daily[day] = daily[day].Add(p.Amount)
		}
	}

	// Payments received over the last 7 days
	stats.DailyPayments = make([]DailyPaymentItem, 0, 7)
	for i := 6; i >= 0; i-- {
		date := today.AddDate(0, 0, -i)
		stats.DailyPayments = append(stats.DailyPayments, DailyPaymentItem{
			Date:   date.Format("Jan 02"),
			Amount: daily[date.Format("2006-01-02")],
		})
	}

	return stats, nil
}
