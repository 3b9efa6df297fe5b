package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sangkips/bizdesk-api/internal/domain/entity"
	"github.com/sangkips/bizdesk-api/internal/domain/repository"
	"github.com/sangkips/bizdesk-api/internal/observability/metrics"
	"github.com/sangkips/bizdesk-api/pkg/apperror"
	"github.com/sangkips/bizdesk-api/pkg/printer"
)

// PrinterService handles receipt formatting and thermal printing.
type PrinterService struct {
	printer       printer.Printer
	invoiceRepo   repository.InvoiceRepository
	quotationRepo repository.QuotationRepository
	header        entity.ReceiptHeader
	printerType   string
	width         int
}

// NewPrinterService creates a new printer service.
func NewPrinterService(
	p printer.Printer,
	invoiceRepo repository.InvoiceRepository,
	quotationRepo repository.QuotationRepository,
	header entity.ReceiptHeader,
	printerType string,
) *PrinterService {
	return &PrinterService{
		printer:       p,
		invoiceRepo:   invoiceRepo,
		quotationRepo: quotationRepo,
		header:        header,
		printerType:   printerType,
		width:         printer.Width58mm,
	}
}

// PrinterStatus returns the current printer status information.
type PrinterStatus struct {
	Configured bool   `json:"configured"`
	Connected  bool   `json:"connected"`
	Type       string `json:"type"`
	Error      string `json:"error,omitempty"`
}

// GetStatus returns printer connection status.
func (s *PrinterService) GetStatus(ctx context.Context) *PrinterStatus {
	status := &PrinterStatus{
		Configured: s.printerType != "none" && s.printerType != "",
		Type:       s.printerType,
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := s.printer.Ping(ctx); err != nil {
		if status.Configured {
			status.Error = err.Error()
		}
		return status
	}
	status.Connected = true
	return status
}

// TestPrint sends a test page to the printer. The receipt is returned so a
// caller without a printer can still see what would have been printed.
func (s *PrinterService) TestPrint(ctx context.Context) (*entity.Receipt, error) {
	receipt := &entity.Receipt{
		Header: s.header,
		Title:  "PRINTER TEST",
		Number: "TEST-0001",
		Date:   time.Now().Format("2006-01-02 15:04"),
		Items: []entity.ReceiptItem{
			{Description: "Test service", Quantity: decimal.NewFromInt(1), Rate: decimal.NewFromInt(10), Amount: decimal.NewFromInt(10)},
			{Description: "Second test service", Quantity: decimal.NewFromInt(2), Rate: decimal.NewFromInt(5), Amount: decimal.NewFromInt(10)},
		},
		Subtotal: decimal.NewFromInt(20),
		Total:    decimal.NewFromInt(20),
		Balance:  decimal.NewFromInt(20),
	}
	return receipt, s.print(ctx, receipt, "test page")
}

// PrintInvoiceReceipt prints an invoice with what has been paid on it.
func (s *PrinterService) PrintInvoiceReceipt(ctx context.Context, invoiceID string) (*entity.Receipt, error) {
	invoice, err := s.invoiceRepo.Get(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, apperror.NewNotFoundError("Invoice")
	}

	receipt := InvoiceReceipt(s.header, *invoice)
	return receipt, s.print(ctx, receipt, "invoice "+invoice.InvoiceNumber)
}

// PrintQuotationReceipt prints a quotation.
func (s *PrinterService) PrintQuotationReceipt(ctx context.Context, quotationID string) (*entity.Receipt, error) {
	quotation, err := s.quotationRepo.Get(ctx, quotationID)
	if err != nil {
		return nil, err
	}
	if quotation == nil {
		return nil, apperror.NewNotFoundError("Quotation")
	}

	receipt := QuotationReceipt(s.header, *quotation)
	return receipt, s.print(ctx, receipt, "quotation "+quotation.QuotationNumber)
}

func (s *PrinterService) print(ctx context.Context, receipt *entity.Receipt, what string) error {
	err := s.printer.Print(ctx, FormatReceipt(receipt, s.width))
	metrics.IncReceiptPrinted(err)
	if err != nil {
		log.Printf("Printer error (%s): %v", what, err)
		return fmt.Errorf("failed to print receipt: %w", err)
	}
	return nil
}

// InvoiceReceipt composes the printable view of an invoice.
func InvoiceReceipt(header entity.ReceiptHeader, inv entity.Invoice) *entity.Receipt {
	r := pricedReceipt(header, inv.Pricing)
	r.Title = "INVOICE"
	r.Number = inv.InvoiceNumber
	r.Date = inv.Date.Format("2006-01-02")
	r.DueDate = inv.DueDate.Format("2006-01-02")
	r.Client = inv.ClientName
	r.PaymentStatus = inv.PaymentStatus.String()
	r.Paid = inv.TotalPaid
	r.Balance = inv.Balance()
	return r
}

// QuotationReceipt composes the printable view of a quotation.
func QuotationReceipt(header entity.ReceiptHeader, q entity.Quotation) *entity.Receipt {
	r := pricedReceipt(header, q.Pricing)
	r.Title = "QUOTATION"
	r.Number = q.QuotationNumber
	r.Date = q.Date.Format("2006-01-02")
	if q.ValidUntil != nil {
		r.DueDate = q.ValidUntil.Format("2006-01-02")
	}
	r.Client = q.ClientName
	r.Balance = q.Total
	return r
}

func pricedReceipt(header entity.ReceiptHeader, p entity.Pricing) *entity.Receipt {
	r := &entity.Receipt{
		Header:   header,
		Subtotal: p.Subtotal,
		Discount: p.DiscountAmount,
		Tax:      p.TaxAmount,
		Total:    p.Total,
	}
	for _, item := range p.Items {
		r.Items = append(r.Items, entity.ReceiptItem{
			Description: item.Description,
			Quantity:    item.Quantity,
			Rate:        item.Rate,
			Amount:      item.Amount,
		})
	}
	return r
}

// FormatReceipt converts a Receipt into ESC/POS bytes for paper width
// characters wide.
func FormatReceipt(r *entity.Receipt, width int) []byte {
	doc := printer.NewDocument(width)

	// Header
	doc.Align(printer.AlignCenter).
		Bold(true).
		Size(printer.SizeDouble).
		Line(r.Header.BusinessName).
		Size(printer.SizeNormal).
		Bold(false)
	if r.Header.Address != "" {
		doc.Line(r.Header.Address)
	}
	if r.Header.Phone != "" {
		doc.Line(r.Header.Phone)
	}
	if r.Title != "" {
		doc.Feed(1).Bold(true).Line(r.Title).Bold(false)
	}

	doc.Align(printer.AlignLeft).Rule('-')

	doc.Pair("No:", r.Number).
		Pair("Date:", r.Date)
	if r.DueDate != "" {
		label := "Due:"
		if r.Title == "QUOTATION" {
			label = "Valid until:"
		}
		doc.Pair(label, r.DueDate)
	}
	if r.Client != "" {
		doc.Pair("Client:", r.Client)
	}
	if r.PaymentStatus != "" {
		doc.Pair("Status:", r.PaymentStatus)
	}

	doc.Rule('-')

	for _, item := range r.Items {
		doc.Item(item.Quantity.String(), item.Description, item.Amount.StringFixed(2))
		if !item.Quantity.Equal(decimal.NewFromInt(1)) {
			doc.Linef("@ %s each", item.Rate.StringFixed(2))
		}
	}

	doc.Rule('-')

	doc.Pair("Subtotal:", r.Subtotal.StringFixed(2))
	if r.Discount.IsPositive() {
		doc.Pair("Discount:", "-"+r.Discount.StringFixed(2))
	}
	if r.Tax.IsPositive() {
		doc.Pair("Tax:", r.Tax.StringFixed(2))
	}
	doc.Bold(true).
		Pair("TOTAL:", r.Total.StringFixed(2)).
		Bold(false)
	if r.Paid.IsPositive() {
		doc.Pair("Paid:", r.Paid.StringFixed(2)).
			Pair("Balance:", r.Balance.StringFixed(2))
	}

	doc.Rule('-')

	// Footer
	doc.Align(printer.AlignCenter).
		Feed(1).
		Line("Thank you for your business!").
		Feed(1).
		Align(printer.AlignLeft)

	doc.Feed(3).Cut(true)

	return doc.Bytes()
}
