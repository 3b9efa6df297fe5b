package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"github.com/sangkips/bizdesk-api/internal/domain/entity"
	"github.com/sangkips/bizdesk-api/internal/domain/repository"
	"github.com/sangkips/bizdesk-api/internal/observability/metrics"
	"github.com/sangkips/bizdesk-api/pkg/apperror"
)

// ExportService renders quotations and invoices as files.
type ExportService struct {
	invoices      *InvoiceService
	quotationRepo repository.QuotationRepository
	header        entity.ReceiptHeader
}

// NewExportService creates a new export service
func NewExportService(invoices *InvoiceService, quotationRepo repository.QuotationRepository, header entity.ReceiptHeader) *ExportService {
	return &ExportService{
		invoices:      invoices,
		quotationRepo: quotationRepo,
		header:        header,
	}
}

// ExportedFile is a rendered document ready to be sent to a client.
type ExportedFile struct {
	Name        string
	ContentType string
	Data        []byte
}

const (
	contentTypePDF  = "application/pdf"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// InvoicePDF renders one invoice.
func (s *ExportService) InvoicePDF(ctx context.Context, id string) (*ExportedFile, error) {
	invoice, err := s.invoices.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	data, err := BuildDocumentPDF(InvoiceReceipt(s.header, *invoice))
	metrics.ObserveExport("pdf", err, time.Since(start))
	if err != nil {
		return nil, err
	}
	return &ExportedFile{Name: invoice.InvoiceNumber + ".pdf", ContentType: contentTypePDF, Data: data}, nil
}

// QuotationPDF renders one quotation.
func (s *ExportService) QuotationPDF(ctx context.Context, id string) (*ExportedFile, error) {
	quotation, err := s.quotationRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if quotation == nil {
		return nil, apperror.NewNotFoundError("Quotation")
	}

	start := time.Now()
	data, err := BuildDocumentPDF(QuotationReceipt(s.header, *quotation))
	metrics.ObserveExport("pdf", err, time.Since(start))
	if err != nil {
		return nil, err
	}
	return &ExportedFile{Name: quotation.QuotationNumber + ".pdf", ContentType: contentTypePDF, Data: data}, nil
}

// InvoiceRegister renders every invoice matching filter as a spreadsheet.
func (s *ExportService) InvoiceRegister(ctx context.Context, filter *ListInvoicesInput) (*ExportedFile, error) {
	invoices, err := s.invoices.FilterInvoices(ctx, filter)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	data, err := BuildInvoiceRegisterXLSX(invoices)
	metrics.ObserveExport("xlsx", err, time.Since(start))
	if err != nil {
		return nil, err
	}
	name := fmt.Sprintf("invoices-%s.xlsx", s.invoices.timeNow().Format("20060102"))
	return &ExportedFile{Name: name, ContentType: contentTypeXLSX, Data: data}, nil
}

// BuildDocumentPDF renders a quotation or invoice as an A4 PDF.
func BuildDocumentPDF(r *entity.Receipt) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(r.Title+" "+r.Number, false)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 8, r.Header.BusinessName)
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 10)
	if r.Header.Address != "" {
		pdf.Cell(0, 5, r.Header.Address)
		pdf.Ln(5)
	}
	if r.Header.Phone != "" {
		pdf.Cell(0, 5, r.Header.Phone)
		pdf.Ln(5)
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 8, fmt.Sprintf("%s %s", r.Title, r.Number))
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, "Date: "+r.Date)
	pdf.Ln(5)
	if r.DueDate != "" {
		label := "Due date"
		if r.Title == "QUOTATION" {
			label = "Valid until"
		}
		pdf.Cell(0, 6, fmt.Sprintf("%s: %s", label, r.DueDate))
		pdf.Ln(5)
	}
	if r.Client != "" {
		pdf.Cell(0, 6, "Bill to: "+r.Client)
		pdf.Ln(5)
	}
	if r.PaymentStatus != "" {
		pdf.Cell(0, 6, "Status: "+r.PaymentStatus)
		pdf.Ln(5)
	}
	pdf.Ln(4)

	// Items table
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(95, 7, "Description", "1", 0, "L", false, 0, "")
	pdf.CellFormat(25, 7, "Qty", "1", 0, "R", false, 0, "")
	pdf.CellFormat(30, 7, "Rate", "1", 0, "R", false, 0, "")
	pdf.CellFormat(35, 7, "Amount", "1", 0, "R", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, item := range r.Items {
		pdf.CellFormat(95, 6, item.Description, "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 6, item.Quantity.String(), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, item.Rate.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 6, item.Amount.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.Ln(4)
	total := func(label, value string, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Arial", style, 10)
		pdf.CellFormat(150, 6, label, "", 0, "R", false, 0, "")
		pdf.CellFormat(35, 6, value, "", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}
	total("Subtotal", r.Subtotal.StringFixed(2), false)
	if r.Discount.IsPositive() {
		total("Discount", "-"+r.Discount.StringFixed(2), false)
	}
	if r.Tax.IsPositive() {
		total("Tax", r.Tax.StringFixed(2), false)
	}
	total("Total", r.Total.StringFixed(2), true)
	if r.Paid.IsPositive() {
		total("Paid", r.Paid.StringFixed(2), false)
		total("Balance due", r.Balance.StringFixed(2), true)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var registerColumns = []string{
	"Invoice", "Client", "Date", "Due date", "Status", "Subtotal", "Discount", "Tax", "Total", "Paid", "Balance", "Paid on",
}

// BuildInvoiceRegisterXLSX renders invoices one per row, with a totals row
// underneath.
func BuildInvoiceRegisterXLSX(invoices []entity.Invoice) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "invoices"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	for i, col := range registerColumns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		_ = f.SetCellValue(sheet, cell, col)
	}

	for i, inv := range invoices {
		row := i + 2
		paidOn := ""
		if inv.PaymentDate != nil {
			paidOn = inv.PaymentDate.Format("2006-01-02")
		}
		values := []any{
			inv.InvoiceNumber,
			inv.ClientName,
			inv.Date.Format("2006-01-02"),
			inv.DueDate.Format("2006-01-02"),
			inv.PaymentStatus.String(),
			inv.Subtotal.InexactFloat64(),
			inv.DiscountAmount.InexactFloat64(),
			inv.TaxAmount.InexactFloat64(),
			inv.Total.InexactFloat64(),
			inv.TotalPaid.InexactFloat64(),
			inv.Balance().InexactFloat64(),
			paidOn,
		}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", row), &values); err != nil {
			return nil, err
		}
	}

	if len(invoices) > 0 {
		last := len(invoices) + 1
		totalRow := last + 1
		_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", totalRow), "Total")
		for _, col := range []string{"F", "G", "H", "I", "J", "K"} {
			formula := fmt.Sprintf("SUM(%s2:%s%d)", col, col, last)
			if err := f.SetCellFormula(sheet, fmt.Sprintf("%s%d", col, totalRow), formula); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
