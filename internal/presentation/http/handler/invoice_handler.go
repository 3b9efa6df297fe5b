package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/sangkips/bizdesk-api/internal/application/service"
	"github.com/sangkips/bizdesk-api/internal/domain/enum"
	"github.com/sangkips/bizdesk-api/internal/domain/payment"
	"github.com/sangkips/bizdesk-api/internal/presentation/http/dto/request"
	"github.com/sangkips/bizdesk-api/internal/presentation/http/dto/response"
	"github.com/sangkips/bizdesk-api/pkg/apperror"
)

// InvoiceHandler handles invoice-related HTTP requests
type InvoiceHandler struct {
	invoiceService *service.InvoiceService
	exportService  *service.ExportService
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(invoiceService *service.InvoiceService, exportService *service.ExportService) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
		exportService:  exportService,
	}
}

// listInput reads the invoice filters shared by List and Export.
func listInput(c *gin.Context) (*service.ListInvoicesInput, bool) {
	input := &service.ListInvoicesInput{
		Pagination: paginationFrom(c),
		Search:     c.Query("search"),
		ClientID:   c.Query("client_id"),
	}
	if s := c.Query("payment_status"); s != "" {
		status, err := enum.ParsePaymentStatus(s)
		if err != nil {
			response.BadRequest(c, "Invalid payment status filter")
			return nil, false
		}
		input.PaymentStatus = &status
	}
	return input, true
}

// List handles listing invoices
// @Summary List Invoices
// @Tags invoices
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page number"
// @Param per_page query int false "Items per page"
// @Param search query string false "Search term"
// @Param payment_status query string false "Payment status filter"
// @Param client_id query string false "Client filter"
// @Success 200 {object} response.APIResponse
// @Router /invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	input, ok := listInput(c)
	if !ok {
		return
	}

	result, err := h.invoiceService.ListInvoices(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Invoices retrieved successfully", result)
}

// Get handles getting a single invoice
func (h *InvoiceHandler) Get(c *gin.Context) {
	invoice, err := h.invoiceService.GetInvoice(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Invoice retrieved successfully", invoice)
}

// Create handles creating an invoice
func (h *InvoiceHandler) Create(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req request.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	input := &service.CreateInvoiceInput{
		ClientID: req.ClientID,
		Pricing:  pricingInput(req.PricingRequest),
		Notes:    req.Notes,
	}
	date, err := parseDate("date", req.Date)
	if err != nil {
		response.Error(c, err)
		return
	}
	if date != nil {
		input.Date = *date
	}
	if input.DueDate, err = parseDate("due_date", req.DueDate); err != nil {
		response.Error(c, err)
		return
	}

	invoice, err := h.invoiceService.CreateInvoice(c.Request.Context(), actor, input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Invoice created successfully", invoice)
}

// Update handles updating an invoice
func (h *InvoiceHandler) Update(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req request.UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	ctx := c.Request.Context()
	id := c.Param("id")
	current, err := h.invoiceService.GetInvoice(ctx, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	input := &service.UpdateInvoiceInput{
		Notes:   req.Notes,
		Pricing: pricingPatch(current.Pricing, req.Items, req.TaxRate, req.DiscountValue, req.DiscountType),
	}
	if req.DueDate != nil {
		if input.DueDate, err = parseDate("due_date", *req.DueDate); err != nil {
			response.Error(c, err)
			return
		}
	}

	invoice, err := h.invoiceService.UpdateInvoice(ctx, actor, id, input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Invoice updated successfully", invoice)
}

// ChangePaymentStatus sets an invoice's payment status by hand
// @Summary Change Payment Status
// @Description Non-administrators are held to the transition table and may not
// @Description change the status once payments are recorded.
// @Tags invoices
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Invoice ID"
// @Param request body request.ChangePaymentStatusRequest true "New status"
// @Success 200 {object} response.APIResponse
// @Failure 409 {object} response.APIResponse
// @Router /invoices/{id}/payment-status [put]
func (h *InvoiceHandler) ChangePaymentStatus(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req request.ChangePaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	if req.Status == nil {
		response.Error(c, apperror.NewFieldError("payment_status", "payment_status is required"))
		return
	}

	invoice, err := h.invoiceService.ChangePaymentStatus(c.Request.Context(), actor, c.Param("id"), *req.Status, req.Notes)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Payment status updated successfully", invoice)
}

// RecordPayment records a payment against an invoice
// @Summary Record Payment
// @Description Administrators only. The status is derived from the total paid.
// @Tags invoices
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Invoice ID"
// @Param Idempotency-Key header string true "Idempotency key"
// @Param request body request.RecordPaymentRequest true "Payment"
// @Success 201 {object} response.APIResponse
// @Router /invoices/{id}/payments [post]
func (h *InvoiceHandler) RecordPayment(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req request.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	invoice, err := h.invoiceService.RecordPayment(c.Request.Context(), actor, c.Param("id"), payment.PaymentInput{
		Amount: req.Amount,
		Method: req.Method,
		Notes:  req.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Payment recorded successfully", invoice)
}

// AllowedStatuses lists the statuses the current user may move an invoice to.
func (h *InvoiceHandler) AllowedStatuses(c *gin.Context) {
	invoice, err := h.invoiceService.GetInvoice(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	allowed := enum.PaymentStatuses()
	switch {
	case IsPrivileged(c):
	case len(invoice.PaymentHistory) > 0:
		allowed = nil
	default:
		allowed = payment.AllowedTargets(invoice.PaymentStatus)
	}

	response.OK(c, "Allowed statuses retrieved successfully", gin.H{
		"current": invoice.PaymentStatus,
		"allowed": allowed,
	})
}

// Delete handles deleting an invoice
func (h *InvoiceHandler) Delete(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	if err := h.invoiceService.DeleteInvoice(c.Request.Context(), actor, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// PDF downloads an invoice as a PDF
func (h *InvoiceHandler) PDF(c *gin.Context) {
	file, err := h.exportService.InvoicePDF(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.File(c, file.Name, file.ContentType, file.Data)
}

// Export downloads the filtered invoice register as a spreadsheet
func (h *InvoiceHandler) Export(c *gin.Context) {
	input, ok := listInput(c)
	if !ok {
		return
	}

	file, err := h.exportService.InvoiceRegister(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.File(c, file.Name, file.ContentType, file.Data)
}
