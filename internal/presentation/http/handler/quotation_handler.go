package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/sangkips/bizdesk-api/internal/application/service"
	"github.com/sangkips/bizdesk-api/internal/domain/enum"
	"github.com/sangkips/bizdesk-api/internal/presentation/http/dto/request"
	"github.com/sangkips/bizdesk-api/internal/presentation/http/dto/response"
	"github.com/sangkips/bizdesk-api/pkg/apperror"
)

// QuotationHandler handles quotation-related HTTP requests
type QuotationHandler struct {
	quotationService *service.QuotationService
	exportService    *service.ExportService
}

// NewQuotationHandler creates a new quotation handler
func NewQuotationHandler(quotationService *service.QuotationService, exportService *service.ExportService) *QuotationHandler {
	return &QuotationHandler{
		quotationService: quotationService,
		exportService:    exportService,
	}
}

// List handles listing quotations
// @Summary List Quotations
// @Description Get all quotations with pagination and filtering
// @Tags quotations
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page number"
// @Param per_page query int false "Items per page"
// @Param search query string false "Search term"
// @Param status query string false "Status filter"
// @Param client_id query string false "Client filter"
// @Success 200 {object} response.APIResponse
// @Router /quotations [get]
func (h *QuotationHandler) List(c *gin.Context) {
	input := &service.ListQuotationsInput{
		Pagination: paginationFrom(c),
		Search:     c.Query("search"),
		ClientID:   c.Query("client_id"),
	}
	if s := c.Query("status"); s != "" {
		status, err := enum.ParseQuotationStatus(s)
		if err != nil {
			response.BadRequest(c, "Invalid status filter")
			return
		}
		input.Status = &status
	}

	result, err := h.quotationService.ListQuotations(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Quotations retrieved successfully", result)
}

// Get handles getting a single quotation
// @Summary Get Quotation
// @Description Get a quotation by ID
// @Tags quotations
// @Security BearerAuth
// @Produce json
// @Param id path string true "Quotation ID"
// @Success 200 {object} response.APIResponse
// @Router /quotations/{id} [get]
func (h *QuotationHandler) Get(c *gin.Context) {
	quotation, err := h.quotationService.GetQuotation(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Quotation retrieved successfully", quotation)
}

// Create handles creating a quotation
// @Summary Create Quotation
// @Description Create a new quotation. The number and totals are assigned by the server.
// @Tags quotations
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body request.CreateQuotationRequest true "Quotation data"
// @Success 201 {object} response.APIResponse
// @Router /quotations [post]
func (h *QuotationHandler) Create(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req request.CreateQuotationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	input := &service.CreateQuotationInput{
		ClientID: req.ClientID,
		Pricing:  pricingInput(req.PricingRequest),
		Notes:    req.Notes,
		Status:   req.Status,
	}
	date, err := parseDate("date", req.Date)
	if err != nil {
		response.Error(c, err)
		return
	}
	if date != nil {
		input.Date = *date
	}
	if input.ValidUntil, err = parseDate("valid_until", req.ValidUntil); err != nil {
		response.Error(c, err)
		return
	}

	quotation, err := h.quotationService.CreateQuotation(c.Request.Context(), actor, input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Quotation created successfully", quotation)
}

// Update handles updating a quotation
func (h *QuotationHandler) Update(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req request.UpdateQuotationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	ctx := c.Request.Context()
	id := c.Param("id")
	current, err := h.quotationService.GetQuotation(ctx, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	input := &service.UpdateQuotationInput{
		ClientID: req.ClientID,
		Notes:    req.Notes,
		Pricing:  pricingPatch(current.Pricing, req.Items, req.TaxRate, req.DiscountValue, req.DiscountType),
	}
	if req.Date != nil {
		if input.Date, err = parseDate("date", *req.Date); err != nil {
			response.Error(c, err)
			return
		}
	}
	if req.ValidUntil != nil {
		if input.ValidUntil, err = parseDate("valid_until", *req.ValidUntil); err != nil {
			response.Error(c, err)
			return
		}
	}

	quotation, err := h.quotationService.UpdateQuotation(ctx, actor, id, input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Quotation updated successfully", quotation)
}

// UpdateStatus moves a quotation to another status
func (h *QuotationHandler) UpdateStatus(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req request.UpdateQuotationStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	if req.Status == nil {
		response.Error(c, apperror.NewFieldError("status", "status is required"))
		return
	}

	quotation, err := h.quotationService.UpdateQuotationStatus(c.Request.Context(), actor, c.Param("id"), *req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Quotation status updated successfully", quotation)
}

// Delete handles deleting a quotation
// @Summary Delete Quotation
// @Description Delete a quotation. Administrators only.
// @Tags quotations
// @Security BearerAuth
// @Param id path string true "Quotation ID"
// @Success 204
// @Router /quotations/{id} [delete]
func (h *QuotationHandler) Delete(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	if err := h.quotationService.DeleteQuotation(c.Request.Context(), actor, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// Convert creates an invoice from a quotation
// @Summary Convert Quotation
// @Description Create an invoice from a quotation and mark the quotation accepted.
// @Description A 207 response means the invoice exists but the quotation was not updated.
// @Tags quotations
// @Security BearerAuth
// @Produce json
// @Param id path string true "Quotation ID"
// @Param Idempotency-Key header string true "Idempotency key"
// @Success 201 {object} response.APIResponse
// @Success 207 {object} response.APIResponse
// @Router /quotations/{id}/convert [post]
func (h *QuotationHandler) Convert(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	result, err := h.quotationService.ConvertToInvoice(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	if result.Outcome.Partial() {
		response.Partial(c, "Invoice created but the quotation could not be updated", result)
		return
	}
	response.Created(c, "Quotation converted to invoice successfully", result)
}

// PDF downloads a quotation as a PDF
func (h *QuotationHandler) PDF(c *gin.Context) {
	file, err := h.exportService.QuotationPDF(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.File(c, file.Name, file.ContentType, file.Data)
}
