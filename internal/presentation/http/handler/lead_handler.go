package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/sangkips/bizdesk-api/internal/application/service"
	"github.com/sangkips/bizdesk-api/internal/domain/enum"
	"github.com/sangkips/bizdesk-api/internal/presentation/http/dto/request"
	"github.com/sangkips/bizdesk-api/internal/presentation/http/dto/response"
)

// LeadHandler handles lead-related HTTP requests
type LeadHandler struct {
	leadService *service.LeadService
}

// NewLeadHandler creates a new lead handler
func NewLeadHandler(leadService *service.LeadService) *LeadHandler {
	return &LeadHandler{leadService: leadService}
}

// List handles listing leads
// @Summary List Leads
// @Description Get leads, newest first, with pagination and filtering
// @Tags leads
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page number"
// @Param per_page query int false "Items per page"
// @Param search query string false "Search term"
// @Param progress query string false "Progress filter"
// @Param handled_by query string false "Handler filter"
// @Success 200 {object} response.APIResponse
// @Router /leads [get]
func (h *LeadHandler) List(c *gin.Context) {
	input := &service.ListLeadsInput{
		Pagination: paginationFrom(c),
		Search:     c.Query("search"),
		HandledBy:  c.Query("handled_by"),
	}
	if p := c.Query("progress"); p != "" {
		progress, err := enum.ParseLeadProgress(p)
		if err != nil {
			response.BadRequest(c, "Invalid progress filter")
			return
		}
		input.Progress = &progress
	}

	result, err := h.leadService.ListLeads(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Leads retrieved successfully", result)
}

// Get handles getting a single lead
func (h *LeadHandler) Get(c *gin.Context) {
	lead, err := h.leadService.GetLead(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Lead retrieved successfully", lead)
}

// Create handles creating a lead
// @Summary Create Lead
// @Tags leads
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body request.CreateLeadRequest true "Lead data"
// @Success 201 {object} response.APIResponse
// @Failure 409 {object} response.APIResponse
// @Router /leads [post]
func (h *LeadHandler) Create(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req request.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	lead, err := h.leadService.CreateLead(c.Request.Context(), actor, &service.CreateLeadInput{
		CompanyName:       req.CompanyName,
		ContactPersonName: req.ContactPersonName,
		BusinessType:      req.BusinessType,
		Email:             req.Email,
		PhoneNumber:       req.PhoneNumber,
		Address:           req.Address,
		Progress:          req.Progress,
		Notes:             req.Notes,
		HandledBy:         req.HandledBy,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Lead created successfully", lead)
}

// Update handles updating a lead
func (h *LeadHandler) Update(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req request.UpdateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	lead, err := h.leadService.UpdateLead(c.Request.Context(), actor, c.Param("id"), &service.UpdateLeadInput{
		CompanyName:       req.CompanyName,
		ContactPersonName: req.ContactPersonName,
		BusinessType:      req.BusinessType,
		Email:             req.Email,
		PhoneNumber:       req.PhoneNumber,
		Address:           req.Address,
		Progress:          req.Progress,
		Notes:             req.Notes,
		HandledBy:         req.HandledBy,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Lead updated successfully", lead)
}

// Delete handles deleting a lead
func (h *LeadHandler) Delete(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	if err := h.leadService.DeleteLead(c.Request.Context(), actor, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// CheckDuplicate reports the lead, if any, that already uses an email or
// phone number.
func (h *LeadHandler) CheckDuplicate(c *gin.Context) {
	var req request.CheckDuplicateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	lead, err := h.leadService.CheckDuplicate(c.Request.Context(), req.Email, req.PhoneNumber, req.ExcludeID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Duplicate check completed", gin.H{
		"duplicate": lead != nil,
		"lead":      lead,
	})
}

// Standardize moves legacy contact info into the email and phone fields
// of every lead.
func (h *LeadHandler) Standardize(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	result, err := h.leadService.StandardizeAll(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Lead contact details standardized", result)
}

// Convert turns a lead into a client
// @Summary Convert Lead
// @Description Create a client from a lead and mark the lead confirmed. A
// @Description 207 response means the client exists but the lead was not updated.
// @Tags leads
// @Security BearerAuth
// @Produce json
// @Param id path string true "Lead ID"
// @Param Idempotency-Key header string true "Idempotency key"
// @Success 201 {object} response.APIResponse
// @Success 207 {object} response.APIResponse
// @Router /leads/{id}/convert [post]
func (h *LeadHandler) Convert(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	result, err := h.leadService.ConvertToClient(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	if result.Outcome.Partial() {
		response.Partial(c, "Client created but the lead could not be updated", result)
		return
	}
	response.Created(c, "Lead converted to client successfully", result)
}
