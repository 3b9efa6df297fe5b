package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/sangkips/bizdesk-api/internal/application/service"
	"github.com/sangkips/bizdesk-api/internal/domain/enum"
	"github.com/sangkips/bizdesk-api/internal/presentation/http/dto/request"
	"github.com/sangkips/bizdesk-api/internal/presentation/http/dto/response"
)

// ClientHandler handles client-related HTTP requests
type ClientHandler struct {
	clientService *service.ClientService
}

// NewClientHandler creates a new client handler
func NewClientHandler(clientService *service.ClientService) *ClientHandler {
	return &ClientHandler{clientService: clientService}
}

// List handles listing clients
func (h *ClientHandler) List(c *gin.Context) {
	input := &service.ListClientsInput{
		Pagination: paginationFrom(c),
		Search:     c.Query("search"),
	}
	if s := c.Query("status"); s != "" {
		status, err := enum.ParseClientStatus(s)
		if err != nil {
			response.BadRequest(c, "Invalid status filter")
			return
		}
		input.Status = &status
	}

	result, err := h.clientService.ListClients(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Clients retrieved successfully", result)
}

// Get handles getting a single client
func (h *ClientHandler) Get(c *gin.Context) {
	client, err := h.clientService.GetClient(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Client retrieved successfully", client)
}

// Create handles creating a client
func (h *ClientHandler) Create(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req request.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	client, err := h.clientService.CreateClient(c.Request.Context(), actor, &service.CreateClientInput{
		CompanyName:       req.CompanyName,
		ContactPersonName: req.ContactPersonName,
		BusinessType:      req.BusinessType,
		Email:             req.Email,
		PhoneNumber:       req.PhoneNumber,
		Address:           req.Address,
		Notes:             req.Notes,
		HandledBy:         req.HandledBy,
		Status:            req.Status,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Client created successfully", client)
}

// Update handles updating a client
func (h *ClientHandler) Update(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req request.UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	client, err := h.clientService.UpdateClient(c.Request.Context(), actor, c.Param("id"), &service.UpdateClientInput{
		CompanyName:       req.CompanyName,
		ContactPersonName: req.ContactPersonName,
		BusinessType:      req.BusinessType,
		Email:             req.Email,
		PhoneNumber:       req.PhoneNumber,
		Address:           req.Address,
		Notes:             req.Notes,
		HandledBy:         req.HandledBy,
		Status:            req.Status,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Client updated successfully", client)
}

// Delete handles deleting a client
func (h *ClientHandler) Delete(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	if err := h.clientService.DeleteClient(c.Request.Context(), actor, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
