package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/sangkips/bizdesk-api/internal/application/service"
	"github.com/sangkips/bizdesk-api/internal/presentation/http/dto/request"
	"github.com/sangkips/bizdesk-api/internal/presentation/http/dto/response"
)

// CatalogHandler handles the services catalog
type CatalogHandler struct {
	catalogService *service.CatalogService
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalogService *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// List handles listing services. active=true hides retired services.
func (h *CatalogHandler) List(c *gin.Context) {
	items, err := h.catalogService.ListServices(c.Request.Context(), c.Query("search"), c.Query("active") == "true")
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Services retrieved successfully", items)
}

// Get handles getting a single service
func (h *CatalogHandler) Get(c *gin.Context) {
	item, err := h.catalogService.GetService(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Service retrieved successfully", item)
}

// Create handles creating a service
func (h *CatalogHandler) Create(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req request.CatalogItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	item, err := h.catalogService.CreateService(c.Request.Context(), actor, catalogInput(req))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Service created successfully", item)
}

// Update handles updating a service
func (h *CatalogHandler) Update(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req request.CatalogItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	item, err := h.catalogService.UpdateService(c.Request.Context(), actor, c.Param("id"), catalogInput(req))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Service updated successfully", item)
}

// Delete handles deleting a service
func (h *CatalogHandler) Delete(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	if err := h.catalogService.DeleteService(c.Request.Context(), actor, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

func catalogInput(req request.CatalogItemRequest) *service.CatalogItemInput {
	return &service.CatalogItemInput{
		Name:        req.Name,
		Description: req.Description,
		Rate:        req.Rate,
		Unit:        req.Unit,
		Active:      req.Active,
	}
}
