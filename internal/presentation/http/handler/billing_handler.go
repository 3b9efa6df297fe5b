package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/sangkips/bizdesk-api/internal/application/service"
	"github.com/sangkips/bizdesk-api/internal/presentation/http/dto/request"
	"github.com/sangkips/bizdesk-api/internal/presentation/http/dto/response"
)

// BillingHandler exposes the pricing and numbering rules to form previews.
type BillingHandler struct {
	quotationService *service.QuotationService
}

// NewBillingHandler creates a new billing handler
func NewBillingHandler(quotationService *service.QuotationService) *BillingHandler {
	return &BillingHandler{quotationService: quotationService}
}

// Totals prices a draft without storing it
func (h *BillingHandler) Totals(c *gin.Context) {
	var req request.PricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	pricing, err := service.CalculateTotals(pricingInput(req))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Totals calculated successfully", pricing)
}

// NextNumber previews the next quotation or invoice number
func (h *BillingHandler) NextNumber(c *gin.Context) {
	kind := service.DocumentKind(c.DefaultQuery("type", string(service.DocumentKindInvoice)))

	number, err := h.quotationService.NextNumber(c.Request.Context(), kind)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Next number retrieved successfully", gin.H{
		"type":   kind,
		"number": number,
	})
}
