package handler

import (
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/sangkips/bizdesk-api/internal/application/service"
	"github.com/sangkips/bizdesk-api/internal/domain/entity"
	"github.com/sangkips/bizdesk-api/internal/domain/enum"
	"github.com/sangkips/bizdesk-api/internal/presentation/http/dto/request"
	"github.com/sangkips/bizdesk-api/internal/presentation/http/dto/response"
	"github.com/sangkips/bizdesk-api/pkg/apperror"
	"github.com/sangkips/bizdesk-api/pkg/pagination"
	"github.com/sangkips/bizdesk-api/pkg/utils"
)

const dateLayout = "2006-01-02"

// GetUserID extracts the user ID from the Gin context
func GetUserID(c *gin.Context) string {
	return c.GetString("user_id")
}

// GetUserEmail extracts the user email from the Gin context
func GetUserEmail(c *gin.Context) string {
	return c.GetString("user_email")
}

// GetUserRoles extracts the user roles from the Gin context
func GetUserRoles(c *gin.Context) []string {
	return c.GetStringSlice("user_roles")
}

// GetUserPermissions extracts the user permissions from the Gin context
func GetUserPermissions(c *gin.Context) []string {
	return c.GetStringSlice("user_permissions")
}

// IsPrivileged checks if the user has the admin or super-admin role
func IsPrivileged(c *gin.Context) bool {
	for _, role := range GetUserRoles(c) {
		if role == utils.RoleAdmin || role == utils.RoleSuperAdmin {
			return true
		}
	}
	return false
}

// actorFrom builds the service actor for the authenticated user. ok is false
// when the request carries no user.
func actorFrom(c *gin.Context) (service.Actor, bool) {
	id := GetUserID(c)
	if id == "" {
		return service.Actor{}, false
	}
	return service.Actor{ID: id, Privileged: IsPrivileged(c)}, true
}

// requireActor is actorFrom that answers 401 itself.
func requireActor(c *gin.Context) (service.Actor, bool) {
	actor, ok := actorFrom(c)
	if !ok {
		response.Unauthorized(c, "User not authenticated")
	}
	return actor, ok
}

// paginationFrom reads page and per_page from the query string.
func paginationFrom(c *gin.Context) *pagination.PaginationParams {
	params := pagination.DefaultPagination()
	if p := c.Query("page"); p != "" {
		if parsed, err := parsePositiveInt(p); err == nil {
			params.Page = parsed
		}
	}
	if pp := c.Query("per_page"); pp != "" {
		if parsed, err := parsePositiveInt(pp); err == nil {
			params.PerPage = parsed
		}
	}
	return params
}

// Helper functions for parsing query parameters
func parsePositiveInt(s string) (int, error) {
	var result int
	_, err := fmt.Sscanf(s, "%d", &result)
	if err != nil || result < 1 {
		return 1, fmt.Errorf("not a positive number: %q", s)
	}
	return result, nil
}

// parseDate accepts YYYY-MM-DD or RFC 3339. An empty string is no date.
func parseDate(field, value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(dateLayout, value); err == nil {
		return &t, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}
	return nil, apperror.NewFieldError(field, "Invalid date format. Use YYYY-MM-DD")
}

func lineItems(items []request.LineItemRequest) []service.LineItemInput {
	out := make([]service.LineItemInput, len(items))
	for i, item := range items {
		out[i] = service.LineItemInput{
			ID:          item.ID,
			ServiceID:   item.ServiceID,
			Description: item.Description,
			Quantity:    item.Quantity,
			Rate:        item.Rate,
			Unit:        item.Unit,
		}
	}
	return out
}

func pricingInput(req request.PricingRequest) service.PricingInput {
	return service.PricingInput{
		Items:         lineItems(req.Items),
		TaxRate:       req.TaxRate,
		DiscountType:  req.DiscountType,
		DiscountValue: req.DiscountValue,
	}
}

// pricingPatch overlays the pricing fields present in an update request on
// the stored pricing. It returns nil when none are present.
func pricingPatch(
	current entity.Pricing,
	items []request.LineItemRequest,
	taxRate, discountValue *decimal.Decimal,
	discountType *enum.DiscountType,
) *service.PricingInput {
	if items == nil && taxRate == nil && discountValue == nil && discountType == nil {
		return nil
	}

	in := service.PricingInput{
		TaxRate:       current.TaxRate,
		DiscountType:  current.DiscountType,
		DiscountValue: current.DiscountValue,
	}
	if items != nil {
		in.Items = lineItems(items)
	} else {
		for _, item := range current.Items {
			in.Items = append(in.Items, service.LineItemInput{
				ID:          item.ID,
				ServiceID:   item.ServiceID,
				Description: item.Description,
				Quantity:    item.Quantity,
				Rate:        item.Rate,
				Unit:        item.Unit,
			})
		}
	}
	if taxRate != nil {
		in.TaxRate = *taxRate
	}
	if discountType != nil {
		in.DiscountType = *discountType
	}
	if discountValue != nil {
		in.DiscountValue = *discountValue
	}
	return &in
}
