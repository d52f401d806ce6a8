package billing

import (
	"context"
	"time"

	"notely/cmd/server/handlers/handlerutil"
	"notely/internal/services/entitlements"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// Service defines the billing operations the handlers need
type Service interface {
	Purchase(ctx context.Context, profileID, productID string, now time.Time) (*entitlements.Purchase, error)
	History(ctx context.Context, profileID string) ([]*entitlements.Purchase, error)
}

// Handlers contains the billing HTTP handlers
type Handlers struct {
	service   Service
	validator *validator.Validate
}

// NewHandlers creates new billing handlers
func NewHandlers(service Service, validator *validator.Validate) *Handlers {
	return &Handlers{service: service, validator: validator}
}

// PurchaseRequest names the product to buy.
type PurchaseRequest struct {
	ProductID string `json:"product_id" validate:"required,max=64" example:"pro_monthly"`
}

// Products lists the purchasable plans
// @Summary List products
// @Tags billing
// @Produce json
// @Success 200 {array} entitlements.Product
// @Router /billing/products [get]
func (h *Handlers) Products(c *fiber.Ctx) error {
	return c.JSON(entitlements.Products)
}

// Purchase buys a plan for the current profile
// @Summary Purchase a plan
// @Tags billing
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body PurchaseRequest true "Product"
// @Success 201 {object} entitlements.Purchase
// @Failure 402 {object} httperr.E
// @Failure 404 {object} httperr.E
// @Router /billing/purchase [post]
func (h *Handlers) Purchase(c *fiber.Ctx) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}

	var req PurchaseRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "Purchase"); err != nil {
		return err
	}

	p, err := h.service.Purchase(c.UserContext(), userID, req.ProductID, time.Now())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(p)
}

// History lists past purchases
// @Summary Purchase history
// @Tags billing
// @Produce json
// @Security Bearer
// @Success 200 {array} entitlements.Purchase
// @Router /billing/history [get]
func (h *Handlers) History(c *fiber.Ctx) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}

	list, err := h.service.History(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(list)
}
