package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/chatventas/commerce-service/internal/api/dto"
	"github.com/chatventas/commerce-service/internal/auth"
	"github.com/chatventas/commerce-service/internal/service"
	apperrors "github.com/chatventas/commerce-service/pkg/util/errorutil"
)

// OrdersHandler manages order endpoints for an authenticated session.
type OrdersHandler struct {
	service *service.OrderService
}

// NewOrdersHandler constructs handler.
func NewOrdersHandler(orderService *service.OrderService) *OrdersHandler {
	return &OrdersHandler{service: orderService}
}

// CreateOrder POST /orders.
func (h *OrdersHandler) CreateOrder(c *fiber.Ctx) error {
	claims, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("session required")
	}
	var req dto.CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if len(req.Lines) == 0 {
		return apperrors.NewValidationError("at least one line required", nil)
	}
	for _, line := range req.Lines {
		if line.ProductName == "" || line.Quantity <= 0 {
			return apperrors.NewValidationError("every line needs product_name and a positive quantity", nil)
		}
	}
	lines, err := req.DomainLines()
	if err != nil {
		return apperrors.NewValidationError("invalid unit_price", nil)
	}

	phone := req.CustomerPhone
	if phone == "" {
		phone = claims.CustomerPhone
	}
	order, err := h.service.CreateOrder(c.UserContext(), service.OrderCreateInput{
		ConversationID: claims.ConversationID,
		CustomerPhone:  phone,
		Lines:          lines,
		Notes:          req.Notes,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewOrderResponse(order)})
}

// GetOrder GET /orders/:number.
func (h *OrdersHandler) GetOrder(c *fiber.Ctx) error {
	order, err := h.service.GetOrder(c.UserContext(), c.Params("number"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewOrderResponse(order)})
}

// ListOrders GET /orders.
func (h *OrdersHandler) ListOrders(c *fiber.Ctx) error {
	claims, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("session required")
	}
	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)

	orders, err := h.service.ListOrders(c.UserContext(), claims.ConversationID, limit, offset)
	if err != nil {
		return err
	}
	items := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		items = append(items, dto.NewOrderResponse(&orders[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}
