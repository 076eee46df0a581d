package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	checkoutapp "github.com/outpost-commerce/backend/internal/application/checkout"
	"github.com/outpost-commerce/backend/internal/interfaces/http/middleware"
)

// CartHandler handles cart and checkout-flow endpoints. The cart itself is
// anonymous, keyed by the cart session; placing the order requires a login.
type CartHandler struct {
	BaseHandler
	checkoutService *checkoutapp.Service
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(checkoutService *checkoutapp.Service) *CartHandler {
	return &CartHandler{checkoutService: checkoutService}
}

// Get handles GET /api/v1/cart
func (h *CartHandler) Get(c *gin.Context) {
	resp := h.checkoutService.GetCart(c.Request.Context(), middleware.GetCartSession(c))
	h.Success(c, resp)
}

// AddItem handles POST /api/v1/cart/items
func (h *CartHandler) AddItem(c *gin.Context) {
	var req checkoutapp.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	resp, err := h.checkoutService.AddItem(c.Request.Context(), middleware.GetCartSession(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// RemoveItem handles DELETE /api/v1/cart/items/:ref
func (h *CartHandler) RemoveItem(c *gin.Context) {
	ref := c.Param("ref")
	if ref == "" {
		h.BadRequest(c, "Missing product reference")
		return
	}

	resp := h.checkoutService.RemoveItem(c.Request.Context(), middleware.GetCartSession(c), ref)
	h.Success(c, resp)
}

// SetPayment handles PUT /api/v1/cart/payment
func (h *CartHandler) SetPayment(c *gin.Context) {
	var req checkoutapp.SetPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	resp := h.checkoutService.SetPayment(c.Request.Context(), middleware.GetCartSession(c), req.PaymentMethod)
	h.Success(c, resp)
}

// Clear handles DELETE /api/v1/cart
func (h *CartHandler) Clear(c *gin.Context) {
	resp := h.checkoutService.ClearCart(c.Request.Context(), middleware.GetCartSession(c))
	h.Success(c, resp)
}

// BeginCheckout handles POST /api/v1/cart/checkout.
// An anonymous buyer is sent to the login page with a return path instead
// of an error page.
func (h *CartHandler) BeginCheckout(c *gin.Context) {
	if middleware.GetJWTUserID(c) == "" {
		c.JSON(http.StatusUnauthorized, checkoutapp.LoginRedirect("/shipping"))
		return
	}

	resp, err := h.checkoutService.BeginCheckout(c.Request.Context(), middleware.GetCartSession(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// SubmitShipping handles POST /api/v1/cart/shipping
func (h *CartHandler) SubmitShipping(c *gin.Context) {
	var req checkoutapp.SetAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	resp, err := h.checkoutService.SubmitShipping(c.Request.Context(), middleware.GetCartSession(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// PlaceOrder handles POST /api/v1/cart/placeorder
func (h *CartHandler) PlaceOrder(c *gin.Context) {
	userIDStr := middleware.GetJWTUserID(c)
	if userIDStr == "" {
		c.JSON(http.StatusUnauthorized, checkoutapp.LoginRedirect("/placeorder"))
		return
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		h.Unauthorized(c, "Invalid user identity")
		return
	}

	resp, err := h.checkoutService.PlaceOrder(
		c.Request.Context(),
		middleware.GetCartSession(c),
		userID,
		c.GetHeader("X-Idempotency-Key"),
	)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// Abandon handles POST /api/v1/cart/abandon
func (h *CartHandler) Abandon(c *gin.Context) {
	if err := h.checkoutService.Abandon(c.Request.Context(), middleware.GetCartSession(c)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
