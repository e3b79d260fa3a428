package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kalpanaCharpe/vestir-ecommerce/internal/cart"
	"github.com/kalpanaCharpe/vestir-ecommerce/internal/httpx"
	"github.com/kalpanaCharpe/vestir-ecommerce/internal/logger"
)

// cartItemRequest payload of add and update. Size and color are optional; an
// omitted value is a different variant than an empty string.
// swagger:model CartItemRequest
type cartItemRequest struct {
	ProductID string  `json:"productId" example:"4e7d4e5c-5cb9-4a3f-9f21-7e1a4f9f2b2a"`
	Quantity  int     `json:"quantity"  example:"2"`
	Size      *string `json:"size"      example:"M"`
	Color     *string `json:"color"     example:"Black"`
}

func (r cartItemRequest) key() cart.Key {
	return cart.Key{ProductID: r.ProductID, Size: r.Size, Color: r.Color}
}

// addToCartHandler godoc
// @Summary  Add a line item
// @Tags     cart
// @Accept   json
// @Produce  json
// @Param    body body cartItemRequest true "item"
// @Success  200 {object} cart.View
// @Failure  400 {object} map[string]string
// @Failure  404 {object} map[string]string
// @Security BearerAuth
// @Router   /cart/add [post]
func addToCartHandler(svc *cart.Service, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req cartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.BadRequest(c, "invalid request body")
			return
		}
		v, err := svc.Add(c.Request.Context(), httpx.AccountID(c), req.key(), req.Quantity)
		if err != nil {
			httpx.RespondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, v)
	}
}

// updateCartHandler godoc
// @Summary  Set the quantity of a line item
// @Tags     cart
// @Accept   json
// @Produce  json
// @Param    body body cartItemRequest true "item"
// @Success  200 {object} cart.View
// @Failure  400 {object} map[string]string
// @Failure  404 {object} map[string]string
// @Security BearerAuth
// @Router   /cart/update [put]
func updateCartHandler(svc *cart.Service, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req cartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.BadRequest(c, "invalid request body")
			return
		}
		v, err := svc.Update(c.Request.Context(), httpx.AccountID(c), req.key(), req.Quantity)
		if err != nil {
			httpx.RespondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, v)
	}
}

// removeFromCartHandler godoc
// @Summary  Remove a line item
// @Tags     cart
// @Accept   json
// @Produce  json
// @Param    body body cartItemRequest true "item key; quantity is ignored"
// @Success  200 {object} cart.View
// @Failure  404 {object} map[string]string
// @Security BearerAuth
// @Router   /cart/remove [delete]
func removeFromCartHandler(svc *cart.Service, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req cartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.BadRequest(c, "invalid request body")
			return
		}
		v, err := svc.Remove(c.Request.Context(), httpx.AccountID(c), req.key())
		if err != nil {
			httpx.RespondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, v)
	}
}

// clearCartHandler godoc
// @Summary  Empty the cart
// @Tags     cart
// @Produce  json
// @Success  200 {object} cart.View
// @Failure  404 {object} map[string]string
// @Security BearerAuth
// @Router   /cart/clear [delete]
func clearCartHandler(svc *cart.Service, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, err := svc.Clear(c.Request.Context(), httpx.AccountID(c))
		if err != nil {
			httpx.RespondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, v)
	}
}

// viewCartHandler godoc
// @Summary  View the cart with current prices
// @Tags     cart
// @Produce  json
// @Success  200 {object} cart.View
// @Security BearerAuth
// @Router   /cart [get]
func viewCartHandler(svc *cart.Service, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, err := svc.View(c.Request.Context(), httpx.AccountID(c))
		if err != nil {
			httpx.RespondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, v)
	}
}
