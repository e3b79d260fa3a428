package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kalpanaCharpe/vestir-ecommerce/internal/httpx"
	"github.com/kalpanaCharpe/vestir-ecommerce/internal/logger"
	ord "github.com/kalpanaCharpe/vestir-ecommerce/internal/order"
)

func pageParams(c *gin.Context) (limit, offset int, ok bool) {
	limit, ok1 := optionalInt(c, "limit")
	offset, ok2 := optionalInt(c, "offset")
	return limit, offset, ok1 && ok2
}

// placeOrderHandler godoc
// @Summary  Place an order from the cart
// @Tags     orders
// @Produce  json
// @Success  201 {object} ord.View
// @Failure  400 {object} map[string]string
// @Failure  404 {object} map[string]string
// @Security BearerAuth
// @Router   /orders/place [post]
func placeOrderHandler(svc *ord.Service, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, err := svc.PlaceOrder(c.Request.Context(), httpx.AccountID(c))
		if err != nil {
			httpx.RespondError(c, log, err)
			return
		}
		c.JSON(http.StatusCreated, v)
	}
}

// listMyOrdersHandler godoc
// @Summary  List the caller's orders, newest first
// @Tags     orders
// @Produce  json
// @Param    limit  query int false "page size"
// @Param    offset query int false "offset"
// @Success  200 {array} ord.View
// @Security BearerAuth
// @Router   /orders/user [get]
func listMyOrdersHandler(svc *ord.Service, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, offset, ok := pageParams(c)
		if !ok {
			httpx.BadRequest(c, "invalid query parameters")
			return
		}
		views, err := svc.ListForAccount(c.Request.Context(), httpx.AccountID(c), limit, offset)
		if err != nil {
			httpx.RespondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, views)
	}
}

// listAllOrdersHandler godoc
// @Summary  List every order
// @Tags     orders
// @Produce  json
// @Param    limit  query int false "page size"
// @Param    offset query int false "offset"
// @Success  200 {array} ord.AdminView
// @Security BearerAuth
// @Router   /orders [get]
func listAllOrdersHandler(svc *ord.Service, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, offset, ok := pageParams(c)
		if !ok {
			httpx.BadRequest(c, "invalid query parameters")
			return
		}
		views, err := svc.ListAll(c.Request.Context(), limit, offset)
		if err != nil {
			httpx.RespondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, views)
	}
}

// updateOrderStatusHandler godoc
// @Summary  Set an order's status
// @Tags     orders
// @Accept   json
// @Produce  json
// @Param    orderId path string true "order id"
// @Param    body    body ord.UpdateStatusRequest true "new status"
// @Success  200 {object} ord.View
// @Failure  400 {object} map[string]string
// @Failure  404 {object} map[string]string
// @Security BearerAuth
// @Router   /orders/{orderId} [put]
func updateOrderStatusHandler(svc *ord.Service, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ord.UpdateStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.BadRequest(c, "invalid request body")
			return
		}
		v, err := svc.SetStatus(c.Request.Context(), c.Param("orderId"), req.Status)
		if err != nil {
			httpx.RespondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, v)
	}
}

// deleteOrderHandler godoc
// @Summary  Delete one of the caller's orders
// @Tags     orders
// @Produce  json
// @Param    orderId path string true "order id"
// @Success  200 {object} map[string]string
// @Failure  404 {object} map[string]string
// @Security BearerAuth
// @Router   /orders/{orderId} [delete]
func deleteOrderHandler(svc *ord.Service, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), httpx.AccountID(c), c.Param("orderId")); err != nil {
			httpx.RespondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "order deleted"})
	}
}
