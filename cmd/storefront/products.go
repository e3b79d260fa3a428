package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/kalpanaCharpe/vestir-ecommerce/internal/httpx"
	"github.com/kalpanaCharpe/vestir-ecommerce/internal/logger"
	prod "github.com/kalpanaCharpe/vestir-ecommerce/internal/product"
)

func optionalDecimal(c *gin.Context, key string) (*decimal.Decimal, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, false
	}
	return &d, true
}

func optionalInt(c *gin.Context, key string) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	return n, err == nil
}

// listProductsHandler godoc
// @Summary  List products
// @Tags     products
// @Produce  json
// @Param    search   query string false "name substring"
// @Param    category query string false "Men, Women or Kids"
// @Param    minPrice query number false "lower price bound"
// @Param    maxPrice query number false "upper price bound"
// @Param    sort     query string false "price_asc, price_desc, name_asc"
// @Param    page     query int    false "page, from 1"
// @Param    limit    query int    false "page size, max 100"
// @Success  200 {object} prod.Page
// @Security BearerAuth
// @Router   /products [get]
func listProductsHandler(repo prod.Repository, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		minPrice, ok1 := optionalDecimal(c, "minPrice")
		maxPrice, ok2 := optionalDecimal(c, "maxPrice")
		page, ok3 := optionalInt(c, "page")
		limit, ok4 := optionalInt(c, "limit")
		if !ok1 || !ok2 || !ok3 || !ok4 {
			httpx.BadRequest(c, "invalid query parameters")
			return
		}
		q := prod.Query{
			Search:   c.Query("search"),
			Category: prod.Category(c.Query("category")),
			MinPrice: minPrice,
			MaxPrice: maxPrice,
			Sort:     prod.Sort(c.Query("sort")),
			Page:     page,
			Limit:    limit,
		}.Normalize()
		if err := q.Validate(); err != nil {
			httpx.RespondError(c, log, err)
			return
		}

		items, total, err := repo.List(c.Request.Context(), q)
		if err != nil {
			httpx.RespondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, prod.NewPage(items, total, q))
	}
}

// getProductHandler godoc
// @Summary  Get a product
// @Tags     products
// @Produce  json
// @Param    id path string true "product id"
// @Success  200 {object} prod.Product
// @Failure  404 {object} map[string]string
// @Security BearerAuth
// @Router   /products/{id} [get]
func getProductHandler(repo prod.Repository, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := repo.GetByID(c.Request.Context(), c.Param("id"))
		if errors.Is(err, prod.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		if err != nil {
			httpx.RespondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

// createProductHandler godoc
// @Summary  Create a product
// @Tags     products
// @Accept   json
// @Produce  json
// @Param    body body prod.CreateProductRequest true "product"
// @Success  201 {object} prod.Product
// @Failure  400 {object} map[string]string
// @Security BearerAuth
// @Router   /products [post]
func createProductHandler(repo prod.Repository, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req prod.CreateProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.BadRequest(c, "invalid request body")
			return
		}
		if err := req.Validate(); err != nil {
			httpx.RespondError(c, log, err)
			return
		}
		p := req.Product()
		if err := repo.Create(c.Request.Context(), &p); err != nil {
			httpx.RespondError(c, log, err)
			return
		}
		c.JSON(http.StatusCreated, p)
	}
}

// updateProductHandler godoc
// @Summary  Update a product
// @Tags     products
// @Accept   json
// @Produce  json
// @Param    id   path string true "product id"
// @Param    body body prod.UpdateProductRequest true "fields to change"
// @Success  200 {object} prod.Product
// @Failure  400 {object} map[string]string
// @Failure  404 {object} map[string]string
// @Security BearerAuth
// @Router   /products/{id} [put]
func updateProductHandler(repo prod.Repository, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req prod.UpdateProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.BadRequest(c, "invalid request body")
			return
		}
		patch := req.Patch()
		if err := patch.Validate(); err != nil {
			httpx.RespondError(c, log, err)
			return
		}
		p, err := repo.Update(c.Request.Context(), c.Param("id"), patch)
		if errors.Is(err, prod.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		if err != nil {
			httpx.RespondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

// deleteProductHandler godoc
// @Summary  Delete a product
// @Tags     products
// @Produce  json
// @Param    id path string true "product id"
// @Success  200 {object} map[string]string
// @Failure  404 {object} map[string]string
// @Security BearerAuth
// @Router   /products/{id} [delete]
func deleteProductHandler(repo prod.Repository, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := repo.Delete(c.Request.Context(), c.Param("id"))
		if err != nil {
			httpx.RespondError(c, log, err)
			return
		}
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "product removed"})
	}
}
