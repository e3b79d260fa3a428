package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	_ "github.com/kalpanaCharpe/vestir-ecommerce/docs"
	"github.com/kalpanaCharpe/vestir-ecommerce/internal/cart"
	"github.com/kalpanaCharpe/vestir-ecommerce/internal/httpx"
	"github.com/kalpanaCharpe/vestir-ecommerce/internal/logger"
	"github.com/kalpanaCharpe/vestir-ecommerce/internal/order"
	"github.com/kalpanaCharpe/vestir-ecommerce/internal/product"
	"github.com/kalpanaCharpe/vestir-ecommerce/internal/user"
)

type app struct {
	serviceName string
	corsOrigins []string
	log         *logger.Logger
	tokens      httpx.TokenParser
	products    product.Repository
	carts       *cart.Service
	orders      *order.Service
	users       *user.Service
	// ready reports store health for /healthz; nil means always ready.
	ready func(ctx context.Context) error
}

func newRouter(a *app) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if a.serviceName != "" {
		r.Use(otelgin.Middleware(a.serviceName))
	}
	r.Use(httpx.RequestID(), httpx.Logger(a.log))
	if len(a.corsOrigins) > 0 {
		r.Use(httpx.CORS(a.corsOrigins))
	}

	r.GET("/healthz", healthHandler(a.ready))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	authn := httpx.Authenticate(a.tokens)
	admin := httpx.RequireAdmin()

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.POST("/register", registerHandler(a.users, a.log))
	authGroup.POST("/login", loginHandler(a.users, a.log))

	products := api.Group("/products", authn)
	products.GET("", listProductsHandler(a.products, a.log))
	products.GET("/:id", getProductHandler(a.products, a.log))
	products.POST("", admin, createProductHandler(a.products, a.log))
	products.PUT("/:id", admin, updateProductHandler(a.products, a.log))
	products.DELETE("/:id", admin, deleteProductHandler(a.products, a.log))

	carts := api.Group("/cart", authn)
	carts.GET("", viewCartHandler(a.carts, a.log))
	carts.POST("/add", addToCartHandler(a.carts, a.log))
	carts.PUT("/update", updateCartHandler(a.carts, a.log))
	carts.DELETE("/remove", removeFromCartHandler(a.carts, a.log))
	carts.DELETE("/clear", clearCartHandler(a.carts, a.log))

	orders := api.Group("/orders", authn)
	orders.POST("/place", placeOrderHandler(a.orders, a.log))
	orders.GET("/user", listMyOrdersHandler(a.orders, a.log))
	orders.DELETE("/:orderId", deleteOrderHandler(a.orders, a.log))
	orders.GET("", admin, listAllOrdersHandler(a.orders, a.log))
	orders.PUT("/:orderId", admin, updateOrderStatusHandler(a.orders, a.log))

	users := api.Group("/users", authn)
	users.GET("/profile", getProfileHandler(a.users, a.log))
	users.PUT("/profile", updateProfileHandler(a.users, a.log))
	users.POST("/profile", logoutHandler())
	users.DELETE("/profile", deleteProfileHandler(a.users, a.log))
	users.GET("", admin, listUsersHandler(a.users, a.log))
	users.DELETE("/:userId", admin, deleteUserHandler(a.users, a.log))

	return r
}

func healthHandler(ready func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ready != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := ready(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
