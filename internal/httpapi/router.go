package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"storefront-backend/internal/metrics"
	"storefront-backend/internal/middleware"
	"storefront-backend/internal/models"
	"storefront-backend/internal/response"
	"storefront-backend/internal/service"
	"storefront-backend/internal/validation"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Options struct {
	Services     *service.Services
	Health       Pinger
	Auth         *middleware.Authenticator
	RateLimiter  *middleware.RateLimiter
	Logger       *logrus.Logger
	AllowOrigins []string
}

type handlers struct {
	svc    *service.Services
	health Pinger
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

// NewRouter wires middleware and every route onto a fresh gin engine.
func NewRouter(opts Options) *gin.Engine {
	validation.Register()
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.RateLimiter == nil {
		opts.RateLimiter = middleware.NewRateLimiter(5, 10)
	}
	if len(opts.AllowOrigins) == 0 {
		opts.AllowOrigins = []string{"*"}
	}

	r := gin.New()
	r.Use(
		middleware.RequestID(opts.Logger),
		middleware.Logger(),
		middleware.Recovery(),
		metrics.Middleware(),
		cors.New(corsConfig(opts.AllowOrigins)),
	)

	h := &handlers{svc: opts.Services, health: opts.Health}
	account := opts.Auth.Require(models.RoleAccount)
	seller := opts.Auth.Require(models.RoleSeller)
	limited := opts.RateLimiter.Handler()

	r.GET("/health", h.healthCheck)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	acct := r.Group("/account")
	{
		acct.POST("/add", handle(fromBody, h.addAccount))
		acct.PUT("/edit", account, handle(fromBody, h.editAccount))
		acct.DELETE("/delete", account, handle(fromNone, h.deleteAccount))
		acct.GET("/details", account, handle(fromNone, h.accountDetails))
		acct.POST("/login", limited, handle(fromBody, h.accountLogin))
		acct.POST("/logout", account, handle(fromNone, h.logout))
		acct.POST("/reset-password", limited, handle(fromBody, h.resetAccountPassword))
	}

	sel := r.Group("/seller/account")
	{
		sel.POST("/add", handle(fromBody, h.addSeller))
		sel.PUT("/edit", seller, handle(fromBody, h.editSeller))
		sel.DELETE("/delete", seller, handle(fromNone, h.deleteSeller))
		sel.GET("/details", seller, handle(fromNone, h.sellerDetails))
		sel.POST("/login", limited, handle(fromBody, h.sellerLogin))
		sel.POST("/logout", seller, handle(fromNone, h.logout))
		sel.POST("/reset-password", limited, handle(fromBody, h.resetSellerPassword))
	}

	product := r.Group("/product")
	{
		product.POST("/add", seller, handle(fromBody, h.addProduct))
		product.PUT("/edit", seller, handle(fromBody, h.editProduct))
		product.DELETE("/delete", seller, handle(fromQuery, h.deleteProduct))
		product.GET("/all", handle(fromQuery, h.allProducts))
		product.GET("/details", handle(fromQuery, h.productDetails))
		product.GET("/by-category", handle(fromQuery, h.productsByCategory))
		product.GET("/categories", handle(fromNone, h.categories))

		review := product.Group("/review")
		review.POST("/add", account, handle(fromBody, h.addReview))
		review.PUT("/update", account, handle(fromBody, h.updateReview))
		review.DELETE("/delete", account, handle(fromQuery, h.deleteReview))
		review.GET("/list", handle(fromQuery, h.listReviews))
	}

	cart := r.Group("/cart", account)
	{
		cart.POST("/add", handle(fromBody, h.addToCart))
		cart.POST("/remove", handle(fromBody, h.removeFromCart))
		cart.GET("/details", handle(fromQuery, h.cartDetails))
		cart.PUT("/update", handle(fromBody, h.updateCart))
		cart.POST("/clear", handle(fromNone, h.clearCart))
	}

	order := r.Group("/order", account)
	{
		order.POST("/create", handle(fromBody, h.createOrder))
		order.GET("/all", handle(fromNone, h.listOrders))
		order.GET("/details", handle(fromQuery, h.orderDetails))
		order.PUT("/status", handle(fromBody, h.updateOrderStatus))
	}

	r.NoRoute(func(c *gin.Context) {
		response.JSON(c, http.StatusNotFound, "Route not found.", nil, nil)
	})
	return r
}

func (h *handlers) healthCheck(c *gin.Context) {
	if h.health != nil {
		if err := h.health.Ping(c.Request.Context()); err != nil {
			response.JSON(c, http.StatusInternalServerError, "health check failed: "+err.Error(), nil, nil)
			return
		}
	}
	response.Raw(c, http.StatusOK, gin.H{"status": "ok"})
}
