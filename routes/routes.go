package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prasadthilina9090-coder/cybergear-hub-a5dec790/controllers"
	"github.com/prasadthilina9090-coder/cybergear-hub-a5dec790/middleware"
	awspkg "github.com/prasadthilina9090-coder/cybergear-hub-a5dec790/pkg/aws"
	apperrors "github.com/prasadthilina9090-coder/cybergear-hub-a5dec790/pkg/errors"
	"github.com/prasadthilina9090-coder/cybergear-hub-a5dec790/pkg/logger"
	"go.uber.org/zap"
)

const ServiceName = "cart-service"

type Deps struct {
	Cart           *controllers.CartController
	Session        *controllers.SessionController
	Products       *controllers.ProductController
	Builder        *controllers.BuilderController
	Metrics        *awspkg.MetricsClient
	Logger         *zap.Logger
	AllowedOrigins []string
	RateLimiter    *middleware.RateLimiter
}

// NewRouter builds the HTTP surface of the cart service.
func NewRouter(d Deps) *gin.Engine {
	origins := d.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173"}
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.RequestID())
	r.Use(middleware.RequestLogger(d.Logger))
	r.Use(middleware.MetricsMiddleware(d.Metrics, ServiceName))
	r.Use(middleware.SecurityHeaders())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.DeviceIDHeader, "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	if d.RateLimiter != nil {
		r.Use(middleware.RateLimitMiddleware(d.RateLimiter))
	}
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(apperrors.ErrorMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK", "service": ServiceName})
	})

	products := r.Group("/products")
	{
		products.GET("", d.Products.ListProducts)
		products.GET("/:id", d.Products.GetProduct)
	}

	r.GET("/builder/steps", d.Builder.Steps)
	r.POST("/builder/quote", d.Builder.Quote)

	device := r.Group("/", middleware.RequireDevice())
	{
		device.GET("/cart", d.Cart.GetCart)
		device.POST("/cart/items", d.Cart.AddItem)
		device.PATCH("/cart/items/:product_id", d.Cart.UpdateQuantity)
		device.DELETE("/cart/items/:product_id", d.Cart.RemoveItem)
		device.DELETE("/cart", d.Cart.ClearCart)
		device.POST("/cart/checkout", d.Cart.Checkout)

		device.POST("/session/login", d.Session.Login)
		device.POST("/session/logout", d.Session.Logout)

		device.POST("/builder/cart", d.Builder.AddToCart)
	}
	return r
}
