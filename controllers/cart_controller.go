package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prasadthilina9090-coder/cybergear-hub-a5dec790/middleware"
	"github.com/prasadthilina9090-coder/cybergear-hub-a5dec790/models"
	apperrors "github.com/prasadthilina9090-coder/cybergear-hub-a5dec790/pkg/errors"
	"github.com/prasadthilina9090-coder/cybergear-hub-a5dec790/pkg/logger"
	"github.com/prasadthilina9090-coder/cybergear-hub-a5dec790/services"
	"go.uber.org/zap"
)

type CartController struct {
	Sessions  *services.SessionRegistry
	Catalog   *services.CatalogService
	Checkouts *services.CheckoutService
}

func NewCartController(sessions *services.SessionRegistry, catalog *services.CatalogService, checkout *services.CheckoutService) *CartController {
	return &CartController{Sessions: sessions, Catalog: catalog, Checkouts: checkout}
}

// Quantity limits mirror models.MaxLineQuantity.
type addItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  *int   `json:"quantity" binding:"omitempty,max=999"`
}

type updateQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required,max=999"`
}

// session resolves the caller's cart session. On failure the response has
// already been written.
func (cc *CartController) session(c *gin.Context) (*services.Session, bool) {
	sess, err := cc.Sessions.Get(c.Request.Context(), c.GetString(middleware.DeviceIDKey))
	if err != nil {
		logger.Error(c, "Failed to load cart session", err)
		respondError(c, sess, err)
		return nil, false
	}
	return sess, true
}

// GetCart returns the cart of the calling device.
func (cc *CartController) GetCart(c *gin.Context) {
	sess, ok := cc.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, cartView(sess))
}

// AddItem adds a catalog product; quantity defaults to 1 and is additive.
func (cc *CartController) AddItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}
	if quantity < 1 || quantity > models.MaxLineQuantity {
		respondError(c, nil, services.ErrInvalidQuantity)
		return
	}

	sess, ok := cc.session(c)
	if !ok {
		return
	}
	product, err := cc.Catalog.Get(c.Request.Context(), req.ProductID)
	if err != nil {
		respondError(c, sess, err)
		return
	}
	if err := sess.Cart.AddItem(c.Request.Context(), product, quantity); err != nil {
		logger.Warn(c, "AddItem failed", zap.String("product_id", req.ProductID), zap.Error(err))
		respondError(c, sess, err)
		return
	}
	c.JSON(http.StatusOK, cartView(sess))
}

// UpdateQuantity sets a line's quantity; zero or less removes it.
func (cc *CartController) UpdateQuantity(c *gin.Context) {
	var req updateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	sess, ok := cc.session(c)
	if !ok {
		return
	}
	if err := sess.Cart.UpdateQuantity(c.Request.Context(), c.Param("product_id"), *req.Quantity); err != nil {
		respondError(c, sess, err)
		return
	}
	c.JSON(http.StatusOK, cartView(sess))
}

func (cc *CartController) RemoveItem(c *gin.Context) {
	sess, ok := cc.session(c)
	if !ok {
		return
	}
	if err := sess.Cart.RemoveItem(c.Request.Context(), c.Param("product_id")); err != nil {
		respondError(c, sess, err)
		return
	}
	c.JSON(http.StatusOK, cartView(sess))
}

func (cc *CartController) ClearCart(c *gin.Context) {
	sess, ok := cc.session(c)
	if !ok {
		return
	}
	if err := sess.Cart.Clear(c.Request.Context()); err != nil {
		respondError(c, sess, err)
		return
	}
	c.JSON(http.StatusOK, cartView(sess))
}

// Checkout publishes the signed-in cart to the order pipeline and empties it.
func (cc *CartController) Checkout(c *gin.Context) {
	var req services.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	sess, ok := cc.session(c)
	if !ok {
		return
	}
	event, err := cc.Checkouts.Checkout(c.Request.Context(), sess.Cart, req)
	if err != nil {
		respondError(c, sess, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{
		"message":     "checkout initiated",
		"checkout_id": event.CheckoutID,
		"total":       event.TotalAmount,
		"cart":        cartView(sess),
	})
}

func cartView(sess *services.Session) models.CartView {
	view := sess.Cart.View()
	view.Notices = sess.Notices.Drain()
	return view
}

// respondError writes err with its mapped status. Pending notices are
// included when a session is known so the shopper still sees them.
func respondError(c *gin.Context, sess *services.Session, err error) {
	_ = c.Error(err)
	appErr := apperrors.FromService(err)
	body := gin.H{"error": appErr.Message}
	if sess != nil {
		body["notices"] = sess.Notices.Drain()
	}
	c.JSON(appErr.Code, body)
}
