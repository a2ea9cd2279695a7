package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prasadthilina9090-coder/cybergear-hub-a5dec790/identity"
	"github.com/prasadthilina9090-coder/cybergear-hub-a5dec790/middleware"
	"github.com/prasadthilina9090-coder/cybergear-hub-a5dec790/pkg/logger"
	"github.com/prasadthilina9090-coder/cybergear-hub-a5dec790/services"
	"go.uber.org/zap"
)

// SessionController binds a device to a signed-in user and back.
type SessionController struct {
	Sessions *services.SessionRegistry
	Verifier *identity.TokenVerifier
}

func NewSessionController(sessions *services.SessionRegistry, verifier *identity.TokenVerifier) *SessionController {
	return &SessionController{Sessions: sessions, Verifier: verifier}
}

// Login verifies the bearer access token and signs its user in on the
// device, merging the guest cart.
func (sc *SessionController) Login(c *gin.Context) {
	token := identity.BearerToken(c.GetHeader("Authorization"))
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing access token"})
		return
	}
	claims, err := sc.Verifier.Verify(token)
	if err != nil {
		logger.Warn(c, "Rejected access token", zap.Error(err))
		respondError(c, nil, err)
		return
	}

	deviceID := c.GetString(middleware.DeviceIDKey)
	sess, err := sc.Sessions.SignIn(c.Request.Context(), deviceID, claims.UserID)
	if err != nil {
		logger.Error(c, "Sign-in failed", err, zap.String("user_id", claims.UserID))
		respondError(c, sess, err)
		return
	}
	logger.Info(c, "Device signed in", zap.String("user_id", claims.UserID), zap.String("device_id", deviceID))
	c.JSON(http.StatusOK, cartView(sess))
}

// Logout returns the device to an empty guest cart. The user's stored cart
// is kept.
func (sc *SessionController) Logout(c *gin.Context) {
	sess, err := sc.Sessions.Get(c.Request.Context(), c.GetString(middleware.DeviceIDKey))
	if err != nil && sess == nil {
		respondError(c, nil, err)
		return
	}
	if err := sess.Identity.SignOut(c.Request.Context()); err != nil {
		respondError(c, sess, err)
		return
	}
	c.JSON(http.StatusOK, cartView(sess))
}
