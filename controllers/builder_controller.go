package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prasadthilina9090-coder/cybergear-hub-a5dec790/middleware"
	"github.com/prasadthilina9090-coder/cybergear-hub-a5dec790/models"
	"github.com/prasadthilina9090-coder/cybergear-hub-a5dec790/services"
)

// BuilderController serves the PC build wizard.
type BuilderController struct {
	Catalog  *services.CatalogService
	Sessions *services.SessionRegistry
}

func NewBuilderController(catalog *services.CatalogService, sessions *services.SessionRegistry) *BuilderController {
	return &BuilderController{Catalog: catalog, Sessions: sessions}
}

type buildRequest struct {
	PartIDs []string `json:"part_ids" binding:"required"`
}

type stepResponse struct {
	services.BuildStep
	Parts []models.Product `json:"parts"`
}

// Steps lists the wizard steps with the in-stock parts for each.
func (bc *BuilderController) Steps(c *gin.Context) {
	parts, err := bc.Catalog.List(c.Request.Context(), models.ProductFilter{Category: models.CategoryPCParts})
	if err != nil {
		respondError(c, nil, err)
		return
	}
	steps := make([]stepResponse, 0, len(services.BuildSteps))
	for _, s := range services.BuildSteps {
		steps = append(steps, stepResponse{BuildStep: s, Parts: services.PartsForStep(parts, s.Type)})
	}
	c.JSON(http.StatusOK, gin.H{"steps": steps})
}

// Quote prices a set of selected parts.
func (bc *BuilderController) Quote(c *gin.Context) {
	build, ok := bc.build(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, build.Quote())
}

// AddToCart adds one of every selected part to the device's cart.
func (bc *BuilderController) AddToCart(c *gin.Context) {
	build, ok := bc.build(c)
	if !ok {
		return
	}
	sess, err := bc.Sessions.Get(c.Request.Context(), c.GetString(middleware.DeviceIDKey))
	if err != nil {
		respondError(c, sess, err)
		return
	}
	added, err := services.AddBuildToCart(c.Request.Context(), sess.Cart, build)
	if err != nil {
		respondError(c, sess, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"added": added, "cart": cartView(sess)})
}

// build resolves part ids into a Build. Later parts of the same type replace
// earlier ones.
func (bc *BuilderController) build(c *gin.Context) (*services.Build, bool) {
	var req buildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return nil, false
	}
	build := services.NewBuild()
	for _, id := range req.PartIDs {
		part, err := bc.Catalog.Get(c.Request.Context(), id)
		if err != nil {
			respondError(c, nil, err)
			return nil, false
		}
		if err := build.Select(*part); err != nil {
			respondError(c, nil, err)
			return nil, false
		}
	}
	return build, true
}
