package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prasadthilina9090-coder/cybergear-hub-a5dec790/models"
	"github.com/prasadthilina9090-coder/cybergear-hub-a5dec790/services"
)

const maxListLimit = 200

type ProductController struct {
	Catalog *services.CatalogService
}

func NewProductController(catalog *services.CatalogService) *ProductController {
	return &ProductController{Catalog: catalog}
}

type listProductsQuery struct {
	Category string `form:"category"`
	PartType string `form:"part_type"`
	Featured bool   `form:"featured"`
	Limit    int    `form:"limit"`
	services.FilterState
}

// ListProducts lists active products, newest first, with the storefront
// filter panel applied.
func (pc *ProductController) ListProducts(c *gin.Context) {
	var q listProductsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query"})
		return
	}
	if q.Limit < 0 || q.Limit > maxListLimit {
		q.Limit = maxListLimit
	}

	filter := models.ProductFilter{
		Category:     models.ProductCategory(q.Category),
		PCPartType:   models.PCPartType(q.PartType),
		FeaturedOnly: q.Featured,
		Limit:        q.Limit,
	}
	products, err := pc.Catalog.Search(c.Request.Context(), filter, q.FilterState)
	if err != nil {
		respondError(c, nil, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products, "count": len(products)})
}

func (pc *ProductController) GetProduct(c *gin.Context) {
	product, err := pc.Catalog.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, nil, err)
		return
	}
	c.JSON(http.StatusOK, product)
}
