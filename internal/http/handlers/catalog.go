package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/vowbridge-backend/internal/http/response"
	catalogmod "github.com/yungbote/vowbridge-backend/internal/modules/catalog"
)

type CatalogHandler struct {
	catalog catalogmod.Usecases
}

func NewCatalogHandler(catalog catalogmod.Usecases) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// GET /api/products?category=&search=
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	rows, err := h.catalog.ListProducts(c.Request.Context(), catalogmod.ProductQuery{
		Category: c.Query("category"),
		Search:   c.Query("search"),
	})
	if err != nil {
		respondErr(c, err, "list_products_failed")
		return
	}
	response.RespondOK(c, rows)
}

// GET /api/products/:id
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	p, err := h.catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondErr(c, err, "load_product_failed")
		return
	}
	response.RespondOK(c, p)
}

// GET /api/categories
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	rows, err := h.catalog.ListCategories(c.Request.Context())
	if err != nil {
		respondErr(c, err, "list_categories_failed")
		return
	}
	response.RespondOK(c, rows)
}
