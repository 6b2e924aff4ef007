package mockapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fairyhunter13/product-console/internal/model"
	"github.com/fairyhunter13/product-console/internal/obs"
	"github.com/fairyhunter13/product-console/internal/store"
)

type ProductHandler struct {
	st *store.Store
}

func NewProductHandler(st *store.Store) *ProductHandler {
	return &ProductHandler{st: st}
}

func validate(p model.Product) string {
	switch {
	case p.Name == "":
		return "name is required"
	case !p.NumericFields():
		return "price and stock must be numbers"
	case p.Price < 0:
		return "price must be >= 0"
	case p.Stock < 0:
		return "stock must be >= 0"
	}
	return ""
}

func (h *ProductHandler) GetProducts(c *gin.Context) {
	c.JSON(http.StatusOK, h.st.List())
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var p model.Product
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}
	if msg := validate(p); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}
	created := h.st.Create(p)
	obs.Logger.Info("mock_product_created", "product_id", created.ID, "user", c.GetString(ctxKeyUser))
	c.JSON(http.StatusCreated, created)
}

func (h *ProductHandler) GetProductByID(c *gin.Context) {
	p, ok := h.st.Get(model.ID(c.Param("id")))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id := model.ID(c.Param("id"))
	var input model.Product
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}
	if msg := validate(input); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}
	p, err := h.st.Update(id, input)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	obs.Logger.Info("mock_product_updated", "product_id", id, "user", c.GetString(ctxKeyUser))
	c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id := model.ID(c.Param("id"))
	if err := h.st.Delete(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	obs.Logger.Info("mock_product_deleted", "product_id", id, "user", c.GetString(ctxKeyUser))
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}
