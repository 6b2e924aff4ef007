package mockapi

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fairyhunter13/product-console/internal/obs"
	"github.com/fairyhunter13/product-console/internal/store"
)

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		c.Header("X-Request-Id", id)
		c.Request = c.Request.WithContext(obs.ContextWithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

func accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		obs.Logger.Info("mock_http_request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"bytes", c.Writer.Size(),
			"latency_ms", float64(time.Since(start).Microseconds())/1000.0,
			"request_id", obs.RequestIDFromContext(c.Request.Context()),
		)
	}
}

// NewRouter wires the product API routes.
func NewRouter(auth *AuthHandler, st *store.Store) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestID(), accessLog())

	products := NewProductHandler(st)
	r.POST("/login", auth.Login)

	g := r.Group("/products", auth.AuthRequired())
	g.GET("", products.GetProducts)
	g.POST("", products.CreateProduct)
	g.GET("/:id", products.GetProductByID)
	g.PUT("/:id", products.UpdateProduct)
	g.DELETE("/:id", products.DeleteProduct)
	return r
}
