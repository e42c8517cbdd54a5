package upload

import "github.com/gin-gonic/gin"

// RegisterRoutes registers intake and image routes under the protected group.
func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	r.POST("/intake", h.Intake)

	images := r.Group("/images")
	{
		images.GET("", h.ListMy)
		images.GET("/:id", h.GetByID)
		images.GET("/:id/data-url", h.DataURL)
		images.DELETE("/:id", h.Delete)
	}

	r.GET("/batches/:id/images", h.ListBatch)
}
