package upload

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"imagedrop/internal/domain/intake"
	"imagedrop/internal/pkg/response"
)

// maxMultipartMemory is how much of a drop gin keeps in memory before
// spilling parts to temp files.
const maxMultipartMemory = 32 << 20

// Handler serves the drop endpoint and the stored images.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Intake godoc
// @Summary Drop a batch of images and zip archives
// @Tags Intake
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param files formData file true "Images (jpeg/png) or zip archives; repeatable"
// @Success 201 {object} map[string]interface{}
// @Failure 400,401,500 {object} map[string]interface{}
// @Router /intake [post]
func (h *Handler) Intake(c *gin.Context) {
	userID := mustUserID(c)
	if userID == 0 {
		return
	}

	received := time.Now()
	if err := c.Request.ParseMultipartForm(maxMultipartMemory); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid multipart form")
		return
	}

	var files []intake.File
	if form := c.Request.MultipartForm; form != nil {
		for _, fh := range form.File["files"] {
			files = append(files, intake.NewMultipartFile(fh, received))
		}
	}

	report, err := h.service.Ingest(c.Request.Context(), userID, files)
	if err != nil {
		if errors.Is(err, ErrNoFiles) {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
			return
		}
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, response.CodeInternal, "intake failed")
		return
	}

	response.Success(c, http.StatusCreated, report)
}

// GetByID godoc
// @Summary Get image metadata by ID
// @Tags Images
// @Produce json
// @Security BearerAuth
// @Param id path string true "Image ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403,404 {object} map[string]interface{}
// @Router /images/{id} [get]
func (h *Handler) GetByID(c *gin.Context) {
	userID := mustUserID(c)
	if userID == 0 {
		return
	}

	img, err := h.service.GetByID(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		h.writeLookupError(c, err)
		return
	}
	response.Success(c, http.StatusOK, img)
}

// DataURL godoc
// @Summary Get a stored image as a base64 data URL
// @Tags Images
// @Produce json
// @Security BearerAuth
// @Param id path string true "Image ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403,404,500 {object} map[string]interface{}
// @Router /images/{id}/data-url [get]
func (h *Handler) DataURL(c *gin.Context) {
	userID := mustUserID(c)
	if userID == 0 {
		return
	}

	id := c.Param("id")
	url, err := h.service.DataURL(c.Request.Context(), id, userID)
	if err != nil {
		h.writeLookupError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": id, "data_url": url})
}

// Delete godoc
// @Summary Delete an image (file + record)
// @Tags Images
// @Produce json
// @Security BearerAuth
// @Param id path string true "Image ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403,404,500 {object} map[string]interface{}
// @Router /images/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	userID := mustUserID(c)
	if userID == 0 {
		return
	}

	if err := h.service.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		h.writeLookupError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "deleted"})
}

// ListMy godoc
// @Summary List my images
// @Tags Images
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /images [get]
func (h *Handler) ListMy(c *gin.Context) {
	userID := mustUserID(c)
	if userID == 0 {
		return
	}

	images, err := h.service.ListByUser(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, response.CodeInternal, "failed to list images")
		return
	}
	response.Success(c, http.StatusOK, images)
}

// ListBatch godoc
// @Summary List images stored from one drop
// @Tags Images
// @Produce json
// @Security BearerAuth
// @Param id path string true "Batch ID"
// @Success 200 {object} map[string]interface{}
// @Router /batches/{id}/images [get]
func (h *Handler) ListBatch(c *gin.Context) {
	userID := mustUserID(c)
	if userID == 0 {
		return
	}

	images, err := h.service.ListByBatch(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, response.CodeInternal, "failed to list images")
		return
	}
	response.Success(c, http.StatusOK, images)
}

func (h *Handler) writeLookupError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrImageNotFound):
		response.Error(c, http.StatusNotFound, response.CodeNotFound, "image not found")
	case errors.Is(err, ErrNotOwner):
		response.Error(c, http.StatusForbidden, response.CodeForbidden, err.Error())
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, response.CodeInternal, "request failed")
	}
}

func mustUserID(c *gin.Context) int64 {
	id, exists := c.Get("user_id")
	if !exists {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "unauthorized")
		return 0
	}
	switch v := id.(type) {
	case int64:
		return v
	case float64:
		return int64(v)
	}
	response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid user id")
	return 0
}
