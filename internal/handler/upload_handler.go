package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"safiri/internal/repository"
	"safiri/pkg/cloudinary"

	"github.com/gin-gonic/gin"
)

type UploadHandler struct {
	cloud    cloudinary.Client
	tripRepo *repository.TripRepository
}

func NewUploadHandler(cloud cloudinary.Client, tripRepo *repository.TripRepository) *UploadHandler {
	return &UploadHandler{cloud: cloud, tripRepo: tripRepo}
}

// UploadTripImage handles POST /admin/trips/:id/image — uploads a trip or
// tour photo and stores the delivery URL on the trip.
func (h *UploadHandler) UploadTripImage(c *gin.Context) {
	if h.cloud == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "media uploads not configured"})
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid trip id"})
		return
	}
	trip, err := h.tripRepo.GetByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "trip not found"})
		return
	}
	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read file"})
		return
	}
	defer file.Close()

	publicID := fmt.Sprintf("trip_%d", trip.ID)
	url, thumb, err := h.cloud.UploadImage(c.Request.Context(), file, "trips", publicID)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "upload failed"})
		return
	}
	trip.ImageURL = url
	if err := h.tripRepo.Update(trip); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "trip update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"image_url": url, "thumbnail_url": thumb})
}
