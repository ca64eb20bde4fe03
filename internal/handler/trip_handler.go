package handler

import (
	"net/http"
	"strconv"
	"time"

	"safiri/internal/repository"
	"safiri/internal/service"

	"github.com/gin-gonic/gin"
)

type TripHandler struct {
	tripSvc *service.TripService
}

func NewTripHandler(tripSvc *service.TripService) *TripHandler {
	return &TripHandler{tripSvc: tripSvc}
}

// Search handles GET /trips?mode=&from=&to=&date=&limit=&offset=.
func (h *TripHandler) Search(c *gin.Context) {
	f := repository.TripSearch{Mode: c.Query("mode")}
	if v, err := strconv.ParseUint(c.Query("from"), 10, 64); err == nil {
		f.FromCity = uint(v)
	}
	if v, err := strconv.ParseUint(c.Query("to"), 10, 64); err == nil {
		f.ToCity = uint(v)
	}
	if d, err := time.Parse("2006-01-02", c.Query("date")); err == nil {
		f.Date = d
	}
	f.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	f.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))

	trips, err := h.tripSvc.Search(c.Request.Context(), f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"trips": trips})
}

func (h *TripHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid trip id"})
		return
	}
	trip, err := h.tripSvc.GetByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "trip not found"})
		return
	}
	c.JSON(http.StatusOK, trip)
}

func (h *TripHandler) ListCities(c *gin.Context) {
	cities, err := h.tripSvc.ListCities()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cities": cities})
}
