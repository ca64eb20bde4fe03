package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"safiri/internal/domain"
	"safiri/internal/models"
	"safiri/internal/repository"
	"safiri/internal/service"
	"safiri/internal/ws"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	adminRepo   *repository.AdminRepository
	tripRepo    *repository.TripRepository
	tripSvc     *service.TripService
	packageRepo *repository.CoinPackageRepository
	engine      *service.CoinEngine
	boardHub    *ws.BoardHub
}

func NewAdminHandler(
	adminRepo *repository.AdminRepository,
	tripRepo *repository.TripRepository,
	tripSvc *service.TripService,
	packageRepo *repository.CoinPackageRepository,
	engine *service.CoinEngine,
	boardHub *ws.BoardHub,
) *AdminHandler {
	return &AdminHandler{
		adminRepo:   adminRepo,
		tripRepo:    tripRepo,
		tripSvc:     tripSvc,
		packageRepo: packageRepo,
		engine:      engine,
		boardHub:    boardHub,
	}
}

// Dashboard handles GET /admin/dashboard — overview stats.
func (h *AdminHandler) Dashboard(c *gin.Context) {
	stats, err := h.adminRepo.GetDashboardStats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ListUsers handles GET /admin/users.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	search := c.Query("search")
	page, limit := parsePagination(c)
	users, total, err := h.adminRepo.ListUsers(search, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list users"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": users, "total": total, "page": page, "limit": limit})
}

// GetUserLedger handles GET /admin/users/:id/ledger — summary plus history.
func (h *AdminHandler) GetUserLedger(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	summary, err := h.engine.LedgerSummary(uint(id))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "ledger error"})
		return
	}
	page, limit := parsePagination(c)
	history, err := h.engine.History(uint(id), limit, (page-1)*limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "history error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": summary, "transactions": history})
}

type tripInput struct {
	Mode              string    `json:"mode" binding:"required,oneof=BUS TRAIN FLIGHT TOUR"`
	Operator          string    `json:"operator" binding:"required"`
	OriginCityID      uint      `json:"origin_city_id" binding:"required"`
	DestinationCityID uint      `json:"destination_city_id" binding:"required"`
	DepartAt          time.Time `json:"depart_at" binding:"required"`
	ArriveAt          time.Time `json:"arrive_at" binding:"required"`
	PriceCents        int64     `json:"price_cents" binding:"required,min=1"`
	SeatsTotal        int       `json:"seats_total" binding:"required,min=1"`
}

// CreateTrip handles POST /admin/trips.
func (h *AdminHandler) CreateTrip(c *gin.Context) {
	var req tripInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	trip := &models.Trip{
		Mode:              req.Mode,
		Operator:          req.Operator,
		OriginCityID:      req.OriginCityID,
		DestinationCityID: req.DestinationCityID,
		DepartAt:          req.DepartAt,
		ArriveAt:          req.ArriveAt,
		PriceCents:        req.PriceCents,
		SeatsTotal:        req.SeatsTotal,
		SeatsAvailable:    req.SeatsTotal,
		Status:            domain.TripStatusScheduled,
	}
	if err := h.tripRepo.Create(trip); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	h.tripSvc.InvalidateSearchCache(c.Request.Context())
	c.JSON(http.StatusCreated, trip)
}

// UpdateTrip handles PUT /admin/trips/:id.
func (h *AdminHandler) UpdateTrip(c *gin.Context) {
	trip, ok := h.loadTrip(c)
	if !ok {
		return
	}
	var req tripInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sold := trip.SeatsTotal - trip.SeatsAvailable
	if req.SeatsTotal < sold {
		c.JSON(http.StatusConflict, gin.H{"error": "seats_total below seats already sold"})
		return
	}
	trip.Mode = req.Mode
	trip.Operator = req.Operator
	trip.OriginCityID = req.OriginCityID
	trip.DestinationCityID = req.DestinationCityID
	trip.DepartAt = req.DepartAt
	trip.ArriveAt = req.ArriveAt
	trip.PriceCents = req.PriceCents
	trip.SeatsAvailable = req.SeatsTotal - sold
	trip.SeatsTotal = req.SeatsTotal
	if err := h.tripRepo.Update(trip); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	h.tripSvc.InvalidateSearchCache(c.Request.Context())
	c.JSON(http.StatusOK, trip)
}

// DeleteTrip handles DELETE /admin/trips/:id.
func (h *AdminHandler) DeleteTrip(c *gin.Context) {
	trip, ok := h.loadTrip(c)
	if !ok {
		return
	}
	if err := h.tripRepo.Delete(trip.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	h.tripSvc.InvalidateSearchCache(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"message": "trip deleted"})
}

// UpdateTripStatus handles PATCH /admin/trips/:id/status and pushes the
// change to the live departures board.
func (h *AdminHandler) UpdateTripStatus(c *gin.Context) {
	trip, ok := h.loadTrip(c)
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status" binding:"required,oneof=SCHEDULED BOARDING DELAYED DEPARTED CANCELLED"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.tripRepo.UpdateStatus(trip.ID, req.Status); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "status update failed"})
		return
	}
	route := fmt.Sprintf("%s - %s", trip.OriginCity.Name, trip.DestinationCity.Name)
	h.boardHub.UpdateStatus(trip.ID, trip.Mode, trip.Operator, route, req.Status, trip.DepartAt)
	h.tripSvc.InvalidateSearchCache(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"trip_id": trip.ID, "status": req.Status})
}

type packageInput struct {
	Name       string `json:"name" binding:"required"`
	Coins      int64  `json:"coins" binding:"required,min=1"`
	PriceCents int64  `json:"price_cents" binding:"required,min=1"`
	Active     bool   `json:"active"`
}

// ListPackages handles GET /admin/coin-packages (inactive included).
func (h *AdminHandler) ListPackages(c *gin.Context) {
	pkgs, err := h.packageRepo.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"packages": pkgs})
}

// CreatePackage handles POST /admin/coin-packages.
func (h *AdminHandler) CreatePackage(c *gin.Context) {
	var req packageInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	pkg := &models.CoinPackage{Name: req.Name, Coins: req.Coins, PriceCents: req.PriceCents, Active: req.Active}
	if err := h.packageRepo.Create(pkg); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusCreated, pkg)
}

// UpdatePackage handles PUT /admin/coin-packages/:id.
func (h *AdminHandler) UpdatePackage(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid package id"})
		return
	}
	pkg, err := h.packageRepo.GetByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "package not found"})
		return
	}
	var req packageInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	pkg.Name = req.Name
	pkg.Coins = req.Coins
	pkg.PriceCents = req.PriceCents
	pkg.Active = req.Active
	if err := h.packageRepo.Update(pkg); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, pkg)
}

// DeletePackage handles DELETE /admin/coin-packages/:id.
func (h *AdminHandler) DeletePackage(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid package id"})
		return
	}
	if err := h.packageRepo.Delete(uint(id)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "package deleted"})
}

func (h *AdminHandler) loadTrip(c *gin.Context) (*models.Trip, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid trip id"})
		return nil, false
	}
	trip, err := h.tripRepo.GetByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "trip not found"})
		return nil, false
	}
	return trip, true
}

func parsePagination(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}
