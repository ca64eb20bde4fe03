package handler

import (
	"net/http"

	"safiri/internal/middleware"
	"safiri/internal/repository"
	"safiri/internal/service"

	"github.com/gin-gonic/gin"
)

type MeHandler struct {
	userRepo *repository.UserRepository
	engine   *service.CoinEngine
}

func NewMeHandler(userRepo *repository.UserRepository, engine *service.CoinEngine) *MeHandler {
	return &MeHandler{userRepo: userRepo, engine: engine}
}

// GetProfile handles GET /me/profile — user details plus ledger summary.
func (h *MeHandler) GetProfile(c *gin.Context) {
	userID := middleware.GetUserID(c)
	u, err := h.userRepo.GetByID(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	summary, err := h.engine.LedgerSummary(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "wallet error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u, "coins": summary})
}
