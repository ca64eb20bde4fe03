package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"safiri/config"
	"safiri/internal/domain"
	"safiri/internal/middleware"
	"safiri/internal/models"
	"safiri/internal/repository"
	"safiri/internal/service"
	"safiri/pkg/payment"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CoinsHandler struct {
	cfg         *config.Config
	engine      *service.CoinEngine
	packageRepo *repository.CoinPackageRepository
	paymentRepo *repository.PaymentRepository
	gateway     payment.Provider
}

func NewCoinsHandler(
	cfg *config.Config,
	engine *service.CoinEngine,
	packageRepo *repository.CoinPackageRepository,
	paymentRepo *repository.PaymentRepository,
	gateway payment.Provider,
) *CoinsHandler {
	return &CoinsHandler{
		cfg:         cfg,
		engine:      engine,
		packageRepo: packageRepo,
		paymentRepo: paymentRepo,
		gateway:     gateway,
	}
}

// GetBalance handles GET /me/coins — ledger summary for the current user.
func (h *CoinsHandler) GetBalance(c *gin.Context) {
	userID := middleware.GetUserID(c)
	summary, err := h.engine.LedgerSummary(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "wallet error"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GetTransactions handles GET /me/coins/transactions, most recent first.
func (h *CoinsHandler) GetTransactions(c *gin.Context) {
	userID := middleware.GetUserID(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	txs, err := h.engine.History(userID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "history error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": txs})
}

// ListPackages handles GET /coins/packages.
func (h *CoinsHandler) ListPackages(c *gin.Context) {
	pkgs, err := h.packageRepo.ListActive()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"packages": pkgs, "coin_value_cents": domain.CoinValueCents})
}

// BuyPackage handles POST /coins/packages/:id/buy — charges through the
// gateway and credits the coins only after the charge succeeds.
func (h *CoinsHandler) BuyPackage(c *gin.Context) {
	userID := middleware.GetUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid package id"})
		return
	}
	pkg, err := h.packageRepo.GetByID(uint(id))
	if err != nil || !pkg.Active {
		c.JSON(http.StatusNotFound, gin.H{"error": "package not found"})
		return
	}

	ctx := c.Request.Context()
	resp, err := h.gateway.InitiatePayment(ctx, payment.Request{
		UserID:         userID,
		AmountCents:    pkg.PriceCents,
		Currency:       "KES",
		IdempotencyKey: uuid.NewString(),
		Description:    fmt.Sprintf("coin package %s", pkg.Name),
		ExpiresIn:      h.cfg.Payment.PaymentExpiry,
	})
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "payment initiation failed"})
		return
	}
	pay := &models.Payment{
		UserID:         userID,
		AmountCents:    pkg.PriceCents,
		Currency:       "KES",
		Provider:       "simulated",
		ProviderRef:    resp.Reference,
		Status:         domain.PaymentStatusPending,
		IdempotencyKey: uuid.NewString(),
		Description:    pkg.Name,
		ExpiresAt:      &resp.ExpiresAt,
	}
	if err := h.paymentRepo.Create(pay); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "payment record failed"})
		return
	}

	succeeded, err := h.gateway.VerifyPayment(ctx, resp.Reference)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "payment verification failed"})
		return
	}
	if !succeeded {
		pay.Status = domain.PaymentStatusFailed
		_ = h.paymentRepo.Update(pay)
		c.JSON(http.StatusPaymentRequired, gin.H{"error": "payment declined"})
		return
	}
	pay.Status = domain.PaymentStatusCompleted
	_ = h.paymentRepo.Update(pay)

	newBalance, err := h.engine.CreditPurchase(userID, pkg.Coins, resp.Reference)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "coin credit failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"package":     pkg,
		"coins_added": pkg.Coins,
		"new_balance": newBalance,
	})
}
