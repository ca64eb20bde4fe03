package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"safiri/config"
	"safiri/internal/domain"
	"safiri/internal/middleware"
	"safiri/internal/models"
	"safiri/internal/repository"
	"safiri/internal/service"
	"safiri/pkg/payment"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BookingHandler struct {
	cfg         *config.Config
	bookingRepo *repository.BookingRepository
	tripRepo    *repository.TripRepository
	paymentRepo *repository.PaymentRepository
	engine      *service.CoinEngine
	gateway     payment.Provider
}

func NewBookingHandler(
	cfg *config.Config,
	bookingRepo *repository.BookingRepository,
	tripRepo *repository.TripRepository,
	paymentRepo *repository.PaymentRepository,
	engine *service.CoinEngine,
	gateway payment.Provider,
) *BookingHandler {
	return &BookingHandler{
		cfg:         cfg,
		bookingRepo: bookingRepo,
		tripRepo:    tripRepo,
		paymentRepo: paymentRepo,
		engine:      engine,
		gateway:     gateway,
	}
}

type passengerInput struct {
	FullName   string `json:"full_name" binding:"required"`
	Age        int    `json:"age" binding:"required,min=0,max=130"`
	IDNumber   string `json:"id_number"`
	SeatNumber string `json:"seat_number"`
}

// Quote handles POST /bookings/quote — a non-binding server-side preview of
// discount, redemption, and coins earned. The engine re-validates everything
// at payment time; the client never computes money.
func (h *BookingHandler) Quote(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req struct {
		TripID        uint   `json:"trip_id" binding:"required"`
		Tier          string `json:"tier" binding:"required"`
		CoinsToRedeem int64  `json:"coins_to_redeem"`
		Seats         int    `json:"seats"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	tier, ok := domain.TierByName(req.Tier)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown discount tier"})
		return
	}
	trip, err := h.tripRepo.GetByID(req.TripID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "trip not found"})
		return
	}
	seats := req.Seats
	if seats < 1 {
		seats = 1
	}
	w, err := h.engine.Balance(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "wallet error"})
		return
	}
	quote := service.BuildQuote(tier, w.Balance, w.BookingCount, trip.PriceCents*int64(seats), req.CoinsToRedeem)
	c.JSON(http.StatusOK, quote)
}

// Create handles POST /bookings — records the booking and a pending payment.
// No ledger change happens here; coins move only after the gateway reports a
// definitive success in Pay.
func (h *BookingHandler) Create(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req struct {
		TripID        uint             `json:"trip_id" binding:"required"`
		Tier          string           `json:"tier" binding:"required"`
		CoinsToRedeem int64            `json:"coins_to_redeem" binding:"min=0"`
		Passengers    []passengerInput `json:"passengers" binding:"required,min=1,dive"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	tier, ok := domain.TierByName(req.Tier)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown discount tier"})
		return
	}
	trip, err := h.tripRepo.GetByID(req.TripID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "trip not found"})
		return
	}
	if trip.Status != domain.TripStatusScheduled && trip.Status != domain.TripStatusBoarding {
		c.JSON(http.StatusConflict, gin.H{"error": "trip is not open for booking"})
		return
	}
	if trip.SeatsAvailable < len(req.Passengers) {
		c.JSON(http.StatusConflict, gin.H{"error": "not enough seats available"})
		return
	}

	w, err := h.engine.Balance(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "wallet error"})
		return
	}
	if !tier.IsEligible(w.Balance) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not eligible for this tier yet"})
		return
	}
	quote := service.BuildQuote(tier, w.Balance, w.BookingCount, trip.PriceCents*int64(len(req.Passengers)), req.CoinsToRedeem)
	if quote.InsufficientCoins {
		c.JSON(http.StatusBadRequest, gin.H{"error": "coins to redeem exceed balance"})
		return
	}
	if req.CoinsToRedeem > domain.MaxRedeemableByPrice(quote.DiscountedCents) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "redemption exceeds booking price"})
		return
	}

	resp, err := h.gateway.InitiatePayment(c.Request.Context(), payment.Request{
		UserID:         userID,
		AmountCents:    quote.PayableCents,
		Currency:       "KES",
		IdempotencyKey: uuid.NewString(),
		Description:    "booking " + trip.Operator,
		ExpiresIn:      h.cfg.Payment.PaymentExpiry,
	})
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "payment initiation failed"})
		return
	}
	pay := &models.Payment{
		UserID:         userID,
		AmountCents:    quote.PayableCents,
		Currency:       "KES",
		Provider:       "simulated",
		ProviderRef:    resp.Reference,
		Status:         domain.PaymentStatusPending,
		IdempotencyKey: uuid.NewString(),
		Description:    "trip booking",
		ExpiresAt:      &resp.ExpiresAt,
	}
	if err := h.paymentRepo.Create(pay); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "payment record failed"})
		return
	}

	booking := &models.Booking{
		Ref:            uuid.NewString(),
		UserID:         userID,
		TripID:         trip.ID,
		Status:         domain.BookingStatusPending,
		BasePriceCents: quote.BasePriceCents,
		DiscountTier:   tier.Name,
		DiscountCents:  quote.DiscountCents,
		CoinsRedeemed:  req.CoinsToRedeem,
		PayableCents:   quote.PayableCents,
		PaymentID:      &pay.ID,
	}
	for _, p := range req.Passengers {
		booking.Passengers = append(booking.Passengers, models.Passenger{
			FullName:   p.FullName,
			Age:        p.Age,
			IDNumber:   p.IDNumber,
			SeatNumber: p.SeatNumber,
		})
	}
	if err := h.bookingRepo.Create(booking); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "booking create failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"booking":           booking,
		"payment_reference": resp.Reference,
		"quote":             quote,
	})
}

// Pay handles POST /bookings/:id/pay — verifies the charge with the gateway
// and, only on a definitive success signal, applies the ledger outcome
// exactly once and confirms the booking. The booking is first claimed with a
// conditional PENDING -> PROCESSING transition so two concurrent attempts
// cannot both verify the charge or reserve seats; the booking is never marked
// CONFIRMED when the engine step fails.
func (h *BookingHandler) Pay(c *gin.Context) {
	userID := middleware.GetUserID(c)
	booking, ok := h.loadOwnBooking(c, userID)
	if !ok {
		return
	}
	switch booking.Status {
	case domain.BookingStatusPending:
	case domain.BookingStatusConfirmed:
		// retry after success: the engine returns the recorded outcome
		out, err := h.engine.ApplyBookingOutcome(userID, booking.ID, booking.BasePriceCents-booking.DiscountCents, mustTier(booking.DiscountTier), booking.CoinsRedeemed)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "ledger error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"booking": booking, "new_balance": out.NewBalance, "coins_awarded": out.CoinsAwarded})
		return
	default:
		c.JSON(http.StatusConflict, gin.H{"error": "booking is not payable"})
		return
	}
	if booking.PaymentID == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "booking has no payment"})
		return
	}
	claimed, err := h.bookingRepo.TransitionStatus(booking.ID, domain.BookingStatusPending, domain.BookingStatusProcessing)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "booking update failed"})
		return
	}
	if !claimed {
		// another request holds the claim or already settled the booking
		c.JSON(http.StatusConflict, gin.H{"error": "payment already in progress"})
		return
	}
	booking.Status = domain.BookingStatusProcessing
	pay, err := h.paymentRepo.GetByID(*booking.PaymentID)
	if err != nil {
		h.releaseClaim(booking)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "payment lookup failed"})
		return
	}
	if pay.ExpiresAt != nil && time.Now().After(*pay.ExpiresAt) {
		pay.Status = domain.PaymentStatusExpired
		_ = h.paymentRepo.Update(pay)
		booking.Status = domain.BookingStatusFailed
		_ = h.bookingRepo.Update(booking)
		c.JSON(http.StatusConflict, gin.H{"error": "payment window expired"})
		return
	}

	succeeded, err := h.gateway.VerifyPayment(c.Request.Context(), pay.ProviderRef)
	if err != nil {
		// no definitive signal (gateway error or client gone): release the
		// claim so a later attempt can retry, ledger untouched
		h.releaseClaim(booking)
		c.JSON(http.StatusBadGateway, gin.H{"error": "payment verification failed"})
		return
	}
	if !succeeded {
		pay.Status = domain.PaymentStatusFailed
		_ = h.paymentRepo.Update(pay)
		booking.Status = domain.BookingStatusFailed
		_ = h.bookingRepo.Update(booking)
		c.JSON(http.StatusPaymentRequired, gin.H{"error": "payment declined", "booking": booking})
		return
	}
	now := time.Now()
	pay.Status = domain.PaymentStatusCompleted
	pay.CompletedAt = &now
	if err := h.paymentRepo.Update(pay); err != nil {
		h.releaseClaim(booking)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "payment update failed"})
		return
	}

	seats := len(booking.Passengers)
	if seats == 0 {
		seats = 1
	}
	if err := h.tripRepo.ReserveSeats(booking.TripID, seats); err != nil {
		if errors.Is(err, repository.ErrNoSeats) {
			h.failBooking(booking, pay)
			c.JSON(http.StatusConflict, gin.H{"error": "trip sold out during payment"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "seat reservation failed"})
		return
	}

	out, err := h.engine.ApplyBookingOutcome(userID, booking.ID, booking.BasePriceCents-booking.DiscountCents, mustTier(booking.DiscountTier), booking.CoinsRedeemed)
	if err != nil {
		_ = h.tripRepo.ReleaseSeats(booking.TripID, seats)
		h.failBooking(booking, pay)
		switch {
		case errors.Is(err, service.ErrInsufficientCoins):
			c.JSON(http.StatusConflict, gin.H{"error": "coins to redeem exceed balance"})
		case errors.Is(err, service.ErrInvalidRedemption):
			c.JSON(http.StatusConflict, gin.H{"error": "redemption exceeds booking price"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "ledger application failed"})
		}
		return
	}

	booking.Status = domain.BookingStatusConfirmed
	booking.CoinsRedeemed = out.CoinsRedeemed
	booking.CoinsAwarded = out.CoinsAwarded
	if err := h.bookingRepo.Update(booking); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "booking update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"booking":       booking,
		"new_balance":   out.NewBalance,
		"coins_awarded": out.CoinsAwarded,
	})
}

// Cancel handles POST /bookings/:id/cancel — reverses exactly the coins this
// booking moved, returns the seats, and marks the booking cancelled.
func (h *BookingHandler) Cancel(c *gin.Context) {
	userID := middleware.GetUserID(c)
	booking, ok := h.loadOwnBooking(c, userID)
	if !ok {
		return
	}
	now := time.Now()
	switch booking.Status {
	case domain.BookingStatusPending:
		booking.Status = domain.BookingStatusCancelled
		booking.CancelledAt = &now
		if err := h.bookingRepo.Update(booking); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "cancel failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"booking": booking})
		return
	case domain.BookingStatusConfirmed:
	default:
		c.JSON(http.StatusConflict, gin.H{"error": "booking cannot be cancelled"})
		return
	}

	newBalance, err := h.engine.ReverseBookingOutcome(booking.ID)
	if err != nil && !errors.Is(err, service.ErrNothingToReverse) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "ledger reversal failed"})
		return
	}
	seats := len(booking.Passengers)
	if seats == 0 {
		seats = 1
	}
	_ = h.tripRepo.ReleaseSeats(booking.TripID, seats)
	if booking.PaymentID != nil {
		if pay, err := h.paymentRepo.GetByID(*booking.PaymentID); err == nil {
			pay.Status = domain.PaymentStatusRefunded
			_ = h.paymentRepo.Update(pay)
		}
	}
	booking.Status = domain.BookingStatusCancelled
	booking.CancelledAt = &now
	if err := h.bookingRepo.Update(booking); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cancel failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking, "new_balance": newBalance})
}

// GetByRef handles GET /bookings/ref/:ref — ticket lookup by the booking
// reference printed on the ticket.
func (h *BookingHandler) GetByRef(c *gin.Context) {
	userID := middleware.GetUserID(c)
	booking, err := h.bookingRepo.GetByRef(c.Param("ref"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
		return
	}
	if booking.UserID != userID && middleware.GetRole(c) != domain.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	c.JSON(http.StatusOK, booking)
}

func (h *BookingHandler) Get(c *gin.Context) {
	userID := middleware.GetUserID(c)
	booking, ok := h.loadOwnBooking(c, userID)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, booking)
}

func (h *BookingHandler) ListMine(c *gin.Context) {
	userID := middleware.GetUserID(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	bookings, err := h.bookingRepo.ListByUser(userID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

func (h *BookingHandler) loadOwnBooking(c *gin.Context, userID uint) (*models.Booking, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return nil, false
	}
	booking, err := h.bookingRepo.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "booking lookup failed"})
		}
		return nil, false
	}
	if booking.UserID != userID && middleware.GetRole(c) != domain.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return nil, false
	}
	return booking, true
}

// releaseClaim hands a PROCESSING booking back to PENDING after a transient
// failure, so a later Pay attempt can claim it again.
func (h *BookingHandler) releaseClaim(booking *models.Booking) {
	if ok, err := h.bookingRepo.TransitionStatus(booking.ID, domain.BookingStatusProcessing, domain.BookingStatusPending); err == nil && ok {
		booking.Status = domain.BookingStatusPending
	}
}

func (h *BookingHandler) failBooking(booking *models.Booking, pay *models.Payment) {
	booking.Status = domain.BookingStatusFailed
	_ = h.bookingRepo.Update(booking)
	pay.Status = domain.PaymentStatusRefunded
	_ = h.paymentRepo.Update(pay)
}

// mustTier resolves a tier name persisted on a booking; bookings are only
// created with validated tiers, so a miss falls back to regular.
func mustTier(name string) domain.Tier {
	if t, ok := domain.TierByName(name); ok {
		return t
	}
	t, _ := domain.TierByName(domain.TierRegular)
	return t
}
