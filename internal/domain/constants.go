package domain

const (
	RoleClient = "CLIENT"
	RoleAdmin  = "ADMIN"
)

const (
	TripModeBus    = "BUS"
	TripModeTrain  = "TRAIN"
	TripModeFlight = "FLIGHT"
	TripModeTour   = "TOUR"
)

const (
	TripStatusScheduled = "SCHEDULED"
	TripStatusBoarding  = "BOARDING"
	TripStatusDelayed   = "DELAYED"
	TripStatusDeparted  = "DEPARTED"
	TripStatusCancelled = "CANCELLED"
)

// PROCESSING is the single-flight claim taken while a payment is being
// verified; only one request can move a booking PENDING -> PROCESSING.
const (
	BookingStatusPending    = "PENDING"
	BookingStatusProcessing = "PROCESSING"
	BookingStatusConfirmed  = "CONFIRMED"
	BookingStatusFailed     = "FAILED"
	BookingStatusCancelled  = "CANCELLED"
)

const (
	PaymentStatusPending   = "PENDING"
	PaymentStatusCompleted = "COMPLETED"
	PaymentStatusFailed    = "FAILED"
	PaymentStatusRefunded  = "REFUNDED"
	PaymentStatusExpired   = "EXPIRED"
)

// Coin transaction kinds. A booking gets at most one EARNED and one SPENT
// row; REVOKED/REFUNDED offset them on cancellation. PURCHASED rows come
// from coin package top-ups and carry no booking.
const (
	CoinTxEarned    = "EARNED"
	CoinTxSpent     = "SPENT"
	CoinTxRefunded  = "REFUNDED"
	CoinTxRevoked   = "REVOKED"
	CoinTxPurchased = "PURCHASED"
)

// CoinValueCents is the redemption rate: one coin knocks 50 cents off a
// booking's payable price.
const CoinValueCents int64 = 50

var TripModes = []string{TripModeBus, TripModeTrain, TripModeFlight, TripModeTour}

var TripStatuses = []string{TripStatusScheduled, TripStatusBoarding, TripStatusDelayed, TripStatusDeparted, TripStatusCancelled}
