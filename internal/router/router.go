package router

import (
	"time"

	"safiri/config"
	"safiri/internal/handler"
	"safiri/internal/middleware"
	"safiri/internal/repository"
	"safiri/internal/service"
	"safiri/internal/ws"
	"safiri/pkg/cloudinary"
	"safiri/pkg/payment"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, db *gorm.DB, rdb *redis.Client, cloud cloudinary.Client, gateway payment.Provider) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(middleware.NewInMemoryRateLimiter(100, 60*time.Second)))

	// Repositories
	userRepo := repository.NewUserRepository(db)
	tripRepo := repository.NewTripRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	packageRepo := repository.NewCoinPackageRepository(db)
	coinRepo := repository.NewCoinRepository(db)
	adminRepo := repository.NewAdminRepository(db)

	boardHub := ws.NewBoardHub()

	// Services
	authSvc := service.NewAuthService(cfg, userRepo)
	tripSvc := service.NewTripService(&cfg.Redis, tripRepo, rdb)
	engine := service.NewCoinEngine(coinRepo)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc)
	meHandler := handler.NewMeHandler(userRepo, engine)
	tripHandler := handler.NewTripHandler(tripSvc)
	bookingHandler := handler.NewBookingHandler(cfg, bookingRepo, tripRepo, paymentRepo, engine, gateway)
	coinsHandler := handler.NewCoinsHandler(cfg, engine, packageRepo, paymentRepo, gateway)
	adminHandler := handler.NewAdminHandler(adminRepo, tripRepo, tripSvc, packageRepo, engine, boardHub)
	uploadHandler := handler.NewUploadHandler(cloud, tripRepo)

	authMw := middleware.AuthRequired(&cfg.JWT)

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
			authGroup.PATCH("/change-password", authMw, authHandler.ChangePassword)
		}

		api.GET("/cities", tripHandler.ListCities)
		api.GET("/trips", tripHandler.Search)
		api.GET("/trips/:id", tripHandler.Get)
		api.GET("/coins/packages", coinsHandler.ListPackages)

		me := api.Group("/me")
		me.Use(authMw)
		{
			me.GET("/profile", meHandler.GetProfile)
			me.GET("/bookings", bookingHandler.ListMine)
			me.GET("/coins", coinsHandler.GetBalance)
			me.GET("/coins/transactions", coinsHandler.GetTransactions)
		}

		api.POST("/bookings/quote", authMw, bookingHandler.Quote)
		api.POST("/bookings", authMw, bookingHandler.Create)
		api.GET("/bookings/:id", authMw, bookingHandler.Get)
		api.GET("/bookings/ref/:ref", authMw, bookingHandler.GetByRef)
		api.POST("/bookings/:id/pay", authMw, bookingHandler.Pay)
		api.POST("/bookings/:id/cancel", authMw, bookingHandler.Cancel)
		api.POST("/coins/packages/:id/buy", authMw, coinsHandler.BuyPackage)

		admin := api.Group("/admin")
		admin.Use(authMw, middleware.AdminRequired())
		{
			admin.GET("/dashboard", adminHandler.Dashboard)
			admin.GET("/users", adminHandler.ListUsers)
			admin.GET("/users/:id/ledger", adminHandler.GetUserLedger)
			admin.POST("/trips", adminHandler.CreateTrip)
			admin.PUT("/trips/:id", adminHandler.UpdateTrip)
			admin.DELETE("/trips/:id", adminHandler.DeleteTrip)
			admin.PATCH("/trips/:id/status", adminHandler.UpdateTripStatus)
			admin.POST("/trips/:id/image", uploadHandler.UploadTripImage)
			admin.GET("/coin-packages", adminHandler.ListPackages)
			admin.POST("/coin-packages", adminHandler.CreatePackage)
			admin.PUT("/coin-packages/:id", adminHandler.UpdatePackage)
			admin.DELETE("/coin-packages/:id", adminHandler.DeletePackage)
		}
	}

	r.GET("/ws/board", ws.UpgradeBoardWS(&cfg.JWT, boardHub))

	return r
}
