// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/verdantcare/wellness-backend/internal/config"
	"github.com/verdantcare/wellness-backend/internal/handlers"
	"github.com/verdantcare/wellness-backend/internal/middleware"
	"github.com/verdantcare/wellness-backend/internal/models"
	"github.com/verdantcare/wellness-backend/internal/seal"
	"github.com/verdantcare/wellness-backend/internal/services"
	"github.com/verdantcare/wellness-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Initialize services
	storageService, err := services.NewStorageService(cfg)
	if err != nil {
		logrus.Fatalf("Failed to initialize storage service: %v", err)
	}
	sealEncoder := newSealEncoder(cfg)

	authService := services.NewAuthService(db, cfg)
	productService := services.NewProductService(db)
	reviewService := services.NewReviewService(db, productService, sealEncoder, storageService)
	checkinService := services.NewCheckinService(db)
	analyticsService := services.NewAnalyticsService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	productHandler := handlers.NewProductHandler(productService, analyticsService)
	checkinHandler := handlers.NewCheckinHandler(checkinService, analyticsService)
	adminHandler := handlers.NewAdminHandler(reviewService)
	verificationHandler := handlers.NewVerificationHandler(reviewService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS())
	r.Use(middleware.I18nMiddleware())
	r.Use(middleware.GeneralRateLimit())
	r.Use(middleware.AuditLogMiddleware(db))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.GET("/me", middleware.AuthRequired(), authHandler.GetProfile)
		}

		// Product catalog routes
		products := v1.Group("/products")
		{
			products.GET("", middleware.OptionalAuth(), productHandler.List)
			products.GET("/:id", middleware.OptionalAuth(), productHandler.Get)
			products.GET("/:id/rollup", middleware.OptionalAuth(), productHandler.Rollup)

			// Authenticated routes
			protected := products.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.POST("", protectedSubmitter(), productHandler.Submit)
				protected.POST("/:id/enrich", productHandler.Enrich)
			}
		}

		// Check-in routes (patients only)
		checkins := v1.Group("/checkins")
		checkins.Use(middleware.AuthRequired(), middleware.RoleRequired(models.UserTypePatient))
		{
			checkins.POST("", middleware.CheckinRateLimit(), checkinHandler.Append)
			checkins.GET("/latest", checkinHandler.Latest)
			checkins.GET("/history", checkinHandler.History)
			checkins.GET("/series", checkinHandler.Series)
		}

		// Verification routes (public)
		verify := v1.Group("/verify")
		{
			verify.GET("/:hash", verificationHandler.VerifySeal)
		}

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			review := admin.Group("/review")
			{
				review.GET("", adminHandler.ListReviewQueue)
				review.POST("/:id/decide", adminHandler.Decide)
			}

			dashboard := admin.Group("/dashboard")
			{
				dashboard.GET("/stats", adminHandler.DashboardStats)
			}
		}
	}

	return r
}

func newSealEncoder(cfg *config.Config) *seal.Encoder {
	sealCfg := seal.DefaultConfig()
	if cfg.Seal.SilhouetteScale > 0 {
		sealCfg.SilhouetteScale = cfg.Seal.SilhouetteScale
	}
	if cfg.Seal.MaxRelocatedFraction > 0 {
		sealCfg.MaxRelocatedFraction = cfg.Seal.MaxRelocatedFraction
	}
	if cfg.Seal.CellPixels > 0 {
		sealCfg.CellPixels = cfg.Seal.CellPixels
	}
	return seal.NewEncoder(sealCfg)
}

// protectedSubmitter limits submission to patients and enterprises; admins
// review, they do not submit.
func protectedSubmitter() gin.HandlerFunc {
	return middleware.RoleRequired(models.UserTypePatient, models.UserTypeEnterprise)
}
