package router

import (
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/vivekdhawan/gravimetry-api/database"
	"github.com/vivekdhawan/gravimetry-api/handlers"
	auth_handlers "github.com/vivekdhawan/gravimetry-api/handlers/auth"
	gravity_handlers "github.com/vivekdhawan/gravimetry-api/handlers/gravity"
	"github.com/vivekdhawan/gravimetry-api/utils/auth"
	"github.com/vivekdhawan/gravimetry-api/utils/cache"
	"github.com/vivekdhawan/gravimetry-api/utils/middleware"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, store database.Storage, redisCache *cache.RedisCache, revoked auth.RevocationSet) {
	// Get JWT secret from environment
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}

	jwtIssuer := os.Getenv("JWT_ISSUER")
	if jwtIssuer == "" {
		jwtIssuer = "gravimetry-api"
	}

	// Initialize JWT manager with config
	jwtManager := auth.NewJWTManager(auth.JWTConfig{
		Secret: jwtSecret,
		Expiry: auth.AccessTokenExpiry,
		Issuer: jwtIssuer,
	})

	// Get DB instance (type assert from interface)
	db, ok := store.GetDB().(*gorm.DB)
	if !ok {
		log.Fatal("Failed to get GORM DB instance")
	}

	// Initialize brute force protection
	var bruteForceProtection *middleware.BruteForceProtection
	if redisCache != nil {
		bruteForceProtection = middleware.NewBruteForceProtection(redisCache)
	}

	// Initialize auth middleware with revocation checking
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, revoked, db)

	// Initialize handlers
	authHandler := auth_handlers.NewAuthHandler(db, jwtManager, revoked, bruteForceProtection)
	gravityHandler := gravity_handlers.NewGravityHandler(db)
	earthquakeHandler := gravity_handlers.NewEarthquakeHandler(db)

	// Apply security middleware
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000,http://localhost:8000"
	}

	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    allowedOrigins,
		RateLimitRequests: 100,             // 100 requests
		RateLimitWindow:   1 * time.Minute, // per minute
	})

	// Health check endpoint (public)
	app.Get("/ping", handlers.HandleCheckHealth(store))

	// User routes
	users := app.Group("/users")
	users.Post("/signup", authHandler.Signup)

	// Token issuance with brute force protection
	if bruteForceProtection != nil {
		users.Post("/token", bruteForceProtection.CheckAndRecordAttempt(), authHandler.Login)
	} else {
		users.Post("/token", authHandler.Login)
	}

	users.Post("/password-reset-request", authHandler.RequestPasswordReset)
	users.Post("/password-reset", authHandler.ResetPassword)
	users.Post("/request-email-verification", authHandler.RequestEmailVerification)
	users.Post("/verify-email", authHandler.VerifyEmail)

	// Protected user routes
	users.Post("/logout", authMiddleware.Required(), authHandler.Logout)
	users.Get("/me", authMiddleware.Required(), authHandler.GetProfile)
	users.Put("/me", authMiddleware.Required(), authHandler.UpdateProfile)
	users.Get("/", authMiddleware.Required(), authHandler.ListUsers)

	// Gravity routes (all protected - require authentication)
	gravity := app.Group("/gravity", authMiddleware.Required())

	// Dataset lifecycle
	gravity.Post("/upload-data", gravityHandler.Upload)
	gravity.Get("/data", gravityHandler.Data)
	gravity.Post("/clear-data", gravityHandler.Clear)

	// Derived quantities
	gravity.Get("/bouguer-anomaly", gravityHandler.Bouguer)
	gravity.Get("/distance-from-point", gravityHandler.Distance)

	// Model-driven analysis
	gravity.Get("/kmeans-clusters", gravityHandler.Clusters)
	gravity.Get("/anomaly-detection", gravityHandler.Anomalies)

	// Map visualizations
	gravity.Get("/plot-map-bouguer", gravityHandler.MapBouguer)
	gravity.Get("/plot-map-anomaly", gravityHandler.MapAnomaly)
	gravity.Get("/plot-map-clusters", gravityHandler.MapClusters)
	gravity.Get("/interpolate-gravity", gravityHandler.Interpolate)

	// Earthquake catalog
	gravity.Post("/earthquakes", earthquakeHandler.Query)
}
