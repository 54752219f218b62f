package app

import (
	"fmt"
	"log"
	"os"

	"github.com/vivekdhawan/gravimetry-api/api"
	"github.com/vivekdhawan/gravimetry-api/config"
	"github.com/vivekdhawan/gravimetry-api/database"
	"github.com/vivekdhawan/gravimetry-api/router"
	"github.com/vivekdhawan/gravimetry-api/services/cron"
	"github.com/vivekdhawan/gravimetry-api/utils/auth"
	"github.com/vivekdhawan/gravimetry-api/utils/cache"
	"gorm.io/gorm"
)

func SetupAndRunServer() error {

	// Load ENV
	if err := config.LoadENV(); err != nil {
		return err
	}

	getEnv, err := config.Get()
	if err != nil {
		return err
	}

	// Initialize GORM database connection
	store, err := database.StartGORM()
	if err != nil {
		log.Println("Check whether Postgres is running and DB_* variables are set")
		return err
	}

	if err := store.Init(); err != nil {
		log.Println("Error running migrations:", err)
		return err
	}

	// Initialize Redis cache for brute force protection and token revocation
	redisURL := getEnv.REDIS_URL
	if redisURL == "" {
		redisURL = "redis://localhost:6379/0"
	}

	redisCache, err := cache.NewRedisCache(redisURL)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v. Brute force protection will be disabled and token revocation will be in-memory only.", err)
		redisCache = nil
	}

	// Revoked tokens live in Redis when available so revocation survives
	// restarts; otherwise fall back to the in-process set.
	var revoked auth.RevocationSet
	if redisCache != nil {
		revoked = auth.NewRedisRevocationSet(redisCache)
	} else {
		revoked = auth.NewMemoryRevocationSet()
	}

	// Initialize Cron Manager (only if enabled via environment variable)
	var cronManager *cron.CronManager
	if os.Getenv("CRON_ENABLED") != "false" { // Default to enabled
		db, ok := store.GetDB().(*gorm.DB)
		if !ok {
			log.Println("Warning: Failed to get database connection for cron jobs")
		} else {
			// Cron prunes the same revocation backend the router serves from
			cronManager = cron.NewCronManager(db, revoked)
			if err := cronManager.Start(); err != nil {
				log.Println("Warning: Failed to start cron jobs:", err)
				// Don't fail the app, just log the warning
			}
		}
	}

	// Defer Closing DB and stopping cron jobs
	defer func() {
		if cronManager != nil {
			cronManager.Stop()
		}
		store.Close()
	}()

	// Init API
	var server *api.APIServer = api.NewAPIServer(fmt.Sprintf(":%d", getEnv.PORT))
	app := server.GetEngine()

	// Setup Middleware + Routes
	router.SetupRoutes(app, store, redisCache, revoked)

	// Get the PORT & Start the Server
	return server.Run()
}
