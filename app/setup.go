package app

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sahilchouksey/school-admin-api/api"
	"github.com/sahilchouksey/school-admin-api/config"
	"github.com/sahilchouksey/school-admin-api/database"
	"github.com/sahilchouksey/school-admin-api/router"
	"github.com/sahilchouksey/school-admin-api/services"
	"github.com/sahilchouksey/school-admin-api/services/cron"
	"github.com/sahilchouksey/school-admin-api/utils/cache"
	"github.com/sahilchouksey/school-admin-api/utils/response"
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

	if getEnv.JWT_SECRET == "" {
		return fmt.Errorf("JWT_SECRET environment variable is not set")
	}

	// Initialize GORM database connection
	store, err := database.StartGORM(getEnv)
	if err != nil {
		print("Check whether the Postgres is running or not\n")
		print("Set DATABASE_URL or the DB_* variables to point at your database\n")
		return err
	}

	if err := store.Init(); err != nil {
		print("Failed to initialize database tables\n")
		print("Error running migrations:\n")
		store.Close()
		return err
	}

	// Initialize Redis cache (optional)
	var redisCache *cache.RedisCache
	var serviceCache cache.Cache
	var cachePinger cron.Pinger
	if getEnv.REDIS_URL != "" {
		redisCache, err = cache.NewRedisCache(getEnv.REDIS_URL)
		if err != nil {
			log.Printf("Warning: Failed to connect to Redis: %v. Caching and brute force protection will be disabled.", err)
			redisCache = nil
		} else {
			serviceCache = redisCache
			cachePinger = redisCache
		}
	}

	courses := services.NewCourseService(store.GetDB(), serviceCache)
	teachers := services.NewTeacherService(store.GetDB(), serviceCache)
	students := services.NewStudentService(store.GetDB(), serviceCache)

	// Initialize Cron Manager (only if enabled via environment variable)
	var cronManager *cron.CronManager
	if getEnv.CRON_ENABLED {
		cronManager = cron.NewCronManager(store, cachePinger, courses, students)
		if err := cronManager.Start(); err != nil {
			print("Warning: Failed to start cron jobs\n")
			print("Error: ", err.Error(), "\n")
			// Don't fail the app, just log the warning
			cronManager = nil
		}
	}

	// Defer closing DB, Redis and stopping cron jobs
	defer func() {
		if cronManager != nil {
			cronManager.Stop()
		}
		if redisCache != nil {
			redisCache.Close()
		}
		store.Close()
	}()

	// Technical error details are only exposed outside production
	response.Configure(response.Options{ExposeErrors: !getEnv.IsProduction()})

	// Init API
	server := api.NewAPIServer(fmt.Sprintf(":%d", getEnv.PORT))
	app := server.GetEngine()

	// Setup Routes
	router.SetupRoutes(app, router.Dependencies{
		Store:      store,
		Courses:    courses,
		Teachers:   teachers,
		Students:   students,
		RedisCache: redisCache,
		Env:        getEnv,
	})

	// Shut down gracefully on SIGINT/SIGTERM
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down server...")
		if err := server.Shutdown(); err != nil {
			log.Printf("Server shutdown failed: %v", err)
		}
	}()

	// Get the PORT & Start the Server
	return server.Run()
}
