package main

import (
	"fmt"
	"log"
	"strings"

	"github.com/sahilchouksey/school-admin-api/config"
	"github.com/sahilchouksey/school-admin-api/database"
)

func main() {
	// Load environment variables
	if err := config.LoadENV(); err != nil {
		log.Println("Warning: .env file could not be loaded, using system environment variables")
	}

	getEnv, err := config.Get()
	if err != nil {
		log.Fatalf("Failed to read configuration: %v", err)
	}

	// Initialize database connection using GORM
	store, err := database.StartGORM(getEnv)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer store.Close()

	if err := store.Init(); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Run seeds
	separator := strings.Repeat("=", 60)
	fmt.Println(separator)
	fmt.Println("School Admin - Database Seeding")
	fmt.Println(separator)
	fmt.Println()

	if err := database.RunSeeds(store.GetDB()); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	fmt.Println()
	fmt.Println(separator)
	fmt.Println("Seeding completed successfully!")
	fmt.Println(separator)
	fmt.Println()
	fmt.Println("Admin user created from ADMIN_EMAIL and ADMIN_PASSWORD environment variables.")
	fmt.Println("If not set, admin user creation is skipped.")
	fmt.Println()
}
