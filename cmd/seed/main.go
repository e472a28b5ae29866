package main

import (
	"log"
	"os"

	"pinst/config"
	"pinst/internal/db"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	gormDB, err := db.NewDB(cfg.DSN)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}

	adminEmail := os.Getenv("ADMIN_EMAIL")
	if adminEmail == "" {
		adminEmail = "admin@example.com"
	}
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		log.Fatal("ADMIN_PASSWORD must be set")
	}

	if err := db.SeedAdmin(gormDB, adminEmail, "admin", adminPassword); err != nil {
		log.Fatalf("seed admin failed: %v", err)
	}
	if err := db.SeedProducts(gormDB); err != nil {
		log.Fatalf("seed products failed: %v", err)
	}
	if err := db.SeedPromoCodes(gormDB); err != nil {
		log.Fatalf("seed promo codes failed: %v", err)
	}

	log.Println("database seeded")
}
