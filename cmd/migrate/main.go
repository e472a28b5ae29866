package main

import (
	"log"

	"pinst/config"
	"pinst/internal/db"
	"pinst/internal/models"
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

	if err := db.AutoMigrate(gormDB); err != nil {
		log.Fatalf("auto migrate failed: %v", err)
	}

	migrator := gormDB.Migrator()
	if err := migrator.CreateIndex(&models.ChatMessage{}, "CustomOrderID"); err != nil {
		log.Fatalf("create index failed: %v", err)
	}
	if err := migrator.CreateIndex(&models.Notification{}, "UserID"); err != nil {
		log.Fatalf("create index failed: %v", err)
	}
	if err := migrator.CreateIndex(&models.Notification{}, "SentAt"); err != nil {
		log.Fatalf("create index failed: %v", err)
	}
	if err := migrator.CreateIndex(&models.Notification{}, "ReadAt"); err != nil {
		log.Fatalf("create index failed: %v", err)
	}

	log.Println("migration completed")
}
