package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"drivedesk/internal/config"
	"drivedesk/internal/services"
	"drivedesk/internal/tasks"
)

const tickInterval = time.Minute

func main() {
	cfg := config.Load()
	if err := cfg.RequireWorker(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	db, err := services.InitDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	var cache *services.RedisCache
	if cfg.RedisURL != "" {
		cache, err = services.NewRedisCache(cfg.RedisURL)
		if err != nil {
			log.Printf("Warning: Redis unavailable, caching disabled: %v", err)
			cache = nil
		}
	}

	tasks.DefineTasks(tasks.Deps{
		Whatsapp:      services.NewWhatsappService(cfg),
		Email:         services.NewEmailService(cfg),
		Notifications: services.NewNotificationService(db, cache),
	})

	// Make sure the standing morning/evening reminder tasks exist.
	tasks.ScheduleRecurringSessionReminders(db)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		log.Println("Shutting down worker...")
		cancel()
	}()

	log.Println("Worker started")

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	// One pass at startup, then every tick.
	tasks.ProcessDue(ctx, db, "")

	for {
		select {
		case <-ticker.C:
			tasks.ProcessDue(ctx, db, "")
		case <-ctx.Done():
			return
		}
	}
}
