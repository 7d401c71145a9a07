package main

import (
	"flag"
	"log"

	"gorm.io/gorm"

	"drivedesk/internal/config"
	"drivedesk/internal/models"
	"drivedesk/internal/services"
)

// One-off migration: service_type used to live on payments but it describes
// the RTO service, not the money. This moves the column to rto_services and
// drops it from payments. Rows without a recorded type default to
// FULL_SERVICE. Safe to re-run; it exits cleanly when the old column is gone.
func main() {
	dryRun := flag.Bool("dry_run", false, "Report what would change without writing")
	flag.Parse()

	cfg := config.Load()
	if err := cfg.RequireWorker(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	db, err := services.InitDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if !db.Migrator().HasColumn(&models.Payment{}, "service_type") {
		log.Println("payments.service_type does not exist; nothing to migrate")
		return
	}

	var pending int64
	err = db.Table("payments").
		Where("rto_service_id IS NOT NULL AND service_type IS NOT NULL AND service_type <> ''").
		Count(&pending).Error
	if err != nil {
		log.Fatalf("Failed to count migratable rows: %v", err)
	}
	log.Printf("%d payments carry a service_type to move", pending)

	if *dryRun {
		log.Println("Dry run, stopping before any writes")
		return
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`
			UPDATE rto_services
			SET service_type = payments.service_type
			FROM payments
			WHERE payments.rto_service_id = rto_services.id
			  AND payments.service_type IS NOT NULL
			  AND payments.service_type <> ''`).Error; err != nil {
			return err
		}

		if err := tx.Exec(`
			UPDATE rto_services
			SET service_type = ?
			WHERE service_type IS NULL OR service_type = ''`,
			string(models.RTOServiceTypeFullService)).Error; err != nil {
			return err
		}

		return tx.Migrator().DropColumn(&models.Payment{}, "service_type")
	})
	if err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	log.Println("service_type moved to rto_services and dropped from payments")
}
