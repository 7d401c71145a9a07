package main

import (
	"log"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"drivedesk/internal/config"
	"drivedesk/internal/handlers"
	"drivedesk/internal/middleware"
	"drivedesk/internal/models"
	"drivedesk/internal/services"
	"drivedesk/internal/tasks"
)

func main() {
	cfg := config.Load()
	if err := cfg.RequireServer(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	db, err := services.InitDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := services.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	authClient, err := services.InitFirebase(cfg.FirebaseCredentialsPath)
	if err != nil {
		log.Printf("Warning: Firebase initialization failed: %v", err)
		log.Println("Authenticated routes will reject requests until valid credentials are provided")
	}

	var cache *services.RedisCache
	if cfg.RedisURL != "" {
		cache, err = services.NewRedisCache(cfg.RedisURL)
		if err != nil {
			log.Printf("Warning: Redis unavailable, caching disabled: %v", err)
			cache = nil
		}
	}

	// Outbound services
	gateway := services.NewGatewayService(cfg)
	whatsapp := services.NewWhatsappService(cfg)
	email := services.NewEmailService(cfg)
	notifications := services.NewNotificationService(db, cache)
	settings := services.NewBranchSettingsService(db, cache)
	links := services.NewPaymentLinkService(db, gateway)
	settlement := services.NewSettlementService(db, notifications)
	pollers := services.NewPollRegistry(links, settlement, func(txn *models.Transaction) {
		tasks.RearmSecondInstallment(db, txn)
	})

	// Reminder handlers run in-process for the workflow endpoints; the worker
	// binary registers the same set.
	tasks.DefineTasks(tasks.Deps{
		Whatsapp:      whatsapp,
		Email:         email,
		Notifications: notifications,
	})

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Validator = handlers.NewValidator()
	e.HTTPErrorHandler = middleware.JSONErrorHandler

	// Handlers
	clientHandler := handlers.NewClientHandler(db)
	planHandler := handlers.NewPlanHandler(db, settings)
	paymentHandler := handlers.NewPaymentHandler(db, links, settlement, pollers)
	rtoHandler := handlers.NewRTOServiceHandler(db)
	vehicleHandler := handlers.NewVehicleHandler(db)
	staffHandler := handlers.NewStaffHandler(db)
	sessionHandler := handlers.NewSessionHandler(db)
	notificationHandler := handlers.NewNotificationHandler(notifications)
	branchHandler := handlers.NewBranchHandler(settings)
	cronHandler := handlers.NewCronHandler(db)
	webhookHandler := handlers.NewWebhookHandler(db, gateway, settlement)
	whatsappHandler := handlers.NewWhatsappHandler(whatsapp)

	// Gateway server-to-server callback; validated by re-checking the gateway.
	e.POST("/api/workflows/payment-gateway", webhookHandler.PaymentGatewayNotification)

	// External cron and workflow triggers, guarded by the shared secret.
	cron := e.Group("/api/cron", middleware.RequireCronSecret(cfg.CronSecret))
	cron.POST("/session-reminders/morning", cronHandler.MorningSessionReminders)
	cron.POST("/session-reminders/evening", cronHandler.EveningSessionReminders)

	workflows := e.Group("/api/workflows", middleware.RequireCronSecret(cfg.CronSecret))
	workflows.POST("/reminders/:task", webhookHandler.RunReminders)

	// Authenticated API
	api := e.Group("/api", middleware.RequireAuth(authClient))

	api.GET("/clients", clientHandler.ListClients)
	api.POST("/clients", clientHandler.CreateClient)
	api.GET("/clients/:id", clientHandler.GetClient)
	api.PUT("/clients/:id", clientHandler.UpdateClient)
	api.DELETE("/clients/:id", clientHandler.DeleteClient)
	api.PUT("/clients/:id/learning-license", clientHandler.UpsertLearningLicense)
	api.PUT("/clients/:id/driving-license", clientHandler.UpsertDrivingLicense)

	api.GET("/plans", planHandler.ListPlans)
	api.POST("/plans", planHandler.CreatePlan)
	api.GET("/plans/:id", planHandler.GetPlan)
	api.PATCH("/plans/:id/status", planHandler.UpdatePlanStatus)
	api.POST("/plans/:id/sessions", sessionHandler.GenerateSessions)

	api.GET("/sessions", sessionHandler.ListSessions)
	api.POST("/sessions", sessionHandler.CreateSession)
	api.PATCH("/sessions/:id", sessionHandler.UpdateSession)

	api.GET("/payments", paymentHandler.ListPayments)
	api.GET("/payments/:id", paymentHandler.GetPayment)
	api.GET("/payments/:id/transactions", paymentHandler.ListTransactions)
	api.POST("/payments/:id/transactions", paymentHandler.RecordTransaction)
	api.POST("/payments/:id/link", paymentHandler.SendLink)
	api.GET("/payments/link/:orderID/status", paymentHandler.LinkStatus)
	api.DELETE("/payments/link/:orderID", paymentHandler.StopLink)

	api.GET("/rto-services", rtoHandler.ListRTOServices)
	api.POST("/rto-services", rtoHandler.CreateRTOService)
	api.GET("/rto-services/:id", rtoHandler.GetRTOService)
	api.PUT("/rto-services/:id", rtoHandler.UpdateRTOService)
	api.DELETE("/rto-services/:id", rtoHandler.DeleteRTOService)

	api.GET("/vehicles", vehicleHandler.ListVehicles)
	api.POST("/vehicles", vehicleHandler.CreateVehicle)
	api.PUT("/vehicles/:id", vehicleHandler.UpdateVehicle)
	api.DELETE("/vehicles/:id", vehicleHandler.DeleteVehicle)

	api.GET("/staff", staffHandler.ListStaff)
	api.POST("/staff", staffHandler.CreateStaff)
	api.PUT("/staff/:id", staffHandler.UpdateStaff)
	api.DELETE("/staff/:id", staffHandler.DeleteStaff)

	api.GET("/notifications", notificationHandler.ListNotifications)
	api.POST("/notifications/:id/read", notificationHandler.MarkRead)
	api.POST("/notifications/read-all", notificationHandler.MarkAllRead)

	api.GET("/branch/settings", branchHandler.GetSettings)
	api.PUT("/branch/settings", branchHandler.UpdateSettings)

	api.POST("/whatsapp/test", whatsappHandler.SendTest)

	log.Printf("Server starting on port %s", cfg.Port)
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
