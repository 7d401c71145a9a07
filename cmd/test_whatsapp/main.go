package main

import (
	"flag"
	"log"

	"drivedesk/internal/config"
	"drivedesk/internal/services"
)

func main() {
	phone := flag.String("phone", "", "Phone number (e.g. 919876543210)")
	msg := flag.String("msg", "Test message from drivedesk", "Message body")
	flag.Parse()

	if *phone == "" {
		log.Fatal("Please provide a phone number using -phone flag")
	}

	cfg := config.Load()
	service := services.NewWhatsappService(cfg)

	chatID := services.NormalizeChatID(*phone)
	log.Printf("Sending message to %s: %s", chatID, *msg)

	if err := service.SendMessage(*phone, *msg); err != nil {
		log.Fatalf("Failed to send message: %v", err)
	}

	log.Println("Message sent successfully!")
}
