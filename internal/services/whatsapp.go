package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"drivedesk/internal/config"
)

// WhatsappService sends messages through a WAHA gateway instance.
type WhatsappService struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewWhatsappService(cfg *config.Config) *WhatsappService {
	return &WhatsappService{
		baseURL: cfg.WahaBaseURL,
		apiKey:  cfg.WahaAPIKey,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *WhatsappService) makeRequest(method, endpoint string, payload interface{}) error {
	var bodyReader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal payload: %w", err)
		}
		bodyReader = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, fmt.Sprintf("%s%s", s.baseURL, endpoint), bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}

func (s *WhatsappService) sendSeen(chatID string) error {
	return s.makeRequest("POST", "/api/sendSeen", map[string]string{
		"chatId":  chatID,
		"session": "default",
	})
}

func (s *WhatsappService) startTyping(chatID string) error {
	return s.makeRequest("POST", "/api/startTyping", map[string]string{
		"chatId":  chatID,
		"session": "default",
	})
}

func (s *WhatsappService) stopTyping(chatID string) error {
	return s.makeRequest("POST", "/api/stopTyping", map[string]string{
		"chatId":  chatID,
		"session": "default",
	})
}

func (s *WhatsappService) sendText(chatID, text string) error {
	return s.makeRequest("POST", "/api/sendText", map[string]string{
		"chatId":  chatID,
		"text":    text,
		"session": "default",
	})
}

// NormalizeChatID normalizes WhatsApp chat IDs by adding required suffixes and
// standardizing Indian country codes.
func NormalizeChatID(chatID string) string {
	chatID = strings.TrimSpace(chatID)

	// Group IDs are already complete
	if strings.HasSuffix(chatID, "@g.us") {
		return chatID
	}

	chatID = strings.TrimSuffix(chatID, "@c.us")
	chatID = strings.TrimPrefix(chatID, "+")

	// Standardize local numbers starting with '0' to the '91' country code
	if strings.HasPrefix(chatID, "0") {
		chatID = "91" + strings.TrimPrefix(chatID, "0")
	}
	// Bare 10-digit mobile numbers get the country code too
	if len(chatID) == 10 {
		chatID = "91" + chatID
	}

	return chatID + "@c.us"
}

// SendMessage sends a message with authentic behavior (seen -> typing -> stop typing -> send)
func (s *WhatsappService) SendMessage(chatID, text string) error {
	chatID = NormalizeChatID(chatID)

	if err := s.sendSeen(chatID); err != nil {
		return fmt.Errorf("failed to send seen: %w", err)
	}
	time.Sleep(100 * time.Millisecond)

	if err := s.startTyping(chatID); err != nil {
		return fmt.Errorf("failed to start typing: %w", err)
	}
	time.Sleep(150 * time.Millisecond)

	if err := s.stopTyping(chatID); err != nil {
		return fmt.Errorf("failed to stop typing: %w", err)
	}
	time.Sleep(50 * time.Millisecond)

	if err := s.sendText(chatID, text); err != nil {
		return fmt.Errorf("failed to send text: %w", err)
	}

	return nil
}
