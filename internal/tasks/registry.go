// Package tasks holds the scheduled-task handlers executed by the worker and
// the fire-and-forget triggers that enqueue them. The scheduled-task pipeline
// owns durability and retries; triggers never propagate failures to the
// business operation that fired them.
package tasks

import (
	"context"
	"sync"

	"gorm.io/gorm"

	"drivedesk/internal/models"
	"drivedesk/internal/services"
)

// Handler executes one scheduled task and returns a result map recorded in the
// task history.
type Handler func(ctx context.Context, db *gorm.DB, task models.ScheduledTask) (map[string]interface{}, error)

// Registry maps task names to handlers.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// GlobalRegistry is the default registry the worker consults.
var GlobalRegistry = &Registry{
	handlers: make(map[string]Handler),
}

// Register adds a handler for a task name.
func (r *Registry) Register(name string, handler Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = handler
}

// Get retrieves a handler for a task name.
func (r *Registry) Get(name string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	handler, ok := r.handlers[name]
	return handler, ok
}

// RegisterHandler registers to the global registry.
func RegisterHandler(name string, handler Handler) {
	GlobalRegistry.Register(name, handler)
}

// GetHandler looks up the global registry.
func GetHandler(name string) (Handler, bool) {
	return GlobalRegistry.Get(name)
}

// Deps are the outbound services task handlers deliver through.
type Deps struct {
	Whatsapp      *services.WhatsappService
	Email         *services.EmailService
	Notifications *services.NotificationService
}

var deps Deps

// DefineTasks wires dependencies and registers every known task handler.
func DefineTasks(d Deps) {
	deps = d

	RegisterHandler(TaskNameSendNotification, handleSendNotification)
	RegisterHandler(TaskNameInstallmentReminder, handleInstallmentReminder)
	RegisterHandler(TaskNameLicenseExpiryNotice, handleLicenseExpiryNotice)
	RegisterHandler(TaskNameTestEligibility, handleTestEligibility)
	RegisterHandler(TaskNameSessionReminders, handleSessionReminders)
}
