package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"drivedesk/internal/tasks"
)

// CronHandler exposes the scheduled reminder runs to an external cron caller.
// These routes sit behind the cron bearer secret, not Firebase auth.
type CronHandler struct {
	db *gorm.DB
}

func NewCronHandler(db *gorm.DB) *CronHandler {
	return &CronHandler{db: db}
}

// MorningSessionReminders reminds about today's sessions.
func (h *CronHandler) MorningSessionReminders(c echo.Context) error {
	return h.runSlot(c, "morning")
}

// EveningSessionReminders reminds about tomorrow's sessions.
func (h *CronHandler) EveningSessionReminders(c echo.Context) error {
	return h.runSlot(c, "evening")
}

func (h *CronHandler) runSlot(c echo.Context, slot string) error {
	result, err := tasks.RunSessionReminders(c.Request().Context(), h.db, slot, time.Now())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}
