package notificationHandler

import (
	"context"
	"net/http"
	"time"

	"commercial-file-service/internal/handler/response"
	"commercial-file-service/internal/model/notification"
	"commercial-file-service/internal/model/user"
	"commercial-file-service/pkg/middleware"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type NotificationService interface {
	GetByID(ctx context.Context, id uuid.UUID) (*notification.Notification, error)
	ByFile(ctx context.Context, fileID uuid.UUID) ([]*notification.Notification, error)
	ByUser(ctx context.Context, userID uint32) ([]*notification.Notification, error)
	ActiveByUser(ctx context.Context, userID uint32) ([]*notification.Notification, error)
	ByStatus(ctx context.Context, status string) ([]*notification.Notification, error)
	ExpiryRemindersByDays(ctx context.Context, days int) ([]*notification.Notification, error)
	ScheduledBetween(ctx context.Context, from, to time.Time) ([]*notification.Notification, error)
	All(ctx context.Context) ([]*notification.Notification, error)
	UserStats(ctx context.Context, userID uint32) (*notification.UserStats, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Cleanup(ctx context.Context, daysOld int) (string, int64, error)
}

type NotificationHandler struct {
	notifications NotificationService
}

func New(notifications NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

func (h *NotificationHandler) Register(rg *gin.RouterGroup) {
	g := rg.Group("/notifications")
	admin := middleware.RequireRole(user.RoleAdmin)

	g.GET("/file/:id", h.byFile)
	g.GET("/user/:id", h.byUser)
	g.GET("/user/:id/active", h.activeByUser)
	g.GET("/user/:id/stats", h.stats)
	g.GET("/status/:status", admin, h.byStatus)
	g.GET("/expiry-reminders/:days", h.expiryReminders)
	g.GET("/between", admin, h.between)
	g.GET("/all", admin, h.all)
	g.GET("/:id", h.get)
	g.DELETE("/:id", admin, h.delete)
	g.DELETE("/cleanup/:daysOld", admin, h.cleanup)
}

func (h *NotificationHandler) respondList(c *gin.Context, list []*notification.Notification, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Notifications retrieved successfully", list)
}

func (h *NotificationHandler) byFile(c *gin.Context) {
	id, ok := response.UUIDParam(c, "id")
	if !ok {
		return
	}
	list, err := h.notifications.ByFile(c.Request.Context(), id)
	h.respondList(c, list, err)
}

func (h *NotificationHandler) byUser(c *gin.Context) {
	id, ok := response.UintParam(c, "id")
	if !ok {
		return
	}
	list, err := h.notifications.ByUser(c.Request.Context(), id)
	h.respondList(c, list, err)
}

func (h *NotificationHandler) activeByUser(c *gin.Context) {
	id, ok := response.UintParam(c, "id")
	if !ok {
		return
	}
	list, err := h.notifications.ActiveByUser(c.Request.Context(), id)
	h.respondList(c, list, err)
}

func (h *NotificationHandler) stats(c *gin.Context) {
	id, ok := response.UintParam(c, "id")
	if !ok {
		return
	}
	stats, err := h.notifications.UserStats(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Notification statistics retrieved successfully", stats)
}

func (h *NotificationHandler) byStatus(c *gin.Context) {
	list, err := h.notifications.ByStatus(c.Request.Context(), c.Param("status"))
	h.respondList(c, list, err)
}

func (h *NotificationHandler) expiryReminders(c *gin.Context) {
	days, ok := response.IntParam(c, "days")
	if !ok {
		return
	}
	list, err := h.notifications.ExpiryRemindersByDays(c.Request.Context(), days)
	h.respondList(c, list, err)
}

// between expects RFC 3339 "from" and "to" query parameters.
func (h *NotificationHandler) between(c *gin.Context) {
	from, err := time.Parse(time.RFC3339, c.Query("from"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "from must be an RFC 3339 timestamp")
		return
	}
	to, err := time.Parse(time.RFC3339, c.Query("to"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "to must be an RFC 3339 timestamp")
		return
	}
	list, err := h.notifications.ScheduledBetween(c.Request.Context(), from, to)
	h.respondList(c, list, err)
}

func (h *NotificationHandler) all(c *gin.Context) {
	list, err := h.notifications.All(c.Request.Context())
	h.respondList(c, list, err)
}

func (h *NotificationHandler) get(c *gin.Context) {
	id, ok := response.UUIDParam(c, "id")
	if !ok {
		return
	}
	n, err := h.notifications.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Notification retrieved successfully", n)
}

func (h *NotificationHandler) delete(c *gin.Context) {
	id, ok := response.UUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.notifications.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Notification deleted successfully", nil)
}

func (h *NotificationHandler) cleanup(c *gin.Context) {
	days, ok := response.IntParam(c, "daysOld")
	if !ok {
		return
	}
	msg, n, err := h.notifications.Cleanup(c.Request.Context(), days)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, msg, gin.H{"deactivated": n})
}
