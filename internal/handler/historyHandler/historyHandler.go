package historyHandler

import (
	"context"
	"net/http"

	"commercial-file-service/internal/handler/response"
	"commercial-file-service/internal/model/fileInfo"
	"commercial-file-service/internal/model/user"
	"commercial-file-service/pkg/middleware"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type HistoryService interface {
	GetByID(ctx context.Context, id uuid.UUID) (*fileInfo.FileHistory, error)
	ByFile(ctx context.Context, fileID uuid.UUID) ([]*fileInfo.FileHistory, error)
	ByFileAndStatus(ctx context.Context, fileID uuid.UUID, active bool) ([]*fileInfo.FileHistory, error)
	ByModifier(ctx context.Context, userID uint32) ([]*fileInfo.FileHistory, error)
	All(ctx context.Context) ([]*fileInfo.FileHistory, error)
	CountActive(ctx context.Context, fileID uuid.UUID) (int64, error)
	Previous(ctx context.Context, fileID uuid.UUID, currentVersion string) (*fileInfo.FileHistory, error)
	Latest(ctx context.Context, fileID uuid.UUID) (*fileInfo.FileHistory, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteAllForFile(ctx context.Context, fileID uuid.UUID) (int64, error)
}

type HistoryHandler struct {
	history HistoryService
}

func New(history HistoryService) *HistoryHandler {
	return &HistoryHandler{history: history}
}

func (h *HistoryHandler) Register(rg *gin.RouterGroup) {
	g := rg.Group("/file-history")
	admin := middleware.RequireRole(user.RoleAdmin)

	g.GET("/file/:id", h.byFile)
	g.GET("/file/:id/active", h.activeByFile)
	g.GET("/file/:id/count", h.count)
	g.GET("/file/:id/previous", h.previous)
	g.GET("/file/:id/latest", h.latest)
	g.GET("/user/:id", h.byUser)
	g.GET("/all", admin, h.all)
	g.GET("/:id", h.get)
	g.DELETE("/:id", admin, h.delete)
	g.DELETE("/file/:id", admin, h.deleteForFile)
}

func (h *HistoryHandler) respondList(c *gin.Context, entries []*fileInfo.FileHistory, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "File history retrieved successfully", entries)
}

func (h *HistoryHandler) respondOne(c *gin.Context, entry *fileInfo.FileHistory, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "File history retrieved successfully", entry)
}

func (h *HistoryHandler) byFile(c *gin.Context) {
	id, ok := response.UUIDParam(c, "id")
	if !ok {
		return
	}
	entries, err := h.history.ByFile(c.Request.Context(), id)
	h.respondList(c, entries, err)
}

func (h *HistoryHandler) activeByFile(c *gin.Context) {
	id, ok := response.UUIDParam(c, "id")
	if !ok {
		return
	}
	entries, err := h.history.ByFileAndStatus(c.Request.Context(), id, true)
	h.respondList(c, entries, err)
}

func (h *HistoryHandler) byUser(c *gin.Context) {
	id, ok := response.UintParam(c, "id")
	if !ok {
		return
	}
	entries, err := h.history.ByModifier(c.Request.Context(), id)
	h.respondList(c, entries, err)
}

func (h *HistoryHandler) all(c *gin.Context) {
	entries, err := h.history.All(c.Request.Context())
	h.respondList(c, entries, err)
}

func (h *HistoryHandler) get(c *gin.Context) {
	id, ok := response.UUIDParam(c, "id")
	if !ok {
		return
	}
	entry, err := h.history.GetByID(c.Request.Context(), id)
	h.respondOne(c, entry, err)
}

func (h *HistoryHandler) count(c *gin.Context) {
	id, ok := response.UUIDParam(c, "id")
	if !ok {
		return
	}
	n, err := h.history.CountActive(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "File history count retrieved successfully", n)
}

func (h *HistoryHandler) previous(c *gin.Context) {
	id, ok := response.UUIDParam(c, "id")
	if !ok {
		return
	}
	current := c.Query("currentVersion")
	if current == "" {
		response.Fail(c, http.StatusBadRequest, "currentVersion is required")
		return
	}
	entry, err := h.history.Previous(c.Request.Context(), id, current)
	h.respondOne(c, entry, err)
}

func (h *HistoryHandler) latest(c *gin.Context) {
	id, ok := response.UUIDParam(c, "id")
	if !ok {
		return
	}
	entry, err := h.history.Latest(c.Request.Context(), id)
	h.respondOne(c, entry, err)
}

func (h *HistoryHandler) delete(c *gin.Context) {
	id, ok := response.UUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.history.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "File history deleted successfully", nil)
}

func (h *HistoryHandler) deleteForFile(c *gin.Context) {
	id, ok := response.UUIDParam(c, "id")
	if !ok {
		return
	}
	n, err := h.history.DeleteAllForFile(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "File history deleted successfully", gin.H{"deleted": n})
}
