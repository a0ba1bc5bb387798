package fileHandler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"commercial-file-service/internal/handler/response"
	"commercial-file-service/internal/model/fileInfo"
	"commercial-file-service/internal/model/user"
	"commercial-file-service/internal/repository/fileRepo"
	"commercial-file-service/internal/service/fileService"
	"commercial-file-service/pkg/middleware"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

type FileService interface {
	Upload(ctx context.Context, actorID uint32, req fileService.UploadRequest, content *fileService.Content) (*fileService.FileView, error)
	Update(ctx context.Context, id uuid.UUID, actorID uint32, req fileService.UpdateRequest, content *fileService.Content) (*fileService.FileView, error)
	UpdateVersion(ctx context.Context, id uuid.UUID, actorID uint32, version string, content *fileService.Content) (*fileService.FileView, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*fileService.FileView, error)
	List(ctx context.Context) ([]*fileService.FileView, error)
	ByKAR(ctx context.Context, karID uint32) ([]*fileService.FileView, error)
	ByRegion(ctx context.Context, regionID int64) ([]*fileService.FileView, error)
	ByChannelPartnerType(ctx context.Context, typeID int64) ([]*fileService.FileView, error)
	Expiring(ctx context.Context, days int) ([]*fileService.FileView, error)
	Expired(ctx context.Context) ([]*fileService.FileView, error)
	Search(ctx context.Context, filter fileRepo.SearchFilter) ([]*fileService.FileView, error)
	MyFiles(ctx context.Context, userID uint32) ([]*fileService.FileView, error)
	UserFiles(ctx context.Context, userID uint32) ([]*fileService.FileView, error)
	Download(ctx context.Context, id uuid.UUID) (io.ReadCloser, *fileInfo.File, error)
}

type FileHandler struct {
	files FileService
}

func New(files FileService) *FileHandler {
	return &FileHandler{files: files}
}

func (h *FileHandler) Register(rg *gin.RouterGroup) {
	g := rg.Group("/files")
	writers := middleware.RequireRole(user.RoleAdmin, user.RoleSiteAcquisition)

	g.POST("/upload", writers, h.upload)
	g.GET("", h.list)
	g.GET("/:id", h.get)
	g.GET("/kar/:id", h.byKAR)
	g.GET("/region/:id", h.byRegion)
	g.GET("/type/:id", h.byType)
	g.GET("/expiring/:days", h.expiring)
	g.GET("/expired", h.expired)
	g.GET("/search", h.search)
	g.GET("/my-files", h.myFiles)
	g.GET("/download/:id", h.download)
	g.GET("/user/:id/all", h.userFiles)
	g.PUT("/:id", writers, h.update)
	g.PUT("/:id/version", writers, h.updateVersion)
	g.DELETE("/:id", middleware.RequireRole(user.RoleAdmin), h.delete)
}

// formContent opens the multipart part named "file". A nil content with a nil
// error means the part was not sent.
func formContent(c *gin.Context) (*fileService.Content, func(), error) {
	header, err := c.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, func() {}, err
	}
	return open(header)
}

func open(header *multipart.FileHeader) (*fileService.Content, func(), error) {
	f, err := header.Open()
	if err != nil {
		return nil, func() {}, err
	}
	return &fileService.Content{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Reader:      f,
	}, func() { f.Close() }, nil
}

func formDate(c *gin.Context, key string) (*time.Time, error) {
	v, ok := c.GetPostForm(key)
	if !ok || v == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return nil, fmt.Errorf("%s must be formatted as YYYY-MM-DD", key)
	}
	return &t, nil
}

func formInt(c *gin.Context, key string) (*int64, error) {
	v, ok := c.GetPostForm(key)
	if !ok || v == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return nil, fmt.Errorf("%s must be a positive number", key)
	}
	return &n, nil
}

// formUserID parses a user id, which must fit the uint32 key of the users table.
func formUserID(c *gin.Context, key string) (*uint32, error) {
	v, ok := c.GetPostForm(key)
	if !ok || v == "" {
		return nil, nil
	}
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil || n == 0 {
		return nil, fmt.Errorf("%s must be a valid user id", key)
	}
	id := uint32(n)
	return &id, nil
}

func formString(c *gin.Context, key string) *string {
	v, ok := c.GetPostForm(key)
	if !ok {
		return nil
	}
	return &v
}

type fileForm struct {
	validity    *time.Time
	expiry      *time.Time
	kar         *uint32
	region      *int64
	partnerType *int64
}

func parseForm(c *gin.Context) (fileForm, error) {
	var (
		f   fileForm
		err error
	)
	if f.validity, err = formDate(c, "validityDate"); err != nil {
		return f, err
	}
	if f.expiry, err = formDate(c, "expiryDate"); err != nil {
		return f, err
	}
	if f.kar, err = formUserID(c, "assignedKarId"); err != nil {
		return f, err
	}
	if f.region, err = formInt(c, "regionId"); err != nil {
		return f, err
	}
	if f.partnerType, err = formInt(c, "channelPartnerTypeId"); err != nil {
		return f, err
	}
	return f, nil
}

func deref(p *int64) int64 {
	if p == nil {
		return 0
	}
	return *p
}

func karOrZero(p *uint32) uint32 {
	if p == nil {
		return 0
	}
	return *p
}

func (h *FileHandler) upload(c *gin.Context) {
	content, done, err := formContent(c)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid multipart body: "+err.Error())
		return
	}
	defer done()

	form, err := parseForm(c)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	req := fileService.UploadRequest{
		FileName:             c.PostForm("fileName"),
		Description:          c.PostForm("description"),
		Comment:              c.PostForm("comment"),
		ValidityDate:         form.validity,
		ExpiryDate:           form.expiry,
		AssignedKARID:        karOrZero(form.kar),
		RegionID:             deref(form.region),
		ChannelPartnerTypeID: deref(form.partnerType),
	}
	view, err := h.files.Upload(c.Request.Context(), middleware.UserID(c), req, content)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "File uploaded successfully", view)
}

func (h *FileHandler) update(c *gin.Context) {
	id, ok := response.UUIDParam(c, "id")
	if !ok {
		return
	}
	content, done, err := formContent(c)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid multipart body: "+err.Error())
		return
	}
	defer done()

	form, err := parseForm(c)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	req := fileService.UpdateRequest{
		FileName:             formString(c, "fileName"),
		Description:          formString(c, "description"),
		Comment:              formString(c, "comment"),
		ValidityDate:         form.validity,
		ExpiryDate:           form.expiry,
		AssignedKARID:        form.kar,
		RegionID:             form.region,
		ChannelPartnerTypeID: form.partnerType,
	}
	view, err := h.files.Update(c.Request.Context(), id, middleware.UserID(c), req, content)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "File updated successfully", view)
}

func (h *FileHandler) updateVersion(c *gin.Context) {
	id, ok := response.UUIDParam(c, "id")
	if !ok {
		return
	}
	content, done, err := formContent(c)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid multipart body: "+err.Error())
		return
	}
	defer done()

	view, err := h.files.UpdateVersion(c.Request.Context(), id, middleware.UserID(c), c.PostForm("version"), content)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "File version updated successfully", view)
}

func (h *FileHandler) delete(c *gin.Context) {
	id, ok := response.UUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.files.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "File deleted successfully", nil)
}

func (h *FileHandler) get(c *gin.Context) {
	id, ok := response.UUIDParam(c, "id")
	if !ok {
		return
	}
	view, err := h.files.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "File retrieved successfully", view)
}

func (h *FileHandler) respondList(c *gin.Context, views []*fileService.FileView, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Files retrieved successfully", views)
}

func (h *FileHandler) list(c *gin.Context) {
	views, err := h.files.List(c.Request.Context())
	h.respondList(c, views, err)
}

func (h *FileHandler) byKAR(c *gin.Context) {
	id, ok := response.UintParam(c, "id")
	if !ok {
		return
	}
	views, err := h.files.ByKAR(c.Request.Context(), id)
	h.respondList(c, views, err)
}

func (h *FileHandler) byRegion(c *gin.Context) {
	id, ok := response.Int64Param(c, "id")
	if !ok {
		return
	}
	views, err := h.files.ByRegion(c.Request.Context(), id)
	h.respondList(c, views, err)
}

func (h *FileHandler) byType(c *gin.Context) {
	id, ok := response.Int64Param(c, "id")
	if !ok {
		return
	}
	views, err := h.files.ByChannelPartnerType(c.Request.Context(), id)
	h.respondList(c, views, err)
}

func (h *FileHandler) expiring(c *gin.Context) {
	days, ok := response.IntParam(c, "days")
	if !ok {
		return
	}
	views, err := h.files.Expiring(c.Request.Context(), days)
	h.respondList(c, views, err)
}

func (h *FileHandler) expired(c *gin.Context) {
	views, err := h.files.Expired(c.Request.Context())
	h.respondList(c, views, err)
}

func (h *FileHandler) search(c *gin.Context) {
	var filter fileRepo.SearchFilter
	if v := c.Query("fileName"); v != "" {
		filter.FileName = &v
	}
	for key, dst := range map[string]**int64{"regionId": &filter.RegionID, "typeId": &filter.ChannelPartnerTypeID} {
		if v := c.Query(key); v != "" {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				response.Fail(c, http.StatusBadRequest, "invalid "+key)
				return
			}
			*dst = &n
		}
	}
	if v := c.Query("karUserId"); v != "" {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			response.Fail(c, http.StatusBadRequest, "invalid karUserId")
			return
		}
		kar := uint32(n)
		filter.AssignedKARID = &kar
	}

	views, err := h.files.Search(c.Request.Context(), filter)
	h.respondList(c, views, err)
}

func (h *FileHandler) myFiles(c *gin.Context) {
	views, err := h.files.MyFiles(c.Request.Context(), middleware.UserID(c))
	h.respondList(c, views, err)
}

func (h *FileHandler) userFiles(c *gin.Context) {
	id, ok := response.UintParam(c, "id")
	if !ok {
		return
	}
	views, err := h.files.UserFiles(c.Request.Context(), id)
	h.respondList(c, views, err)
}

func (h *FileHandler) download(c *gin.Context) {
	id, ok := response.UUIDParam(c, "id")
	if !ok {
		return
	}
	rc, f, err := h.files.Download(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer rc.Close()

	c.DataFromReader(http.StatusOK, f.FileSize, f.FileType, rc, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", f.FileName),
	})
}
