package referenceHandler

import (
	"context"
	"net/http"

	"commercial-file-service/internal/handler/response"
	"commercial-file-service/internal/model/reference"
	"commercial-file-service/internal/model/user"
	"commercial-file-service/pkg/middleware"

	"github.com/gin-gonic/gin"
)

type ReferenceService interface {
	GetRegion(ctx context.Context, id int64) (*reference.Region, error)
	ListRegions(ctx context.Context) ([]*reference.Region, error)
	CreateRegion(ctx context.Context, region *reference.Region) error
	GetChannelPartnerType(ctx context.Context, id int64) (*reference.ChannelPartnerType, error)
	ListChannelPartnerTypes(ctx context.Context) ([]*reference.ChannelPartnerType, error)
	CreateChannelPartnerType(ctx context.Context, cpt *reference.ChannelPartnerType) error
}

type ReferenceHandler struct {
	refs ReferenceService
}

func New(refs ReferenceService) *ReferenceHandler {
	return &ReferenceHandler{refs: refs}
}

func (h *ReferenceHandler) Register(rg *gin.RouterGroup) {
	admin := middleware.RequireRole(user.RoleAdmin)

	regions := rg.Group("/regions")
	regions.GET("", h.listRegions)
	regions.GET("/:id", h.getRegion)
	regions.POST("", admin, h.createRegion)

	types := rg.Group("/channel-partner-types")
	types.GET("", h.listTypes)
	types.GET("/:id", h.getType)
	types.POST("", admin, h.createType)
}

type regionRequest struct {
	RegionName  string `json:"region_name" binding:"required"`
	RegionCode  string `json:"region_code"`
	Description string `json:"description"`
}

type typeRequest struct {
	TypeName    string `json:"type_name" binding:"required"`
	Description string `json:"description"`
}

func (h *ReferenceHandler) listRegions(c *gin.Context) {
	regions, err := h.refs.ListRegions(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Regions retrieved successfully", regions)
}

func (h *ReferenceHandler) getRegion(c *gin.Context) {
	id, ok := response.Int64Param(c, "id")
	if !ok {
		return
	}
	region, err := h.refs.GetRegion(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Region retrieved successfully", region)
}

func (h *ReferenceHandler) createRegion(c *gin.Context) {
	var req regionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, err.Error())
		return
	}
	region := &reference.Region{RegionName: req.RegionName, RegionCode: req.RegionCode, Description: req.Description}
	if err := h.refs.CreateRegion(c.Request.Context(), region); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Region created successfully", region)
}

func (h *ReferenceHandler) listTypes(c *gin.Context) {
	types, err := h.refs.ListChannelPartnerTypes(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Channel partner types retrieved successfully", types)
}

func (h *ReferenceHandler) getType(c *gin.Context) {
	id, ok := response.Int64Param(c, "id")
	if !ok {
		return
	}
	cpt, err := h.refs.GetChannelPartnerType(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Channel partner type retrieved successfully", cpt)
}

func (h *ReferenceHandler) createType(c *gin.Context) {
	var req typeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, err.Error())
		return
	}
	cpt := &reference.ChannelPartnerType{TypeName: req.TypeName, Description: req.Description}
	if err := h.refs.CreateChannelPartnerType(c.Request.Context(), cpt); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Channel partner type created successfully", cpt)
}
