package authHandler

import (
	"context"
	"net/http"

	"commercial-file-service/internal/handler/response"
	"commercial-file-service/internal/model/user"
	"commercial-file-service/internal/service/authService"
	"commercial-file-service/pkg/middleware"

	"github.com/gin-gonic/gin"
)

type AuthService interface {
	Register(ctx context.Context, req authService.RegisterRequest) (uint32, error)
	Login(ctx context.Context, username, password string) (string, string, uint32, error)
	Logout(ctx context.Context, userID uint32, accessToken string) error
	RefreshToken(ctx context.Context, userID uint32, oldRefreshToken string) (string, string, error)
}

type AuthHandler struct {
	auth AuthService
}

func New(auth AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Register mounts the auth routes. requireAuth guards logout and user creation.
func (h *AuthHandler) Register(rg *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	g := rg.Group("/auth")
	g.POST("/register", h.register)
	g.POST("/login", h.login)
	g.POST("/refresh", h.refresh)
	g.POST("/logout", requireAuth, h.logout)
	g.POST("/users", requireAuth, middleware.RequireRole(user.RoleAdmin), h.createUser)
}

type registerRequest struct {
	Username  string `json:"username" binding:"required"`
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	UserID       uint32 `json:"user_id" binding:"required"`
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type tokenResponse struct {
	UserID       uint32 `json:"user_id"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// register is open to anyone and always creates a USER.
func (h *AuthHandler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, err.Error())
		return
	}
	h.create(c, req, user.RoleUser)
}

func (h *AuthHandler) createUser(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, err.Error())
		return
	}
	role := user.RoleUser
	if req.Role != "" {
		parsed, err := user.ParseRole(req.Role)
		if err != nil {
			response.Fail(c, http.StatusBadRequest, err.Error())
			return
		}
		role = parsed
	}
	h.create(c, req, role)
}

func (h *AuthHandler) create(c *gin.Context, req registerRequest, role user.Role) {
	id, err := h.auth.Register(c.Request.Context(), authService.RegisterRequest{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      role,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "User registered successfully", gin.H{"user_id": id, "role": role})
}

func (h *AuthHandler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, err.Error())
		return
	}
	access, refresh, uid, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Login successful", tokenResponse{UserID: uid, AccessToken: access, RefreshToken: refresh})
}

func (h *AuthHandler) refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, err.Error())
		return
	}
	access, refresh, err := h.auth.RefreshToken(c.Request.Context(), req.UserID, req.RefreshToken)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Token refreshed", tokenResponse{UserID: req.UserID, AccessToken: access, RefreshToken: refresh})
}

func (h *AuthHandler) logout(c *gin.Context) {
	if err := h.auth.Logout(c.Request.Context(), middleware.UserID(c), middleware.AccessToken(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Logout successful", nil)
}
