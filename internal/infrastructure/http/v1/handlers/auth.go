package handlers

import (
	"github.com/gin-gonic/gin"

	"tradebook/internal/core/apperror"
	appctx "tradebook/internal/core/context"
	"tradebook/internal/core/id"
	"tradebook/internal/domain/auth"
	"tradebook/internal/infrastructure/http/v1/dto"
	"tradebook/internal/infrastructure/http/v1/middleware"
)

// currentUserID resolves the authenticated user's ID from context.
func (h *AuthHandler) currentUserID(c *gin.Context) (id.ID, bool) {
	user := appctx.GetUser(c.Request.Context())
	if user == nil {
		h.Error(c, apperror.NewUnauthorized("not authenticated"))
		return id.ID{}, false
	}
	userID, err := id.Parse(user.UserID)
	if err != nil {
		h.Error(c, apperror.NewUnauthorized("invalid session"))
		return id.ID{}, false
	}
	return userID, true
}

// AuthHandler serves authentication and user management endpoints.
type AuthHandler struct {
	BaseHandler
	svc *auth.Service
}

// NewAuthHandler creates an auth handler.
func NewAuthHandler(svc *auth.Service) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// RegisterRoutes attaches auth routes. Login and token refresh are
// public; everything else requires a valid token. User registration and
// listing are admin-only.
func (h *AuthHandler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.POST("/login", h.Login)
	public.POST("/refresh", h.Refresh)

	protected.POST("/logout", h.Logout)
	protected.GET("/me", h.Me)
	protected.POST("/change-password", h.ChangePassword)

	admin := protected.Group("", middleware.RequireAdmin())
	{
		admin.POST("/register", h.Register)
		admin.GET("/users", h.ListUsers)
	}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}

	pair, user, err := h.svc.Login(c.Request.Context(), auth.Credentials{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromTokenPair(pair, user))
}

// Refresh handles POST /auth/refresh.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if !h.BindJSON(c, &req) {
		return
	}

	pair, err := h.svc.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
		"expiresAt":    pair.ExpiresAt,
		"tokenType":    pair.TokenType,
	})
}

// Logout handles POST /auth/logout: revokes all refresh tokens of the
// current user.
func (h *AuthHandler) Logout(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	if err := h.svc.Logout(c.Request.Context(), userID); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.SuccessResponse{Success: true})
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	current, err := h.svc.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromUser(current))
}

// ChangePassword handles POST /auth/change-password.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req dto.ChangePasswordRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.svc.ChangePassword(c.Request.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.SuccessResponse{Success: true, Message: "password changed"})
}

// Register handles POST /auth/register (admin only).
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterUserRequest
	if !h.BindJSON(c, &req) {
		return
	}

	user, err := h.svc.Register(c.Request.Context(), auth.RegisterRequest{
		Username: req.Username,
		Password: req.Password,
		FullName: req.FullName,
		IsAdmin:  req.IsAdmin,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.FromUser(user))
}

// ListUsers handles GET /auth/users (admin only).
func (h *AuthHandler) ListUsers(c *gin.Context) {
	filter := auth.UserFilter{
		Search:   c.Query("search"),
		IsActive: h.ParseBoolQuery(c, "isActive"),
		Limit:    h.ParseIntQuery(c, "limit", 50),
		Offset:   h.ParseIntQuery(c, "offset", 0),
	}

	users, total, err := h.svc.ListUsers(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, dto.FromUser(&users[i]))
	}

	h.OK(c, dto.ListResponse{
		Items:      items,
		TotalCount: int64(total),
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	})
}
