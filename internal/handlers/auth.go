package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/craftorigin/storefront/internal/events"
	"github.com/craftorigin/storefront/internal/hash"
	"github.com/craftorigin/storefront/internal/logging"
	"github.com/craftorigin/storefront/internal/models"
)

const tokenTTL = 24 * time.Hour

type AuthHandler struct {
	DB        *gorm.DB
	JWTSecret []byte
	Producer  *events.Producer
}

type credentialsResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

func (h *AuthHandler) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register")

	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, msg("invalid body"))
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, msg("Name, email and password are required"))
	}
	role := req.Role
	if role != models.RoleArtist {
		role = models.RoleBuyer
	}

	var existing models.User
	if err := h.DB.WithContext(ctx).Where("email = ?", req.Email).First(&existing).Error; err == nil {
		l.Warn("register_conflict", "email", req.Email)
		return c.JSON(http.StatusConflict, msg("A user with this email already exists"))
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		l.Error("register_error", "error", err)
		return c.JSON(http.StatusInternalServerError, msg("internal error"))
	}

	passwordHash, err := hash.Password(req.Password)
	if err != nil {
		l.Error("register_error", "error", err)
		return c.JSON(http.StatusInternalServerError, msg("internal error"))
	}

	user := models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: passwordHash,
		Role:         role,
	}
	if err := h.DB.WithContext(ctx).Create(&user).Error; err != nil {
		l.Error("register_error", "error", err)
		return c.JSON(http.StatusInternalServerError, msg("internal error"))
	}

	event := map[string]any{
		"type":    "user_registered",
		"user_id": user.ID,
		"email":   user.Email,
		"role":    user.Role,
	}
	if err := h.Producer.PublishEvent(ctx, events.TopicUserEvents, user.ID.String(), event); err != nil {
		l.Error("kafka_publish_error", "error", err)
	}

	token, err := h.signToken(&user)
	if err != nil {
		l.Error("register_error", "error", err)
		return c.JSON(http.StatusInternalServerError, msg("internal error"))
	}

	l.Info("user registered", "user_id", user.ID)
	return c.JSON(http.StatusCreated, credentialsResponse{Token: token, User: user})
}

func (h *AuthHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, msg("invalid body"))
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, msg("Email and password are required"))
	}

	var user models.User
	if err := h.DB.WithContext(ctx).Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusUnauthorized, msg("Invalid email or password"))
		}
		l.Error("login_error", "error", err)
		return c.JSON(http.StatusInternalServerError, msg("internal error"))
	}
	if !hash.Check(user.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, msg("Invalid email or password"))
	}

	token, err := h.signToken(&user)
	if err != nil {
		l.Error("login_error", "error", err)
		return c.JSON(http.StatusInternalServerError, msg("internal error"))
	}

	l.Info("user logged in", "user_id", user.ID)
	return c.JSON(http.StatusOK, credentialsResponse{Token: token, User: user})
}

func (h *AuthHandler) signToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":  user.ID.String(),
		"role": user.Role,
		"exp":  time.Now().Add(tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(h.JWTSecret)
}
