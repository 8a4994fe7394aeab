package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rjtc/pms-sync/internal/core/domain"
	"github.com/rjtc/pms-sync/internal/core/ports"
)

type AuthHandler struct {
	sessions ports.SessionService
}

func NewAuthHandler(sessions ports.SessionService) *AuthHandler {
	return &AuthHandler{sessions: sessions}
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=manager member"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type oauthLoginRequest struct {
	Credential string `json:"credential" validate:"required"`
}

type authResponse struct {
	Token   string          `json:"token"`
	Session *domain.Session `json:"session"`
}

// Register creates a credential record and a remote profile, then opens a
// session for the new user.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.sessions.Register(c.Request().Context(), req.Email, req.Password, req.Name, domain.ParseRole(req.Role))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, authResponse{Token: result.Token, Session: result.Session})
}

// Login authenticates with email and password.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.sessions.LoginWithPassword(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, authResponse{Token: result.Token, Session: result.Session})
}

// LoginOAuth signs in with a provider-issued credential. First-time users get
// a remote profile created with no role chosen; they pick one later via
// PUT /session/role.
func (h *AuthHandler) LoginOAuth(c echo.Context) error {
	var req oauthLoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.sessions.LoginWithOAuth(c.Request().Context(), req.Credential)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, authResponse{Token: result.Token, Session: result.Session})
}

// Logout clears the persisted session snapshot for the authenticated user.
func (h *AuthHandler) Logout(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}
	if err := h.sessions.Logout(c.Request().Context(), userID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
