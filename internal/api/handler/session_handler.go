package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rjtc/pms-sync/internal/core/domain"
	"github.com/rjtc/pms-sync/internal/core/ports"
)

type SessionHandler struct {
	sessions ports.SessionService
}

func NewSessionHandler(sessions ports.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

type sessionResponse struct {
	Session *domain.Session `json:"session"`
	// CanCreateTasks tells the client whether to render mutating affordances.
	// It mirrors the role; the server still enforces the role on every route.
	CanCreateTasks bool `json:"can_create_tasks"`
}

type updateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=manager member"`
}

type updateRoleResponse struct {
	Session        *domain.Session `json:"session"`
	CanCreateTasks bool            `json:"can_create_tasks"`
	// Token replaces the one the client logged in with: role claims are
	// baked into the token, so the old one keeps the old role.
	Token string `json:"token"`
}

// Get returns the authenticated user's session, preferring the persisted
// snapshot over a remote read.
func (h *SessionHandler) Get(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	sess, err := h.sessions.Fetch(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, sessionResponse{
		Session:        sess,
		CanCreateTasks: sess.Role.CanCreateTasks(),
	})
}

// UpdateRole sets the role of a user who has not chosen one yet, or changes
// an existing one. Only manager and member are accepted. The response carries
// a reissued token; the client must swap it in or the role gate keeps seeing
// the old role.
func (h *SessionHandler) UpdateRole(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req updateRoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.sessions.UpdateRole(c.Request().Context(), userID, domain.ParseRole(req.Role))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, updateRoleResponse{
		Session:        result.Session,
		CanCreateTasks: result.Session.Role.CanCreateTasks(),
		Token:          result.Token,
	})
}
