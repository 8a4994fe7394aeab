package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rjtc/pms-sync/internal/api/middleware"
	"github.com/rjtc/pms-sync/internal/core/domain"
	"github.com/rjtc/pms-sync/internal/core/ports"
	infraauth "github.com/rjtc/pms-sync/internal/infrastructure/auth"
)

func TestSessionHandler_Get(t *testing.T) {
	sessions := &stubSessionService{
		fetchFn: func(ctx context.Context, userID string) (*domain.Session, error) {
			return &domain.Session{UserID: userID, Email: "mark@example.com", Role: domain.RoleMember}, nil
		},
	}
	h := NewSessionHandler(sessions)

	c, rec := newTaskTestContext(t, http.MethodGet, "/session", "")
	c.Set("user_id", "u1")

	if err := h.Get(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["can_create_tasks"] != false {
		t.Fatalf("expected can_create_tasks false for member, got %v", resp["can_create_tasks"])
	}
}

func TestSessionHandler_UpdateRole_ReturnsReissuedToken(t *testing.T) {
	sessions := &stubSessionService{
		updateRoleFn: func(ctx context.Context, userID string, role domain.Role) (*ports.LoginResult, error) {
			if role != domain.RoleManager {
				t.Fatalf("unexpected role: %s", role)
			}
			return &ports.LoginResult{
				Session: &domain.Session{UserID: userID, Role: role},
				Token:   "fresh-token",
			}, nil
		},
	}
	h := NewSessionHandler(sessions)

	c, rec := newTaskTestContext(t, http.MethodPut, "/session/role", `{"role":"manager"}`)
	c.Set("user_id", "u1")

	if err := h.UpdateRole(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["token"] != "fresh-token" {
		t.Fatalf("expected reissued token in response, got %v", resp["token"])
	}
	if resp["can_create_tasks"] != true {
		t.Fatalf("expected can_create_tasks true, got %v", resp["can_create_tasks"])
	}
}

// Role claims live inside the token, so the token minted at role change must
// open the manager routes that the login-time token cannot: a first OAuth
// sign-in has role none, and choosing manager without swapping tokens would
// leave the client locked out of POST /tasks until the next login.
func TestSessionHandler_RoleChangeTokenPassesManagerGate(t *testing.T) {
	issuer := infraauth.NewJWTIssuer("secret", time.Hour)

	loginToken, err := issuer.Issue("u1", "mark@example.com", "none")
	if err != nil {
		t.Fatalf("issue login token: %v", err)
	}
	reissued, err := issuer.Issue("u1", "mark@example.com", "manager")
	if err != nil {
		t.Fatalf("issue reissued token: %v", err)
	}

	run := func(token string) (int, bool) {
		e := echo.New()
		req := httptest.NewRequest(http.MethodPost, "/tasks", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		called := false
		chain := middleware.Auth("secret")(middleware.RequireRole(domain.RoleManager)(func(c echo.Context) error {
			called = true
			return c.NoContent(http.StatusOK)
		}))
		if err := chain(c); err != nil {
			e.HTTPErrorHandler(err, c)
		}
		return rec.Code, called
	}

	if code, called := run(loginToken); called || code != http.StatusForbidden {
		t.Fatalf("role-none token must be denied, got code=%d called=%v", code, called)
	}
	if code, called := run(reissued); !called || code != http.StatusOK {
		t.Fatalf("reissued manager token must pass the gate, got code=%d called=%v", code, called)
	}
}
