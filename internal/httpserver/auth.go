package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sharkweb/boardsite/internal/logging"
	"github.com/sharkweb/boardsite/internal/mykafka"
	"github.com/sharkweb/boardsite/internal/repo"
	"github.com/sharkweb/boardsite/internal/service"
	"github.com/sharkweb/boardsite/internal/transport"
)

type AuthHTTP struct {
	Svc    *service.AuthService
	Events *mykafka.Producer
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Email == "" || req.Password == "" || req.Nickname == "" {
		l.Warn("register_error", "status", 400, "reason", "missing fields")
		return echo.NewHTTPError(http.StatusBadRequest, "email, password and nickname are required")
	}

	res, err := h.Svc.Register(ctx, req.Email, req.Password, req.Nickname)
	if err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return echo.NewHTTPError(http.StatusConflict, "email already registered")
		}
		l.Error("register_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "register failed")
	}

	h.publish(c, "user_events", fmt.Sprint(res.User.ID), map[string]any{
		"type":     "user_registered",
		"user_id":  res.User.ID,
		"nickname": res.User.Nickname,
	})

	l.Info("register_successful")
	return c.JSON(http.StatusOK, transport.TokenResponse{AccessToken: res.AccessToken})
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			// One message for unknown email and wrong password.
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid email or password")
		}
		l.Error("login_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "login failed")
	}

	h.publish(c, "user_events", fmt.Sprint(res.User.ID), map[string]any{
		"type":     "user_logged_in",
		"user_id":  res.User.ID,
		"nickname": res.User.Nickname,
	})

	l.Info("login_successful")
	return c.JSON(http.StatusOK, transport.TokenResponse{AccessToken: res.AccessToken})
}

// Logout is a stateless acknowledgment: the server holds no session, the
// client discards its token.
func (h *AuthHTTP) Logout(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"message": "logged out, discard the token client-side",
	})
}

func (h *AuthHTTP) publish(c echo.Context, topic, key string, event map[string]any) {
	if h.Events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Events.PublishEvent(ctx, topic, key, event); err != nil {
		logging.FromContext(c.Request().Context()).Error("event_publish_failed", "topic", topic, "error", err)
	}
}
