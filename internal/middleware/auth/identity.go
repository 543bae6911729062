package auth

import (
	"github.com/labstack/echo/v4"

	"github.com/sharkweb/boardsite/internal/models"
)

// The resolved caller lives on the echo.Context for the duration of one
// request and is never shared across requests.
const (
	identityKey    = "identity"
	authoritiesKey = "authorities"
)

func setIdentity(c echo.Context, u *models.User) {
	c.Set(identityKey, u)
	c.Set(authoritiesKey, u.Authorities())
}

// CurrentUser returns the authenticated caller, or nil for an anonymous
// request.
func CurrentUser(c echo.Context) *models.User {
	if v := c.Get(identityKey); v != nil {
		if u, ok := v.(*models.User); ok {
			return u
		}
	}
	return nil
}

// Authorities returns the caller's authority names, empty when anonymous.
func Authorities(c echo.Context) []string {
	if v := c.Get(authoritiesKey); v != nil {
		if a, ok := v.([]string); ok {
			return a
		}
	}
	return nil
}
