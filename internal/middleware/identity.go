package middleware

// identity.go holds the helper that turns the context's user identity
// into a string for keying.  Rate limit keys use it so authenticated
// traffic is bucketed per user while anonymous traffic falls back to
// the client IP alone.

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// currentUserID renders the authenticated user's identifier as a
// string, or "anon" when the request carries no valid identity.  The
// user_id context value comes from JWT claims, so it may be a string
// or a JSON number depending on how the token was minted.
func currentUserID(c echo.Context) string {
	switch v := c.Get("user_id").(type) {
	case string:
		if v != "" {
			return v
		}
	case float64:
		return strconv.FormatUint(uint64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case int64:
		return strconv.FormatInt(v, 10)
	}
	return "anon"
}
