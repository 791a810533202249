package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	sidCookie   = "sid"
	tokenCookie = "token"
)

// ensureSID returns the anonymous session id, issuing one on first visit.
func ensureSID(c *fiber.Ctx) string {
	sid := c.Cookies(sidCookie)
	if sid == "" {
		sid = uuid.NewString()
		c.Cookie(&fiber.Cookie{
			Name:     sidCookie,
			Value:    sid,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
			Secure:   false, // enable true behind TLS
		})
	}
	return sid
}

// requestToken is the caller's backend credential, forwarded as is. The token
// cookie wins over an Authorization header.
func requestToken(c *fiber.Ctx) string {
	if t := c.Cookies(tokenCookie); t != "" {
		return t
	}
	if t, ok := strings.CutPrefix(c.Get(fiber.HeaderAuthorization), "Bearer "); ok {
		return strings.TrimSpace(t)
	}
	return ""
}
