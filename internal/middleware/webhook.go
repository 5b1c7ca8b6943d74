package middleware

import (
	"crypto/subtle"
	"net"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"support-logbook/pkg/response"
)

// HeaderSecretToken is the header Telegram echoes back when the webhook was
// registered with a secret token.
const HeaderSecretToken = "X-Telegram-Bot-Api-Secret-Token"

// HeaderRequestID carries the per-request correlation ID.
const HeaderRequestID = "X-Request-ID"

// RequestID assigns a correlation ID to each request, honoring one supplied
// by an upstream proxy.
func (m Middleware) RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(HeaderRequestID, id)
		c.Set("request_id", id)
		c.Next()
	}
}

// WebhookSecret rejects webhook deliveries that do not carry the secret token
// the webhook was registered with. A blank configured secret disables the
// check so local setups without a registered secret keep working.
func (m Middleware) WebhookSecret() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.webhookSecret == "" {
			c.Next()
			return
		}

		got := c.GetHeader(HeaderSecretToken)
		if subtle.ConstantTimeCompare([]byte(got), []byte(m.webhookSecret)) != 1 {
			m.l.Warnf(c.Request.Context(), "middleware: webhook secret mismatch from %s", clientIP(c))
			response.Forbidden(c)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RateLimit throttles per client IP.
func (m Middleware) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := clientIP(c)
		if !m.rateLimiter.allow(ip) {
			m.l.Warnf(c.Request.Context(), "middleware: rate limit exceeded for %s", ip)
			response.TooManyRequests(c)
			c.Abort()
			return
		}
		c.Next()
	}
}

// clientIP extracts the originating IP, preferring proxy headers.
func clientIP(c *gin.Context) string {
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	if xri := c.GetHeader("X-Real-IP"); xri != "" {
		return xri
	}
	ip, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		return c.Request.RemoteAddr
	}
	return ip
}
