package jwtmw

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// ContextSessionID はGinコンテキストにセッションIDを格納するキーです。
	ContextSessionID = "session_id"
	// CookieName はセッショントークンを保持するクッキー名です。
	CookieName = "brandai_session"
	// HeaderSessionToken は新しく発行したトークンをAPIクライアントに返すヘッダーです。
	HeaderSessionToken = "X-Session-Token"
)

// CookieOptions はセッションクッキーの属性です。
type CookieOptions struct {
	Secure bool
}

// SessionRequired returns a Gin middleware that resolves the caller's session ID.
//
// トークンはクッキー、次にAuthorization: Bearer ヘッダーから読み取ります。
// どちらも無いか検証に失敗した場合は新しいセッションを発行し、
// クッキーとX-Session-Tokenヘッダーで返します。リクエストは拒否しません。
func SessionRequired(gen Generator, opts CookieOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := tokenFromRequest(c); token != "" {
			if id, err := gen.Verify(token); err == nil {
				c.Set(ContextSessionID, id)
				c.Next()
				return
			}
			slog.Debug("session token rejected, issuing a new session", "remote_addr", c.ClientIP())
		}

		id := uuid.NewString()
		token, err := gen.GenerateToken(id)
		if err != nil {
			slog.Error("failed to issue session token", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to start session"})
			return
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(CookieName, token, int(gen.Expiration().Seconds()), "/", "", opts.Secure, true)
		c.Header(HeaderSessionToken, token)
		c.Set(ContextSessionID, id)
		c.Next()
	}
}

// SessionID はミドルウェアが設定したセッションIDを返します。
func SessionID(c *gin.Context) string {
	return c.GetString(ContextSessionID)
}

func tokenFromRequest(c *gin.Context) string {
	if cookie, err := c.Cookie(CookieName); err == nil && cookie != "" {
		return cookie
	}
	auth := c.GetHeader("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}
