// Package identity provides anonymous per-device client identity and
// planning session ID extraction.
package identity

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net"
	"net/http"
	"regexp"
	"strings"
	"time"
)

const (
	ClientCookieName   = "outing_client_id"
	SessionHeaderName  = "X-Outing-Session-ID"
	clientCookieMaxAge = 30 * 24 * time.Hour
)

type contextKey int

const (
	clientIDKey contextKey = iota
	sessionIDKey
)

var (
	clientIDPattern  = regexp.MustCompile(`^client_[a-f0-9]{32}$`)
	sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9._:-]{1,128}$`)
)

// ClientIDFromContext extracts the client ID from the request context.
func ClientIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(clientIDKey).(string); ok {
		return v
	}
	return ""
}

// SessionIDFromContext returns the planning session ID the request named, or
// "" when it named none.
func SessionIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(sessionIDKey).(string); ok {
		return v
	}
	return ""
}

// ValidSessionID reports whether id is usable as a planning session ID.
func ValidSessionID(id string) bool {
	return sessionIDPattern.MatchString(id)
}

func generateClientID() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate client id: %w", err)
	}
	return "client_" + hex.EncodeToString(buf), nil
}

func sanitizeSessionID(id string) string {
	id = strings.TrimSpace(id)
	if !ValidSessionID(id) {
		return ""
	}
	return id
}

func setClientCookie(w http.ResponseWriter, id string, isDev bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     ClientCookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(clientCookieMaxAge.Seconds()),
		Expires:  time.Now().Add(clientCookieMaxAge),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   !isDev,
	})
}

func getOrCreateClientID(w http.ResponseWriter, r *http.Request, isDev bool) (string, error) {
	if c, err := r.Cookie(ClientCookieName); err == nil && clientIDPattern.MatchString(c.Value) {
		setClientCookie(w, c.Value, isDev)
		return c.Value, nil
	}

	id, err := generateClientID()
	if err != nil {
		return "", err
	}
	setClientCookie(w, id, isDev)
	return id, nil
}

func sessionIDFromRequest(r *http.Request) string {
	sid := r.Header.Get(SessionHeaderName)
	if sid == "" {
		sid = r.URL.Query().Get("session_id")
	}
	return sanitizeSessionID(sid)
}

// Middleware injects the anonymous client ID and the requested session ID.
func Middleware(isDev bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientID, err := getOrCreateClientID(w, r, isDev)
			if err != nil {
				http.Error(w, `{"status":"error","message":"failed to establish client identity"}`, http.StatusInternalServerError)
				return
			}

			ctx := context.WithValue(r.Context(), clientIDKey, clientID)
			ctx = context.WithValue(ctx, sessionIDKey, sessionIDFromRequest(r))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IPFromRequest returns a normalized remote IP for optional request tracing.
func IPFromRequest(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
