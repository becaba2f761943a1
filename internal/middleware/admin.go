package middleware

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"ussd-bridge/internal/logger"
)

// unexported, collision-proof context key
type adminContextKeyType struct{}

var adminKey = adminContextKeyType{}

// AdminFromContext returns the operator name attached by RequireAdmin.
func AdminFromContext(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(adminKey).(string)
	return name, ok
}

// AdminAuth guards operator-only routes with HTTP basic auth checked
// against a bcrypt hash.
type AdminAuth struct {
	User         string
	PasswordHash []byte
}

func NewAdminAuth(user, passwordHash string) *AdminAuth {
	return &AdminAuth{User: user, PasswordHash: []byte(passwordHash)}
}

// Enabled is false when no password hash is configured.
func (a *AdminAuth) Enabled() bool {
	return a != nil && len(a.PasswordHash) > 0
}

func (a *AdminAuth) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 1. Read credentials
		user, pass, ok := r.BasicAuth()
		if !ok || !a.Enabled() {
			w.Header().Set("WWW-Authenticate", `Basic realm="ussd-bridge"`)
			http.Error(w, "Authentication required", http.StatusUnauthorized)
			return
		}

		// 2. Verify
		userOK := subtle.ConstantTimeCompare([]byte(user), []byte(a.User)) == 1
		passErr := bcrypt.CompareHashAndPassword(a.PasswordHash, []byte(pass))
		if !userOK || passErr != nil {
			logger.Warn("admin authentication failed", map[string]any{
				"path": r.URL.Path,
				"ip":   r.RemoteAddr,
			})
			w.Header().Set("WWW-Authenticate", `Basic realm="ussd-bridge"`)
			http.Error(w, "Authentication required", http.StatusUnauthorized)
			return
		}

		// 3. Attach operator to context and continue
		ctx := context.WithValue(r.Context(), adminKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// HashPassword hashes an admin password for ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	if len(password) < 8 {
		return "", errors.New("password too short")
	}

	bytes, err := bcrypt.GenerateFromPassword(
		[]byte(password),
		bcrypt.DefaultCost,
	)
	if err != nil {
		return "", err
	}

	return string(bytes), nil
}
