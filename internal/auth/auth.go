// internal/auth/auth.go
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

const issuer = "agro-magu-monitor"

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrInvalidPassword = errors.New("invalid password")
	ErrInvalidToken    = errors.New("invalid token")
)

// Config holds authentication configuration for the control API.
type Config struct {
	JWTSecret     string   `mapstructure:"jwt_secret"`
	JWTExpiration int      `mapstructure:"jwt_expiration"` // in minutes
	APIKeys       []string `mapstructure:"api_keys"`
	Users         []User   `mapstructure:"users"`
}

type User struct {
	Username     string `mapstructure:"username"`
	PasswordHash string `mapstructure:"password_hash"`
	Role         string `mapstructure:"role"`
}

// Manager issues and checks the credentials accepted by the control endpoints.
type Manager struct {
	config Config
}

type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.StandardClaims
}

type ctxKey string

const principalKey ctxKey = "principal"

// Principal identifies who called a protected endpoint.
type Principal struct {
	Username string
	Role     string
	Method   string // "jwt" or "api_key"
}

func NewManager(config Config) *Manager {
	return &Manager{config: config}
}

// Enabled reports whether any credential is configured. With none, protected
// routes refuse every request.
func (m *Manager) Enabled() bool {
	return m.config.JWTSecret != "" || len(m.config.APIKeys) > 0
}

// TokenTTL is the lifetime of tokens issued by GenerateToken.
func (m *Manager) TokenTTL() time.Duration {
	return time.Duration(m.config.JWTExpiration) * time.Minute
}

// GenerateToken creates a signed JWT for a user.
func (m *Manager) GenerateToken(username, role string) (string, error) {
	if m.config.JWTSecret == "" {
		return "", errors.New("jwt secret not configured")
	}
	now := time.Now()
	claims := &Claims{
		Username: username,
		Role:     role,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: now.Add(m.TokenTTL()).Unix(),
			IssuedAt:  now.Unix(),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(m.config.JWTSecret))
}

// ValidateToken parses and verifies a JWT issued by GenerateToken.
func (m *Manager) ValidateToken(tokenString string) (*Claims, error) {
	if m.config.JWTSecret == "" {
		return nil, ErrInvalidToken
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(m.config.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.Issuer != issuer {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ValidateAPIKey checks a key in constant time against every configured key.
func (m *Manager) ValidateAPIKey(apiKey string) bool {
	if apiKey == "" {
		return false
	}
	valid := false
	for _, k := range m.config.APIKeys {
		if subtle.ConstantTimeCompare([]byte(apiKey), []byte(k)) == 1 {
			valid = true
		}
	}
	return valid
}

// Authenticate checks username and password and returns the user's role.
func (m *Manager) Authenticate(username, password string) (string, error) {
	for _, user := range m.config.Users {
		if user.Username != username {
			continue
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
			return "", ErrInvalidPassword
		}
		return user.Role, nil
	}
	return "", ErrUserNotFound
}

// HashPassword creates a bcrypt hash suitable for the users section of the config.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	return string(bytes), err
}

// Middleware accepts either an "Authorization: Bearer <jwt>" header or an
// "X-API-Key" header and stores the caller in the request context.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if key := r.Header.Get("X-API-Key"); key != "" {
			if !m.ValidateAPIKey(key) {
				http.Error(w, "Invalid API key", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), principalKey, Principal{Username: "api-key", Role: "service", Method: "api_key"})
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Authorization required", http.StatusUnauthorized)
			return
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			http.Error(w, "Invalid authorization format", http.StatusUnauthorized)
			return
		}
		claims, err := m.ValidateToken(parts[1])
		if err != nil {
			http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), principalKey, Principal{Username: claims.Username, Role: claims.Role, Method: "jwt"})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// FromContext returns the caller stored by Middleware.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}
