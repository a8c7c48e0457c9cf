package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	apperrors "splitledger-backend/errors"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

type contextKey string

const (
	UserIDKey contextKey = "user_id"
	EmailKey  contextKey = "email"
	NameKey   contextKey = "name"
)

// Claims are the bearer token claims the API reads. The subject is the
// user id.
type Claims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

type AuthMiddleware struct {
	secret []byte
	parser *jwt.Parser
}

func NewAuthMiddleware(jwtSecret string) *AuthMiddleware {
	return &AuthMiddleware{
		secret: []byte(jwtSecret),
		parser: jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired()),
	}
}

func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			respondError(w, apperrors.Unauthorized("Missing authorization header."))
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			respondError(w, apperrors.Unauthorized("Invalid authorization header format."))
			return
		}

		claims := &Claims{}
		token, err := m.parser.ParseWithClaims(parts[1], claims, func(*jwt.Token) (any, error) {
			return m.secret, nil
		})
		if err != nil {
			zap.L().Debug("Token rejected", zap.String("method", r.Method), zap.String("path", r.URL.Path), zap.Error(err))
			if errors.Is(err, jwt.ErrTokenExpired) {
				respondError(w, apperrors.TokenExpired())
				return
			}
			respondError(w, apperrors.TokenInvalid())
			return
		}
		if !token.Valid || claims.Subject == "" {
			respondError(w, apperrors.TokenInvalid())
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, claims.Subject)
		if claims.Email != "" {
			ctx = context.WithValue(ctx, EmailKey, claims.Email)
		}
		if claims.Name != "" {
			ctx = context.WithValue(ctx, NameKey, claims.Name)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok
}

func GetUserEmail(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(EmailKey).(string)
	return email, ok
}

func GetUserName(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(NameKey).(string)
	return name, ok
}

func respondError(w http.ResponseWriter, appErr *apperrors.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apperrors.GetHTTPStatus(appErr.Type))
	json.NewEncoder(w).Encode(map[string]string{
		"error": appErr.Message,
		"code":  string(appErr.Code),
	})
}
