package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"

	"github.com/branchledger/cashbook/internal/models"
	"github.com/branchledger/cashbook/internal/services"
)

type UserContextKey string

const UserContextKeyValue UserContextKey = "user"

// Claims is the token payload issued by the identity provider
type Claims struct {
	UserID   int64  `json:"user_id"`
	Name     string `json:"name,omitempty"`
	Role     string `json:"role"`
	BranchID *int64 `json:"branch_id,omitempty"`
	jwt.RegisteredClaims
}

// AuthMiddleware verifies HS256 bearer tokens and stores the acting user
// in the request context
type AuthMiddleware struct {
	secret []byte
	logger *logrus.Logger
}

func NewAuthMiddleware(secret string, logger *logrus.Logger) *AuthMiddleware {
	return &AuthMiddleware{secret: []byte(secret), logger: logger}
}

func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			services.SendErrorResponse(w, "Authorization header required", http.StatusUnauthorized, nil)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			services.SendErrorResponse(w, "Invalid authorization header format", http.StatusUnauthorized, nil)
			return
		}

		user, err := m.validateToken(parts[1])
		if err != nil {
			m.logger.WithError(err).Debug("Rejected bearer token")
			services.SendErrorResponse(w, "Invalid token", http.StatusUnauthorized, nil)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

func (m *AuthMiddleware) validateToken(tokenString string) (models.User, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return models.User{}, err
	}
	if !token.Valid {
		return models.User{}, errors.New("token is not valid")
	}
	if claims.UserID <= 0 {
		return models.User{}, errors.New("token has no user_id")
	}

	role := claims.Role
	if role == "" {
		role = models.RoleViewer
	}
	return models.User{
		ID:       claims.UserID,
		Name:     claims.Name,
		Role:     role,
		BranchID: claims.BranchID,
	}, nil
}

// WithUser returns a copy of ctx carrying user
func WithUser(ctx context.Context, user models.User) context.Context {
	return context.WithValue(ctx, UserContextKeyValue, user)
}

// UserFromContext returns the acting user set by Authenticate
func UserFromContext(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(UserContextKeyValue).(models.User)
	return user, ok
}
