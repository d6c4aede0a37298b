package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt"
)

type contextKey string

const (
	contextUserID contextKey = "userId"
	contextRole   contextKey = "role"
)

const adminRole = "admin"

// requireAuth checks the request's bearer token, and stores the token's user ID and role on the
// request context for handlers to use.
func (api DashboardAPI) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(res http.ResponseWriter, req *http.Request) {
		userID, role, err := api.authenticate(req)
		if err != nil {
			http.Error(res, "Unauthorized", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(req.Context(), contextUserID, userID)
		ctx = context.WithValue(ctx, contextRole, role)
		next.ServeHTTP(res, req.WithContext(ctx))
	}
}

func (api DashboardAPI) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return api.requireAuth(func(res http.ResponseWriter, req *http.Request) {
		if role, _ := req.Context().Value(contextRole).(string); role != adminRole {
			http.Error(res, "Forbidden", http.StatusForbidden)
			return
		}

		next.ServeHTTP(res, req)
	})
}

func (api DashboardAPI) authenticate(req *http.Request) (userID string, role string, err error) {
	header := req.Header.Get("Authorization")
	tokenString, isBearer := strings.CutPrefix(header, "Bearer ")
	if !isBearer {
		return "", "", errors.New("missing bearer token in Authorization header")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, isHMAC := token.Method.(*jwt.SigningMethodHMAC); !isHMAC {
			return nil, fmt.Errorf("unexpected token signing method %v", token.Header["alg"])
		}
		return []byte(api.config.Auth.JWTSecret), nil
	})
	if err != nil {
		return "", "", err
	}
	if !token.Valid {
		return "", "", errors.New("invalid token")
	}

	claims, isMapClaims := token.Claims.(jwt.MapClaims)
	if !isMapClaims {
		return "", "", errors.New("unexpected token claims format")
	}

	userID, hasUserID := claims["sub"].(string)
	if !hasUserID {
		return "", "", errors.New("missing 'sub' claim in token")
	}

	role, _ = claims["role"].(string)

	return userID, role, nil
}
