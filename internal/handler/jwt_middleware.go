package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"biblioteca-api/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
)

type ctxKey string

const (
	CtxUserID   ctxKey = "userId"
	CtxUserRole ctxKey = "role"
)

// JWTAuth devuelve un middleware que valida el token JWT y
// mete userId y role en el contexto.
func JWTAuth(secret string) func(http.Handler) http.Handler {
	secretBytes := []byte(secret)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr, found := bearerToken(r)
			if !found {
				fail(w, http.StatusUnauthorized, CodeUnauthorized, "falta el header Authorization Bearer", nil)
				return
			}

			token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (any, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return secretBytes, nil
			})
			if errors.Is(err, jwt.ErrTokenExpired) {
				fail(w, http.StatusUnauthorized, CodeTokenExpired, "token expirado", nil)
				return
			}
			if err != nil || !token.Valid {
				fail(w, http.StatusUnauthorized, CodeTokenInvalid, "token inválido", nil)
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				fail(w, http.StatusUnauthorized, CodeTokenInvalid, "claims inválidos", nil)
				return
			}

			subVal, ok := claims["sub"].(float64)
			if !ok {
				fail(w, http.StatusUnauthorized, CodeTokenInvalid, "sub inválido en el token", nil)
				return
			}
			role, _ := claims["role"].(string)

			ctx := context.WithValue(r.Context(), CtxUserID, int(subVal))
			ctx = context.WithValue(ctx, CtxUserRole, role)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken lee el header Authorization. Los navegadores no pueden
// mandar headers al abrir un WebSocket, así que ahí se acepta ?access_token=.
func bearerToken(r *http.Request) (string, bool) {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer "), true
	}
	if websocket.IsWebSocketUpgrade(r) {
		if t := r.URL.Query().Get("access_token"); t != "" {
			return t, true
		}
	}
	return "", false
}

// AdminOnly solo deja pasar a role == "admin".
func AdminOnly() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, _ := r.Context().Value(CtxUserRole).(string)
			if role != models.RoleAdmin {
				fail(w, http.StatusForbidden, CodeForbidden, "solo administradores", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// UserIDFromContext helper para sacar el userId del contexto.
func UserIDFromContext(ctx context.Context) int {
	if v := ctx.Value(CtxUserID); v != nil {
		if id, ok := v.(int); ok {
			return id
		}
	}
	return 0
}
