package middleware

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/utafrali/storefront/pkg/httputil"
)

// JWTAuth validates an HMAC-signed bearer token and replaces the X-User-ID
// header with the token's user_id claim, falling back to sub. Requests
// without a valid token are rejected with 401.
func JWTAuth(secret string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeUnauthorized(w, "missing authorization header")
				return
			}

			scheme, tokenString, ok := strings.Cut(authHeader, " ")
			if !ok || !strings.EqualFold(scheme, "bearer") {
				writeUnauthorized(w, "invalid authorization header format")
				return
			}

			claims := jwt.MapClaims{}
			token, err := jwt.ParseWithClaims(strings.TrimSpace(tokenString), claims, func(token *jwt.Token) (any, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				logger.WarnContext(r.Context(), "invalid JWT token",
					slog.String("path", r.URL.Path),
					slog.String("error", errString(err)),
				)
				writeUnauthorized(w, "invalid or expired token")
				return
			}

			userID := claimString(claims["user_id"])
			if userID == "" {
				userID = claimString(claims["sub"])
			}
			if userID == "" {
				writeUnauthorized(w, "token carries no user id")
				return
			}

			r.Header.Set(HeaderUserID, userID)
			next.ServeHTTP(w, r)
		})
	}
}

// claimString accepts string claims and integral numeric claims.
func claimString(v any) string {
	switch c := v.(type) {
	case string:
		return strings.TrimSpace(c)
	case float64:
		if c == math.Trunc(c) && !math.IsInf(c, 0) {
			return strconv.FormatFloat(c, 'f', 0, 64)
		}
	}
	return ""
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	httputil.WriteJSON(w, http.StatusUnauthorized, httputil.Response{
		Error: &httputil.ErrorResponse{Code: "UNAUTHORIZED", Message: message},
	})
}

func errString(err error) string {
	if err != nil {
		return err.Error()
	}
	return ""
}
