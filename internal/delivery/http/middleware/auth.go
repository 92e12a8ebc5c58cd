package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/LavaJover/shvark-escrow-service/internal/delivery/http/dto/escrow/response"
	"github.com/LavaJover/shvark-escrow-service/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const identityKey = "identity"

// Claims are the token fields the ledger relies on.
type Claims struct {
	IsStaff    bool `json:"is_staff"`
	IsProvider bool `json:"is_provider"`
	jwt.RegisteredClaims
}

// JWTAuth validates an HS256 bearer token and stores the caller's
// domain.Identity on the echo context.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(auth, "Bearer ") {
				return unauthorized(c, "missing bearer token")
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			claims := &Claims{}
			tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
				return []byte(secret), nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
			if err != nil || !tok.Valid {
				return unauthorized(c, "invalid token")
			}
			if claims.Subject == "" {
				return unauthorized(c, "token has no subject")
			}

			c.Set(identityKey, domain.Identity{
				SubjectID:       claims.Subject,
				IsAuthenticated: true,
				IsStaff:         claims.IsStaff,
				IsProvider:      claims.IsProvider,
			})
			return next(c)
		}
	}
}

// RequireStaff rejects non-staff callers before the handler runs.
func RequireStaff() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity := IdentityFrom(c)
			if !identity.IsAuthenticated {
				return unauthorized(c, "authentication required")
			}
			if !identity.IsStaff {
				return c.JSON(http.StatusForbidden, response.ErrorResponse{
					Code:    "forbidden",
					Message: domain.ErrForbidden.Error(),
				})
			}
			return next(c)
		}
	}
}

// IdentityFrom returns the anonymous identity when no token was verified.
func IdentityFrom(c echo.Context) domain.Identity {
	identity, ok := c.Get(identityKey).(domain.Identity)
	if !ok {
		return domain.Identity{}
	}
	return identity
}

// IssueToken signs claims for the given subject; used by tooling and tests.
func IssueToken(secret string, claims Claims) (string, error) {
	if claims.Subject == "" {
		return "", errors.New("subject is required")
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func unauthorized(c echo.Context, message string) error {
	return c.JSON(http.StatusUnauthorized, response.ErrorResponse{
		Code:    "unauthorized",
		Message: message,
	})
}
