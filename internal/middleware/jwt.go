package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "net/http" // HTTP status codes for responses
    "strings"  // string utilities for prefix checking and trimming

    "github.com/golang-jwt/jwt/v5" // JWT library for parsing and validating tokens
    "github.com/labstack/echo/v4"  // Echo framework used for defining middleware and handlers
)

// Context keys populated by JWTAuth.  Handlers read these to rebuild
// the acting identity without another database round trip.
const (
    CtxUserID        = "user_id"        // numeric subject ID (float64 from JSON)
    CtxTokenType     = "token_type"     // "staff" or "candidate"
    CtxRole          = "role"           // staff role code; empty for candidates
    CtxInstitutionID = "institution_id" // owning institution; zero for admins
    CtxName          = "name"           // display name carried in the token
)

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and injects its claims into the request context.  The provided secret
// must match the one used when issuing tokens.  Both staff and candidate
// tokens pass this middleware; RequireStaff/RequireCandidate narrow the
// audience per route group.
func JWTAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            // A valid header is "Bearer <jwt>".
            auth := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(auth, "Bearer ") {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
            }
            raw := strings.TrimPrefix(auth, "Bearer ")

            // Parse with HS256 and our secret, rejecting any other
            // signing method.
            tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
                if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
                    return nil, echo.ErrUnauthorized
                }
                return []byte(secret), nil
            })
            if err != nil || !tok.Valid {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
            }

            claims, ok := tok.Claims.(jwt.MapClaims)
            if !ok {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
            }

            c.Set(CtxUserID, claims["sub"])
            c.Set(CtxTokenType, claims["typ"])
            c.Set(CtxRole, claims["role"])
            c.Set(CtxInstitutionID, claims["institution_id"])
            c.Set(CtxName, claims["name"])
            return next(c)
        }
    }
}
