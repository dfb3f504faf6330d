package middleware // middleware provides shared request processing for handlers

import (
    "net/http" // http package defines standard HTTP status codes

    "github.com/labstack/echo/v4" // echo provides middleware chaining and context
)

// RequireStaff returns middleware that only passes requests carrying a
// staff access token.  It assumes JWTAuth has already populated the
// context.
func RequireStaff() echo.MiddlewareFunc {
    return requireTokenType("staff")
}

// RequireCandidate returns middleware that only passes requests
// carrying a candidate access token.
func RequireCandidate() echo.MiddlewareFunc {
    return requireTokenType("candidate")
}

func requireTokenType(want string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            typ, _ := c.Get(CtxTokenType).(string)
            if typ != want {
                return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
            }
            return next(c)
        }
    }
}

// RequireRole returns a middleware function that enforces that the
// authenticated staff user has one of the specified roles.  The roles
// accepted should correspond to the values stored in the JWT's "role"
// claim.  If the user's role is not in the allowed set, the request
// is aborted with a 403 Forbidden response.  It assumes JWTAuth has
// extracted the role into the context.
func RequireRole(roles ...string) echo.MiddlewareFunc {
    allowed := make(map[string]bool, len(roles))
    for _, r := range roles {
        allowed[r] = true
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            role, ok := c.Get(CtxRole).(string)
            if !ok || !allowed[role] {
                return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
            }
            return next(c)
        }
    }
}
