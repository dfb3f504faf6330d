package middleware

// identity.go holds the identity extraction helper shared by the rate
// limit and cache middleware when building per-user keys.

import (
    "fmt"

    "github.com/labstack/echo/v4"
)

// userID extracts a stable identifier for the authenticated subject
// from the context populated by JWTAuth.  It returns "guest" for
// unauthenticated requests.  Staff and candidate IDs share a numeric
// space, so the token type is prefixed to keep the keys distinct.
func userID(c echo.Context) string {
    sub := c.Get(CtxUserID)
    if sub == nil {
        return "guest"
    }
    typ, _ := c.Get(CtxTokenType).(string)
    if typ == "" {
        typ = "user"
    }
    return fmt.Sprintf("%s:%v", typ, sub)
}
