package handler

import (
    "errors"
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/exam-center-ops/internal/checkin"
    "github.com/iliyamo/exam-center-ops/internal/middleware"
    "github.com/iliyamo/exam-center-ops/internal/model"
    "github.com/iliyamo/exam-center-ops/internal/scheduler"
)

// actorFrom rebuilds the acting staff identity from the claims the
// auth middleware stored in the context.  Admin role maps to the
// global scope; every other staff role is bound to its institution.
func actorFrom(c echo.Context) model.Actor {
    id := claimUint64(c.Get(middleware.CtxUserID))
    name, _ := c.Get(middleware.CtxName).(string)
    role, _ := c.Get(middleware.CtxRole).(string)
    scope := model.InstitutionScope(claimUint64(c.Get(middleware.CtxInstitutionID)))
    if role == model.RoleAdmin {
        scope = model.AdminScope()
    }
    return model.Actor{ID: id, Name: name, Scope: scope}
}

// candidateIDFrom returns the subject ID of a candidate token.
func candidateIDFrom(c echo.Context) uint64 {
    return claimUint64(c.Get(middleware.CtxUserID))
}

// claimUint64 coerces a JWT claim value to uint64.  JSON numbers
// arrive as float64; everything unrecognized maps to zero.
func claimUint64(v interface{}) uint64 {
    switch t := v.(type) {
    case float64:
        return uint64(t)
    case int64:
        return uint64(t)
    case uint64:
        return t
    case string:
        n, _ := strconv.ParseUint(t, 10, 64)
        return n
    }
    return 0
}

// pathID parses the named numeric path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
    return strconv.ParseUint(c.Param(name), 10, 64)
}

// writeError translates domain errors into HTTP responses.  Sentinels
// from the scheduling engine and the token protocol carry the status;
// anything unrecognized becomes a 500 without leaking internals.
func writeError(c echo.Context, err error) error {
    switch {
    case errors.Is(err, scheduler.ErrNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
    case errors.Is(err, scheduler.ErrForbidden):
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
    case errors.Is(err, scheduler.ErrVenueOccupied),
        errors.Is(err, scheduler.ErrDuplicateBooking),
        errors.Is(err, scheduler.ErrCheckInClosed),
        errors.Is(err, model.ErrInvalidTransition):
        return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
    case errors.Is(err, scheduler.ErrInsufficientCapacity):
        return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
    case errors.Is(err, scheduler.ErrInvalidDuration),
        errors.Is(err, checkin.ErrExpired),
        errors.Is(err, checkin.ErrBadSignature),
        errors.Is(err, checkin.ErrMalformed):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    }
    c.Logger().Errorf("internal error: %v", err)
    return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
