package router // package router defines how HTTP routes are registered for the API

import (
    "github.com/labstack/echo/v4" // import the Echo web framework to handle routing

    "github.com/iliyamo/exam-center-ops/internal/handler"    // import the handlers that implement business logic
    "github.com/iliyamo/exam-center-ops/internal/middleware" // import middleware for JWT authentication and role enforcement
    "github.com/iliyamo/exam-center-ops/internal/model"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health
// check.
func RegisterRoutes(e *echo.Echo) {
    // Used by load balancers or monitoring systems to verify that the
    // service is up and running.
    e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the two login endpoints.  Staff log in with
// username and password; candidates log in from the mini-app with
// their national ID number and phone.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler) {
    g := e.Group("/v1/auth")
    g.POST("/staff/login", a.StaffLogin)
    g.POST("/candidate/login", a.CandidateLogin)
}

// RegisterPublic registers unauthenticated browse endpoints: the
// master-data catalog and the venue board.  cacheMW, when non-nil,
// caches board responses.
func RegisterPublic(e *echo.Echo, cat *handler.CatalogHandler, mini *handler.MiniAppHandler, cacheMW echo.MiddlewareFunc) {
    e.GET("/v1/products", cat.ListProducts)
    e.GET("/v1/venues", cat.ListVenues)
    if cacheMW != nil {
        e.GET("/v1/board", mini.Board, cacheMW)
    } else {
        e.GET("/v1/board", mini.Board)
    }
}

// RegisterStaff registers the staff operations API under /v1.  All
// routes require a staff JWT; booking mutations additionally require
// an operations role.
func RegisterStaff(e *echo.Echo, b *handler.BookingHandler, jwtSecret string) {
    g := e.Group(
        "/v1",
        middleware.JWTAuth(jwtSecret),
        middleware.RequireStaff(),
        middleware.RequireRole(model.RoleAdmin, model.RoleInstitutionAdmin, model.RoleProctor),
    )

    // ---- Bookings ----
    g.POST("/bookings", b.Create)
    g.POST("/bookings/batch", b.CreateBatch)
    g.GET("/bookings", b.List)
    g.GET("/bookings/stats", b.Stats)
    g.GET("/bookings/:id", b.Get)
    g.PUT("/bookings/:id", b.Update)
    g.PATCH("/bookings/:id", b.Update) // alias for clients that use PATCH

    // ---- Lifecycle ----
    g.POST("/bookings/:id/cancel", b.Cancel)
    g.POST("/bookings/:id/checkin", b.CheckIn)
    g.POST("/bookings/:id/start", b.Start)
    g.POST("/bookings/:id/complete", b.Complete)
    g.POST("/bookings/:id/no-show", b.NoShow)
    g.POST("/bookings/:id/postpone", b.Postpone)

    // ---- QR scan ----
    g.POST("/checkin/scan", b.Scan)
}

// RegisterAdmin registers account-provisioning endpoints reserved for
// global administrators.
func RegisterAdmin(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
    g := e.Group(
        "/v1/staff",
        middleware.JWTAuth(jwtSecret),
        middleware.RequireStaff(),
        middleware.RequireRole(model.RoleAdmin),
    )
    g.POST("", a.CreateStaff)
}

// RegisterMiniApp registers the candidate self-service endpoints under
// /v1/miniapp.  All routes require a candidate JWT.
func RegisterMiniApp(e *echo.Echo, m *handler.MiniAppHandler, jwtSecret string) {
    g := e.Group(
        "/v1/miniapp",
        middleware.JWTAuth(jwtSecret),
        middleware.RequireCandidate(),
    )

    g.GET("/profile", m.Profile)
    g.GET("/schedules", m.MySchedules)
    g.GET("/schedules/today", m.TodaySchedules)
    g.GET("/qrcode", m.QRCode)
}
