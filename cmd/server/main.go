package main // Entry point package

import (
    "log" // Logging library

    "github.com/joho/godotenv"    // .env loader for local development
    "github.com/labstack/echo/v4" // Echo web framework

    "github.com/iliyamo/exam-center-ops/internal/checkin"
    "github.com/iliyamo/exam-center-ops/internal/config"
    "github.com/iliyamo/exam-center-ops/internal/database"
    "github.com/iliyamo/exam-center-ops/internal/handler"
    "github.com/iliyamo/exam-center-ops/internal/middleware"
    "github.com/iliyamo/exam-center-ops/internal/queue"
    "github.com/iliyamo/exam-center-ops/internal/repository"
    "github.com/iliyamo/exam-center-ops/internal/router"
    "github.com/iliyamo/exam-center-ops/internal/scheduler"
)

func main() {
    // Load .env when present; real deployments set env vars directly.
    _ = godotenv.Load()

    cfg := config.Load()

    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        log.Fatalf("database: %v", err)
    }
    defer db.Close()

    // Repositories over the shared pool.
    bookings := repository.NewBookingRepo(db)
    candidates := repository.NewCandidateRepo(db)
    products := repository.NewProductRepo(db)
    venues := repository.NewVenueRepo(db)
    users := repository.NewUserRepo(db)
    dir := repository.NewDirectory(candidates, products, venues)

    // Scheduling engine and the QR check-in protocol.
    tokens := checkin.NewProtocol(cfg.QRSecret)
    sched := scheduler.New(bookings, dir, tokens)
    sched.EnforceCheckInWindow(cfg.CheckinEnforceWindow)

    // Handlers.
    authH := handler.NewAuthHandler(cfg, users, candidates)
    bookingH := handler.NewBookingHandler(sched, bookings, candidates)
    miniH := handler.NewMiniAppHandler(candidates, bookings, tokens, sched)
    catH := handler.NewCatalogHandler(products, venues)

    // Redis is optional: rate limiting and board caching degrade to
    // no-ops when it is unreachable.
    rdb := config.NewRedisClient()
    if rdb == nil {
        log.Printf("redis unavailable; rate limiting and caching disabled")
    }

    e := echo.New()
    e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
    cacheMW := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

    router.RegisterRoutes(e)
    router.RegisterAuth(e, authH)
    router.RegisterPublic(e, catH, miniH, cacheMW)
    router.RegisterStaff(e, bookingH, cfg.JWTSecret)
    router.RegisterAdmin(e, authH, cfg.JWTSecret)
    router.RegisterMiniApp(e, miniH, cfg.JWTSecret)

    // Audit consumer runs for the life of the process, reconnecting on
    // broker failures.
    go func() {
        if err := queue.StartAuditConsumer(); err != nil {
            log.Printf("audit consumer stopped: %v", err)
        }
    }()

    addr := ":" + cfg.Port
    log.Printf("listening on %s (env=%s)", addr, cfg.Env)

    if err := e.Start(addr); err != nil {
        log.Fatal(err)
    }
}
