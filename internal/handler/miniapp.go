package handler

import (
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/exam-center-ops/internal/checkin"
    "github.com/iliyamo/exam-center-ops/internal/model"
    "github.com/iliyamo/exam-center-ops/internal/repository"
    "github.com/iliyamo/exam-center-ops/internal/scheduler"
)

// MiniAppHandler serves the candidate-facing surface: profile with
// exam statistics, own schedules, the check-in QR code and the public
// venue board.
type MiniAppHandler struct {
    Candidates *repository.CandidateRepo
    Bookings   *repository.BookingRepo
    Tokens     *checkin.Protocol
    Sched      *scheduler.Scheduler
}

func NewMiniAppHandler(c *repository.CandidateRepo, b *repository.BookingRepo, t *checkin.Protocol, s *scheduler.Scheduler) *MiniAppHandler {
    return &MiniAppHandler{Candidates: c, Bookings: b, Tokens: t, Sched: s}
}

// Profile returns the logged-in candidate's record together with
// booking statistics.
func (h *MiniAppHandler) Profile(c echo.Context) error {
    ctx := c.Request().Context()
    cand, err := h.Candidates.FindByID(ctx, candidateIDFrom(c))
    if err != nil {
        return writeError(c, err)
    }
    bookings, err := h.Bookings.ListByCandidate(ctx, cand.ID)
    if err != nil {
        return writeError(c, err)
    }
    stats := struct {
        Total     int `json:"total"`
        Upcoming  int `json:"upcoming"`
        Completed int `json:"completed"`
        Passed    int `json:"passed"`
    }{}
    for _, b := range bookings {
        stats.Total++
        switch b.Status {
        case model.StatusScheduled, model.StatusCheckedIn, model.StatusInProgress:
            stats.Upcoming++
        case model.StatusCompleted:
            stats.Completed++
            if b.Result != nil && *b.Result == model.ResultPass {
                stats.Passed++
            }
        }
    }
    return c.JSON(http.StatusOK, echo.Map{"candidate": cand, "stats": stats})
}

// MySchedules lists all of the candidate's bookings, newest first.
func (h *MiniAppHandler) MySchedules(c echo.Context) error {
    bookings, err := h.Bookings.ListByCandidate(c.Request().Context(), candidateIDFrom(c))
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"bookings": bookings})
}

// TodaySchedules lists the candidate's bookings starting today,
// earliest first.
func (h *MiniAppHandler) TodaySchedules(c echo.Context) error {
    bookings, err := h.Bookings.ListByCandidate(c.Request().Context(), candidateIDFrom(c))
    if err != nil {
        return writeError(c, err)
    }
    now := time.Now().UTC()
    y, m, d := now.Date()
    dayStart := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
    dayEnd := dayStart.AddDate(0, 0, 1)

    today := make([]model.Booking, 0)
    for i := len(bookings) - 1; i >= 0; i-- { // stored newest-first, emit earliest-first
        b := bookings[i]
        if !b.ScheduledAt.Before(dayStart) && b.ScheduledAt.Before(dayEnd) {
            today = append(today, b)
        }
    }
    return c.JSON(http.StatusOK, echo.Map{"bookings": today})
}

// QRCode issues a short-lived signed check-in token for the candidate
// and renders it as a QR image.  An optional booking_id query binds
// the token to one booking; without it the scan resolves to the
// earliest scheduled booking of the day.
func (h *MiniAppHandler) QRCode(c echo.Context) error {
    ctx := c.Request().Context()
    candID := candidateIDFrom(c)

    var bookingID *uint64
    if id := queryUint(c, "booking_id"); id != 0 {
        b, err := h.Bookings.BookingByID(ctx, id)
        if err != nil {
            return writeError(c, err)
        }
        if b.CandidateID != candID {
            return writeError(c, scheduler.ErrNotFound)
        }
        bookingID = &id
    }

    tok, raw, err := h.Tokens.Issue(candID, bookingID)
    if err != nil {
        return writeError(c, err)
    }
    img, err := checkin.QRDataURL(raw)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{
        "token":      raw,
        "qr_code":    img,
        "expires_at": tok.ExpiresAt().Format(time.RFC3339),
    })
}

// Board serves the public venue board for a day: per-status counts and
// hourly buckets.  date defaults to today; venue_id zero means all
// venues.
func (h *MiniAppHandler) Board(c echo.Context) error {
    day := time.Now().UTC()
    if s := c.QueryParam("date"); s != "" {
        t, err := time.Parse("2006-01-02", s)
        if err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be 2006-01-02"})
        }
        day = t
    }
    board, err := h.Sched.VenueBoard(c.Request().Context(), queryUint(c, "venue_id"), day)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, board)
}
