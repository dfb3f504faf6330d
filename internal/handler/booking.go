package handler

import (
    "context"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/exam-center-ops/internal/model"
    "github.com/iliyamo/exam-center-ops/internal/queue"
    "github.com/iliyamo/exam-center-ops/internal/repository"
    "github.com/iliyamo/exam-center-ops/internal/scheduler"
    queue_publisher "github.com/iliyamo/exam-center-ops/internal/service"
)

// BookingHandler exposes the staff operations API: booking creation
// (single and batch), the administrative list/detail/stats views and
// every lifecycle transition.  All mutations go through the
// scheduling engine; the repo is used directly only for reads that
// need filters the engine does not care about.
type BookingHandler struct {
    Sched      *scheduler.Scheduler
    Bookings   *repository.BookingRepo
    Candidates *repository.CandidateRepo
}

func NewBookingHandler(s *scheduler.Scheduler, b *repository.BookingRepo, c *repository.CandidateRepo) *BookingHandler {
    return &BookingHandler{Sched: s, Bookings: b, Candidates: c}
}

// ----- DTOs -----

type createBookingReq struct {
    CandidateID uint64 `json:"candidate_id"`
    ProductID   uint64 `json:"product_id"`
    VenueID     uint64 `json:"venue_id"`
    ScheduledAt string `json:"scheduled_at"` // RFC 3339
    Duration    int    `json:"duration"`     // minutes, 0 = product default
}

type createBatchReq struct {
    CandidateIDs []uint64 `json:"candidate_ids"`
    ProductID    uint64   `json:"product_id"`
    VenueID      uint64   `json:"venue_id"`
    StartDate    string   `json:"start_date"` // 2006-01-02
    EndDate      string   `json:"end_date"`
}

type updateBookingReq struct {
    ScheduledAt *string                `json:"scheduled_at"`
    Duration    *int                   `json:"duration"`
    VenueID     *uint64                `json:"venue_id"`
    Notes       *string                `json:"notes"`
    ExamData    map[string]interface{} `json:"exam_data"`
}

type reasonReq struct {
    Reason string `json:"reason"`
}

type completeReq struct {
    Score  *float64 `json:"score"`
    Result *string  `json:"result"` // pass | fail | pending
}

type postponeReq struct {
    NewTime string `json:"new_time"` // RFC 3339
    Reason  string `json:"reason"`
}

type scanReq struct {
    Token string `json:"token"` // raw QR payload
}

// Create books a single candidate into an explicit time slot.
func (h *BookingHandler) Create(c echo.Context) error {
    var req createBookingReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    at, err := time.Parse(time.RFC3339, req.ScheduledAt)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "scheduled_at must be RFC 3339"})
    }
    if req.CandidateID == 0 || req.ProductID == 0 || req.VenueID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "candidate_id/product_id/venue_id required"})
    }

    b, err := h.Sched.CreateSingle(c.Request().Context(), actorFrom(c), scheduler.CreateBookingInput{
        CandidateID: req.CandidateID,
        ProductID:   req.ProductID,
        VenueID:     req.VenueID,
        ScheduledAt: at.UTC(),
        Duration:    req.Duration,
    })
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusCreated, echo.Map{"booking": b})
}

// CreateBatch schedules a set of candidates across generated slots in
// a date range.  Validation failures abort the whole batch; slot
// exhaustion during assignment fails only the affected candidates.
func (h *BookingHandler) CreateBatch(c echo.Context) error {
    var req createBatchReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if len(req.CandidateIDs) == 0 || req.ProductID == 0 || req.VenueID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "candidate_ids/product_id/venue_id required"})
    }
    start, err := time.Parse("2006-01-02", req.StartDate)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "start_date must be 2006-01-02"})
    }
    end, err := time.Parse("2006-01-02", req.EndDate)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "end_date must be 2006-01-02"})
    }
    if end.Before(start) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "end_date before start_date"})
    }

    res, err := h.Sched.CreateBatch(c.Request().Context(), actorFrom(c), scheduler.CreateBatchInput{
        CandidateIDs: req.CandidateIDs,
        ProductID:    req.ProductID,
        VenueID:      req.VenueID,
        StartDate:    start,
        EndDate:      end,
    })
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusCreated, res)
}

// List returns a filtered, paginated booking list scoped to the
// actor's institution unless admin.
func (h *BookingHandler) List(c echo.Context) error {
    actor := actorFrom(c)
    f := repository.ListFilter{
        Status:      model.BookingStatus(c.QueryParam("status")),
        VenueID:     queryUint(c, "venue_id"),
        ProductID:   queryUint(c, "product_id"),
        CandidateID: queryUint(c, "candidate_id"),
        Page:        int(queryUint(c, "page")),
        PerPage:     int(queryUint(c, "per_page")),
    }
    if actor.Scope.Kind == model.ScopeInstitution {
        f.InstitutionID = actor.Scope.InstitutionID
    }
    if from := c.QueryParam("from"); from != "" {
        t, err := time.Parse("2006-01-02", from)
        if err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "from must be 2006-01-02"})
        }
        f.From = &t
    }
    if to := c.QueryParam("to"); to != "" {
        t, err := time.Parse("2006-01-02", to)
        if err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "to must be 2006-01-02"})
        }
        end := t.AddDate(0, 0, 1).Add(-time.Second)
        f.To = &end
    }

    list, total, err := h.Bookings.List(c.Request().Context(), f)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"bookings": list, "total": total})
}

// Get returns one booking with its candidate, subject to scope.
func (h *BookingHandler) Get(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    ctx := c.Request().Context()
    b, err := h.Bookings.BookingByID(ctx, id)
    if err != nil {
        return writeError(c, err)
    }
    cand, err := h.Candidates.FindByID(ctx, b.CandidateID)
    if err != nil {
        return writeError(c, err)
    }
    if !actorFrom(c).Scope.CanAccess(cand.InstitutionID) {
        return writeError(c, scheduler.ErrForbidden)
    }
    return c.JSON(http.StatusOK, echo.Map{"booking": b, "candidate": cand})
}

// Update patches a still-scheduled booking.
func (h *BookingHandler) Update(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    var req updateBookingReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    patch := scheduler.UpdatePatch{
        Duration: req.Duration,
        VenueID:  req.VenueID,
        Notes:    req.Notes,
        ExamData: req.ExamData,
    }
    if req.ScheduledAt != nil {
        at, err := time.Parse(time.RFC3339, *req.ScheduledAt)
        if err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "scheduled_at must be RFC 3339"})
        }
        u := at.UTC()
        patch.ScheduledAt = &u
    }

    b, err := h.Sched.Update(c.Request().Context(), actorFrom(c), id, patch)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"booking": b})
}

// Cancel cancels a booking, recording the reason.
func (h *BookingHandler) Cancel(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    var req reasonReq
    _ = c.Bind(&req) // reason is optional

    b, err := h.Sched.Cancel(c.Request().Context(), actorFrom(c), id, req.Reason)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"booking": b})
}

// CheckIn performs a manual staff check-in without a QR code.
func (h *BookingHandler) CheckIn(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    b, err := h.Sched.CheckIn(c.Request().Context(), actorFrom(c), id)
    if err != nil {
        return writeError(c, err)
    }
    h.publishCheckedIn(b, "")
    return c.JSON(http.StatusOK, echo.Map{"booking": b})
}

// Scan performs a QR check-in: the proctor posts the raw token payload
// scanned from the candidate's screen.
func (h *BookingHandler) Scan(c echo.Context) error {
    var req scanReq
    if err := c.Bind(&req); err != nil || req.Token == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "token required"})
    }
    receipt, err := h.Sched.VerifyAndCheckIn(c.Request().Context(), actorFrom(c), req.Token)
    if err != nil {
        return writeError(c, err)
    }
    h.publishCheckedIn(receipt.Booking, receipt.Candidate.Name)
    return c.JSON(http.StatusOK, echo.Map{
        "booking":   receipt.Booking,
        "candidate": receipt.Candidate,
    })
}

// Start moves a checked-in booking to in_progress.
func (h *BookingHandler) Start(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    b, err := h.Sched.StartExam(c.Request().Context(), actorFrom(c), id)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"booking": b})
}

// Complete finishes an in-progress exam and records its outcome.
func (h *BookingHandler) Complete(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    var req completeReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    var result *model.ExamResult
    if req.Result != nil {
        switch r := model.ExamResult(*req.Result); r {
        case model.ResultPass, model.ResultFail, model.ResultPending:
            result = &r
        default:
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "result must be pass, fail or pending"})
        }
    }

    b, err := h.Sched.CompleteExam(c.Request().Context(), actorFrom(c), id, req.Score, result)
    if err != nil {
        return writeError(c, err)
    }
    h.publishCompleted(b)
    return c.JSON(http.StatusOK, echo.Map{"booking": b})
}

// NoShow flags a past-due scheduled booking as a no-show.
func (h *BookingHandler) NoShow(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    b, err := h.Sched.MarkNoShow(c.Request().Context(), actorFrom(c), id)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"booking": b})
}

// Postpone reschedules a non-terminal booking to a new time.
func (h *BookingHandler) Postpone(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    var req postponeReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    at, err := time.Parse(time.RFC3339, req.NewTime)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "new_time must be RFC 3339"})
    }

    b, err := h.Sched.Postpone(c.Request().Context(), actorFrom(c), id, at.UTC(), req.Reason)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"booking": b})
}

// Stats aggregates bookings by status and day within the actor's
// scope.
func (h *BookingHandler) Stats(c echo.Context) error {
    actor := actorFrom(c)
    var institutionID uint64
    if actor.Scope.Kind == model.ScopeInstitution {
        institutionID = actor.Scope.InstitutionID
    }
    var from, to *time.Time
    if s := c.QueryParam("from"); s != "" {
        t, err := time.Parse("2006-01-02", s)
        if err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "from must be 2006-01-02"})
        }
        from = &t
    }
    if s := c.QueryParam("to"); s != "" {
        t, err := time.Parse("2006-01-02", s)
        if err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "to must be 2006-01-02"})
        }
        end := t.AddDate(0, 0, 1).Add(-time.Second)
        to = &end
    }

    byStatus, byDate, err := h.Bookings.Stats(c.Request().Context(), institutionID, queryUint(c, "venue_id"), from, to)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"by_status": byStatus, "by_date": byDate})
}

// publishCheckedIn emits the audit event for a check-in.  Best effort:
// a broker outage never fails the request.
func (h *BookingHandler) publishCheckedIn(b *model.Booking, candidateName string) {
    var proctorID uint64
    if b.ProctorID != nil {
        proctorID = *b.ProctorID
    }
    checkInAt := ""
    if b.CheckInAt != nil {
        checkInAt = b.CheckInAt.Format(time.RFC3339)
    }
    ev := queue.AuditEvent{
        Kind:       queue.KindCheckedIn,
        OccurredAt: checkInAt,
        CheckedIn: &queue.BookingCheckedInEvent{
            BookingID:     b.ID,
            CandidateID:   b.CandidateID,
            CandidateName: candidateName,
            ProductID:     b.ProductID,
            VenueID:       b.VenueID,
            ProctorID:     proctorID,
            ScheduledAt:   b.ScheduledAt.Format(time.RFC3339),
            CheckInAt:     checkInAt,
        },
    }
    go func() {
        ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
        defer cancel()
        _ = queue_publisher.PublishAuditEvent(ctx, ev)
    }()
}

// publishCompleted emits the audit event for a completed exam.
func (h *BookingHandler) publishCompleted(b *model.Booking) {
    var score float64
    if b.Score != nil {
        score = *b.Score
    }
    result := string(model.ResultPending)
    if b.Result != nil {
        result = string(*b.Result)
    }
    endAt := ""
    if b.EndAt != nil {
        endAt = b.EndAt.Format(time.RFC3339)
    }
    ev := queue.AuditEvent{
        Kind:       queue.KindCompleted,
        OccurredAt: endAt,
        Completed: &queue.ExamCompletedEvent{
            BookingID:   b.ID,
            CandidateID: b.CandidateID,
            ProductID:   b.ProductID,
            VenueID:     b.VenueID,
            Score:       score,
            MaxScore:    b.MaxScore,
            Result:      result,
            EndAt:       endAt,
        },
    }
    go func() {
        ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
        defer cancel()
        _ = queue_publisher.PublishAuditEvent(ctx, ev)
    }()
}

func queryUint(c echo.Context, name string) uint64 {
    n, _ := strconv.ParseUint(c.QueryParam(name), 10, 64)
    return n
}
