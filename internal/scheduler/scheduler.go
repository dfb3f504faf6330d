package scheduler

import (
    "context"
    "fmt"
    "time"

    "github.com/iliyamo/exam-center-ops/internal/checkin"
    "github.com/iliyamo/exam-center-ops/internal/model"
)

// Scheduler orchestrates every booking mutation: single and batch
// creation with conflict fallback, administrative update, cancellation
// and the lifecycle transitions.  It receives its persistence ports at
// construction; there are no ambient singletons.  All times are
// handled in the server-local clock returned by now().
type Scheduler struct {
    store  BookingStore
    dir    Directory
    gen    SlotGenerator
    tokens *checkin.Protocol

    // enforceWindow makes CheckIn reject attempts outside the
    // [scheduled_at-30m, scheduled_at] window.  Off by default; the
    // window is advisory for self-service UIs.
    enforceWindow bool

    now func() time.Time
}

// New constructs a Scheduler bound to the given ports.  All
// dependencies must be non-nil.
func New(store BookingStore, dir Directory, tokens *checkin.Protocol) *Scheduler {
    if store == nil || dir == nil || tokens == nil {
        panic("nil dependency passed to scheduler.New")
    }
    return &Scheduler{
        store:  store,
        dir:    dir,
        gen:    DefaultSlotGenerator(),
        tokens: tokens,
        now:    func() time.Time { return time.Now().UTC() },
    }
}

// EnforceCheckInWindow toggles server-side enforcement of the check-in
// time window.
func (s *Scheduler) EnforceCheckInWindow(on bool) { s.enforceWindow = on }

// CreateBookingInput carries the validated primitives for a single
// booking.  Duration zero means "use the product default".
type CreateBookingInput struct {
    CandidateID uint64
    ProductID   uint64
    VenueID     uint64
    ScheduledAt time.Time
    Duration    int
}

// CreateSingle validates references, enforces the duplicate-active and
// venue-conflict rules inside one transaction, and creates a booking
// in the scheduled state.  No other entity is mutated.
func (s *Scheduler) CreateSingle(ctx context.Context, actor model.Actor, in CreateBookingInput) (*model.Booking, error) {
    if in.Duration < 0 {
        return nil, fmt.Errorf("%w: got %d", ErrInvalidDuration, in.Duration)
    }
    cand, err := s.dir.Candidate(ctx, in.CandidateID)
    if err != nil {
        return nil, fmt.Errorf("candidate %d: %w", in.CandidateID, err)
    }
    if !actor.Scope.CanAccess(cand.InstitutionID) {
        return nil, ErrForbidden
    }
    product, err := s.dir.ExamProduct(ctx, in.ProductID)
    if err != nil {
        return nil, fmt.Errorf("exam product %d: %w", in.ProductID, err)
    }
    if _, err := s.dir.Venue(ctx, in.VenueID); err != nil {
        return nil, fmt.Errorf("venue %d: %w", in.VenueID, err)
    }

    duration := resolveDuration(in.Duration, product)
    booking := &model.Booking{
        CandidateID: in.CandidateID,
        ProductID:   in.ProductID,
        VenueID:     in.VenueID,
        ScheduledAt: in.ScheduledAt,
        Duration:    duration,
        Status:      model.StatusScheduled,
        MaxScore:    100,
    }

    err = s.store.InTx(ctx, func(tx Tx) error {
        if err := s.checkDuplicate(ctx, tx, []uint64{in.CandidateID}, in.ProductID); err != nil {
            return err
        }
        if err := s.checkVenueWindow(ctx, tx, in.VenueID, booking.ScheduledAt, booking.EndsAt(), 0); err != nil {
            return err
        }
        return tx.Insert(ctx, booking)
    })
    if err != nil {
        return nil, err
    }
    return booking, nil
}

// CreateBatchInput carries the validated primitives for batch
// creation across a date range.
type CreateBatchInput struct {
    CandidateIDs []uint64
    ProductID    uint64
    VenueID      uint64
    StartDate    time.Time
    EndDate      time.Time
}

// BatchItem reports the outcome for one candidate of a batch request.
type BatchItem struct {
    CandidateID   uint64     `json:"candidate_id"`
    CandidateName string     `json:"candidate_name"`
    BookingID     uint64     `json:"booking_id,omitempty"`
    ScheduledAt   *time.Time `json:"scheduled_at,omitempty"`
    Reason        string     `json:"reason,omitempty"`
}

// BatchResult is the per-candidate success/failure list returned by
// CreateBatch.  Successes are committed together; failed rows never
// existed.
type BatchResult struct {
    Succeeded []BatchItem `json:"succeeded"`
    Failed    []BatchItem `json:"failed"`
}

// CreateBatch schedules a set of candidates into generated slots.
// The validation stage is all-or-nothing: unresolved candidates, a
// duplicate active booking anywhere in the set, or too few generated
// slots abort the whole batch with nothing created.  The assignment
// stage allows per-candidate failure: a candidate whose slot has been
// taken falls forward to the next free slot in the remaining
// sequence, and fails individually when none is left.  The successful
// subset commits in one transaction.
func (s *Scheduler) CreateBatch(ctx context.Context, actor model.Actor, in CreateBatchInput) (*BatchResult, error) {
    product, err := s.dir.ExamProduct(ctx, in.ProductID)
    if err != nil {
        return nil, fmt.Errorf("exam product %d: %w", in.ProductID, err)
    }
    if _, err := s.dir.Venue(ctx, in.VenueID); err != nil {
        return nil, fmt.Errorf("venue %d: %w", in.VenueID, err)
    }

    candidates := make([]*model.Candidate, 0, len(in.CandidateIDs))
    seen := make(map[uint64]bool, len(in.CandidateIDs))
    for _, id := range in.CandidateIDs {
        // A repeated ID would mint two active bookings for one
        // (candidate, product) pair; reject the whole batch.
        if seen[id] {
            return nil, fmt.Errorf("%w: candidate %d listed more than once", ErrDuplicateBooking, id)
        }
        seen[id] = true
        cand, err := s.dir.Candidate(ctx, id)
        if err != nil {
            return nil, fmt.Errorf("candidate %d: %w", id, err)
        }
        if !actor.Scope.CanAccess(cand.InstitutionID) {
            return nil, ErrForbidden
        }
        candidates = append(candidates, cand)
    }

    duration := resolveDuration(0, product)
    examDur := time.Duration(duration) * time.Minute
    slots := s.gen.Generate(in.StartDate, in.EndDate, examDur)
    if len(slots) < len(candidates) {
        return nil, fmt.Errorf("%w: %d slots for %d candidates", ErrInsufficientCapacity, len(slots), len(candidates))
    }

    result := &BatchResult{Succeeded: []BatchItem{}, Failed: []BatchItem{}}
    err = s.store.InTx(ctx, func(tx Tx) error {
        if err := s.checkDuplicate(ctx, tx, in.CandidateIDs, in.ProductID); err != nil {
            return err
        }
        for i, cand := range candidates {
            slot, ok, err := s.claimSlot(ctx, tx, in.VenueID, slots, i, examDur)
            if err != nil {
                return err
            }
            if !ok {
                result.Failed = append(result.Failed, BatchItem{
                    CandidateID:   cand.ID,
                    CandidateName: cand.Name,
                    Reason:        "no free time slot remaining",
                })
                continue
            }
            b := &model.Booking{
                CandidateID: cand.ID,
                ProductID:   in.ProductID,
                VenueID:     in.VenueID,
                ScheduledAt: slot,
                Duration:    duration,
                Status:      model.StatusScheduled,
                MaxScore:    100,
            }
            if err := tx.Insert(ctx, b); err != nil {
                return err
            }
            at := slot
            result.Succeeded = append(result.Succeeded, BatchItem{
                CandidateID:   cand.ID,
                CandidateName: cand.Name,
                BookingID:     b.ID,
                ScheduledAt:   &at,
            })
        }
        return nil
    })
    if err != nil {
        return nil, err
    }
    return result, nil
}

// claimSlot returns the first unconflicted slot at or after index i.
// The search is forward-only within the generated sequence; slots
// taken by earlier assignments in the same batch are seen through the
// shared transaction.
func (s *Scheduler) claimSlot(ctx context.Context, tx Tx, venueID uint64, slots []time.Time, i int, examDur time.Duration) (time.Time, bool, error) {
    for j := i; j < len(slots); j++ {
        conflicts, err := tx.OccupyingInWindow(ctx, venueID, slots[j], slots[j].Add(examDur), 0)
        if err != nil {
            return time.Time{}, false, err
        }
        if len(conflicts) == 0 {
            return slots[j], true, nil
        }
    }
    return time.Time{}, false, nil
}

// UpdatePatch lists the administratively mutable fields of a
// scheduled booking.  Nil means "leave unchanged".
type UpdatePatch struct {
    ScheduledAt *time.Time
    Duration    *int
    VenueID     *uint64
    Notes       *string
    ExamData    map[string]interface{}
}

// Update applies a patch to a booking that is still in the scheduled
// state.  When the time, duration or venue changes, the venue conflict
// check is re-run excluding the booking itself.
func (s *Scheduler) Update(ctx context.Context, actor model.Actor, bookingID uint64, patch UpdatePatch) (*model.Booking, error) {
    var updated *model.Booking
    err := s.store.InTx(ctx, func(tx Tx) error {
        b, err := s.loadScoped(ctx, tx, actor, bookingID)
        if err != nil {
            return err
        }
        if b.Status != model.StatusScheduled {
            return fmt.Errorf("%w: cannot update a booking in status %q", model.ErrInvalidTransition, b.Status)
        }
        recheck := false
        if patch.ScheduledAt != nil {
            b.ScheduledAt = *patch.ScheduledAt
            recheck = true
        }
        if patch.Duration != nil {
            if *patch.Duration <= 0 {
                return fmt.Errorf("%w: got %d", ErrInvalidDuration, *patch.Duration)
            }
            b.Duration = *patch.Duration
            recheck = true
        }
        if patch.VenueID != nil {
            if _, err := s.dir.Venue(ctx, *patch.VenueID); err != nil {
                return fmt.Errorf("venue %d: %w", *patch.VenueID, err)
            }
            b.VenueID = *patch.VenueID
            recheck = true
        }
        if patch.Notes != nil {
            b.Notes = *patch.Notes
        }
        if patch.ExamData != nil {
            b.ExamData = patch.ExamData
        }
        if recheck {
            if err := s.checkVenueWindow(ctx, tx, b.VenueID, b.ScheduledAt, b.EndsAt(), b.ID); err != nil {
                return err
            }
        }
        if err := tx.Update(ctx, b); err != nil {
            return err
        }
        updated = b
        return nil
    })
    if err != nil {
        return nil, err
    }
    return updated, nil
}

// Cancel cancels a booking still in the scheduled or checked_in state,
// recording the reason in its notes.
func (s *Scheduler) Cancel(ctx context.Context, actor model.Actor, bookingID uint64, reason string) (*model.Booking, error) {
    return s.transition(ctx, actor, bookingID, func(b *model.Booking) error {
        return b.Cancel(reason)
    })
}

// CheckIn moves a scheduled booking to checked_in, attributing the
// check-in to the acting staff user.  When window enforcement is on,
// attempts outside [scheduled_at-30m, scheduled_at] fail with
// ErrCheckInClosed.
func (s *Scheduler) CheckIn(ctx context.Context, actor model.Actor, bookingID uint64) (*model.Booking, error) {
    return s.transition(ctx, actor, bookingID, func(b *model.Booking) error {
        now := s.now()
        if s.enforceWindow && b.Status == model.StatusScheduled && !b.CanCheckIn(now) {
            return ErrCheckInClosed
        }
        proctor := actor.ID
        return b.CheckIn(now, &proctor)
    })
}

// StartExam moves a checked-in booking to in_progress.
func (s *Scheduler) StartExam(ctx context.Context, actor model.Actor, bookingID uint64) (*model.Booking, error) {
    return s.transition(ctx, actor, bookingID, func(b *model.Booking) error {
        return b.StartExam(s.now())
    })
}

// CompleteExam finishes an in-progress booking, recording the score
// and deriving the result when none is supplied.
func (s *Scheduler) CompleteExam(ctx context.Context, actor model.Actor, bookingID uint64, score *float64, result *model.ExamResult) (*model.Booking, error) {
    return s.transition(ctx, actor, bookingID, func(b *model.Booking) error {
        return b.CompleteExam(s.now(), score, result)
    })
}

// MarkNoShow flags a past-due scheduled booking as a no-show.
func (s *Scheduler) MarkNoShow(ctx context.Context, actor model.Actor, bookingID uint64) (*model.Booking, error) {
    return s.transition(ctx, actor, bookingID, func(b *model.Booking) error {
        return b.MarkNoShow(s.now())
    })
}

// Postpone re-opens a non-terminal booking at a new time after
// re-running the venue conflict check for the new window.
func (s *Scheduler) Postpone(ctx context.Context, actor model.Actor, bookingID uint64, newTime time.Time, reason string) (*model.Booking, error) {
    var out *model.Booking
    err := s.store.InTx(ctx, func(tx Tx) error {
        b, err := s.loadScoped(ctx, tx, actor, bookingID)
        if err != nil {
            return err
        }
        end := newTime.Add(time.Duration(b.Duration) * time.Minute)
        if err := s.checkVenueWindow(ctx, tx, b.VenueID, newTime, end, b.ID); err != nil {
            return err
        }
        if err := b.Postpone(newTime, reason); err != nil {
            return err
        }
        if err := tx.Update(ctx, b); err != nil {
            return err
        }
        out = b
        return nil
    })
    if err != nil {
        return nil, err
    }
    return out, nil
}

// transition loads the booking under the transaction, verifies the
// actor's scope, applies fn and persists the result.  Every operation
// re-reads current status before transitioning; nothing is cached
// across calls.
func (s *Scheduler) transition(ctx context.Context, actor model.Actor, bookingID uint64, fn func(*model.Booking) error) (*model.Booking, error) {
    var out *model.Booking
    err := s.store.InTx(ctx, func(tx Tx) error {
        b, err := s.loadScoped(ctx, tx, actor, bookingID)
        if err != nil {
            return err
        }
        if err := fn(b); err != nil {
            return err
        }
        if err := tx.Update(ctx, b); err != nil {
            return err
        }
        out = b
        return nil
    })
    if err != nil {
        return nil, err
    }
    return out, nil
}

// loadScoped fetches a booking and verifies the actor may act on it
// via the owning candidate's institution.
func (s *Scheduler) loadScoped(ctx context.Context, tx Tx, actor model.Actor, bookingID uint64) (*model.Booking, error) {
    b, err := tx.BookingByID(ctx, bookingID)
    if err != nil {
        return nil, err
    }
    cand, err := s.dir.Candidate(ctx, b.CandidateID)
    if err != nil {
        return nil, err
    }
    if !actor.Scope.CanAccess(cand.InstitutionID) {
        return nil, ErrForbidden
    }
    return b, nil
}

// checkDuplicate enforces the one-active-booking-per-candidate-per-
// product rule for the given candidate set.
func (s *Scheduler) checkDuplicate(ctx context.Context, tx Tx, candidateIDs []uint64, productID uint64) error {
    active, err := tx.ActiveForProduct(ctx, candidateIDs, productID)
    if err != nil {
        return err
    }
    if len(active) == 0 {
        return nil
    }
    ids := make([]uint64, 0, len(active))
    for _, b := range active {
        ids = append(ids, b.CandidateID)
    }
    return fmt.Errorf("%w: candidates %v", ErrDuplicateBooking, ids)
}

// checkVenueWindow enforces the venue calendar: no occupying booking
// may overlap [start, end) except the one identified by excludeID.
func (s *Scheduler) checkVenueWindow(ctx context.Context, tx Tx, venueID uint64, start, end time.Time, excludeID uint64) error {
    conflicts, err := tx.OccupyingInWindow(ctx, venueID, start, end, excludeID)
    if err != nil {
        return err
    }
    if len(conflicts) > 0 {
        return fmt.Errorf("%w: %s–%s at venue %d", ErrVenueOccupied,
            start.Format("2006-01-02 15:04"), end.Format("15:04"), venueID)
    }
    return nil
}

// resolveDuration picks the effective exam length: the request value,
// else the product default, else the global default.
func resolveDuration(requested int, product *model.ExamProduct) int {
    if requested > 0 {
        return requested
    }
    if product.Duration > 0 {
        return product.Duration
    }
    return model.DefaultExamDuration
}
