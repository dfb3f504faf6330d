package model

import (
    "errors"
    "fmt"
    "time"
)

// BookingStatus enumerates the lifecycle states of a booking.  The
// values match the `bookings.status` column.  Transitions between
// states are owned by the methods on Booking below; callers must not
// assign Status directly.
type BookingStatus string

const (
    StatusScheduled  BookingStatus = "scheduled"   // created, waiting for the candidate
    StatusCheckedIn  BookingStatus = "checked_in"  // candidate present at the venue
    StatusInProgress BookingStatus = "in_progress" // exam running
    StatusCompleted  BookingStatus = "completed"   // terminal
    StatusCancelled  BookingStatus = "cancelled"   // terminal
    StatusNoShow     BookingStatus = "no_show"     // terminal
)

// ExamResult enumerates the outcome of a completed exam.
type ExamResult string

const (
    ResultPass    ExamResult = "pass"
    ResultFail    ExamResult = "fail"
    ResultPending ExamResult = "pending"
)

// PassingScore is the threshold used to derive a result when
// CompleteExam receives a score without an explicit result.
const PassingScore = 60

// CheckInWindow is how long before the scheduled time a candidate may
// check in.  The window is advisory for self-service UIs; whether the
// server enforces it is decided at the orchestrator boundary.
const CheckInWindow = 30 * time.Minute

// ErrInvalidTransition is returned (wrapped) whenever a lifecycle
// method is called on a booking whose current status does not satisfy
// the method's precondition.  Transitions never silently no-op.
var ErrInvalidTransition = errors.New("invalid transition")

// Booking is a scheduled exam event: the join point between a
// candidate, an exam product and a venue.  The occupied interval of a
// booking is [ScheduledAt, ScheduledAt + Duration minutes).
//
// Fields:
//  ID          – primary key identifier.
//  CandidateID – candidate sitting the exam.
//  ProductID   – exam product being taken.
//  VenueID     – venue hosting the exam.
//  ProctorID   – user who checked the candidate in (nullable).
//  ScheduledAt – exam start time (UTC).
//  Duration    – exam length in minutes.
//  Status      – lifecycle state, see BookingStatus.
//  Result      – pass/fail/pending, nil until completion.
//  Score       – 0..100, nil until a score is recorded.
//  MaxScore    – full marks, defaults to 100.
//  CheckInAt   – when the candidate checked in (nullable).
//  StartAt     – when the exam started (nullable).
//  EndAt       – when the exam ended (nullable).
//  ExamData    – free-form metadata; not part of any invariant this
//                package enforces.
//  Notes       – free-form notes; cancel/postpone reasons are appended here.
type Booking struct {
    ID          uint64                 `json:"id"`
    CandidateID uint64                 `json:"candidate_id"`
    ProductID   uint64                 `json:"product_id"`
    VenueID     uint64                 `json:"venue_id"`
    ProctorID   *uint64                `json:"proctor_id,omitempty"`
    ScheduledAt time.Time              `json:"scheduled_at"`
    Duration    int                    `json:"duration"` // minutes
    Status      BookingStatus          `json:"status"`
    Result      *ExamResult            `json:"result,omitempty"`
    Score       *float64               `json:"score,omitempty"`
    MaxScore    float64                `json:"max_score"`
    CheckInAt   *time.Time             `json:"check_in_at,omitempty"`
    StartAt     *time.Time             `json:"start_at,omitempty"`
    EndAt       *time.Time             `json:"end_at,omitempty"`
    ExamData    map[string]interface{} `json:"exam_data,omitempty"`
    Notes       string                 `json:"notes,omitempty"`
    CreatedAt   time.Time              `json:"created_at"`
    UpdatedAt   time.Time              `json:"updated_at"`
}

// EndsAt returns the end of the booking's occupied interval.
func (b *Booking) EndsAt() time.Time {
    return b.ScheduledAt.Add(time.Duration(b.Duration) * time.Minute)
}

// Occupying reports whether the booking counts against the venue
// calendar and the one-active-booking-per-product rule.
func (b *Booking) Occupying() bool {
    return b.Status == StatusScheduled || b.Status == StatusInProgress
}

// Overlaps reports whether the booking's [start, end) interval
// intersects the given window.  Exactly touching endpoints do not
// overlap.
func (b *Booking) Overlaps(windowStart, windowEnd time.Time) bool {
    return b.ScheduledAt.Before(windowEnd) && b.EndsAt().After(windowStart)
}

func (b *Booking) transitionErr(op string) error {
    return fmt.Errorf("%w: cannot %s a booking in status %q", ErrInvalidTransition, op, b.Status)
}

// CheckIn moves a scheduled booking to checked_in, recording the
// check-in time and optionally the proctor who performed it.
func (b *Booking) CheckIn(now time.Time, proctorID *uint64) error {
    if b.Status != StatusScheduled {
        return b.transitionErr("check in")
    }
    b.Status = StatusCheckedIn
    t := now
    b.CheckInAt = &t
    if proctorID != nil {
        b.ProctorID = proctorID
    }
    return nil
}

// StartExam moves a checked-in booking to in_progress and records the
// actual start time.
func (b *Booking) StartExam(now time.Time) error {
    if b.Status != StatusCheckedIn {
        return b.transitionErr("start")
    }
    b.Status = StatusInProgress
    t := now
    b.StartAt = &t
    return nil
}

// CompleteExam finishes an in-progress booking.  When a score is given
// without an explicit result, the result is derived: >= PassingScore
// means pass, otherwise fail.  With neither score nor result the
// outcome stays pending.
func (b *Booking) CompleteExam(now time.Time, score *float64, result *ExamResult) error {
    if b.Status != StatusInProgress {
        return b.transitionErr("complete")
    }
    b.Status = StatusCompleted
    t := now
    b.EndAt = &t
    if score != nil {
        s := *score
        b.Score = &s
    }
    switch {
    case result != nil:
        r := *result
        b.Result = &r
    case score != nil:
        r := ResultFail
        if *score >= PassingScore {
            r = ResultPass
        }
        b.Result = &r
    }
    return nil
}

// Cancel terminates a booking that has not started.  Only scheduled
// and checked_in bookings can be cancelled; the optional reason is
// appended to the notes.  Cancellation is a status change, never a
// physical delete.
func (b *Booking) Cancel(reason string) error {
    if b.Status != StatusScheduled && b.Status != StatusCheckedIn {
        return b.transitionErr("cancel")
    }
    b.Status = StatusCancelled
    if reason != "" {
        b.appendNote("cancelled: " + reason)
    }
    return nil
}

// MarkNoShow flags a scheduled booking whose start time has passed
// without a check-in.
func (b *Booking) MarkNoShow(now time.Time) error {
    if b.Status != StatusScheduled || !now.After(b.ScheduledAt) {
        return b.transitionErr("mark no-show")
    }
    b.Status = StatusNoShow
    return nil
}

// Postpone re-opens any non-terminal booking: it resets the status to
// scheduled, moves the scheduled time and clears the check-in/start/end
// timestamps.  Completed and cancelled bookings cannot be postponed.
func (b *Booking) Postpone(newTime time.Time, reason string) error {
    if b.Status == StatusCompleted || b.Status == StatusCancelled {
        return b.transitionErr("postpone")
    }
    b.Status = StatusScheduled
    b.ScheduledAt = newTime
    b.CheckInAt = nil
    b.StartAt = nil
    b.EndAt = nil
    if reason != "" {
        b.appendNote("postponed: " + reason)
    }
    return nil
}

// CanCheckIn reports whether self-service check-in is currently open:
// the booking is scheduled and now falls within
// [ScheduledAt-CheckInWindow, ScheduledAt].
func (b *Booking) CanCheckIn(now time.Time) bool {
    if b.Status != StatusScheduled {
        return false
    }
    earliest := b.ScheduledAt.Add(-CheckInWindow)
    return !now.Before(earliest) && !now.After(b.ScheduledAt)
}

func (b *Booking) appendNote(note string) {
    if b.Notes == "" {
        b.Notes = note
        return
    }
    b.Notes = b.Notes + "\n" + note
}
