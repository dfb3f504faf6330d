package model

import (
    "errors"
    "testing"
    "time"
)

func mustTime(t *testing.T, s string) time.Time {
    t.Helper()
    parsed, err := time.Parse(time.RFC3339, s)
    if err != nil {
        t.Fatalf("parse %q: %v", s, err)
    }
    return parsed
}

func scheduledBooking(t *testing.T) *Booking {
    t.Helper()
    return &Booking{
        ID:          1,
        CandidateID: 10,
        ProductID:   20,
        VenueID:     30,
        ScheduledAt: mustTime(t, "2026-03-02T10:00:00Z"),
        Duration:    90,
        Status:      StatusScheduled,
        MaxScore:    100,
    }
}

func TestLifecycleHappyPath(t *testing.T) {
    b := scheduledBooking(t)
    now := b.ScheduledAt.Add(-10 * time.Minute)
    proctor := uint64(7)

    if err := b.CheckIn(now, &proctor); err != nil {
        t.Fatalf("check in: %v", err)
    }
    if b.Status != StatusCheckedIn || b.CheckInAt == nil || *b.ProctorID != 7 {
        t.Fatalf("unexpected state after check-in: %+v", b)
    }

    if err := b.StartExam(b.ScheduledAt); err != nil {
        t.Fatalf("start: %v", err)
    }
    if b.Status != StatusInProgress || b.StartAt == nil {
        t.Fatalf("unexpected state after start: %+v", b)
    }

    score := 85.0
    if err := b.CompleteExam(b.EndsAt(), &score, nil); err != nil {
        t.Fatalf("complete: %v", err)
    }
    if b.Status != StatusCompleted || b.EndAt == nil {
        t.Fatalf("unexpected state after complete: %+v", b)
    }
    if b.Result == nil || *b.Result != ResultPass {
        t.Fatalf("expected derived pass, got %v", b.Result)
    }
}

func TestCompleteDerivesResult(t *testing.T) {
    cases := []struct {
        name   string
        score  *float64
        result *ExamResult
        want   *ExamResult
    }{
        {"pass at threshold", f(60), nil, r(ResultPass)},
        {"fail below threshold", f(40), nil, r(ResultFail)},
        {"explicit result wins", f(95), r(ResultFail), r(ResultFail)},
        {"no score no result", nil, nil, nil},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            b := scheduledBooking(t)
            b.Status = StatusInProgress
            if err := b.CompleteExam(b.EndsAt(), tc.score, tc.result); err != nil {
                t.Fatalf("complete: %v", err)
            }
            switch {
            case tc.want == nil && b.Result != nil:
                t.Fatalf("expected nil result, got %v", *b.Result)
            case tc.want != nil && (b.Result == nil || *b.Result != *tc.want):
                t.Fatalf("expected %v, got %v", *tc.want, b.Result)
            }
        })
    }
}

func TestInvalidTransitions(t *testing.T) {
    now := time.Now().UTC()
    proctor := uint64(1)
    cases := []struct {
        name string
        from BookingStatus
        op   func(*Booking) error
    }{
        {"check in twice", StatusCheckedIn, func(b *Booking) error { return b.CheckIn(now, &proctor) }},
        {"check in completed", StatusCompleted, func(b *Booking) error { return b.CheckIn(now, &proctor) }},
        {"start without check-in", StatusScheduled, func(b *Booking) error { return b.StartExam(now) }},
        {"complete not running", StatusCheckedIn, func(b *Booking) error { return b.CompleteExam(now, nil, nil) }},
        {"cancel in progress", StatusInProgress, func(b *Booking) error { return b.Cancel("x") }},
        {"cancel completed", StatusCompleted, func(b *Booking) error { return b.Cancel("x") }},
        {"no-show after check-in", StatusCheckedIn, func(b *Booking) error { return b.MarkNoShow(now.Add(time.Hour)) }},
        {"postpone completed", StatusCompleted, func(b *Booking) error { return b.Postpone(now, "") }},
        {"postpone cancelled", StatusCancelled, func(b *Booking) error { return b.Postpone(now, "") }},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            b := scheduledBooking(t)
            b.Status = tc.from
            err := tc.op(b)
            if !errors.Is(err, ErrInvalidTransition) {
                t.Fatalf("expected ErrInvalidTransition, got %v", err)
            }
            if b.Status != tc.from {
                t.Fatalf("status mutated on failed transition: %s -> %s", tc.from, b.Status)
            }
        })
    }
}

func TestNoShowRequiresPastDue(t *testing.T) {
    b := scheduledBooking(t)
    if err := b.MarkNoShow(b.ScheduledAt.Add(-time.Minute)); !errors.Is(err, ErrInvalidTransition) {
        t.Fatalf("expected rejection before start time, got %v", err)
    }
    if err := b.MarkNoShow(b.ScheduledAt.Add(time.Minute)); err != nil {
        t.Fatalf("mark no-show: %v", err)
    }
    if b.Status != StatusNoShow {
        t.Fatalf("status = %s", b.Status)
    }
}

func TestCancelRecordsReason(t *testing.T) {
    b := scheduledBooking(t)
    b.Notes = "first come first served"
    if err := b.Cancel("candidate request"); err != nil {
        t.Fatalf("cancel: %v", err)
    }
    want := "first come first served\ncancelled: candidate request"
    if b.Notes != want {
        t.Fatalf("notes = %q, want %q", b.Notes, want)
    }

    b2 := scheduledBooking(t)
    if err := b2.Cancel(""); err != nil {
        t.Fatalf("cancel: %v", err)
    }
    if b2.Notes != "" {
        t.Fatalf("empty reason should not write a note, got %q", b2.Notes)
    }
}

func TestPostponeResetsProgress(t *testing.T) {
    b := scheduledBooking(t)
    proctor := uint64(3)
    if err := b.CheckIn(b.ScheduledAt, &proctor); err != nil {
        t.Fatalf("check in: %v", err)
    }
    newTime := b.ScheduledAt.AddDate(0, 0, 7)
    if err := b.Postpone(newTime, "venue flooded"); err != nil {
        t.Fatalf("postpone: %v", err)
    }
    if b.Status != StatusScheduled {
        t.Fatalf("status = %s, want scheduled", b.Status)
    }
    if !b.ScheduledAt.Equal(newTime) {
        t.Fatalf("scheduled_at = %v, want %v", b.ScheduledAt, newTime)
    }
    if b.CheckInAt != nil || b.StartAt != nil || b.EndAt != nil {
        t.Fatalf("timestamps not cleared: %+v", b)
    }
    if b.Notes != "postponed: venue flooded" {
        t.Fatalf("notes = %q", b.Notes)
    }
}

func TestOverlaps(t *testing.T) {
    b := scheduledBooking(t) // 10:00–11:30
    start := b.ScheduledAt
    cases := []struct {
        name  string
        wStart, wEnd time.Time
        want  bool
    }{
        {"identical window", start, b.EndsAt(), true},
        {"starts inside", start.Add(30 * time.Minute), start.Add(3 * time.Hour), true},
        {"ends inside", start.Add(-time.Hour), start.Add(time.Minute), true},
        {"touching before", start.Add(-time.Hour), start, false},
        {"touching after", b.EndsAt(), b.EndsAt().Add(time.Hour), false},
        {"disjoint", start.Add(5 * time.Hour), start.Add(6 * time.Hour), false},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            if got := b.Overlaps(tc.wStart, tc.wEnd); got != tc.want {
                t.Fatalf("Overlaps(%v, %v) = %v, want %v", tc.wStart, tc.wEnd, got, tc.want)
            }
        })
    }
}

func TestCanCheckIn(t *testing.T) {
    b := scheduledBooking(t)
    at := b.ScheduledAt
    cases := []struct {
        name string
        now  time.Time
        want bool
    }{
        {"window opens", at.Add(-CheckInWindow), true},
        {"just before window", at.Add(-CheckInWindow - time.Second), false},
        {"at start time", at, true},
        {"after start time", at.Add(time.Second), false},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            if got := b.CanCheckIn(tc.now); got != tc.want {
                t.Fatalf("CanCheckIn(%v) = %v, want %v", tc.now, got, tc.want)
            }
        })
    }
    b.Status = StatusCheckedIn
    if b.CanCheckIn(at) {
        t.Fatal("non-scheduled booking should never allow check-in")
    }
}

func f(v float64) *float64      { return &v }
func r(v ExamResult) *ExamResult { return &v }
