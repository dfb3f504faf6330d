package scheduler

import (
    "context"
    "time"

    "github.com/iliyamo/exam-center-ops/internal/model"
)

// Tx is the transactional view of the booking store.  Every mutating
// orchestrator operation runs its conflict reads and writes against
// one Tx so that two concurrent requests cannot both pass a conflict
// check and both insert overlapping rows.  Implementations are
// expected to lock the rows returned by OccupyingInWindow and
// ActiveForProduct for the duration of the transaction.
//
// All lookup methods return ErrNotFound for absent rows, never a bare
// nil booking.
type Tx interface {
    // BookingByID loads a single booking for update.
    BookingByID(ctx context.Context, id uint64) (*model.Booking, error)

    // OccupyingInWindow returns the occupying-status bookings at the
    // venue whose [start, end) interval overlaps the given window,
    // excluding the booking with excludeID when non-zero.
    OccupyingInWindow(ctx context.Context, venueID uint64, start, end time.Time, excludeID uint64) ([]model.Booking, error)

    // ActiveForProduct returns occupying-status bookings held by any
    // of the given candidates for the product, ignoring time.
    ActiveForProduct(ctx context.Context, candidateIDs []uint64, productID uint64) ([]model.Booking, error)

    // ScheduledForCandidateOn returns the candidate's scheduled
    // bookings whose start falls on the given calendar day, earliest
    // first.  An empty slice means none.
    ScheduledForCandidateOn(ctx context.Context, candidateID uint64, day time.Time) ([]model.Booking, error)

    // Insert persists a new booking and fills in its generated ID.
    Insert(ctx context.Context, b *model.Booking) error

    // Update persists the mutable fields of an existing booking.
    Update(ctx context.Context, b *model.Booking) error
}

// BookingStore is the persistence port the orchestrator is constructed
// with.  InTx runs fn inside one transaction, committing when fn
// returns nil and rolling back otherwise.
type BookingStore interface {
    InTx(ctx context.Context, fn func(tx Tx) error) error

    // BookingByID is the non-locking read used outside transactions.
    BookingByID(ctx context.Context, id uint64) (*model.Booking, error)

    // ListForDay returns all bookings at the venue on the given
    // calendar day ordered by scheduled time; venueID zero means every
    // venue.
    ListForDay(ctx context.Context, venueID uint64, day time.Time) ([]model.Booking, error)
}

// Directory resolves master data owned by collaborators.  The
// scheduler only ever reads these entities.  Implementations return
// ErrNotFound for absent rows.
type Directory interface {
    Candidate(ctx context.Context, id uint64) (*model.Candidate, error)
    ExamProduct(ctx context.Context, id uint64) (*model.ExamProduct, error)
    Venue(ctx context.Context, id uint64) (*model.Venue, error)
}
