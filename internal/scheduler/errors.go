// Package scheduler implements the exam scheduling engine: conflict
// detection, batch slot generation and assignment, and the orchestrated
// booking lifecycle.  It talks to persistence through the BookingStore
// and Directory ports and owns every booking mutation in the service.
package scheduler

import "errors"

// Sentinel errors returned by the orchestrator.  Handlers translate
// these into HTTP statuses; they are recoverable, caller-facing
// failures and never crash the process.
var (
    // ErrNotFound means a referenced entity (booking, candidate,
    // product, venue) does not exist.  Port implementations return it
    // for absent rows so the orchestrator never has to interpret a
    // bare nil.
    ErrNotFound = errors.New("not found")

    // ErrForbidden means the acting user's scope does not cover the
    // institution owning the data.  Deliberately distinct from
    // ErrNotFound.
    ErrForbidden = errors.New("forbidden")

    // ErrVenueOccupied means the requested window overlaps an
    // occupying booking at the venue.
    ErrVenueOccupied = errors.New("venue time slot occupied")

    // ErrDuplicateBooking means the candidate already holds an active
    // booking for the product.  A business rule, not a calendar
    // conflict; reported separately from ErrVenueOccupied.
    ErrDuplicateBooking = errors.New("candidate already has an active booking for this product")

    // ErrInsufficientCapacity means a batch request generated fewer
    // slots than it has candidates.
    ErrInsufficientCapacity = errors.New("not enough time slots for all candidates")

    // ErrCheckInClosed is returned only when window enforcement is
    // enabled and a check-in arrives outside the allowed window.
    ErrCheckInClosed = errors.New("check-in window closed")

    // ErrInvalidDuration means a caller supplied a non-positive exam
    // length.  A zero or negative duration would give the booking an
    // empty interval invisible to every overlap check.
    ErrInvalidDuration = errors.New("exam duration must be positive")
)
