// Package queue defines message payloads exchanged over the message broker.
package queue

// AuditQueueName is the durable queue carrying exam audit events.
const AuditQueueName = "exam.audit"

// Event kinds carried in the envelope.
const (
    KindCheckedIn = "booking.checked_in"
    KindCompleted = "exam.completed"
)

// AuditEvent is the envelope published for every audited action.  Kind
// selects which of the optional payloads is present.  It contains
// enough information for downstream consumers to log, notify, or
// trigger analytics without querying the primary database.
type AuditEvent struct {
    Kind       string               `json:"kind"`
    OccurredAt string               `json:"occurred_at"`
    CheckedIn  *BookingCheckedInEvent `json:"checked_in,omitempty"`
    Completed  *ExamCompletedEvent  `json:"completed,omitempty"`
}

// BookingCheckedInEvent is published when a candidate is checked in,
// whether by QR scan or by a staff action.
type BookingCheckedInEvent struct {
    BookingID     uint64 `json:"booking_id"`
    CandidateID   uint64 `json:"candidate_id"`
    CandidateName string `json:"candidate_name"`
    ProductID     uint64 `json:"product_id"`
    VenueID       uint64 `json:"venue_id"`
    ProctorID     uint64 `json:"proctor_id"`
    ScheduledAt   string `json:"scheduled_at"`
    CheckInAt     string `json:"check_in_at"`
}

// ExamCompletedEvent is published when an exam finishes and its result
// is recorded.
type ExamCompletedEvent struct {
    BookingID   uint64  `json:"booking_id"`
    CandidateID uint64  `json:"candidate_id"`
    ProductID   uint64  `json:"product_id"`
    VenueID     uint64  `json:"venue_id"`
    Score       float64 `json:"score"`
    MaxScore    float64 `json:"max_score"`
    Result      string  `json:"result"`
    EndAt       string  `json:"end_at"`
}
