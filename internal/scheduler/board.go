package scheduler

import (
    "context"
    "fmt"
    "sort"
    "time"

    "github.com/iliyamo/exam-center-ops/internal/model"
)

// BoardStats aggregates a day's bookings by status.
type BoardStats struct {
    Total      int `json:"total"`
    Scheduled  int `json:"scheduled"`
    CheckedIn  int `json:"checked_in"`
    InProgress int `json:"in_progress"`
    Completed  int `json:"completed"`
    Cancelled  int `json:"cancelled"`
    NoShow     int `json:"no_show"`
}

// BoardSlot groups a day's bookings by their scheduled hour.  Time is
// the zero-padded "HH:00" bucket label.
type BoardSlot struct {
    Time     string          `json:"time"`
    Bookings []model.Booking `json:"bookings"`
}

// Board is the public venue board: everything happening at a venue on
// one day, with per-status counts and hourly buckets.
type Board struct {
    Date      string          `json:"date"`
    Stats     BoardStats      `json:"stats"`
    TimeSlots []BoardSlot     `json:"time_slots"`
    Bookings  []model.Booking `json:"bookings"`
}

// VenueBoard builds the board for the venue (zero means all venues)
// on the given day.
func (s *Scheduler) VenueBoard(ctx context.Context, venueID uint64, day time.Time) (*Board, error) {
    bookings, err := s.store.ListForDay(ctx, venueID, day)
    if err != nil {
        return nil, err
    }
    return BuildBoard(day, bookings), nil
}

// BuildBoard assembles a Board from a day's bookings.  Pure; split out
// so the grouping logic is testable without a store.
func BuildBoard(day time.Time, bookings []model.Booking) *Board {
    board := &Board{
        Date:     day.Format("2006-01-02"),
        Bookings: bookings,
    }
    buckets := make(map[string][]model.Booking)
    for _, b := range bookings {
        board.Stats.Total++
        switch b.Status {
        case model.StatusScheduled:
            board.Stats.Scheduled++
        case model.StatusCheckedIn:
            board.Stats.CheckedIn++
        case model.StatusInProgress:
            board.Stats.InProgress++
        case model.StatusCompleted:
            board.Stats.Completed++
        case model.StatusCancelled:
            board.Stats.Cancelled++
        case model.StatusNoShow:
            board.Stats.NoShow++
        }
        label := fmt.Sprintf("%02d:00", b.ScheduledAt.Hour())
        buckets[label] = append(buckets[label], b)
    }
    labels := make([]string, 0, len(buckets))
    for label := range buckets {
        labels = append(labels, label)
    }
    sort.Strings(labels)
    board.TimeSlots = make([]BoardSlot, 0, len(labels))
    for _, label := range labels {
        board.TimeSlots = append(board.TimeSlots, BoardSlot{Time: label, Bookings: buckets[label]})
    }
    return board
}
