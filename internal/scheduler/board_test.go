package scheduler

import (
    "context"
    "testing"
    "time"

    "github.com/iliyamo/exam-center-ops/internal/model"
)

func TestBuildBoardCountsAndBuckets(t *testing.T) {
    d := day(t, "2026-03-02")
    bookings := []model.Booking{
        {ID: 1, ScheduledAt: d.Add(9 * time.Hour), Status: model.StatusCompleted},
        {ID: 2, ScheduledAt: d.Add(9*time.Hour + 30*time.Minute), Status: model.StatusNoShow},
        {ID: 3, ScheduledAt: d.Add(13 * time.Hour), Status: model.StatusInProgress},
        {ID: 4, ScheduledAt: d.Add(13*time.Hour + 45*time.Minute), Status: model.StatusScheduled},
        {ID: 5, ScheduledAt: d.Add(16 * time.Hour), Status: model.StatusCancelled},
    }

    board := BuildBoard(d, bookings)

    if board.Date != "2026-03-02" {
        t.Fatalf("date = %s", board.Date)
    }
    st := board.Stats
    if st.Total != 5 || st.Completed != 1 || st.NoShow != 1 || st.InProgress != 1 || st.Scheduled != 1 || st.Cancelled != 1 {
        t.Fatalf("unexpected stats: %+v", st)
    }

    wantSlots := []struct {
        label string
        ids   []uint64
    }{
        {"09:00", []uint64{1, 2}},
        {"13:00", []uint64{3, 4}},
        {"16:00", []uint64{5}},
    }
    if len(board.TimeSlots) != len(wantSlots) {
        t.Fatalf("got %d slots, want %d", len(board.TimeSlots), len(wantSlots))
    }
    for i, want := range wantSlots {
        slot := board.TimeSlots[i]
        if slot.Time != want.label {
            t.Fatalf("slot[%d] label = %s, want %s", i, slot.Time, want.label)
        }
        if len(slot.Bookings) != len(want.ids) {
            t.Fatalf("slot %s has %d bookings, want %d", want.label, len(slot.Bookings), len(want.ids))
        }
        for j, id := range want.ids {
            if slot.Bookings[j].ID != id {
                t.Fatalf("slot %s booking[%d] = %d, want %d", want.label, j, slot.Bookings[j].ID, id)
            }
        }
    }
}

func TestBuildBoardEmptyDay(t *testing.T) {
    board := BuildBoard(day(t, "2026-03-02"), nil)
    if board.Stats.Total != 0 || len(board.TimeSlots) != 0 {
        t.Fatalf("empty day produced %+v", board)
    }
}

func TestVenueBoardFiltersVenue(t *testing.T) {
    store, dir := fixtures()
    now := ts(t, "2026-03-01T08:00:00Z")
    s := newTestScheduler(store, dir, now)
    ctx := context.Background()

    dir.venues[31] = &model.Venue{ID: 31, Name: "Hall South", InstitutionID: instA, Status: "active"}

    if _, err := s.CreateSingle(ctx, admin(), CreateBookingInput{
        CandidateID: 10, ProductID: 20, VenueID: 30,
        ScheduledAt: ts(t, "2026-03-02T09:00:00Z"),
    }); err != nil {
        t.Fatalf("seed: %v", err)
    }
    if _, err := s.CreateSingle(ctx, admin(), CreateBookingInput{
        CandidateID: 11, ProductID: 20, VenueID: 31,
        ScheduledAt: ts(t, "2026-03-02T10:00:00Z"),
    }); err != nil {
        t.Fatalf("seed: %v", err)
    }

    board, err := s.VenueBoard(ctx, 30, ts(t, "2026-03-02T00:00:00Z"))
    if err != nil {
        t.Fatalf("board: %v", err)
    }
    if board.Stats.Total != 1 {
        t.Fatalf("venue 30 total = %d, want 1", board.Stats.Total)
    }

    all, err := s.VenueBoard(ctx, 0, ts(t, "2026-03-02T00:00:00Z"))
    if err != nil {
        t.Fatalf("board: %v", err)
    }
    if all.Stats.Total != 2 {
        t.Fatalf("all venues total = %d, want 2", all.Stats.Total)
    }
}
