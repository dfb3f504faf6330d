package scheduler

import (
    "testing"
    "time"
)

func day(t *testing.T, s string) time.Time {
    t.Helper()
    parsed, err := time.Parse("2006-01-02", s)
    if err != nil {
        t.Fatalf("parse %q: %v", s, err)
    }
    return parsed
}

func TestGenerateSingleDay(t *testing.T) {
    g := DefaultSlotGenerator()
    d := day(t, "2026-03-02")

    // 60-minute exam, 90-minute spacing: 09:00 10:30 12:00 13:30 15:00.
    // The 16:30 candidate would run past 17:00 and is dropped.
    slots := g.Generate(d, d, 60*time.Minute)
    wantTimes := []time.Time{
        d.Add(9 * time.Hour),
        d.Add(10*time.Hour + 30*time.Minute),
        d.Add(12 * time.Hour),
        d.Add(13*time.Hour + 30*time.Minute),
        d.Add(15 * time.Hour),
        d.Add(16*time.Hour + 30*time.Minute),
    }
    // last start 16:30 ends exactly at 17:30 > 17:00, so only 5 slots
    wantTimes = wantTimes[:5]

    if len(slots) != len(wantTimes) {
        t.Fatalf("got %d slots %v, want %d", len(slots), slots, len(wantTimes))
    }
    for i, w := range wantTimes {
        if !slots[i].Equal(w) {
            t.Fatalf("slot[%d] = %v, want %v", i, slots[i], w)
        }
    }
}

func TestGenerateLastSlotFits(t *testing.T) {
    g := DefaultSlotGenerator()
    d := day(t, "2026-03-02")

    // 90-minute exam, 120-minute spacing: 09:00 11:00 13:00 15:00.
    // 15:00+90m = 16:30 <= 17:00 so the 15:00 slot is kept; 17:00
    // itself would end at 18:30 and is dropped.
    slots := g.Generate(d, d, 90*time.Minute)
    if len(slots) != 4 {
        t.Fatalf("got %d slots %v, want 4", len(slots), slots)
    }
    last := d.Add(15 * time.Hour)
    if !slots[3].Equal(last) {
        t.Fatalf("last slot = %v, want %v", slots[3], last)
    }
}

func TestGenerateMultiDay(t *testing.T) {
    g := DefaultSlotGenerator()
    start := day(t, "2026-03-02")
    end := day(t, "2026-03-04")

    slots := g.Generate(start, end, 60*time.Minute)
    if len(slots) != 15 { // 5 per day over 3 days inclusive
        t.Fatalf("got %d slots, want 15", len(slots))
    }
    // Strictly increasing across day boundaries.
    for i := 1; i < len(slots); i++ {
        if !slots[i].After(slots[i-1]) {
            t.Fatalf("slots not increasing at %d: %v then %v", i, slots[i-1], slots[i])
        }
    }
    if !slots[5].Equal(start.AddDate(0, 0, 1).Add(9 * time.Hour)) {
        t.Fatalf("day 2 should start at 09:00, got %v", slots[5])
    }
}

func TestGenerateDeterministic(t *testing.T) {
    g := DefaultSlotGenerator()
    start := day(t, "2026-03-02")
    end := day(t, "2026-03-03")

    a := g.Generate(start, end, 45*time.Minute)
    b := g.Generate(start, end, 45*time.Minute)
    if len(a) != len(b) {
        t.Fatalf("non-deterministic lengths: %d vs %d", len(a), len(b))
    }
    for i := range a {
        if !a[i].Equal(b[i]) {
            t.Fatalf("non-deterministic slot at %d: %v vs %v", i, a[i], b[i])
        }
    }
}

func TestGenerateDegenerateInputs(t *testing.T) {
    g := DefaultSlotGenerator()
    d := day(t, "2026-03-02")

    if slots := g.Generate(d, d.AddDate(0, 0, -1), time.Hour); slots != nil {
        t.Fatalf("end before start should yield nil, got %v", slots)
    }
    if slots := g.Generate(d, d, 0); slots != nil {
        t.Fatalf("zero duration should yield nil, got %v", slots)
    }
    // An exam longer than the whole window fits nowhere.
    if slots := g.Generate(d, d, 9*time.Hour); len(slots) != 0 {
        t.Fatalf("oversized exam should yield no slots, got %v", slots)
    }
}
