package scheduler

import "time"

// Defaults for the batch slot generator.  Venue-specific operating
// hours exist on the Venue entity but batch generation always uses the
// fixed 09:00–17:00 window.
const (
    defaultDayStart = 9 * time.Hour  // offset from local midnight
    defaultDayEnd   = 17 * time.Hour // offset from local midnight

    // SlotBuffer is the fixed gap left between the end of one exam and
    // the start of the next generated slot.
    SlotBuffer = 30 * time.Minute
)

// SlotGenerator produces the discrete start times available for batch
// scheduling.  DayStart and DayEnd are offsets from midnight; the zero
// value is not usable, construct with DefaultSlotGenerator.
type SlotGenerator struct {
    DayStart time.Duration
    DayEnd   time.Duration
    Buffer   time.Duration
}

// DefaultSlotGenerator returns a generator for the standard
// 09:00–17:00 working window with the 30-minute post-exam buffer.
func DefaultSlotGenerator() SlotGenerator {
    return SlotGenerator{DayStart: defaultDayStart, DayEnd: defaultDayEnd, Buffer: SlotBuffer}
}

// Generate returns the ordered start times for every day in
// [startDate, endDate] inclusive.  Consecutive slots are spaced by
// examDuration + Buffer, and a slot is emitted only when the exam
// would finish by the end of the working window.  The sequence is
// pure and deterministic; it does not consult the venue calendar —
// conflict checks happen when the orchestrator consumes it.
func (g SlotGenerator) Generate(startDate, endDate time.Time, examDuration time.Duration) []time.Time {
    if examDuration <= 0 || endDate.Before(startDate) {
        return nil
    }
    step := examDuration + g.Buffer
    var slots []time.Time
    for day := midnight(startDate); !day.After(midnight(endDate)); day = day.AddDate(0, 0, 1) {
        dayEnd := day.Add(g.DayEnd)
        for t := day.Add(g.DayStart); !t.After(dayEnd); t = t.Add(step) {
            if !t.Add(examDuration).After(dayEnd) {
                slots = append(slots, t)
            }
        }
    }
    return slots
}

// midnight truncates t to the start of its calendar day, preserving
// the location.
func midnight(t time.Time) time.Time {
    y, m, d := t.Date()
    return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
