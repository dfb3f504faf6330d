package model

import "time"

// DefaultExamDuration is used when neither the booking request nor the
// exam product supplies a duration, in minutes.
const DefaultExamDuration = 120

// ExamProduct describes a purchasable exam offering.  Its Duration is
// the default length used for bookings that do not override it.
//
// Fields:
//  ID           – primary key identifier.
//  Name         – display name.
//  Code         – short unique code.
//  Category     – free-form grouping label.
//  Duration     – default exam length in minutes.
//  Price        – default list price.
//  Requirements – free-form metadata about prerequisites; not part of
//                 any invariant this package enforces.
//  Status       – "active", "inactive" or "archived".
type ExamProduct struct {
    ID           uint64                 `json:"id"`
    Name         string                 `json:"name"`
    Code         string                 `json:"code"`
    Category     string                 `json:"category,omitempty"`
    Duration     int                    `json:"duration"` // minutes
    Price        float64                `json:"price"`
    Requirements map[string]interface{} `json:"requirements,omitempty"`
    Status       string                 `json:"status"`
    CreatedAt    time.Time              `json:"created_at"`
    UpdatedAt    time.Time              `json:"updated_at"`
}
