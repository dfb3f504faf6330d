package model

import "time"

// Venue is an exam room.  Capacity is informational: the scheduler
// books one candidate per time-slot per venue, so capacity is not
// enforced as a concurrency cap.
//
// Fields:
//  ID             – primary key identifier.
//  Name           – display name.
//  Code           – short unique code.
//  InstitutionID  – owning institution.
//  Address        – street address shown to candidates.
//  Capacity       – seat count (informational).
//  OperatingHours – per-weekday open/close pairs (JSON); the batch slot
//                   generator uses its own fixed default window.
//  ContactPhone   – venue contact number.
//  Status         – "active", "inactive" or "maintenance".
type Venue struct {
    ID             uint64                 `json:"id"`
    Name           string                 `json:"name"`
    Code           string                 `json:"code"`
    InstitutionID  uint64                 `json:"institution_id"`
    Address        string                 `json:"address,omitempty"`
    Capacity       int                    `json:"capacity"`
    OperatingHours map[string]interface{} `json:"operating_hours,omitempty"`
    ContactPhone   string                 `json:"contact_phone,omitempty"`
    Status         string                 `json:"status"`
    CreatedAt      time.Time              `json:"created_at"`
    UpdatedAt      time.Time              `json:"updated_at"`
}
