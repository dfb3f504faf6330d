package model

import "time"

// Candidate represents a person registered to sit exams, as stored in
// the `candidates` table.  Candidates belong to an institution, which
// is the unit of access scoping throughout the service.
//
// Fields:
//  ID                 – primary key identifier.
//  Name               – full name.
//  IDNumber           – national ID number, unique; used for mini-app login.
//  Phone              – phone number, verified on mini-app login.
//  Email              – contact email (optional).
//  Gender             – "male" or "female" (optional).
//  InstitutionID      – owning institution.
//  RegistrationNumber – registration number assigned at enrolment.
//  Status             – "active", "inactive" or "suspended".
type Candidate struct {
    ID                 uint64    `json:"id"`
    Name               string    `json:"name"`
    IDNumber           string    `json:"id_number"`
    Phone              string    `json:"phone"`
    Email              string    `json:"email,omitempty"`
    Gender             string    `json:"gender,omitempty"`
    InstitutionID      uint64    `json:"institution_id"`
    RegistrationNumber string    `json:"registration_number,omitempty"`
    Status             string    `json:"status"`
    CreatedAt          time.Time `json:"created_at"`
    UpdatedAt          time.Time `json:"updated_at"`
}
