package model

import "time"

// Staff role codes stored in users.role.  ADMIN holds the elevated
// scope; the other two are bound to their institution.
const (
    RoleAdmin            = "ADMIN"
    RoleInstitutionAdmin = "INSTITUTION_ADMIN"
    RoleProctor          = "PROCTOR"
)

// User is a staff account (administrator, institution admin or
// proctor) as stored in the `users` table.  Candidates are a separate
// entity and authenticate differently; see Candidate.
//
// Fields:
//  ID            – primary key identifier.
//  Username      – unique login name.
//  PasswordHash  – bcrypt hashed password.
//  RealName      – display name shown on check-in records.
//  Role          – one of the Role* constants.
//  InstitutionID – owning institution; zero for global admins.
//  Status        – "active" or "disabled".
type User struct {
    ID            uint64    `json:"id"`
    Username      string    `json:"username"`
    PasswordHash  string    `json:"-"`
    RealName      string    `json:"real_name"`
    Role          string    `json:"role"`
    InstitutionID uint64    `json:"institution_id"`
    Status        string    `json:"status"`
    CreatedAt     time.Time `json:"created_at"`
    UpdatedAt     time.Time `json:"updated_at"`
}

// ActorScope derives the access scope implied by the user's role.
func (u *User) ActorScope() ActorScope {
    if u.Role == RoleAdmin {
        return AdminScope()
    }
    return InstitutionScope(u.InstitutionID)
}
