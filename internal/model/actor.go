package model

// ScopeKind tags an ActorScope.  Only two kinds exist: a global
// administrator, and a scope bound to a single institution.
type ScopeKind string

const (
    ScopeAdmin       ScopeKind = "admin"
    ScopeInstitution ScopeKind = "institution"
)

// ActorScope is the access scope attached to every authenticated
// caller.  It replaces role-code string matching: entry points check
// the tagged kind exhaustively instead of scanning role arrays.
type ActorScope struct {
    Kind          ScopeKind
    InstitutionID uint64 // set only when Kind == ScopeInstitution
}

// AdminScope returns the elevated scope that may see and mutate every
// institution's data.
func AdminScope() ActorScope { return ActorScope{Kind: ScopeAdmin} }

// InstitutionScope returns a scope restricted to one institution.
func InstitutionScope(institutionID uint64) ActorScope {
    return ActorScope{Kind: ScopeInstitution, InstitutionID: institutionID}
}

// CanAccess reports whether the scope may act on data belonging to the
// given institution.
func (s ActorScope) CanAccess(institutionID uint64) bool {
    switch s.Kind {
    case ScopeAdmin:
        return true
    case ScopeInstitution:
        return s.InstitutionID == institutionID
    }
    return false
}

// Actor describes an authenticated caller: a staff user or an
// administrator, resolved from the bearer credential by the auth
// middleware.
type Actor struct {
    ID    uint64
    Name  string
    Scope ActorScope
}
