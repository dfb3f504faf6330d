package utils // package utils provides helper functions for token creation and hashing

import (
    "time" // time utilities for generating expirations

    "github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens

    "github.com/iliyamo/exam-center-ops/internal/model"
)

// Subject type tags carried in the "typ" claim.  Staff tokens grant
// access to the operations API; candidate tokens only unlock the
// mini-app surface (own schedules, QR codes, profile).
const (
    TokenTypeStaff     = "staff"
    TokenTypeCandidate = "candidate"
)

// AccessToken represents a signed JWT access token along with its expiry.
// The Token field contains the JWT string.  Exp stores the expiration
// timestamp as a time.Time.  Access tokens are short-lived and encoded
// in the Authorization header when calling protected endpoints.
type AccessToken struct {
    Token string    // the serialized JWT string
    Exp   time.Time // the UTC expiration time
}

// NewStaffToken builds and signs an HS256 JWT for a staff user.  The
// claims carry the subject ID, the account type, the role and the
// institution the account is bound to (zero for global admins), so the
// auth middleware can rebuild the actor's scope without a database
// round trip.
func NewStaffToken(secret string, u *model.User, ttlMin int) (AccessToken, error) {
    exp := time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute)
    claims := jwt.MapClaims{
        "sub":            u.ID,
        "typ":            TokenTypeStaff,
        "role":           u.Role,
        "institution_id": u.InstitutionID,
        "name":           u.RealName,
        "exp":            exp.Unix(),
        "iat":            time.Now().UTC().Unix(),
    }
    return sign(secret, claims, exp)
}

// NewCandidateToken builds and signs an HS256 JWT for a candidate
// logged into the mini-app.
func NewCandidateToken(secret string, c *model.Candidate, ttlMin int) (AccessToken, error) {
    exp := time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute)
    claims := jwt.MapClaims{
        "sub":            c.ID,
        "typ":            TokenTypeCandidate,
        "institution_id": c.InstitutionID,
        "name":           c.Name,
        "exp":            exp.Unix(),
        "iat":            time.Now().UTC().Unix(),
    }
    return sign(secret, claims, exp)
}

func sign(secret string, claims jwt.MapClaims, exp time.Time) (AccessToken, error) {
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := t.SignedString([]byte(secret))
    if err != nil {
        return AccessToken{}, err
    }
    return AccessToken{Token: signed, Exp: exp}, nil
}
