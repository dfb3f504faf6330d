// Package checkin implements the QR check-in token protocol: short-
// lived signed tokens binding a candidate (and optionally a specific
// booking) to an issuance timestamp.  Tokens are never stored;
// validity is recomputed from the token's own timestamp and signature
// at verification time.
package checkin

import (
    "crypto/hmac"
    "crypto/sha256"
    "encoding/hex"
    "encoding/json"
    "errors"
    "fmt"
    "strconv"
    "time"
)

// TokenType is the type tag carried by every check-in token.
const TokenType = "candidate_checkin"

// TokenTTL is how long a token stays valid after issuance.
const TokenTTL = 5 * time.Minute

// Verification failures, each distinct so the scanner can tell the
// candidate what went wrong.
var (
    ErrExpired      = errors.New("check-in token expired")
    ErrBadSignature = errors.New("check-in token signature mismatch")
    ErrMalformed    = errors.New("malformed check-in token")
)

// Token is the JSON payload rendered into the candidate's QR code.
// Timestamp is epoch milliseconds at issuance.
type Token struct {
    Type        string  `json:"type"`
    CandidateID uint64  `json:"candidate_id"`
    BookingID   *uint64 `json:"booking_id"`
    Timestamp   int64   `json:"timestamp"`
    Signature   string  `json:"signature"`
}

// ExpiresAt returns the instant the token stops verifying.
func (t Token) ExpiresAt() time.Time {
    return time.UnixMilli(t.Timestamp).Add(TokenTTL)
}

// Protocol issues and verifies check-in tokens with a shared HMAC
// secret.  The zero value is unusable; construct with NewProtocol.
type Protocol struct {
    secret []byte
    now    func() time.Time
}

// NewProtocol returns a Protocol signing with the given secret.
func NewProtocol(secret string) *Protocol {
    if secret == "" {
        panic("empty secret passed to checkin.NewProtocol")
    }
    return &Protocol{
        secret: []byte(secret),
        now:    func() time.Time { return time.Now().UTC() },
    }
}

// Issue creates a token for the candidate, optionally bound to one
// booking, and returns both the struct and its JSON wire form.
func (p *Protocol) Issue(candidateID uint64, bookingID *uint64) (Token, string, error) {
    tok := Token{
        Type:        TokenType,
        CandidateID: candidateID,
        BookingID:   bookingID,
        Timestamp:   p.now().UnixMilli(),
    }
    tok.Signature = p.sign(tok.CandidateID, tok.BookingID, tok.Timestamp)
    raw, err := json.Marshal(tok)
    if err != nil {
        return Token{}, "", err
    }
    return tok, string(raw), nil
}

// Verify parses and validates a scanned token string.  It fails with
// ErrMalformed when required fields are missing or the type tag is
// wrong, ErrExpired when more than TokenTTL has passed since issuance,
// and ErrBadSignature when the recomputed signature differs.
func (p *Protocol) Verify(raw string) (Token, error) {
    var tok Token
    if err := json.Unmarshal([]byte(raw), &tok); err != nil {
        return Token{}, fmt.Errorf("%w: %v", ErrMalformed, err)
    }
    if tok.Type != TokenType || tok.CandidateID == 0 || tok.Timestamp == 0 || tok.Signature == "" {
        return Token{}, ErrMalformed
    }
    if p.now().UnixMilli()-tok.Timestamp > TokenTTL.Milliseconds() {
        return Token{}, ErrExpired
    }
    expected := p.sign(tok.CandidateID, tok.BookingID, tok.Timestamp)
    if !hmac.Equal([]byte(expected), []byte(tok.Signature)) {
        return Token{}, ErrBadSignature
    }
    return tok, nil
}

// sign computes the hex HMAC-SHA256 over "candidateID-bookingID-ts",
// with an empty string standing in for a missing booking ID.
func (p *Protocol) sign(candidateID uint64, bookingID *uint64, ts int64) string {
    bid := ""
    if bookingID != nil {
        bid = strconv.FormatUint(*bookingID, 10)
    }
    mac := hmac.New(sha256.New, p.secret)
    fmt.Fprintf(mac, "%d-%s-%d", candidateID, bid, ts)
    return hex.EncodeToString(mac.Sum(nil))
}
