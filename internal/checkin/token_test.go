package checkin

import (
    "encoding/json"
    "errors"
    "strings"
    "testing"
    "time"
)

func frozenProtocol(secret string, at time.Time) *Protocol {
    p := NewProtocol(secret)
    p.now = func() time.Time { return at }
    return p
}

func TestIssueVerifyRoundtrip(t *testing.T) {
    issued := time.Date(2026, 3, 2, 9, 55, 0, 0, time.UTC)
    p := frozenProtocol("secret", issued)

    bookingID := uint64(42)
    tok, raw, err := p.Issue(10, &bookingID)
    if err != nil {
        t.Fatalf("issue: %v", err)
    }
    if tok.Type != TokenType || tok.CandidateID != 10 || *tok.BookingID != 42 {
        t.Fatalf("unexpected token: %+v", tok)
    }
    if tok.Timestamp != issued.UnixMilli() {
        t.Fatalf("timestamp = %d, want %d", tok.Timestamp, issued.UnixMilli())
    }

    got, err := p.Verify(raw)
    if err != nil {
        t.Fatalf("verify: %v", err)
    }
    if got.CandidateID != 10 || got.BookingID == nil || *got.BookingID != 42 {
        t.Fatalf("verified token mismatch: %+v", got)
    }
}

func TestVerifyUnboundToken(t *testing.T) {
    p := frozenProtocol("secret", time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
    _, raw, err := p.Issue(10, nil)
    if err != nil {
        t.Fatalf("issue: %v", err)
    }
    got, err := p.Verify(raw)
    if err != nil {
        t.Fatalf("verify: %v", err)
    }
    if got.BookingID != nil {
        t.Fatalf("expected nil booking id, got %v", *got.BookingID)
    }
}

func TestVerifyExpiryBoundary(t *testing.T) {
    issued := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
    p := frozenProtocol("secret", issued)
    _, raw, err := p.Issue(10, nil)
    if err != nil {
        t.Fatalf("issue: %v", err)
    }

    // Exactly TokenTTL after issuance is still valid; one millisecond
    // past is not.
    p.now = func() time.Time { return issued.Add(TokenTTL) }
    if _, err := p.Verify(raw); err != nil {
        t.Fatalf("token at exact TTL should verify: %v", err)
    }

    p.now = func() time.Time { return issued.Add(TokenTTL + time.Millisecond) }
    if _, err := p.Verify(raw); !errors.Is(err, ErrExpired) {
        t.Fatalf("expected ErrExpired, got %v", err)
    }
}

func TestVerifyRejectsTampering(t *testing.T) {
    issued := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
    p := frozenProtocol("secret", issued)
    _, raw, err := p.Issue(10, nil)
    if err != nil {
        t.Fatalf("issue: %v", err)
    }

    // Change the candidate ID without re-signing.
    tampered := strings.Replace(raw, `"candidate_id":10`, `"candidate_id":11`, 1)
    if tampered == raw {
        t.Fatal("replacement did not apply")
    }
    if _, err := p.Verify(tampered); !errors.Is(err, ErrBadSignature) {
        t.Fatalf("expected ErrBadSignature, got %v", err)
    }

    // A token signed with a different secret fails the same way.
    other := frozenProtocol("other-secret", issued)
    _, foreign, err := other.Issue(10, nil)
    if err != nil {
        t.Fatalf("issue: %v", err)
    }
    if _, err := p.Verify(foreign); !errors.Is(err, ErrBadSignature) {
        t.Fatalf("expected ErrBadSignature for foreign secret, got %v", err)
    }
}

func TestVerifyRejectsMalformed(t *testing.T) {
    p := frozenProtocol("secret", time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))

    cases := []struct {
        name string
        raw  string
    }{
        {"not json", "not a token"},
        {"empty object", "{}"},
        {"wrong type tag", `{"type":"boarding_pass","candidate_id":10,"timestamp":1,"signature":"ab"}`},
        {"missing signature", `{"type":"candidate_checkin","candidate_id":10,"timestamp":1}`},
        {"zero candidate", `{"type":"candidate_checkin","candidate_id":0,"timestamp":1,"signature":"ab"}`},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            if _, err := p.Verify(tc.raw); !errors.Is(err, ErrMalformed) {
                t.Fatalf("expected ErrMalformed, got %v", err)
            }
        })
    }
}

func TestBindingChangesSignature(t *testing.T) {
    issued := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
    p := frozenProtocol("secret", issued)

    bookingID := uint64(7)
    bound, _, err := p.Issue(10, &bookingID)
    if err != nil {
        t.Fatalf("issue: %v", err)
    }
    unbound, _, err := p.Issue(10, nil)
    if err != nil {
        t.Fatalf("issue: %v", err)
    }
    if bound.Signature == unbound.Signature {
        t.Fatal("bound and unbound tokens must not share a signature")
    }

    // Stripping the booking binding invalidates the signature.
    stripped := bound
    stripped.BookingID = nil
    raw, err := json.Marshal(stripped)
    if err != nil {
        t.Fatalf("marshal: %v", err)
    }
    if _, err := p.Verify(string(raw)); !errors.Is(err, ErrBadSignature) {
        t.Fatalf("expected ErrBadSignature, got %v", err)
    }
}

func TestExpiresAt(t *testing.T) {
    issued := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
    p := frozenProtocol("secret", issued)
    tok, _, err := p.Issue(10, nil)
    if err != nil {
        t.Fatalf("issue: %v", err)
    }
    if !tok.ExpiresAt().Equal(issued.Add(TokenTTL)) {
        t.Fatalf("expires at %v, want %v", tok.ExpiresAt(), issued.Add(TokenTTL))
    }
}
