package scheduler

import (
    "context"
    "fmt"

    "github.com/iliyamo/exam-center-ops/internal/checkin"
    "github.com/iliyamo/exam-center-ops/internal/model"
)

// ScanReceipt is returned to the scanning proctor after a successful
// QR check-in.
type ScanReceipt struct {
    Candidate *model.Candidate
    Booking   *model.Booking
}

// VerifyAndCheckIn validates a scanned check-in token, resolves the
// booking it targets and applies the check-in transition, all
// attributed to the scanning actor.  The actor must share the
// candidate's institution unless admin-scoped.
//
// Booking resolution: a token bound to a booking requires that booking
// to belong to the candidate with status scheduled or checked_in;
// an unbound token resolves to the candidate's earliest scheduled
// booking of the current calendar day.  Either way the check-in
// transition itself still enforces its own precondition, so scanning
// an already checked-in booking fails with an invalid-transition
// error rather than silently succeeding twice.
func (s *Scheduler) VerifyAndCheckIn(ctx context.Context, actor model.Actor, rawToken string) (*ScanReceipt, error) {
    tok, err := s.tokens.Verify(rawToken)
    if err != nil {
        return nil, err
    }
    cand, err := s.dir.Candidate(ctx, tok.CandidateID)
    if err != nil {
        return nil, fmt.Errorf("candidate %d: %w", tok.CandidateID, err)
    }
    if !actor.Scope.CanAccess(cand.InstitutionID) {
        return nil, ErrForbidden
    }

    var booking *model.Booking
    err = s.store.InTx(ctx, func(tx Tx) error {
        b, err := s.resolveScanTarget(ctx, tx, tok)
        if err != nil {
            return err
        }
        now := s.now()
        if s.enforceWindow && b.Status == model.StatusScheduled && !b.CanCheckIn(now) {
            return ErrCheckInClosed
        }
        proctor := actor.ID
        if err := b.CheckIn(now, &proctor); err != nil {
            return err
        }
        if err := tx.Update(ctx, b); err != nil {
            return err
        }
        booking = b
        return nil
    })
    if err != nil {
        return nil, err
    }
    return &ScanReceipt{Candidate: cand, Booking: booking}, nil
}

// resolveScanTarget picks the booking a verified token refers to.
func (s *Scheduler) resolveScanTarget(ctx context.Context, tx Tx, tok checkin.Token) (*model.Booking, error) {
    if tok.BookingID != nil {
        b, err := tx.BookingByID(ctx, *tok.BookingID)
        if err != nil {
            return nil, err
        }
        if b.CandidateID != tok.CandidateID {
            return nil, ErrNotFound
        }
        if b.Status != model.StatusScheduled && b.Status != model.StatusCheckedIn {
            return nil, ErrNotFound
        }
        return b, nil
    }
    today, err := tx.ScheduledForCandidateOn(ctx, tok.CandidateID, s.now())
    if err != nil {
        return nil, err
    }
    if len(today) == 0 {
        return nil, fmt.Errorf("%w: no scheduled booking today for candidate %d", ErrNotFound, tok.CandidateID)
    }
    return &today[0], nil
}
