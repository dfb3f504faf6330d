package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/iliyamo/exam-center-ops/internal/model"
    "github.com/iliyamo/exam-center-ops/internal/scheduler"
)

const candidateColumns = `id, name, id_number, phone, email, gender, institution_id,
    registration_number, status, created_at, updated_at`

// CandidateRepo reads candidate master data.
type CandidateRepo struct {
    db *sql.DB
}

// NewCandidateRepo returns a CandidateRepo bound to the given database.
func NewCandidateRepo(db *sql.DB) *CandidateRepo { return &CandidateRepo{db: db} }

// FindByID loads one candidate by primary key.
func (r *CandidateRepo) FindByID(ctx context.Context, id uint64) (*model.Candidate, error) {
    row := r.db.QueryRowContext(ctx,
        `SELECT `+candidateColumns+` FROM candidates WHERE id = ?`, id)
    return scanCandidate(row)
}

// FindByIDNumber loads one candidate by national ID number.  Mini-app
// login resolves candidates this way.
func (r *CandidateRepo) FindByIDNumber(ctx context.Context, idNumber string) (*model.Candidate, error) {
    row := r.db.QueryRowContext(ctx,
        `SELECT `+candidateColumns+` FROM candidates WHERE id_number = ?`, idNumber)
    return scanCandidate(row)
}

func scanCandidate(row rowScanner) (*model.Candidate, error) {
    var (
        c      model.Candidate
        email  sql.NullString
        gender sql.NullString
        reg    sql.NullString
    )
    err := row.Scan(
        &c.ID, &c.Name, &c.IDNumber, &c.Phone, &email, &gender, &c.InstitutionID,
        &reg, &c.Status, &c.CreatedAt, &c.UpdatedAt,
    )
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, scheduler.ErrNotFound
        }
        return nil, err
    }
    c.Email = email.String
    c.Gender = gender.String
    c.RegistrationNumber = reg.String
    return &c, nil
}

