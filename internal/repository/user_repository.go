package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/iliyamo/exam-center-ops/internal/model"
    "github.com/iliyamo/exam-center-ops/internal/scheduler"
)

const userColumns = `id, username, password_hash, real_name, role, institution_id, status, created_at, updated_at`

// ErrUsernameTaken means a staff account with the requested login name
// already exists.
var ErrUsernameTaken = errors.New("username already taken")

// UserRepo reads and provisions staff accounts.
type UserRepo struct {
    db *sql.DB
}

// NewUserRepo returns a UserRepo bound to the given database.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

// FindByID loads one staff user by primary key.
func (r *UserRepo) FindByID(ctx context.Context, id uint64) (*model.User, error) {
    row := r.db.QueryRowContext(ctx,
        `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
    return scanUser(row)
}

// FindByUsername loads one staff user by login name.
func (r *UserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
    row := r.db.QueryRowContext(ctx,
        `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
    return scanUser(row)
}

// Create inserts a new staff account and fills in the generated ID
// and timestamps.  The username must be free; a zero institution ID is
// stored as NULL (global admins).
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
    if _, err := r.FindByUsername(ctx, u.Username); err == nil {
        return ErrUsernameTaken
    } else if !errors.Is(err, scheduler.ErrNotFound) {
        return err
    }
    var inst interface{}
    if u.InstitutionID != 0 {
        inst = u.InstitutionID
    }
    res, err := r.db.ExecContext(ctx,
        `INSERT INTO users (username, password_hash, real_name, role, institution_id, status, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, UTC_TIMESTAMP(), UTC_TIMESTAMP())`,
        u.Username, u.PasswordHash, u.RealName, u.Role, inst, u.Status,
    )
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    stored, err := r.FindByID(ctx, uint64(id))
    if err != nil {
        return err
    }
    *u = *stored
    return nil
}

func scanUser(row rowScanner) (*model.User, error) {
    var (
        u    model.User
        inst sql.NullInt64
    )
    err := row.Scan(
        &u.ID, &u.Username, &u.PasswordHash, &u.RealName, &u.Role, &inst,
        &u.Status, &u.CreatedAt, &u.UpdatedAt,
    )
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, scheduler.ErrNotFound
        }
        return nil, err
    }
    u.InstitutionID = uint64(inst.Int64)
    return &u, nil
}
