package repository

import (
    "context"
    "database/sql"
    "encoding/json"
    "errors"
    "fmt"

    "github.com/iliyamo/exam-center-ops/internal/model"
    "github.com/iliyamo/exam-center-ops/internal/scheduler"
)

const venueColumns = `id, name, code, institution_id, address, capacity, operating_hours,
    contact_phone, status, created_at, updated_at`

// VenueRepo reads venue master data.
type VenueRepo struct {
    db *sql.DB
}

// NewVenueRepo returns a VenueRepo bound to the given database.
func NewVenueRepo(db *sql.DB) *VenueRepo { return &VenueRepo{db: db} }

// FindByID loads one venue by primary key.
func (r *VenueRepo) FindByID(ctx context.Context, id uint64) (*model.Venue, error) {
    row := r.db.QueryRowContext(ctx,
        `SELECT `+venueColumns+` FROM venues WHERE id = ?`, id)
    return scanVenue(row)
}

// ListActive returns every active venue, optionally scoped to one
// institution (zero means all), ordered by name.
func (r *VenueRepo) ListActive(ctx context.Context, institutionID uint64) ([]model.Venue, error) {
    q := `SELECT ` + venueColumns + ` FROM venues WHERE status = 'active'`
    args := []interface{}{}
    if institutionID != 0 {
        q += ` AND institution_id = ?`
        args = append(args, institutionID)
    }
    q += ` ORDER BY name ASC`
    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    list := make([]model.Venue, 0)
    for rows.Next() {
        v, err := scanVenue(rows)
        if err != nil {
            return nil, err
        }
        list = append(list, *v)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return list, nil
}

func scanVenue(row rowScanner) (*model.Venue, error) {
    var (
        v       model.Venue
        address sql.NullString
        hours   []byte
        phone   sql.NullString
    )
    err := row.Scan(
        &v.ID, &v.Name, &v.Code, &v.InstitutionID, &address, &v.Capacity, &hours,
        &phone, &v.Status, &v.CreatedAt, &v.UpdatedAt,
    )
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, scheduler.ErrNotFound
        }
        return nil, err
    }
    v.Address = address.String
    v.ContactPhone = phone.String
    if len(hours) > 0 {
        if err := json.Unmarshal(hours, &v.OperatingHours); err != nil {
            return nil, fmt.Errorf("venue %d: decode operating_hours: %w", v.ID, err)
        }
    }
    return &v, nil
}
