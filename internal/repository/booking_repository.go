// Package repository contains the raw-SQL data access layer.  All
// timestamp columns are stored in UTC; the MySQL DSN uses loc=UTC so
// DATETIME values scan into UTC time.Time values.  Absent rows are
// reported as scheduler.ErrNotFound so callers never interpret a bare
// nil.
package repository

import (
    "context"
    "database/sql"
    "encoding/json"
    "errors"
    "fmt"
    "strings"
    "time"

    "github.com/iliyamo/exam-center-ops/internal/model"
    "github.com/iliyamo/exam-center-ops/internal/scheduler"
)

// bookingColumns is the canonical column list scanned by scanBooking.
const bookingColumns = `id, candidate_id, product_id, venue_id, proctor_id, scheduled_at, duration,
    status, result, score, max_score, check_in_at, start_at, end_at, exam_data, notes, created_at, updated_at`

// occupyingStatuses is the status set that counts against the venue
// calendar and the duplicate-active rule.
const occupyingStatuses = `'scheduled', 'in_progress'`

// BookingRepo provides CRUD and conflict queries for the bookings
// table.  It implements scheduler.BookingStore; the transactional
// methods required by scheduler.Tx live on bookingTx below and lock
// the rows they read with FOR UPDATE so a concurrent create cannot
// pass the same conflict check.
type BookingRepo struct {
    db *sql.DB
}

// NewBookingRepo returns a BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// DB exposes the underlying handle for callers that manage their own
// transactions.
func (r *BookingRepo) DB() *sql.DB { return r.db }

// InTx runs fn inside one transaction, committing on nil and rolling
// back otherwise.
func (r *BookingRepo) InTx(ctx context.Context, fn func(tx scheduler.Tx) error) error {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()
    if err := fn(&bookingTx{tx: tx}); err != nil {
        return err
    }
    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    return nil
}

// BookingByID loads one booking without locking.
func (r *BookingRepo) BookingByID(ctx context.Context, id uint64) (*model.Booking, error) {
    row := r.db.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id)
    return scanBooking(row)
}

// ListForDay returns all bookings on the given calendar day ordered by
// scheduled time.  venueID zero means every venue.
func (r *BookingRepo) ListForDay(ctx context.Context, venueID uint64, day time.Time) ([]model.Booking, error) {
    start, end := dayBounds(day)
    q := `SELECT ` + bookingColumns + ` FROM bookings WHERE scheduled_at >= ? AND scheduled_at < ?`
    args := []interface{}{start, end}
    if venueID != 0 {
        q += ` AND venue_id = ?`
        args = append(args, venueID)
    }
    q += ` ORDER BY scheduled_at ASC`
    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    return scanBookings(rows)
}

// ListByCandidate returns every booking of one candidate, newest
// scheduled time first.
func (r *BookingRepo) ListByCandidate(ctx context.Context, candidateID uint64) ([]model.Booking, error) {
    rows, err := r.db.QueryContext(ctx,
        `SELECT `+bookingColumns+` FROM bookings WHERE candidate_id = ? ORDER BY scheduled_at DESC`,
        candidateID,
    )
    if err != nil {
        return nil, err
    }
    return scanBookings(rows)
}

// ListFilter narrows the admin booking list.  Zero values mean "no
// filter"; InstitutionID scopes through the owning candidate.
type ListFilter struct {
    Status        model.BookingStatus
    VenueID       uint64
    ProductID     uint64
    CandidateID   uint64
    InstitutionID uint64
    From          *time.Time
    To            *time.Time
    Page          int
    PerPage       int
}

// List returns a page of bookings matching the filter along with the
// total match count for pagination.
func (r *BookingRepo) List(ctx context.Context, f ListFilter) ([]model.Booking, int, error) {
    where, args := f.clauses()
    var total int
    countQ := `SELECT COUNT(*) FROM bookings b JOIN candidates c ON c.id = b.candidate_id` + where
    if err := r.db.QueryRowContext(ctx, countQ, args...).Scan(&total); err != nil {
        return nil, 0, err
    }
    page, per := f.Page, f.PerPage
    if page < 1 {
        page = 1
    }
    if per < 1 || per > 200 {
        per = 20
    }
    q := `SELECT ` + prefixColumns("b") + ` FROM bookings b JOIN candidates c ON c.id = b.candidate_id` +
        where + ` ORDER BY b.scheduled_at ASC LIMIT ? OFFSET ?`
    args = append(args, per, (page-1)*per)
    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, 0, err
    }
    list, err := scanBookings(rows)
    if err != nil {
        return nil, 0, err
    }
    return list, total, nil
}

func (f ListFilter) clauses() (string, []interface{}) {
    conds := []string{}
    args := []interface{}{}
    if f.Status != "" {
        conds = append(conds, "b.status = ?")
        args = append(args, string(f.Status))
    }
    if f.VenueID != 0 {
        conds = append(conds, "b.venue_id = ?")
        args = append(args, f.VenueID)
    }
    if f.ProductID != 0 {
        conds = append(conds, "b.product_id = ?")
        args = append(args, f.ProductID)
    }
    if f.CandidateID != 0 {
        conds = append(conds, "b.candidate_id = ?")
        args = append(args, f.CandidateID)
    }
    if f.InstitutionID != 0 {
        conds = append(conds, "c.institution_id = ?")
        args = append(args, f.InstitutionID)
    }
    if f.From != nil {
        conds = append(conds, "b.scheduled_at >= ?")
        args = append(args, *f.From)
    }
    if f.To != nil {
        conds = append(conds, "b.scheduled_at <= ?")
        args = append(args, *f.To)
    }
    if len(conds) == 0 {
        return "", args
    }
    return " WHERE " + strings.Join(conds, " AND "), args
}

// StatusCount is one row of the per-status statistics.
type StatusCount struct {
    Status string `json:"status"`
    Count  int    `json:"count"`
}

// DateCount is one row of the per-day statistics.
type DateCount struct {
    Date  string `json:"date"`
    Count int    `json:"count"`
}

// Stats aggregates bookings by status and by calendar day, optionally
// scoped to one institution and/or one venue.
func (r *BookingRepo) Stats(ctx context.Context, institutionID, venueID uint64, from, to *time.Time) ([]StatusCount, []DateCount, error) {
    f := ListFilter{InstitutionID: institutionID, VenueID: venueID, From: from, To: to}
    where, args := f.clauses()
    base := ` FROM bookings b JOIN candidates c ON c.id = b.candidate_id` + where

    rows, err := r.db.QueryContext(ctx, `SELECT b.status, COUNT(*)`+base+` GROUP BY b.status`, args...)
    if err != nil {
        return nil, nil, err
    }
    var byStatus []StatusCount
    for rows.Next() {
        var sc StatusCount
        if err := rows.Scan(&sc.Status, &sc.Count); err != nil {
            rows.Close()
            return nil, nil, err
        }
        byStatus = append(byStatus, sc)
    }
    if err := rows.Close(); err != nil {
        return nil, nil, err
    }

    rows, err = r.db.QueryContext(ctx,
        `SELECT DATE(b.scheduled_at), COUNT(*)`+base+` GROUP BY DATE(b.scheduled_at) ORDER BY DATE(b.scheduled_at) ASC`,
        args...,
    )
    if err != nil {
        return nil, nil, err
    }
    defer rows.Close()
    var byDate []DateCount
    for rows.Next() {
        var dc DateCount
        if err := rows.Scan(&dc.Date, &dc.Count); err != nil {
            return nil, nil, err
        }
        byDate = append(byDate, dc)
    }
    if err := rows.Err(); err != nil {
        return nil, nil, err
    }
    return byStatus, byDate, nil
}

// bookingTx implements scheduler.Tx over one *sql.Tx.  Conflict reads
// lock the matched rows so the check+insert pair is atomic under
// concurrent requests.
type bookingTx struct {
    tx *sql.Tx
}

func (t *bookingTx) BookingByID(ctx context.Context, id uint64) (*model.Booking, error) {
    row := t.tx.QueryRowContext(ctx,
        `SELECT `+bookingColumns+` FROM bookings WHERE id = ? FOR UPDATE`, id)
    return scanBooking(row)
}

func (t *bookingTx) OccupyingInWindow(ctx context.Context, venueID uint64, start, end time.Time, excludeID uint64) ([]model.Booking, error) {
    q := `SELECT ` + bookingColumns + ` FROM bookings
          WHERE venue_id = ? AND status IN (` + occupyingStatuses + `)
            AND scheduled_at < ? AND DATE_ADD(scheduled_at, INTERVAL duration MINUTE) > ?`
    args := []interface{}{venueID, end, start}
    if excludeID != 0 {
        q += ` AND id <> ?`
        args = append(args, excludeID)
    }
    q += ` ORDER BY scheduled_at ASC FOR UPDATE`
    rows, err := t.tx.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    return scanBookings(rows)
}

func (t *bookingTx) ActiveForProduct(ctx context.Context, candidateIDs []uint64, productID uint64) ([]model.Booking, error) {
    if len(candidateIDs) == 0 {
        return nil, nil
    }
    placeholders := make([]string, len(candidateIDs))
    args := make([]interface{}, 0, len(candidateIDs)+1)
    for i, id := range candidateIDs {
        placeholders[i] = "?"
        args = append(args, id)
    }
    args = append(args, productID)
    q := `SELECT ` + bookingColumns + ` FROM bookings
          WHERE candidate_id IN (` + strings.Join(placeholders, ",") + `)
            AND product_id = ? AND status IN (` + occupyingStatuses + `) FOR UPDATE`
    rows, err := t.tx.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    return scanBookings(rows)
}

func (t *bookingTx) ScheduledForCandidateOn(ctx context.Context, candidateID uint64, day time.Time) ([]model.Booking, error) {
    start, end := dayBounds(day)
    rows, err := t.tx.QueryContext(ctx,
        `SELECT `+bookingColumns+` FROM bookings
         WHERE candidate_id = ? AND status = 'scheduled' AND scheduled_at >= ? AND scheduled_at < ?
         ORDER BY scheduled_at ASC FOR UPDATE`,
        candidateID, start, end,
    )
    if err != nil {
        return nil, err
    }
    return scanBookings(rows)
}

func (t *bookingTx) Insert(ctx context.Context, b *model.Booking) error {
    examData, err := marshalExamData(b.ExamData)
    if err != nil {
        return err
    }
    res, err := t.tx.ExecContext(ctx,
        `INSERT INTO bookings
            (candidate_id, product_id, venue_id, proctor_id, scheduled_at, duration,
             status, result, score, max_score, check_in_at, start_at, end_at, exam_data, notes)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
        b.CandidateID, b.ProductID, b.VenueID, nullableID(b.ProctorID), b.ScheduledAt, b.Duration,
        string(b.Status), nullableResult(b.Result), nullableFloat(b.Score), b.MaxScore,
        nullableTime(b.CheckInAt), nullableTime(b.StartAt), nullableTime(b.EndAt), examData, b.Notes,
    )
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    b.ID = uint64(id)
    // query back to populate the DB-side timestamps
    row := t.tx.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, b.ID)
    stored, err := scanBooking(row)
    if err != nil {
        return err
    }
    *b = *stored
    return nil
}

func (t *bookingTx) Update(ctx context.Context, b *model.Booking) error {
    examData, err := marshalExamData(b.ExamData)
    if err != nil {
        return err
    }
    res, err := t.tx.ExecContext(ctx,
        `UPDATE bookings SET
            venue_id = ?, proctor_id = ?, scheduled_at = ?, duration = ?, status = ?,
            result = ?, score = ?, max_score = ?, check_in_at = ?, start_at = ?, end_at = ?,
            exam_data = ?, notes = ?, updated_at = UTC_TIMESTAMP()
         WHERE id = ?`,
        b.VenueID, nullableID(b.ProctorID), b.ScheduledAt, b.Duration, string(b.Status),
        nullableResult(b.Result), nullableFloat(b.Score), b.MaxScore,
        nullableTime(b.CheckInAt), nullableTime(b.StartAt), nullableTime(b.EndAt),
        examData, b.Notes, b.ID,
    )
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return fmt.Errorf("booking %d: %w", b.ID, scheduler.ErrNotFound)
    }
    return nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
    Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*model.Booking, error) {
    var (
        b         model.Booking
        proctorID sql.NullInt64
        result    sql.NullString
        score     sql.NullFloat64
        checkIn   sql.NullTime
        startAt   sql.NullTime
        endAt     sql.NullTime
        examData  []byte
        notes     sql.NullString
    )
    err := row.Scan(
        &b.ID, &b.CandidateID, &b.ProductID, &b.VenueID, &proctorID, &b.ScheduledAt, &b.Duration,
        &b.Status, &result, &score, &b.MaxScore, &checkIn, &startAt, &endAt, &examData, &notes,
        &b.CreatedAt, &b.UpdatedAt,
    )
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, scheduler.ErrNotFound
        }
        return nil, err
    }
    if proctorID.Valid {
        id := uint64(proctorID.Int64)
        b.ProctorID = &id
    }
    if result.Valid {
        r := model.ExamResult(result.String)
        b.Result = &r
    }
    if score.Valid {
        s := score.Float64
        b.Score = &s
    }
    if checkIn.Valid {
        t := checkIn.Time
        b.CheckInAt = &t
    }
    if startAt.Valid {
        t := startAt.Time
        b.StartAt = &t
    }
    if endAt.Valid {
        t := endAt.Time
        b.EndAt = &t
    }
    if len(examData) > 0 {
        if err := json.Unmarshal(examData, &b.ExamData); err != nil {
            return nil, fmt.Errorf("booking %d: decode exam_data: %w", b.ID, err)
        }
    }
    if notes.Valid {
        b.Notes = notes.String
    }
    return &b, nil
}

func scanBookings(rows *sql.Rows) ([]model.Booking, error) {
    defer rows.Close()
    list := make([]model.Booking, 0)
    for rows.Next() {
        b, err := scanBooking(rows)
        if err != nil {
            return nil, err
        }
        list = append(list, *b)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return list, nil
}

func marshalExamData(m map[string]interface{}) (interface{}, error) {
    if m == nil {
        return nil, nil
    }
    raw, err := json.Marshal(m)
    if err != nil {
        return nil, err
    }
    return raw, nil
}

func nullableID(v *uint64) interface{} {
    if v == nil {
        return nil
    }
    return *v
}

func nullableFloat(v *float64) interface{} {
    if v == nil {
        return nil
    }
    return *v
}

func nullableTime(v *time.Time) interface{} {
    if v == nil {
        return nil
    }
    return *v
}

func nullableResult(v *model.ExamResult) interface{} {
    if v == nil {
        return nil
    }
    return string(*v)
}

// prefixColumns qualifies the shared column list with a table alias
// for joined queries.
func prefixColumns(alias string) string {
    cols := strings.Split(bookingColumns, ",")
    for i, c := range cols {
        cols[i] = alias + "." + strings.TrimSpace(c)
    }
    return strings.Join(cols, ", ")
}

// dayBounds returns the [midnight, next-midnight) window containing t.
func dayBounds(t time.Time) (time.Time, time.Time) {
    y, m, d := t.Date()
    start := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
    return start, start.AddDate(0, 0, 1)
}
