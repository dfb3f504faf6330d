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

const productColumns = `id, name, code, category, duration, price, requirements, status, created_at, updated_at`

// ProductRepo reads exam product master data.
type ProductRepo struct {
    db *sql.DB
}

// NewProductRepo returns a ProductRepo bound to the given database.
func NewProductRepo(db *sql.DB) *ProductRepo { return &ProductRepo{db: db} }

// FindByID loads one exam product by primary key.
func (r *ProductRepo) FindByID(ctx context.Context, id uint64) (*model.ExamProduct, error) {
    row := r.db.QueryRowContext(ctx,
        `SELECT `+productColumns+` FROM exam_products WHERE id = ?`, id)
    return scanProduct(row)
}

// ListActive returns every active exam product ordered by name.
func (r *ProductRepo) ListActive(ctx context.Context) ([]model.ExamProduct, error) {
    rows, err := r.db.QueryContext(ctx,
        `SELECT `+productColumns+` FROM exam_products WHERE status = 'active' ORDER BY name ASC`)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    list := make([]model.ExamProduct, 0)
    for rows.Next() {
        p, err := scanProduct(rows)
        if err != nil {
            return nil, err
        }
        list = append(list, *p)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return list, nil
}

func scanProduct(row rowScanner) (*model.ExamProduct, error) {
    var (
        p        model.ExamProduct
        category sql.NullString
        reqs     []byte
    )
    err := row.Scan(
        &p.ID, &p.Name, &p.Code, &category, &p.Duration, &p.Price, &reqs,
        &p.Status, &p.CreatedAt, &p.UpdatedAt,
    )
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, scheduler.ErrNotFound
        }
        return nil, err
    }
    p.Category = category.String
    if len(reqs) > 0 {
        if err := json.Unmarshal(reqs, &p.Requirements); err != nil {
            return nil, fmt.Errorf("product %d: decode requirements: %w", p.ID, err)
        }
    }
    return &p, nil
}
