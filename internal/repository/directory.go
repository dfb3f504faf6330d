package repository

import (
    "context"

    "github.com/iliyamo/exam-center-ops/internal/model"
)

// Directory bundles the master-data repos behind the scheduler's
// read-only lookup port.
type Directory struct {
    Candidates *CandidateRepo
    Products   *ProductRepo
    Venues     *VenueRepo
}

// NewDirectory returns a Directory over the three master-data repos.
func NewDirectory(c *CandidateRepo, p *ProductRepo, v *VenueRepo) *Directory {
    return &Directory{Candidates: c, Products: p, Venues: v}
}

func (d *Directory) Candidate(ctx context.Context, id uint64) (*model.Candidate, error) {
    return d.Candidates.FindByID(ctx, id)
}

func (d *Directory) ExamProduct(ctx context.Context, id uint64) (*model.ExamProduct, error) {
    return d.Products.FindByID(ctx, id)
}

func (d *Directory) Venue(ctx context.Context, id uint64) (*model.Venue, error) {
    return d.Venues.FindByID(ctx, id)
}
