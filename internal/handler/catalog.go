package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/exam-center-ops/internal/repository"
)

// CatalogHandler serves the read-only master data lists shown in both
// the staff console and the mini-app.
type CatalogHandler struct {
    Products *repository.ProductRepo
    Venues   *repository.VenueRepo
}

func NewCatalogHandler(p *repository.ProductRepo, v *repository.VenueRepo) *CatalogHandler {
    return &CatalogHandler{Products: p, Venues: v}
}

// ListProducts returns the active exam products.
func (h *CatalogHandler) ListProducts(c echo.Context) error {
    products, err := h.Products.ListActive(c.Request().Context())
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"products": products})
}

// ListVenues returns the active venues, optionally filtered by
// institution.
func (h *CatalogHandler) ListVenues(c echo.Context) error {
    venues, err := h.Venues.ListActive(c.Request().Context(), queryUint(c, "institution_id"))
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"venues": venues})
}
