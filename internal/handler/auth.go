package handler

import (
    "context"  // provides context with cancellation for DB calls
    "errors"   // sentinel comparisons
    "net/http" // HTTP status codes and primitives
    "strings"  // string manipulation utilities
    "time"     // timeouts for DB calls

    "github.com/labstack/echo/v4" // Echo framework for HTTP routing

    "github.com/iliyamo/exam-center-ops/internal/config"
    "github.com/iliyamo/exam-center-ops/internal/model"
    "github.com/iliyamo/exam-center-ops/internal/repository"
    "github.com/iliyamo/exam-center-ops/internal/scheduler"
    "github.com/iliyamo/exam-center-ops/internal/utils"
)

// AuthHandler bundles dependencies for the two login endpoints: staff
// login with username/password, and candidate login with national ID
// number plus phone (the mini-app flow, no password involved).
type AuthHandler struct {
    Cfg        config.Config
    Users      *repository.UserRepo
    Candidates *repository.CandidateRepo
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, c *repository.CandidateRepo) *AuthHandler {
    return &AuthHandler{Cfg: cfg, Users: u, Candidates: c}
}

// ----- DTOs -----

type staffLoginReq struct {
    Username string `json:"username"`
    Password string `json:"password"`
}

type candidateLoginReq struct {
    IDNumber string `json:"id_number"`
    Phone    string `json:"phone"`
}

type tokenPart struct {
    Token   string    `json:"token"`
    Expires time.Time `json:"expires"`
}

type createStaffReq struct {
    Username      string `json:"username"`
    Password      string `json:"password"`
    RealName      string `json:"real_name"`
    Role          string `json:"role"`
    InstitutionID uint64 `json:"institution_id"`
}

// StaffLogin verifies a staff account and returns an access token
// carrying the role and institution claims.
func (h *AuthHandler) StaffLogin(c echo.Context) error {
    var req staffLoginReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Username = strings.TrimSpace(req.Username)
    if req.Username == "" || req.Password == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "username/password required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    u, err := h.Users.FindByUsername(ctx, req.Username)
    if err != nil {
        if errors.Is(err, scheduler.ErrNotFound) {
            return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
        }
        return writeError(c, err)
    }
    if u.Status != "active" || !utils.VerifyPassword(u.PasswordHash, req.Password) {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
    }

    access, err := utils.NewStaffToken(h.Cfg.JWTSecret, u, h.Cfg.AccessTTLMin)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{
        "user":   u,
        "access": tokenPart{Token: access.Token, Expires: access.Exp},
    })
}

// CreateStaff provisions a new staff account.  Admin only (enforced at
// the route); non-admin roles must name their institution.
func (h *AuthHandler) CreateStaff(c echo.Context) error {
    var req createStaffReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Username = strings.TrimSpace(req.Username)
    req.RealName = strings.TrimSpace(req.RealName)
    if req.Username == "" || req.Password == "" || req.RealName == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "username/password/real_name required"})
    }
    switch req.Role {
    case model.RoleAdmin:
        req.InstitutionID = 0
    case model.RoleInstitutionAdmin, model.RoleProctor:
        if req.InstitutionID == 0 {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "institution_id required for this role"})
        }
    default:
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown role"})
    }

    hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hash password failed"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    u := &model.User{
        Username:      req.Username,
        PasswordHash:  hash,
        RealName:      req.RealName,
        Role:          req.Role,
        InstitutionID: req.InstitutionID,
        Status:        "active",
    }
    if err := h.Users.Create(ctx, u); err != nil {
        if errors.Is(err, repository.ErrUsernameTaken) {
            return c.JSON(http.StatusConflict, echo.Map{"error": "username already taken"})
        }
        return writeError(c, err)
    }
    return c.JSON(http.StatusCreated, echo.Map{"user": u})
}

// CandidateLogin authenticates a candidate by national ID number and
// phone.  Both must match the registered record exactly.
func (h *AuthHandler) CandidateLogin(c echo.Context) error {
    var req candidateLoginReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.IDNumber = strings.TrimSpace(req.IDNumber)
    req.Phone = strings.TrimSpace(req.Phone)
    if req.IDNumber == "" || req.Phone == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "id_number/phone required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    cand, err := h.Candidates.FindByIDNumber(ctx, req.IDNumber)
    if err != nil {
        if errors.Is(err, scheduler.ErrNotFound) {
            return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
        }
        return writeError(c, err)
    }
    if cand.Phone != req.Phone || cand.Status != "active" {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
    }

    access, err := utils.NewCandidateToken(h.Cfg.JWTSecret, cand, h.Cfg.AccessTTLMin)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{
        "candidate": cand,
        "access":    tokenPart{Token: access.Token, Expires: access.Exp},
    })
}
