package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/broiler/internal/domain/models"
	"github.com/mamadbah2/broiler/internal/service/catching"
)

// CatchHandler exposes the catch session ledger over HTTP.
type CatchHandler struct {
	svc    *catching.Service
	logger *zap.Logger
}

// NewCatchHandler constructs the catch session HTTP adapter.
func NewCatchHandler(svc *catching.Service, logger *zap.Logger) *CatchHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatchHandler{svc: svc, logger: logger}
}

type startSessionRequest struct {
	FlockID        string              `json:"flock_id" binding:"required"`
	CatchDate      string              `json:"catch_date"`
	CatchTeam      string              `json:"catch_team"`
	WeighingMethod string              `json:"weighing_method" binding:"required"`
	PalletWeightKg *float64            `json:"pallet_weight_kg"`
	TargetBirds    *int                `json:"target_birds"`
	TargetWeightKg *float64            `json:"target_weight_kg"`
	Plan           *models.DensityPlan `json:"plan"`
}

type addCrateRequest struct {
	CrateTypeID   string  `json:"crate_type_id" binding:"required"`
	BirdCount     int     `json:"bird_count"`
	GrossWeightKg float64 `json:"gross_weight_kg"`
}

type addBatchRequest struct {
	CrateTypeID        string   `json:"crate_type_id" binding:"required"`
	NumberOfCrates     int      `json:"number_of_crates"`
	BirdsPerCrate      int      `json:"birds_per_crate"`
	TotalGrossWeightKg float64  `json:"total_gross_weight_kg"`
	CrateWeightKg      float64  `json:"crate_weight_kg"`
	PalletWeightKg     *float64 `json:"pallet_weight_kg"`
}

type completeRequest struct {
	Notes string `json:"notes"`
}

// sessionView is the JSON shape of a catch session.
type sessionView struct {
	ID              string               `json:"session_id"`
	FlockID         string               `json:"flock_id"`
	CatchDate       time.Time            `json:"catch_date"`
	CatchTeam       string               `json:"catch_team,omitempty"`
	WeighingMethod  models.WeighingKind  `json:"weighing_method"`
	PalletWeightKg  *float64             `json:"pallet_weight_kg,omitempty"`
	Status          models.SessionStatus `json:"status"`
	Plan            *models.DensityPlan  `json:"plan,omitempty"`
	Crates          []models.CatchCrate  `json:"crates"`
	Batches         []models.CatchBatch  `json:"batches"`
	Notes           string               `json:"notes,omitempty"`
	HarvestRecordID string               `json:"harvest_record_id,omitempty"`
	CompletedAt     *time.Time           `json:"completed_at,omitempty"`
	Version         int64                `json:"version"`
	Progress        catching.Progress    `json:"progress"`
}

func newSessionView(s *models.CatchSession, progress catching.Progress) sessionView {
	v := sessionView{
		ID:              s.ID,
		FlockID:         s.FlockID,
		CatchDate:       s.CatchDate,
		CatchTeam:       s.CatchTeam,
		WeighingMethod:  s.Method.Kind(),
		Status:          s.Status,
		Plan:            s.Plan,
		Crates:          s.Crates,
		Batches:         s.Batches,
		Notes:           s.Notes,
		HarvestRecordID: s.HarvestRecordID,
		CompletedAt:     s.CompletedAt,
		Version:         s.Version,
		Progress:        progress,
	}
	if pallet, ok := models.PalletWeight(s.Method); ok {
		v.PalletWeightKg = &pallet
	}
	if v.Crates == nil {
		v.Crates = []models.CatchCrate{}
	}
	if v.Batches == nil {
		v.Batches = []models.CatchBatch{}
	}
	return v
}

// Start opens a catch session.
func (h *CatchHandler) Start(c *gin.Context) {
	var req startSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	var catchDate time.Time
	if req.CatchDate != "" {
		parsed, err := time.Parse("2006-01-02", req.CatchDate)
		if err != nil {
			respondError(c, h.logger, fmt.Errorf("%w: catch_date must be YYYY-MM-DD", models.ErrInvalidInput))
			return
		}
		catchDate = parsed
	}

	session, err := h.svc.Start(c.Request.Context(), catching.StartRequest{
		FlockID:        req.FlockID,
		CatchDate:      catchDate,
		CatchTeam:      req.CatchTeam,
		Method:         models.WeighingKind(req.WeighingMethod),
		PalletWeightKg: req.PalletWeightKg,
		TargetBirds:    req.TargetBirds,
		TargetWeightKg: req.TargetWeightKg,
		Plan:           req.Plan,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"session_id": session.ID})
}

// Get returns a session with its progress.
func (h *CatchHandler) Get(c *gin.Context) {
	session, progress, err := h.svc.GetWithProgress(c.Request.Context(), c.Param("sessionId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, newSessionView(session, progress))
}

// ListByFlock returns the sessions recorded for a flock.
func (h *CatchHandler) ListByFlock(c *gin.Context) {
	sessions, err := h.svc.ListByFlock(c.Request.Context(), c.Param("flockId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	out := make([]gin.H, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, gin.H{
			"session_id":      s.ID,
			"catch_date":      s.CatchDate,
			"status":          s.Status,
			"weighing_method": s.Method.Kind(),
			"session_totals":  s.Totals,
		})
	}
	c.JSON(http.StatusOK, gin.H{"sessions": out})
}

// AddCrate records one individually weighed crate.
func (h *CatchHandler) AddCrate(c *gin.Context) {
	var req addCrateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	res, err := h.svc.AddCrate(c.Request.Context(), catching.AddCrateRequest{
		SessionID:     c.Param("sessionId"),
		CrateTypeID:   req.CrateTypeID,
		BirdCount:     req.BirdCount,
		GrossWeightKg: req.GrossWeightKg,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// DeleteCrate removes a crate by number.
func (h *CatchHandler) DeleteCrate(c *gin.Context) {
	number, err := strconv.Atoi(c.Param("crateNumber"))
	if err != nil {
		respondError(c, h.logger, fmt.Errorf("%w: crate number must be an integer", models.ErrInvalidInput))
		return
	}
	totals, err := h.svc.DeleteCrate(c.Request.Context(), c.Param("sessionId"), number)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true, "session_totals": totals})
}

// AddBatch records a stack or pallet of crates.
func (h *CatchHandler) AddBatch(c *gin.Context) {
	var req addBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	res, err := h.svc.AddBatch(c.Request.Context(), catching.AddBatchRequest{
		SessionID:          c.Param("sessionId"),
		CrateTypeID:        req.CrateTypeID,
		NumberOfCrates:     req.NumberOfCrates,
		BirdsPerCrate:      req.BirdsPerCrate,
		TotalGrossWeightKg: req.TotalGrossWeightKg,
		CrateWeightKg:      req.CrateWeightKg,
		PalletWeightKg:     req.PalletWeightKg,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// DeleteBatch removes a batch by id.
func (h *CatchHandler) DeleteBatch(c *gin.Context) {
	totals, err := h.svc.DeleteBatch(c.Request.Context(), c.Param("batchId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true, "session_totals": totals})
}

// Complete closes the session and emits the harvest record.
func (h *CatchHandler) Complete(c *gin.Context) {
	var req completeRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, h.logger, err)
			return
		}
	}
	res, err := h.svc.Complete(c.Request.Context(), c.Param("sessionId"), req.Notes)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
