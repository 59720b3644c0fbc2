package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/broiler/internal/domain/models"
	"github.com/mamadbah2/broiler/internal/service/density"
	"github.com/mamadbah2/broiler/internal/service/feed"
	"github.com/mamadbah2/broiler/internal/service/flockdata"
	"github.com/mamadbah2/broiler/internal/service/growth"
	"github.com/mamadbah2/broiler/internal/service/shrinkage"
)

// AnalyticsHandler serves flock performance, feed, shrinkage and density reads.
type AnalyticsHandler struct {
	source  flockdata.Source
	growth  *growth.Analyzer
	feed    *feed.Analyzer
	planner *shrinkage.Planner
	density *density.Service
	logger  *zap.Logger
}

// NewAnalyticsHandler constructs the analytics HTTP adapter.
func NewAnalyticsHandler(source flockdata.Source, growthAnalyzer *growth.Analyzer, feedAnalyzer *feed.Analyzer, planner *shrinkage.Planner, densitySvc *density.Service, logger *zap.Logger) *AnalyticsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsHandler{
		source:  source,
		growth:  growthAnalyzer,
		feed:    feedAnalyzer,
		planner: planner,
		density: densitySvc,
		logger:  logger,
	}
}

// Performance returns growth metrics with the advanced analysis.
func (h *AnalyticsHandler) Performance(c *gin.Context) {
	bundle, err := flockdata.Load(c.Request.Context(), h.source, c.Param("flockId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	analysis, err := h.growth.Analyze(bundle.Flock, bundle.Records, bundle.Curve)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, analysis)
}

// FeedEfficiency returns per-phase FCR and the daily feed series.
func (h *AnalyticsHandler) FeedEfficiency(c *gin.Context) {
	ctx := c.Request.Context()
	flockID := c.Param("flockId")

	flock, err := h.source.GetFlock(ctx, flockID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	records, err := h.source.ListDailyRecords(ctx, flockID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	report, err := h.feed.Analyze(flock, records)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// Shrinkage returns the flock's target catching weight.
func (h *AnalyticsHandler) Shrinkage(c *gin.Context) {
	flock, err := h.source.GetFlock(c.Request.Context(), c.Param("flockId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, h.planner.PlanFlock(flock))
}

type densityRequest struct {
	FlockID                string   `json:"flock_id" binding:"required"`
	CrateTypeID            string   `json:"crate_type_id" binding:"required"`
	Season                 string   `json:"season" binding:"required"`
	TransportDurationHours *float64 `json:"transport_duration_hours"`
}

func (r densityRequest) toService() density.RecommendationRequest {
	return density.RecommendationRequest{
		FlockID:                r.FlockID,
		CrateTypeID:            r.CrateTypeID,
		Season:                 models.Season(r.Season),
		TransportDurationHours: r.TransportDurationHours,
	}
}

type densityPlanRequest struct {
	densityRequest
	AvailableCrates int  `json:"available_crates" binding:"required"`
	TargetBirds     *int `json:"target_birds"`
}

// DensityRecommendation returns birds per crate for the flock's current weight.
func (h *AnalyticsHandler) DensityRecommendation(c *gin.Context) {
	var req densityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	rec, err := h.density.Recommend(c.Request.Context(), req.toService())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// DensityPlan returns the standard and odd crate distribution.
func (h *AnalyticsHandler) DensityPlan(c *gin.Context) {
	var req densityPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	plan, rec, err := h.density.Plan(c.Request.Context(), density.PlanRequest{
		RecommendationRequest: req.toService(),
		AvailableCrates:       req.AvailableCrates,
		TargetBirds:           req.TargetBirds,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"plan": plan, "recommendation": rec})
}
