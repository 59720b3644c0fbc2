package density

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mamadbah2/broiler/internal/domain/models"
	"github.com/mamadbah2/broiler/internal/service/flockdata"
	"github.com/mamadbah2/broiler/internal/service/growth"
)

// RecommendationRequest asks for a birds-per-crate recommendation.
type RecommendationRequest struct {
	FlockID                string
	CrateTypeID            string
	Season                 models.Season
	TransportDurationHours *float64
}

// PlanRequest asks for a full crate distribution plan.
type PlanRequest struct {
	RecommendationRequest
	AvailableCrates int
	TargetBirds     *int
}

// Service resolves flock and crate data before running the calculator.
type Service struct {
	source   flockdata.Source
	analyzer *growth.Analyzer
	calc     *Calculator
	logger   *zap.Logger
}

// NewService wires a density service.
func NewService(source flockdata.Source, analyzer *growth.Analyzer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if analyzer == nil {
		analyzer = growth.NewAnalyzer(nil, nil)
	}
	return &Service{source: source, analyzer: analyzer, calc: NewCalculator(), logger: logger}
}

// Recommend computes the recommendation for the flock's current average bird weight.
func (s *Service) Recommend(ctx context.Context, req RecommendationRequest) (Recommendation, error) {
	if req.FlockID == "" || req.CrateTypeID == "" {
		return Recommendation{}, fmt.Errorf("%w: flock id and crate type id are required", models.ErrInvalidInput)
	}
	if _, err := models.ParseSeason(string(req.Season)); err != nil {
		return Recommendation{}, err
	}

	crate, err := s.source.GetCrateType(ctx, req.CrateTypeID)
	if err != nil {
		return Recommendation{}, fmt.Errorf("load crate type %s: %w", req.CrateTypeID, err)
	}

	bundle, err := flockdata.Load(ctx, s.source, req.FlockID)
	if err != nil {
		return Recommendation{}, err
	}

	weight, source, err := s.averageWeight(bundle)
	if err != nil {
		return Recommendation{}, err
	}

	rec, err := s.calc.Recommend(crate, req.Season, req.TransportDurationHours, weight)
	if err != nil {
		return Recommendation{}, err
	}
	rec.WeightSource = source

	s.logger.Debug("density recommendation computed",
		zap.String("flock_id", req.FlockID),
		zap.String("crate_type_id", req.CrateTypeID),
		zap.String("season", string(req.Season)),
		zap.Float64("avg_weight_kg", weight),
		zap.Int("recommended", rec.Recommended))

	return rec, nil
}

// Plan computes the standard/odd crate distribution. Without an explicit target
// the flock's current bird count is planned.
func (s *Service) Plan(ctx context.Context, req PlanRequest) (models.DensityPlan, Recommendation, error) {
	rec, err := s.Recommend(ctx, req.RecommendationRequest)
	if err != nil {
		return models.DensityPlan{}, Recommendation{}, err
	}

	target := 0
	if req.TargetBirds != nil {
		target = *req.TargetBirds
	} else {
		flock, err := s.source.GetFlock(ctx, req.FlockID)
		if err != nil {
			return models.DensityPlan{}, Recommendation{}, fmt.Errorf("load flock %s: %w", req.FlockID, err)
		}
		target = flock.CurrentCount
	}

	plan, err := Distribute(rec, req.CrateTypeID, req.TransportDurationHours, req.AvailableCrates, target)
	if err != nil {
		return models.DensityPlan{}, Recommendation{}, err
	}
	return plan, rec, nil
}

func (s *Service) averageWeight(bundle flockdata.Bundle) (float64, string, error) {
	analysis, err := s.analyzer.Analyze(bundle.Flock, bundle.Records, bundle.Curve)
	if err != nil {
		return 0, "", err
	}
	if kg, ok := analysis.CurrentWeightKg.Value(); ok {
		return kg, "weighed", nil
	}
	if kg, ok := bundle.Curve.WeightAt(analysis.AgeInDays); ok {
		return kg, "benchmark", nil
	}
	return 0, "", fmt.Errorf("%w: flock %s has no weighed record and no benchmark for day %d",
		models.ErrComputationUnavailable, bundle.Flock.ID, analysis.AgeInDays)
}
