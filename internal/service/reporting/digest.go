package reporting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/broiler/internal/domain/models"
	"github.com/mamadbah2/broiler/internal/service/flockdata"
	"github.com/mamadbah2/broiler/internal/service/growth"
)

const dateLayout = "2006-01-02"

// Service builds the daily growth-performance digest for flocks still on farm.
type Service struct {
	source   flockdata.Source
	analyzer *growth.Analyzer
	logger   *zap.Logger
}

// NewService wires a new reporting service instance.
func NewService(source flockdata.Source, analyzer *growth.Analyzer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{source: source, analyzer: analyzer, logger: logger}
}

// BuildDigests analyses every active or harvesting flock. A flock that fails
// to load or analyse is logged and left out.
func (s *Service) BuildDigests(ctx context.Context) ([]models.PerformanceDigest, error) {
	flocks, err := s.source.ListFlocks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list flocks: %w", err)
	}

	today := s.analyzer.Calculator().Today()
	digests := make([]models.PerformanceDigest, 0, len(flocks))
	for _, flock := range flocks {
		if !flock.AcceptsCatching() {
			continue
		}

		bundle, err := flockdata.Load(ctx, s.source, flock.ID)
		if err != nil {
			s.logger.Warn("skip flock in digest", zap.String("flock_id", flock.ID), zap.Error(err))
			continue
		}
		analysis, err := s.analyzer.Analyze(bundle.Flock, bundle.Records, bundle.Curve)
		if err != nil {
			s.logger.Warn("skip flock in digest", zap.String("flock_id", flock.ID), zap.Error(err))
			continue
		}

		digests = append(digests, models.PerformanceDigest{
			FlockID:          flock.ID,
			Date:             today,
			AgeInDays:        analysis.AgeInDays,
			DaysRemaining:    analysis.DaysRemaining,
			CurrentWeight:    analysis.CurrentWeightKg,
			DeviationPercent: analysis.DeviationPercent,
			Band:             string(analysis.Band),
			FCR:              analysis.FCR,
			MortalityRate:    analysis.MortalityRate,
			ProjectedCatch:   analysis.ProjectedCatchDay,
		})
	}
	return digests, nil
}

// DailyDigest returns the formatted digest message.
func (s *Service) DailyDigest(ctx context.Context) (string, error) {
	_, message, err := s.Preview(ctx)
	return message, err
}

// Preview returns the per-flock digests together with the formatted message.
func (s *Service) Preview(ctx context.Context) ([]models.PerformanceDigest, string, error) {
	digests, err := s.BuildDigests(ctx)
	if err != nil {
		return nil, "", err
	}
	return digests, FormatDigest(s.analyzer.Calculator().Today(), digests), nil
}

// FormatDigest renders digests as a plain text message.
func FormatDigest(date time.Time, digests []models.PerformanceDigest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Growth digest %s", date.Format(dateLayout))
	if len(digests) == 0 {
		b.WriteString("\nNo flocks on farm.")
		return b.String()
	}

	for _, d := range digests {
		fmt.Fprintf(&b, "\n\n%s: day %d, %d left", d.FlockID, d.AgeInDays, d.DaysRemaining)
		fmt.Fprintf(&b, "\nWeight %s kg", d.CurrentWeight.Format("%.3f"))
		if d.DeviationPercent.IsAvailable() {
			fmt.Fprintf(&b, " (%s%% vs standard, %s)", d.DeviationPercent.Format("%+.2f"), bandLabel(d.Band))
		}
		fmt.Fprintf(&b, "\nFCR %s, mortality %.2f%%", d.FCR.Format("%.2f"), d.MortalityRate)
		if day, ok := d.ProjectedCatch.Value(); ok {
			fmt.Fprintf(&b, "\nCatch weight expected on day %d", int(day))
		}
	}
	return b.String()
}

func bandLabel(band string) string {
	return strings.ReplaceAll(band, "_", " ")
}
