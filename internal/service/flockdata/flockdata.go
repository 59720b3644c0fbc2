package flockdata

import (
	"context"
	"errors"
	"fmt"

	"github.com/mamadbah2/broiler/internal/domain/models"
)

// Source is the read-only reference data the analytics engine consumes.
type Source interface {
	GetFlock(ctx context.Context, flockID string) (models.Flock, error)
	ListFlocks(ctx context.Context) ([]models.Flock, error)
	ListDailyRecords(ctx context.Context, flockID string) ([]models.DailyRecord, error)
	GetBenchmarkCurve(ctx context.Context, breed string) (models.BenchmarkCurve, error)
	GetCrateType(ctx context.Context, crateTypeID string) (models.CrateType, error)
}

// Bundle is everything needed to analyse one flock.
type Bundle struct {
	Flock   models.Flock
	Records []models.DailyRecord
	Curve   models.BenchmarkCurve
}

// BundleLoader is implemented by sources that can fetch a whole Bundle in one
// read. Its curve follows the same rule as Load.
type BundleLoader interface {
	LoadBundle(ctx context.Context, flockID string) (Bundle, error)
}

// Load fetches a flock with its daily records and breed curve. A breed without
// a curve yields an empty curve so benchmark metrics report as unavailable.
func Load(ctx context.Context, src Source, flockID string) (Bundle, error) {
	if loader, ok := src.(BundleLoader); ok {
		return loader.LoadBundle(ctx, flockID)
	}

	flock, err := src.GetFlock(ctx, flockID)
	if err != nil {
		return Bundle{}, fmt.Errorf("load flock %s: %w", flockID, err)
	}

	records, err := src.ListDailyRecords(ctx, flockID)
	if err != nil {
		return Bundle{}, fmt.Errorf("load daily records for flock %s: %w", flockID, err)
	}

	curve, err := src.GetBenchmarkCurve(ctx, flock.Breed)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			return Bundle{}, fmt.Errorf("load benchmark curve %s: %w", flock.Breed, err)
		}
		curve = models.BenchmarkCurve{Breed: flock.Breed}
	}

	return Bundle{Flock: flock, Records: records, Curve: curve}, nil
}
