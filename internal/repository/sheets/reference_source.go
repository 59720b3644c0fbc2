package sheets

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mamadbah2/broiler/internal/domain/models"
	"github.com/mamadbah2/broiler/internal/service/flockdata"
)

const (
	flocksRange       = "Flocks!A:K"
	dailyRecordsRange = "DailyRecords!A:H"
	benchmarksRange   = "Benchmarks!A:C"
	crateTypesRange   = "CrateTypes!A:F"
)

// ReferenceSource reads flock master data, daily records, breed curves and
// the crate catalog from the farm spreadsheet. Rows that do not parse (header
// rows included) are skipped.
type ReferenceSource struct {
	reader RangeReader
	logger *zap.Logger
}

// NewReferenceSource wraps a range reader.
func NewReferenceSource(reader RangeReader, logger *zap.Logger) *ReferenceSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReferenceSource{reader: reader, logger: logger}
}

func (s *ReferenceSource) read(ctx context.Context, sheetRanges ...string) ([][][]interface{}, error) {
	values, err := s.reader.ReadRanges(ctx, sheetRanges...)
	if err != nil {
		return nil, fmt.Errorf("load ranges %v: %w", sheetRanges, err)
	}
	if len(values) != len(sheetRanges) {
		return nil, fmt.Errorf("load ranges %v: got %d row sets", sheetRanges, len(values))
	}
	return values, nil
}

// ListFlocks returns every valid flock row.
func (s *ReferenceSource) ListFlocks(ctx context.Context) ([]models.Flock, error) {
	values, err := s.read(ctx, flocksRange)
	if err != nil {
		return nil, err
	}
	return s.flocksFrom(values[0]), nil
}

// GetFlock returns a flock by id.
func (s *ReferenceSource) GetFlock(ctx context.Context, flockID string) (models.Flock, error) {
	values, err := s.read(ctx, flocksRange)
	if err != nil {
		return models.Flock{}, err
	}
	return s.flockFrom(values[0], flockID)
}

// ListDailyRecords returns a flock's records ordered by day. When a day is
// entered twice the later row wins.
func (s *ReferenceSource) ListDailyRecords(ctx context.Context, flockID string) ([]models.DailyRecord, error) {
	values, err := s.read(ctx, flocksRange, dailyRecordsRange)
	if err != nil {
		return nil, err
	}
	if _, err := s.flockFrom(values[0], flockID); err != nil {
		return nil, err
	}
	return s.recordsFrom(values[1], flockID), nil
}

// GetBenchmarkCurve returns the growth standard of a breed.
func (s *ReferenceSource) GetBenchmarkCurve(ctx context.Context, breed string) (models.BenchmarkCurve, error) {
	values, err := s.read(ctx, benchmarksRange)
	if err != nil {
		return models.BenchmarkCurve{}, err
	}
	return curveFrom(values[0], breed)
}

// GetCrateType returns a crate catalog entry by id.
func (s *ReferenceSource) GetCrateType(ctx context.Context, crateTypeID string) (models.CrateType, error) {
	values, err := s.read(ctx, crateTypesRange)
	if err != nil {
		return models.CrateType{}, err
	}

	for i, row := range values[0] {
		if cell(row, 0) != crateTypeID {
			continue
		}
		crate, err := parseCrateRow(row)
		if err != nil {
			s.logger.Warn("invalid crate type row", zap.Int("row", i+1), zap.String("crate_type_id", crateTypeID), zap.Error(err))
			return models.CrateType{}, fmt.Errorf("crate type %s: %w", crateTypeID, err)
		}
		return crate, nil
	}
	return models.CrateType{}, fmt.Errorf("%w: crate type %s", models.ErrNotFound, crateTypeID)
}

// LoadBundle reads the flock, its daily records and its breed curve with one
// batched request.
func (s *ReferenceSource) LoadBundle(ctx context.Context, flockID string) (flockdata.Bundle, error) {
	values, err := s.read(ctx, flocksRange, dailyRecordsRange, benchmarksRange)
	if err != nil {
		return flockdata.Bundle{}, err
	}
	flock, err := s.flockFrom(values[0], flockID)
	if err != nil {
		return flockdata.Bundle{}, fmt.Errorf("load flock %s: %w", flockID, err)
	}
	curve, err := curveFrom(values[2], flock.Breed)
	if err != nil {
		curve = models.BenchmarkCurve{Breed: flock.Breed}
	}
	return flockdata.Bundle{Flock: flock, Records: s.recordsFrom(values[1], flockID), Curve: curve}, nil
}

func (s *ReferenceSource) flocksFrom(rows [][]interface{}) []models.Flock {
	flocks := make([]models.Flock, 0, len(rows))
	for i, row := range rows {
		flock, err := parseFlockRow(row)
		if err != nil {
			s.logger.Debug("skip flock row", zap.Int("row", i+1), zap.Error(err))
			continue
		}
		flocks = append(flocks, flock)
	}
	return flocks
}

func (s *ReferenceSource) flockFrom(rows [][]interface{}, flockID string) (models.Flock, error) {
	for _, f := range s.flocksFrom(rows) {
		if f.ID == flockID {
			return f, nil
		}
	}
	return models.Flock{}, fmt.Errorf("%w: flock %s", models.ErrNotFound, flockID)
}

func (s *ReferenceSource) recordsFrom(rows [][]interface{}, flockID string) []models.DailyRecord {
	byDay := make(map[int]models.DailyRecord)
	for i, row := range rows {
		if cell(row, 0) != flockID {
			continue
		}
		record, err := parseDailyRecordRow(row)
		if err != nil {
			s.logger.Debug("skip daily record row", zap.Int("row", i+1), zap.String("flock_id", flockID), zap.Error(err))
			continue
		}
		byDay[record.DayNumber] = record
	}

	records := make([]models.DailyRecord, 0, len(byDay))
	for _, r := range byDay {
		records = append(records, r)
	}
	models.SortRecords(records)
	return records
}

// Benchmarks: breed | day | weight kg
func curveFrom(rows [][]interface{}, breed string) (models.BenchmarkCurve, error) {
	var points []models.BenchmarkPoint
	for _, row := range rows {
		if cell(row, 0) != breed {
			continue
		}
		day, err := parseInt(cell(row, 1))
		if err != nil {
			continue
		}
		weight, err := parseFloat(cell(row, 2))
		if err != nil || weight <= 0 {
			continue
		}
		points = append(points, models.BenchmarkPoint{Day: day, WeightKg: weight})
	}
	if len(points) == 0 {
		return models.BenchmarkCurve{}, fmt.Errorf("%w: benchmark curve %s", models.ErrNotFound, breed)
	}
	return models.NewBenchmarkCurve(breed, points), nil
}

// Flocks: id | breed | placement date | growing days | initial | current |
// status | chick kg | target delivered kg | starter end day | grower end day
func parseFlockRow(row []interface{}) (models.Flock, error) {
	placement, err := parseDate(cell(row, 2))
	if err != nil {
		return models.Flock{}, fmt.Errorf("placement date: %w", err)
	}
	period, err := parseInt(cell(row, 3))
	if err != nil {
		return models.Flock{}, fmt.Errorf("growing period: %w", err)
	}
	initial, err := parseInt(cell(row, 4))
	if err != nil {
		return models.Flock{}, fmt.Errorf("initial count: %w", err)
	}
	current, err := parseInt(cell(row, 5))
	if err != nil {
		return models.Flock{}, fmt.Errorf("current count: %w", err)
	}

	status := models.FlockStatus(cell(row, 6))
	switch status {
	case models.FlockActive, models.FlockHarvesting, models.FlockClosed:
	case "":
		status = models.FlockActive
	default:
		return models.Flock{}, fmt.Errorf("%w: unknown flock status %q", models.ErrInvalidInput, status)
	}

	chick := 0.0
	if v := cell(row, 7); v != "" {
		if chick, err = parseFloat(v); err != nil {
			return models.Flock{}, fmt.Errorf("chick weight: %w", err)
		}
	}
	target, err := optionalFloat(cell(row, 8))
	if err != nil {
		return models.Flock{}, fmt.Errorf("target delivered weight: %w", err)
	}
	starterEnd, err := optionalInt(cell(row, 9))
	if err != nil {
		return models.Flock{}, fmt.Errorf("starter end day: %w", err)
	}
	growerEnd, err := optionalInt(cell(row, 10))
	if err != nil {
		return models.Flock{}, fmt.Errorf("grower end day: %w", err)
	}

	flock := models.Flock{
		ID:                      cell(row, 0),
		Breed:                   cell(row, 1),
		PlacementDate:           placement,
		GrowingPeriodDays:       period,
		InitialCount:            initial,
		CurrentCount:            current,
		ChickWeightKg:           chick,
		TargetDeliveredWeightKg: target,
		Status:                  status,
		Phases:                  models.PhasePlan{StarterEndDay: starterEnd, GrowerEndDay: growerEnd},
	}
	if err := flock.Validate(); err != nil {
		return models.Flock{}, err
	}
	return flock, nil
}

// DailyRecords: flock id | day | mortality | feed kg | feed type | water l |
// average weight kg (0 or empty = not weighed) | samples "a;b;c"
func parseDailyRecordRow(row []interface{}) (models.DailyRecord, error) {
	day, err := parseInt(cell(row, 1))
	if err != nil {
		return models.DailyRecord{}, fmt.Errorf("day number: %w", err)
	}
	mortality, err := optionalInt(cell(row, 2))
	if err != nil {
		return models.DailyRecord{}, fmt.Errorf("mortality: %w", err)
	}
	feed := 0.0
	if v := cell(row, 3); v != "" {
		if feed, err = parseFloat(v); err != nil {
			return models.DailyRecord{}, fmt.Errorf("feed consumed: %w", err)
		}
	}
	var feedType models.FeedType
	if v := cell(row, 4); v != "" {
		if feedType, err = models.ParseFeedType(v); err != nil {
			return models.DailyRecord{}, err
		}
	}
	water, err := optionalFloat(cell(row, 5))
	if err != nil {
		return models.DailyRecord{}, fmt.Errorf("water consumed: %w", err)
	}
	weight := models.NotWeighed()
	if v := cell(row, 6); v != "" {
		kg, err := parseFloat(v)
		if err != nil {
			return models.DailyRecord{}, fmt.Errorf("average weight: %w", err)
		}
		weight = models.WeightOf(kg)
	}
	samples, err := parseSamples(cell(row, 7))
	if err != nil {
		return models.DailyRecord{}, err
	}

	record := models.DailyRecord{
		FlockID:             cell(row, 0),
		DayNumber:           day,
		Mortality:           mortality,
		FeedConsumedKg:      feed,
		FeedType:            feedType,
		WaterConsumedLiters: water,
		AverageWeight:       weight,
		WeightSamples:       samples,
	}
	if err := record.Validate(); err != nil {
		return models.DailyRecord{}, err
	}
	return record, nil
}

// CrateTypes: id | name | length cm | width cm | height cm | tare kg
func parseCrateRow(row []interface{}) (models.CrateType, error) {
	var dims [4]float64
	for i := range dims {
		v, err := parseFloat(cell(row, 2+i))
		if err != nil {
			return models.CrateType{}, fmt.Errorf("column %d: %w", 3+i, err)
		}
		if v <= 0 {
			return models.CrateType{}, fmt.Errorf("%w: column %d must be positive", models.ErrInvalidInput, 3+i)
		}
		dims[i] = v
	}
	return models.CrateType{
		ID:           cell(row, 0),
		Name:         cell(row, 1),
		LengthCm:     dims[0],
		WidthCm:      dims[1],
		HeightCm:     dims[2],
		TareWeightKg: dims[3],
	}, nil
}
