package models

import (
	"fmt"
	"sort"
	"time"
)

// DefaultChickWeightKg is the day-old chick weight assumed when a flock does not record one.
const DefaultChickWeightKg = 0.042

// FlockStatus enumerates flock lifecycle states relevant to catching.
type FlockStatus string

const (
	FlockActive     FlockStatus = "active"
	FlockHarvesting FlockStatus = "harvesting"
	FlockClosed     FlockStatus = "closed"
)

// FeedType enumerates the ration phases.
type FeedType string

const (
	FeedStarter  FeedType = "starter"
	FeedGrower   FeedType = "grower"
	FeedFinisher FeedType = "finisher"
)

// ParseFeedType validates a feed type label.
func ParseFeedType(value string) (FeedType, error) {
	switch FeedType(value) {
	case FeedStarter, FeedGrower, FeedFinisher:
		return FeedType(value), nil
	default:
		return "", fmt.Errorf("%w: unknown feed type %q", ErrInvalidInput, value)
	}
}

// PhasePlan holds the last day (inclusive) of the starter and grower rations.
type PhasePlan struct {
	StarterEndDay int `json:"starter_end_day"`
	GrowerEndDay  int `json:"grower_end_day"`
}

// DefaultPhasePlan is used when a flock does not configure its own ranges.
var DefaultPhasePlan = PhasePlan{StarterEndDay: 10, GrowerEndDay: 24}

// PhaseFor returns the ration phase a given day belongs to.
func (p PhasePlan) PhaseFor(day int) FeedType {
	switch {
	case day <= p.StarterEndDay:
		return FeedStarter
	case day <= p.GrowerEndDay:
		return FeedGrower
	default:
		return FeedFinisher
	}
}

func (p PhasePlan) valid() bool {
	return p.StarterEndDay >= 0 && p.GrowerEndDay > p.StarterEndDay
}

// Flock is the master data of one placed batch of birds.
type Flock struct {
	ID                      string      `json:"id"`
	Breed                   string      `json:"breed"`
	PlacementDate           time.Time   `json:"placement_date"`
	GrowingPeriodDays       int         `json:"growing_period_days"`
	InitialCount            int         `json:"initial_count"`
	CurrentCount            int         `json:"current_count"`
	ChickWeightKg           float64     `json:"chick_weight_kg,omitempty"`
	TargetDeliveredWeightKg *float64    `json:"target_delivered_weight_kg,omitempty"`
	Status                  FlockStatus `json:"status"`
	Phases                  PhasePlan   `json:"phases"`
}

// Validate checks the flock master data invariants.
func (f Flock) Validate() error {
	switch {
	case f.ID == "":
		return fmt.Errorf("%w: flock id is required", ErrInvalidInput)
	case f.InitialCount <= 0:
		return fmt.Errorf("%w: flock %s initial count must be positive", ErrInvalidInput, f.ID)
	case f.CurrentCount < 0 || f.CurrentCount > f.InitialCount:
		return fmt.Errorf("%w: flock %s current count %d outside [0, %d]", ErrInvalidInput, f.ID, f.CurrentCount, f.InitialCount)
	case f.GrowingPeriodDays <= 0:
		return fmt.Errorf("%w: flock %s growing period must be positive", ErrInvalidInput, f.ID)
	case f.TargetDeliveredWeightKg != nil && *f.TargetDeliveredWeightKg <= 0:
		return fmt.Errorf("%w: flock %s target delivered weight must be positive", ErrInvalidInput, f.ID)
	}
	return nil
}

// AcceptsCatching reports whether a catch session may be started for the flock.
func (f Flock) AcceptsCatching() bool {
	return f.Status == FlockActive || f.Status == FlockHarvesting
}

// StartWeightKg is the per-bird weight at placement.
func (f Flock) StartWeightKg() float64 {
	if f.ChickWeightKg > 0 {
		return f.ChickWeightKg
	}
	return DefaultChickWeightKg
}

// PhaseRanges returns the configured phase ranges or the defaults.
func (f Flock) PhaseRanges() PhasePlan {
	if f.Phases.valid() {
		return f.Phases
	}
	return DefaultPhasePlan
}

// DailyRecord captures one day of husbandry measurements for a flock.
type DailyRecord struct {
	FlockID             string    `json:"flock_id"`
	DayNumber           int       `json:"day_number"`
	Mortality           int       `json:"mortality"`
	FeedConsumedKg      float64   `json:"feed_consumed_kg"`
	FeedType            FeedType  `json:"feed_type"`
	WaterConsumedLiters *float64  `json:"water_consumed_liters,omitempty"`
	AverageWeight       Weight    `json:"average_weight_kg"`
	WeightSamples       []float64 `json:"weight_samples,omitempty"`
}

// Validate checks the per-record numeric constraints.
func (r DailyRecord) Validate() error {
	switch {
	case r.DayNumber < 0:
		return fmt.Errorf("%w: day number must not be negative", ErrInvalidInput)
	case r.Mortality < 0:
		return fmt.Errorf("%w: day %d mortality must not be negative", ErrInvalidInput, r.DayNumber)
	case r.FeedConsumedKg < 0:
		return fmt.Errorf("%w: day %d feed consumed must not be negative", ErrInvalidInput, r.DayNumber)
	case r.WaterConsumedLiters != nil && *r.WaterConsumedLiters < 0:
		return fmt.Errorf("%w: day %d water consumed must not be negative", ErrInvalidInput, r.DayNumber)
	}
	return nil
}

// SortRecords orders records by day number in place.
func SortRecords(records []DailyRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].DayNumber < records[j].DayNumber
	})
}

// BenchmarkPoint is one day of a breed standard.
type BenchmarkPoint struct {
	Day      int     `json:"day"`
	WeightKg float64 `json:"weight_kg"`
}

// BenchmarkCurve is the target growth table of a breed standard.
type BenchmarkCurve struct {
	Breed  string           `json:"breed"`
	Points []BenchmarkPoint `json:"points"`
}

// NewBenchmarkCurve copies and sorts the points by day.
func NewBenchmarkCurve(breed string, points []BenchmarkPoint) BenchmarkCurve {
	sorted := make([]BenchmarkPoint, len(points))
	copy(sorted, points)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Day < sorted[j].Day })
	return BenchmarkCurve{Breed: breed, Points: sorted}
}

// WeightAt returns the benchmark weight for a day, interpolating linearly between
// neighbouring points. Days outside the table are not extrapolated.
func (c BenchmarkCurve) WeightAt(day int) (float64, bool) {
	n := len(c.Points)
	if n == 0 || day < c.Points[0].Day || day > c.Points[n-1].Day {
		return 0, false
	}

	idx := sort.Search(n, func(i int) bool { return c.Points[i].Day >= day })
	hi := c.Points[idx]
	if hi.Day == day {
		return hi.WeightKg, hi.WeightKg > 0
	}

	lo := c.Points[idx-1]
	frac := float64(day-lo.Day) / float64(hi.Day-lo.Day)
	weight := lo.WeightKg + (hi.WeightKg-lo.WeightKg)*frac
	return weight, weight > 0
}

// CrateType describes a transport crate model.
type CrateType struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	LengthCm     float64 `json:"length_cm"`
	WidthCm      float64 `json:"width_cm"`
	HeightCm     float64 `json:"height_cm"`
	TareWeightKg float64 `json:"tare_weight_kg"`
}

// FloorAreaM2 returns the crate floor area in square metres.
func (c CrateType) FloorAreaM2() float64 {
	return (c.LengthCm / 100) * (c.WidthCm / 100)
}
