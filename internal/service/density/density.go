package density

import (
	"fmt"
	"math"

	"github.com/mamadbah2/broiler/internal/domain/models"
)

const (
	summerReduction = 0.30
	rangeSpread     = 0.10
	floorEpsilon    = 1e-9
)

// Bracket maps birds up to MaxWeightKg (exclusive) to a base stocking density.
type Bracket struct {
	MaxWeightKg float64
	BirdsPerM2  float64
}

// TransportTier reduces density for journeys up to MaxHours (inclusive).
type TransportTier struct {
	MaxHours  float64
	Reduction float64
}

// DefaultBrackets are the base densities per average live weight.
var DefaultBrackets = []Bracket{
	{MaxWeightKg: 1.5, BirdsPerM2: 32},
	{MaxWeightKg: 2.0, BirdsPerM2: 27},
	{MaxWeightKg: 2.5, BirdsPerM2: 24},
	{MaxWeightKg: 3.0, BirdsPerM2: 20},
	{MaxWeightKg: math.Inf(1), BirdsPerM2: 17},
}

// DefaultTransportTiers are the density reductions per journey length. Journeys
// longer than the last tier use the last tier.
var DefaultTransportTiers = []TransportTier{
	{MaxHours: 2, Reduction: 0},
	{MaxHours: 4, Reduction: 0.05},
	{MaxHours: 6, Reduction: 0.10},
	{MaxHours: 8, Reduction: 0.15},
}

// Recommendation is the suggested number of birds per crate.
type Recommendation struct {
	Recommended        int           `json:"recommended"`
	Min                int           `json:"min"`
	Max                int           `json:"max"`
	FloorAreaM2        float64       `json:"floor_area"`
	AvgBirdWeightKg    float64       `json:"avg_bird_weight"`
	WeightSource       string        `json:"avg_bird_weight_source"`
	BaseDensity        float64       `json:"base_density"`
	AdjustedDensity    float64       `json:"adjusted_density"`
	Season             models.Season `json:"season"`
	TransportReduction float64       `json:"transport_reduction"`
}

// Calculator holds the density tables.
type Calculator struct {
	brackets []Bracket
	tiers    []TransportTier
}

// NewCalculator uses the default tables.
func NewCalculator() *Calculator {
	return &Calculator{brackets: DefaultBrackets, tiers: DefaultTransportTiers}
}

// BaseDensity returns birds per m² for an average bird weight.
func (c *Calculator) BaseDensity(avgWeightKg float64) float64 {
	for _, b := range c.brackets {
		if avgWeightKg < b.MaxWeightKg {
			return b.BirdsPerM2
		}
	}
	return c.brackets[len(c.brackets)-1].BirdsPerM2
}

// TransportReduction returns the fractional density reduction for a journey.
func (c *Calculator) TransportReduction(hours *float64) float64 {
	if hours == nil || len(c.tiers) == 0 {
		return 0
	}
	for _, tier := range c.tiers {
		if *hours <= tier.MaxHours {
			return tier.Reduction
		}
	}
	return c.tiers[len(c.tiers)-1].Reduction
}

// Recommend computes birds per crate for the crate geometry and conditions.
func (c *Calculator) Recommend(crate models.CrateType, season models.Season, transportHours *float64, avgWeightKg float64) (Recommendation, error) {
	area := crate.FloorAreaM2()
	switch {
	case area <= 0:
		return Recommendation{}, fmt.Errorf("%w: crate type %s has no floor area", models.ErrInvalidInput, crate.ID)
	case avgWeightKg <= 0:
		return Recommendation{}, fmt.Errorf("%w: average bird weight must be positive", models.ErrInvalidInput)
	case transportHours != nil && *transportHours < 0:
		return Recommendation{}, fmt.Errorf("%w: transport duration must not be negative", models.ErrInvalidInput)
	}
	if _, err := models.ParseSeason(string(season)); err != nil {
		return Recommendation{}, err
	}

	base := c.BaseDensity(avgWeightKg)
	adjusted := base
	if season == models.SeasonSummer {
		adjusted *= 1 - summerReduction
	}
	reduction := c.TransportReduction(transportHours)
	adjusted *= 1 - reduction

	recommended := int(math.Floor(adjusted*area + floorEpsilon))
	if recommended < 1 {
		recommended = 1
	}
	minBirds := int(math.Floor(float64(recommended)*(1-rangeSpread) + floorEpsilon))
	if minBirds < 1 {
		minBirds = 1
	}
	maxBirds := int(math.Ceil(float64(recommended)*(1+rangeSpread) - floorEpsilon))

	return Recommendation{
		Recommended:        recommended,
		Min:                minBirds,
		Max:                maxBirds,
		FloorAreaM2:        area,
		AvgBirdWeightKg:    avgWeightKg,
		BaseDensity:        base,
		AdjustedDensity:    adjusted,
		Season:             season,
		TransportReduction: reduction,
	}, nil
}

// Distribute splits targetBirds into crates filled at the recommended density
// plus one odd crate for the remainder, bounded by the crates available.
func Distribute(rec Recommendation, crateTypeID string, transportHours *float64, availableCrates, targetBirds int) (models.DensityPlan, error) {
	switch {
	case availableCrates <= 0:
		return models.DensityPlan{}, fmt.Errorf("%w: available crates must be positive", models.ErrInvalidInput)
	case targetBirds <= 0:
		return models.DensityPlan{}, fmt.Errorf("%w: target birds must be positive", models.ErrInvalidInput)
	case rec.Recommended <= 0:
		return models.DensityPlan{}, fmt.Errorf("%w: recommendation has no density", models.ErrInvalidInput)
	}

	plan := models.DensityPlan{
		CrateTypeID:            crateTypeID,
		Season:                 rec.Season,
		TransportDurationHours: transportHours,
		StandardDensity:        rec.Recommended,
		AvailableCrates:        availableCrates,
	}

	standard := targetBirds / rec.Recommended
	remainder := targetBirds % rec.Recommended
	if standard >= availableCrates {
		plan.StandardCrates = availableCrates
		plan.PlannedTotalBirds = availableCrates * rec.Recommended
		return plan, nil
	}

	plan.StandardCrates = standard
	if remainder > 0 {
		plan.OddCrates = 1
		plan.OddDensity = remainder
	}
	plan.PlannedTotalBirds = plan.StandardCrates*plan.StandardDensity + plan.OddCrates*plan.OddDensity
	return plan, nil
}
