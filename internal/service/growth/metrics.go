package growth

import (
	"fmt"
	"time"

	"github.com/mamadbah2/broiler/internal/domain/models"
)

// Metrics is the basic growth snapshot of a flock.
type Metrics struct {
	FlockID             string        `json:"flock_id"`
	AgeInDays           int           `json:"age_in_days"`
	DaysRemaining       int           `json:"days_remaining"`
	CurrentWeightKg     models.Metric `json:"current_weight_kg"`
	LatestWeighedDay    models.Metric `json:"latest_weighed_day"`
	TotalFeedKg         float64       `json:"total_feed_consumed_kg"`
	CumulativeMortality int           `json:"cumulative_mortality"`
	MortalityRate       float64       `json:"mortality_rate"`
	FCR                 models.Metric `json:"fcr"`
}

// Calculator derives Metrics from a flock and its daily records.
type Calculator struct {
	now func() time.Time
}

// NewCalculator builds a calculator using the wall clock.
func NewCalculator() *Calculator {
	return &Calculator{now: time.Now}
}

// NewCalculatorAt builds a calculator with a fixed clock.
func NewCalculatorAt(now func() time.Time) *Calculator {
	if now == nil {
		now = time.Now
	}
	return &Calculator{now: now}
}

// Today returns the calculator's current time.
func (c *Calculator) Today() time.Time {
	return c.now()
}

// Compute derives age, weight, feed and mortality metrics.
func (c *Calculator) Compute(flock models.Flock, records []models.DailyRecord) (Metrics, error) {
	if err := flock.Validate(); err != nil {
		return Metrics{}, err
	}
	sorted, err := prepareRecords(records)
	if err != nil {
		return Metrics{}, err
	}

	age := AgeInDays(flock.PlacementDate, c.now())
	remaining := flock.GrowingPeriodDays - age
	if remaining < 0 {
		remaining = 0
	}

	m := Metrics{
		FlockID:          flock.ID,
		AgeInDays:        age,
		DaysRemaining:    remaining,
		CurrentWeightKg:  models.Unavailable("no weighed daily record"),
		LatestWeighedDay: models.Unavailable("no weighed daily record"),
		FCR:              models.Unavailable("no weighed daily record"),
	}

	for _, r := range sorted {
		m.TotalFeedKg += r.FeedConsumedKg
		m.CumulativeMortality += r.Mortality
	}
	m.MortalityRate = float64(m.CumulativeMortality) / float64(flock.InitialCount) * 100

	points := weighings(sorted)
	if len(points) == 0 {
		return m, nil
	}
	latest := points[len(points)-1]
	m.CurrentWeightKg = models.Available(latest.kg)
	m.LatestWeighedDay = models.Available(float64(latest.day))
	m.FCR = feedConversion(m.TotalFeedKg, startWeight(flock, points), latest.kg, flock.CurrentCount)

	return m, nil
}

// AgeInDays is the number of whole UTC calendar days since placement (placement day = 0).
func AgeInDays(placement, today time.Time) int {
	days := int(dateOnly(today).Sub(dateOnly(placement)).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

func dateOnly(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

type weighing struct {
	day int
	kg  float64
}

// weighings returns the records carrying a genuine average weight, in day order.
func weighings(sorted []models.DailyRecord) []weighing {
	out := make([]weighing, 0, len(sorted))
	for _, r := range sorted {
		if kg, ok := r.AverageWeight.Kg(); ok {
			out = append(out, weighing{day: r.DayNumber, kg: kg})
		}
	}
	return out
}

func startWeight(flock models.Flock, points []weighing) float64 {
	if len(points) > 0 && points[0].day == 0 {
		return points[0].kg
	}
	return flock.StartWeightKg()
}

func feedConversion(feedKg, startKg, currentKg float64, birds int) models.Metric {
	gained := (currentKg - startKg) * float64(birds)
	if birds <= 0 || gained <= 0 {
		return models.Unavailable("no weight gain recorded yet")
	}
	return models.Available(feedKg / gained)
}

// prepareRecords validates and copies records in day order, rejecting duplicate days.
func prepareRecords(records []models.DailyRecord) ([]models.DailyRecord, error) {
	sorted := make([]models.DailyRecord, len(records))
	copy(sorted, records)
	models.SortRecords(sorted)

	for i, r := range sorted {
		if err := r.Validate(); err != nil {
			return nil, err
		}
		if i > 0 && sorted[i-1].DayNumber == r.DayNumber {
			return nil, fmt.Errorf("%w: duplicate daily record for day %d", models.ErrInvalidInput, r.DayNumber)
		}
	}
	return sorted, nil
}
