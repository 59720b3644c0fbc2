package feed

import (
	"fmt"

	"github.com/mamadbah2/broiler/internal/domain/models"
)

const (
	waterRatioLow  = 1.8
	waterRatioHigh = 2.2
)

// WaterClass is the display classification of a water:feed ratio.
type WaterClass string

const (
	WaterLow         WaterClass = "low"
	WaterNormal      WaterClass = "normal"
	WaterHigh        WaterClass = "high"
	WaterUnavailable WaterClass = "unavailable"
)

// PhaseEfficiency is the feed conversion of one ration phase.
type PhaseEfficiency struct {
	Phase          models.FeedType `json:"phase"`
	FirstDay       int             `json:"first_day"`
	LastDay        *int            `json:"last_day,omitempty"`
	RecordCount    int             `json:"record_count"`
	FeedConsumedKg float64         `json:"feed_consumed_kg"`
	WeightGainKg   float64         `json:"weight_gain_kg"`
	FCR            models.Metric   `json:"fcr"`
	Incomplete     bool            `json:"incomplete"`
}

// DailyPoint is one entry of the daily feed series.
type DailyPoint struct {
	DayNumber       int             `json:"day_number"`
	Phase           models.FeedType `json:"phase"`
	RecordedFeed    models.FeedType `json:"recorded_feed_type,omitempty"`
	FeedPerBirdG    models.Metric   `json:"feed_per_bird_g"`
	WaterFeedRatio  models.Metric   `json:"water_feed_ratio"`
	WaterFeedStatus WaterClass      `json:"water_feed_status"`
}

// Report is the feed efficiency breakdown of a flock.
type Report struct {
	FlockID string            `json:"flock_id"`
	Phases  []PhaseEfficiency `json:"phases"`
	Daily   []DailyPoint      `json:"daily"`
}

// Analyzer computes per-phase FCR and daily feed series.
type Analyzer struct{}

// NewAnalyzer returns a feed efficiency analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Analyze groups records into the flock's configured phase ranges.
func (a *Analyzer) Analyze(flock models.Flock, records []models.DailyRecord) (Report, error) {
	if err := flock.Validate(); err != nil {
		return Report{}, err
	}
	sorted := make([]models.DailyRecord, len(records))
	copy(sorted, records)
	models.SortRecords(sorted)
	for i, r := range sorted {
		if err := r.Validate(); err != nil {
			return Report{}, err
		}
		if i > 0 && sorted[i-1].DayNumber == r.DayNumber {
			return Report{}, fmt.Errorf("%w: duplicate daily record for day %d", models.ErrInvalidInput, r.DayNumber)
		}
	}

	plan := flock.PhaseRanges()
	report := Report{
		FlockID: flock.ID,
		Phases:  phaseEfficiencies(flock, plan, sorted),
		Daily:   make([]DailyPoint, 0, len(sorted)),
	}
	for _, r := range sorted {
		report.Daily = append(report.Daily, dailyPoint(plan, r, flock.CurrentCount))
	}
	return report, nil
}

func phaseEfficiencies(flock models.Flock, plan models.PhasePlan, sorted []models.DailyRecord) []PhaseEfficiency {
	starterEnd, growerEnd := plan.StarterEndDay, plan.GrowerEndDay
	phases := []PhaseEfficiency{
		{Phase: models.FeedStarter, FirstDay: 0, LastDay: &starterEnd},
		{Phase: models.FeedGrower, FirstDay: starterEnd + 1, LastDay: &growerEnd},
		{Phase: models.FeedFinisher, FirstDay: growerEnd + 1},
	}

	entryKg := flock.StartWeightKg()
	for i := range phases {
		p := &phases[i]
		exitKg, weighed := entryKg, false
		for _, r := range sorted {
			if plan.PhaseFor(r.DayNumber) != p.Phase {
				continue
			}
			p.RecordCount++
			p.FeedConsumedKg += r.FeedConsumedKg
			if kg, ok := r.AverageWeight.Kg(); ok {
				if p.Phase == models.FeedStarter && r.DayNumber == 0 {
					entryKg = kg
				}
				exitKg, weighed = kg, true
			}
		}

		p.WeightGainKg = (exitKg - entryKg) * float64(flock.CurrentCount)
		switch {
		case !weighed:
			p.Incomplete = true
			p.FCR = models.Unavailable("no weighed record in phase")
		case p.WeightGainKg <= 0:
			p.Incomplete = true
			p.FCR = models.Unavailable("no weight gain in phase")
		default:
			p.FCR = models.Available(p.FeedConsumedKg / p.WeightGainKg)
		}

		if weighed {
			entryKg = exitKg
		}
	}
	return phases
}

func dailyPoint(plan models.PhasePlan, r models.DailyRecord, birds int) DailyPoint {
	point := DailyPoint{
		DayNumber:       r.DayNumber,
		Phase:           plan.PhaseFor(r.DayNumber),
		RecordedFeed:    r.FeedType,
		FeedPerBirdG:    models.Unavailable("no live birds"),
		WaterFeedRatio:  models.Unavailable("water not recorded"),
		WaterFeedStatus: WaterUnavailable,
	}
	if birds > 0 {
		point.FeedPerBirdG = models.Available(r.FeedConsumedKg * 1000 / float64(birds))
	}

	switch {
	case r.WaterConsumedLiters == nil:
	case r.FeedConsumedKg <= 0:
		point.WaterFeedRatio = models.Unavailable("no feed consumed")
	default:
		ratio := *r.WaterConsumedLiters / r.FeedConsumedKg
		point.WaterFeedRatio = models.Available(ratio)
		point.WaterFeedStatus = ClassifyWaterRatio(ratio)
	}
	return point
}

// ClassifyWaterRatio labels a water:feed ratio against the 1.8–2.2 normal range.
func ClassifyWaterRatio(ratio float64) WaterClass {
	switch {
	case ratio < waterRatioLow:
		return WaterLow
	case ratio > waterRatioHigh:
		return WaterHigh
	default:
		return WaterNormal
	}
}
