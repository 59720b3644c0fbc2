package growth

import (
	"math"

	"github.com/mamadbah2/broiler/internal/domain/models"
	"github.com/mamadbah2/broiler/internal/service/shrinkage"
)

const (
	uniformityTolerance = 0.10
	minUniformitySample = 3
	catchDayGraceDays   = 14
)

// PerformanceBand classifies the deviation from the breed benchmark.
type PerformanceBand string

const (
	BandAhead       PerformanceBand = "ahead"
	BandOnTrack     PerformanceBand = "on_track"
	BandBehind      PerformanceBand = "behind"
	BandCritical    PerformanceBand = "critical"
	BandUnavailable PerformanceBand = "unavailable"
)

// EfficiencyIndexFunc combines livability (%), average daily gain (g/day) and FCR into one score.
type EfficiencyIndexFunc func(livabilityPct, adgGrams, fcr float64) float64

// EuropeanEfficiencyIndex scores livability × ADG / FCR × 0.1, rounded to one decimal.
// With ADG measured from placement this equals the European Production Efficiency Factor.
func EuropeanEfficiencyIndex(livabilityPct, adgGrams, fcr float64) float64 {
	return math.Round(livabilityPct*adgGrams/fcr*0.1*10) / 10
}

// Analysis extends Metrics with benchmark and projection results.
type Analysis struct {
	Metrics
	ADGGrams               models.Metric   `json:"adg_g_per_day"`
	UniformityPercent      models.Metric   `json:"uniformity_percent"`
	ProjectedFinalWeightKg models.Metric   `json:"projected_final_weight_kg"`
	Livability             float64         `json:"livability"`
	EfficiencyIndex        models.Metric   `json:"efficiency_index"`
	BenchmarkWeightKg      models.Metric   `json:"benchmark_weight_kg"`
	DeviationPercent       models.Metric   `json:"deviation_percent"`
	Band                   PerformanceBand `json:"band"`
	TargetCatchingWeightKg models.Metric   `json:"target_catching_weight_kg"`
	ProjectedCatchDay      models.Metric   `json:"projected_catch_day"`
}

// Analyzer runs the advanced growth analysis.
type Analyzer struct {
	calc       *Calculator
	planner    *shrinkage.Planner
	efficiency EfficiencyIndexFunc
}

// Option customises an Analyzer.
type Option func(*Analyzer)

// WithEfficiencyIndex swaps the efficiency index formula.
func WithEfficiencyIndex(fn EfficiencyIndexFunc) Option {
	return func(a *Analyzer) {
		if fn != nil {
			a.efficiency = fn
		}
	}
}

// NewAnalyzer wires an analyzer. A nil planner falls back to the default shrinkage fraction.
func NewAnalyzer(calc *Calculator, planner *shrinkage.Planner, opts ...Option) *Analyzer {
	if calc == nil {
		calc = NewCalculator()
	}
	if planner == nil {
		planner = shrinkage.NewDefaultPlanner()
	}
	a := &Analyzer{calc: calc, planner: planner, efficiency: EuropeanEfficiencyIndex}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Calculator exposes the underlying metrics calculator.
func (a *Analyzer) Calculator() *Calculator {
	return a.calc
}

// Analyze computes the full growth analysis for a flock against a breed curve.
func (a *Analyzer) Analyze(flock models.Flock, records []models.DailyRecord, curve models.BenchmarkCurve) (Analysis, error) {
	base, err := a.calc.Compute(flock, records)
	if err != nil {
		return Analysis{}, err
	}
	sorted, err := prepareRecords(records)
	if err != nil {
		return Analysis{}, err
	}
	points := weighings(sorted)

	out := Analysis{
		Metrics:                base,
		ADGGrams:               AverageDailyGain(sorted),
		UniformityPercent:      latestUniformity(sorted),
		ProjectedFinalWeightKg: models.Unavailable("average daily gain unavailable"),
		Livability:             100 - base.MortalityRate,
		BenchmarkWeightKg:      models.Unavailable("no weighed daily record"),
		DeviationPercent:       models.Unavailable("no weighed daily record"),
		Band:                   BandUnavailable,
		TargetCatchingWeightKg: a.planner.PlanFlock(flock).TargetCatchingWeightKg,
		ProjectedCatchDay:      models.Unavailable("average daily gain unavailable"),
	}
	out.EfficiencyIndex = a.efficiencyIndex(out.Livability, out.ADGGrams, base.FCR)

	if len(points) == 0 {
		return out, nil
	}
	latest := points[len(points)-1]

	if bench, ok := curve.WeightAt(latest.day); ok {
		out.BenchmarkWeightKg = models.Available(bench)
		dev := Deviation(latest.kg, bench)
		out.DeviationPercent = models.Available(dev)
		out.Band = Classify(dev)
	} else {
		out.BenchmarkWeightKg = models.Unavailable("benchmark curve does not cover the weighed day")
		out.DeviationPercent = out.BenchmarkWeightKg
	}

	adg, ok := out.ADGGrams.Value()
	if !ok {
		return out, nil
	}
	out.ProjectedFinalWeightKg = projectFinalWeight(latest, adg, flock.GrowingPeriodDays)

	if target, ok := out.TargetCatchingWeightKg.Value(); ok {
		out.ProjectedCatchDay = ProjectCatchDay(latest.day, latest.kg, target, adg, flock.GrowingPeriodDays)
	} else {
		out.ProjectedCatchDay = models.Unavailable("no target catching weight")
	}
	return out, nil
}

func (a *Analyzer) efficiencyIndex(livability float64, adg, fcr models.Metric) models.Metric {
	adgValue, ok := adg.Value()
	if !ok {
		return models.Unavailable("average daily gain unavailable")
	}
	fcrValue, ok := fcr.Value()
	if !ok || fcrValue <= 0 {
		return models.Unavailable("feed conversion ratio unavailable")
	}
	return models.Available(a.efficiency(livability, adgValue, fcrValue))
}

// AverageDailyGain returns grams per bird per day between the first and last
// weighed records. Records must be sorted by day.
func AverageDailyGain(sorted []models.DailyRecord) models.Metric {
	points := weighings(sorted)
	if len(points) < 2 {
		return models.Unavailable("fewer than two weighed daily records")
	}
	first, last := points[0], points[len(points)-1]
	span := last.day - first.day
	if span <= 0 {
		return models.Unavailable("weighed records span no days")
	}
	return models.Available((last.kg - first.kg) * 1000 / float64(span))
}

// UniformityIndex is the share of samples within ±10% of the sample mean.
func UniformityIndex(samples []float64) models.Metric {
	valid := make([]float64, 0, len(samples))
	for _, s := range samples {
		if s > 0 {
			valid = append(valid, s)
		}
	}
	if len(valid) < minUniformitySample {
		return models.Unavailable("fewer than 3 weight samples")
	}

	var sum float64
	for _, s := range valid {
		sum += s
	}
	mean := sum / float64(len(valid))
	band := mean * uniformityTolerance

	within := 0
	for _, s := range valid {
		if math.Abs(s-mean) <= band {
			within++
		}
	}
	return models.Available(float64(within) / float64(len(valid)) * 100)
}

func latestUniformity(sorted []models.DailyRecord) models.Metric {
	for i := len(sorted) - 1; i >= 0; i-- {
		if m := UniformityIndex(sorted[i].WeightSamples); m.IsAvailable() {
			return m
		}
	}
	return models.Unavailable("fewer than 3 weight samples")
}

// Deviation is the percentage difference from the benchmark, rounded to two decimals.
func Deviation(actualKg, benchmarkKg float64) float64 {
	raw := (actualKg - benchmarkKg) / benchmarkKg * 100
	return math.Round(raw*100) / 100
}

// Classify bands a deviation; boundary values belong to the better band.
func Classify(deviation float64) PerformanceBand {
	switch {
	case deviation >= 5:
		return BandAhead
	case deviation >= -5:
		return BandOnTrack
	case deviation >= -10:
		return BandBehind
	default:
		return BandCritical
	}
}

func projectFinalWeight(latest weighing, adgGrams float64, growingPeriodDays int) models.Metric {
	remaining := growingPeriodDays - latest.day
	if remaining <= 0 {
		return models.Available(latest.kg)
	}
	projected := latest.kg + adgGrams/1000*float64(remaining)
	if projected < latest.kg {
		projected = latest.kg
	}
	return models.Available(projected)
}

// ProjectCatchDay estimates the day the target catching weight is reached.
// Projections outside [latestDay, growingPeriodDays+14] are not reliable and come back unavailable.
func ProjectCatchDay(latestDay int, latestKg, targetKg, adgGrams float64, growingPeriodDays int) models.Metric {
	if adgGrams <= 0 {
		return models.Unavailable("no positive daily gain")
	}
	day := math.Round(float64(latestDay) + (targetKg-latestKg)/(adgGrams/1000))
	if day < float64(latestDay) || day > float64(growingPeriodDays+catchDayGraceDays) {
		return models.Unavailable("no reliable projection")
	}
	return models.Available(day)
}
