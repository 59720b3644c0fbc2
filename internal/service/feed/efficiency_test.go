package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/broiler/internal/domain/models"
)

func liters(v float64) *float64 { return &v }

func feedFlock() models.Flock {
	return models.Flock{
		ID:                "flock-feed",
		PlacementDate:     time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		GrowingPeriodDays: 42,
		InitialCount:      110,
		CurrentCount:      100,
		ChickWeightKg:     0.04,
		Status:            models.FlockActive,
	}
}

func feedRecords() []models.DailyRecord {
	return []models.DailyRecord{
		{DayNumber: 24, FeedConsumedKg: 100, FeedType: models.FeedGrower, AverageWeight: models.WeightOf(1.2), WaterConsumedLiters: liters(250)},
		{DayNumber: 0, FeedConsumedKg: 1, FeedType: models.FeedStarter, AverageWeight: models.WeightOf(0.04)},
		{DayNumber: 5, FeedConsumedKg: 20, FeedType: models.FeedStarter},
		{DayNumber: 10, FeedConsumedKg: 30, FeedType: models.FeedStarter, AverageWeight: models.WeightOf(0.3), WaterConsumedLiters: liters(60)},
		{DayNumber: 15, FeedConsumedKg: 50, FeedType: models.FeedGrower, WaterConsumedLiters: liters(80)},
	}
}

func TestAnalyze_PhaseFCR(t *testing.T) {
	report, err := NewAnalyzer().Analyze(feedFlock(), feedRecords())
	require.NoError(t, err)
	require.Len(t, report.Phases, 3)

	starter := report.Phases[0]
	assert.Equal(t, models.FeedStarter, starter.Phase)
	assert.Equal(t, 3, starter.RecordCount)
	assert.InDelta(t, 51.0, starter.FeedConsumedKg, 1e-9)
	fcr, ok := starter.FCR.Value()
	require.True(t, ok)
	assert.InDelta(t, 51.0/26.0, fcr, 1e-9)
	assert.False(t, starter.Incomplete)

	grower := report.Phases[1]
	fcr, ok = grower.FCR.Value()
	require.True(t, ok)
	assert.InDelta(t, 150.0/90.0, fcr, 1e-9)

	finisher := report.Phases[2]
	assert.True(t, finisher.Incomplete)
	assert.False(t, finisher.FCR.IsAvailable())
	assert.Nil(t, finisher.LastDay)
}

func TestAnalyze_NegativeGainFlagsIncomplete(t *testing.T) {
	records := []models.DailyRecord{
		{DayNumber: 10, FeedConsumedKg: 30, AverageWeight: models.WeightOf(0.3)},
		{DayNumber: 12, FeedConsumedKg: 30, AverageWeight: models.WeightOf(0.25)},
	}

	report, err := NewAnalyzer().Analyze(feedFlock(), records)
	require.NoError(t, err)

	grower := report.Phases[1]
	assert.True(t, grower.Incomplete)
	assert.False(t, grower.FCR.IsAvailable())
}

func TestAnalyze_CustomPhaseRanges(t *testing.T) {
	flock := feedFlock()
	flock.Phases = models.PhasePlan{StarterEndDay: 4, GrowerEndDay: 12}

	report, err := NewAnalyzer().Analyze(flock, feedRecords())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Phases[0].RecordCount)
	assert.Equal(t, 2, report.Phases[1].RecordCount)
	assert.Equal(t, 2, report.Phases[2].RecordCount)
	assert.Equal(t, models.FeedFinisher, report.Daily[4].Phase)
	assert.Equal(t, models.FeedGrower, report.Daily[4].RecordedFeed)
}

func TestAnalyze_DailySeries(t *testing.T) {
	report, err := NewAnalyzer().Analyze(feedFlock(), feedRecords())
	require.NoError(t, err)
	require.Len(t, report.Daily, 5)

	day5 := report.Daily[1]
	assert.Equal(t, 5, day5.DayNumber)
	perBird, ok := day5.FeedPerBirdG.Value()
	require.True(t, ok)
	assert.InDelta(t, 200.0, perBird, 1e-9)
	assert.Equal(t, WaterUnavailable, day5.WaterFeedStatus)

	day10 := report.Daily[2]
	ratio, ok := day10.WaterFeedRatio.Value()
	require.True(t, ok)
	assert.InDelta(t, 2.0, ratio, 1e-9)
	assert.Equal(t, WaterNormal, day10.WaterFeedStatus)

	assert.Equal(t, WaterLow, report.Daily[3].WaterFeedStatus)
	assert.Equal(t, WaterHigh, report.Daily[4].WaterFeedStatus)
}

func TestAnalyze_WaterWithoutFeedIsUnavailable(t *testing.T) {
	records := []models.DailyRecord{{DayNumber: 1, WaterConsumedLiters: liters(10)}}

	report, err := NewAnalyzer().Analyze(feedFlock(), records)
	require.NoError(t, err)
	assert.False(t, report.Daily[0].WaterFeedRatio.IsAvailable())
	assert.Equal(t, WaterUnavailable, report.Daily[0].WaterFeedStatus)
}

func TestClassifyWaterRatio_Boundaries(t *testing.T) {
	assert.Equal(t, WaterNormal, ClassifyWaterRatio(1.8))
	assert.Equal(t, WaterNormal, ClassifyWaterRatio(2.2))
	assert.Equal(t, WaterLow, ClassifyWaterRatio(1.79))
	assert.Equal(t, WaterHigh, ClassifyWaterRatio(2.21))
}
