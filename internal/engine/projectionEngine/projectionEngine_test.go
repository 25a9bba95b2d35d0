package projectionEngine

import (
	"testing"
	"time"

	"github.com/KotFed0t/stock_analyser/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(yyyy int, mm time.Month, dd int) time.Time {
	return time.Date(yyyy, mm, dd, 0, 0, 0, 0, time.UTC)
}

func TestFitSeriesTwoPoints(t *testing.T) {
	series := []model.PredictionPoint{
		{Date: day(2024, 1, 1), Close: 100},
		{Date: day(2024, 1, 2), Close: 110},
	}

	fit, predictions, err := Project(series, 1)
	require.NoError(t, err)

	assert.InDelta(t, 10, fit.Slope, 1e-9)
	assert.InDelta(t, 100, fit.Intercept, 1e-9)

	require.Len(t, predictions, 1)
	assert.InDelta(t, 120, predictions[0].Close, 1e-9)
	assert.Equal(t, day(2024, 1, 3), predictions[0].Date)
}

func TestFlatSeriesZeroSlope(t *testing.T) {
	series := make([]model.PredictionPoint, 0, 5)
	for i := 0; i < 5; i++ {
		series = append(series, model.PredictionPoint{Date: day(2024, 3, 1+i), Close: 50})
	}

	fit, predictions, err := Project(series, 7)
	require.NoError(t, err)

	assert.InDelta(t, 0, fit.Slope, 1e-9)
	require.Len(t, predictions, 7)
	for _, p := range predictions {
		assert.InDelta(t, 50, p.Close, 1e-9)
	}
}

func TestProjectDeterministic(t *testing.T) {
	series := []model.PredictionPoint{
		{Date: day(2024, 5, 1), Close: 101.5},
		{Date: day(2024, 5, 2), Close: 99.25},
		{Date: day(2024, 5, 3), Close: 103.75},
		{Date: day(2024, 5, 6), Close: 102},
	}

	fit1, p1, err1 := Project(series, 7)
	fit2, p2, err2 := Project(series, 7)

	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, fit1, fit2)
	assert.Equal(t, p1, p2)
}

func TestProjectInsufficientData(t *testing.T) {
	_, _, err := Project(nil, 7)
	assert.ErrorIs(t, err, ErrInsufficientData)

	_, _, err = Project([]model.PredictionPoint{{Date: day(2024, 1, 1), Close: 10}}, 7)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestProjectRejectsUnsortedSeries(t *testing.T) {
	unsorted := []model.PredictionPoint{
		{Date: day(2024, 1, 2), Close: 10},
		{Date: day(2024, 1, 1), Close: 20},
	}
	_, _, err := Project(unsorted, 1)
	assert.ErrorIs(t, err, ErrUnsortedSeries)

	duplicated := []model.PredictionPoint{
		{Date: day(2024, 1, 1), Close: 10},
		{Date: day(2024, 1, 1), Close: 20},
	}
	_, _, err = Project(duplicated, 1)
	assert.ErrorIs(t, err, ErrUnsortedSeries)
}

func TestProjectRejectsInvalidHorizon(t *testing.T) {
	series := []model.PredictionPoint{
		{Date: day(2024, 1, 1), Close: 10},
		{Date: day(2024, 1, 2), Close: 20},
	}
	_, _, err := Project(series, 0)
	assert.ErrorIs(t, err, ErrInvalidHorizon)
}

// Trading-day gaps in the input do not stretch the day index, but the
// predicted dates always advance in calendar days after the last input date.
func TestProjectCalendarDatesIgnoreInputGaps(t *testing.T) {
	series := []model.PredictionPoint{
		{Date: day(2024, 6, 3), Close: 10},  // Mon
		{Date: day(2024, 6, 4), Close: 20},  // Tue
		{Date: day(2024, 6, 7), Close: 30},  // Fri, gap before it
		{Date: day(2024, 6, 10), Close: 40}, // Mon, weekend gap
	}

	_, predictions, err := Project(series, 3)
	require.NoError(t, err)

	require.Len(t, predictions, 3)
	assert.Equal(t, day(2024, 6, 11), predictions[0].Date)
	assert.Equal(t, day(2024, 6, 12), predictions[1].Date)
	assert.Equal(t, day(2024, 6, 13), predictions[2].Date)

	// day index 0..3 with closes 10..40 is exactly linear: slope 10
	assert.InDelta(t, 50, predictions[0].Close, 1e-9)
	assert.InDelta(t, 60, predictions[1].Close, 1e-9)
	assert.InDelta(t, 70, predictions[2].Close, 1e-9)
}
