// Package projectionEngine fits a least-squares line through a closing-price
// series and extrapolates it a few days ahead. This is a naive trend model,
// not a forecasting system: no seasonality, no confidence intervals.
package projectionEngine

import (
	"errors"
	"time"

	"github.com/KotFed0t/stock_analyser/internal/model"
)

var (
	ErrInsufficientData = errors.New("projection needs at least 2 points")
	ErrUnsortedSeries   = errors.New("series must be chronologically ascending without duplicate dates")
	ErrInvalidHorizon   = errors.New("horizon must be positive")
)

// Fit is the least-squares line close = Slope*dayIndex + Intercept, where
// dayIndex is the 0-based position of each point in the input series.
// Calendar gaps between points are ignored: the index advances by one per
// point regardless of weekends or holidays.
type Fit struct {
	Slope     float64
	Intercept float64
}

// Predict extrapolates the fitted line over indices n..n+horizon-1.
func (f Fit) Predict(lastDate time.Time, n, horizon int) []model.PredictionPoint {
	points := make([]model.PredictionPoint, 0, horizon)
	for i := 0; i < horizon; i++ {
		points = append(points, model.PredictionPoint{
			// output dates advance in raw calendar days after the last
			// input date, not trading days
			Date:  lastDate.AddDate(0, 0, i+1),
			Close: f.Slope*float64(n+i) + f.Intercept,
		})
	}
	return points
}

// FitSeries fits the line over the series. The series must hold at least two
// points and be strictly ascending by date; unsorted input is rejected rather
// than sorted, since the gateway returns chronological candles and anything
// else means a caller bug.
func FitSeries(series []model.PredictionPoint) (Fit, error) {
	if len(series) < 2 {
		return Fit{}, ErrInsufficientData
	}

	for i := 1; i < len(series); i++ {
		if !series[i].Date.After(series[i-1].Date) {
			return Fit{}, ErrUnsortedSeries
		}
	}

	// closed-form single-variable OLS over the day index
	var sumX, sumY, sumXY, sumXX float64
	for i, p := range series {
		x := float64(i)
		sumX += x
		sumY += p.Close
		sumXY += x * p.Close
		sumXX += x * x
	}

	n := float64(len(series))
	slope := (n*sumXY - sumX*sumY) / (n*sumXX - sumX*sumX)
	intercept := (sumY - slope*sumX) / n

	return Fit{Slope: slope, Intercept: intercept}, nil
}

// Project fits the series and returns horizon predicted closes dated on
// consecutive calendar days after the last input date.
func Project(series []model.PredictionPoint, horizon int) (Fit, []model.PredictionPoint, error) {
	if horizon < 1 {
		return Fit{}, nil, ErrInvalidHorizon
	}

	fit, err := FitSeries(series)
	if err != nil {
		return Fit{}, nil, err
	}

	lastDate := series[len(series)-1].Date

	return fit, fit.Predict(lastDate, len(series), horizon), nil
}
