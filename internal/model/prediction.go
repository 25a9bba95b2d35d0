package model

import "time"

type PredictionPoint struct {
	Date  time.Time
	Close float64
}

type StockPrediction struct {
	Symbol    string
	Horizon   int
	Slope     float64
	Intercept float64
	Points    []PredictionPoint
}
