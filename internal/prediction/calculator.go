package prediction

import (
	"errors"
	"math"
	"strconv"
	"time"

	"TankWatch.api/internal/models"
)

// ErrNoSensorData is returned when a prediction is requested before any
// reading set has been ingested.
var ErrNoSensorData = errors.New("no sensor data available")

// Metric weights for the composite health index. They sum to 1.
const (
	WeightTDS       = 0.35
	WeightPH        = 0.25
	WeightTurbidity = 0.40
)

// Cleaning interval bounds, in days.
const (
	MinDays = 1
	MaxDays = 30
)

// Health index thresholds for status classification.
const (
	moderateThreshold = 40.0
	goodThreshold     = 75.0
)

const dateLayout = "2006-01-02"

// TDSHealth maps total dissolved solids (ppm) onto [0,100].
func TDSHealth(tds float64) float64 {
	if tds < 300 {
		return 100
	}
	if tds > 1200 {
		return 0
	}
	return clamp(100 - (tds-300)/(1200-300)*100)
}

// PHHealth is 100 inside the 6.5–8.5 band and loses 50 points per unit of
// deviation from the nearest band edge.
func PHHealth(ph float64) float64 {
	if ph >= 6.5 && ph <= 8.5 {
		return 100
	}
	deviation := math.Min(math.Abs(ph-6.5), math.Abs(ph-8.5))
	return clamp(math.Max(0, 100-(deviation/2)*100))
}

// TurbidityHealth maps turbidity (NTU) onto [0,100].
func TurbidityHealth(turbidity float64) float64 {
	if turbidity < 1 {
		return 100
	}
	if turbidity > 10 {
		return 0
	}
	return clamp(100 - (turbidity-1)/(10-1)*100)
}

// Details computes the three sub-scores of a reading.
func Details(r models.Reading) models.HealthDetails {
	return models.HealthDetails{
		TDSHealth:       TDSHealth(r.TDS),
		PHHealth:        PHHealth(r.PH),
		TurbidityHealth: TurbidityHealth(r.Turbidity),
	}
}

// HealthIndex is the weighted composite of the sub-scores.
func HealthIndex(d models.HealthDetails) float64 {
	return d.TDSHealth*WeightTDS + d.PHHealth*WeightPH + d.TurbidityHealth*WeightTurbidity
}

// DaysToCleaning grows quadratically with the health index, from MinDays at
// 0 to MaxDays at 100. Halves round to even.
func DaysToCleaning(healthIndex float64) int {
	ratio := healthIndex / 100
	return MinDays + int(math.RoundToEven(ratio*ratio*float64(MaxDays-MinDays)))
}

// Classify buckets a health index into a status.
func Classify(healthIndex float64) models.Status {
	switch {
	case healthIndex < moderateThreshold:
		return models.StatusPoor
	case healthIndex < goodThreshold:
		return models.StatusModerate
	default:
		return models.StatusGood
	}
}

// Predict builds the cleaning forecast for one reading relative to today.
// Only the calendar date of today is used.
func Predict(r models.Reading, today time.Time) models.Prediction {
	details := Details(r)
	index := HealthIndex(details)
	days := DaysToCleaning(index)

	y, m, d := today.Date()
	due := time.Date(y, m, d, 0, 0, 0, 0, today.Location()).AddDate(0, 0, days)

	return models.Prediction{
		PredictedDate: due.Format(dateLayout),
		DaysRemaining: days,
		Status:        Classify(index),
		HealthIndex:   round2(index),
		Details: models.HealthDetails{
			TDSHealth:       round2(details.TDSHealth),
			PHHealth:        round2(details.PHHealth),
			TurbidityHealth: round2(details.TurbidityHealth),
		},
	}
}

// PredictSet forecasts both tanks of a reading set.
func PredictSet(set models.TankSet, today time.Time) models.PredictionSet {
	return models.PredictionSet{
		Tank1: Predict(set.Tank1, today),
		Tank2: Predict(set.Tank2, today),
	}
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

// round2 rounds the exact binary value to 2 decimals. Scaling by 100 first
// would itself round and flip values just off a half.
func round2(v float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 2, 64), 64)
	if err != nil {
		return v
	}
	return r
}
