package models

// Status is the coarse water-quality classification of a tank.
type Status string

const (
	StatusGood     Status = "Good"
	StatusModerate Status = "Moderate"
	StatusPoor     Status = "Poor"
)

// HealthDetails are the per-metric sub-scores behind a health index.
type HealthDetails struct {
	TDSHealth       float64 `json:"tds_health"`
	PHHealth        float64 `json:"ph_health"`
	TurbidityHealth float64 `json:"turbidity_health"`
}

// Prediction is the derived cleaning forecast for one tank. It is never stored.
type Prediction struct {
	PredictedDate string        `json:"predicted_date"` // YYYY-MM-DD
	DaysRemaining int           `json:"days_remaining"`
	Status        Status        `json:"status"`
	HealthIndex   float64       `json:"health_index"`
	Details       HealthDetails `json:"details"`
}

type PredictionSet struct {
	Tank1 Prediction `json:"tank1_prediction"`
	Tank2 Prediction `json:"tank2_prediction"`
}

// StatusResponse is the fixed acknowledgment returned by write endpoints.
type StatusResponse struct {
	Status string `json:"status"`
}

// NoSensorDataMessage is reported by the prediction endpoint before the first ingest.
const NoSensorDataMessage = "No sensor data available to make a prediction."

// ErrorResponse carries a domain error in a 200 body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Success is the acknowledgment body shared by every write endpoint.
var Success = StatusResponse{Status: "success"}
