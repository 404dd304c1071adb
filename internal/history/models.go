package history

import "time"

// Session is a completed ruck session as stored in Postgres.
type Session struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	Status          string    `json:"status"`
	UserWeightKg    float64   `json:"user_weight_kg"`
	RuckWeightKg    float64   `json:"ruck_weight_kg"`
	StartedAt       time.Time `json:"started_at"`
	CompletedAt     time.Time `json:"completed_at"`
	DurationSeconds int64     `json:"duration_seconds"`
	DistanceKm      float64   `json:"distance_km"`
	ElevationGainM  float64   `json:"elevation_gain_m"`
	ElevationLossM  float64   `json:"elevation_loss_m"`
	CaloriesBurned  float64   `json:"calories_burned"`
	AvgPaceSecPerKm float64   `json:"average_pace_sec_km"`
	EndReason       string    `json:"end_reason"`
}
