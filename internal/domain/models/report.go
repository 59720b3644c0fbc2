package models

import "time"

// HarvestRequest is emitted when a catch session completes and is stored as a harvest record.
type HarvestRequest struct {
	SessionID                string    `bson:"session_id" json:"session_id"`
	FlockID                  string    `bson:"flock_id" json:"flock_id"`
	CatchDate                time.Time `bson:"catch_date" json:"catch_date"`
	WeighingMethod           string    `bson:"weighing_method" json:"weighing_method"`
	TotalBirds               int       `bson:"total_birds" json:"total_birds"`
	TotalNetWeightKg         float64   `bson:"total_net_weight_kg" json:"total_net_weight_kg"`
	AverageBirdWeightKg      float64   `bson:"average_bird_weight_kg" json:"average_bird_weight_kg"`
	EstimatedDeliveredWeight float64   `bson:"estimated_delivered_weight_kg" json:"estimated_delivered_weight_kg"`
	Notes                    string    `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt                time.Time `bson:"created_at" json:"created_at"`
}

// PerformanceDigest summarises a flock's growth performance for daily messaging.
type PerformanceDigest struct {
	FlockID          string    `json:"flock_id"`
	Date             time.Time `json:"date"`
	AgeInDays        int       `json:"age_in_days"`
	DaysRemaining    int       `json:"days_remaining"`
	CurrentWeight    Metric    `json:"current_weight_kg"`
	DeviationPercent Metric    `json:"deviation_percent"`
	Band             string    `json:"band"`
	FCR              Metric    `json:"fcr"`
	MortalityRate    float64   `json:"mortality_rate"`
	ProjectedCatch   Metric    `json:"projected_catch_day"`
}
