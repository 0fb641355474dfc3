package model

import "time"

// Prediction is the per-request classification result; never persisted
type Prediction struct {
	IsFake      bool    `json:"is_fake"`
	Confidence  float64 `json:"confidence"` // percentage of the predicted class, 0-100
	Explanation string  `json:"explanation"`
}

// ModelInfo describes the loaded artifact pair
type ModelInfo struct {
	RunID     string    `json:"run_id"`
	Features  int       `json:"features"`
	CreatedAt time.Time `json:"created_at"`
}
