package model

import "time"

// FeedbackSample is a training pair for the statistical classifier.
type FeedbackSample struct {
	CreatedAt   time.Time
	Description string // Normalized narration
	Category    string
	ID          int64
}
