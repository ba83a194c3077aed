package dto

import (
	"github.com/google/uuid"
)

type AskRequest struct {
	Question string `json:"question" validate:"required,min=2,max=500"`
	Language string `json:"language" validate:"omitempty,oneof=pt en"`
}

type AskResponse struct {
	RequestId         uuid.UUID `json:"request_id"`
	Answer            string    `json:"answer"`
	Confidence        float64   `json:"confidence"`
	Route             string    `json:"route"`
	CacheHit          bool      `json:"cache_hit"`
	ValidationOutcome string    `json:"validation_outcome,omitempty"`
	FallbackReason    string    `json:"fallback_reason,omitempty"`
	Suggestion        string    `json:"suggestion,omitempty"`
	LatencyMs         int64     `json:"latency_ms"`
}

type FeedbackRequest struct {
	RequestId uuid.UUID `json:"request_id" validate:"required"`
	Rating    int       `json:"rating" validate:"required,min=1,max=5"`
	Comment   string    `json:"comment" validate:"omitempty,max=1000"`
}

type HealthResponse struct {
	Status        string `json:"status"`
	SchemaVersion string `json:"schema_version"`
}
