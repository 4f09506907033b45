package http

import "time"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type VariantPayload struct {
	VariantID string `json:"variantId"`
	Weight    int    `json:"weight"`
}

type AssignRequest struct {
	VisitorID string           `json:"visitorId"`
	TestName  string           `json:"testName"`
	Variants  []VariantPayload `json:"variants"`
}

type AssignmentResponse struct {
	VisitorID  string    `json:"visitorId"`
	TestName   string    `json:"testName"`
	VariantID  string    `json:"variantId"`
	AssignedAt time.Time `json:"assignedAt"`
}

type TrackConversionRequest struct {
	VisitorID string `json:"visitorId"`
	TestName  string `json:"testName"`
	VariantID string `json:"variantId"`
	Label     string `json:"label"`
}

type VariantStatsView struct {
	VariantID   string  `json:"variantId"`
	Views       int     `json:"views"`
	Conversions int     `json:"conversions"`
	Rate        float64 `json:"rate"`
	CILower     float64 `json:"ciLower"`
	CIUpper     float64 `json:"ciUpper"`
}

type ExperimentResultResponse struct {
	TestName         string             `json:"testName"`
	Variants         []VariantStatsView `json:"variants"`
	LeadingVariantID string             `json:"leadingVariantId"`
	ConfidenceLevel  float64            `json:"confidenceLevel"`
	Confident        bool               `json:"confident"`
	ComputedAt       time.Time          `json:"computedAt"`
}
