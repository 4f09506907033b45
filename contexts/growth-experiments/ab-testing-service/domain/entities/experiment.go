package entities

import "time"

// Variant is one arm of a named experiment. Weight is a relative share;
// well-formed experiments sum to 100.
type Variant struct {
	VariantID string
	Weight    int
}

// Assignment pins a visitor to one variant of one experiment. Created once
// and immutable thereafter for that visitor.
type Assignment struct {
	VisitorID  string
	TestName   string
	VariantID  string
	AssignedAt time.Time
}

// Conversion is one recorded conversion signal. Unlimited per assignment.
type Conversion struct {
	ConversionID string
	VisitorID    string
	TestName     string
	VariantID    string
	Label        string
	OccurredAt   time.Time
}

// VariantStats is the per-variant slice of an experiment readout. Views count
// assignments; the interval is a Wilson score interval on the conversion rate.
type VariantStats struct {
	VariantID   string
	Views       int
	Conversions int
	Rate        float64
	CILower     float64
	CIUpper     float64
}

// ExperimentResult is the derived readout for one experiment, recomputed on
// demand.
type ExperimentResult struct {
	TestName         string
	Variants         []VariantStats
	LeadingVariantID string
	ConfidenceLevel  float64
	Confident        bool
	ComputedAt       time.Time
}
