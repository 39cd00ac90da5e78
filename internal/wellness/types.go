package wellness

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Risk categories produced by the burnout risk model.
const (
	CategoryLow         = "Low"
	CategoryLowModerate = "Low-Moderate"
	CategoryModerate    = "Moderate"
	CategoryHigh        = "High"
)

// ModelFallback is reported as model_used when the tips come from the templates.
const ModelFallback = "fallback"

const (
	ConfidenceModel    = 0.9
	ConfidenceFallback = 0.7
)

// AllowedCategories lists the recognised risk categories in display order.
var AllowedCategories = []string{CategoryLow, CategoryModerate, CategoryHigh, CategoryLowModerate}

var ErrInvalidAssessment = errors.New("invalid assessment")

// Assessment is a user's daily metrics plus the precomputed burnout risk.
type Assessment struct {
	Sleep    float64 `json:"sleep"`
	Work     float64 `json:"work"`
	Screen   float64 `json:"screen"`
	Score    float64 `json:"score"`
	Category string  `json:"category"`

	HeartRate *int    `json:"heartRate,omitempty"`
	Steps     *int    `json:"steps,omitempty"`
	Timestamp *string `json:"timestamp,omitempty"`
	Urgency   *string `json:"urgency,omitempty"`
}

// TipsResult is the response body of POST /tips.
type TipsResult struct {
	Tips        []string  `json:"tips"`
	GeneratedAt time.Time `json:"generated_at"`
	ModelUsed   string    `json:"model_used"`
	RiskLevel   string    `json:"risk_level"`
	Confidence  float64   `json:"confidence"`
}

// ValidationError carries a message per offending field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "invalid assessment: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalidAssessment }

// IsValidCategory reports whether c is one of the four recognised literals.
func IsValidCategory(c string) bool {
	for _, allowed := range AllowedCategories {
		if c == allowed {
			return true
		}
	}
	return false
}

// Validate checks ranges and the category. It returns a *ValidationError
// listing every offending field, or nil.
func (a Assessment) Validate() error {
	fields := map[string]string{}

	checkRange := func(name string, v, lo, hi float64) {
		if v < lo || v > hi {
			fields[name] = fmt.Sprintf("must be between %g and %g", lo, hi)
		}
	}

	checkRange("sleep", a.Sleep, 0, 24)
	checkRange("work", a.Work, 0, 24)
	checkRange("screen", a.Screen, 0, 24)
	checkRange("score", a.Score, 0, 1)

	if !IsValidCategory(a.Category) {
		fields["category"] = fmt.Sprintf("Category must be one of: %s", strings.Join(AllowedCategories, ", "))
	}
	if a.HeartRate != nil && (*a.HeartRate < 40 || *a.HeartRate > 200) {
		fields["heartRate"] = "must be between 40 and 200"
	}
	if a.Steps != nil && *a.Steps < 0 {
		fields["steps"] = "must be greater than or equal to 0"
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
