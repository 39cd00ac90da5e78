package server

import (
	"errors"
	"net/http"

	"WellnessTips_V1.0/internal/utility"
	"WellnessTips_V1.0/internal/wellness"
	"github.com/labstack/echo/v4"
)

// TipsRequest is the POST /tips body. Required fields are pointers so a
// missing value can be told apart from zero.
type TipsRequest struct {
	Sleep    *float64 `json:"sleep"`
	Work     *float64 `json:"work"`
	Screen   *float64 `json:"screen"`
	Score    *float64 `json:"score"`
	Category *string  `json:"category"`

	HeartRate *int    `json:"heartRate"`
	Steps     *int    `json:"steps"`
	Timestamp *string `json:"timestamp"`
	Urgency   *string `json:"urgency"`
}

// toAssessment reports missing required fields, then range and category errors.
func (r TipsRequest) toAssessment() (wellness.Assessment, map[string]string) {
	missing := map[string]string{}
	required := map[string]bool{
		"sleep":    r.Sleep != nil,
		"work":     r.Work != nil,
		"screen":   r.Screen != nil,
		"score":    r.Score != nil,
		"category": r.Category != nil,
	}
	for field, present := range required {
		if !present {
			missing[field] = "field required"
		}
	}
	if len(missing) > 0 {
		return wellness.Assessment{}, missing
	}

	a := wellness.Assessment{
		Sleep:     *r.Sleep,
		Work:      *r.Work,
		Screen:    *r.Screen,
		Score:     *r.Score,
		Category:  *r.Category,
		HeartRate: r.HeartRate,
		Steps:     r.Steps,
		Timestamp: r.Timestamp,
		Urgency:   r.Urgency,
	}

	var verr *wellness.ValidationError
	if err := a.Validate(); errors.As(err, &verr) {
		return wellness.Assessment{}, verr.Fields
	}
	return a, nil
}

// GenerateTipsHandler handles POST /tips
func (s *Server) GenerateTipsHandler(c echo.Context) error {
	ctx := c.Request().Context()
	logger := utility.GetLogger(c)

	var req TipsRequest
	if err := c.Bind(&req); err != nil {
		logger.Warn().Err(err).Msg("Failed to bind tips request body")
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}

	assessment, details := req.toAssessment()
	if details != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":   "Invalid assessment",
			"details": details,
		})
	}

	logger.Info().Str("risk_level", assessment.Category).Msg("Generating tips for user")

	result, err := s.engine.GetTips(ctx, assessment)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to generate wellness tips")
		return c.JSON(http.StatusInternalServerError, internalErrorBody())
	}

	return c.JSON(http.StatusOK, result)
}
