package client

import (
	"testing"

	"github.com/SangramKhandagale/Road-Accident-Prediction-Model/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestRenderPrediction(t *testing.T) {
	result := RenderPrediction(&PredictionResult{
		Success:           true,
		PredictedSeverity: "Medium Risk",
		RiskLevel:         "Medium",
		Confidence:        0.82,
		Probabilities:     domain.Probabilities{Slight: 0.3, Serious: 0.5, Fatal: 0.2},
		Color:             "#ffc107",
		LocationName:      "London",
		Timestamp:         "2026-08-23T12:00:00Z",
		RiskScore:         55.25,
		Recommendations:   []string{"Maintain safe following distance"},
		RiskFactors:       []string{"High traffic volume"},
	})

	assert.Equal(t, "Medium Risk", result.Severity)
	assert.Equal(t, "risk-medium", result.Category)
	assert.Equal(t, "82.0%", result.ConfidenceText)
	assert.Equal(t, "55.2", result.RiskScoreText)
	assert.Equal(t, "#ffc107", result.Color)
	assert.Equal(t, "London", result.LocationName)
	assert.Equal(t, 30.0, result.SlightBar)
	assert.Equal(t, 50.0, result.SeriousBar)
	assert.Equal(t, 20.0, result.FatalBar)
	assert.NotEmpty(t, result.TimestampText)
	assert.Len(t, result.Recommendations, 1)
}

func TestRenderPrediction_Categories(t *testing.T) {
	tests := []struct {
		riskLevel string
		category  string
	}{
		{"Low", "risk-low"},
		{"Medium", "risk-medium"},
		{"High", "risk-high"},
	}

	for _, tt := range tests {
		t.Run(tt.riskLevel, func(t *testing.T) {
			result := RenderPrediction(&PredictionResult{RiskLevel: tt.riskLevel})
			assert.Equal(t, tt.category, result.Category)
		})
	}
}

func TestRenderPrediction_ConfidenceFormatting(t *testing.T) {
	tests := []struct {
		confidence float64
		want       string
	}{
		{0.82, "82.0%"},
		{0.95, "95.0%"},
		{0.666, "66.6%"},
		{0.6, "60.0%"},
	}

	for _, tt := range tests {
		result := RenderPrediction(&PredictionResult{Confidence: tt.confidence})
		assert.Equal(t, tt.want, result.ConfidenceText)
	}
}

func TestFormatTimestamp_InvalidPassesThrough(t *testing.T) {
	assert.Equal(t, "not-a-time", formatTimestamp("not-a-time"))
}
