package client

import (
	"fmt"
	"strings"
	"time"
)

// RenderedResult is a display-ready prediction: numbers formatted, severity
// mapped to a style category, probabilities scaled to bar percentages.
type RenderedResult struct {
	Severity       string // "Medium Risk"
	RiskLevel      string // "Medium"
	Category       string // "risk-low", "risk-medium", "risk-high"
	Color          string
	ConfidenceText string // "82.0%"
	RiskScoreText  string // "55.2"
	LocationName   string
	TimestampText  string

	// Probability bar widths in percent.
	SlightBar  float64
	SeriousBar float64
	FatalBar   float64

	Recommendations []string
	RiskFactors     []string
}

// RenderPrediction converts a service prediction into its display form.
func RenderPrediction(res *PredictionResult) RenderedResult {
	return RenderedResult{
		Severity:        res.PredictedSeverity,
		RiskLevel:       res.RiskLevel,
		Category:        "risk-" + strings.ToLower(res.RiskLevel),
		Color:           res.Color,
		ConfidenceText:  fmt.Sprintf("%.1f%%", res.Confidence*100),
		RiskScoreText:   fmt.Sprintf("%.1f", res.RiskScore),
		LocationName:    res.LocationName,
		TimestampText:   formatTimestamp(res.Timestamp),
		SlightBar:       res.Probabilities.Slight * 100,
		SeriousBar:      res.Probabilities.Serious * 100,
		FatalBar:        res.Probabilities.Fatal * 100,
		Recommendations: res.Recommendations,
		RiskFactors:     res.RiskFactors,
	}
}

// formatTimestamp localizes an RFC 3339 timestamp for display. Unparseable
// values pass through unchanged.
func formatTimestamp(ts string) string {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}
	return t.Local().Format("2 Jan 2006 15:04")
}
