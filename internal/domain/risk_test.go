package domain

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEngine() *Engine {
	return NewEngine(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func benignConditions() Conditions {
	return Conditions{
		VehicleType:    "Car",
		DriverAge:      35,
		Experience:     12,
		LicenseValid:   "yes",
		Seatbelt:       "yes",
		Weather:        "Clear",
		RoadSurface:    "Dry",
		Visibility:     "high",
		LightCondition: "Daylight",
		RoadType:       "City_Road",
		RoadDesign:     "Straight",
		TrafficVolume:  "Low",
		SpeedLimit:     60,
		CurrentSpeed:   50,
		TimeOfDay:      "Afternoon",
		AreaType:       "Suburban",
		Overtaking:     "no",
		Alcohol:        "no",
		PhoneUsage:     "no",
	}
}

func hazardousConditions() Conditions {
	return Conditions{
		VehicleType:     "Bike",
		DriverAge:       19,
		Experience:      1,
		LicenseValid:    "no",
		Seatbelt:        "no",
		Weather:         "Stormy",
		RoadSurface:     "Icy",
		Visibility:      "low",
		LightCondition:  "Night_without_lights",
		RoadType:        "Highway",
		RoadDesign:      "Junction",
		TrafficVolume:   "High",
		SpeedLimit:      60,
		CurrentSpeed:    110,
		TimeOfDay:       "Night",
		IsWeekend:       true,
		AreaType:        "Rural",
		Overtaking:      "yes",
		Alcohol:         "yes",
		PhoneUsage:      "yes",
		AccidentHistory: 4,
	}
}

func TestAssess_Deterministic(t *testing.T) {
	frozen := clockwork.NewFakeClockAt(time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC))
	SetClock(frozen)
	t.Cleanup(func() { SetClock(nil) })

	e := testEngine()
	first, err := e.Assess("Mumbai, Maharashtra", benignConditions())
	require.NoError(t, err)

	second, err := e.Assess("Mumbai, Maharashtra", benignConditions())
	require.NoError(t, err)

	assert.Equal(t, first, second, "identical inputs must reproduce identical output")
}

func TestAssess_ProbabilitiesSumToOne(t *testing.T) {
	e := testEngine()

	tests := []struct {
		name     string
		location string
		cond     Conditions
	}{
		{"benign mumbai", "Mumbai, Maharashtra", benignConditions()},
		{"hazardous delhi", "New Delhi", hazardousConditions()},
		{"unknown location", "Somewhere Else", ComprehensiveDefaults()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := e.Assess(tt.location, tt.cond)
			require.NoError(t, err)

			sum := a.Probabilities.Slight + a.Probabilities.Serious + a.Probabilities.Fatal
			assert.InDelta(t, 1.0, sum, 0.002, "probabilities must sum to 1.0 within rounding")
			assert.GreaterOrEqual(t, a.Probabilities.Slight, 0.0)
			assert.GreaterOrEqual(t, a.Probabilities.Serious, 0.0)
			assert.GreaterOrEqual(t, a.Probabilities.Fatal, 0.0)
		})
	}
}

func TestAssess_HazardousConditionsAreHighRisk(t *testing.T) {
	e := testEngine()

	a, err := e.Assess("New Delhi", hazardousConditions())
	require.NoError(t, err)

	assert.Equal(t, "High", a.Severity)
	assert.Equal(t, 2, a.SeverityCode)
	assert.Equal(t, "High Risk", a.RiskLabel)
	assert.Equal(t, "#dc3545", a.Color)
	assert.GreaterOrEqual(t, a.RiskScore, 60.0)
}

func TestAssess_OutputRanges(t *testing.T) {
	e := testEngine()

	a, err := e.Assess("Goa", benignConditions())
	require.NoError(t, err)

	assert.GreaterOrEqual(t, a.Confidence, 0.6)
	assert.LessOrEqual(t, a.Confidence, 0.95)
	assert.GreaterOrEqual(t, a.RiskScore, 5.0)
	assert.LessOrEqual(t, a.RiskScore, 95.0)
	assert.Equal(t, featureCount, a.FeaturesAnalyzed)
}

func TestAssess_TimestampFromClock(t *testing.T) {
	at := time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(at))
	t.Cleanup(func() { SetClock(nil) })

	a, err := testEngine().Assess("Pune, Maharashtra", benignConditions())
	require.NoError(t, err)
	assert.Equal(t, at, a.Timestamp)
}

func TestClassifySeverity(t *testing.T) {
	tests := []struct {
		score    float64
		severity string
		code     int
		color    string
	}{
		{0.05, "Low", 0, "#28a745"},
		{0.29, "Low", 0, "#28a745"},
		{0.30, "Medium", 1, "#ffc107"},
		{0.59, "Medium", 1, "#ffc107"},
		{0.60, "High", 2, "#dc3545"},
		{0.95, "High", 2, "#dc3545"},
	}

	for _, tt := range tests {
		severity, code, label, color := classifySeverity(tt.score)
		assert.Equal(t, tt.severity, severity, "score %v", tt.score)
		assert.Equal(t, tt.code, code, "score %v", tt.score)
		assert.Equal(t, tt.severity+" Risk", label, "score %v", tt.score)
		assert.Equal(t, tt.color, color, "score %v", tt.score)
	}
}

func TestLocationBaseRisk(t *testing.T) {
	tests := []struct {
		location string
		want     float64
	}{
		{"Mumbai, Maharashtra", 0.6},
		{"New Delhi", 0.7},
		{"Bangalore, Karnataka", 0.5},
		{"Downtown Commercial District", 0.5},
		{"Greenfield Village", 0.4},
		{"Somewhere Else", 0.45},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, locationBaseRisk(tt.location), tt.location)
	}
}

func TestOverspeedRisk(t *testing.T) {
	assert.Equal(t, 0.0, overspeedRisk(50, 60), "under the limit")
	assert.Equal(t, 0.0, overspeedRisk(60, 60), "at the limit")
	assert.InDelta(t, 0.1, overspeedRisk(70, 60), 1e-9, "10 km/h over")
	assert.Equal(t, 1.0, overspeedRisk(300, 60), "capped at 1.0")
}

func TestRecommendations(t *testing.T) {
	cond := hazardousConditions()
	recs := recommendations(cond, 2)

	require.NotEmpty(t, recs)
	assert.LessOrEqual(t, len(recs), 6, "recommendations are capped at six")
	assert.Contains(t, recs, "Reduce speed due to adverse weather conditions")
	assert.Contains(t, recs, "Reduce speed to within the 60 km/h limit")
}

func TestRecommendations_MediumSeverity(t *testing.T) {
	recs := recommendations(benignConditions(), 1)
	assert.Contains(t, recs, "Drive with increased attention")
}

func TestRiskFactors(t *testing.T) {
	factors := riskFactors(hazardousConditions())

	assert.Contains(t, factors, "Weather: Stormy")
	assert.Contains(t, factors, "Road Surface: Icy")
	assert.Contains(t, factors, "Poor Visibility")
	assert.Contains(t, factors, "Night Driving")
	assert.Contains(t, factors, "Heavy Traffic")
	assert.Contains(t, factors, "Speeding")
	assert.Contains(t, factors, "Road Design: Junction")
	assert.Contains(t, factors, "Young Driver")
	assert.Contains(t, factors, "Inexperienced Driver")
}

func TestRiskFactors_BenignConditionsEmpty(t *testing.T) {
	assert.Empty(t, riskFactors(benignConditions()))
}
