package domain

import (
	"crypto/md5"
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strings"
)

// Condition weight tables. Values are additive risk contributions on a 0-1
// scale per factor; the sum is normalized by riskDivisor before banding.
var (
	vehicleTypeRisk = map[string]float64{
		"Car": 0.2, "Bike": 0.7, "Truck": 0.5, "Bus": 0.4, "Auto-rickshaw": 0.6,
	}
	weatherRisk = map[string]float64{
		"Clear": 0.1, "Rainy": 0.6, "Foggy": 0.8, "Snowy": 0.9, "Stormy": 1.0,
	}
	roadSurfaceRisk = map[string]float64{
		"Dry": 0.1, "Wet": 0.5, "Icy": 0.9, "Muddy": 0.7,
	}
	visibilityRisk = map[string]float64{
		"high": 0.1, "medium": 0.4, "low": 0.8,
	}
	lightConditionRisk = map[string]float64{
		"Daylight": 0.1, "Night_with_lights": 0.4, "Night_without_lights": 0.7,
	}
	roadTypeRisk = map[string]float64{
		"Highway": 0.6, "City_Road": 0.3, "Rural_Road": 0.5,
	}
	roadDesignRisk = map[string]float64{
		"Straight": 0.2, "Curved": 0.5, "Junction": 0.8, "Roundabout": 0.4,
	}
	trafficVolumeRisk = map[string]float64{
		"Low": 0.2, "Medium": 0.4, "High": 0.7,
	}
	timeOfDayRisk = map[string]float64{
		"Morning": 0.3, "Afternoon": 0.2, "Evening": 0.5, "Night": 0.6,
	}
	areaTypeRisk = map[string]float64{
		"Urban": 0.4, "Suburban": 0.3, "Rural": 0.5,
	}

	// Base geographic risk by city keyword, matched case-insensitively
	// against the resolved location string. Ordered so locations matching
	// multiple keywords score deterministically.
	cityRiskBase = []cityRisk{
		{"mumbai", 0.6}, {"delhi", 0.7}, {"bangalore", 0.5}, {"chennai", 0.5},
		{"kolkata", 0.6}, {"hyderabad", 0.5}, {"pune", 0.5}, {"ahmedabad", 0.6},
	}

	urbanKeywords = []string{"city", "metro", "downtown", "central", "commercial"}
	ruralKeywords = []string{"village", "countryside", "rural", "outskirts"}
)

const (
	// defaultFactorRisk is charged for condition values outside the known
	// weight tables, keeping unrecognized inputs at a moderate contribution.
	defaultFactorRisk = 0.3

	// speedRiskPerKmh is the per-km/h contribution for exceeding the limit.
	speedRiskPerKmh = 0.01

	// accidentHistoryRisk is the contribution per prior accident in the area.
	accidentHistoryRisk = 0.1

	// riskDivisor normalizes the additive weight sum onto a 0-1 scale.
	riskDivisor = 8.0

	// featureCount is the number of condition features evaluated per request.
	featureCount = 21
)

// Engine scores accident risk from a resolved location and driving conditions.
type Engine struct {
	logger *slog.Logger
}

// NewEngine creates a risk scoring engine.
func NewEngine(logger *slog.Logger) *Engine {
	return &Engine{logger: logger}
}

// Assess computes the risk assessment for one location and condition set.
// Identical inputs produce identical output: the jitter RNG is seeded from
// the input itself.
func (e *Engine) Assess(location string, cond Conditions) (Assessment, error) {
	rng := rand.New(rand.NewSource(conditionSeed(location, cond)))

	total := locationBaseRisk(location)
	total += lookupRisk(vehicleTypeRisk, cond.VehicleType)
	total += driverAgeRisk(cond.DriverAge)
	total += experienceRisk(cond.Experience)
	if cond.LicenseValid == "no" {
		total += 0.8
	}
	if cond.Seatbelt == "no" {
		total += 0.6
	}
	total += lookupRisk(weatherRisk, cond.Weather)
	total += lookupRisk(roadSurfaceRisk, cond.RoadSurface)
	total += lookupRisk(visibilityRisk, cond.Visibility)
	total += lookupRisk(lightConditionRisk, cond.LightCondition)
	total += lookupRisk(roadTypeRisk, cond.RoadType)
	total += lookupRisk(roadDesignRisk, cond.RoadDesign)
	total += lookupRisk(trafficVolumeRisk, cond.TrafficVolume)
	total += overspeedRisk(cond.CurrentSpeed, cond.SpeedLimit)
	total += lookupRisk(timeOfDayRisk, cond.TimeOfDay)
	if cond.IsWeekend {
		total += 0.5
	} else {
		total += 0.3
	}
	total += lookupRisk(areaTypeRisk, cond.AreaType)
	if cond.Overtaking == "yes" {
		total += 0.7
	}
	if cond.Alcohol == "yes" {
		total += 1.0
	}
	if cond.PhoneUsage == "yes" {
		total += 0.8
	}
	total += float64(cond.AccidentHistory) * accidentHistoryRisk

	normalized := clamp(total/riskDivisor, 0.05, 0.95)
	final := math.Min(normalized*uniform(rng, 0.95, 1.05), 0.95)

	severity, code, label, color := classifySeverity(final)
	probs := severityProbabilities(rng, code, final)
	confidence := round3(clamp(final+uniform(rng, 0.1, 0.2), 0.6, 0.95))

	e.logger.Debug("risk assessment computed",
		"location", location,
		"severity", severity,
		"risk_score", round1(final*100),
		"confidence", confidence,
	)

	return Assessment{
		Location:         location,
		Severity:         severity,
		SeverityCode:     code,
		RiskLabel:        label,
		Confidence:       confidence,
		RiskScore:        round1(final * 100),
		Probabilities:    probs,
		Color:            color,
		Recommendations:  recommendations(cond, code),
		RiskFactors:      riskFactors(cond),
		FeaturesAnalyzed: featureCount,
		Timestamp:        clock.Now(),
	}, nil
}

// conditionSeed derives a deterministic RNG seed from the fields that
// dominate the assessment, so repeated requests are reproducible.
func conditionSeed(location string, c Conditions) int64 {
	s := fmt.Sprintf("%s_%s_%s_%s", location, c.Weather, c.TimeOfDay, c.RoadType)
	sum := md5.Sum([]byte(s))
	return int64(binary.BigEndian.Uint32(sum[:4]))
}

type cityRisk struct {
	keyword string
	risk    float64
}

func locationBaseRisk(location string) float64 {
	lower := strings.ToLower(location)
	for _, c := range cityRiskBase {
		if strings.Contains(lower, c.keyword) {
			return c.risk
		}
	}
	for _, kw := range urbanKeywords {
		if strings.Contains(lower, kw) {
			return 0.5
		}
	}
	for _, kw := range ruralKeywords {
		if strings.Contains(lower, kw) {
			return 0.4
		}
	}
	return 0.45
}

func lookupRisk(table map[string]float64, key string) float64 {
	if v, ok := table[key]; ok {
		return v
	}
	return defaultFactorRisk
}

func driverAgeRisk(age int) float64 {
	switch {
	case age < 25:
		return 0.6
	case age <= 40:
		return 0.2
	case age <= 60:
		return 0.1
	default:
		return 0.4
	}
}

func experienceRisk(years int) float64 {
	switch {
	case years < 2:
		return 0.7
	case years <= 5:
		return 0.4
	case years <= 10:
		return 0.2
	default:
		return 0.1
	}
}

func overspeedRisk(currentSpeed, speedLimit int) float64 {
	if currentSpeed <= speedLimit {
		return 0
	}
	return math.Min(float64(currentSpeed-speedLimit)*speedRiskPerKmh, 1.0)
}

// classifySeverity maps a final score to the severity band, its numeric code,
// user-facing label, and presentation color.
func classifySeverity(score float64) (severity string, code int, label, color string) {
	switch {
	case score < 0.3:
		return "Low", 0, "Low Risk", "#28a745"
	case score < 0.6:
		return "Medium", 1, "Medium Risk", "#ffc107"
	default:
		return "High", 2, "High Risk", "#dc3545"
	}
}

// severityProbabilities generates a three-class distribution concentrated on
// the predicted band and normalized to sum 1.0.
func severityProbabilities(rng *rand.Rand, code int, score float64) Probabilities {
	var low, medium, high float64
	switch code {
	case 0:
		low = score + uniform(rng, 0.4, 0.5)
		medium = (1 - low) * uniform(rng, 0.6, 0.8)
		high = 1 - low - medium
	case 1:
		medium = score + uniform(rng, 0.2, 0.3)
		low = (1 - medium) * uniform(rng, 0.3, 0.6)
		high = 1 - low - medium
	default:
		// Cap the dominant class so the remaining mass stays non-negative
		// for scores near the 0.95 ceiling.
		high = math.Min(score+uniform(rng, 0.1, 0.2), 0.95)
		medium = (1 - high) * uniform(rng, 0.4, 0.7)
		low = 1 - high - medium
	}

	total := low + medium + high
	return Probabilities{
		Slight:  round3(low / total),
		Serious: round3(medium / total),
		Fatal:   round3(high / total),
	}
}

// recommendations produces up to six safety recommendations ordered by the
// conditions that triggered them.
func recommendations(cond Conditions, severityCode int) []string {
	recs := make([]string, 0, 6)

	switch cond.Weather {
	case "Rainy", "Foggy", "Snowy", "Stormy":
		recs = append(recs,
			"Reduce speed due to adverse weather conditions",
			"Increase following distance",
		)
	}
	if cond.CurrentSpeed > cond.SpeedLimit {
		recs = append(recs, fmt.Sprintf("Reduce speed to within the %d km/h limit", cond.SpeedLimit))
	}
	if strings.Contains(cond.LightCondition, "Night") {
		recs = append(recs, "Use headlights and drive cautiously at night")
	}
	if cond.VehicleType == "Bike" {
		recs = append(recs, "Wear a helmet and protective gear")
	}
	if cond.Seatbelt == "no" {
		recs = append(recs, "Always wear a seatbelt")
	}
	if cond.Alcohol == "yes" {
		recs = append(recs, "Never drive under the influence of alcohol")
	}
	if cond.PhoneUsage == "yes" {
		recs = append(recs, "Avoid phone usage while driving")
	}
	if severityCode >= 2 {
		recs = append(recs,
			"Consider postponing travel if possible",
			"Extra caution required under high risk conditions",
		)
	} else if severityCode == 1 {
		recs = append(recs, "Drive with increased attention")
	}

	if len(recs) > 6 {
		recs = recs[:6]
	}
	return recs
}

// riskFactors lists the conditions contributing most to the score.
func riskFactors(cond Conditions) []string {
	factors := make([]string, 0, 8)

	if cond.Weather != "" && cond.Weather != "Clear" {
		factors = append(factors, "Weather: "+cond.Weather)
	}
	if cond.RoadSurface != "" && cond.RoadSurface != "Dry" {
		factors = append(factors, "Road Surface: "+cond.RoadSurface)
	}
	if cond.Visibility != "" && cond.Visibility != "high" {
		factors = append(factors, "Poor Visibility")
	}
	if strings.Contains(cond.LightCondition, "Night") {
		factors = append(factors, "Night Driving")
	}
	if cond.TrafficVolume == "High" {
		factors = append(factors, "Heavy Traffic")
	}
	if cond.CurrentSpeed > cond.SpeedLimit {
		factors = append(factors, "Speeding")
	}
	if cond.RoadDesign == "Junction" || cond.RoadDesign == "Curved" {
		factors = append(factors, "Road Design: "+cond.RoadDesign)
	}
	if cond.DriverAge < 25 {
		factors = append(factors, "Young Driver")
	}
	if cond.Experience < 2 {
		factors = append(factors, "Inexperienced Driver")
	}

	return factors
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
