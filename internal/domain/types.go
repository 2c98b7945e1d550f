package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"time"
)

// Coordinates is a WGS-84 latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Validate rejects non-finite values and out-of-range coordinates.
func (c Coordinates) Validate() error {
	if math.IsNaN(c.Lat) || math.IsInf(c.Lat, 0) || math.IsNaN(c.Lon) || math.IsInf(c.Lon, 0) {
		return fmt.Errorf("coordinates must be finite numbers")
	}
	if c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("latitude %v out of range [-90, 90]", c.Lat)
	}
	if c.Lon < -180 || c.Lon > 180 {
		return fmt.Errorf("longitude %v out of range [-180, 180]", c.Lon)
	}
	return nil
}

// IsZero reports whether both components are exactly zero, the sentinel the
// API treats as "no coordinates supplied".
func (c Coordinates) IsZero() bool {
	return c.Lat == 0 && c.Lon == 0
}

// Conditions describes the driving context evaluated by the risk engine.
type Conditions struct {
	VehicleType     string
	DriverAge       int
	Experience      int // years of driving experience
	LicenseValid    string
	Seatbelt        string
	Weather         string
	RoadSurface     string
	Visibility      string
	LightCondition  string
	RoadType        string
	RoadDesign      string
	TrafficVolume   string
	SpeedLimit      int // km/h
	CurrentSpeed    int // km/h
	TimeOfDay       string
	IsWeekend       bool
	AreaType        string
	Overtaking      string
	Alcohol         string
	PhoneUsage      string
	AccidentHistory int // prior accidents in the area
}

// Probabilities is the three-class severity distribution. Components sum to
// 1.0 within rounding (each is rounded to three decimals).
type Probabilities struct {
	Slight  float64 `json:"slight"`
	Serious float64 `json:"serious"`
	Fatal   float64 `json:"fatal"`
}

// Assessment is the risk engine output for one location and condition set.
type Assessment struct {
	Location         string
	Severity         string // "Low", "Medium", "High"
	SeverityCode     int    // 0, 1, 2
	RiskLabel        string // "Low Risk", "Medium Risk", "High Risk"
	Confidence       float64
	RiskScore        float64 // 0-100
	Probabilities    Probabilities
	Color            string // presentation hint for the severity band
	Recommendations  []string
	RiskFactors      []string
	FeaturesAnalyzed int
	Timestamp        time.Time
}

// LocationResolution is a display-ready place description for a coordinate
// pair, produced by the resolution service.
type LocationResolution struct {
	Location    string      `json:"location"`
	Coordinates Coordinates `json:"coordinates"`
	AreaType    string      `json:"area_type"`
	Method      string      `json:"method"`   // "GPS", "IP Geolocation", "Manual", "Default"
	Accuracy    string      `json:"accuracy"` // "High", "Medium", "Low"
}

// AuditRecord summarizes a completed assessment for the audit trail.
type AuditRecord struct {
	ID          string      `json:"id"`
	Endpoint    string      `json:"endpoint"`
	Location    string      `json:"location"`
	Coordinates Coordinates `json:"coordinates,omitempty"`
	RiskLevel   string      `json:"risk_level"`
	RiskScore   float64     `json:"risk_score"`
	Confidence  float64     `json:"confidence"`
	PredictedAt time.Time   `json:"predicted_at"`
}

// NewAuditRecord derives an audit record from an assessment. The ID is a
// deterministic hash of the record's key fields, so replaying the same
// assessment produces the same ID.
func NewAuditRecord(endpoint string, a Assessment, coords Coordinates) AuditRecord {
	return AuditRecord{
		ID:          auditID(a.Location, coords, a.Timestamp),
		Endpoint:    endpoint,
		Location:    a.Location,
		Coordinates: coords,
		RiskLevel:   a.Severity,
		RiskScore:   a.RiskScore,
		Confidence:  a.Confidence,
		PredictedAt: a.Timestamp,
	}
}

func auditID(location string, coords Coordinates, at time.Time) string {
	input := fmt.Sprintf("%s|%.4f|%.4f|%s", location, coords.Lat, coords.Lon, at.Format(time.RFC3339Nano))
	hash := sha256.Sum256([]byte(input))
	return "risk-" + hex.EncodeToString(hash[:8])
}
