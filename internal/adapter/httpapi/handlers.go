package httpapi

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/SangramKhandagale/Road-Accident-Prediction-Model/internal/domain"
)

const maxBatchLocations = 50

// --- request types ---

// Form clients submit numbers and booleans as strings, so the numeric and
// boolean fields accept both JSON representations.

type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		// Tolerate decimal strings like "60.0".
		fl, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return fmt.Errorf("invalid integer value %q", s)
		}
		n = int(fl)
	}
	*f = flexInt(n)
	return nil
}

type flexBool bool

func (f *flexBool) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	switch strings.ToLower(s) {
	case "true", "yes", "1":
		*f = true
	case "false", "no", "0", "", "null":
		*f = false
	default:
		return fmt.Errorf("invalid boolean value %q", s)
	}
	return nil
}

type predictRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Accuracy  string   `json:"accuracy"`

	// Older clients send lat/lon. The long names win when both are present.
	LegacyLat *float64 `json:"lat"`
	LegacyLon *float64 `json:"lon"`
}

func (r predictRequest) coords() (lat, lon *float64) {
	lat, lon = r.Latitude, r.Longitude
	if lat == nil {
		lat = r.LegacyLat
	}
	if lon == nil {
		lon = r.LegacyLon
	}
	return lat, lon
}

type locationRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Accuracy  string   `json:"accuracy"`
}

type comprehensiveRequest struct {
	Location  string   `json:"location"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`

	// GPS metadata attached by the form client after a location detection.
	// Auxiliary: a typed location takes precedence over these.
	GPSLatitude  *float64 `json:"gps_latitude"`
	GPSLongitude *float64 `json:"gps_longitude"`

	VehicleType     string    `json:"vehicle_type"`
	DriverAge       *flexInt  `json:"driver_age"`
	Experience      *flexInt  `json:"driving_experience"`
	LicenseValid    string    `json:"license_valid"`
	Seatbelt        string    `json:"seatbelt_usage"`
	Weather         string    `json:"weather"`
	RoadSurface     string    `json:"road_surface"`
	Visibility      string    `json:"visibility"`
	LightCondition  string    `json:"light_condition"`
	RoadType        string    `json:"road_type"`
	RoadDesign      string    `json:"road_design"`
	TrafficVolume   string    `json:"traffic_volume"`
	SpeedLimit      *flexInt  `json:"speed_limit"`
	CurrentSpeed    *flexInt  `json:"current_speed"`
	TimeOfDay       string    `json:"time_of_day"`
	IsWeekend       *flexBool `json:"is_weekend"`
	AreaType        string    `json:"area_type"`
	Overtaking      string    `json:"overtaking"`
	Alcohol         string    `json:"alcohol_consumption"`
	PhoneUsage      string    `json:"phone_usage"`
	AccidentHistory *flexInt  `json:"accident_history"`

	// Short names some clients use for the same fields. The long names win
	// when both are present.
	ExperienceAlias *flexInt `json:"experience"`
	SeatbeltAlias   string   `json:"seatbelt"`
	AlcoholAlias    string   `json:"alcohol"`
}

// coords picks the assessment coordinates: explicit latitude/longitude when
// present, the detection's gps_ pair otherwise.
func (r comprehensiveRequest) coords() (lat, lon *float64) {
	if r.Latitude != nil && r.Longitude != nil {
		return r.Latitude, r.Longitude
	}
	return r.GPSLatitude, r.GPSLongitude
}

type batchRequest struct {
	Locations []predictRequest `json:"locations"`
}

// --- response types ---

type predictionResponse struct {
	Success           bool                 `json:"success"`
	PredictedSeverity string               `json:"predicted_severity"`
	RiskLevel         string               `json:"risk_level"`
	Confidence        float64              `json:"confidence"`
	Probabilities     domain.Probabilities `json:"probabilities"`
	Color             string               `json:"color"`
	Location          *domain.Coordinates  `json:"location,omitempty"`
	LocationName      string               `json:"location_name"`
	AreaType          string               `json:"area_type,omitempty"`
	Timestamp         string               `json:"timestamp"`
	RiskScore         float64              `json:"risk_score"`
	SeverityCode      int                  `json:"severity_code"`
	Recommendations   []string             `json:"recommendations"`
	RiskFactors       []string             `json:"risk_factors"`
	FeaturesAnalyzed  int                  `json:"features_analyzed"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type locationResponse struct {
	Success bool `json:"success"`
	domain.LocationResolution
}

// --- handlers ---

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.clientError(w, "predict", "invalid request body")
		return
	}
	lat, lon := req.coords()
	if lat == nil || lon == nil {
		s.clientError(w, "predict", "latitude and longitude are required")
		return
	}

	coords := domain.Coordinates{Lat: *lat, Lon: *lon}
	if coords.IsZero() {
		s.clientError(w, "predict", "invalid coordinates")
		return
	}

	res, err := s.resolver.Resolve(r.Context(), coords, req.Accuracy)
	if err != nil {
		s.clientError(w, "predict", err.Error())
		return
	}

	cond := domain.DefaultConditions(domain.Now(), res.AreaType)
	assessment, err := s.assessor.Assess(res.Location, cond)
	if err != nil {
		s.serverError(w, "predict", err)
		return
	}

	s.recordSuccess("predict", assessment, coords)
	writeJSON(w, http.StatusOK, buildPredictionResponse(assessment, res, &coords))
}

func (s *Server) handlePredictComprehensive(w http.ResponseWriter, r *http.Request) {
	var req comprehensiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.clientError(w, "predict_comprehensive", "invalid request body")
		return
	}

	res, coords, err := s.resolveComprehensive(r, req)
	if err != nil {
		s.clientError(w, "predict_comprehensive", err.Error())
		return
	}

	cond := mergeConditions(req, res.AreaType)
	assessment, err := s.assessor.Assess(res.Location, cond)
	if err != nil {
		s.serverError(w, "predict_comprehensive", err)
		return
	}

	var recordCoords domain.Coordinates
	if coords != nil {
		recordCoords = *coords
	}
	s.recordSuccess("predict_comprehensive", assessment, recordCoords)
	writeJSON(w, http.StatusOK, buildPredictionResponse(assessment, res, coords))
}

// resolveComprehensive picks the assessment location for the comprehensive
// endpoint: a typed location wins over GPS metadata, then coordinates, then
// the service default.
func (s *Server) resolveComprehensive(r *http.Request, req comprehensiveRequest) (domain.LocationResolution, *domain.Coordinates, error) {
	if req.Location != "" {
		areaType := req.AreaType
		if areaType == "" {
			areaType = s.resolver.AreaTypeForName(r.Context(), req.Location)
		}
		res := domain.LocationResolution{
			Location: req.Location,
			AreaType: areaType,
			Method:   "Manual",
			Accuracy: "High",
		}
		if lat, lon := req.coords(); lat != nil && lon != nil {
			coords := domain.Coordinates{Lat: *lat, Lon: *lon}
			if !coords.IsZero() {
				res.Coordinates = coords
				return res, &coords, nil
			}
		}
		return res, nil, nil
	}

	if lat, lon := req.coords(); lat != nil && lon != nil {
		coords := domain.Coordinates{Lat: *lat, Lon: *lon}
		if coords.IsZero() {
			return domain.LocationResolution{}, nil, fmt.Errorf("invalid coordinates")
		}
		res, err := s.resolver.Resolve(r.Context(), coords, "")
		if err != nil {
			return domain.LocationResolution{}, nil, err
		}
		return res, &coords, nil
	}

	return s.resolver.Default(), nil, nil
}

func (s *Server) handleBatchPredict(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.clientError(w, "batch_predict", "invalid request body")
		return
	}
	if len(req.Locations) == 0 {
		s.clientError(w, "batch_predict", "locations list is empty")
		return
	}
	if len(req.Locations) > maxBatchLocations {
		s.clientError(w, "batch_predict", fmt.Sprintf("too many locations (max %d)", maxBatchLocations))
		return
	}

	results := make([]any, 0, len(req.Locations))
	for _, loc := range req.Locations {
		results = append(results, s.assessOne(r, loc))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"count":   len(results),
		"results": results,
	})
}

// assessOne scores a single batch entry. Per-entry failures come back as an
// error object in the results list rather than failing the whole batch.
func (s *Server) assessOne(r *http.Request, loc predictRequest) any {
	lat, lon := loc.coords()
	if lat == nil || lon == nil {
		return errorResponse{Error: "latitude and longitude are required"}
	}
	coords := domain.Coordinates{Lat: *lat, Lon: *lon}
	if coords.IsZero() {
		return errorResponse{Error: "invalid coordinates"}
	}

	res, err := s.resolver.Resolve(r.Context(), coords, loc.Accuracy)
	if err != nil {
		return errorResponse{Error: err.Error()}
	}

	cond := domain.DefaultConditions(domain.Now(), res.AreaType)
	assessment, err := s.assessor.Assess(res.Location, cond)
	if err != nil {
		s.logger.Error("batch assessment failed", "location", res.Location, "error", err)
		return errorResponse{Error: "prediction failed"}
	}

	s.recordSuccess("batch_predict", assessment, coords)
	return buildPredictionResponse(assessment, res, &coords)
}

// handleGetLocation resolves the caller's position: GPS coordinates when
// supplied, the client IP otherwise, and the default location as last resort.
func (s *Server) handleGetLocation(w http.ResponseWriter, r *http.Request) {
	var req locationRequest
	// The body is optional; decode errors just mean "no usable coordinates".
	_ = json.NewDecoder(r.Body).Decode(&req)

	if req.Latitude != nil && req.Longitude != nil {
		coords := domain.Coordinates{Lat: *req.Latitude, Lon: *req.Longitude}
		if !coords.IsZero() {
			res, err := s.resolver.Resolve(r.Context(), coords, req.Accuracy)
			if err == nil {
				writeJSON(w, http.StatusOK, locationResponse{Success: true, LocationResolution: res})
				return
			}
			s.logger.Warn("gps resolution failed, falling back", "error", err)
		}
	}

	if ip := clientIP(r); ip != "" {
		res := s.resolver.FromIP(ip)
		writeJSON(w, http.StatusOK, locationResponse{Success: true, LocationResolution: res})
		return
	}

	writeJSON(w, http.StatusOK, locationResponse{Success: true, LocationResolution: s.resolver.Default()})
}

func (s *Server) handleAPIHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": domain.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleModelInfo(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"model_type":        "weighted heuristic ensemble",
		"features_analyzed": 21,
		"severity_classes":  []string{"Low", "Medium", "High"},
		"confidence_range":  []float64{0.6, 0.95},
	})
}

// handleWeatherInfo reports inferred environmental conditions for the form's
// location so clients can pre-fill weather-dependent fields.
func (s *Server) handleWeatherInfo(w http.ResponseWriter, r *http.Request) {
	location := r.URL.Query().Get("location")
	if location == "" {
		location = "Mumbai"
	}

	now := domain.Now()
	info := domain.WeatherAt(now, location)
	writeJSON(w, http.StatusOK, map[string]any{
		"success":         true,
		"weather":         info.Weather,
		"road_surface":    info.RoadSurface,
		"visibility":      info.Visibility,
		"light_condition": info.LightCondition,
		"temperature":     info.Temperature,
		"humidity":        info.Humidity,
		"last_updated":    now.UTC().Format(time.RFC3339),
		"data_source":     "Environmental Analysis System",
	})
}

func (s *Server) handleRiskFactors(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"vehicle_type":    []string{"Car", "Bike", "Truck", "Bus", "Auto-rickshaw"},
		"weather":         []string{"Clear", "Rainy", "Foggy", "Snowy", "Stormy"},
		"road_surface":    []string{"Dry", "Wet", "Icy", "Muddy"},
		"visibility":      []string{"high", "medium", "low"},
		"light_condition": []string{"Daylight", "Night_with_lights", "Night_without_lights"},
		"road_type":       []string{"Highway", "City_Road", "Rural_Road"},
		"road_design":     []string{"Straight", "Curved", "Junction", "Roundabout"},
		"traffic_volume":  []string{"Low", "Medium", "High"},
		"time_of_day":     []string{"Morning", "Afternoon", "Evening", "Night"},
		"area_type":       []string{"Urban", "Suburban", "Rural"},
	})
}

// --- helpers ---

func (s *Server) clientError(w http.ResponseWriter, endpoint, msg string) {
	s.metrics.PredictionsTotal.WithLabelValues(endpoint, "client_error").Inc()
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

func (s *Server) serverError(w http.ResponseWriter, endpoint string, err error) {
	s.logger.Error("assessment failed", "endpoint", endpoint, "error", err)
	s.metrics.PredictionsTotal.WithLabelValues(endpoint, "server_error").Inc()
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "prediction failed"})
}

func (s *Server) recordSuccess(endpoint string, a domain.Assessment, coords domain.Coordinates) {
	s.metrics.PredictionsTotal.WithLabelValues(endpoint, "success").Inc()
	s.metrics.RiskLevels.WithLabelValues(a.Severity).Inc()
	if s.recorder != nil {
		s.recorder.Record(domain.NewAuditRecord(endpoint, a, coords))
	}
}

func buildPredictionResponse(a domain.Assessment, res domain.LocationResolution, coords *domain.Coordinates) predictionResponse {
	return predictionResponse{
		Success:           true,
		PredictedSeverity: a.RiskLabel,
		RiskLevel:         a.Severity,
		Confidence:        a.Confidence,
		Probabilities:     a.Probabilities,
		Color:             a.Color,
		Location:          coords,
		LocationName:      res.Location,
		AreaType:          res.AreaType,
		Timestamp:         a.Timestamp.UTC().Format(time.RFC3339),
		RiskScore:         a.RiskScore,
		SeverityCode:      a.SeverityCode,
		Recommendations:   a.Recommendations,
		RiskFactors:       a.RiskFactors,
		FeaturesAnalyzed:  a.FeaturesAnalyzed,
	}
}

// mergeConditions overlays the request's form fields onto the comprehensive
// baseline. Unset fields keep their defaults.
func mergeConditions(req comprehensiveRequest, areaType string) domain.Conditions {
	cond := domain.ComprehensiveDefaults()

	setString(&cond.VehicleType, req.VehicleType)
	setString(&cond.LicenseValid, req.LicenseValid)
	setString(&cond.Seatbelt, req.SeatbeltAlias)
	setString(&cond.Seatbelt, req.Seatbelt)
	setString(&cond.Weather, req.Weather)
	setString(&cond.RoadSurface, req.RoadSurface)
	setString(&cond.Visibility, req.Visibility)
	setString(&cond.LightCondition, req.LightCondition)
	setString(&cond.RoadType, req.RoadType)
	setString(&cond.RoadDesign, req.RoadDesign)
	setString(&cond.TrafficVolume, req.TrafficVolume)
	setString(&cond.TimeOfDay, req.TimeOfDay)
	setString(&cond.Overtaking, req.Overtaking)
	setString(&cond.Alcohol, req.AlcoholAlias)
	setString(&cond.Alcohol, req.Alcohol)
	setString(&cond.PhoneUsage, req.PhoneUsage)

	setInt(&cond.DriverAge, req.DriverAge)
	setInt(&cond.Experience, req.ExperienceAlias)
	setInt(&cond.Experience, req.Experience)
	setInt(&cond.SpeedLimit, req.SpeedLimit)
	setInt(&cond.CurrentSpeed, req.CurrentSpeed)
	setInt(&cond.AccidentHistory, req.AccidentHistory)

	if req.IsWeekend != nil {
		cond.IsWeekend = bool(*req.IsWeekend)
	}
	if areaType != "" {
		cond.AreaType = areaType
	}
	return cond
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v *flexInt) {
	if v != nil {
		*dst = int(*v)
	}
}

// clientIP extracts the caller address, preferring X-Forwarded-For when a
// proxy sits in front of the service.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
