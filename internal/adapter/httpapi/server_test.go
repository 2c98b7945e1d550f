package httpapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/SangramKhandagale/Road-Accident-Prediction-Model/internal/adapter/httpapi"
	"github.com/SangramKhandagale/Road-Accident-Prediction-Model/internal/domain"
	"github.com/SangramKhandagale/Road-Accident-Prediction-Model/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockAssessor struct {
	err  error
	last domain.Conditions
}

func (m *mockAssessor) Assess(location string, cond domain.Conditions) (domain.Assessment, error) {
	m.last = cond
	if m.err != nil {
		return domain.Assessment{}, m.err
	}
	return domain.Assessment{
		Location:         location,
		Severity:         "Medium",
		SeverityCode:     1,
		RiskLabel:        "Medium Risk",
		Confidence:       0.82,
		RiskScore:        55.2,
		Probabilities:    domain.Probabilities{Slight: 0.3, Serious: 0.5, Fatal: 0.2},
		Color:            "#ffc107",
		Recommendations:  []string{"Maintain safe following distance"},
		RiskFactors:      []string{"High traffic volume"},
		FeaturesAnalyzed: 21,
		Timestamp:        time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC),
	}, nil
}

type mockResolver struct {
	resolveErr error
	resolved   []domain.Coordinates
}

func (m *mockResolver) Resolve(_ context.Context, coords domain.Coordinates, accuracy string) (domain.LocationResolution, error) {
	if m.resolveErr != nil {
		return domain.LocationResolution{}, m.resolveErr
	}
	m.resolved = append(m.resolved, coords)
	if accuracy == "" {
		accuracy = "High"
	}
	return domain.LocationResolution{
		Location:    "Mumbai, Maharashtra",
		Coordinates: coords,
		AreaType:    "Urban",
		Method:      "GPS",
		Accuracy:    accuracy,
	}, nil
}

func (m *mockResolver) FromIP(_ string) domain.LocationResolution {
	return domain.LocationResolution{
		Location:    "New Delhi",
		Coordinates: domain.Coordinates{Lat: 28.7041, Lon: 77.1025},
		AreaType:    "Urban",
		Method:      "IP Geolocation",
		Accuracy:    "Medium",
	}
}

func (m *mockResolver) Default() domain.LocationResolution {
	return domain.LocationResolution{
		Location:    "Mumbai, Maharashtra",
		Coordinates: domain.Coordinates{Lat: 19.0760, Lon: 72.8777},
		AreaType:    "Urban",
		Method:      "Default",
		Accuracy:    "Medium",
	}
}

func (m *mockResolver) AreaTypeForName(_ context.Context, _ string) string { return "Urban" }

type mockRecorder struct {
	records []domain.AuditRecord
}

func (m *mockRecorder) Record(rec domain.AuditRecord) {
	m.records = append(m.records, rec)
}

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

type testEnv struct {
	srv      *httpapi.Server
	assessor *mockAssessor
	resolver *mockResolver
	recorder *mockRecorder
}

func newTestEnv() *testEnv {
	env := &testEnv{
		assessor: &mockAssessor{},
		resolver: &mockResolver{},
		recorder: &mockRecorder{},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	env.srv = httpapi.NewServer(":0", env.assessor, env.resolver, env.recorder, &mockReadiness{}, logger, observability.NewMetricsForTesting())
	return env
}

func doJSON(t *testing.T, srv *httpapi.Server, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, reader)
	srv.ServeHTTP(rec, req)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &parsed))
	return rec, parsed
}

// --- prediction endpoint tests ---

func TestPredict_Success(t *testing.T) {
	env := newTestEnv()

	rec, body := doJSON(t, env.srv, http.MethodPost, "/api/predict",
		`{"latitude": 19.0760, "longitude": 72.8777}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Medium Risk", body["predicted_severity"])
	assert.Equal(t, "Medium", body["risk_level"])
	assert.Equal(t, 0.82, body["confidence"])
	assert.Equal(t, "#ffc107", body["color"])
	assert.Equal(t, "Mumbai, Maharashtra", body["location_name"])
	assert.Equal(t, "2026-08-23T12:00:00Z", body["timestamp"])

	probs, ok := body["probabilities"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 0.3, probs["slight"])
	assert.Equal(t, 0.5, probs["serious"])
	assert.Equal(t, 0.2, probs["fatal"])

	loc, ok := body["location"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 19.0760, loc["lat"])
	assert.Equal(t, 72.8777, loc["lon"])
}

func TestPredict_RecordsAudit(t *testing.T) {
	env := newTestEnv()

	rec, _ := doJSON(t, env.srv, http.MethodPost, "/api/predict",
		`{"latitude": 19.0760, "longitude": 72.8777}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, env.recorder.records, 1)

	audit := env.recorder.records[0]
	assert.Equal(t, "predict", audit.Endpoint)
	assert.Equal(t, "Medium", audit.RiskLevel)
	assert.Equal(t, "Mumbai, Maharashtra", audit.Location)
	assert.True(t, strings.HasPrefix(audit.ID, "risk-"))
}

func TestPredict_LegacyCoordinateKeys(t *testing.T) {
	env := newTestEnv()

	rec, body := doJSON(t, env.srv, http.MethodPost, "/api/predict",
		`{"lat": 19.0760, "lon": 72.8777}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	require.Len(t, env.resolver.resolved, 1)
	assert.Equal(t, 19.0760, env.resolver.resolved[0].Lat)
}

func TestPredict_MissingBody(t *testing.T) {
	env := newTestEnv()

	rec, body := doJSON(t, env.srv, http.MethodPost, "/api/predict", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, body["success"])
	assert.NotEmpty(t, body["error"])
}

func TestPredict_MissingCoordinates(t *testing.T) {
	env := newTestEnv()

	rec, body := doJSON(t, env.srv, http.MethodPost, "/api/predict", `{}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, body["error"], "latitude and longitude")
}

func TestPredict_ZeroCoordinatesRejected(t *testing.T) {
	env := newTestEnv()

	rec, body := doJSON(t, env.srv, http.MethodPost, "/api/predict",
		`{"latitude": 0, "longitude": 0}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid coordinates", body["error"])
}

func TestPredict_AssessorFailure(t *testing.T) {
	env := newTestEnv()
	env.assessor.err = errors.New("boom")

	rec, body := doJSON(t, env.srv, http.MethodPost, "/api/predict",
		`{"latitude": 19.0760, "longitude": 72.8777}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "prediction failed", body["error"])
	assert.Empty(t, env.recorder.records)
}

func TestPredict_ResolverFailure(t *testing.T) {
	env := newTestEnv()
	env.resolver.resolveErr = errors.New("resolve location: latitude 91 out of range")

	rec, _ := doJSON(t, env.srv, http.MethodPost, "/api/predict",
		`{"latitude": 91, "longitude": 0.5}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// --- comprehensive endpoint tests ---

func TestPredictComprehensive_FormFieldsOverrideDefaults(t *testing.T) {
	env := newTestEnv()

	rec, body := doJSON(t, env.srv, http.MethodPost, "/api/predict_comprehensive", `{
		"location": "Pune",
		"vehicle_type": "Bike",
		"driver_age": "22",
		"driving_experience": "2",
		"speed_limit": "80",
		"current_speed": "95",
		"is_weekend": "yes",
		"alcohol_consumption": "no",
		"weather": "Rainy"
	}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])

	cond := env.assessor.last
	assert.Equal(t, "Bike", cond.VehicleType)
	assert.Equal(t, 22, cond.DriverAge)
	assert.Equal(t, 2, cond.Experience)
	assert.Equal(t, 80, cond.SpeedLimit)
	assert.Equal(t, 95, cond.CurrentSpeed)
	assert.True(t, cond.IsWeekend)
	assert.Equal(t, "Rainy", cond.Weather)
	// Unset fields keep their baseline values.
	assert.Equal(t, "yes", cond.Seatbelt)
	assert.Equal(t, "Dry", cond.RoadSurface)
}

func TestPredictComprehensive_NumericJSONAccepted(t *testing.T) {
	env := newTestEnv()

	rec, _ := doJSON(t, env.srv, http.MethodPost, "/api/predict_comprehensive", `{
		"location": "Pune",
		"driver_age": 45,
		"speed_limit": 100,
		"is_weekend": true
	}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 45, env.assessor.last.DriverAge)
	assert.Equal(t, 100, env.assessor.last.SpeedLimit)
	assert.True(t, env.assessor.last.IsWeekend)
}

func TestPredictComprehensive_NoLocationUsesDefault(t *testing.T) {
	env := newTestEnv()

	rec, body := doJSON(t, env.srv, http.MethodPost, "/api/predict_comprehensive", `{}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Mumbai, Maharashtra", body["location_name"])
}

func TestPredictComprehensive_NamedLocationWinsOverGPS(t *testing.T) {
	env := newTestEnv()

	rec, body := doJSON(t, env.srv, http.MethodPost, "/api/predict_comprehensive", `{
		"location": "Nashik, Maharashtra",
		"gps_latitude": 19.0760,
		"gps_longitude": 72.8777
	}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Nashik, Maharashtra", body["location_name"],
		"a typed location must not be overridden by detection metadata")
	assert.Empty(t, env.resolver.resolved, "a typed location needs no coordinate resolution")
}

func TestPredictComprehensive_GPSCoordinatesResolveWithoutName(t *testing.T) {
	env := newTestEnv()

	rec, body := doJSON(t, env.srv, http.MethodPost, "/api/predict_comprehensive", `{
		"gps_latitude": 19.0760,
		"gps_longitude": 72.8777
	}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Mumbai, Maharashtra", body["location_name"])
	require.Len(t, env.resolver.resolved, 1)
	assert.Equal(t, 19.0760, env.resolver.resolved[0].Lat)
}

func TestPredictComprehensive_ShortFieldNamesAccepted(t *testing.T) {
	env := newTestEnv()

	rec, _ := doJSON(t, env.srv, http.MethodPost, "/api/predict_comprehensive", `{
		"location": "Pune",
		"experience": "3",
		"seatbelt": "no",
		"alcohol": "yes"
	}`)

	require.Equal(t, http.StatusOK, rec.Code)
	cond := env.assessor.last
	assert.Equal(t, 3, cond.Experience)
	assert.Equal(t, "no", cond.Seatbelt)
	assert.Equal(t, "yes", cond.Alcohol)
}

func TestPredictComprehensive_LongFieldNamesWinOverShort(t *testing.T) {
	env := newTestEnv()

	rec, _ := doJSON(t, env.srv, http.MethodPost, "/api/predict_comprehensive", `{
		"location": "Pune",
		"experience": "3",
		"driving_experience": "12"
	}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 12, env.assessor.last.Experience)
}

// --- batch endpoint tests ---

func TestBatchPredict_MixedResults(t *testing.T) {
	env := newTestEnv()

	rec, body := doJSON(t, env.srv, http.MethodPost, "/api/batch_predict", `{
		"locations": [
			{"latitude": 19.0760, "longitude": 72.8777},
			{"latitude": 0, "longitude": 0},
			{"latitude": 28.7041, "longitude": 77.1025}
		]
	}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(3), body["count"])

	results, ok := body["results"].([]any)
	require.True(t, ok)
	require.Len(t, results, 3)

	first := results[0].(map[string]any)
	assert.Equal(t, true, first["success"])

	second := results[1].(map[string]any)
	assert.Equal(t, false, second["success"])
	assert.Equal(t, "invalid coordinates", second["error"])
}

func TestBatchPredict_EmptyList(t *testing.T) {
	env := newTestEnv()

	rec, _ := doJSON(t, env.srv, http.MethodPost, "/api/batch_predict", `{"locations": []}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBatchPredict_TooManyLocations(t *testing.T) {
	env := newTestEnv()

	var sb strings.Builder
	sb.WriteString(`{"locations": [`)
	for i := 0; i < 51; i++ {
		if i > 0 {
			sb.WriteString(",")
		}
		fmt.Fprintf(&sb, `{"latitude": 19.0, "longitude": 72.8}`)
	}
	sb.WriteString(`]}`)

	rec, body := doJSON(t, env.srv, http.MethodPost, "/api/batch_predict", sb.String())

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, body["error"], "too many locations")
}

// --- location endpoint tests ---

func TestGetLocation_WithCoordinates(t *testing.T) {
	env := newTestEnv()

	rec, body := doJSON(t, env.srv, http.MethodPost, "/api/get_location",
		`{"latitude": 19.0760, "longitude": 72.8777, "accuracy": "High"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Mumbai, Maharashtra", body["location"])
	assert.Equal(t, "GPS", body["method"])
	assert.Equal(t, "High", body["accuracy"])
	assert.Equal(t, "Urban", body["area_type"])
}

func TestGetLocation_FallsBackToIP(t *testing.T) {
	env := newTestEnv()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/get_location", strings.NewReader(`{}`))
	req.Header.Set("X-Forwarded-For", "203.0.113.7")
	env.srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "IP Geolocation", body["method"])
	assert.Equal(t, "New Delhi", body["location"])
}

func TestGetLocation_GPSFailureFallsBackToIP(t *testing.T) {
	env := newTestEnv()
	env.resolver.resolveErr = errors.New("resolution failed")

	rec, body := doJSON(t, env.srv, http.MethodPost, "/api/get_location",
		`{"latitude": 19.0760, "longitude": 72.8777}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "IP Geolocation", body["method"])
}

// --- info and health endpoint tests ---

func TestAPIHealth(t *testing.T) {
	env := newTestEnv()

	rec, body := doJSON(t, env.srv, http.MethodGet, "/api/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", body["status"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestModelInfo(t *testing.T) {
	env := newTestEnv()

	rec, body := doJSON(t, env.srv, http.MethodGet, "/api/model_info", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(21), body["features_analyzed"])
}

func TestRiskFactors(t *testing.T) {
	env := newTestEnv()

	rec, body := doJSON(t, env.srv, http.MethodGet, "/api/risk_factors", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, body, "vehicle_type")
	assert.Contains(t, body, "weather")
}

func TestWeatherInfo_MonsoonAfternoon(t *testing.T) {
	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2026, 7, 10, 14, 0, 0, 0, time.UTC)))
	defer domain.SetClock(nil)

	env := newTestEnv()
	rec, body := doJSON(t, env.srv, http.MethodGet, "/api/weather_info?location=Mumbai", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Rainy", body["weather"])
	assert.Equal(t, "Wet", body["road_surface"])
	assert.Equal(t, "medium", body["visibility"])
	assert.Equal(t, "Daylight", body["light_condition"])
	assert.Equal(t, float64(30), body["temperature"])
	assert.Equal(t, float64(85), body["humidity"])
	assert.Equal(t, "2026-07-10T14:00:00Z", body["last_updated"])
}

func TestWeatherInfo_DefaultsToMumbai(t *testing.T) {
	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2026, 1, 15, 6, 0, 0, 0, time.UTC)))
	defer domain.SetClock(nil)

	env := newTestEnv()
	rec, body := doJSON(t, env.srv, http.MethodGet, "/api/weather_info", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Foggy", body["weather"])
	assert.Equal(t, "low", body["visibility"])
	assert.Equal(t, float64(25), body["temperature"], "Mumbai winter baseline")
}

// --- operational endpoint tests ---

func TestHealthzReturns200(t *testing.T) {
	env := newTestEnv()

	rec, body := doJSON(t, env.srv, http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	env := newTestEnv()

	rec, body := doJSON(t, env.srv, http.MethodGet, "/readyz", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ready", body["status"])
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := httpapi.NewServer(":0", &mockAssessor{}, &mockResolver{}, nil,
		&mockReadiness{err: fmt.Errorf("not ready yet")}, logger, observability.NewMetricsForTesting())

	rec, body := doJSON(t, srv, http.MethodGet, "/readyz", "")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "not ready", body["status"])
	assert.Equal(t, "not ready yet", body["error"])
}

func TestReadyzWithoutCheckerIsAlwaysReady(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := httpapi.NewServer(":0", &mockAssessor{}, &mockResolver{}, nil, nil,
		logger, observability.NewMetricsForTesting())

	rec, body := doJSON(t, srv, http.MethodGet, "/readyz", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ready", body["status"])
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	env.srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
