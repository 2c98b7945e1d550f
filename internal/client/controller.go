package client

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/SangramKhandagale/Road-Accident-Prediction-Model/internal/domain"
	"github.com/SangramKhandagale/Road-Accident-Prediction-Model/internal/geolocate"
)

// Position acquisition options: a fresh high-accuracy fix, but a cached one
// under a minute old is acceptable.
const (
	acquireTimeout = 10 * time.Second
	maxFixAge      = 60 * time.Second

	noticeTTL      = 5 * time.Second
	errorNoticeTTL = 8 * time.Second
)

const genericPredictionError = "Error making prediction. Please try again."

// LocationService detects the user's position and resolves it to a named
// location through the prediction service.
type LocationService struct {
	api       *Client
	provider  geolocate.Provider
	presenter Presenter
	logger    *slog.Logger

	detecting atomic.Bool

	mu   sync.Mutex
	last *domain.LocationResolution
}

// NewLocationService creates a location service.
func NewLocationService(api *Client, provider geolocate.Provider, presenter Presenter, logger *slog.Logger) *LocationService {
	return &LocationService{
		api:       api,
		provider:  provider,
		presenter: presenter,
		logger:    logger,
	}
}

// Detect acquires the device position and resolves it to a named location.
// Concurrent calls are collapsed: while one detection runs, others return
// immediately. The busy state is restored on every path.
func (s *LocationService) Detect(ctx context.Context) {
	if !s.detecting.CompareAndSwap(false, true) {
		return
	}
	defer s.detecting.Store(false)

	s.presenter.ShowBusy(ControlLocate, true)
	defer s.presenter.ShowBusy(ControlLocate, false)

	pos, err := s.provider.CurrentPosition(ctx, geolocate.Options{
		HighAccuracy: true,
		Timeout:      acquireTimeout,
		MaximumAge:   maxFixAge,
	})
	if err != nil {
		// Sentinel errors carry the exact user-facing message.
		s.logger.Warn("position acquisition failed", "error", err)
		s.presenter.Notify(Notice{Level: NoticeError, Message: err.Error(), TTL: errorNoticeTTL})
		return
	}

	res, err := s.api.ResolveLocation(ctx, &pos.Coordinates, accuracyBand(pos.Accuracy))
	if err != nil {
		s.logger.Warn("location resolution failed", "error", err)
		s.presenter.Notify(Notice{Level: NoticeError, Message: "Unable to determine location", TTL: errorNoticeTTL})
		return
	}

	s.setLast(res)
	s.presenter.SetLocation(res)
	s.presenter.Notify(Notice{Level: NoticeSuccess, Message: "Location detected: " + res.Location, TTL: noticeTTL})
}

// LastResolution returns the most recent successful resolution, if any.
func (s *LocationService) LastResolution() (domain.LocationResolution, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return domain.LocationResolution{}, false
	}
	return *s.last, true
}

func (s *LocationService) setLast(res domain.LocationResolution) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = &res
}

// accuracyBand maps a fix radius in meters to the service's accuracy labels.
func accuracyBand(meters float64) string {
	switch {
	case meters <= 20:
		return "High"
	case meters <= 100:
		return "Medium"
	default:
		return "Low"
	}
}

// FormController handles prediction form submissions: validation, the API
// call, and driving the presenter with the outcome.
type FormController struct {
	api       *Client
	presenter Presenter
	locations *LocationService
	session   *Store
	logger    *slog.Logger
}

// NewFormController creates a form controller. locations and session may be
// nil when the host has no location detection or results view.
func NewFormController(api *Client, presenter Presenter, locations *LocationService, session *Store, logger *slog.Logger) *FormController {
	return &FormController{
		api:       api,
		presenter: presenter,
		locations: locations,
		session:   session,
		logger:    logger,
	}
}

// Submit validates the coordinate fields and requests a prediction. Invalid
// input is rejected locally; no request is made.
func (c *FormController) Submit(ctx context.Context, latText, lonText string) {
	coords, ok := parseCoordinates(latText, lonText)
	if !ok {
		c.presenter.Alert("Please enter valid latitude and longitude values")
		return
	}

	c.presenter.ShowBusy(ControlSubmit, true)
	defer c.presenter.ShowBusy(ControlSubmit, false)

	result, err := c.api.Predict(ctx, coords, "")
	if err != nil {
		c.alertPredictionError(err)
		return
	}

	c.presenter.ShowResult(RenderPrediction(result))
}

// SubmitComprehensive submits the full condition form, enriched with the
// last detected position when one exists, then stores the raw response and
// navigates to the results view.
func (c *FormController) SubmitComprehensive(ctx context.Context, form map[string]any) {
	c.presenter.ShowBusy(ControlSubmit, true)
	defer c.presenter.ShowBusy(ControlSubmit, false)

	enriched := make(map[string]any, len(form)+3)
	for k, v := range form {
		enriched[k] = v
	}
	if c.locations != nil {
		if res, ok := c.locations.LastResolution(); ok {
			// GPS metadata is auxiliary: the server prefers a typed location
			// over these, so a detection never overrides the form.
			enriched["gps_latitude"] = res.Coordinates.Lat
			enriched["gps_longitude"] = res.Coordinates.Lon
			if _, set := enriched["area_type"]; !set {
				enriched["area_type"] = res.AreaType
			}
		}
	}

	_, raw, err := c.api.PredictComprehensive(ctx, enriched)
	if err != nil {
		c.alertPredictionError(err)
		return
	}

	if c.session != nil {
		c.session.Put(KeyLastPrediction, raw)
	}
	c.presenter.NavigateToResults()
}

// alertPredictionError surfaces a server-supplied message for client errors
// and a generic one for everything else.
func (c *FormController) alertPredictionError(err error) {
	c.logger.Error("prediction request failed", "error", err)

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status < 500 && apiErr.Message != "" {
		c.presenter.Alert(apiErr.Message)
		return
	}
	c.presenter.Alert(genericPredictionError)
}

// parseCoordinates validates the form's coordinate fields.
func parseCoordinates(latText, lonText string) (domain.Coordinates, bool) {
	lat, err := strconv.ParseFloat(latText, 64)
	if err != nil {
		return domain.Coordinates{}, false
	}
	lon, err := strconv.ParseFloat(lonText, 64)
	if err != nil {
		return domain.Coordinates{}, false
	}
	coords := domain.Coordinates{Lat: lat, Lon: lon}
	if coords.Validate() != nil {
		return domain.Coordinates{}, false
	}
	return coords, true
}
