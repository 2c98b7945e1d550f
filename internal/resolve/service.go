// Package resolve turns raw position inputs (GPS coordinates, client IPs,
// or nothing at all) into a named location with an area classification.
package resolve

import (
	"context"
	"crypto/md5"
	"encoding/binary"
	"fmt"
	"log/slog"
	"net"

	"github.com/SangramKhandagale/Road-Accident-Prediction-Model/internal/domain"
	"github.com/SangramKhandagale/Road-Accident-Prediction-Model/internal/observability"
)

// Resolution method names reported to clients.
const (
	MethodGPS     = "GPS"
	MethodIP      = "IP Geolocation"
	MethodDefault = "Default"
)

// Service resolves coordinates and IPs to named locations. The geocoder is
// optional; when nil or failing, resolution falls back to the built-in city
// table so a prediction is never blocked on an external API.
type Service struct {
	geocoder domain.Geocoder
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// New creates a resolution service. geocoder may be nil.
func New(geocoder domain.Geocoder, logger *slog.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		geocoder: geocoder,
		logger:   logger,
		metrics:  metrics,
	}
}

// Resolve maps GPS coordinates to a named location. Geocoding enrichment is
// best effort: on error or empty result the nearest city from the built-in
// table is used instead.
func (s *Service) Resolve(ctx context.Context, coords domain.Coordinates, accuracy string) (domain.LocationResolution, error) {
	if err := coords.Validate(); err != nil {
		s.metrics.ResolutionsTotal.WithLabelValues(MethodGPS, "error").Inc()
		return domain.LocationResolution{}, fmt.Errorf("resolve location: %w", err)
	}
	if accuracy == "" {
		accuracy = "High"
	}

	name := s.enrichName(ctx, coords)

	s.metrics.ResolutionsTotal.WithLabelValues(MethodGPS, "success").Inc()
	return domain.LocationResolution{
		Location:    name,
		Coordinates: coords,
		AreaType:    domain.ClassifyAreaType(coords),
		Method:      MethodGPS,
		Accuracy:    accuracy,
	}, nil
}

func (s *Service) enrichName(ctx context.Context, coords domain.Coordinates) string {
	if s.geocoder != nil {
		result, err := s.geocoder.ReverseGeocode(ctx, coords.Lat, coords.Lon)
		if err != nil {
			s.logger.Warn("reverse geocode failed, falling back to city table",
				"lat", coords.Lat, "lon", coords.Lon, "error", err)
		} else if result.FormattedAddress != "" {
			return result.FormattedAddress
		}
	}
	return domain.NearestCity(coords).Name
}

// FromIP derives a deterministic metro-area location from the client IP.
// The same IP always maps to the same city. Loopback and unparseable
// addresses carry no location signal and resolve to the default.
func (s *Service) FromIP(ip string) domain.LocationResolution {
	parsed := net.ParseIP(ip)
	if parsed == nil || parsed.IsLoopback() {
		return s.Default()
	}

	city := metroForIP(ip)
	s.metrics.ResolutionsTotal.WithLabelValues(MethodIP, "success").Inc()
	return domain.LocationResolution{
		Location:    city.Name,
		Coordinates: city.Coord,
		AreaType:    domain.ClassifyAreaType(city.Coord),
		Method:      MethodIP,
		Accuracy:    "Medium",
	}
}

// Default returns the fallback location used when no position signal exists.
func (s *Service) Default() domain.LocationResolution {
	city := domain.DefaultCity()
	s.metrics.ResolutionsTotal.WithLabelValues(MethodDefault, "success").Inc()
	return domain.LocationResolution{
		Location:    city.Name,
		Coordinates: city.Coord,
		AreaType:    domain.ClassifyAreaType(city.Coord),
		Method:      MethodDefault,
		Accuracy:    "Medium",
	}
}

// AreaTypeForName classifies a named location by forward geocoding it. When
// geocoding is unavailable or finds nothing, Urban is assumed since most
// queries name cities.
func (s *Service) AreaTypeForName(ctx context.Context, name string) string {
	if s.geocoder == nil {
		return "Urban"
	}
	result, err := s.geocoder.ForwardGeocode(ctx, name, "")
	if err != nil {
		s.logger.Warn("forward geocode failed, assuming urban area", "location", name, "error", err)
		return "Urban"
	}
	if result.FormattedAddress == "" {
		return "Urban"
	}
	return domain.ClassifyAreaType(domain.Coordinates{Lat: result.Lat, Lon: result.Lon})
}

func metroForIP(ip string) domain.City {
	metros := domain.Metros()
	sum := md5.Sum([]byte(ip))
	idx := binary.BigEndian.Uint32(sum[:4]) % uint32(len(metros))
	return metros[idx]
}
