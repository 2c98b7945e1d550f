// Package geolocate defines the position acquisition port used by the
// client controller. Implementations wrap whatever positioning facility the
// host platform offers; the sentinel errors carry the exact user-facing
// messages shown when acquisition fails.
package geolocate

import (
	"context"
	"errors"
	"time"

	"github.com/SangramKhandagale/Road-Accident-Prediction-Model/internal/domain"
)

// Acquisition failure sentinels. Error text is shown to users verbatim.
var (
	ErrUnsupported         = errors.New("Geolocation is not supported by this browser")
	ErrPermissionDenied    = errors.New("Location access denied by user")
	ErrPositionUnavailable = errors.New("Location information unavailable")
	ErrTimeout             = errors.New("Location request timed out")
)

// Options tunes a position request.
type Options struct {
	HighAccuracy bool
	Timeout      time.Duration
	MaximumAge   time.Duration // accept a cached fix no older than this
}

// Position is a single acquired fix.
type Position struct {
	Coordinates domain.Coordinates
	Accuracy    float64 // radius in meters
}

// Provider acquires the device's current position.
type Provider interface {
	CurrentPosition(ctx context.Context, opts Options) (Position, error)
}

// StaticProvider returns a fixed position, or a fixed error. Useful for
// tests and for CLI runs where the position is supplied up front.
type StaticProvider struct {
	Position Position
	Err      error
}

func (p *StaticProvider) CurrentPosition(_ context.Context, _ Options) (Position, error) {
	if p.Err != nil {
		return Position{}, p.Err
	}
	return p.Position, nil
}
