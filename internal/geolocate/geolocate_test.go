package geolocate

import (
	"context"
	"testing"

	"github.com/SangramKhandagale/Road-Accident-Prediction-Model/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticProvider_ReturnsPosition(t *testing.T) {
	p := &StaticProvider{
		Position: Position{
			Coordinates: domain.Coordinates{Lat: 19.0760, Lon: 72.8777},
			Accuracy:    12.5,
		},
	}

	pos, err := p.CurrentPosition(context.Background(), Options{})
	require.NoError(t, err)
	assert.Equal(t, 19.0760, pos.Coordinates.Lat)
	assert.Equal(t, 12.5, pos.Accuracy)
}

func TestStaticProvider_ReturnsError(t *testing.T) {
	p := &StaticProvider{Err: ErrPermissionDenied}

	_, err := p.CurrentPosition(context.Background(), Options{})
	require.ErrorIs(t, err, ErrPermissionDenied)
	assert.Equal(t, "Location access denied by user", err.Error())
}

func TestSentinelMessages(t *testing.T) {
	assert.Equal(t, "Geolocation is not supported by this browser", ErrUnsupported.Error())
	assert.Equal(t, "Location information unavailable", ErrPositionUnavailable.Error())
	assert.Equal(t, "Location request timed out", ErrTimeout.Error())
}
