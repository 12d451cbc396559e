package services

import (
	"context"
	"time"

	"github.com/apex/log"
	"github.com/nazar-zhcet26/Tenant-management/geocode"
	"github.com/nazar-zhcet26/Tenant-management/metrics"
	"github.com/nazar-zhcet26/Tenant-management/models"
)

type LocationService struct {
	drafts   *DraftService
	geocoder geocode.Reverser
}

func NewLocationService(drafts *DraftService, geocoder geocode.Reverser) *LocationService {
	return &LocationService{drafts: drafts, geocoder: geocoder}
}

// Set stores the coordinates on the draft and resolves them to an address.
// Only one lookup per draft may be in flight. If ctx is cancelled during the
// lookup the coordinates are dropped again.
func (s *LocationService) Set(ctx context.Context, draftID, ownerID string, lat, lng float64) (models.Draft, error) {
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return models.Draft{}, &models.ValidationError{Field: "coordinates", Message: "Coordinates out of range"}
	}
	coords := models.Coordinates{Latitude: lat, Longitude: lng}

	_, err := s.drafts.mutate(ctx, draftID, ownerID, func(d models.Draft) (models.Draft, error) {
		if d.Locating || d.Submitting {
			return d, ErrBusy
		}
		now := s.drafts.now()
		return d.WithLocation(coords, "", now).WithLocating(true, now), nil
	})
	if err != nil {
		return models.Draft{}, err
	}

	address, lookupErr := geocode.ResolveAddress(ctx, s.geocoder, lat, lng)

	// The draft must leave the locating state even when the caller went away.
	finishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	d, err := s.drafts.mutate(finishCtx, draftID, ownerID, func(d models.Draft) (models.Draft, error) {
		now := s.drafts.now()
		if lookupErr != nil {
			return d.WithoutLocation(now).WithLocating(false, now), nil
		}
		return d.WithLocation(coords, address, now).WithLocating(false, now), nil
	})
	if err != nil {
		return models.Draft{}, err
	}

	switch {
	case lookupErr != nil:
		metrics.GeocodeLookupsTotal.WithLabelValues("cancelled").Inc()
		log.WithField("draft", draftID).Info("Location lookup abandoned")
		return models.Draft{}, lookupErr
	case address == geocode.FormatCoordinates(lat, lng):
		metrics.GeocodeLookupsTotal.WithLabelValues("fallback").Inc()
	default:
		metrics.GeocodeLookupsTotal.WithLabelValues("resolved").Inc()
	}
	return d, nil
}

// Clear removes coordinates and address, leaving every other field as is.
func (s *LocationService) Clear(ctx context.Context, draftID, ownerID string) (models.Draft, error) {
	return s.drafts.mutate(ctx, draftID, ownerID, func(d models.Draft) (models.Draft, error) {
		if d.Locating || d.Submitting {
			return d, ErrBusy
		}
		return d.WithoutLocation(s.drafts.now()), nil
	})
}
