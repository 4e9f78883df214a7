package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tranki-app/tranki-backend/internal/clients/places"
	"github.com/tranki-app/tranki-backend/internal/models"
	"github.com/tranki-app/tranki-backend/pkg/cache"
)

const (
	DefaultRadiusMeters = 2000
	MinRadiusMeters     = 100
	MaxRadiusMeters     = 50000

	earthRadiusMeters = 6371000.0
)

// placeCategories maps a category to the upstream place type and keyword.
var placeCategories = map[string]struct{ placeType, keyword string }{
	models.CategoryPark:    {"park", ""},
	models.CategorySpa:     {"spa", "relax"},
	models.CategoryCafe:    {"cafe", ""},
	models.CategoryLibrary: {"library", ""},
	models.CategoryGym:     {"gym", "yoga"},
	models.CategoryMuseum:  {"museum", ""},
}

type placesService struct {
	provider PlacesProvider
	cache    cache.Cache
	ttl      time.Duration
	logger   *zap.Logger
}

// NewPlacesService creates a PlacesService caching upstream responses for ttl.
func NewPlacesService(provider PlacesProvider, c cache.Cache, ttl time.Duration, logger *zap.Logger) PlacesService {
	return &placesService{provider: provider, cache: c, ttl: ttl, logger: logger}
}

// HaversineMeters is the great-circle distance between two points.
func HaversineMeters(a, b models.Location) float64 {
	toRad := func(d float64) float64 { return d * math.Pi / 180 }
	dLat := toRad(b.Lat - a.Lat)
	dLng := toRad(b.Lng - a.Lng)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(h)))
}

func nearbyCacheKey(q models.NearbyQuery) string {
	return fmt.Sprintf("places:nearby:%.3f:%.3f:%d:%s", q.Lat, q.Lng, q.Radius, q.Category)
}

// Nearby returns venues of the category sorted by distance from the query point.
func (s *placesService) Nearby(ctx context.Context, q models.NearbyQuery) ([]models.Place, error) {
	if q.Lat < -90 || q.Lat > 90 || q.Lng < -180 || q.Lng > 180 {
		return nil, fmt.Errorf("%w: %f,%f", ErrInvalidLocation, q.Lat, q.Lng)
	}
	q.Category = strings.ToLower(strings.TrimSpace(q.Category))
	if q.Category == "" {
		q.Category = models.CategoryPark
	}
	category, ok := placeCategories[q.Category]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCategory, q.Category)
	}
	switch {
	case q.Radius <= 0:
		q.Radius = DefaultRadiusMeters
	case q.Radius < MinRadiusMeters:
		q.Radius = MinRadiusMeters
	case q.Radius > MaxRadiusMeters:
		q.Radius = MaxRadiusMeters
	}

	origin := models.Location{Lat: q.Lat, Lng: q.Lng}
	key := nearbyCacheKey(q)
	var result []models.Place
	if !s.cached(ctx, key, &result) {
		var err error
		result, err = s.provider.Nearby(ctx, origin, q.Radius, category.placeType, category.keyword)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPlacesUnavailable, err)
		}
		s.store(ctx, key, result)
	}

	// Cached entries cover a rounded area, so distances are always computed from the caller's point.
	for i := range result {
		result[i].DistanceMeters = math.Round(HaversineMeters(origin, result[i].Location))
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].DistanceMeters < result[j].DistanceMeters })
	if result == nil {
		result = []models.Place{}
	}
	return result, nil
}

func (s *placesService) PlaceDetails(ctx context.Context, placeID string) (*models.PlaceDetails, error) {
	placeID = strings.TrimSpace(placeID)
	if placeID == "" {
		return nil, ErrPlaceNotFound
	}
	key := "places:details:" + placeID
	var details models.PlaceDetails
	if s.cached(ctx, key, &details) {
		return &details, nil
	}

	d, err := s.provider.Details(ctx, placeID)
	if err != nil {
		if errors.Is(err, places.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrPlaceNotFound, placeID)
		}
		return nil, fmt.Errorf("%w: %v", ErrPlacesUnavailable, err)
	}
	s.store(ctx, key, d)
	return d, nil
}

// cached decodes key into dst. Cache failures are treated as misses.
func (s *placesService) cached(ctx context.Context, key string, dst interface{}) bool {
	if s.cache == nil {
		return false
	}
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("Places cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		s.logger.Warn("Discarding corrupt places cache entry", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (s *placesService) store(ctx context.Context, key string, v interface{}) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, string(raw), s.ttl); err != nil {
		s.logger.Warn("Places cache write failed", zap.String("key", key), zap.Error(err))
	}
}
