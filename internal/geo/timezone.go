package geo

import (
	"fmt"

	"github.com/ringsaturn/tzf"
)

type nameFinder interface {
	GetTimezoneName(lng float64, lat float64) string
}

// PolygonResolver maps coordinates to IANA zones with the offline tzf polygons.
type PolygonResolver struct {
	finder nameFinder
}

func NewPolygonResolver() (*PolygonResolver, error) {
	finder, err := tzf.NewDefaultFinder()
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone polygons: %w", err)
	}
	return &PolygonResolver{finder: finder}, nil
}

func (r *PolygonResolver) Timezone(lat, lng float64) (string, error) {
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return "", fmt.Errorf("coordinates out of range: %f,%f", lat, lng)
	}

	name := r.finder.GetTimezoneName(lng, lat)
	if name == "" {
		return "", fmt.Errorf("no timezone polygon covers %f,%f", lat, lng)
	}
	return name, nil
}
