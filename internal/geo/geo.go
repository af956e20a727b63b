package geo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
)

const (
	DefaultLimit   = 8
	MaxLimit       = 20
	MinQueryLength = 2

	// UnknownTimezone is reported when no zone covers a point. The frontend
	// forwards it as tz_str unchanged, so the literal must not change.
	UnknownTimezone = "AUTO"
)

var ErrQueryTooShort = errors.New("query must have at least 2 characters")

// City is one geocoding candidate enriched with its IANA timezone.
type City struct {
	Name     string  `json:"name"`
	Country  string  `json:"country"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Timezone string  `json:"timezone"`
}

// Candidate is a raw match returned by the geocoding provider.
type Candidate struct {
	Name      string  `json:"name"`
	Country   string  `json:"country"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]Candidate, error)
}

type TimezoneResolver interface {
	Timezone(lat, lng float64) (string, error)
}

type Service struct {
	searcher Searcher
	tz       TimezoneResolver
}

func NewService(searcher Searcher, tz TimezoneResolver) *Service {
	return &Service{searcher: searcher, tz: tz}
}

// ParseLimit turns the raw limit query parameter into a count in [1, MaxLimit].
// Missing or unparsable values fall back to DefaultLimit.
func ParseLimit(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return DefaultLimit
	}
	return min(n, MaxLimit)
}

// Search geocodes query and attaches a timezone to every candidate, keeping
// the provider's order. A failed timezone lookup degrades to UnknownTimezone
// for that city only.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]City, error) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < MinQueryLength {
		return nil, ErrQueryTooShort
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	limit = min(limit, MaxLimit)

	candidates, err := s.searcher.Search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("geocoding %q: %w", query, err)
	}

	cities := make([]City, 0, len(candidates))
	for _, c := range candidates {
		cities = append(cities, City{
			Name:     c.Name,
			Country:  c.Country,
			Lat:      c.Latitude,
			Lng:      c.Longitude,
			Timezone: s.timezone(c.Latitude, c.Longitude),
		})
	}

	return cities, nil
}

func (s *Service) timezone(lat, lng float64) (zone string) {
	defer func() {
		if p := recover(); p != nil {
			log.Warn().Interface("panic_value", p).Float64("lat", lat).Float64("lng", lng).Msg("Timezone lookup panicked")
			zone = UnknownTimezone
		}
	}()

	zone, err := s.tz.Timezone(lat, lng)
	if err != nil || zone == "" {
		log.Debug().Err(err).Float64("lat", lat).Float64("lng", lng).Msg("No timezone for point")
		return UnknownTimezone
	}
	return zone
}
