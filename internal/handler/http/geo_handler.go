package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/vasiliy-maslov/vura/internal/geo"
)

type CitySearcher interface {
	Search(ctx context.Context, query string, limit int) ([]geo.City, error)
}

type GeoResponse struct {
	Results []geo.City `json:"results"`
}

type UpstreamErrorResponse struct {
	Error   string `json:"error"`
	Status  int    `json:"status"`
	Details string `json:"details"`
}

type InternalErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

type GeoHandler struct {
	cities CitySearcher
}

func NewGeoHandler(cities CitySearcher) *GeoHandler {
	return &GeoHandler{cities: cities}
}

func (h *GeoHandler) RegisterRoutes(router chi.Router) {
	router.Get("/api/geo", h.handleSearch)
}

func (h *GeoHandler) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	cities, err := h.cities.Search(r.Context(), query.Get("q"), geo.ParseLimit(query.Get("limit")))
	if err != nil {
		statusCode := mapErrorToStatusCode(err)

		var upErr *geo.UpstreamError
		switch {
		case errors.Is(err, geo.ErrQueryTooShort):
			respondWithError(w, statusCode, "Digite ao menos 2 caracteres para buscar a cidade.")
		case errors.As(err, &upErr):
			hlog.FromRequest(r).Warn().Err(err).Int("upstream_status", upErr.Status).Msg("Geocoding provider failed")
			details := upErr.Body
			if details == "" {
				details = "Sem detalhes."
			}
			respondWithJSON(w, statusCode, UpstreamErrorResponse{
				Error:   "Falha ao consultar serviço de cidades (Open-Meteo).",
				Status:  upErr.Status,
				Details: details,
			})
		default:
			hlog.FromRequest(r).Error().Err(err).Msg("Failed to search cities")
			respondWithJSON(w, statusCode, InternalErrorResponse{
				Error:   "Erro interno ao buscar cidades (/api/geo).",
				Details: err.Error(),
			})
		}
		return
	}

	respondWithJSON(w, http.StatusOK, GeoResponse{Results: cities})
}
