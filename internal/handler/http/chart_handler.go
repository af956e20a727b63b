package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/vasiliy-maslov/vura/internal/astro"
)

type ChartRenderer interface {
	RenderSVG(ctx context.Context, r *astro.ChartRequest) (string, error)
	NatalData(ctx context.Context, r *astro.ChartRequest) (json.RawMessage, error)
}

type SVGResponse struct {
	SVG string `json:"svg"`
}

type ChartUpstreamErrorResponse struct {
	Error    string          `json:"error"`
	Status   int             `json:"status"`
	Response json.RawMessage `json:"response"`
}

type ChartHandler struct {
	charts ChartRenderer
}

func NewChartHandler(charts ChartRenderer) *ChartHandler {
	return &ChartHandler{charts: charts}
}

// RegisterRoutes mounts both chart routes for every method so non-POST
// requests get a JSON 405 instead of chi's plain-text one.
func (h *ChartHandler) RegisterRoutes(router chi.Router) {
	router.HandleFunc("/api/mandala", h.handleMandala)
	router.HandleFunc("/api/api-natal", h.handleNatal)
}

func (h *ChartHandler) handleMandala(w http.ResponseWriter, r *http.Request) {
	chart, ok := h.readChartRequest(w, r)
	if !ok {
		return
	}

	svg, err := h.charts.RenderSVG(r.Context(), chart)
	if err != nil {
		h.respondChartError(w, r, err, "A FreeAstro retornou erro ao gerar o SVG.", "Erro interno ao gerar mandala (/api/mandala).")
		return
	}

	respondWithJSON(w, http.StatusOK, SVGResponse{SVG: svg})
}

func (h *ChartHandler) handleNatal(w http.ResponseWriter, r *http.Request) {
	chart, ok := h.readChartRequest(w, r)
	if !ok {
		return
	}

	data, err := h.charts.NatalData(r.Context(), chart)
	if err != nil {
		h.respondChartError(w, r, err, "A FreeAstroAPI retornou erro.", "Erro interno em /api/api-natal.")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("Failed to write natal data response")
	}
}

func (h *ChartHandler) readChartRequest(w http.ResponseWriter, r *http.Request) (*astro.ChartRequest, bool) {
	if r.Method != http.MethodPost {
		respondWithError(w, http.StatusMethodNotAllowed, "Método não permitido. Use POST.")
		return nil, false
	}

	var chart astro.ChartRequest
	if err := decodeJSON(w, r, &chart); err != nil {
		hlog.FromRequest(r).Warn().Err(err).Msg("Failed to decode chart body")
		respondWithError(w, mapErrorToStatusCode(err), "Corpo da requisição inválido")
		return nil, false
	}
	return &chart, true
}

func (h *ChartHandler) respondChartError(w http.ResponseWriter, r *http.Request, err error, upstreamMessage, internalMessage string) {
	statusCode := mapErrorToStatusCode(err)

	var fieldErr *astro.FieldError
	var upErr *astro.UpstreamError

	switch {
	case errors.As(err, &fieldErr):
		respondWithError(w, statusCode, "Campo obrigatório: "+fieldErr.Field)
	case errors.Is(err, astro.ErrMissingAPIKey):
		hlog.FromRequest(r).Error().Msg("Chart provider API key is not configured")
		respondWithError(w, statusCode, "FREEASTRO_API_KEY não configurada no servidor.")
	case errors.As(err, &upErr):
		hlog.FromRequest(r).Warn().Err(err).Int("upstream_status", upErr.Status).Msg("Chart provider failed")
		respondWithJSON(w, statusCode, ChartUpstreamErrorResponse{
			Error:    upstreamMessage,
			Status:   upErr.Status,
			Response: upErr.Response,
		})
	default:
		hlog.FromRequest(r).Error().Err(err).Msg("Failed to call chart provider")
		respondWithJSON(w, statusCode, InternalErrorResponse{
			Error:   internalMessage,
			Details: err.Error(),
		})
	}
}
