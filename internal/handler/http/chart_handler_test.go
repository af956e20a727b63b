package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vasiliy-maslov/vura/internal/astro"
	httphandler "github.com/vasiliy-maslov/vura/internal/handler/http"
)

type MockChartRenderer struct {
	mock.Mock
}

func (m *MockChartRenderer) RenderSVG(ctx context.Context, r *astro.ChartRequest) (string, error) {
	args := m.Called(ctx, r)
	return args.String(0), args.Error(1)
}

func (m *MockChartRenderer) NatalData(ctx context.Context, r *astro.ChartRequest) (json.RawMessage, error) {
	args := m.Called(ctx, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

const chartBody = `{"name":"Ana","year":1990,"month":5,"day":17,"hour":0,"minute":0,"city":"Lisboa","lat":38.71,"lng":-9.14,"tz_str":"Europe/Lisbon","theme_type":"dark"}`

func newChartRouter(renderer httphandler.ChartRenderer) *chi.Mux {
	router := chi.NewRouter()
	httphandler.NewChartHandler(renderer).RegisterRoutes(router)
	return router
}

func TestChartHandler_handleMandala_Success(t *testing.T) {
	renderer := new(MockChartRenderer)
	renderer.On("RenderSVG", mock.Anything, mock.MatchedBy(func(r *astro.ChartRequest) bool {
		return r.Name == "Ana" && *r.Hour == 0 && *r.Lng == -9.14 && r.TZStr == "Europe/Lisbon" && r.ThemeType == "dark"
	})).Return(`<svg id="chart"/>`, nil).Once()

	rr := doJSON(t, newChartRouter(renderer), http.MethodPost, "/api/mandala", chartBody, "")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"svg":"<svg id=\"chart\"/>"}`, rr.Body.String())
	renderer.AssertExpectations(t)
}

func TestChartHandler_handleNatal_Verbatim(t *testing.T) {
	upstream := json.RawMessage(`{"planets":[{"name":"Sun","sign":"Tau"}],"interpretation":{"style":"improved"}}`)
	renderer := new(MockChartRenderer)
	renderer.On("NatalData", mock.Anything, mock.Anything).Return(upstream, nil).Once()

	rr := doJSON(t, newChartRouter(renderer), http.MethodPost, "/api/api-natal", chartBody, "")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, string(upstream), rr.Body.String())
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
}

func TestChartHandler_MethodNotAllowed(t *testing.T) {
	renderer := new(MockChartRenderer)
	router := newChartRouter(renderer)

	for _, path := range []string{"/api/mandala", "/api/api-natal"} {
		for _, method := range []string{http.MethodGet, http.MethodPut} {
			rr := doJSON(t, router, method, path, "", "")
			assert.Equal(t, http.StatusMethodNotAllowed, rr.Code, "%s %s", method, path)
			assert.Equal(t, "Método não permitido. Use POST.", errorMessage(t, rr))
		}
	}
	renderer.AssertNotCalled(t, "RenderSVG", mock.Anything, mock.Anything)
}

func TestChartHandler_Errors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{
			name:     "missing field",
			err:      &astro.FieldError{Field: "tz_str"},
			wantCode: http.StatusBadRequest,
			wantBody: `{"error":"Campo obrigatório: tz_str"}`,
		},
		{
			name:     "missing api key",
			err:      astro.ErrMissingAPIKey,
			wantCode: http.StatusInternalServerError,
			wantBody: `{"error":"FREEASTRO_API_KEY não configurada no servidor."}`,
		},
		{
			name:     "upstream status passthrough",
			err:      &astro.UpstreamError{Status: http.StatusUnprocessableEntity, Response: json.RawMessage(`{"detail":"bad date"}`)},
			wantCode: http.StatusUnprocessableEntity,
			wantBody: `{"error":"A FreeAstro retornou erro ao gerar o SVG.","status":422,"response":{"detail":"bad date"}}`,
		},
		{
			name:     "transport failure",
			err:      assert.AnError,
			wantCode: http.StatusInternalServerError,
			wantBody: `{"error":"Erro interno ao gerar mandala (/api/mandala).","details":"` + assert.AnError.Error() + `"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			renderer := new(MockChartRenderer)
			renderer.On("RenderSVG", mock.Anything, mock.Anything).Return("", tt.err).Once()

			rr := doJSON(t, newChartRouter(renderer), http.MethodPost, "/api/mandala", chartBody, "")

			assert.Equal(t, tt.wantCode, rr.Code)
			assert.JSONEq(t, tt.wantBody, rr.Body.String())
		})
	}
}

func TestChartHandler_handleNatal_UpstreamError(t *testing.T) {
	renderer := new(MockChartRenderer)
	renderer.On("NatalData", mock.Anything, mock.Anything).
		Return(nil, &astro.UpstreamError{Status: http.StatusTooManyRequests, Response: json.RawMessage(`{"raw":"slow down"}`)}).Once()

	rr := doJSON(t, newChartRouter(renderer), http.MethodPost, "/api/api-natal", chartBody, "")

	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.JSONEq(t, `{"error":"A FreeAstroAPI retornou erro.","status":429,"response":{"raw":"slow down"}}`, rr.Body.String())
}

func TestChartHandler_MalformedBody(t *testing.T) {
	renderer := new(MockChartRenderer)

	rr := doJSON(t, newChartRouter(renderer), http.MethodPost, "/api/mandala", `{"year":"1990"}`, "")

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	renderer.AssertNotCalled(t, "RenderSVG", mock.Anything, mock.Anything)
}
