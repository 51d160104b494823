package server

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rxtech-lab/stockview/internal/types"
	"github.com/rxtech-lab/stockview/internal/version"
	"github.com/rxtech-lab/stockview/internal/viewer"
	"github.com/rxtech-lab/stockview/pkg/errors"
	"github.com/rxtech-lab/stockview/pkg/marketdata"
	"go.uber.org/zap"
)

// Query parameters of the chart route.
const (
	ParamPeriod              = "period"
	ParamPlot                = "plot"
	ParamSma                 = "sma"
	ParamSmaWindow           = "sma_window"
	ParamBollinger           = "bollinger"
	ParamBollingerWindow     = "bollinger_window"
	ParamBollingerMultiplier = "bollinger_multiplier"
)

type errorResponse struct {
	Error     string `json:"error"`
	Code      int    `json:"code"`
	RequestID string `json:"requestId"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": version.GetVersion()})
}

func (s *Server) handleProviders(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, marketdata.GetProviders())
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.writeError(w, r, errors.Newf(errors.ErrCodeDataNotFound, "no route for %s", r.URL.Path))
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	req, err := ParseChartRequest(mux.Vars(r)["symbol"], r.URL.Query(), s.options.Defaults)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	report, err := s.viewer.View(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	s.writeJSON(w, http.StatusOK, report.JSON())
}

// ParseChartRequest overlays the query parameters present in query onto defaults.
func ParseChartRequest(symbol string, query url.Values, defaults viewer.Request) (viewer.Request, error) {
	req := defaults
	req.Symbol = symbol

	if v := query.Get(ParamPeriod); v != "" {
		period, err := types.ParsePeriod(v)
		if err != nil {
			return viewer.Request{}, err
		}

		req.Period = period
	}

	if v := query.Get(ParamPlot); v != "" {
		plot, err := types.ParsePlotType(v)
		if err != nil {
			return viewer.Request{}, err
		}

		req.PlotType = plot
	}

	var err error

	if req.Indicators.IncludeSma, err = boolParam(query, ParamSma, req.Indicators.IncludeSma); err != nil {
		return viewer.Request{}, err
	}

	if req.Indicators.SmaWindow, err = intParam(query, ParamSmaWindow, req.Indicators.SmaWindow); err != nil {
		return viewer.Request{}, err
	}

	if req.Indicators.IncludeBollinger, err = boolParam(query, ParamBollinger, req.Indicators.IncludeBollinger); err != nil {
		return viewer.Request{}, err
	}

	if req.Indicators.BollingerWindow, err = intParam(query, ParamBollingerWindow, req.Indicators.BollingerWindow); err != nil {
		return viewer.Request{}, err
	}

	if req.Indicators.BollingerStdDevMultiplier, err = floatParam(query, ParamBollingerMultiplier, req.Indicators.BollingerStdDevMultiplier); err != nil {
		return viewer.Request{}, err
	}

	return req, nil
}

func boolParam(query url.Values, name string, fallback bool) (bool, error) {
	v := query.Get(name)
	if v == "" {
		return fallback, nil
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, errors.Wrapf(errors.ErrCodeInvalidParameter, err, "%s must be a boolean", name)
	}

	return b, nil
}

func intParam(query url.Values, name string, fallback int) (int, error) {
	v := query.Get(name)
	if v == "" {
		return fallback, nil
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.Wrapf(errors.ErrCodeInvalidParameter, err, "%s must be an integer", name)
	}

	return n, nil
}

func floatParam(query url.Values, name string, fallback float64) (float64, error) {
	v := query.Get(name)
	if v == "" {
		return fallback, nil
	}

	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, errors.Wrapf(errors.ErrCodeInvalidParameter, err, "%s must be a number", name)
	}

	return f, nil
}

// StatusCode maps an error code onto the HTTP status returned for it.
func StatusCode(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidParameter,
		errors.ErrCodeInvalidConfiguration,
		errors.ErrCodeInvalidPeriod,
		errors.ErrCodeInvalidPlotType,
		errors.ErrCodeInvalidSymbol,
		errors.ErrCodeMissingParameter:
		return http.StatusBadRequest
	case errors.ErrCodeDataNotFound:
		return http.StatusNotFound
	case errors.ErrCodeMarketDataFetchFailed,
		errors.ErrCodeMarketDataParseFailed,
		errors.ErrCodeDataSourceUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusCode(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed",
			zap.String("request_id", RequestID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}

	s.writeJSON(w, status, errorResponse{
		Error:     err.Error(),
		Code:      int(errors.GetCode(err)),
		RequestID: RequestID(r.Context()),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Warn("Failed to encode response", zap.Error(err))
	}
}
