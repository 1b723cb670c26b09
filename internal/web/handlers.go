package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"auction-advisor/internal/domain"
	"auction-advisor/internal/features"
)

// errBadInput marks request bodies or fields that could not be parsed.
var errBadInput = errors.New("invalid input")

// maxBodyBytes bounds JSON and form bodies.
const maxBodyBytes = 64 << 10

// pageData is the template context for the form page.
type pageData struct {
	Request     domain.EstimateRequest
	Years       []int
	Submodels   []domain.Submodel
	MinMileage  int
	MaxMileage  int
	MileageStep int
	Timing      domain.AuctionTiming
	Estimate    *domain.Estimate
	Error       string
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Status string `json:"status"`
	Code   int    `json:"code"`
	Error  string `json:"error"`
}

// StatsResponse is the JSON response for /api/stats.
type StatsResponse struct {
	Statistics     domain.TrainingStatistics `json:"statistics"`
	FeatureColumns []string                  `json:"feature_columns"`
	Timing         domain.AuctionTiming      `json:"timing"`
}

// years lists the selectable model years, newest first.
var years = func() []int {
	out := make([]int, 0, domain.MaxYear-domain.MinYear+1)
	for y := domain.MaxYear; y >= domain.MinYear; y-- {
		out = append(out, y)
	}
	return out
}()

func (s *Server) newPage(req domain.EstimateRequest) pageData {
	return pageData{
		Request:     req,
		Years:       years,
		Submodels:   domain.Submodels,
		MinMileage:  domain.MinMileage,
		MaxMileage:  domain.MaxMileage,
		MileageStep: domain.MileageStep,
		Timing:      s.estimator.Timing(),
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, s.newPage(domain.DefaultEstimateRequest()))
}

func (s *Server) handleEstimateForm(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	req, err := parseForm(r)
	page := s.newPage(req)
	if err == nil {
		err = features.ValidateRequest(req)
	}
	if err != nil {
		page.Error = err.Error()
		s.render(w, http.StatusBadRequest, page)
		return
	}

	est, err := s.estimator.Estimate(r.Context(), req)
	s.record(err)
	if err != nil {
		s.logger.Warn("Estimate failed", zap.String("surface", "form"), zap.Error(err))
		page.Error = "The price model could not produce an estimate. Please try again."
		s.render(w, http.StatusBadGateway, page)
		return
	}

	page.Estimate = est
	s.render(w, http.StatusOK, page)
}

func (s *Server) handleEstimateAPI(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	req, err := decodeRequest(r.Body)
	if err == nil {
		err = features.ValidateRequest(req)
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	est, err := s.estimator.Estimate(r.Context(), req)
	s.record(err)
	if err != nil {
		s.logger.Warn("Estimate failed", zap.String("surface", "api"), zap.Error(err))
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, est)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats := s.estimator.Statistics()
	if stats.Fallbacks == nil {
		stats.Fallbacks = []string{}
	}
	writeJSON(w, http.StatusOK, StatsResponse{
		Statistics:     stats,
		FeatureColumns: domain.FeatureColumns,
		Timing:         s.estimator.Timing(),
	})
}

func (s *Server) render(w http.ResponseWriter, code int, page pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	if err := s.page.Execute(w, page); err != nil {
		s.logger.Error("Render page", zap.Error(err))
	}
}

// parseForm reads form fields over the defaults. Absent fields keep their
// default value.
func parseForm(r *http.Request) (domain.EstimateRequest, error) {
	req := domain.DefaultEstimateRequest()
	if err := r.ParseForm(); err != nil {
		return req, fmt.Errorf("%w: %v", errBadInput, err)
	}

	intField := func(name string, dst *int) error {
		raw, ok := r.PostForm[name]
		if !ok || len(raw) == 0 {
			return nil
		}
		v, err := strconv.Atoi(strings.TrimSpace(raw[0]))
		if err != nil {
			return fmt.Errorf("%w: %s must be a whole number", errBadInput, name)
		}
		*dst = v
		return nil
	}
	if err := intField("year", &req.Year); err != nil {
		return req, err
	}
	if err := intField("mileage", &req.Mileage); err != nil {
		return req, err
	}

	if _, ok := r.PostForm["submodel"]; ok {
		req.Submodel = domain.Submodel(r.PostFormValue("submodel"))
	}
	if _, ok := r.PostForm["title"]; ok {
		req.Title = strings.TrimSpace(r.PostFormValue("title"))
	}
	if _, ok := r.PostForm["zip"]; ok {
		req.ZIP = strings.TrimSpace(r.PostFormValue("zip"))
	}
	return req, nil
}

// decodeRequest reads a JSON EstimateRequest over the defaults.
func decodeRequest(body io.Reader) (domain.EstimateRequest, error) {
	req := domain.DefaultEstimateRequest()
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return req, fmt.Errorf("%w: %v", errBadInput, err)
	}
	return req, nil
}

// writeJSON encodes v before committing the status, so a value that cannot
// be encoded turns into a 500 envelope rather than an empty 200.
func writeJSON(w http.ResponseWriter, code int, v any) {
	body, code := encodeReply(code, v)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(body)
}

// encodeReply marshals v, falling back to an error envelope.
func encodeReply(code int, v any) ([]byte, int) {
	body, err := json.Marshal(v)
	if err != nil {
		code = http.StatusInternalServerError
		body, _ = json.Marshal(newErrorResponse(code, fmt.Errorf("encode response: %w", err)))
	}
	return append(body, '\n'), code
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, newErrorResponse(code, err))
}

func newErrorResponse(code int, err error) ErrorResponse {
	return ErrorResponse{Status: "error", Code: code, Error: err.Error()}
}
