package api

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"gopulse/app"
	"gopulse/domain/core"
	"gopulse/domain/stats"
	"gopulse/internal/errors"
	"gopulse/internal/lessons"
	"gopulse/internal/testkit"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// StatsRequest is the body of POST /v1/stats
type StatsRequest struct {
	Label  string    `json:"label"`
	Values []float64 `json:"values"`
}

// FitRequest is the body of POST /v1/fit
type FitRequest struct {
	XLabel string    `json:"x_label"`
	YLabel string    `json:"y_label"`
	X      []float64 `json:"x"`
	Y      []float64 `json:"y"`
}

// PredictRequest is the body of POST /v1/predict. Either Fit or both
// XValues and YValues must be given.
type PredictRequest struct {
	Fit     *stats.LinearFit `json:"fit,omitempty"`
	XValues []float64        `json:"x_values,omitempty"`
	YValues []float64        `json:"y_values,omitempty"`
	X       float64          `json:"x"`
}

// CompareRequest is the body of POST /v1/compare
type CompareRequest struct {
	A StatsRequest `json:"a"`
	B StatsRequest `json:"b"`
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Code      string `json:"code"`
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	var req StatsRequest
	if !s.decode(w, r, &req) {
		return
	}

	gs, err := s.service.Describe(r.Context(), stats.NewSample(req.Label, req.Values))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, core.NewReport(core.ReportGroupStats, gs))
}

func (s *Server) handleFit(w http.ResponseWriter, r *http.Request) {
	var req FitRequest
	if !s.decode(w, r, &req) {
		return
	}

	fit, err := s.service.Fit(r.Context(), stats.NewPairedSample(req.XLabel, req.YLabel, req.X, req.Y))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, core.NewReport(core.ReportLinearFit, fit))
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req PredictRequest
	if !s.decode(w, r, &req) {
		return
	}

	var prediction app.Prediction
	switch {
	case req.Fit != nil:
		prediction = app.PredictFromFit(*req.Fit, req.X)
	case len(req.XValues) > 0 || len(req.YValues) > 0:
		var err error
		prediction, err = s.service.Predict(r.Context(), stats.NewPairedSample("x", "y", req.XValues, req.YValues), req.X)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
	default:
		s.writeError(w, r, errors.ValidationError("either fit or x_values and y_values are required"))
		return
	}
	writeJSON(w, http.StatusOK, core.NewReport(core.ReportPrediction, prediction))
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req CompareRequest
	if !s.decode(w, r, &req) {
		return
	}

	a := stats.NewSample(labelOr(req.A.Label, "A"), req.A.Values)
	b := stats.NewSample(labelOr(req.B.Label, "B"), req.B.Values)
	cmp, err := s.service.Compare(r.Context(), a, b)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, core.NewReport(core.ReportComparison, cmp))
}

func (s *Server) handleListExamples(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"examples": testkit.ExampleNames()})
}

func (s *Server) handleExample(w http.ResponseWriter, r *http.Request) {
	data, err := s.service.Kit().Example(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

func (s *Server) handleListLessons(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]lessons.Lesson{"lessons": s.service.Catalog().All()})
}

// handleLesson runs a lesson. torque (torque lesson) and value (sensor
// lesson) override the catalog defaults.
func (s *Server) handleLesson(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slug := chi.URLParam(r, "slug")

	var (
		result interface{}
		err    error
	)
	switch slug {
	case "distortion":
		result, err = s.service.DistortionLesson(ctx)
	case "torque":
		var at *float64
		if at, err = optionalFloat(r, "torque"); err == nil {
			result, err = s.service.TorqueLesson(ctx, at)
		}
	case "sensor":
		var value *float64
		if value, err = optionalFloat(r, "value"); err == nil {
			result, err = s.service.SensorLesson(ctx, value)
		}
	default:
		_, err = s.service.Catalog().Get(slug)
		if err == nil {
			err = errors.ValidationError(fmt.Sprintf("lesson %q has no computed result", slug))
		}
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, core.NewReport(core.ReportLesson, result))
}

// decode reads a JSON body into v, answering 400 itself on failure
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		s.writeError(w, r, errors.Wrap(core.NewInvalidInputError("body", err.Error()), "malformed JSON request"))
		return false
	}
	return true
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	reqID := middleware.GetReqID(r.Context())
	if status >= http.StatusInternalServerError {
		s.logger.With("request_id", reqID).Error("%s %s: %v", r.Method, r.URL.Path, err)
	} else {
		s.logger.With("request_id", reqID).Debug("%s %s: %v", r.Method, r.URL.Path, err)
	}

	writeJSON(w, status, ErrorResponse{
		Code:      errors.GetCode(err),
		Error:     err.Error(),
		RequestID: reqID,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func optionalFloat(r *http.Request, key string) (*float64, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, core.NewInvalidInputError(key, fmt.Sprintf("%q is not a number", raw))
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, core.NewInvalidInputError(key, fmt.Sprintf("%q is not a finite number", raw))
	}
	return &v, nil
}

func labelOr(label, fallback string) string {
	if label == "" {
		return fallback
	}
	return label
}
