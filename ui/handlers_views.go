package ui

import (
	"fmt"
	"math"
	"net/http"
	"strconv"

	"gopulse/domain/core"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleDistortion(c *gin.Context) {
	result, err := s.service.DistortionLesson(c.Request.Context())
	if err != nil {
		s.renderError(c, err)
		return
	}
	s.renderTemplate(c, http.StatusOK, "distortion.html", s.newPage(c, result.Lesson.Title, result.Lesson.Slug, result))
}

func (s *Server) handleTorque(c *gin.Context) {
	at, err := queryFloat(c, "torque")
	if err != nil {
		s.renderError(c, err)
		return
	}
	result, err := s.service.TorqueLesson(c.Request.Context(), at)
	if err != nil {
		s.renderError(c, err)
		return
	}
	s.renderTemplate(c, http.StatusOK, "torque.html", s.newPage(c, result.Lesson.Title, result.Lesson.Slug, result))
}

func (s *Server) handleSensor(c *gin.Context) {
	value, err := queryFloat(c, "value")
	if err != nil {
		s.renderError(c, err)
		return
	}
	result, err := s.service.SensorLesson(c.Request.Context(), value)
	if err != nil {
		s.renderError(c, err)
		return
	}
	s.renderTemplate(c, http.StatusOK, "sensor.html", s.newPage(c, result.Lesson.Title, result.Lesson.Slug, result))
}

// queryFloat returns nil when the parameter is absent
func queryFloat(c *gin.Context, key string) (*float64, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	v, err := parseFloatField(key, raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func parseFloatField(key, raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, core.NewInvalidInputError(key, fmt.Sprintf("%q is not a number", raw))
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, core.NewInvalidInputError(key, fmt.Sprintf("%q is not a finite number", raw))
	}
	return v, nil
}
