package ui

import (
	"bytes"
	"net/http"

	"gopulse/adapters/chart"
	"gopulse/domain/stats"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleDistortionChart(c *gin.Context) {
	result, err := s.service.DistortionLesson(c.Request.Context())
	if err != nil {
		s.renderError(c, err)
		return
	}

	var buf bytes.Buffer
	title := "Mean runout (" + result.Lesson.Unit + ")"
	if err := chart.GroupBars(&buf, title, []stats.GroupStats{result.Comparison.A, result.Comparison.B}); err != nil {
		s.renderError(c, err)
		return
	}
	writePNG(c, buf.Bytes())
}

func (s *Server) handleTorqueChart(c *gin.Context) {
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

	marker := &chart.Marker{X: result.Prediction.X, Y: result.Prediction.Y, Label: "Prediction"}
	var buf bytes.Buffer
	if err := chart.ScatterWithFit(&buf, result.Data, result.Fit, marker); err != nil {
		s.renderError(c, err)
		return
	}
	writePNG(c, buf.Bytes())
}

func writePNG(c *gin.Context, png []byte) {
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", png)
}
