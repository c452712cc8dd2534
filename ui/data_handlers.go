package ui

import (
	"bytes"
	"encoding/base64"
	stderrors "errors"
	"html/template"
	"net/http"

	"gopulse/adapters/chart"
	"gopulse/app"
	"gopulse/domain/stats"
	"gopulse/internal/errors"
	"gopulse/ports"

	"github.com/gin-gonic/gin"
)

// playgroundView is the data behind playground.html
type playgroundView struct {
	Source         string
	MaxUploadMB    float64
	NumericHeaders []string
	Summary        *app.TableSummary
	X, Y           string
	At             string
	Fit            *stats.LinearFit
	Prediction     *app.Prediction
	ChartURI       template.URL
	Error          string
	ErrorCode      string
}

func (s *Server) newPlaygroundView() playgroundView {
	return playgroundView{MaxUploadMB: float64(s.config.MaxUploadBytes) / (1 << 20)}
}

// handlePlayground shows the upload form, plus the configured example table
// when there is one
func (s *Server) handlePlayground(c *gin.Context) {
	view := s.newPlaygroundView()
	status := http.StatusOK

	if s.config.ExampleTable != nil {
		status = s.analyzeTable(c, &view, s.config.ExampleName, s.config.ExampleTable, c.Query("x"), c.Query("y"), c.Query("at"))
	}
	s.renderTemplate(c, status, "playground.html", s.newPage(c, "Data Playground", "playground", view))
}

// handlePlaygroundUpload accepts a multipart CSV/XLSX upload in field "file"
// with optional x, y and at fields for a fit
func (s *Server) handlePlaygroundUpload(c *gin.Context) {
	if c.Request.ContentLength > s.config.MaxUploadBytes {
		s.renderError(c, errors.UploadTooLarge(s.config.MaxUploadBytes))
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.config.MaxUploadBytes)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case stderrors.As(err, &tooLarge):
			s.renderError(c, errors.UploadTooLarge(s.config.MaxUploadBytes))
		case stderrors.Is(err, http.ErrMissingFile):
			s.renderError(c, errors.ValidationError("choose a .csv or .xlsx file to upload"))
		default:
			s.renderError(c, errors.Wrap(err, "failed to read upload"))
		}
		return
	}
	defer file.Close()

	table, err := s.service.ReadTable(c.Request.Context(), header.Filename, file)
	if err != nil {
		s.renderError(c, err)
		return
	}

	view := s.newPlaygroundView()
	status := s.analyzeTable(c, &view, header.Filename, table, c.PostForm("x"), c.PostForm("y"), c.PostForm("at"))
	s.renderTemplate(c, status, "playground.html", s.newPage(c, "Data Playground", "playground", view))
}

// analyzeTable fills view and returns the status to answer with. Errors in
// the optional fit are shown inline next to the column summary.
func (s *Server) analyzeTable(c *gin.Context, view *playgroundView, name string, table ports.TableSource, x, y, at string) int {
	ctx := c.Request.Context()
	view.Source = name
	view.NumericHeaders = table.NumericHeaders()
	view.X, view.Y, view.At = x, y, at

	summary, err := s.service.DescribeTable(ctx, name, table)
	if err != nil {
		return s.inlineError(view, err)
	}
	view.Summary = &summary

	if x == "" || y == "" {
		return http.StatusOK
	}

	pair, err := table.Paired(x, y)
	if err != nil {
		return s.inlineError(view, err)
	}
	fit, err := s.service.Fit(ctx, pair)
	if err != nil {
		return s.inlineError(view, err)
	}
	view.Fit = &fit

	var marker *chart.Marker
	if at != "" {
		v, err := parseFloatField("at", at)
		if err != nil {
			return s.inlineError(view, err)
		}
		p := app.PredictFromFit(fit, v)
		view.Prediction = &p
		marker = &chart.Marker{X: p.X, Y: p.Y, Label: "Prediction"}
	}

	var buf bytes.Buffer
	if err := chart.ScatterWithFit(&buf, pair, fit, marker); err != nil {
		s.logger.Warn("playground chart for %s: %v", name, err)
		return http.StatusOK
	}
	view.ChartURI = template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())) //nolint:gosec // generated PNG
	return http.StatusOK
}

func (s *Server) inlineError(view *playgroundView, err error) int {
	view.Error = err.Error()
	view.ErrorCode = errors.GetCode(err)
	return errors.HTTPStatus(err)
}
