package ui

import (
	"bytes"
	"html/template"
	"net/http"
	"strconv"

	"gopulse/domain/stats"
	"gopulse/internal/errors"
	"gopulse/internal/lessons"

	"github.com/gin-gonic/gin"
)

func funcMap() template.FuncMap {
	return template.FuncMap{
		"fixed": func(prec int, v float64) string {
			return strconv.FormatFloat(v, 'f', prec, 64)
		},
		"pvalue": func(p float64) string {
			if p < 0.0001 {
				return "< 0.0001"
			}
			return strconv.FormatFloat(p, 'f', 4, 64)
		},
		"statusClass": func(s stats.Status) string {
			if s == stats.StatusPass {
				return "pass-status"
			}
			return "fail-status"
		},
		// narrative renders catalog markdown; the catalog is operator-controlled
		"narrative": func(l lessons.Lesson) template.HTML {
			return template.HTML(l.Narrative()) //nolint:gosec // rendered from the lesson catalog
		},
	}
}

// page is the data every full page template receives
type page struct {
	Title     string
	Active    string
	RequestID string
	Lessons   []lessons.Lesson
	Data      interface{}
}

func (s *Server) newPage(c *gin.Context, title, active string, data interface{}) page {
	return page{
		Title:     title,
		Active:    active,
		RequestID: c.GetString(requestIDKey),
		Lessons:   s.service.Catalog().All(),
		Data:      data,
	}
}

// renderTemplate executes a template into a buffer first so a failing
// template never leaves a half-written page
func (s *Server) renderTemplate(c *gin.Context, status int, templateName string, data interface{}) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, templateName, data); err != nil {
		s.logger.With(requestIDKey, c.GetString(requestIDKey)).Error("template %s: %v", templateName, err)
		c.String(http.StatusInternalServerError, "Template rendering failed")
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}

// errorView is the data behind error.html
type errorView struct {
	Status  int
	Code    string
	Message string
}

// renderError shows err as a friendly page with the status its code maps to
func (s *Server) renderError(c *gin.Context, err error) {
	status := errors.HTTPStatus(err)
	logger := s.logger.With(requestIDKey, c.GetString(requestIDKey))
	if status >= http.StatusInternalServerError {
		logger.Error("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	} else {
		logger.Debug("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}

	view := errorView{
		Status:  status,
		Code:    errors.GetCode(err),
		Message: err.Error(),
	}
	s.renderTemplate(c, status, "error.html", s.newPage(c, http.StatusText(status), "", view))
}
