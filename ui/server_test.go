package ui

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gopulse/adapters/excel"
	"gopulse/app"
	"gopulse/internal"
	"gopulse/internal/lessons"
	"gopulse/internal/testkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const torqueCSV = "torque,tension\n20,8.1\n30,11.7\n40,16.0\n50,19.6\n60,23.9\n70,27.4\n"

func newTestServer(t *testing.T, config Config) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)

	catalog, err := lessons.Default()
	require.NoError(t, err)
	logger := internal.NewLogger(internal.LogLevelError)
	svc := app.NewAnalysisService(testkit.NewTestKit(42), catalog, excel.NewDataReader(excel.DefaultReaderConfig()), logger)

	srv, err := NewServer(svc, logger, config)
	require.NoError(t, err)
	return srv.Handler()
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func upload(t *testing.T, h http.Handler, filename, content string, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/playground/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestIndexListsLessons(t *testing.T) {
	h := newTestServer(t, Config{})

	rec := get(h, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	body := rec.Body.String()
	assert.Contains(t, body, "Manufacturing Distortion")
	assert.Contains(t, body, "/lessons/torque")
	assert.Contains(t, body, `href="/playground"`)
}

func TestLessonPages(t *testing.T) {
	h := newTestServer(t, Config{})

	rec := get(h, "/lessons/distortion")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := rec.Body.String()
	assert.Contains(t, body, "12.63")
	assert.Contains(t, body, "7.50")
	assert.Contains(t, body, "cv 0.30")
	assert.Contains(t, body, "fail-status")
	assert.Contains(t, body, "/charts/distortion.png")

	rec = get(h, "/lessons/torque?torque=55")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `value="55.0"`)

	rec = get(h, "/lessons/sensor")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "OUT OF SPEC")

	rec = get(h, "/lessons/sensor?value=3.5")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "OPTIMAL")
}

func TestBadQueryRendersErrorPage(t *testing.T) {
	h := newTestServer(t, Config{})

	rec := get(h, "/lessons/torque?torque=lots")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_INPUT")

	rec = get(h, "/lessons/welding")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "NOT_FOUND")
}

func TestCharts(t *testing.T) {
	h := newTestServer(t, Config{})

	for _, path := range []string{"/charts/distortion.png", "/charts/torque.png", "/charts/torque.png?torque=90"} {
		rec := get(h, path)
		require.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
		assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")), path)
	}
}

func TestPlaygroundUpload(t *testing.T) {
	h := newTestServer(t, Config{})

	rec := upload(t, h, "bolts.csv", torqueCSV, map[string]string{"x": "torque", "y": "tension", "at": "80"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := rec.Body.String()
	assert.Contains(t, body, "bolts.csv")
	assert.Contains(t, body, "6 rows")
	assert.Contains(t, body, "data:image/png;base64,")
	assert.Contains(t, body, "Prediction at x = 80.000")
}

func TestPlaygroundUploadWithoutFit(t *testing.T) {
	h := newTestServer(t, Config{})

	rec := upload(t, h, "bolts.csv", torqueCSV, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "data:image/png")
}

func TestPlaygroundUploadInlineErrors(t *testing.T) {
	h := newTestServer(t, Config{})

	rec := upload(t, h, "bolts.csv", torqueCSV, map[string]string{"x": "torque", "y": "torque_nm"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "6 rows")
}

func TestPlaygroundUploadRejectsNonFiniteAt(t *testing.T) {
	h := newTestServer(t, Config{})

	for _, at := range []string{"NaN", "Inf", "-inf"} {
		t.Run(at, func(t *testing.T) {
			rec := upload(t, h, "bolts.csv", torqueCSV, map[string]string{"x": "torque", "y": "tension", "at": at})
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			body := rec.Body.String()
			assert.Contains(t, body, "INVALID_INPUT")
			assert.NotContains(t, body, "data:image/png")
			assert.NotContains(t, body, "Prediction at")
		})
	}

	rec := get(h, "/lessons/sensor?value=NaN")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_INPUT")
}

func TestPlaygroundUploadRejects(t *testing.T) {
	tests := []struct {
		name       string
		config     Config
		filename   string
		content    string
		wantStatus int
		wantCode   string
	}{
		{"unsupported type", Config{}, "notes.txt", "hello", http.StatusUnsupportedMediaType, "UNSUPPORTED_FORMAT"},
		{"too large", Config{MaxUploadBytes: 64}, "big.csv", strings.Repeat("1,2\n", 100), http.StatusRequestEntityTooLarge, "UPLOAD_TOO_LARGE"},
		{"header only", Config{}, "empty.csv", "a,b\n", http.StatusBadRequest, "INVALID_INPUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestServer(t, tt.config)
			rec := upload(t, h, tt.filename, tt.content, nil)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.Contains(t, rec.Body.String(), tt.wantCode)
		})
	}
}

func TestPlaygroundExampleTable(t *testing.T) {
	table := excel.NewTable("bolts.csv", []string{"torque", "tension"}, []excel.RawRowData{
		{"torque": "20", "tension": "8.1"},
		{"torque": "40", "tension": "16.0"},
		{"torque": "60", "tension": "23.9"},
	})
	h := newTestServer(t, Config{ExampleTable: table, ExampleName: "bolts.csv"})

	rec := get(h, "/playground?x=torque&y=tension")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "3 rows")
	assert.Contains(t, rec.Body.String(), "data:image/png;base64,")

	rec = get(h, "/playground?x=torque&y=tension&at=soon")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRequestID(t *testing.T) {
	h := newTestServer(t, Config{})

	rec := get(h, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	_, err := uuid.Parse(rec.Header().Get(RequestIDHeader))
	assert.NoError(t, err)

	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, id)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, id, rec.Header().Get(RequestIDHeader))
	assert.Contains(t, rec.Body.String(), id)
}

func TestStaticAssets(t *testing.T) {
	h := newTestServer(t, Config{})

	rec := get(h, "/static/css/pulse.css")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), ".pass-status")
}
