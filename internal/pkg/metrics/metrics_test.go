package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareRecordsRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.GET("/api/personal/get", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/metrics", gin.WrapH(Handler()))

	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/personal/get", "404"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/personal/get", nil))
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/personal/get", "404")))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "phd_admission_http_requests_total")
}

func TestDomainCounters(t *testing.T) {
	before := testutil.ToFloat64(uploads.WithLabelValues("photo", "error"))
	RecordUpload("photo", 0, errors.New("boom"))
	assert.Equal(t, before+1, testutil.ToFloat64(uploads.WithLabelValues("photo", "error")))

	before = testutil.ToFloat64(pdfFailures.WithLabelValues("qualification"))
	RecordPDFFailure("qualification")
	assert.Equal(t, before+1, testutil.ToFloat64(pdfFailures.WithLabelValues("qualification")))

	before = testutil.ToFloat64(tempSwept)
	RecordSweep(3)
	RecordSweep(0)
	assert.Equal(t, before+3, testutil.ToFloat64(tempSwept))
}
