package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestGinPrometheusMiddleware_UsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(GinPrometheusMiddleware("metrics-test"))
	router.GET("/reviews/:review_id/images", func(c *gin.Context) { c.Status(http.StatusOK) })

	before := testutil.ToFloat64(HttpRequestsTotal.WithLabelValues("metrics-test", http.MethodGet, "/reviews/:review_id/images", "200"))

	for _, id := range []string{"a", "b"} {
		req, _ := http.NewRequest(http.MethodGet, "/reviews/"+id+"/images", nil)
		router.ServeHTTP(httptest.NewRecorder(), req)
	}

	after := testutil.ToFloat64(HttpRequestsTotal.WithLabelValues("metrics-test", http.MethodGet, "/reviews/:review_id/images", "200"))
	assert.Equal(t, 2.0, after-before)
}

func TestGinPrometheusMiddleware_SkipsHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(GinPrometheusMiddleware("metrics-health-test"))
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, 0.0, testutil.ToFloat64(HttpRequestsTotal.WithLabelValues("metrics-health-test", http.MethodGet, "/health", "200")))
}

func TestRecordSyncRefresh(t *testing.T) {
	success := testutil.ToFloat64(ReviewSyncRefreshes.WithLabelValues("success"))
	failed := testutil.ToFloat64(ReviewSyncRefreshes.WithLabelValues("failed"))

	RecordSyncRefresh(nil)
	RecordSyncRefresh(errors.New("boom"))

	assert.Equal(t, success+1, testutil.ToFloat64(ReviewSyncRefreshes.WithLabelValues("success")))
	assert.Equal(t, failed+1, testutil.ToFloat64(ReviewSyncRefreshes.WithLabelValues("failed")))
}
