package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/mesikahq/spitalverse/internal/store"
)

func TestMiddlewareUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.GET("/api/medications/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/api/medications/:id", "204"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/medications/abc", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/api/medications/:id", "204")))
}

func TestRecordAssistantOutcome(t *testing.T) {
	fb := testutil.ToFloat64(fallbacksTotal.WithLabelValues("tips"))
	RecordAssistantOutcome("tips", "unavailable", "fallback")
	RecordAssistantOutcome("tips", "ok", "ai")

	assert.Equal(t, fb+1, testutil.ToFloat64(fallbacksTotal.WithLabelValues("tips")))
	assert.GreaterOrEqual(t, testutil.ToFloat64(assistantOutcomes.WithLabelValues("tips", "ok", "ai")), 1.0)
}

func TestStoreObserver(t *testing.T) {
	before := testutil.ToFloat64(storeMutations.WithLabelValues(store.CollectionMedications, "add"))
	StoreObserver().OnMutation(context.Background(), store.Mutation{Collection: store.CollectionMedications, Op: store.OpAdd, At: time.Now()})
	assert.Equal(t, before+1, testutil.ToFloat64(storeMutations.WithLabelValues(store.CollectionMedications, "add")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	RecordLLMRequest("summary", "ok", 200*time.Millisecond)

	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "spitalverse_llm_request_duration_seconds"))
}
