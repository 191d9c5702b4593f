package logger

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupGinWritesAccessLog(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	old := LogWriter
	LogWriter = &buf
	t.Cleanup(func() { LogWriter = old })

	r := gin.New()
	SetupGin(r, "logstash-access")
	r.GET("/api/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/api/ideas", func(c *gin.Context) { c.Status(http.StatusTeapot) })
	r.GET("/api/boom", func(c *gin.Context) { panic("boom") })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/ping", nil))
	assert.Zero(t, buf.Len())

	req := httptest.NewRequest(http.MethodGet, "/api/ideas", nil)
	req = req.WithContext(context.WithValue(req.Context(), TraceIDKey, "trace-1"))
	r.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "GIN_ACCESS", entry["msg"])
	assert.Equal(t, "logstash-access", entry["target_index"])
	assert.Equal(t, "trace-1", entry["trace_id"])
	assert.EqualValues(t, http.StatusTeapot, entry["status"])

	// Recovery 兜住 panic
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
