package middleware

import (
	"bytes"
	"io"
	log "log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
)

const maxAuditBody = 16384

// sensitiveFields 请求体中需要脱敏的字段
var sensitiveFields = []string{"password", "current_password"}

type responseBodyWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (r *responseBodyWriter) Write(b []byte) (int, error) {
	if r.body.Len() < maxAuditBody {
		r.body.Write(b)
	}
	return r.ResponseWriter.Write(b)
}

func (r *responseBodyWriter) Flush() {
	if flusher, ok := r.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// AuditMiddleware 记录请求与响应；文件上传和 websocket 握手不记录正文
func AuditMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		rawQuery := c.Request.URL.RawQuery
		decodedQuery, err := url.QueryUnescape(rawQuery)
		if err != nil {
			decodedQuery = rawQuery
		}
		// feed 握手的 token 在查询参数里
		if c.Query("token") != "" {
			decodedQuery = "[redacted]"
		}

		if !auditBody(c.Request) {
			log.InfoContext(ctx, "Recv Request",
				log.String("method", c.Request.Method),
				log.String("path", c.Request.URL.Path),
				log.String("query", decodedQuery),
			)
			c.Next()
			log.InfoContext(ctx, "Send Response", log.Int("status", c.Writer.Status()))
			return
		}

		var reqBody []byte
		if c.Request.Body != nil {
			reqBody, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(reqBody))
		}

		log.InfoContext(ctx, "Recv Request",
			log.String("method", c.Request.Method),
			log.String("path", c.Request.URL.Path),
			log.String("query", decodedQuery),
			log.String("req_body", redactBody(reqBody)),
		)

		w := &responseBodyWriter{body: &bytes.Buffer{}, ResponseWriter: c.Writer}
		c.Writer = w
		startTime := time.Now()

		c.Next()

		log.InfoContext(ctx, "Send Response",
			log.Int("status", c.Writer.Status()),
			log.Duration("latency", time.Since(startTime)),
			log.String("res_body", w.body.String()),
		)
	}
}

func auditBody(r *http.Request) bool {
	if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
		return false
	}
	return !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/")
}

// redactBody JSON 请求体中的密码字段替换为掩码，非 JSON 原样返回
func redactBody(body []byte) string {
	if len(body) == 0 || !bytes.Contains(body, []byte("password")) {
		return string(body)
	}
	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		return string(body)
	}
	for _, k := range sensitiveFields {
		if _, ok := fields[k]; ok {
			fields[k] = "******"
		}
	}
	out, err := json.Marshal(fields)
	if err != nil {
		return string(body)
	}
	return string(out)
}
