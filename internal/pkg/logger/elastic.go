package logger

import (
	"bytes"
	"io"
	log "log/slog"
	"net/http"
	"time"
)

const slowESThreshold = 500 * time.Millisecond

// ESTransport 记录 ES 请求体、响应体与耗时
type ESTransport struct {
	Transport http.RoundTripper
}

func (t *ESTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	reqBody := drain(&req.Body)
	resp, err := t.Transport.RoundTrip(req)
	elapsed := time.Since(start)

	fields := []any{
		log.String("method", req.Method),
		log.String("path", req.URL.Path),
		log.Duration("latency", elapsed),
		log.String("req_body", truncate(string(reqBody))),
	}

	if err != nil {
		log.ErrorContext(req.Context(), "ES Error", append(fields, log.Any("err", err))...)
		return nil, err
	}

	resBody := drain(&resp.Body)
	fields = append(fields, log.Int("status", resp.StatusCode), log.String("res_body", truncate(string(resBody))))

	switch {
	case resp.StatusCode >= http.StatusInternalServerError:
		log.ErrorContext(req.Context(), "ES Failed", fields...)
	case elapsed > slowESThreshold:
		log.WarnContext(req.Context(), "ES Slow", fields...)
	default:
		log.DebugContext(req.Context(), "ES Request", fields...)
	}

	return resp, nil
}

// drain 读出 body 后放回一份副本
func drain(body *io.ReadCloser) []byte {
	if *body == nil {
		return nil
	}
	data, _ := io.ReadAll(*body)
	_ = (*body).Close()
	*body = io.NopCloser(bytes.NewReader(data))
	return data
}
