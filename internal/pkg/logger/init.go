package logger

import (
	"IdeaVault/internal/api/config"
	"io"
	log "log/slog"
	"net"
	"os"
	"time"
)

// LogWriter gin 访问日志输出目标
var LogWriter io.Writer = os.Stdout

// InitLogger 标准输出 + 可选的 Logstash TCP 上报
func InitLogger(cfg config.LogstashConfig) {
	stdout := log.NewJSONHandler(os.Stdout, &log.HandlerOptions{Level: log.LevelInfo})
	var final log.Handler = stdout

	if cfg.Address != "" {
		conn, err := net.DialTimeout("tcp", cfg.Address, 3*time.Second)
		if err != nil {
			log.Warn("Failed to connect to Logstash, logging to stdout only", "addr", cfg.Address, "err", err)
		} else {
			remote := log.NewJSONHandler(conn, &log.HandlerOptions{Level: log.LevelInfo}).
				WithAttrs([]log.Attr{
					log.String("target_index", cfg.Index),
					log.String("log_token", cfg.Token),
				})
			final = &TeeHandler{handlers: []log.Handler{stdout, &TracedOnlyHandler{next: remote}}}
			LogWriter = io.MultiWriter(os.Stdout, conn)
		}
	}

	log.SetDefault(log.New(&ContextHandler{final}))
}
